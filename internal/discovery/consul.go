package discovery

import (
	"fmt"
	"os"
	"time"

	consulapi "github.com/hashicorp/consul/api"
	"go.uber.org/zap"
)

type Registration struct {
	Name          string
	Address       string
	Port          int
	CheckInterval time.Duration
	Tags          []string
}

// Registrar announces this instance to Consul so the gateway can route to it.
type Registrar struct {
	client *consulapi.Client
	id     string
	log    *zap.Logger
}

func NewRegistrar(addr string, logger *zap.Logger) (*Registrar, error) {
	cfg := consulapi.DefaultConfig()
	cfg.Address = addr
	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &Registrar{client: client, log: logger}, nil
}

// ServiceID is unique per instance: name-host-port.
func ServiceID(r Registration) string {
	host, _ := os.Hostname()
	if host == "" {
		host = "local"
	}
	return fmt.Sprintf("%s-%s-%d", r.Name, host, r.Port)
}

// Definition builds the agent registration with an HTTP check on /healthz.
func Definition(r Registration) *consulapi.AgentServiceRegistration {
	interval := r.CheckInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	addr := r.Address
	if addr == "" {
		addr = "127.0.0.1"
	}
	return &consulapi.AgentServiceRegistration{
		ID:      ServiceID(r),
		Name:    r.Name,
		Address: addr,
		Port:    r.Port,
		Tags:    r.Tags,
		Check: &consulapi.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/healthz", addr, r.Port),
			Interval:                       interval.String(),
			Timeout:                        "3s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}
}

func (g *Registrar) Register(r Registration) error {
	def := Definition(r)
	if err := g.client.Agent().ServiceRegister(def); err != nil {
		return err
	}
	g.id = def.ID
	g.log.Info("registered with consul", zap.String("id", def.ID))
	return nil
}

func (g *Registrar) Deregister() error {
	if g.id == "" {
		return nil
	}
	if err := g.client.Agent().ServiceDeregister(g.id); err != nil {
		return err
	}
	g.log.Info("deregistered from consul", zap.String("id", g.id))
	g.id = ""
	return nil
}
