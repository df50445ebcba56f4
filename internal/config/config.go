package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type AppConf struct {
	Name                string `mapstructure:"name"`
	Env                 string `mapstructure:"env"`
	Port                int    `mapstructure:"port"`
	ReadTimeoutSeconds  int    `mapstructure:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `mapstructure:"write_timeout_seconds"`
	ShutdownSeconds     int    `mapstructure:"shutdown_seconds"`
	CORSOrigins         string `mapstructure:"cors_origins"`
}

type MongoConf struct {
	URI                string `mapstructure:"uri"`
	Database           string `mapstructure:"database"`
	AccountsCollection string `mapstructure:"accounts_collection"`
	ContactsCollection string `mapstructure:"contacts_collection"`
	LabelsCollection   string `mapstructure:"labels_collection"`
	TrashCollection    string `mapstructure:"trash_collection"`
}

type RedisConf struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type JWTConf struct {
	Secret   string `mapstructure:"secret"`
	TTLHours int    `mapstructure:"ttl_hours"`
}

type SecurityConf struct {
	PasswordHashCost int `mapstructure:"password_hash_cost"`
}

type KafkaConf struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type AWSConf struct {
	Region   string `mapstructure:"region"`
	Bucket   string `mapstructure:"bucket"`
	Endpoint string `mapstructure:"endpoint"`
}

type S3Conf struct {
	PublicRead bool `mapstructure:"public_read"`
	PresignTTL int  `mapstructure:"presign_ttl_seconds"`
}

type RateLimitConf struct {
	PerUserLimit         int `mapstructure:"per_user_limit"`
	PerUserWindowSeconds int `mapstructure:"per_user_window_seconds"`
	IPPerMinute          int `mapstructure:"ip_per_minute"`
	IPBurst              int `mapstructure:"ip_burst"`
}

type BreakerConf struct {
	MaxFailures uint32 `mapstructure:"max_failures"`
	IntervalSec int    `mapstructure:"interval_seconds"`
	TimeoutSec  int    `mapstructure:"timeout_seconds"`
}

type ConsulConf struct {
	Addr                 string `mapstructure:"addr"`
	ServiceAddress       string `mapstructure:"service_address"`
	CheckIntervalSeconds int    `mapstructure:"check_interval_seconds"`
}

type Config struct {
	App       AppConf       `mapstructure:"app"`
	Mongo     MongoConf     `mapstructure:"mongo"`
	Redis     RedisConf     `mapstructure:"redis"`
	JWT       JWTConf       `mapstructure:"jwt"`
	Security  SecurityConf  `mapstructure:"security"`
	Kafka     KafkaConf     `mapstructure:"kafka"`
	AWS       AWSConf       `mapstructure:"aws"`
	S3        S3Conf        `mapstructure:"s3"`
	RateLimit RateLimitConf `mapstructure:"ratelimit"`
	Breaker   BreakerConf   `mapstructure:"breaker"`
	Consul    ConsulConf    `mapstructure:"consul"`

	// derived
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	JWTTTL          time.Duration
	PresignTTL      time.Duration
	PerUserWindow   time.Duration
	BreakerInterval time.Duration
	BreakerTimeout  time.Duration
	CheckInterval   time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "contacts-service")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", 8080)
	v.SetDefault("app.read_timeout_seconds", 15)
	v.SetDefault("app.write_timeout_seconds", 15)
	v.SetDefault("app.shutdown_seconds", 15)
	v.SetDefault("app.cors_origins", "*")

	v.SetDefault("mongo.uri", "")
	v.SetDefault("mongo.database", "Contacts")
	v.SetDefault("mongo.accounts_collection", "Accounts")
	v.SetDefault("mongo.contacts_collection", "User_contacts")
	v.SetDefault("mongo.labels_collection", "Labels")
	v.SetDefault("mongo.trash_collection", "Trash")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "contacts")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.ttl_hours", 24)

	v.SetDefault("security.password_hash_cost", 10)

	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "contacts.lifecycle")

	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.bucket", "")
	v.SetDefault("aws.endpoint", "")
	v.SetDefault("s3.public_read", false)
	v.SetDefault("s3.presign_ttl_seconds", 600)

	v.SetDefault("ratelimit.per_user_limit", 120)
	v.SetDefault("ratelimit.per_user_window_seconds", 60)
	v.SetDefault("ratelimit.ip_per_minute", 30)
	v.SetDefault("ratelimit.ip_burst", 5)

	v.SetDefault("breaker.max_failures", 5)
	v.SetDefault("breaker.interval_seconds", 60)
	v.SetDefault("breaker.timeout_seconds", 30)

	v.SetDefault("consul.addr", "")
	v.SetDefault("consul.service_address", "")
	v.SetDefault("consul.check_interval_seconds", 10)
}

// Load reads .env (if present), then the YAML file at path, then APP_*
// environment overrides such as APP_MONGO_URI. An empty path skips the file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Kafka.Brokers = compact(cfg.Kafka.Brokers)

	cfg.ReadTimeout = time.Duration(cfg.App.ReadTimeoutSeconds) * time.Second
	cfg.WriteTimeout = time.Duration(cfg.App.WriteTimeoutSeconds) * time.Second
	cfg.ShutdownTimeout = time.Duration(cfg.App.ShutdownSeconds) * time.Second
	cfg.JWTTTL = time.Duration(cfg.JWT.TTLHours) * time.Hour
	cfg.PresignTTL = time.Duration(cfg.S3.PresignTTL) * time.Second
	cfg.PerUserWindow = time.Duration(cfg.RateLimit.PerUserWindowSeconds) * time.Second
	cfg.BreakerInterval = time.Duration(cfg.Breaker.IntervalSec) * time.Second
	cfg.BreakerTimeout = time.Duration(cfg.Breaker.TimeoutSec) * time.Second
	cfg.CheckInterval = time.Duration(cfg.Consul.CheckIntervalSeconds) * time.Second

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (c *Config) validate() error {
	var errs []error
	if c.Mongo.URI == "" {
		errs = append(errs, errors.New("mongo.uri is required"))
	}
	if c.Mongo.Database == "" {
		errs = append(errs, errors.New("mongo.database is required"))
	}
	if c.JWT.Secret == "" {
		errs = append(errs, errors.New("jwt.secret is required"))
	}
	if c.App.Port <= 0 {
		errs = append(errs, errors.New("app.port must be positive"))
	}
	if c.JWT.TTLHours <= 0 {
		errs = append(errs, errors.New("jwt.ttl_hours must be positive"))
	}
	return errors.Join(errs...)
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.App.Port)
}
