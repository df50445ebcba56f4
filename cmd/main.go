package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fathima-sithara/contacts-service/internal/cache"
	"github.com/fathima-sithara/contacts-service/internal/config"
	"github.com/fathima-sithara/contacts-service/internal/database"
	"github.com/fathima-sithara/contacts-service/internal/discovery"
	"github.com/fathima-sithara/contacts-service/internal/events"
	"github.com/fathima-sithara/contacts-service/internal/handlers"
	"github.com/fathima-sithara/contacts-service/internal/metrics"
	"github.com/fathima-sithara/contacts-service/internal/middleware"
	"github.com/fathima-sithara/contacts-service/internal/repository"
	"github.com/fathima-sithara/contacts-service/internal/routes"
	"github.com/fathima-sithara/contacts-service/internal/service"
	"github.com/fathima-sithara/contacts-service/internal/storage"
	"github.com/fathima-sithara/contacts-service/internal/utils"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const connectWait = 30 * time.Second

func main() {
	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config/config.yaml"
	}
	cfg, err := config.Load(path)
	if err != nil {
		panic(err)
	}

	logger, err := utils.NewLogger(cfg.App.Env)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	sugar := logger.Sugar()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	db, mc, err := database.ConnectMongo(ctx, cfg.Mongo.URI, cfg.Mongo.Database, connectWait, sugar)
	if err != nil {
		sugar.Fatalf("mongo connect: %v", err)
	}

	accounts, err := repository.NewMongoAccountRepo(ctx, db, cfg.Mongo.AccountsCollection)
	if err != nil {
		sugar.Fatalf("accounts store: %v", err)
	}
	contacts, err := repository.NewMongoContactRepo(ctx, db, cfg.Mongo.ContactsCollection)
	if err != nil {
		sugar.Fatalf("contacts store: %v", err)
	}
	labels, err := repository.NewMongoLabelRepo(ctx, db, cfg.Mongo.LabelsCollection)
	if err != nil {
		sugar.Fatalf("labels store: %v", err)
	}
	trash, err := repository.NewMongoTrashRepo(ctx, db, cfg.Mongo.TrashCollection)
	if err != nil {
		sugar.Fatalf("trash store: %v", err)
	}

	m := metrics.New()

	var pub events.Publisher = events.Noop{}
	if len(cfg.Kafka.Brokers) > 0 {
		pub = events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, events.BreakerSettings{
			MaxFailures: cfg.Breaker.MaxFailures,
			Interval:    cfg.BreakerInterval,
			Timeout:     cfg.BreakerTimeout,
		}, logger)
		sugar.Infof("publishing lifecycle events to %s", cfg.Kafka.Topic)
	}

	var photos service.PhotoStore
	if cfg.AWS.Bucket != "" {
		store, err := storage.NewS3Store(ctx, cfg.AWS.Region, cfg.AWS.Bucket, cfg.AWS.Endpoint, cfg.S3.PublicRead)
		if err != nil {
			sugar.Fatalf("s3 init: %v", err)
		}
		photos = store
	}

	var (
		rdb         *redis.Client
		revocations *cache.Revocations
		userLimit   fiber.Handler
	)
	if cfg.Redis.Addr != "" {
		rdb, err = database.ConnectRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, connectWait, sugar)
		if err != nil {
			sugar.Fatalf("redis connect: %v", err)
		}
		revocations = cache.NewRevocations(rdb, cfg.Redis.Prefix+":revoked")
		limiter := middleware.NewRateLimiter(rdb, cfg.Redis.Prefix+":rl", cfg.RateLimit.PerUserLimit, cfg.PerUserWindow, logger)
		userLimit = limiter.PerUser()
	}

	contactSvc := service.NewContactService(contacts, trash, pub, m, logger)
	labelSvc := service.NewLabelService(labels, m, logger)
	accountSvc, err := service.NewAccountService(accounts, photos, service.AccountOptions{
		BcryptCost: cfg.Security.PasswordHashCost,
		PresignTTL: cfg.PresignTTL,
	}, m, logger)
	if err != nil {
		sugar.Fatalf("account service: %v", err)
	}

	jm := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWTTTL)
	var (
		checker middleware.RevocationChecker
		revoker handlers.Revoker
	)
	if revocations != nil {
		checker, revoker = revocations, revocations
	}

	app := routes.NewApp(routes.AppOptions{
		Name:         cfg.App.Name,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		CORSOrigins:  cfg.App.CORSOrigins,
	}, logger, m)
	routes.Setup(app, routes.Deps{
		Accounts:  handlers.NewAccountHandler(accountSvc, jm, revoker, logger),
		Contacts:  handlers.NewContactHandler(contactSvc),
		Trash:     handlers.NewTrashHandler(contactSvc),
		Labels:    handlers.NewLabelHandler(labelSvc),
		Metrics:   m,
		Auth:      middleware.JWTAuth(jm, checker, logger),
		UserLimit: userLimit,
		IPLimit:   middleware.NewIPRateLimiter(ctx, cfg.RateLimit.IPPerMinute, cfg.RateLimit.IPBurst, logger).Handler(),
	})

	var registrar *discovery.Registrar
	if cfg.Consul.Addr != "" {
		registrar, err = discovery.NewRegistrar(cfg.Consul.Addr, logger)
		if err != nil {
			sugar.Fatalf("consul init: %v", err)
		}
		if err := registrar.Register(discovery.Registration{
			Name:          cfg.App.Name,
			Address:       cfg.Consul.ServiceAddress,
			Port:          cfg.App.Port,
			CheckInterval: cfg.CheckInterval,
			Tags:          []string{"contacts", "api-v2"},
		}); err != nil {
			sugar.Warnf("consul register failed: %v", err)
		}
	}

	go func() {
		sugar.Infof("starting %s on %s", cfg.App.Name, cfg.Addr())
		if err := app.Listen(cfg.Addr()); err != nil {
			sugar.Fatalf("listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Info("shutdown requested")
	stop()

	timeoutCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if registrar != nil {
		if err := registrar.Deregister(); err != nil {
			sugar.Warnf("consul deregister failed: %v", err)
		}
	}
	if err := app.ShutdownWithContext(timeoutCtx); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	if err := pub.Close(); err != nil {
		logger.Error("event publisher close", zap.Error(err))
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	_ = mc.Disconnect(timeoutCtx)
	sugar.Info("shutdown completed")
}
