package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fekuna/omnipos-inventory-service/config"
	"github.com/fekuna/omnipos-inventory-service/internal/auth"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/events"
	invH "github.com/fekuna/omnipos-inventory-service/internal/inventory/handler"
	invListenerPkg "github.com/fekuna/omnipos-inventory-service/internal/inventory/listener"
	"github.com/fekuna/omnipos-inventory-service/internal/inventory/querycache"
	invRepoPkg "github.com/fekuna/omnipos-inventory-service/internal/inventory/repository"
	invUCPkg "github.com/fekuna/omnipos-inventory-service/internal/inventory/usecase"
	"github.com/fekuna/omnipos-inventory-service/pkg/broker"
	"github.com/fekuna/omnipos-inventory-service/pkg/cache"
	"github.com/fekuna/omnipos-inventory-service/pkg/database/postgres"
	"github.com/fekuna/omnipos-inventory-service/pkg/logger"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}

	if cfg.Server.AppEnv == "development" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = "console"
		logConfig.Level = "debug"
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	if err := cfg.Validate(); err != nil {
		appLogger.Fatal("Invalid configuration", zap.Error(err))
	}

	// 3. Connect to Database
	db, err := postgres.NewPostgres(&postgres.Config{
		Host:            cfg.Postgres.Host,
		Port:            cfg.Postgres.Port,
		User:            cfg.Postgres.User,
		Password:        cfg.Postgres.Password,
		DBName:          cfg.Postgres.DBName,
		SSLMode:         cfg.Postgres.SSLMode,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Postgres.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Postgres.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL database", zap.String("db_name", cfg.Postgres.DBName))

	if cfg.Postgres.AutoMigrate {
		if err := postgres.Migrate(db); err != nil {
			appLogger.Fatal("Could not apply migrations", zap.Error(err))
		}
	}

	// 4. Initialize Repositories
	invRepo := invRepoPkg.NewPGRepository(db)

	// 5. Initialize Cache
	var backend cache.Backend
	switch cfg.Redis.Driver {
	case "memory":
		backend = cache.NewMemoryBackend()
		appLogger.Info("Using in-process cache")
	default:
		redisClient, err := cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			PoolSize: cfg.Redis.PoolSize,
		})
		if err != nil {
			// Every read falls through to the store until Redis is back.
			appLogger.Warn("Could not connect to Redis, caching disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			backend = redisClient
			appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
		}
	}
	queryCache := querycache.New(backend, querycache.TTLs{
		Item:      cfg.Cache.ItemTTL,
		List:      cfg.Cache.ListTTL,
		Aggregate: cfg.Cache.AggregateTTL,
	}, cfg.Timeouts.Cache, appLogger)

	// 6. Initialize Kafka
	if cfg.Kafka.EnsureTopics {
		specs := make([]broker.TopicSpec, 0, len(events.Queues()))
		for _, q := range events.Queues() {
			specs = append(specs, broker.TopicSpec{Name: string(q), Retention: cfg.Kafka.MessageRetention})
		}
		tctx, tcancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := broker.EnsureTopics(tctx, cfg.Kafka.Brokers, specs...); err != nil {
			appLogger.Warn("Could not declare Kafka topics", zap.Error(err))
		}
		tcancel()
	}

	kafkaProducer := broker.NewProducer(&broker.Config{Brokers: cfg.Kafka.Brokers})
	defer kafkaProducer.Close()
	dispatcher := events.NewDispatcher(kafkaProducer, cfg.Timeouts.Queue, appLogger)
	appLogger.Info("Kafka producer ready", zap.Strings("brokers", cfg.Kafka.Brokers))

	// 7. Initialize UseCases
	invUC := invUCPkg.NewInventoryUseCase(invRepo, queryCache, dispatcher, appLogger,
		invUCPkg.WithStoreTimeout(cfg.Timeouts.Store),
	)

	// 8. Initialize Handlers
	verifier := auth.NewVerifier(cfg.JWT.SecretKey)
	invHandler := invH.NewInventoryHandler(invUC, appLogger)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			appLogger.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	}))
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok", "timestamp": time.Now().UTC()})
	})
	invHandler.Register(e.Group("/api/inventory", verifier.Middleware()))

	// 9. Run server and listeners until a shutdown signal arrives
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Kafka.EnableConsumers {
		invListener := invListenerPkg.NewInventoryListener(appLogger)
		for queue, handle := range invListener.Handlers() {
			consumer := broker.NewConsumer(&broker.Config{
				Brokers: cfg.Kafka.Brokers,
				Topic:   string(queue),
				GroupID: cfg.Kafka.GroupID,
			})
			defer consumer.Close()

			c := events.NewConsumer(consumer, queue, handle, appLogger)
			g.Go(func() error { return c.Run(gctx) })
		}
	}

	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	g.Go(func() error {
		appLogger.Info("Starting HTTP server", zap.String("port", port))
		if err := e.Start(port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		appLogger.Error("Server stopped with error", zap.Error(err))
		return
	}
	appLogger.Info("Server stopped")
}
