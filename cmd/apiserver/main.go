// apiserver is the commerce-batch API server entry point.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	appproduct "github.com/retailcore/commerce-batch/internal/application/product"
	"github.com/retailcore/commerce-batch/internal/batch"
	"github.com/retailcore/commerce-batch/internal/config"
	domainProduct "github.com/retailcore/commerce-batch/internal/domain/product"
	"github.com/retailcore/commerce-batch/internal/infrastructure/database/postgres"
	"github.com/retailcore/commerce-batch/internal/infrastructure/database/postgres/repositories"
	"github.com/retailcore/commerce-batch/internal/infrastructure/database/redis"
	"github.com/retailcore/commerce-batch/internal/infrastructure/messaging/kafka"
	"github.com/retailcore/commerce-batch/internal/infrastructure/monitoring/logging"
	"github.com/retailcore/commerce-batch/internal/infrastructure/monitoring/prometheus"
	httpserver "github.com/retailcore/commerce-batch/internal/interfaces/http"
	"github.com/retailcore/commerce-batch/internal/interfaces/http/handlers"
	"github.com/retailcore/commerce-batch/internal/interfaces/http/middleware"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file; environment only when empty")
	migrationsDir := flag.String("migrations", "", "run database migrations from this directory before serving")
	flag.Parse()

	if err := run(*configPath, *migrationsDir); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, migrationsDir string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.Load(configPath)
	} else {
		cfg, err = config.LoadFromEnv()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := logging.NewLogger(logging.LogConfig{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	logger.Info("starting commerce-batch API server", logging.Int("port", cfg.Server.Port))

	// Postgres.
	conn, err := postgres.NewConnection(cfg.Database, logger.Named("postgres"))
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer conn.Close()
	if migrationsDir == "" {
		migrationsDir = cfg.Database.MigrationPath
	}
	if migrationsDir != "" {
		if err := conn.RunMigrations(migrationsDir); err != nil {
			return fmt.Errorf("migrations failed: %w", err)
		}
	}

	// Redis.
	redisClient, err := redis.NewClient(cfg.Redis, logger.Named("redis"))
	if err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	defer redisClient.Close()
	cacheOpts := []redis.CacheOption{}
	if cfg.Redis.KeyPrefix != "" {
		cacheOpts = append(cacheOpts, redis.WithPrefix(cfg.Redis.KeyPrefix))
	}
	if cfg.Redis.DefaultTTL > 0 {
		cacheOpts = append(cacheOpts, redis.WithDefaultTTL(cfg.Redis.DefaultTTL))
	}
	cache := redis.NewCache(redisClient, logger.Named("cache"), cacheOpts...)

	// Kafka.
	producer, err := kafka.NewProducer(cfg.Kafka, logger.Named("kafka"))
	if err != nil {
		return fmt.Errorf("failed to build kafka producer: %w", err)
	}
	defer producer.Close()

	// Batch engine.
	metrics := prometheus.NewMetrics("")
	repo := repositories.NewProductRepository(conn.DB(), logger.Named("repository"))
	executor := appproduct.NewExecutor(repo, logger.Named("executor"),
		appproduct.WithPublisher(producer),
		appproduct.WithCache(cache))
	processor := batch.NewProcessor[domainProduct.BatchData](cfg.Batch, executor,
		batch.WithLogger[domainProduct.BatchData](logger.Named("batch")),
		batch.WithMetrics[domainProduct.BatchData](metrics))

	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go processor.RunCleanup(cleanupCtx)

	// HTTP surface.
	healthHandler := handlers.NewHealthHandler(logger.Named("health"))
	healthHandler.Register("postgres", conn)
	healthHandler.Register("redis", redisClient)

	router := httpserver.NewRouter(httpserver.RouterConfig{
		BatchHandler:      handlers.NewBatchHandler(processor, cfg.Server.MaxBodySize, logger.Named("handler"), handlers.WithEventPublisher(producer)),
		HealthHandler:     healthHandler,
		TenantMiddleware:  middleware.NewTenantMiddleware(cfg.Multitenancy, logger.Named("tenant")),
		LoggingMiddleware: middleware.NewLoggingMiddleware(logger.Named("http"), "/healthz", "/readyz", "/metrics"),
		MetricsMiddleware: middleware.NewMetricsMiddleware(metrics),
		MetricsHandler:    metrics.Handler(),
		Logger:            logger,
	})

	server := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutdown signal received", logging.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	}

	stopCleanup()
	if err := server.Stop(context.Background()); err != nil {
		return err
	}
	logger.Info("server stopped")
	return nil
}
