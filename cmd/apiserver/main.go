// The casebrain API server: REST interface over the case analysis
// orchestrator, plus health probes and Prometheus metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jurisio/casebrain/internal/bootstrap"
	"github.com/jurisio/casebrain/internal/config"
	"github.com/jurisio/casebrain/internal/infrastructure/database/postgres/repositories"
	"github.com/jurisio/casebrain/internal/infrastructure/database/redis"
	"github.com/jurisio/casebrain/internal/infrastructure/messaging/kafka"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/prometheus"
	"github.com/jurisio/casebrain/internal/infrastructure/storage/minio"
	httpserver "github.com/jurisio/casebrain/internal/interfaces/http"
	"github.com/jurisio/casebrain/internal/interfaces/http/handlers"
	"github.com/jurisio/casebrain/internal/interfaces/http/middleware"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := bootstrap.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	logger = logger.Named("apiserver")
	logger.Info("Starting casebrain API server",
		logging.String("addr", cfg.Server.Addr()))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	infra, err := bootstrap.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Metrics.Namespace,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return err
	}
	appMetrics := prometheus.NewAppMetrics(collector)

	producer, err := kafka.NewProducer(bootstrap.KafkaProducerConfig(cfg.Kafka), logger)
	if err != nil {
		return err
	}
	defer producer.Close()

	if cfg.Kafka.EnsureTopics {
		if err := ensureTopics(ctx, cfg, logger); err != nil {
			return err
		}
	}

	orchestrator, err := infra.NewOrchestrator(cfg, bootstrap.OrchestratorOptions{
		Metrics: prometheus.NewBrainMetrics(appMetrics, "api"),
		Events:  kafka.NewPublisher(producer, "apiserver", logger),
		Cache: redis.NewSummaryCache(infra.Redis, logger,
			redis.WithTTL(cfg.Analysis.SummaryCacheTTL)),
	})
	if err != nil {
		return err
	}

	health := handlers.NewHealthHandler(logger)
	health.Register("postgres", infra.Pool)
	health.Register("redis", infra.Redis)
	health.Register("minio", infra.MinIO)

	docs := repositories.NewDocumentRepository(infra.Pool, logger)
	blobs := minio.NewBlobStore(infra.MinIO, logger)
	router := httpserver.NewRouter(httpserver.RouterConfig{
		Brain:     handlers.NewBrainHandler(orchestrator, logger),
		Documents: handlers.NewDocumentHandler(docs, blobs, logger),
		Health:    health,
		RateLimit: defaultRateLimit(),
		Logger:    logger,
		Metrics:   appMetrics,
		Collector: collector,
	})

	srv := httpserver.NewServer(cfg.Server, router, logger)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		return err
	}
	logger.Info("API server stopped")
	return <-errCh
}

func defaultRateLimit() *middleware.RateLimitConfig {
	cfg := middleware.DefaultRateLimitConfig()
	return &cfg
}

func ensureTopics(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	manager, err := kafka.NewTopicManager(cfg.Kafka.Brokers, logger)
	if err != nil {
		return err
	}
	defer manager.Close()
	return manager.EnsureDefaultTopics(ctx)
}
