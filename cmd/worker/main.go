// The casebrain analysis worker: consumes case-updated events from Kafka
// and re-runs the analysis for each changed case, serialized per case with
// a Redis lock so concurrent group members never analyze the same case
// twice.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jurisio/casebrain/internal/application/brain"
	"github.com/jurisio/casebrain/internal/bootstrap"
	"github.com/jurisio/casebrain/internal/config"
	"github.com/jurisio/casebrain/internal/infrastructure/database/redis"
	"github.com/jurisio/casebrain/internal/infrastructure/messaging/kafka"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/prometheus"
	"github.com/jurisio/casebrain/pkg/errors"
	"github.com/jurisio/casebrain/pkg/types/common"
)

const (
	defaultConfigPath = "configs/config.yaml"
	healthAddr        = ":8081"
)

func main() {
	configPath := flag.String("config", defaultConfigPath, "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "worker: %v\n", err)
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
	logger = logger.Named("worker")
	logger.Info("Starting casebrain worker",
		logging.Int("consumers", cfg.Worker.Concurrency),
		logging.String("group_id", cfg.Kafka.GroupID))

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

	orchestrator, err := infra.NewOrchestrator(cfg, bootstrap.OrchestratorOptions{
		Metrics: prometheus.NewBrainMetrics(appMetrics, "worker"),
		Events:  kafka.NewPublisher(producer, "worker", logger),
		Cache: redis.NewSummaryCache(infra.Redis, logger,
			redis.WithTTL(cfg.Analysis.SummaryCacheTTL)),
	})
	if err != nil {
		return err
	}

	w := &analysisWorker{
		brain:   orchestrator,
		locks:   redis.NewLockFactory(infra.Redis, logger),
		lockTTL: cfg.Worker.LockTTL,
		timeout: cfg.Analysis.Timeout,
		logger:  logger,
	}

	// One group consumer per concurrency slot: the group balances
	// partitions across them, so per-case ordering is preserved while
	// distinct cases are analyzed in parallel.
	consumers := make([]*kafka.Consumer, 0, cfg.Worker.Concurrency)
	for i := 0; i < cfg.Worker.Concurrency; i++ {
		consumer, err := kafka.NewConsumer(
			bootstrap.KafkaConsumerConfig(cfg, []string{kafka.TopicCaseUpdated}), logger)
		if err != nil {
			closeConsumers(consumers)
			return err
		}
		consumer.Subscribe(kafka.TopicCaseUpdated, w.handleCaseUpdated)
		if err := consumer.Start(ctx); err != nil {
			closeConsumers(consumers)
			return err
		}
		consumers = append(consumers, consumer)
	}
	defer closeConsumers(consumers)

	go refreshSummary(ctx, orchestrator, cfg.Analysis.SummaryCacheTTL, logger)

	healthSrv := startHealthServer(collector, logger)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = healthSrv.Shutdown(shutdownCtx)
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received, draining consumers")
	return nil
}

func closeConsumers(consumers []*kafka.Consumer) {
	for _, c := range consumers {
		_ = c.Close()
	}
}

// analysisWorker re-analyzes one case per inbound event.
type analysisWorker struct {
	brain   *brain.Orchestrator
	locks   redis.LockFactory
	lockTTL time.Duration
	timeout time.Duration
	logger  logging.Logger
}

func (w *analysisWorker) handleCaseUpdated(ctx context.Context, msg *kafka.Message) error {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return err
	}
	var payload kafka.CaseUpdatedPayload
	if err := env.DecodePayload(&payload); err != nil {
		return err
	}
	if payload.CaseID == "" {
		return errors.New(errors.ErrCodeValidation, "case.updated event without case_id")
	}

	// The lock fences off other group members re-balancing onto the same
	// case mid-analysis.  A held lock means an analysis is already
	// running; skipping is safe because that run sees the same data.
	mutex := w.locks.NewMutex("analysis:"+payload.CaseID,
		redis.WithLockTTL(w.lockTTL))
	acquired, err := mutex.TryLock(ctx)
	if err != nil {
		return err
	}
	if !acquired {
		w.logger.Debug("Analysis already in progress, skipping",
			logging.String("case_id", payload.CaseID))
		return nil
	}
	defer func() {
		unlockCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = mutex.Unlock(unlockCtx)
	}()

	analysisCtx := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		analysisCtx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	start := time.Now()
	analysis, err := w.brain.AnalyzeCase(analysisCtx, common.ID(payload.CaseID))
	if err != nil {
		if errors.IsNotFound(err) {
			// The case was deleted after the event was published; the
			// event is stale, not failed.
			w.logger.Warn("Case vanished before analysis",
				logging.String("case_id", payload.CaseID))
			return nil
		}
		return err
	}

	w.logger.Info("Case re-analyzed",
		logging.String("case_id", payload.CaseID),
		logging.String("reason", payload.Reason),
		logging.Int("insights", len(analysis.Insights)),
		logging.Int("actions", len(analysis.Actions)),
		logging.Duration("duration", time.Since(start)))
	return nil
}

// refreshSummary keeps the dashboard summary cache warm: each tick either
// hits the still-valid cache cheaply or rebuilds an expired one, so a
// dashboard request after a quiet period rarely pays the full aggregation
// cost.
func refreshSummary(ctx context.Context, orchestrator *brain.Orchestrator, ttl time.Duration, logger logging.Logger) {
	if ttl <= 0 {
		return
	}
	interval := ttl * 9 / 10
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := orchestrator.GetBrainSummary(ctx); err != nil {
				logger.Warn("Summary refresh failed", logging.Err(err))
			}
		}
	}
}

// startHealthServer exposes liveness and metrics for the worker pod.
func startHealthServer(collector prometheus.MetricsCollector, logger logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{Addr: healthAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Worker health server failed", logging.Err(err))
		}
	}()
	return srv
}
