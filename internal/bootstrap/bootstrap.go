// Package bootstrap wires configuration into live infrastructure clients
// and a ready orchestrator.  It exists so the api server, the worker and
// the CLI share one composition root instead of three diverging copies.
package bootstrap

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jurisio/casebrain/internal/application/brain"
	"github.com/jurisio/casebrain/internal/config"
	"github.com/jurisio/casebrain/internal/infrastructure/database/postgres"
	"github.com/jurisio/casebrain/internal/infrastructure/database/postgres/repositories"
	"github.com/jurisio/casebrain/internal/infrastructure/database/redis"
	"github.com/jurisio/casebrain/internal/infrastructure/messaging/kafka"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/internal/infrastructure/storage/minio"
)

// Infra bundles the long-lived infrastructure clients of one process.
type Infra struct {
	Pool   *pgxpool.Pool
	Redis  *redis.Client
	MinIO  *minio.Client
	logger logging.Logger
}

// Connect dials PostgreSQL, Redis and MinIO.  On any failure it closes the
// clients already opened and returns the error.
func Connect(ctx context.Context, cfg *config.Config, logger logging.Logger) (*Infra, error) {
	pool, err := postgres.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	redisCli, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	minioCli, err := minio.NewClient(&cfg.MinIO, logger)
	if err != nil {
		_ = redisCli.Close()
		pool.Close()
		return nil, err
	}

	return &Infra{Pool: pool, Redis: redisCli, MinIO: minioCli, logger: logger}, nil
}

// Close releases all clients.  Safe to call on a partially used Infra.
func (i *Infra) Close() {
	if i.MinIO != nil {
		_ = i.MinIO.Close()
	}
	if i.Redis != nil {
		_ = i.Redis.Close()
	}
	if i.Pool != nil {
		i.Pool.Close()
	}
}

// OrchestratorOptions carries the per-process collaborators that differ
// between the api server, the worker and the CLI.
type OrchestratorOptions struct {
	Metrics brain.Metrics
	Events  brain.EventPublisher
	Cache   brain.SummaryCache
}

// NewOrchestrator builds the analysis orchestrator on top of the connected
// infrastructure: postgres repositories, the minio blob store and whatever
// metrics, events and cache the caller supplies.
func (i *Infra) NewOrchestrator(cfg *config.Config, opts OrchestratorOptions) (*brain.Orchestrator, error) {
	blobs := minio.NewBlobStore(i.MinIO, i.logger)

	return brain.NewOrchestrator(brain.Options{
		Cases:     repositories.NewCaseRepository(i.Pool, i.logger),
		Comms:     repositories.NewMessageRepository(i.Pool, i.logger),
		Billing:   repositories.NewBillingRepository(i.Pool, i.logger),
		Documents: repositories.NewDocumentRepository(i.Pool, i.logger),
		Insights:  repositories.NewInsightRepository(i.Pool, i.logger),
		Blobs:     blobs,

		Logger:  i.logger.Named("brain"),
		Metrics: opts.Metrics,
		Events:  opts.Events,
		Cache:   opts.Cache,

		MaxConcurrent:  cfg.Worker.Concurrency,
		MaxDocsPerCase: cfg.Analysis.MaxDocsPerCase,
	})
}

// NewLogger builds the process logger from the log section of the config.
func NewLogger(cfg config.LogConfig) (logging.Logger, error) {
	return logging.NewLogger(logging.LogConfig{
		Level:            cfg.Level,
		Format:           cfg.Format,
		OutputPaths:      cfg.OutputPaths,
		ErrorOutputPaths: cfg.ErrorOutputPaths,
	})
}

// KafkaProducerConfig maps the flat kafka section onto the producer's
// configuration.
func KafkaProducerConfig(cfg config.KafkaConfig) kafka.ProducerConfig {
	return kafka.ProducerConfig{
		Brokers:       cfg.Brokers,
		MaxRetries:    cfg.ProducerRetries,
		BatchSize:     cfg.BatchSize,
		BatchTimeout:  cfg.BatchTimeout,
		SASLEnabled:   cfg.SASLEnabled,
		SASLMechanism: cfg.SASLMechanism,
		SASLUsername:  cfg.SASLUsername,
		SASLPassword:  cfg.SASLPassword,
		TLSEnabled:    cfg.TLSEnabled,
		TLSCertPath:   cfg.TLSCertPath,
	}
}

// KafkaConsumerConfig maps the flat kafka section onto a group consumer for
// the given topics, with dead-lettering per the worker retry settings.
func KafkaConsumerConfig(cfg *config.Config, topics []string) kafka.ConsumerConfig {
	return kafka.ConsumerConfig{
		Brokers:         cfg.Kafka.Brokers,
		GroupID:         cfg.Kafka.GroupID,
		Topics:          topics,
		AutoOffsetReset: cfg.Kafka.AutoOffsetReset,
		SASLEnabled:     cfg.Kafka.SASLEnabled,
		SASLMechanism:   cfg.Kafka.SASLMechanism,
		SASLUsername:    cfg.Kafka.SASLUsername,
		SASLPassword:    cfg.Kafka.SASLPassword,
		TLSEnabled:      cfg.Kafka.TLSEnabled,
		TLSCertPath:     cfg.Kafka.TLSCertPath,
		RetryConfig: kafka.RetryConfig{
			MaxRetries:      cfg.Worker.MaxRetries,
			RetryBackoff:    cfg.Worker.RetryBackoff,
			DeadLetterTopic: kafka.TopicDeadLetter,
		},
	}
}
