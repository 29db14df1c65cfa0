package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8081
database:
  host: db.internal
  user: app
  password: secret
  database: casebrain
redis:
  addr: cache.internal:6379
kafka:
  brokers: ["broker-1:9092", "broker-2:9092"]
  group_id: casebrain-workers
minio:
  endpoint: objects.internal:9000
  access_key_id: key
  secret_access_key: secret
log:
  level: debug
analysis:
  max_docs_per_case: 10
  summary_cache_ttl: 2m
`

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfigFile(t, validConfigYAML))

	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "app", cfg.Database.User)
	assert.Equal(t, "cache.internal:6379", cfg.Redis.Addr)
	assert.Equal(t, []string{"broker-1:9092", "broker-2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "objects.internal:9000", cfg.MinIO.Endpoint)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, 10, cfg.Analysis.MaxDocsPerCase)
	assert.Equal(t, 2*time.Minute, cfg.Analysis.SummaryCacheTTL)

	// unset fields picked up defaults
	assert.Equal(t, DefaultDBPort, cfg.Database.Port)
	assert.Equal(t, "earliest", cfg.Kafka.AutoOffsetReset)
	assert.Equal(t, DefaultMetricsPath, cfg.Metrics.Path)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadInvalidConfigFailsValidation(t *testing.T) {
	path := writeConfigFile(t, validConfigYAML+"\nworker:\n  concurrency: -1\n")

	_, err := Load(path)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "worker.concurrency")
}

func TestLoadEnvOverridesFile(t *testing.T) {
	t.Setenv("CASEBRAIN_DATABASE_HOST", "env-db.internal")
	t.Setenv("CASEBRAIN_LOG_LEVEL", "warn")

	cfg, err := Load(writeConfigFile(t, validConfigYAML))

	require.NoError(t, err)
	assert.Equal(t, "env-db.internal", cfg.Database.Host)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CASEBRAIN_DATABASE_USER", "app")
	t.Setenv("CASEBRAIN_KAFKA_GROUP_ID", "env-workers")

	cfg, err := LoadFromEnv()

	require.NoError(t, err)
	assert.Equal(t, "app", cfg.Database.User)
	assert.Equal(t, "env-workers", cfg.Kafka.GroupID)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
}

func TestLoadFromEnvMissingRequired(t *testing.T) {
	// no CASEBRAIN_DATABASE_USER set
	_, err := LoadFromEnv()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.user")
}

func TestMustLoadPanicsOnError(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "nope.yaml"))
	})
}
