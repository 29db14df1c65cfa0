// Package minio wraps the MinIO SDK behind a small interface so the blob
// store can be unit-tested without a live object store.  Documents hold the
// extracted plain text the classifier consumes; exports and temp objects are
// expired by bucket lifecycle rules.
package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/minio/minio-go/v7/pkg/lifecycle"

	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/pkg/errors"
)

// MinIOAPI is the slice of the MinIO SDK the client and blob store use.
// GetObject returns io.ReadCloser rather than *minio.Object so tests can
// serve object bodies from memory.
type MinIOAPI interface {
	ListBuckets(ctx context.Context) ([]minio.BucketInfo, error)
	BucketExists(ctx context.Context, bucketName string) (bool, error)
	MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error
	SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error
	ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error)
	PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error
	PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error)
}

// sdkAdapter narrows *minio.Client.GetObject to io.ReadCloser; every other
// MinIOAPI method is promoted from the embedded client unchanged.
type sdkAdapter struct {
	*minio.Client
}

func (a sdkAdapter) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	return a.Client.GetObject(ctx, bucketName, objectName, opts)
}

// BucketConfig names the buckets the engine uses.
type BucketConfig struct {
	Documents string `mapstructure:"documents"`
	Exports   string `mapstructure:"exports"`
	Temp      string `mapstructure:"temp"`
}

// Config carries the object-store connection settings.
type Config struct {
	Endpoint         string        `mapstructure:"endpoint"`
	AccessKeyID      string        `mapstructure:"access_key_id"`
	SecretAccessKey  string        `mapstructure:"secret_access_key"`
	UseSSL           bool          `mapstructure:"use_ssl"`
	Region           string        `mapstructure:"region"`
	Buckets          BucketConfig  `mapstructure:"buckets"`
	PartSize         int64         `mapstructure:"part_size"`
	MaxRetries       int           `mapstructure:"max_retries"`
	PresignExpiry    time.Duration `mapstructure:"presign_expiry"`
	TempExpiryDays   int           `mapstructure:"temp_expiry_days"`
	ExportExpiryDays int           `mapstructure:"export_expiry_days"`
}

// Client owns the MinIO connection and bucket provisioning.
type Client struct {
	api    MinIOAPI
	config *Config
	logger logging.Logger

	mu     sync.Mutex
	closed bool
}

// NewClient connects to the object store, verifies reachability and ensures
// the configured buckets and lifecycle rules exist.
func NewClient(cfg *Config, logger logging.Logger) (*Client, error) {
	applyDefaults(cfg)

	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "invalid object store configuration")
	}

	c := &Client{api: sdkAdapter{mc}, config: cfg, logger: logger}

	pingCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := c.api.ListBuckets(pingCtx); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "object store is unreachable")
	}

	if err := c.EnsureBuckets(pingCtx); err != nil {
		return nil, err
	}
	c.SetupLifecycleRules(pingCtx)

	logger.Info("Connected to object store",
		logging.String("endpoint", cfg.Endpoint),
		logging.String("documents_bucket", cfg.Buckets.Documents))
	return c, nil
}

// NewClientWithAPI wires a pre-built API implementation.  Tests use it with
// mocks; EnsureBuckets and lifecycle setup are left to the caller.
func NewClientWithAPI(api MinIOAPI, cfg *Config, logger logging.Logger) *Client {
	applyDefaults(cfg)
	return &Client{api: api, config: cfg, logger: logger}
}

func applyDefaults(cfg *Config) {
	if cfg.Region == "" {
		cfg.Region = "us-east-1"
	}
	if cfg.PartSize == 0 {
		cfg.PartSize = 16 * 1024 * 1024
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.PresignExpiry == 0 {
		cfg.PresignExpiry = time.Hour
	}
	if cfg.TempExpiryDays == 0 {
		cfg.TempExpiryDays = 7
	}
	if cfg.ExportExpiryDays == 0 {
		cfg.ExportExpiryDays = 30
	}
	if cfg.Buckets.Documents == "" {
		cfg.Buckets.Documents = "casebrain-documents"
	}
	if cfg.Buckets.Exports == "" {
		cfg.Buckets.Exports = "casebrain-exports"
	}
	if cfg.Buckets.Temp == "" {
		cfg.Buckets.Temp = "casebrain-temp"
	}
}

// EnsureBuckets creates any configured bucket that does not exist yet.
func (c *Client) EnsureBuckets(ctx context.Context) error {
	buckets := []string{
		c.config.Buckets.Documents,
		c.config.Buckets.Exports,
		c.config.Buckets.Temp,
	}
	for _, bucket := range buckets {
		exists, err := c.api.BucketExists(ctx, bucket)
		if err != nil {
			return errors.Wrap(err, errors.ErrCodeExternalService, "failed to check bucket existence")
		}
		if exists {
			continue
		}
		if err := c.api.MakeBucket(ctx, bucket, minio.MakeBucketOptions{Region: c.config.Region}); err != nil {
			return errors.Wrap(err, errors.ErrCodeExternalService, fmt.Sprintf("failed to create bucket %s", bucket))
		}
		c.logger.Info("Created bucket", logging.String("bucket", bucket))
	}
	return nil
}

// SetupLifecycleRules installs expiry rules on the temp and exports buckets.
// Failures are logged, not fatal: a store without lifecycle support still works.
func (c *Client) SetupLifecycleRules(ctx context.Context) {
	rules := []struct {
		bucket string
		ruleID string
		days   int
	}{
		{c.config.Buckets.Temp, "temp-cleanup", c.config.TempExpiryDays},
		{c.config.Buckets.Exports, "exports-cleanup", c.config.ExportExpiryDays},
	}
	for _, r := range rules {
		lc := lifecycle.NewConfiguration()
		lc.Rules = []lifecycle.Rule{
			{
				ID:     r.ruleID,
				Status: "Enabled",
				Expiration: lifecycle.Expiration{
					Days: lifecycle.ExpirationDays(r.days),
				},
			},
		}
		if err := c.api.SetBucketLifecycle(ctx, r.bucket, lc); err != nil {
			c.logger.Warn("Failed to set bucket lifecycle",
				logging.String("bucket", r.bucket),
				logging.Err(err))
		}
	}
}

// API exposes the underlying SDK slice to the blob store.
func (c *Client) API() MinIOAPI {
	return c.api
}

// Config returns the resolved configuration, defaults applied.
func (c *Client) Config() *Config {
	return c.config
}

// Ping verifies the store answers within the context deadline.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.api.ListBuckets(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "object store ping failed")
	}
	return nil
}

// HealthStatus reports store reachability and per-bucket presence.
type HealthStatus struct {
	Healthy bool
	Latency time.Duration
	Buckets map[string]bool
	Error   string
}

// HealthCheck lists buckets and verifies each configured bucket exists.
func (c *Client) HealthCheck(ctx context.Context) *HealthStatus {
	start := time.Now()
	_, err := c.api.ListBuckets(ctx)
	status := &HealthStatus{
		Healthy: err == nil,
		Latency: time.Since(start),
		Buckets: make(map[string]bool),
	}
	if err != nil {
		status.Error = err.Error()
		return status
	}
	for _, b := range []string{c.config.Buckets.Documents, c.config.Buckets.Exports, c.config.Buckets.Temp} {
		exists, _ := c.api.BucketExists(ctx, b)
		status.Buckets[b] = exists
		if !exists {
			status.Healthy = false
			status.Error = fmt.Sprintf("bucket %s missing", b)
		}
	}
	return status
}

// Close marks the client closed.  The SDK keeps no long-lived connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
