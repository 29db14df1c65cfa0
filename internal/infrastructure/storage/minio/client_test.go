package minio

import (
	"context"
	"io"
	"net/url"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/lifecycle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/pkg/errors"
)

type MockMinIOAPI struct {
	mock.Mock
}

func (m *MockMinIOAPI) ListBuckets(ctx context.Context) ([]minio.BucketInfo, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]minio.BucketInfo), args.Error(1)
}

func (m *MockMinIOAPI) BucketExists(ctx context.Context, bucketName string) (bool, error) {
	args := m.Called(ctx, bucketName)
	return args.Bool(0), args.Error(1)
}

func (m *MockMinIOAPI) MakeBucket(ctx context.Context, bucketName string, opts minio.MakeBucketOptions) error {
	args := m.Called(ctx, bucketName, opts)
	return args.Error(0)
}

func (m *MockMinIOAPI) SetBucketLifecycle(ctx context.Context, bucketName string, config *lifecycle.Configuration) error {
	args := m.Called(ctx, bucketName, config)
	return args.Error(0)
}

func (m *MockMinIOAPI) ListObjects(ctx context.Context, bucketName string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo {
	args := m.Called(ctx, bucketName, opts)
	return args.Get(0).(<-chan minio.ObjectInfo)
}

func (m *MockMinIOAPI) StatObject(ctx context.Context, bucketName, objectName string, opts minio.StatObjectOptions) (minio.ObjectInfo, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Get(0).(minio.ObjectInfo), args.Error(1)
}

func (m *MockMinIOAPI) GetObject(ctx context.Context, bucketName, objectName string, opts minio.GetObjectOptions) (io.ReadCloser, error) {
	args := m.Called(ctx, bucketName, objectName, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func (m *MockMinIOAPI) PutObject(ctx context.Context, bucketName, objectName string, reader io.Reader, objectSize int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	args := m.Called(ctx, bucketName, objectName, reader, objectSize, opts)
	return args.Get(0).(minio.UploadInfo), args.Error(1)
}

func (m *MockMinIOAPI) RemoveObject(ctx context.Context, bucketName, objectName string, opts minio.RemoveObjectOptions) error {
	args := m.Called(ctx, bucketName, objectName, opts)
	return args.Error(0)
}

func (m *MockMinIOAPI) PresignedGetObject(ctx context.Context, bucketName, objectName string, expiry time.Duration, reqParams url.Values) (*url.URL, error) {
	args := m.Called(ctx, bucketName, objectName, expiry, reqParams)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*url.URL), args.Error(1)
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, "us-east-1", cfg.Region)
	assert.Equal(t, int64(16*1024*1024), cfg.PartSize)
	assert.Equal(t, 3, cfg.MaxRetries)
	assert.Equal(t, time.Hour, cfg.PresignExpiry)
	assert.Equal(t, 7, cfg.TempExpiryDays)
	assert.Equal(t, 30, cfg.ExportExpiryDays)
	assert.Equal(t, "casebrain-documents", cfg.Buckets.Documents)
	assert.Equal(t, "casebrain-exports", cfg.Buckets.Exports)
	assert.Equal(t, "casebrain-temp", cfg.Buckets.Temp)
}

func TestApplyDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := &Config{
		Region:         "eu-west-1",
		TempExpiryDays: 1,
		Buckets:        BucketConfig{Documents: "docs"},
	}
	applyDefaults(cfg)

	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, 1, cfg.TempExpiryDays)
	assert.Equal(t, "docs", cfg.Buckets.Documents)
	assert.Equal(t, "casebrain-exports", cfg.Buckets.Exports)
}

type ClientTestSuite struct {
	suite.Suite
	api    *MockMinIOAPI
	client *Client
}

func (s *ClientTestSuite) SetupTest() {
	s.api = new(MockMinIOAPI)
	s.client = NewClientWithAPI(s.api, &Config{
		Buckets: BucketConfig{Documents: "docs", Exports: "exports", Temp: "temp"},
	}, logging.NewNopLogger())
}

func (s *ClientTestSuite) TestEnsureBucketsCreatesMissing() {
	s.api.On("BucketExists", mock.Anything, "docs").Return(true, nil)
	s.api.On("BucketExists", mock.Anything, "exports").Return(false, nil)
	s.api.On("BucketExists", mock.Anything, "temp").Return(false, nil)
	s.api.On("MakeBucket", mock.Anything, "exports", mock.Anything).Return(nil)
	s.api.On("MakeBucket", mock.Anything, "temp", mock.Anything).Return(nil)

	err := s.client.EnsureBuckets(context.Background())

	s.Require().NoError(err)
	s.api.AssertNumberOfCalls(s.T(), "MakeBucket", 2)
}

func (s *ClientTestSuite) TestEnsureBucketsExistenceCheckFails() {
	s.api.On("BucketExists", mock.Anything, "docs").
		Return(false, assert.AnError)

	err := s.client.EnsureBuckets(context.Background())

	s.Require().Error(err)
	s.True(errors.IsCode(err, errors.ErrCodeExternalService))
	s.api.AssertNotCalled(s.T(), "MakeBucket", mock.Anything, mock.Anything, mock.Anything)
}

func (s *ClientTestSuite) TestSetupLifecycleRules() {
	s.api.On("SetBucketLifecycle", mock.Anything, "temp", mock.MatchedBy(func(c *lifecycle.Configuration) bool {
		return len(c.Rules) == 1 && c.Rules[0].Expiration.Days == 7
	})).Return(nil)
	s.api.On("SetBucketLifecycle", mock.Anything, "exports", mock.MatchedBy(func(c *lifecycle.Configuration) bool {
		return len(c.Rules) == 1 && c.Rules[0].Expiration.Days == 30
	})).Return(nil)

	s.client.SetupLifecycleRules(context.Background())

	s.api.AssertNumberOfCalls(s.T(), "SetBucketLifecycle", 2)
}

func (s *ClientTestSuite) TestSetupLifecycleRulesFailureIsNotFatal() {
	s.api.On("SetBucketLifecycle", mock.Anything, mock.Anything, mock.Anything).
		Return(assert.AnError)

	s.client.SetupLifecycleRules(context.Background())
}

func (s *ClientTestSuite) TestHealthCheckHealthy() {
	s.api.On("ListBuckets", mock.Anything).Return([]minio.BucketInfo{}, nil)
	s.api.On("BucketExists", mock.Anything, mock.Anything).Return(true, nil)

	status := s.client.HealthCheck(context.Background())

	s.True(status.Healthy)
	s.Empty(status.Error)
	s.Len(status.Buckets, 3)
}

func (s *ClientTestSuite) TestHealthCheckMissingBucket() {
	s.api.On("ListBuckets", mock.Anything).Return([]minio.BucketInfo{}, nil)
	s.api.On("BucketExists", mock.Anything, "docs").Return(true, nil)
	s.api.On("BucketExists", mock.Anything, "exports").Return(false, nil)
	s.api.On("BucketExists", mock.Anything, "temp").Return(true, nil)

	status := s.client.HealthCheck(context.Background())

	s.False(status.Healthy)
	s.Contains(status.Error, "exports")
}

func (s *ClientTestSuite) TestHealthCheckUnreachable() {
	s.api.On("ListBuckets", mock.Anything).Return(nil, assert.AnError)

	status := s.client.HealthCheck(context.Background())

	s.False(status.Healthy)
	s.NotEmpty(status.Error)
}

func (s *ClientTestSuite) TestPing() {
	s.api.On("ListBuckets", mock.Anything).Return([]minio.BucketInfo{}, nil).Once()
	s.Require().NoError(s.client.Ping(context.Background()))

	s.api.On("ListBuckets", mock.Anything).Return(nil, assert.AnError).Once()
	err := s.client.Ping(context.Background())
	s.True(errors.IsCode(err, errors.ErrCodeServiceUnavailable))
}

func (s *ClientTestSuite) TestCloseIsIdempotent() {
	s.Require().NoError(s.client.Close())
	s.Require().NoError(s.client.Close())
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientTestSuite))
}
