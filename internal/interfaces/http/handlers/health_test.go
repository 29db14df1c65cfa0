package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/pkg/errors"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestLiveness(t *testing.T) {
	h := NewHealthHandler(logging.NewNopLogger())

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestReadinessAllUp(t *testing.T) {
	h := NewHealthHandler(logging.NewNopLogger())
	h.Register("postgres", pingFunc(func(context.Context) error { return nil }))
	h.Register("redis", pingFunc(func(context.Context) error { return nil }))

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body.Status)
	assert.Equal(t, map[string]string{"postgres": "up", "redis": "up"}, body.Checks)
}

func TestReadinessDependencyDown(t *testing.T) {
	h := NewHealthHandler(logging.NewNopLogger())
	h.Register("postgres", pingFunc(func(context.Context) error { return nil }))
	h.Register("minio", pingFunc(func(context.Context) error {
		return errors.New(errors.ErrCodeServiceUnavailable, "object store unreachable")
	}))

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var body struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "down", body.Checks["minio"])
	assert.Equal(t, "up", body.Checks["postgres"])
}

func TestReadinessNoChecksRegistered(t *testing.T) {
	h := NewHealthHandler(logging.NewNopLogger())

	rec := httptest.NewRecorder()
	h.Readiness(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
