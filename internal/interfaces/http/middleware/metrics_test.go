package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/prometheus"
)

func newTestMetrics(t *testing.T) (*prometheus.AppMetrics, prometheus.MetricsCollector) {
	t.Helper()
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace: "casebrain",
	}, logging.NewNopLogger())
	require.NoError(t, err)
	return prometheus.NewAppMetrics(collector), collector
}

func scrape(t *testing.T, collector prometheus.MetricsCollector) string {
	t.Helper()
	rec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestMetricsMiddlewareRecordsRoutePattern(t *testing.T) {
	metrics, collector := newTestMetrics(t)

	r := chi.NewRouter()
	r.Use(Metrics(metrics))
	r.Get("/cases/{caseID}/insights", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cases/c-42/insights", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := scrape(t, collector)
	assert.Contains(t, body, `casebrain_http_requests_total{method="GET",path="/cases/{caseID}/insights",status_code="200"} 1`)
	assert.Contains(t, body, "casebrain_http_active_requests 0")
}

func TestMetricsMiddlewareNilMetricsPassesThrough(t *testing.T) {
	handler := Metrics(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusTeapot, rec.Code)
}
