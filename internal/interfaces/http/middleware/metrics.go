package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/prometheus"
)

// Metrics records request count, duration and in-flight gauge per route.
// The chi route pattern is used as the path label so /cases/{caseID}/insights
// stays one series regardless of the case ID.
func Metrics(m *prometheus.AppMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m == nil {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			m.HTTPActiveRequests.WithLabelValues().Inc()
			sw := newStatusWriter(w)

			next.ServeHTTP(sw, r)

			m.HTTPActiveRequests.WithLabelValues().Dec()
			path := chi.RouteContext(r.Context()).RoutePattern()
			if path == "" {
				path = r.URL.Path
			}
			prometheus.RecordHTTPRequest(m, r.Method, path, sw.status, time.Since(start))
		})
	}
}
