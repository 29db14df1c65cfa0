// Package http assembles the engine's HTTP surface: the chi route tree, the
// middleware stack and the server lifecycle.
package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/prometheus"
	"github.com/jurisio/casebrain/internal/interfaces/http/handlers"
	"github.com/jurisio/casebrain/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handler and middleware dependencies for the
// complete route tree.  Nil middleware entries are skipped, nil handlers
// leave their routes unmounted.
type RouterConfig struct {
	Brain     *handlers.BrainHandler
	Documents *handlers.DocumentHandler
	Health    *handlers.HealthHandler

	CORS      *middleware.CORSConfig
	RateLimit *middleware.RateLimitConfig

	Logger    logging.Logger
	Metrics   *prometheus.AppMetrics
	Collector prometheus.MetricsCollector
}

// NewRouter builds the chi route tree: public health probes and metrics,
// then the /api/v1 resource groups.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	if cfg.CORS != nil {
		r.Use(middleware.CORS(*cfg.CORS))
	}
	if cfg.Logger != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, middleware.DefaultLoggingConfig()))
	}
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}
	if cfg.RateLimit != nil {
		r.Use(middleware.RateLimit(*cfg.RateLimit))
	}

	if cfg.Health != nil {
		r.Get("/healthz", cfg.Health.Liveness)
		r.Get("/readyz", cfg.Health.Readiness)
	}
	if cfg.Collector != nil {
		r.Handle("/metrics", cfg.Collector.Handler())
	}

	r.Route("/api/v1", func(api chi.Router) {
		registerCaseRoutes(api, cfg.Brain, cfg.Documents)
		registerLifecycleRoutes(api, cfg.Brain)
		registerDashboardRoutes(api, cfg.Brain)
	})

	return r
}

// registerCaseRoutes mounts per-case analysis and document endpoints.
func registerCaseRoutes(r chi.Router, brain *handlers.BrainHandler, docs *handlers.DocumentHandler) {
	r.Route("/cases/{caseID}", func(cr chi.Router) {
		if brain != nil {
			cr.Post("/analyze", brain.AnalyzeCase)
			cr.Get("/insights", brain.ListInsights)
			cr.Get("/actions", brain.ListActions)
		}
		if docs != nil {
			cr.Get("/documents", docs.List)
			cr.Get("/documents/{documentID}/url", docs.DownloadURL)
		}
	})
}

// registerLifecycleRoutes mounts insight dismissal and action resolution.
func registerLifecycleRoutes(r chi.Router, brain *handlers.BrainHandler) {
	if brain == nil {
		return
	}
	r.Post("/insights/{insightID}/dismiss", brain.DismissInsight)
	r.Post("/actions/{actionID}/approve", brain.ApproveAction)
	r.Post("/actions/{actionID}/reject", brain.RejectAction)
}

// registerDashboardRoutes mounts the practice-wide summary.
func registerDashboardRoutes(r chi.Router, brain *handlers.BrainHandler) {
	if brain == nil {
		return
	}
	r.Get("/brain/summary", brain.GetSummary)
}
