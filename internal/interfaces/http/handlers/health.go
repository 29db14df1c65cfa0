package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
)

// Pinger is implemented by every backing service the readiness probe checks
// (the pgx pool, the redis client and the object store client).
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	checks  map[string]Pinger
	timeout time.Duration
	logger  logging.Logger
}

func NewHealthHandler(logger logging.Logger) *HealthHandler {
	return &HealthHandler{
		checks:  make(map[string]Pinger),
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// Register adds a named dependency to the readiness probe.
func (h *HealthHandler) Register(name string, p Pinger) {
	h.checks[name] = p
}

// Liveness handles GET /healthz.  It answers 200 as long as the process
// serves requests.
func (h *HealthHandler) Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness handles GET /readyz.  It pings every registered dependency and
// answers 503 when any is down.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	status := http.StatusOK
	results := make(map[string]string, len(h.checks))
	for name, p := range h.checks {
		if err := p.Ping(ctx); err != nil {
			results[name] = "down"
			status = http.StatusServiceUnavailable
			h.logger.Warn("Readiness check failed",
				logging.String("dependency", name),
				logging.Err(err))
			continue
		}
		results[name] = "up"
	}

	body := map[string]any{"checks": results}
	if status == http.StatusOK {
		body["status"] = "ready"
	} else {
		body["status"] = "degraded"
	}
	writeJSON(w, status, body)
}
