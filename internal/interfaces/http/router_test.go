package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurisio/casebrain/internal/domain/insight"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/prometheus"
	"github.com/jurisio/casebrain/internal/interfaces/http/handlers"
	braintypes "github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

type fakeBrain struct{}

func (fakeBrain) AnalyzeCase(_ context.Context, caseID common.ID) (*braintypes.CaseAnalysis, error) {
	return &braintypes.CaseAnalysis{CaseID: string(caseID)}, nil
}

func (fakeBrain) GetBrainSummary(context.Context) (*braintypes.BrainSummary, error) {
	return &braintypes.BrainSummary{ActiveCases: 3}, nil
}

func (fakeBrain) ListCaseInsights(context.Context, common.ID) ([]insight.Insight, error) {
	return nil, nil
}

func (fakeBrain) ListCaseActions(context.Context, common.ID) ([]insight.ActionSuggestion, error) {
	return nil, nil
}

func (fakeBrain) DismissInsight(_ context.Context, id common.ID, _ common.UserID) (*insight.Insight, error) {
	return &insight.Insight{ID: id, Status: insight.InsightDismissed}, nil
}

func (fakeBrain) ApproveAction(_ context.Context, id common.ID, _ common.UserID) (*insight.ActionSuggestion, error) {
	return &insight.ActionSuggestion{ID: id, Status: insight.ActionApproved}, nil
}

func (fakeBrain) RejectAction(_ context.Context, id common.ID, _ common.UserID) (*insight.ActionSuggestion, error) {
	return &insight.ActionSuggestion{ID: id, Status: insight.ActionRejected}, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	logger := logging.NewNopLogger()
	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{Namespace: "casebrain"}, logger)
	require.NoError(t, err)

	health := handlers.NewHealthHandler(logger)
	return NewRouter(RouterConfig{
		Brain:     handlers.NewBrainHandler(fakeBrain{}, logger),
		Health:    health,
		Logger:    logger,
		Collector: collector,
	})
}

func get(h http.Handler, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestRouterMountsProbesAndMetrics(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusOK, get(r, "/healthz").Code)
	assert.Equal(t, http.StatusOK, get(r, "/readyz").Code)
	assert.Equal(t, http.StatusOK, get(r, "/metrics").Code)
}

func TestRouterMountsAPIRoutes(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/cases/c-1/analyze", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"c-1"`)

	assert.Equal(t, http.StatusOK, get(r, "/api/v1/cases/c-1/insights").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/cases/c-1/actions").Code)
	assert.Equal(t, http.StatusOK, get(r, "/api/v1/brain/summary").Code)
}

func TestRouterUnknownRouteIs404(t *testing.T) {
	r := newTestRouter(t)

	assert.Equal(t, http.StatusNotFound, get(r, "/api/v1/nope").Code)
}

func TestRouterToleratesNilHandlers(t *testing.T) {
	r := NewRouter(RouterConfig{})

	assert.Equal(t, http.StatusNotFound, get(r, "/healthz").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/v1/cases/c-1/documents").Code)
}

func TestRouterMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/v1/brain/summary", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
