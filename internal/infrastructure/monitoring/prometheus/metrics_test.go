package prometheus

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
)

func newTestAppMetrics(t *testing.T) (*AppMetrics, MetricsCollector) {
	t.Helper()
	c, err := NewMetricsCollector(CollectorConfig{Namespace: "casebrain"}, logging.NewNopLogger())
	require.NoError(t, err)
	return NewAppMetrics(c), c
}

func TestNewAppMetricsAllRegistered(t *testing.T) {
	m, _ := newTestAppMetrics(t)

	assert.NotNil(t, m.HTTPRequestsTotal)
	assert.NotNil(t, m.HTTPRequestDuration)
	assert.NotNil(t, m.AnalysesTotal)
	assert.NotNil(t, m.AnalysisDuration)
	assert.NotNil(t, m.AnalysisInsightsProduced)
	assert.NotNil(t, m.AnalysisActionsProduced)
	assert.NotNil(t, m.SummariesTotal)
	assert.NotNil(t, m.SummaryCacheHits)
	assert.NotNil(t, m.SummaryCacheMisses)
	assert.NotNil(t, m.InsightsDismissedTotal)
	assert.NotNil(t, m.ActionsResolvedTotal)
	assert.NotNil(t, m.DBQueryDuration)
	assert.NotNil(t, m.ErrorsTotal)
}

func TestRecordHTTPRequest(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordHTTPRequest(m, "GET", "/api/v1/brain/summary", 200, 30*time.Millisecond)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `casebrain_http_requests_total{method="GET",path="/api/v1/brain/summary",status_code="200"} 1`)
	assert.Contains(t, output, "casebrain_http_request_duration_seconds_count")
}

func TestRecordDBQueryError(t *testing.T) {
	m, c := newTestAppMetrics(t)

	RecordDBQuery(m, "postgres", "list_active_cases", 2*time.Millisecond, assert.AnError)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `casebrain_db_query_duration_seconds_count{db="postgres",operation="list_active_cases"} 1`)
	assert.Contains(t, output, `casebrain_errors_total{component="postgres",error_type="query_error"} 1`)
}

func TestBrainMetricsObserveAnalysis(t *testing.T) {
	m, c := newTestAppMetrics(t)
	bm := NewBrainMetrics(m, "worker")

	bm.ObserveAnalysis(120*time.Millisecond, 4, 3)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, `casebrain_analyses_total{status="ok",trigger="worker"} 1`)
	assert.Contains(t, output, `casebrain_analysis_insights_produced_sum{trigger="worker"} 4`)
	assert.Contains(t, output, `casebrain_analysis_actions_produced_sum{trigger="worker"} 3`)
}

func TestBrainMetricsObserveSummary(t *testing.T) {
	m, c := newTestAppMetrics(t)
	bm := NewBrainMetrics(m, "")

	bm.ObserveSummary(50*time.Millisecond, 12)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "casebrain_summaries_total 1")
	assert.Contains(t, output, "casebrain_summary_active_cases_sum 12")
}

func TestBrainMetricsSummaryCacheAccess(t *testing.T) {
	m, c := newTestAppMetrics(t)
	bm := NewBrainMetrics(m, "")

	bm.SummaryCacheAccess(true)
	bm.SummaryCacheAccess(true)
	bm.SummaryCacheAccess(false)

	output := scrapeMetrics(t, c)
	assert.Contains(t, output, "casebrain_summary_cache_hits_total 2")
	assert.Contains(t, output, "casebrain_summary_cache_misses_total 1")
}

func TestBrainMetricsDefaultTrigger(t *testing.T) {
	m, _ := newTestAppMetrics(t)
	bm := NewBrainMetrics(m, "")
	assert.Equal(t, "api", bm.trigger)
}
