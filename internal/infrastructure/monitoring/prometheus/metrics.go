package prometheus

import (
	"fmt"
	"time"
)

// AppMetrics holds all application metrics.
type AppMetrics struct {
	// HTTP layer
	HTTPRequestsTotal   CounterVec
	HTTPRequestDuration HistogramVec
	HTTPActiveRequests  GaugeVec

	// Analysis layer
	AnalysesTotal            CounterVec
	AnalysisDuration         HistogramVec
	AnalysisInsightsProduced HistogramVec
	AnalysisActionsProduced  HistogramVec

	// Dashboard summary layer
	SummariesTotal     CounterVec
	SummaryDuration    HistogramVec
	SummaryActiveCases HistogramVec
	SummaryCacheHits   CounterVec
	SummaryCacheMisses CounterVec

	// Insight lifecycle
	InsightsDismissedTotal CounterVec
	ActionsResolvedTotal   CounterVec

	// Infrastructure layer
	DBConnectionPoolSize   GaugeVec
	DBConnectionPoolActive GaugeVec
	DBQueryDuration        HistogramVec
	MessageQueueLag        GaugeVec
	MessageProcessDuration HistogramVec

	// System health
	ServiceUptime     GaugeVec
	HealthCheckStatus GaugeVec
	ErrorsTotal       CounterVec
}

var (
	DefaultHTTPDurationBuckets     = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	DefaultAnalysisDurationBuckets = []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 15, 60}
	DefaultCountBuckets            = []float64{0, 1, 2, 5, 10, 20, 50, 100}
	DefaultDBDurationBuckets       = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 5}
)

// NewAppMetrics registers the full metric set.
func NewAppMetrics(collector MetricsCollector) *AppMetrics {
	m := &AppMetrics{}

	// HTTP
	m.HTTPRequestsTotal = collector.RegisterCounter("http_requests_total", "Total HTTP requests", "method", "path", "status_code")
	m.HTTPRequestDuration = collector.RegisterHistogram("http_request_duration_seconds", "HTTP request duration", DefaultHTTPDurationBuckets, "method", "path")
	m.HTTPActiveRequests = collector.RegisterGauge("http_active_requests", "Active HTTP requests")

	// Analysis
	m.AnalysesTotal = collector.RegisterCounter("analyses_total", "Case analyses run", "trigger", "status")
	m.AnalysisDuration = collector.RegisterHistogram("analysis_duration_seconds", "Case analysis duration", DefaultAnalysisDurationBuckets, "trigger")
	m.AnalysisInsightsProduced = collector.RegisterHistogram("analysis_insights_produced", "Insights produced per analysis", DefaultCountBuckets, "trigger")
	m.AnalysisActionsProduced = collector.RegisterHistogram("analysis_actions_produced", "Action suggestions produced per analysis", DefaultCountBuckets, "trigger")

	// Summary
	m.SummariesTotal = collector.RegisterCounter("summaries_total", "Dashboard summaries computed")
	m.SummaryDuration = collector.RegisterHistogram("summary_duration_seconds", "Dashboard summary duration", DefaultAnalysisDurationBuckets)
	m.SummaryActiveCases = collector.RegisterHistogram("summary_active_cases", "Active cases per summary", DefaultCountBuckets)
	m.SummaryCacheHits = collector.RegisterCounter("summary_cache_hits_total", "Summary cache hits")
	m.SummaryCacheMisses = collector.RegisterCounter("summary_cache_misses_total", "Summary cache misses")

	// Insight lifecycle
	m.InsightsDismissedTotal = collector.RegisterCounter("insights_dismissed_total", "Insights dismissed", "insight_type")
	m.ActionsResolvedTotal = collector.RegisterCounter("actions_resolved_total", "Action suggestions resolved", "status")

	// Infrastructure
	m.DBConnectionPoolSize = collector.RegisterGauge("db_pool_size", "Database connection pool size", "db")
	m.DBConnectionPoolActive = collector.RegisterGauge("db_pool_active", "Database active connections", "db")
	m.DBQueryDuration = collector.RegisterHistogram("db_query_duration_seconds", "Database query duration", DefaultDBDurationBuckets, "db", "operation")
	m.MessageQueueLag = collector.RegisterGauge("mq_lag", "Consumer lag per topic", "topic")
	m.MessageProcessDuration = collector.RegisterHistogram("mq_process_duration_seconds", "Message processing duration", DefaultHTTPDurationBuckets, "topic")

	// System health
	m.ServiceUptime = collector.RegisterGauge("service_uptime_seconds", "Service uptime", "service")
	m.HealthCheckStatus = collector.RegisterGauge("health_check_status", "Health check status (1=up, 0=down)", "component")
	m.ErrorsTotal = collector.RegisterCounter("errors_total", "Total errors", "component", "error_type")

	return m
}

// Helpers

func RecordHTTPRequest(metrics *AppMetrics, method, path string, statusCode int, duration time.Duration) {
	status := fmt.Sprintf("%d", statusCode)
	metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func RecordDBQuery(metrics *AppMetrics, db, operation string, duration time.Duration, err error) {
	metrics.DBQueryDuration.WithLabelValues(db, operation).Observe(duration.Seconds())
	if err != nil {
		metrics.ErrorsTotal.WithLabelValues(db, "query_error").Inc()
	}
}

func RecordError(metrics *AppMetrics, component, errorType string) {
	metrics.ErrorsTotal.WithLabelValues(component, errorType).Inc()
}
