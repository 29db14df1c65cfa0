package prometheus

import "time"

// BrainMetrics adapts AppMetrics to the orchestrator's instrumentation
// port.  The trigger label distinguishes API-driven analyses from the
// background worker's.
type BrainMetrics struct {
	app     *AppMetrics
	trigger string
}

func NewBrainMetrics(app *AppMetrics, trigger string) *BrainMetrics {
	if trigger == "" {
		trigger = "api"
	}
	return &BrainMetrics{app: app, trigger: trigger}
}

func (m *BrainMetrics) ObserveAnalysis(d time.Duration, insights, actions int) {
	m.app.AnalysesTotal.WithLabelValues(m.trigger, "ok").Inc()
	m.app.AnalysisDuration.WithLabelValues(m.trigger).Observe(d.Seconds())
	m.app.AnalysisInsightsProduced.WithLabelValues(m.trigger).Observe(float64(insights))
	m.app.AnalysisActionsProduced.WithLabelValues(m.trigger).Observe(float64(actions))
}

func (m *BrainMetrics) ObserveSummary(d time.Duration, cases int) {
	m.app.SummariesTotal.WithLabelValues().Inc()
	m.app.SummaryDuration.WithLabelValues().Observe(d.Seconds())
	m.app.SummaryActiveCases.WithLabelValues().Observe(float64(cases))
}

func (m *BrainMetrics) SummaryCacheAccess(hit bool) {
	if hit {
		m.app.SummaryCacheHits.WithLabelValues().Inc()
	} else {
		m.app.SummaryCacheMisses.WithLabelValues().Inc()
	}
}
