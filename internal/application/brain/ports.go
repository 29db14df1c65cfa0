package brain

import (
	"context"
	"time"

	"github.com/jurisio/casebrain/internal/domain/insight"
	braintypes "github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// EventPublisher is the messaging port the orchestrator notifies after each
// analysis or lifecycle transition.  Publishing is best-effort: failures are
// logged by the orchestrator and never fail the operation that triggered
// them.  The kafka adapter implements it; tests use fakes.
type EventPublisher interface {
	InsightsReplaced(ctx context.Context, caseID common.ID, insights []insight.Insight) error
	ActionsReplaced(ctx context.Context, caseID common.ID, actions []insight.ActionSuggestion) error
	InsightDismissed(ctx context.Context, ins *insight.Insight) error
	ActionResolved(ctx context.Context, act *insight.ActionSuggestion) error
}

// SummaryCache is the optional cache port for the dashboard summary.  The
// adapter owns the TTL; Get returns false on a miss or any cache failure.
type SummaryCache interface {
	Get(ctx context.Context) (*braintypes.BrainSummary, bool)
	Set(ctx context.Context, summary *braintypes.BrainSummary)
}

// Metrics is the instrumentation port for orchestrator calls.  The
// prometheus adapter implements it.
type Metrics interface {
	// ObserveAnalysis records one full case analysis with the number of
	// derived insights and actions.
	ObserveAnalysis(d time.Duration, insights, actions int)

	// ObserveSummary records one dashboard aggregation over the given number
	// of active cases.
	ObserveSummary(d time.Duration, cases int)

	// SummaryCacheAccess records a summary cache hit or miss.
	SummaryCacheAccess(hit bool)
}

// NopEvents discards all events.
type NopEvents struct{}

func (NopEvents) InsightsReplaced(context.Context, common.ID, []insight.Insight) error { return nil }
func (NopEvents) ActionsReplaced(context.Context, common.ID, []insight.ActionSuggestion) error {
	return nil
}
func (NopEvents) InsightDismissed(context.Context, *insight.Insight) error        { return nil }
func (NopEvents) ActionResolved(context.Context, *insight.ActionSuggestion) error { return nil }

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveAnalysis(time.Duration, int, int) {}
func (NopMetrics) ObserveSummary(time.Duration, int)       {}
func (NopMetrics) SummaryCacheAccess(bool)                 {}
