package brain

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/jurisio/casebrain/internal/domain/caserecord"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/jurisio/casebrain/pkg/errors"
	braintypes "github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// GetBrainSummary aggregates every active case into the dashboard picture:
// risk distribution, deadline buckets, pending actions, workload prediction
// and revenue at risk.  Concurrent callers share one computation; the
// optional cache short-circuits it entirely.
func (o *Orchestrator) GetBrainSummary(ctx context.Context) (*braintypes.BrainSummary, error) {
	if o.opts.Cache != nil {
		if cached, ok := o.opts.Cache.Get(ctx); ok {
			o.opts.Metrics.SummaryCacheAccess(true)
			return cached, nil
		}
		o.opts.Metrics.SummaryCacheAccess(false)
	}

	v, err, _ := o.flight.Do("summary", func() (interface{}, error) {
		return o.buildSummary(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*braintypes.BrainSummary), nil
}

// caseOutcome is the per-case slice of a summary computation.
type caseOutcome struct {
	level          common.RiskLevel
	deadlines      []braintypes.DeadlineItem
	unbilledAtRisk float64
	overdueAmount  float64
}

func (o *Orchestrator) buildSummary(ctx context.Context) (*braintypes.BrainSummary, error) {
	start := o.opts.Clock.Now()

	cases, err := o.opts.Cases.ListActiveCases(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeAnalysisFailed, "list active cases")
	}

	outcomes := make([]caseOutcome, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.opts.MaxConcurrent)
	for i := range cases {
		i := i
		g.Go(func() error {
			out, err := o.summarizeCase(gctx, &cases[i])
			if err != nil {
				return err
			}
			outcomes[i] = *out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &braintypes.BrainSummary{
		ActiveCases:      len(cases),
		RiskDistribution: make(map[common.RiskLevel]int),
	}
	var allDeadlines []braintypes.DeadlineItem
	for _, out := range outcomes {
		summary.RiskDistribution[out.level]++
		summary.RevenueAtRisk += out.unbilledAtRisk + out.overdueAmount
		for _, item := range out.deadlines {
			if item.DaysRemaining < 0 {
				continue
			}
			if item.DaysRemaining <= 7 {
				summary.DeadlinesNext7++
			}
			if item.DaysRemaining <= 14 {
				summary.DeadlinesNext14++
			}
			if item.DaysRemaining <= 30 {
				summary.DeadlinesNext30++
			}
		}
		allDeadlines = append(allDeadlines, out.deadlines...)
	}
	summary.Workload = o.opts.DeadlineEngine.PredictWorkload(allDeadlines)

	ids := make([]common.ID, len(cases))
	for i := range cases {
		ids[i] = cases[i].ID
	}
	pending, err := o.opts.Insights.CountPendingActions(ctx, ids)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeAnalysisFailed, "count pending actions")
	}
	summary.PendingActions = pending
	summary.GeneratedAt = common.Timestamp(o.opts.Clock.Now())

	o.opts.Metrics.ObserveSummary(o.opts.Clock.Now().Sub(start), len(cases))
	o.opts.Logger.Info("brain summary generated",
		logging.Int("active_cases", len(cases)),
		logging.Int("deadlines_next_30", summary.DeadlinesNext30))
	if o.opts.Cache != nil {
		o.opts.Cache.Set(ctx, summary)
	}
	return summary, nil
}

// summarizeCase runs the summary-relevant analyzers over one case.  Revenue
// at risk counts the unbilled amount of high and critical risk cases plus
// every overdue outstanding invoice.
func (o *Orchestrator) summarizeCase(ctx context.Context, c *caserecord.Case) (*caseOutcome, error) {
	d, err := o.fetchRecords(ctx, c)
	if err != nil {
		return nil, err
	}

	risk := o.opts.CaseAnalyzer.AssessRisk(d.c, d.contacts, d.timeline, d.docs, d.entries, d.messages)
	deadlines := o.opts.DeadlineEngine.Analyze(d.c, d.timeline, d.calendar)
	report := o.opts.BillingAnalyzer.Analyze(d.entries, d.invoices, []caserecord.Case{*c})

	out := &caseOutcome{
		level:     risk.Level,
		deadlines: deadlines.Deadlines,
	}
	if risk.Level.Order() >= common.RiskHigh.Order() {
		out.unbilledAtRisk = report.TotalUnbilledAmount
	}
	for _, anomaly := range report.Anomalies {
		if anomaly.Type == braintypes.AnomalyOverdueInvoice {
			out.overdueAmount += anomaly.Amount
		}
	}
	return out, nil
}
