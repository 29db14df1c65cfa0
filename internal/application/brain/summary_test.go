package brain

import (
	"context"
	"testing"
	"time"

	dombilling "github.com/jurisio/casebrain/internal/domain/billing"
	"github.com/jurisio/casebrain/internal/domain/caserecord"
	pkgerrors "github.com/jurisio/casebrain/pkg/errors"
	braintypes "github.com/jurisio/casebrain/pkg/types/brain"
)

func TestBrainSummaryAggregates(t *testing.T) {
	env := newTestEnv()
	env.addCase(openCivilCase("s1"))
	env.addCase(openCivilCase("s2"))
	env.cases.timeline["s1"] = []caserecord.TimelineEvent{
		timelineDeadline("s1", "Conclusions", testNow.AddDate(0, 0, 2)),
		timelineDeadline("s1", "Expertise", testNow.AddDate(0, 0, 12)),
	}
	env.insights.pending = 4

	summary, err := env.orch.GetBrainSummary(context.Background())
	if err != nil {
		t.Fatalf("GetBrainSummary: %v", err)
	}
	if summary.ActiveCases != 2 {
		t.Errorf("ActiveCases = %d, want 2", summary.ActiveCases)
	}
	var distributed int
	for _, n := range summary.RiskDistribution {
		distributed += n
	}
	if distributed != 2 {
		t.Errorf("risk distribution covers %d cases, want 2", distributed)
	}
	if summary.DeadlinesNext7 != 1 {
		t.Errorf("DeadlinesNext7 = %d, want 1", summary.DeadlinesNext7)
	}
	// Buckets are cumulative: the two-day deadline counts in every window.
	if summary.DeadlinesNext14 != 2 || summary.DeadlinesNext30 != 2 {
		t.Errorf("DeadlinesNext14/30 = %d/%d, want 2/2",
			summary.DeadlinesNext14, summary.DeadlinesNext30)
	}
	if summary.PendingActions != 4 {
		t.Errorf("PendingActions = %d, want 4", summary.PendingActions)
	}
	if summary.Workload == nil {
		t.Error("Workload is nil")
	}
	if !time.Time(summary.GeneratedAt).Equal(testNow) {
		t.Errorf("GeneratedAt = %v, want %v", summary.GeneratedAt, testNow)
	}
	if env.cache.sets != 1 {
		t.Errorf("summary cached %d times, want 1", env.cache.sets)
	}
	if env.metrics.misses != 1 || env.metrics.summaries != 1 {
		t.Errorf("metrics misses/summaries = %d/%d, want 1/1",
			env.metrics.misses, env.metrics.summaries)
	}
}

func TestBrainSummaryExcludesOverdueFromBuckets(t *testing.T) {
	env := newTestEnv()
	env.addCase(openCivilCase("s3"))
	env.cases.timeline["s3"] = []caserecord.TimelineEvent{
		timelineDeadline("s3", "Requête", testNow.AddDate(0, 0, -5)),
	}

	summary, err := env.orch.GetBrainSummary(context.Background())
	if err != nil {
		t.Fatalf("GetBrainSummary: %v", err)
	}
	if summary.DeadlinesNext7 != 0 || summary.DeadlinesNext30 != 0 {
		t.Errorf("overdue deadline counted in buckets: next7=%d next30=%d",
			summary.DeadlinesNext7, summary.DeadlinesNext30)
	}
}

func TestBrainSummaryRevenueAtRisk(t *testing.T) {
	env := newTestEnv()
	env.addCase(openCivilCase("s4"))
	env.billing.invoices["s4"] = []dombilling.Invoice{{
		ID:       "inv1",
		CaseID:   "s4",
		Number:   "2025/041",
		Amount:   2000,
		Status:   dombilling.InvoiceSent,
		IssuedAt: testNow.AddDate(0, 0, -100),
	}}

	summary, err := env.orch.GetBrainSummary(context.Background())
	if err != nil {
		t.Fatalf("GetBrainSummary: %v", err)
	}
	// No unbilled hours, so the overdue invoice is the whole exposure.
	if summary.RevenueAtRisk != 2000 {
		t.Errorf("RevenueAtRisk = %.2f, want 2000.00", summary.RevenueAtRisk)
	}
}

func TestBrainSummaryCacheHit(t *testing.T) {
	env := newTestEnv()
	env.cache.summary = &braintypes.BrainSummary{ActiveCases: 42}
	env.cases.err = pkgerrors.New(pkgerrors.ErrCodeDatabaseError, "must not be reached")

	summary, err := env.orch.GetBrainSummary(context.Background())
	if err != nil {
		t.Fatalf("GetBrainSummary: %v", err)
	}
	if summary.ActiveCases != 42 {
		t.Errorf("ActiveCases = %d, want the cached 42", summary.ActiveCases)
	}
	if env.metrics.hits != 1 || env.metrics.summaries != 0 {
		t.Errorf("metrics hits/summaries = %d/%d, want 1/0",
			env.metrics.hits, env.metrics.summaries)
	}
}

func TestBrainSummaryListFailure(t *testing.T) {
	env := newTestEnv()
	env.cases.err = pkgerrors.New(pkgerrors.ErrCodeDatabaseError, "connection lost")

	_, err := env.orch.GetBrainSummary(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.ErrCodeAnalysisFailed) {
		t.Fatalf("GetBrainSummary error = %v, want %s", err, pkgerrors.ErrCodeAnalysisFailed)
	}
}

func TestBrainSummaryPerCaseFailure(t *testing.T) {
	env := newTestEnv()
	env.addCase(openCivilCase("s5"))
	env.comms.err = pkgerrors.New(pkgerrors.ErrCodeDatabaseError, "connection lost")

	_, err := env.orch.GetBrainSummary(context.Background())
	if !pkgerrors.IsCode(err, pkgerrors.ErrCodeAnalysisFailed) {
		t.Fatalf("GetBrainSummary error = %v, want %s", err, pkgerrors.ErrCodeAnalysisFailed)
	}
}

func TestBrainSummaryNoActiveCases(t *testing.T) {
	env := newTestEnv()
	closed := openCivilCase("s6")
	closed.Status = caserecord.StatusClosed
	env.addCase(closed)

	summary, err := env.orch.GetBrainSummary(context.Background())
	if err != nil {
		t.Fatalf("GetBrainSummary: %v", err)
	}
	if summary.ActiveCases != 0 {
		t.Errorf("ActiveCases = %d, want 0", summary.ActiveCases)
	}
	if len(summary.RiskDistribution) != 0 {
		t.Errorf("RiskDistribution = %v, want empty", summary.RiskDistribution)
	}
	if summary.Workload == nil {
		t.Error("Workload should be an empty prediction, not nil")
	}
}
