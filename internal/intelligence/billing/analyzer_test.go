package billing

import (
	"testing"
	"time"

	dombilling "github.com/jurisio/casebrain/internal/domain/billing"
	"github.com/jurisio/casebrain/internal/domain/caserecord"
	"github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

var testNow = time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC) // a Wednesday

func newTestAnalyzer() *Analyzer {
	return NewAnalyzer(DefaultConfig(), common.FixedClock{T: testNow})
}

func entry(caseID common.ID, daysAgo int, hours float64, status dombilling.EntryStatus, rate float64) dombilling.TimeEntry {
	return dombilling.TimeEntry{
		ID:         common.NewID(),
		CaseID:     caseID,
		Date:       testNow.AddDate(0, 0, -daysAgo),
		Hours:      hours,
		Billable:   true,
		Status:     status,
		HourlyRate: rate,
	}
}

func invoice(caseID common.ID, daysAgo int, amount, hoursCovered float64, status dombilling.InvoiceStatus) dombilling.Invoice {
	return dombilling.Invoice{
		ID:           common.NewID(),
		CaseID:       caseID,
		Amount:       amount,
		Status:       status,
		IssuedAt:     testNow.AddDate(0, 0, -daysAgo),
		HoursCovered: hoursCovered,
	}
}

func openCase(id common.ID) caserecord.Case {
	return caserecord.Case{ID: id, Status: caserecord.StatusOpen, MatterType: caserecord.MatterCivil}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	a := newTestAnalyzer()
	report := a.Analyze(nil, nil, nil)
	if len(report.PerCase) != 0 || len(report.Anomalies) != 0 || len(report.Suggestions) != 0 {
		t.Error("empty input must yield an empty report")
	}
	if report.RecoveryRate != 1 {
		t.Errorf("recovery rate = %v, want 1 with no hours", report.RecoveryRate)
	}
}

func TestUnbilledAndRecoveryScenario(t *testing.T) {
	a := newTestAnalyzer()
	// 20h total of which 5h already invoiced, no invoices on record.
	entries := []dombilling.TimeEntry{
		entry("c1", 10, 15, dombilling.EntryApproved, 150),
		entry("c1", 8, 5, dombilling.EntryInvoiced, 150),
	}
	report := a.Analyze(entries, nil, []caserecord.Case{openCase("c1")})

	if len(report.PerCase) != 1 {
		t.Fatalf("expected 1 case, got %d", len(report.PerCase))
	}
	cb := report.PerCase[0]
	if cb.UnbilledHours != 15 {
		t.Errorf("unbilled = %v, want 15", cb.UnbilledHours)
	}
	if cb.RecoveryRate != 0.25 {
		t.Errorf("recovery = %v, want 0.25", cb.RecoveryRate)
	}
	if cb.EstimatedAmount != 15*150 {
		t.Errorf("estimated amount = %v, want %v", cb.EstimatedAmount, 15.0*150)
	}
}

func TestBilledHoursTakeMaxOfInvoiceAndEntries(t *testing.T) {
	a := newTestAnalyzer()
	entries := []dombilling.TimeEntry{
		entry("c1", 10, 12, dombilling.EntryInvoiced, 100), // 12h marked invoiced
	}
	invoices := []dombilling.Invoice{
		invoice("c1", 5, 800, 8, dombilling.InvoicePaid), // invoice covers only 8h
	}
	report := a.Analyze(entries, invoices, []caserecord.Case{openCase("c1")})
	if got := report.PerCase[0].BilledHours; got != 12 {
		t.Errorf("billed = %v, want max(8,12)=12", got)
	}
	if got := report.PerCase[0].UnbilledHours; got != 0 {
		t.Errorf("unbilled = %v, want 0", got)
	}
}

func TestUnbilledFlooredAtZero(t *testing.T) {
	a := newTestAnalyzer()
	entries := []dombilling.TimeEntry{entry("c1", 10, 5, dombilling.EntryApproved, 100)}
	invoices := []dombilling.Invoice{invoice("c1", 5, 900, 9, dombilling.InvoicePaid)}
	report := a.Analyze(entries, invoices, []caserecord.Case{openCase("c1")})
	if got := report.PerCase[0].UnbilledHours; got != 0 {
		t.Errorf("unbilled = %v, want floored 0", got)
	}
	if got := report.PerCase[0].RecoveryRate; got != 1 {
		t.Errorf("recovery = %v, want clamped 1", got)
	}
}

func TestRecoveryRateScaleInvariant(t *testing.T) {
	a := newTestAnalyzer()
	base := []dombilling.TimeEntry{
		entry("c1", 10, 8, dombilling.EntryApproved, 100),
		entry("c1", 8, 2, dombilling.EntryInvoiced, 100),
	}
	scaled := []dombilling.TimeEntry{
		entry("c1", 10, 80, dombilling.EntryApproved, 100),
		entry("c1", 8, 20, dombilling.EntryInvoiced, 100),
	}
	r1 := a.Analyze(base, nil, nil).RecoveryRate
	r2 := a.Analyze(scaled, nil, nil).RecoveryRate
	if r1 != r2 {
		t.Errorf("recovery rate changed under scaling: %v vs %v", r1, r2)
	}
}

func TestDefaultRateUsedWhenNoEntryRated(t *testing.T) {
	a := newTestAnalyzer()
	entries := []dombilling.TimeEntry{entry("c1", 10, 4, dombilling.EntryApproved, 0)}
	report := a.Analyze(entries, nil, nil)
	want := 4 * a.cfg.DefaultHourlyRate
	if got := report.PerCase[0].EstimatedAmount; got != want {
		t.Errorf("estimated amount = %v, want default-rate %v", got, want)
	}
}

func TestAverageRateIgnoresZeroRates(t *testing.T) {
	a := newTestAnalyzer()
	entries := []dombilling.TimeEntry{
		entry("c1", 10, 2, dombilling.EntryApproved, 100),
		entry("c1", 9, 2, dombilling.EntryApproved, 200),
		entry("c1", 8, 2, dombilling.EntryApproved, 0),
	}
	report := a.Analyze(entries, nil, nil)
	// 6 unbilled hours at the (100+200)/2 average.
	if got := report.PerCase[0].EstimatedAmount; got != 6*150 {
		t.Errorf("estimated amount = %v, want %v", got, 6.0*150)
	}
}

func TestSuggestionsSortedByTierThenAmount(t *testing.T) {
	a := newTestAnalyzer()
	entries := []dombilling.TimeEntry{
		entry("small", 10, 2, dombilling.EntryApproved, 100),   // normal, 200 EUR
		entry("big", 10, 30, dombilling.EntryApproved, 100),    // recommended, 3000 EUR
		entry("late", 10, 12, dombilling.EntryApproved, 100),   // overdue tier
		entry("mid", 10, 15, dombilling.EntryApproved, 100),    // recommended, 1500 EUR
	}
	invoices := []dombilling.Invoice{
		invoice("late", 90, 500, 0, dombilling.InvoiceOverdue),
	}
	report := a.Analyze(entries, invoices, nil)
	if len(report.Suggestions) != 4 {
		t.Fatalf("expected 4 suggestions, got %d", len(report.Suggestions))
	}
	wantOrder := []string{"late", "big", "mid", "small"}
	for i, want := range wantOrder {
		if report.Suggestions[i].CaseID != want {
			t.Errorf("suggestion %d = %s, want %s", i, report.Suggestions[i].CaseID, want)
		}
	}
}

func TestNoSuggestionWithoutUnbilledWork(t *testing.T) {
	a := newTestAnalyzer()
	entries := []dombilling.TimeEntry{entry("c1", 10, 5, dombilling.EntryInvoiced, 100)}
	report := a.Analyze(entries, nil, nil)
	if len(report.Suggestions) != 0 {
		t.Errorf("expected no suggestions, got %d", len(report.Suggestions))
	}
}

func TestGlobalLowRecoveryAnomaly(t *testing.T) {
	a := newTestAnalyzer()
	entries := []dombilling.TimeEntry{
		entry("c1", 10, 9, dombilling.EntryApproved, 100),
		entry("c1", 9, 1, dombilling.EntryInvoiced, 100),
	}
	report := a.Analyze(entries, nil, nil)
	if !hasAnomaly(report.Anomalies, brain.AnomalyLowRecoveryRate) {
		t.Error("expected a low-recovery anomaly at 10% recovery")
	}
}

func hasAnomaly(anomalies []brain.BillingAnomaly, typ brain.AnomalyType) bool {
	for _, an := range anomalies {
		if an.Type == typ {
			return true
		}
	}
	return false
}
