// Package billing implements the billing analyzer: unbilled-work tracking,
// anomaly detection, recovery-rate computation and invoice suggestions over
// the time entries and invoices of a set of cases.
//
// The analyzer is pure: no I/O, no mutable state after construction, every
// date-relative value derived from the injected clock.  Safe for concurrent
// use.
package billing

import (
	"fmt"
	"sort"

	dombilling "github.com/jurisio/casebrain/internal/domain/billing"
	"github.com/jurisio/casebrain/internal/domain/caserecord"
	intcommon "github.com/jurisio/casebrain/internal/intelligence/common"
	"github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// Config carries the analyzer's thresholds.  Build once at startup and share
// by reference.
type Config struct {
	// UnbilledHoursThreshold flags a case once its unbilled hours exceed it,
	// and marks its invoice suggestion as recommended.
	UnbilledHoursThreshold float64

	// UnusualDailyHours flags a day on which more hours than this were
	// logged on a single case.
	UnusualDailyHours float64

	// OverdueGraceDays and SevereOverdueDays tier outstanding invoices by
	// age since issue.
	OverdueGraceDays  int
	SevereOverdueDays int

	// StaleBillingDays flags an active case with recent work but no invoice
	// issued within the window.
	StaleBillingDays int

	// RecoveryRateTarget is the global billed/total ratio under which a
	// low-recovery anomaly is raised.
	RecoveryRateTarget float64

	// DefaultHourlyRate prices unbilled work when no entry carries a rate.
	DefaultHourlyRate float64
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		UnbilledHoursThreshold: 10,
		UnusualDailyHours:      10,
		OverdueGraceDays:       30,
		SevereOverdueDays:      60,
		StaleBillingDays:       45,
		RecoveryRateTarget:     0.7,
		DefaultHourlyRate:      150,
	}
}

// Analyzer evaluates billing health.
type Analyzer struct {
	cfg   Config
	clock common.Clock
}

// NewAnalyzer constructs an Analyzer.  A nil clock falls back to the system
// clock; non-positive thresholds fall back to the defaults.
func NewAnalyzer(cfg Config, clock common.Clock) *Analyzer {
	if clock == nil {
		clock = common.NewSystemClock()
	}
	def := DefaultConfig()
	if cfg.UnbilledHoursThreshold <= 0 {
		cfg.UnbilledHoursThreshold = def.UnbilledHoursThreshold
	}
	if cfg.UnusualDailyHours <= 0 {
		cfg.UnusualDailyHours = def.UnusualDailyHours
	}
	if cfg.OverdueGraceDays <= 0 {
		cfg.OverdueGraceDays = def.OverdueGraceDays
	}
	if cfg.SevereOverdueDays <= 0 {
		cfg.SevereOverdueDays = def.SevereOverdueDays
	}
	if cfg.StaleBillingDays <= 0 {
		cfg.StaleBillingDays = def.StaleBillingDays
	}
	if cfg.RecoveryRateTarget <= 0 {
		cfg.RecoveryRateTarget = def.RecoveryRateTarget
	}
	if cfg.DefaultHourlyRate <= 0 {
		cfg.DefaultHourlyRate = def.DefaultHourlyRate
	}
	return &Analyzer{cfg: cfg, clock: clock}
}

// caseAccount is the per-case working state while scanning entries/invoices.
type caseAccount struct {
	c        *caserecord.Case
	entries  []dombilling.TimeEntry
	invoices []dombilling.Invoice
}

// Analyze builds the billing report for the supplied cases.  Entries or
// invoices referencing a case absent from cases are still accounted (the
// case record is then unknown and case-status checks are skipped).  Empty
// input yields an empty, valid report with recovery rate 1.
func (a *Analyzer) Analyze(
	entries []dombilling.TimeEntry,
	invoices []dombilling.Invoice,
	cases []caserecord.Case,
) *brain.BillingReport {
	now := a.clock.Now()

	accounts := make(map[common.ID]*caseAccount)
	var order []common.ID
	account := func(id common.ID) *caseAccount {
		acc, ok := accounts[id]
		if !ok {
			acc = &caseAccount{}
			accounts[id] = acc
			order = append(order, id)
		}
		return acc
	}
	for i := range cases {
		account(cases[i].ID).c = &cases[i]
	}
	for _, e := range entries {
		acc := account(e.CaseID)
		acc.entries = append(acc.entries, e)
	}
	for _, inv := range invoices {
		acc := account(inv.CaseID)
		acc.invoices = append(acc.invoices, inv)
	}

	report := &brain.BillingReport{}
	var totalHours, totalBilled float64

	for _, id := range order {
		acc := accounts[id]
		if len(acc.entries) == 0 && len(acc.invoices) == 0 {
			continue
		}
		cb := a.caseBilling(id, acc)
		report.PerCase = append(report.PerCase, cb)
		report.TotalUnbilledHours += cb.UnbilledHours
		report.TotalUnbilledAmount += cb.EstimatedAmount
		totalHours += cb.TotalHours
		totalBilled += cb.BilledHours

		report.Anomalies = append(report.Anomalies, a.detectCaseAnomalies(id, acc, cb, now)...)
		if sugg := a.suggestInvoice(id, acc, cb, now); sugg != nil {
			report.Suggestions = append(report.Suggestions, *sugg)
		}
	}

	report.RecoveryRate = recoveryRate(totalBilled, totalHours)
	if totalHours > 0 && report.RecoveryRate < a.cfg.RecoveryRateTarget {
		report.Anomalies = append(report.Anomalies, brain.BillingAnomaly{
			Type:     brain.AnomalyLowRecoveryRate,
			Severity: common.RiskHigh,
			Description: fmt.Sprintf("global recovery rate %.0f%% is below the %.0f%% target",
				report.RecoveryRate*100, a.cfg.RecoveryRateTarget*100),
		})
	}

	sort.SliceStable(report.Suggestions, func(i, j int) bool {
		si, sj := report.Suggestions[i], report.Suggestions[j]
		if si.Urgency.Order() != sj.Urgency.Order() {
			return si.Urgency.Order() < sj.Urgency.Order()
		}
		return si.EstimatedAmount > sj.EstimatedAmount
	})

	report.Recommendations = a.recommendations(report)
	return report
}

// caseBilling computes the hour and amount breakdown for one case.  Billed
// hours are the larger of the invoice-covered hours and the hours of entries
// already marked invoiced; unbilled hours are floored at zero.
func (a *Analyzer) caseBilling(id common.ID, acc *caseAccount) brain.CaseBilling {
	var total, billedEntries, rateSum float64
	var rated int
	for i := range acc.entries {
		e := &acc.entries[i]
		total += e.Hours
		if e.IsBilled() {
			billedEntries += e.Hours
		}
		if e.HourlyRate > 0 {
			rateSum += e.HourlyRate
			rated++
		}
	}
	var covered float64
	for i := range acc.invoices {
		if acc.invoices[i].Status != dombilling.InvoiceCancelled {
			covered += acc.invoices[i].HoursCovered
		}
	}

	billed := covered
	if billedEntries > billed {
		billed = billedEntries
	}
	unbilled := total - billed
	if unbilled < 0 {
		unbilled = 0
	}

	rate := a.cfg.DefaultHourlyRate
	if rated > 0 {
		rate = rateSum / float64(rated)
	}

	return brain.CaseBilling{
		CaseID:          string(id),
		TotalHours:      total,
		BilledHours:     billed,
		UnbilledHours:   unbilled,
		EstimatedAmount: unbilled * rate,
		RecoveryRate:    recoveryRate(billed, total),
	}
}

// recoveryRate is billed/total clamped to [0,1]; with no hours at all there
// is nothing to recover and the rate is 1.
func recoveryRate(billed, total float64) float64 {
	if total <= 0 {
		return 1
	}
	return intcommon.Clamp01(billed / total)
}
