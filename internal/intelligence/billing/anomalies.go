package billing

import (
	"fmt"
	"time"

	dombilling "github.com/jurisio/casebrain/internal/domain/billing"
	intcommon "github.com/jurisio/casebrain/internal/intelligence/common"
	"github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// detectCaseAnomalies runs the per-case detectors: unbilled time, unusual
// daily hours (with the separate weekend flag), missing rates, overdue
// invoices, work on closed cases and stale billing.  Each detector is
// independent; several can fire on the same case.
func (a *Analyzer) detectCaseAnomalies(
	id common.ID,
	acc *caseAccount,
	cb brain.CaseBilling,
	now time.Time,
) []brain.BillingAnomaly {
	var out []brain.BillingAnomaly
	caseID := string(id)

	// Unbilled time over the threshold.
	if cb.UnbilledHours > a.cfg.UnbilledHoursThreshold {
		severity := common.RiskMedium
		if cb.UnbilledHours > 2*a.cfg.UnbilledHoursThreshold {
			severity = common.RiskHigh
		}
		out = append(out, brain.BillingAnomaly{
			Type:     brain.AnomalyUnbilledTime,
			Severity: severity,
			CaseID:   caseID,
			Description: fmt.Sprintf("%.1f unbilled hours accumulated (threshold %.0f)",
				cb.UnbilledHours, a.cfg.UnbilledHoursThreshold),
			Amount: cb.EstimatedAmount,
		})
	}

	// Unusual daily hours and weekend work, one pass over per-day sums.
	daily := make(map[string]float64)
	weekendDays := make(map[string]bool)
	for i := range acc.entries {
		e := &acc.entries[i]
		day := e.Date.Format("2006-01-02")
		daily[day] += e.Hours
		if wd := e.Date.Weekday(); (wd == time.Saturday || wd == time.Sunday) && e.Hours > 0 {
			weekendDays[day] = true
		}
	}
	for day, hours := range daily {
		if hours > a.cfg.UnusualDailyHours {
			out = append(out, brain.BillingAnomaly{
				Type:     brain.AnomalyUnusualHours,
				Severity: common.RiskMedium,
				CaseID:   caseID,
				Description: fmt.Sprintf("%.1f hours logged on %s (threshold %.0f)",
					hours, day, a.cfg.UnusualDailyHours),
			})
		}
	}
	if len(weekendDays) > 0 {
		out = append(out, brain.BillingAnomaly{
			Type:        brain.AnomalyWeekendWork,
			Severity:    common.RiskLow,
			CaseID:      caseID,
			Description: fmt.Sprintf("work logged on %d weekend day(s)", len(weekendDays)),
		})
	}

	// Billable entries without an hourly rate.
	var unrated int
	for i := range acc.entries {
		if acc.entries[i].Billable && acc.entries[i].HourlyRate == 0 {
			unrated++
		}
	}
	if unrated > 0 {
		out = append(out, brain.BillingAnomaly{
			Type:        brain.AnomalyMissingRate,
			Severity:    common.RiskLow,
			CaseID:      caseID,
			Description: fmt.Sprintf("%d billable entrie(s) without an hourly rate", unrated),
		})
	}

	// Outstanding invoices past the grace period, tiered by age.
	for i := range acc.invoices {
		inv := &acc.invoices[i]
		if !inv.IsOutstanding() {
			continue
		}
		age := intcommon.DaysBetween(inv.IssuedAt, now)
		if age <= a.cfg.OverdueGraceDays {
			continue
		}
		severity := common.RiskMedium
		if age > a.cfg.SevereOverdueDays {
			severity = common.RiskHigh
		}
		out = append(out, brain.BillingAnomaly{
			Type:     brain.AnomalyOverdueInvoice,
			Severity: severity,
			CaseID:   caseID,
			Description: fmt.Sprintf("invoice %s unpaid for %d days",
				invoiceLabel(inv), age),
			Amount: inv.Amount,
		})
	}

	// Work logged after a case was closed or archived.
	if c := acc.c; c != nil && !c.Status.IsActive() && c.ClosedAt != nil {
		var after float64
		for i := range acc.entries {
			if acc.entries[i].Date.After(*c.ClosedAt) {
				after += acc.entries[i].Hours
			}
		}
		if after > 0 {
			out = append(out, brain.BillingAnomaly{
				Type:     brain.AnomalyClosedCaseWork,
				Severity: common.RiskHigh,
				CaseID:   caseID,
				Description: fmt.Sprintf("%.1f hours logged after the case was closed",
					after),
			})
		}
	}

	// Active work with no invoice in the stale window.
	if a.isStale(acc, now) {
		out = append(out, brain.BillingAnomaly{
			Type:     brain.AnomalyStaleBilling,
			Severity: common.RiskMedium,
			CaseID:   caseID,
			Description: fmt.Sprintf("recent work but no invoice issued in the last %d days",
				a.cfg.StaleBillingDays),
		})
	}

	return out
}

// isStale reports whether the case saw work inside the stale window while no
// invoice was issued in that same window.  Cases known to be closed are
// never stale.
func (a *Analyzer) isStale(acc *caseAccount, now time.Time) bool {
	if acc.c != nil && !acc.c.Status.IsActive() {
		return false
	}
	windowStart := now.AddDate(0, 0, -a.cfg.StaleBillingDays)

	var recentWork bool
	for i := range acc.entries {
		if acc.entries[i].Date.After(windowStart) {
			recentWork = true
			break
		}
	}
	if !recentWork {
		return false
	}
	for i := range acc.invoices {
		if acc.invoices[i].Status == dombilling.InvoiceCancelled {
			continue
		}
		if acc.invoices[i].IssuedAt.After(windowStart) {
			return false
		}
	}
	return true
}

// suggestInvoice proposes invoicing a case's unbilled work.  The tier is
// overdue when an outstanding invoice is already past grace, recommended
// when the unbilled hours cross the threshold, normal otherwise; cases
// without unbilled work get no suggestion.
func (a *Analyzer) suggestInvoice(
	id common.ID,
	acc *caseAccount,
	cb brain.CaseBilling,
	now time.Time,
) *brain.InvoiceSuggestion {
	if cb.UnbilledHours <= 0 {
		return nil
	}
	tier := brain.InvoiceNormalTier
	if cb.UnbilledHours >= a.cfg.UnbilledHoursThreshold {
		tier = brain.InvoiceRecommendedTier
	}
	for i := range acc.invoices {
		inv := &acc.invoices[i]
		if inv.IsOutstanding() && intcommon.DaysBetween(inv.IssuedAt, now) > a.cfg.OverdueGraceDays {
			tier = brain.InvoiceOverdueTier
			break
		}
	}
	return &brain.InvoiceSuggestion{
		CaseID:          string(id),
		UnbilledHours:   cb.UnbilledHours,
		EstimatedAmount: cb.EstimatedAmount,
		Urgency:         tier,
	}
}

// recommendations distills the report into a short list of next steps.
func (a *Analyzer) recommendations(report *brain.BillingReport) []string {
	var recs []string
	if report.TotalUnbilledHours > a.cfg.UnbilledHoursThreshold {
		recs = append(recs, fmt.Sprintf(
			"Invoice the %.1f unbilled hours (~%.0f EUR) accumulated across %d case(s).",
			report.TotalUnbilledHours, report.TotalUnbilledAmount, len(report.PerCase)))
	}

	var overdue, missingRate bool
	for _, an := range report.Anomalies {
		switch an.Type {
		case brain.AnomalyOverdueInvoice:
			overdue = true
		case brain.AnomalyMissingRate:
			missingRate = true
		}
	}
	if overdue {
		recs = append(recs, "Follow up on overdue invoices before starting new billable work.")
	}
	if missingRate {
		recs = append(recs, "Set an hourly rate on billable entries so estimates stay reliable.")
	}
	if len(report.PerCase) > 0 && report.RecoveryRate < a.cfg.RecoveryRateTarget {
		recs = append(recs, fmt.Sprintf(
			"Recovery rate is %.0f%%; review write-offs and unbilled work to reach the %.0f%% target.",
			report.RecoveryRate*100, a.cfg.RecoveryRateTarget*100))
	}
	return recs
}

func invoiceLabel(inv *dombilling.Invoice) string {
	if inv.Number != "" {
		return inv.Number
	}
	return string(inv.ID)
}
