// Package common holds the scoring primitives shared by all analyzers:
// clamping, weighted means and the canonical severity band tables.  The band
// functions here are the single source of truth — no analyzer defines its own
// cut-offs.
package common

import (
	"time"

	"github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// Clamp bounds v to [0, 100].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Weighted is a scored value with a weight, the input shape for WeightedMean.
type Weighted struct {
	Score  float64
	Weight float64
}

// WeightedMean returns the weight-normalized mean of all entries with
// positive weight, clamped to [0,100].  When no entry carries positive
// weight the supplied fallback is returned; factor lists must therefore
// always produce a defined value, never a division by zero.
func WeightedMean(entries []Weighted, fallback float64) float64 {
	var sum, weightSum float64
	for _, e := range entries {
		if e.Weight <= 0 {
			continue
		}
		sum += e.Score * e.Weight
		weightSum += e.Weight
	}
	if weightSum <= 0 {
		return Clamp(fallback)
	}
	return Clamp(sum / weightSum)
}

// RiskLevelForScore maps a [0,100] risk score onto the canonical risk bands:
// <25 low, <50 medium, <75 high, >=75 critical.  Monotonic by construction.
func RiskLevelForScore(score float64) common.RiskLevel {
	switch {
	case score >= 75:
		return common.RiskCritical
	case score >= 50:
		return common.RiskHigh
	case score >= 25:
		return common.RiskMedium
	default:
		return common.RiskLow
	}
}

// HealthStatusForScore maps a [0,100] health score onto the canonical health
// bands: >=75 healthy, >=50 attention, >=25 at_risk, else critical.
//
// The upstream system carried a second, divergent table (80/60/40) at its
// API layer; that variant is rejected here so every surface reports the same
// status for the same score.
func HealthStatusForScore(score float64) brain.HealthStatus {
	switch {
	case score >= 75:
		return brain.HealthHealthy
	case score >= 50:
		return brain.HealthAttention
	case score >= 25:
		return brain.HealthAtRisk
	default:
		return brain.HealthCritical
	}
}

// UrgencyForDays maps days-remaining onto the canonical deadline urgency
// bands: overdue or <=3 days critical, <=7 urgent, <=14 attention, else
// normal.  Monotonic non-increasing in days.
func UrgencyForDays(days int) brain.Urgency {
	switch {
	case days < 0, days <= 3:
		return brain.UrgencyCritical
	case days <= 7:
		return brain.UrgencyUrgent
	case days <= 14:
		return brain.UrgencyAttention
	default:
		return brain.UrgencyNormal
	}
}

// DaysBetween returns the number of whole calendar days from a to b,
// negative when b precedes a.  Both instants are reduced to their civil
// date in a's location first, so a deadline this evening still counts as
// "today" rather than rounding to zero-or-one depending on the hour.
// The dates are re-anchored at UTC midnight before subtracting: local
// midnights are 23 or 25 hours apart around a DST transition, which would
// make an hour division drop or gain a day.
func DaysBetween(a, b time.Time) int {
	at := civilUTC(a)
	bt := civilUTC(b.In(a.Location()))
	return int(bt.Sub(at) / (24 * time.Hour))
}

// civilUTC maps an instant to the UTC midnight of its civil date, keeping
// day arithmetic on exact 24-hour multiples.
func civilUTC(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
