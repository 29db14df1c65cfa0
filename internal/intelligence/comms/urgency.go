package comms

import (
	intcommon "github.com/jurisio/casebrain/internal/intelligence/common"
	"github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// Tier weights and per-hit points for urgency scoring.  A single critical
// keyword forces the critical category regardless of the numeric score.
const (
	urgencyHitPoints = 25.0

	criticalTierWeight  = 1.0
	urgentTierWeight    = 0.7
	attentionTierWeight = 0.3

	deadlineBonus     = 15.0
	riskBonus         = 10.0
	deadlineBonusDays = 7
)

// UrgencyContext carries optional case-level signals that raise a message's
// urgency: an imminent deadline or an already elevated case risk.
type UrgencyContext struct {
	// DaysToNextDeadline, when non-nil and at most deadlineBonusDays, adds
	// a fixed bonus.
	DaysToNextDeadline *int

	// CaseRisk adds a fixed bonus when high or critical.
	CaseRisk common.RiskLevel
}

// AnalyzeUrgency scores one message's urgency from its subject and body.
// Keyword hits are weighted by tier and summed, the total clamped to
// [0,100]; the category follows the canonical message-urgency bands.  An
// empty message scores 0 and categorizes low.
func (s *Scorer) AnalyzeUrgency(subject, body string, ctx *UrgencyContext) *brain.UrgencyScore {
	text := intcommon.NormalizeText(subject + " " + body)

	var score float64
	var matched []string
	var criticalHit bool

	for _, kw := range s.critical {
		if n := intcommon.CountOccurrences(text, kw); n > 0 {
			score += float64(n) * urgencyHitPoints * criticalTierWeight
			matched = append(matched, kw)
			criticalHit = true
		}
	}
	for _, kw := range s.urgent {
		if n := intcommon.CountOccurrences(text, kw); n > 0 {
			score += float64(n) * urgencyHitPoints * urgentTierWeight
			matched = append(matched, kw)
		}
	}
	for _, kw := range s.attention {
		if n := intcommon.CountOccurrences(text, kw); n > 0 {
			score += float64(n) * urgencyHitPoints * attentionTierWeight
			matched = append(matched, kw)
		}
	}

	if ctx != nil {
		if ctx.DaysToNextDeadline != nil && *ctx.DaysToNextDeadline <= deadlineBonusDays {
			score += deadlineBonus
		}
		if ctx.CaseRisk == common.RiskHigh || ctx.CaseRisk == common.RiskCritical {
			score += riskBonus
		}
	}

	score = intcommon.Clamp(score)
	return &brain.UrgencyScore{
		Score:    score,
		Category: urgencyCategory(score, criticalHit),
		Matched:  matched,
	}
}

// urgencyCategory applies the canonical message-urgency bands: >=75 or any
// critical keyword hit is critical, >=50 high, >=25 medium, else low.
func urgencyCategory(score float64, criticalHit bool) common.RiskLevel {
	switch {
	case criticalHit || score >= 75:
		return common.RiskCritical
	case score >= 50:
		return common.RiskHigh
	case score >= 25:
		return common.RiskMedium
	default:
		return common.RiskLow
	}
}
