package comms

import (
	"github.com/jurisio/casebrain/internal/domain/communication"
	intcommon "github.com/jurisio/casebrain/internal/intelligence/common"
	"github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// Numeric sentiment values per category and the trend/shift cut-offs.
const (
	sentimentPositive = 1.0
	sentimentNeutral  = 0.0
	sentimentNegative = -0.5
	sentimentHostile  = -1.0

	trendDelta     = 0.15
	keyMomentDelta = 0.4
	maxKeyMoments  = 5

	excerptLen = 120
)

// DetectSentimentTrend walks a chronologically ordered message sequence and
// reports the current tone, its direction, and the abrupt shifts.  The trend
// compares the mean score of the first half against the second half; a key
// moment is an adjacent-message delta of at least keyMomentDelta, capped at
// maxKeyMoments.  An empty sequence is a stable neutral with a low alert.
func (s *Scorer) DetectSentimentTrend(messages []communication.Message) *brain.SentimentTrend {
	trend := &brain.SentimentTrend{
		Current:    "neutral",
		Trend:      brain.TrendStable,
		AlertLevel: common.RiskLow,
	}
	if len(messages) == 0 {
		return trend
	}

	scores := make([]float64, len(messages))
	labels := make([]string, len(messages))
	for i := range messages {
		labels[i], scores[i] = s.scoreSentiment(messages[i].Subject + " " + messages[i].Body)
	}
	trend.Current = labels[len(labels)-1]

	if len(scores) >= 2 {
		half := len(scores) / 2
		diff := mean(scores[half:]) - mean(scores[:half])
		switch {
		case diff > trendDelta:
			trend.Trend = brain.TrendImproving
		case diff < -trendDelta:
			trend.Trend = brain.TrendDeclining
		}
	}

	for i := 1; i < len(scores) && len(trend.KeyMoments) < maxKeyMoments; i++ {
		delta := scores[i] - scores[i-1]
		if delta > -keyMomentDelta && delta < keyMomentDelta {
			continue
		}
		trend.KeyMoments = append(trend.KeyMoments, brain.SentimentShift{
			Index:     i,
			Timestamp: messages[i].Timestamp,
			Delta:     delta,
			Excerpt:   intcommon.Truncate(messages[i].Subject, excerptLen),
		})
	}

	trend.AlertLevel = sentimentAlert(trend.Current, trend.Trend)
	return trend
}

// scoreSentiment classifies one message's text by its dominant keyword set
// and maps the label to a numeric score in [-1,1].  Hostile outranks
// negative on a tie, negative outranks positive; no hit at all is neutral.
func (s *Scorer) scoreSentiment(text string) (string, float64) {
	normalized := intcommon.NormalizeText(text)

	hostile := intcommon.CountMatches(normalized, s.hostile)
	negative := intcommon.CountMatches(normalized, s.negative)
	positive := intcommon.CountMatches(normalized, s.positive)
	neutral := intcommon.CountMatches(normalized, s.neutral)

	best, label, score := 0, "neutral", sentimentNeutral
	if neutral > best {
		best = neutral
	}
	if positive > best {
		best, label, score = positive, "positive", sentimentPositive
	}
	if negative >= best && negative > 0 {
		best, label, score = negative, "negative", sentimentNegative
	}
	if hostile >= best && hostile > 0 {
		label, score = "hostile", sentimentHostile
	}
	return label, score
}

// sentimentAlert escalates with the current tone and a deteriorating trend.
func sentimentAlert(current string, trend brain.Trend) common.RiskLevel {
	declining := trend == brain.TrendDeclining
	switch current {
	case "hostile":
		if declining {
			return common.RiskCritical
		}
		return common.RiskHigh
	case "negative":
		if declining {
			return common.RiskHigh
		}
		return common.RiskMedium
	default:
		if declining {
			return common.RiskMedium
		}
		return common.RiskLow
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
