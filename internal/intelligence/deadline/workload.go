package deadline

import (
	"time"

	"github.com/jurisio/casebrain/internal/intelligence/common"
	"github.com/jurisio/casebrain/pkg/types/brain"
)

// PredictWorkload buckets the supplied deadlines into the next WorkloadWeeks
// Monday-aligned weeks, starting from the Monday of the current week.
// A week holding more than OverloadThreshold deadlines is overloaded; the
// peak week is the fullest one.  Deadlines outside the horizon are ignored.
func (e *Engine) PredictWorkload(deadlines []brain.DeadlineItem) *brain.WorkloadPrediction {
	now := e.clock.Now()
	weekStart := mondayOf(now)

	weeks := make([]brain.WeekLoad, e.cfg.WorkloadWeeks)
	for i := range weeks {
		weeks[i] = brain.WeekLoad{WeekStart: weekStart.AddDate(0, 0, 7*i)}
	}
	horizonEnd := weekStart.AddDate(0, 0, 7*e.cfg.WorkloadWeeks)

	for _, dl := range deadlines {
		if dl.Date.Before(weekStart) || !dl.Date.Before(horizonEnd) {
			continue
		}
		// Calendar-day arithmetic: a DST week is 167 or 169 wall-clock
		// hours, so an hour division would shift deadlines near the
		// transition into the wrong bucket.
		idx := common.DaysBetween(weekStart, dl.Date) / 7
		if idx < 0 || idx >= len(weeks) {
			continue
		}
		weeks[idx].Count++
		weeks[idx].Labels = append(weeks[idx].Labels, dl.Title)
	}

	pred := &brain.WorkloadPrediction{Weeks: weeks, PeakWeekStart: weekStart}
	for i := range weeks {
		weeks[i].Overloaded = weeks[i].Count > e.cfg.OverloadThreshold
		if weeks[i].Count > pred.PeakCount {
			pred.PeakCount = weeks[i].Count
			pred.PeakWeekStart = weeks[i].WeekStart
		}
	}
	return pred
}

// mondayOf returns midnight on the Monday of t's week, in t's location.
func mondayOf(t time.Time) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7 // Monday=0 … Sunday=6
	return day.AddDate(0, 0, -offset)
}
