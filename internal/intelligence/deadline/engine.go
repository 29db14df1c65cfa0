// Package deadline implements the deadline engine: extraction of deadlines
// from timeline and calendar records, Belgian statutory deadline computation,
// conflict detection, filing-date suggestions and workload prediction.
//
// The engine is pure: it performs no I/O, holds no mutable state after
// construction, and derives every date-relative value from the injected
// clock.  It is safe for concurrent use.
package deadline

import (
	"sort"
	"time"

	"github.com/jurisio/casebrain/internal/domain/caserecord"
	intcommon "github.com/jurisio/casebrain/internal/intelligence/common"
	"github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// Config carries the engine's tunables and pattern tables.  Build it once at
// startup (typically from internal/config) and share by reference.
type Config struct {
	// Keywords marks a timeline or calendar title as a deadline when any of
	// them occurs in the normalized title.
	Keywords []string

	// ConflictWindowDays is the maximum spacing, in calendar days, at which
	// two deadlines are flagged as conflicting.
	ConflictWindowDays int

	// FilingLeadDays is how many days before a deadline a filing is suggested.
	FilingLeadDays int

	// OverloadThreshold is the per-week deadline count above which a week is
	// reported as overloaded.
	OverloadThreshold int

	// WorkloadWeeks is the number of Monday-aligned weeks predicted.
	WorkloadWeeks int

	// StatutoryRules maps a triggering timeline event type to the
	// procedural deadlines it opens.  Defaults to the built-in Belgian
	// table; inject a replacement to track a revised edition.
	StatutoryRules map[string][]StatutoryRule

	// PrescriptionRules maps a matter type to its prescription periods.
	PrescriptionRules map[caserecord.MatterType][]PrescriptionRule
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Keywords: []string{
			"délai", "audience", "conclusions", "échéance", "comparution",
			"plaidoirie", "signification", "expiration", "prescription",
			"dépôt", "requête",
		},
		ConflictWindowDays: 1,
		FilingLeadDays:     3,
		OverloadThreshold:  5,
		WorkloadWeeks:      4,
		StatutoryRules:     defaultStatutoryRules(),
		PrescriptionRules:  defaultPrescriptionRules(),
	}
}

// Engine detects and schedules deadlines.
type Engine struct {
	cfg      Config
	clock    common.Clock
	keywords []string // pre-normalized
}

// NewEngine constructs an Engine.  A nil clock falls back to the system clock.
func NewEngine(cfg Config, clock common.Clock) *Engine {
	if clock == nil {
		clock = common.NewSystemClock()
	}
	if cfg.ConflictWindowDays <= 0 {
		cfg.ConflictWindowDays = 1
	}
	if cfg.FilingLeadDays <= 0 {
		cfg.FilingLeadDays = 3
	}
	if cfg.OverloadThreshold <= 0 {
		cfg.OverloadThreshold = 5
	}
	if cfg.WorkloadWeeks <= 0 {
		cfg.WorkloadWeeks = 4
	}
	if len(cfg.Keywords) == 0 {
		cfg.Keywords = DefaultConfig().Keywords
	}
	if cfg.StatutoryRules == nil {
		cfg.StatutoryRules = defaultStatutoryRules()
	}
	if cfg.PrescriptionRules == nil {
		cfg.PrescriptionRules = defaultPrescriptionRules()
	}
	normalized := make([]string, len(cfg.Keywords))
	for i, k := range cfg.Keywords {
		normalized[i] = intcommon.NormalizeText(k)
	}
	return &Engine{cfg: cfg, clock: clock, keywords: normalized}
}

// Analyze extracts all deadlines of a case, classifies their urgency,
// detects conflicts and proposes filing dates.  Timeline and calendar
// slices may be empty; the result is then an empty, valid analysis.
func (e *Engine) Analyze(
	c *caserecord.Case,
	timeline []caserecord.TimelineEvent,
	calendar []caserecord.CalendarEvent,
) *brain.DeadlineAnalysis {
	now := e.clock.Now()

	var items []brain.DeadlineItem
	for _, ev := range timeline {
		if !e.isDeadlineEvent(ev) {
			continue
		}
		items = append(items, e.newItem(ev.Title, "timeline", string(ev.Category), ev.EventDate, now))
	}
	for _, ev := range calendar {
		if !e.matchesKeywords(ev.Title) {
			continue
		}
		items = append(items, e.newItem(ev.Title, "calendar", "", ev.StartAt, now))
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Date.Equal(items[j].Date) {
			return items[i].Title < items[j].Title
		}
		return items[i].Date.Before(items[j].Date)
	})

	analysis := &brain.DeadlineAnalysis{
		Deadlines:         items,
		Conflicts:         e.detectConflicts(items),
		FilingSuggestions: e.suggestFilingDates(items, now),
	}
	if c != nil {
		analysis.CaseID = string(c.ID)
		analysis.Legal = e.LegalDeadlinesFromTimeline(c.MatterType, timeline)
	}
	return analysis
}

// isDeadlineEvent reports whether a timeline event counts as a deadline:
// either its category is one of deadline/hearing/audience, or its title
// matches the keyword table.
func (e *Engine) isDeadlineEvent(ev caserecord.TimelineEvent) bool {
	switch ev.Category {
	case caserecord.CategoryDeadline, caserecord.CategoryHearing, caserecord.CategoryAudience:
		return true
	}
	return e.matchesKeywords(ev.Title)
}

func (e *Engine) matchesKeywords(title string) bool {
	return intcommon.ContainsAny(intcommon.NormalizeText(title), e.keywords)
}

func (e *Engine) newItem(title, source, category string, date time.Time, now time.Time) brain.DeadlineItem {
	days := intcommon.DaysBetween(now, date)
	return brain.DeadlineItem{
		Title:         title,
		Source:        source,
		Category:      category,
		Date:          date,
		DaysRemaining: days,
		Urgency:       intcommon.UrgencyForDays(days),
	}
}

// detectConflicts flags pairs of deadlines within the conflict window.
// The relation is symmetric and irreflexive; pairs are de-duplicated by
// unordered title pair, so re-listing the same two titles on other dates
// does not multiply conflicts.
func (e *Engine) detectConflicts(items []brain.DeadlineItem) []brain.DeadlineConflict {
	var conflicts []brain.DeadlineConflict
	seen := make(map[string]bool)

	for i := 0; i < len(items); i++ {
		for j := i + 1; j < len(items); j++ {
			apart := intcommon.DaysBetween(items[i].Date, items[j].Date)
			if apart < 0 {
				apart = -apart
			}
			if apart > e.cfg.ConflictWindowDays {
				continue
			}
			key := pairKey(items[i].Title, items[j].Title)
			if seen[key] {
				continue
			}
			seen[key] = true

			severity := common.RiskMedium
			if apart == 0 {
				severity = common.RiskHigh
			}
			conflicts = append(conflicts, brain.DeadlineConflict{
				FirstTitle:  items[i].Title,
				SecondTitle: items[j].Title,
				FirstDate:   items[i].Date,
				SecondDate:  items[j].Date,
				DaysApart:   apart,
				Severity:    severity,
			})
		}
	}
	return conflicts
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "\x00" + b
}

// suggestFilingDates proposes a filing date up to FilingLeadDays before each
// upcoming deadline.  Suggestions are shifted off weekends (backwards, onto
// the preceding Friday) and never fall before today.
func (e *Engine) suggestFilingDates(items []brain.DeadlineItem, now time.Time) []brain.FilingSuggestion {
	var out []brain.FilingSuggestion
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	for _, it := range items {
		if it.DaysRemaining <= 0 {
			continue
		}
		target := it.Date.AddDate(0, 0, -e.cfg.FilingLeadDays)
		for target.Weekday() == time.Saturday || target.Weekday() == time.Sunday {
			target = target.AddDate(0, 0, -1)
		}
		if target.Before(today) {
			target = today
		}
		out = append(out, brain.FilingSuggestion{
			DeadlineTitle: it.Title,
			DeadlineDate:  it.Date,
			SuggestedDate: target,
		})
	}
	return out
}
