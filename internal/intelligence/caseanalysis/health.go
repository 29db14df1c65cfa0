package caseanalysis

import (
	"fmt"
	"time"

	dombilling "github.com/jurisio/casebrain/internal/domain/billing"
	"github.com/jurisio/casebrain/internal/domain/caserecord"
	"github.com/jurisio/casebrain/internal/domain/communication"
	intcommon "github.com/jurisio/casebrain/internal/intelligence/common"
	"github.com/jurisio/casebrain/pkg/types/brain"
)

// Health component weights.
const (
	weightCompleteness = 0.20
	weightActivity     = 0.25
	weightBilling      = 0.20
	weightComms        = 0.20
	weightDeadlines    = 0.15
)

// CalculateHealth combines five weighted components into the case's
// operational health: record completeness, activity recency, billing state,
// communication volume and deadline compliance.  The trend compares the
// interaction count of the last 30 days against the preceding 30 days.
func (a *Analyzer) CalculateHealth(
	c *caserecord.Case,
	contacts []caserecord.CaseContact,
	timeline []caserecord.TimelineEvent,
	entries []dombilling.TimeEntry,
	messages []communication.Message,
) *brain.CaseHealth {
	now := a.clock.Now()

	components := []brain.HealthComponent{
		recordCompleteness(c, contacts),
		activityRecency(timeline, entries, now),
		billingStatus(entries),
		communicationVolume(messages, now),
		deadlineCompliance(timeline, now),
	}

	weighted := make([]intcommon.Weighted, len(components))
	for i, comp := range components {
		weighted[i] = intcommon.Weighted{Score: comp.Score, Weight: comp.Weight}
	}
	overall := intcommon.WeightedMean(weighted, 0)

	health := &brain.CaseHealth{
		OverallScore: overall,
		Status:       intcommon.HealthStatusForScore(overall),
		Components:   components,
		Trend:        activityTrend(timeline, entries, messages, now),
	}
	if c != nil {
		health.CaseID = string(c.ID)
	}
	return health
}

// recordCompleteness scores the presence of the case's own fields plus a
// linked client contact.
func recordCompleteness(c *caserecord.Case, contacts []caserecord.CaseContact) brain.HealthComponent {
	comp := brain.HealthComponent{Name: "completeness", Weight: weightCompleteness}
	if c == nil {
		comp.Detail = "no case record"
		return comp
	}
	checks := []bool{
		c.Reference != "",
		c.Title != "",
		c.MatterType.Valid(),
		c.Jurisdiction != "",
		hasRole(contacts, caserecord.RoleClient),
	}
	var present int
	for _, ok := range checks {
		if ok {
			present++
		}
	}
	comp.Score = float64(present) / float64(len(checks)) * 100
	comp.Detail = fmt.Sprintf("%d of %d record fields filled", present, len(checks))
	return comp
}

func hasRole(contacts []caserecord.CaseContact, role caserecord.ContactRole) bool {
	for i := range contacts {
		if contacts[i].Role == role {
			return true
		}
	}
	return false
}

// activityRecency scores the days since the most recent timeline event or
// time entry.  A case with no recorded activity at all scores 0.
func activityRecency(timeline []caserecord.TimelineEvent, entries []dombilling.TimeEntry, now time.Time) brain.HealthComponent {
	comp := brain.HealthComponent{Name: "activity", Weight: weightActivity}

	var last time.Time
	for i := range timeline {
		if d := timeline[i].EventDate; d.After(last) && !d.After(now) {
			last = d
		}
	}
	for i := range entries {
		if d := entries[i].Date; d.After(last) && !d.After(now) {
			last = d
		}
	}
	if last.IsZero() {
		comp.Detail = "no recorded activity"
		return comp
	}

	days := intcommon.DaysBetween(last, now)
	switch {
	case days <= 7:
		comp.Score = 100
	case days <= 14:
		comp.Score = 80
	case days <= 30:
		comp.Score = 60
	case days <= 60:
		comp.Score = 40
	case days <= 90:
		comp.Score = 20
	default:
		comp.Score = 10
	}
	comp.Detail = fmt.Sprintf("last activity %d days ago", days)
	return comp
}

// billingStatus scores the share of time entries that progressed to approved
// or invoiced.  No entries is neutral, not penalized.
func billingStatus(entries []dombilling.TimeEntry) brain.HealthComponent {
	comp := brain.HealthComponent{Name: "billing", Weight: weightBilling}
	if len(entries) == 0 {
		comp.Score = 50
		comp.Detail = "no time entries"
		return comp
	}
	var progressed int
	for i := range entries {
		switch entries[i].Status {
		case dombilling.EntryApproved, dombilling.EntryInvoiced:
			progressed++
		}
	}
	comp.Score = float64(progressed) / float64(len(entries)) * 100
	comp.Detail = fmt.Sprintf("%d of %d entries approved or invoiced", progressed, len(entries))
	return comp
}

// communicationVolume bands the message counts of the last 7 and 30 days.
func communicationVolume(messages []communication.Message, now time.Time) brain.HealthComponent {
	comp := brain.HealthComponent{Name: "communication", Weight: weightComms}

	var last7, last30 int
	for i := range messages {
		days := intcommon.DaysBetween(messages[i].Timestamp, now)
		if days < 0 {
			continue
		}
		if days <= 7 {
			last7++
		}
		if days <= 30 {
			last30++
		}
	}
	switch {
	case last7 >= 3:
		comp.Score = 100
	case last7 >= 1:
		comp.Score = 85
	case last30 >= 3:
		comp.Score = 60
	case last30 >= 1:
		comp.Score = 40
	default:
		comp.Score = 10
	}
	comp.Detail = fmt.Sprintf("%d messages in 7 days, %d in 30 days", last7, last30)
	return comp
}

// deadlineCompliance penalizes overdue deadline events and, more lightly,
// deadlines due within 7 days.  No deadline events is full compliance.
func deadlineCompliance(timeline []caserecord.TimelineEvent, now time.Time) brain.HealthComponent {
	comp := brain.HealthComponent{Name: "deadline_compliance", Weight: weightDeadlines}

	var overdue, upcoming int
	for i := range timeline {
		switch timeline[i].Category {
		case caserecord.CategoryDeadline, caserecord.CategoryHearing, caserecord.CategoryAudience:
		default:
			continue
		}
		days := intcommon.DaysBetween(now, timeline[i].EventDate)
		switch {
		case days < 0:
			overdue++
		case days <= 7:
			upcoming++
		}
	}
	comp.Score = intcommon.Clamp(100 - 30*float64(overdue) - 10*float64(upcoming))
	comp.Detail = fmt.Sprintf("%d overdue, %d due within 7 days", overdue, upcoming)
	return comp
}

// activityTrend compares interaction counts (timeline events, time entries,
// messages) in the last 30 days against the preceding 30.  Differences of at
// most one interaction are treated as stable.
func activityTrend(
	timeline []caserecord.TimelineEvent,
	entries []dombilling.TimeEntry,
	messages []communication.Message,
	now time.Time,
) brain.Trend {
	var recent, previous int
	bucket := func(t time.Time) {
		days := intcommon.DaysBetween(t, now)
		switch {
		case days < 0:
			// future-dated, not an interaction yet
		case days <= 30:
			recent++
		case days <= 60:
			previous++
		}
	}
	for i := range timeline {
		bucket(timeline[i].EventDate)
	}
	for i := range entries {
		bucket(entries[i].Date)
	}
	for i := range messages {
		bucket(messages[i].Timestamp)
	}

	switch diff := recent - previous; {
	case diff > 1:
		return brain.TrendImproving
	case diff < -1:
		return brain.TrendDeclining
	default:
		return brain.TrendStable
	}
}
