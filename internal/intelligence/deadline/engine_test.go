package deadline

import (
	"testing"
	"time"

	"github.com/jurisio/casebrain/internal/domain/caserecord"
	"github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

var testNow = time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC) // a Wednesday

func newTestEngine() *Engine {
	return NewEngine(DefaultConfig(), common.FixedClock{T: testNow})
}

func tlEvent(title string, cat caserecord.EventCategory, date time.Time) caserecord.TimelineEvent {
	return caserecord.TimelineEvent{
		ID:        common.NewID(),
		Title:     title,
		Category:  cat,
		EventDate: date,
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	e := newTestEngine()
	res := e.Analyze(&caserecord.Case{ID: "c1"}, nil, nil)
	if res.CaseID != "c1" {
		t.Errorf("case id not carried: %q", res.CaseID)
	}
	if len(res.Deadlines) != 0 || len(res.Conflicts) != 0 || len(res.FilingSuggestions) != 0 {
		t.Error("empty input must yield empty analysis")
	}
}

func TestDeadlineDetectionByCategory(t *testing.T) {
	e := newTestEngine()
	events := []caserecord.TimelineEvent{
		tlEvent("Réunion préparatoire", caserecord.CategoryMeeting, testNow.AddDate(0, 0, 5)),
		tlEvent("Audience d'introduction", caserecord.CategoryHearing, testNow.AddDate(0, 0, 5)),
		tlEvent("Quelconque", caserecord.CategoryDeadline, testNow.AddDate(0, 0, 20)),
	}
	res := e.Analyze(nil, events, nil)
	if len(res.Deadlines) != 2 {
		t.Fatalf("expected 2 deadlines, got %d", len(res.Deadlines))
	}
}

func TestDeadlineDetectionByKeyword(t *testing.T) {
	e := newTestEngine()
	events := []caserecord.TimelineEvent{
		tlEvent("Échéance de paiement", caserecord.CategoryNote, testNow.AddDate(0, 0, 9)),
		tlEvent("Dépôt des conclusions", caserecord.CategoryOther, testNow.AddDate(0, 0, 12)),
		tlEvent("Appel téléphonique client", caserecord.CategoryNote, testNow.AddDate(0, 0, 2)),
	}
	res := e.Analyze(nil, events, nil)
	if len(res.Deadlines) != 2 {
		t.Fatalf("expected 2 keyword deadlines, got %d", len(res.Deadlines))
	}
}

func TestCalendarEventsMatchedByTitleOnly(t *testing.T) {
	e := newTestEngine()
	cal := []caserecord.CalendarEvent{
		{Title: "Audience tribunal de commerce", StartAt: testNow.AddDate(0, 0, 6)},
		{Title: "Déjeuner équipe", StartAt: testNow.AddDate(0, 0, 6)},
	}
	res := e.Analyze(nil, nil, cal)
	if len(res.Deadlines) != 1 {
		t.Fatalf("expected 1 calendar deadline, got %d", len(res.Deadlines))
	}
	if res.Deadlines[0].Source != "calendar" {
		t.Errorf("source = %q, want calendar", res.Deadlines[0].Source)
	}
}

func TestUrgencyThresholds(t *testing.T) {
	e := newTestEngine()
	cases := []struct {
		days int
		want brain.Urgency
	}{
		{-2, brain.UrgencyCritical},
		{2, brain.UrgencyCritical},
		{7, brain.UrgencyUrgent},
		{10, brain.UrgencyAttention}, // 10 days: >7, <=14
		{14, brain.UrgencyAttention},
		{15, brain.UrgencyNormal},
	}
	for _, tc := range cases {
		events := []caserecord.TimelineEvent{
			tlEvent("Délai", caserecord.CategoryDeadline, testNow.AddDate(0, 0, tc.days)),
		}
		res := e.Analyze(nil, events, nil)
		if len(res.Deadlines) != 1 {
			t.Fatalf("days=%d: expected 1 deadline", tc.days)
		}
		if got := res.Deadlines[0].Urgency; got != tc.want {
			t.Errorf("days=%d: urgency = %s, want %s", tc.days, got, tc.want)
		}
	}
}

func TestDeadlinesSortedByDate(t *testing.T) {
	e := newTestEngine()
	events := []caserecord.TimelineEvent{
		tlEvent("Délai B", caserecord.CategoryDeadline, testNow.AddDate(0, 0, 20)),
		tlEvent("Délai A", caserecord.CategoryDeadline, testNow.AddDate(0, 0, 5)),
		tlEvent("Délai C", caserecord.CategoryDeadline, testNow.AddDate(0, 0, 40)),
	}
	res := e.Analyze(nil, events, nil)
	for i := 1; i < len(res.Deadlines); i++ {
		if res.Deadlines[i].Date.Before(res.Deadlines[i-1].Date) {
			t.Fatal("deadlines not sorted by date")
		}
	}
}

func TestConflictSameDayHighSeverity(t *testing.T) {
	e := newTestEngine()
	d := testNow.AddDate(0, 0, 8)
	events := []caserecord.TimelineEvent{
		tlEvent("Audience A", caserecord.CategoryHearing, d),
		tlEvent("Audience B", caserecord.CategoryHearing, d),
	}
	res := e.Analyze(nil, events, nil)
	if len(res.Conflicts) != 1 {
		t.Fatalf("expected exactly 1 conflict, got %d", len(res.Conflicts))
	}
	c := res.Conflicts[0]
	if c.Severity != common.RiskHigh {
		t.Errorf("same-day conflict severity = %s, want high", c.Severity)
	}
	if c.DaysApart != 0 {
		t.Errorf("days apart = %d, want 0", c.DaysApart)
	}
}

func TestConflictAdjacentDayMediumSeverity(t *testing.T) {
	e := newTestEngine()
	events := []caserecord.TimelineEvent{
		tlEvent("Audience A", caserecord.CategoryHearing, testNow.AddDate(0, 0, 8)),
		tlEvent("Audience B", caserecord.CategoryHearing, testNow.AddDate(0, 0, 9)),
	}
	res := e.Analyze(nil, events, nil)
	if len(res.Conflicts) != 1 {
		t.Fatalf("expected 1 conflict, got %d", len(res.Conflicts))
	}
	if res.Conflicts[0].Severity != common.RiskMedium {
		t.Errorf("adjacent-day severity = %s, want medium", res.Conflicts[0].Severity)
	}
}

func TestNoConflictBeyondWindow(t *testing.T) {
	e := newTestEngine()
	events := []caserecord.TimelineEvent{
		tlEvent("Audience A", caserecord.CategoryHearing, testNow.AddDate(0, 0, 8)),
		tlEvent("Audience B", caserecord.CategoryHearing, testNow.AddDate(0, 0, 10)),
	}
	res := e.Analyze(nil, events, nil)
	if len(res.Conflicts) != 0 {
		t.Fatalf("expected no conflict at 2 days apart, got %d", len(res.Conflicts))
	}
}

func TestConflictDedupByTitlePair(t *testing.T) {
	e := newTestEngine()
	// Same unordered title pair colliding twice must yield one conflict.
	events := []caserecord.TimelineEvent{
		tlEvent("Audience A", caserecord.CategoryHearing, testNow.AddDate(0, 0, 8)),
		tlEvent("Audience B", caserecord.CategoryHearing, testNow.AddDate(0, 0, 8)),
		tlEvent("Audience B", caserecord.CategoryHearing, testNow.AddDate(0, 0, 9)),
	}
	res := e.Analyze(nil, events, nil)
	count := 0
	for _, c := range res.Conflicts {
		if pairKey(c.FirstTitle, c.SecondTitle) == pairKey("Audience A", "Audience B") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected A/B pair reported once, got %d", count)
	}
}

func TestFilingSuggestionShiftsOffWeekend(t *testing.T) {
	e := newTestEngine()
	// Deadline Tuesday 2025-06-24; minus 3 days = Saturday 21st, shifted back
	// to Friday 20th.
	deadline := time.Date(2025, 6, 24, 0, 0, 0, 0, time.UTC)
	events := []caserecord.TimelineEvent{
		tlEvent("Dépôt conclusions", caserecord.CategoryDeadline, deadline),
	}
	res := e.Analyze(nil, events, nil)
	if len(res.FilingSuggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(res.FilingSuggestions))
	}
	got := res.FilingSuggestions[0].SuggestedDate
	want := time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("suggested date = %s, want %s (Friday)", got.Format("2006-01-02"), want.Format("2006-01-02"))
	}
}

func TestFilingSuggestionNeverBeforeToday(t *testing.T) {
	e := newTestEngine()
	events := []caserecord.TimelineEvent{
		tlEvent("Délai imminent", caserecord.CategoryDeadline, testNow.AddDate(0, 0, 1)),
	}
	res := e.Analyze(nil, events, nil)
	if len(res.FilingSuggestions) != 1 {
		t.Fatalf("expected 1 suggestion, got %d", len(res.FilingSuggestions))
	}
	today := time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
	if res.FilingSuggestions[0].SuggestedDate.Before(today) {
		t.Error("suggested date must not precede today")
	}
}

func TestNoFilingSuggestionForOverdue(t *testing.T) {
	e := newTestEngine()
	events := []caserecord.TimelineEvent{
		tlEvent("Délai dépassé", caserecord.CategoryDeadline, testNow.AddDate(0, 0, -5)),
	}
	res := e.Analyze(nil, events, nil)
	if len(res.FilingSuggestions) != 0 {
		t.Error("overdue deadlines must not receive filing suggestions")
	}
}
