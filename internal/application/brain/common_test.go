package brain

import (
	"context"
	"time"

	dombilling "github.com/jurisio/casebrain/internal/domain/billing"
	"github.com/jurisio/casebrain/internal/domain/caserecord"
	"github.com/jurisio/casebrain/internal/domain/communication"
	"github.com/jurisio/casebrain/internal/domain/document"
	"github.com/jurisio/casebrain/internal/domain/insight"
	pkgerrors "github.com/jurisio/casebrain/pkg/errors"
	braintypes "github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// Wednesday, fixed for deterministic urgency and recency arithmetic.
var testNow = time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC)

// ---------------------------------------------------------------------------
// Repository mocks
// ---------------------------------------------------------------------------

type mockCaseRepo struct {
	cases    map[common.ID]*caserecord.Case
	contacts map[common.ID][]caserecord.CaseContact
	timeline map[common.ID][]caserecord.TimelineEvent
	calendar map[common.ID][]caserecord.CalendarEvent
	err      error
}

func newMockCaseRepo() *mockCaseRepo {
	return &mockCaseRepo{
		cases:    make(map[common.ID]*caserecord.Case),
		contacts: make(map[common.ID][]caserecord.CaseContact),
		timeline: make(map[common.ID][]caserecord.TimelineEvent),
		calendar: make(map[common.ID][]caserecord.CalendarEvent),
	}
}

func (m *mockCaseRepo) GetCase(_ context.Context, id common.ID) (*caserecord.Case, error) {
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.cases[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.ErrCodeCaseNotFound, "case not found")
	}
	return c, nil
}

func (m *mockCaseRepo) ListActiveCases(context.Context) ([]caserecord.Case, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []caserecord.Case
	for _, c := range m.cases {
		if c.Status.IsActive() {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (m *mockCaseRepo) ListContacts(_ context.Context, id common.ID) ([]caserecord.CaseContact, error) {
	return m.contacts[id], m.err
}

func (m *mockCaseRepo) ListTimeline(_ context.Context, id common.ID) ([]caserecord.TimelineEvent, error) {
	return m.timeline[id], m.err
}

func (m *mockCaseRepo) ListCalendarEvents(_ context.Context, id common.ID) ([]caserecord.CalendarEvent, error) {
	return m.calendar[id], m.err
}

type mockCommsRepo struct {
	messages map[common.ID][]communication.Message
	err      error
}

func newMockCommsRepo() *mockCommsRepo {
	return &mockCommsRepo{messages: make(map[common.ID][]communication.Message)}
}

func (m *mockCommsRepo) ListMessages(_ context.Context, id common.ID) ([]communication.Message, error) {
	return m.messages[id], m.err
}

type mockBillingRepo struct {
	entries  map[common.ID][]dombilling.TimeEntry
	invoices map[common.ID][]dombilling.Invoice
	err      error
}

func newMockBillingRepo() *mockBillingRepo {
	return &mockBillingRepo{
		entries:  make(map[common.ID][]dombilling.TimeEntry),
		invoices: make(map[common.ID][]dombilling.Invoice),
	}
}

func (m *mockBillingRepo) ListTimeEntries(_ context.Context, id common.ID) ([]dombilling.TimeEntry, error) {
	return m.entries[id], m.err
}

func (m *mockBillingRepo) ListInvoices(_ context.Context, id common.ID) ([]dombilling.Invoice, error) {
	return m.invoices[id], m.err
}

type mockDocRepo struct {
	docs map[common.ID][]document.Document
	err  error
}

func newMockDocRepo() *mockDocRepo {
	return &mockDocRepo{docs: make(map[common.ID][]document.Document)}
}

func (m *mockDocRepo) ListDocuments(_ context.Context, id common.ID) ([]document.Document, error) {
	return m.docs[id], m.err
}

type mockBlobStore struct {
	texts map[string]string
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{texts: make(map[string]string)}
}

func (m *mockBlobStore) FetchText(_ context.Context, key string) (string, error) {
	text, ok := m.texts[key]
	if !ok {
		return "", pkgerrors.New(pkgerrors.ErrCodeDocumentNotFound, "object not found")
	}
	return text, nil
}

type mockInsightRepo struct {
	insights map[common.ID][]insight.Insight          // by case
	actions  map[common.ID][]insight.ActionSuggestion // by case
	byInsID  map[common.ID]*insight.Insight
	byActID  map[common.ID]*insight.ActionSuggestion
	pending  int
	updates  int
	err      error
}

func newMockInsightRepo() *mockInsightRepo {
	return &mockInsightRepo{
		insights: make(map[common.ID][]insight.Insight),
		actions:  make(map[common.ID][]insight.ActionSuggestion),
		byInsID:  make(map[common.ID]*insight.Insight),
		byActID:  make(map[common.ID]*insight.ActionSuggestion),
	}
}

func (m *mockInsightRepo) ReplaceInsights(_ context.Context, caseID common.ID, insights []insight.Insight) error {
	if m.err != nil {
		return m.err
	}
	m.insights[caseID] = insights
	return nil
}

func (m *mockInsightRepo) ReplaceActions(_ context.Context, caseID common.ID, actions []insight.ActionSuggestion) error {
	if m.err != nil {
		return m.err
	}
	m.actions[caseID] = actions
	return nil
}

func (m *mockInsightRepo) ListInsights(_ context.Context, caseID common.ID) ([]insight.Insight, error) {
	return m.insights[caseID], m.err
}

func (m *mockInsightRepo) ListActions(_ context.Context, caseID common.ID) ([]insight.ActionSuggestion, error) {
	return m.actions[caseID], m.err
}

func (m *mockInsightRepo) GetInsight(_ context.Context, id common.ID) (*insight.Insight, error) {
	ins, ok := m.byInsID[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.ErrCodeInsightNotFound, "insight not found")
	}
	return ins, nil
}

func (m *mockInsightRepo) GetAction(_ context.Context, id common.ID) (*insight.ActionSuggestion, error) {
	act, ok := m.byActID[id]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.ErrCodeActionNotFound, "action not found")
	}
	return act, nil
}

func (m *mockInsightRepo) UpdateInsight(_ context.Context, ins *insight.Insight) error {
	if m.err != nil {
		return m.err
	}
	m.updates++
	m.byInsID[ins.ID] = ins
	return nil
}

func (m *mockInsightRepo) UpdateAction(_ context.Context, act *insight.ActionSuggestion) error {
	if m.err != nil {
		return m.err
	}
	m.updates++
	m.byActID[act.ID] = act
	return nil
}

func (m *mockInsightRepo) CountPendingActions(context.Context, []common.ID) (int, error) {
	return m.pending, m.err
}

// ---------------------------------------------------------------------------
// Port mocks
// ---------------------------------------------------------------------------

type mockEvents struct {
	insightsReplaced int
	actionsReplaced  int
	dismissed        int
	resolved         int
	err              error
}

func (m *mockEvents) InsightsReplaced(context.Context, common.ID, []insight.Insight) error {
	m.insightsReplaced++
	return m.err
}

func (m *mockEvents) ActionsReplaced(context.Context, common.ID, []insight.ActionSuggestion) error {
	m.actionsReplaced++
	return m.err
}

func (m *mockEvents) InsightDismissed(context.Context, *insight.Insight) error {
	m.dismissed++
	return m.err
}

func (m *mockEvents) ActionResolved(context.Context, *insight.ActionSuggestion) error {
	m.resolved++
	return m.err
}

type mockCache struct {
	summary *braintypes.BrainSummary
	sets    int
}

func (m *mockCache) Get(context.Context) (*braintypes.BrainSummary, bool) {
	return m.summary, m.summary != nil
}

func (m *mockCache) Set(_ context.Context, s *braintypes.BrainSummary) {
	m.summary = s
	m.sets++
}

type mockMetrics struct {
	analyses  int
	summaries int
	hits      int
	misses    int
}

func (m *mockMetrics) ObserveAnalysis(time.Duration, int, int) { m.analyses++ }
func (m *mockMetrics) ObserveSummary(time.Duration, int)       { m.summaries++ }
func (m *mockMetrics) SummaryCacheAccess(hit bool) {
	if hit {
		m.hits++
	} else {
		m.misses++
	}
}

// ---------------------------------------------------------------------------
// Fixture helpers
// ---------------------------------------------------------------------------

type testEnv struct {
	cases    *mockCaseRepo
	comms    *mockCommsRepo
	billing  *mockBillingRepo
	docs     *mockDocRepo
	blobs    *mockBlobStore
	insights *mockInsightRepo
	events   *mockEvents
	cache    *mockCache
	metrics  *mockMetrics
	orch     *Orchestrator
}

func newTestEnv() *testEnv {
	env := &testEnv{
		cases:    newMockCaseRepo(),
		comms:    newMockCommsRepo(),
		billing:  newMockBillingRepo(),
		docs:     newMockDocRepo(),
		blobs:    newMockBlobStore(),
		insights: newMockInsightRepo(),
		events:   &mockEvents{},
		cache:    &mockCache{},
		metrics:  &mockMetrics{},
	}
	orch, err := NewOrchestrator(Options{
		Cases:     env.cases,
		Comms:     env.comms,
		Billing:   env.billing,
		Documents: env.docs,
		Blobs:     env.blobs,
		Insights:  env.insights,
		Events:    env.events,
		Cache:     env.cache,
		Metrics:   env.metrics,
		Clock:     common.FixedClock{T: testNow},
	})
	if err != nil {
		panic(err)
	}
	env.orch = orch
	return env
}

func (e *testEnv) addCase(c *caserecord.Case) {
	e.cases.cases[c.ID] = c
}

func openCivilCase(id common.ID) *caserecord.Case {
	return &caserecord.Case{
		ID:           id,
		Reference:    "2025/" + string(id),
		Title:        "Dossier " + string(id),
		MatterType:   caserecord.MatterCivil,
		Status:       caserecord.StatusOpen,
		Jurisdiction: "Tribunal de première instance de Bruxelles",
		OpenedAt:     testNow.AddDate(0, 0, -30),
	}
}

func timelineDeadline(caseID common.ID, title string, date time.Time) caserecord.TimelineEvent {
	return caserecord.TimelineEvent{
		ID:        common.ID(string(caseID) + "-" + title),
		CaseID:    caseID,
		EventDate: date,
		Category:  caserecord.CategoryDeadline,
		Title:     title,
	}
}
