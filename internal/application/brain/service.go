// Package brain is the application-layer orchestrator of the case
// intelligence engine.  It fetches raw case records through the persistence
// ports, runs the pure analyzers over them, merges the results into a
// CaseAnalysis, derives and persists insights and action suggestions, and
// aggregates all active cases into the dashboard BrainSummary.
//
// The orchestrator owns no analytic logic of its own: every score, band and
// threshold comes from the intelligence packages.  Its job is fetching,
// merging, ranking and persisting.
package brain

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	dombilling "github.com/jurisio/casebrain/internal/domain/billing"
	"github.com/jurisio/casebrain/internal/domain/caserecord"
	"github.com/jurisio/casebrain/internal/domain/communication"
	"github.com/jurisio/casebrain/internal/domain/document"
	"github.com/jurisio/casebrain/internal/domain/insight"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	intbilling "github.com/jurisio/casebrain/internal/intelligence/billing"
	"github.com/jurisio/casebrain/internal/intelligence/caseanalysis"
	"github.com/jurisio/casebrain/internal/intelligence/comms"
	"github.com/jurisio/casebrain/internal/intelligence/deadline"
	"github.com/jurisio/casebrain/internal/intelligence/docintel"
	pkgerrors "github.com/jurisio/casebrain/pkg/errors"
	braintypes "github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

const (
	defaultMaxConcurrent  = 8
	defaultMaxDocsPerCase = 25
)

// Options wires the orchestrator's collaborators.  The five repositories are
// required; everything else has a working default (system clock, nop logger,
// default analyzer configurations, no cache, no events).
type Options struct {
	Cases     caserecord.Repository
	Comms     communication.Repository
	Billing   dombilling.Repository
	Documents document.Repository
	Insights  insight.Repository

	// Blobs provides document text for the classifier.  When nil, document
	// analysis is skipped and CaseAnalysis.Documents stays empty.
	Blobs document.BlobStore

	CaseAnalyzer    *caseanalysis.Analyzer
	DeadlineEngine  *deadline.Engine
	CommScorer      *comms.Scorer
	BillingAnalyzer *intbilling.Analyzer
	Classifier      *docintel.Classifier

	Clock   common.Clock
	Logger  logging.Logger
	Metrics Metrics
	Events  EventPublisher
	Cache   SummaryCache

	// MaxConcurrent bounds the per-case fan-out of GetBrainSummary.
	MaxConcurrent int

	// MaxDocsPerCase caps how many document texts one analysis fetches.
	MaxDocsPerCase int
}

// Orchestrator composes the five analyzers over persisted case records.
// It is safe for concurrent use.
type Orchestrator struct {
	opts   Options
	flight singleflight.Group
}

// NewOrchestrator validates the options and fills in defaults.
func NewOrchestrator(opts Options) (*Orchestrator, error) {
	if opts.Cases == nil || opts.Comms == nil || opts.Billing == nil ||
		opts.Documents == nil || opts.Insights == nil {
		return nil, pkgerrors.New(pkgerrors.ErrCodeValidation,
			"brain: case, communication, billing, document and insight repositories are required")
	}
	if opts.Clock == nil {
		opts.Clock = common.NewSystemClock()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NopMetrics{}
	}
	if opts.Events == nil {
		opts.Events = NopEvents{}
	}
	if opts.CaseAnalyzer == nil {
		opts.CaseAnalyzer = caseanalysis.NewAnalyzer(caseanalysis.DefaultConfig(), opts.Clock)
	}
	if opts.DeadlineEngine == nil {
		opts.DeadlineEngine = deadline.NewEngine(deadline.DefaultConfig(), opts.Clock)
	}
	if opts.CommScorer == nil {
		opts.CommScorer = comms.NewScorer(comms.DefaultConfig(), opts.Clock)
	}
	if opts.BillingAnalyzer == nil {
		opts.BillingAnalyzer = intbilling.NewAnalyzer(intbilling.DefaultConfig(), opts.Clock)
	}
	if opts.Classifier == nil {
		opts.Classifier = docintel.NewClassifier()
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	if opts.MaxDocsPerCase <= 0 {
		opts.MaxDocsPerCase = defaultMaxDocsPerCase
	}
	return &Orchestrator{opts: opts}, nil
}

// caseData bundles everything one analysis run reads.
type caseData struct {
	c        *caserecord.Case
	contacts []caserecord.CaseContact
	timeline []caserecord.TimelineEvent
	calendar []caserecord.CalendarEvent
	messages []communication.Message
	entries  []dombilling.TimeEntry
	invoices []dombilling.Invoice
	docs     []document.Document
}

// AnalyzeCase runs the full analysis of one case: fetch, analyze, derive
// insights and actions, persist the derived set and return the merged
// picture.  Derived insights replace the previous non-dismissed set; derived
// actions replace the previous pending set.
func (o *Orchestrator) AnalyzeCase(ctx context.Context, caseID common.ID) (*braintypes.CaseAnalysis, error) {
	start := o.opts.Clock.Now()

	c, err := o.opts.Cases.GetCase(ctx, caseID)
	if err != nil {
		return nil, err
	}
	data, err := o.fetchRecords(ctx, c)
	if err != nil {
		return nil, err
	}

	analysis := o.analyze(ctx, data)

	insights := o.generateInsights(data, analysis)
	actions := o.suggestActions(data, analysis)

	if err := o.opts.Insights.ReplaceInsights(ctx, caseID, insights); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeAnalysisFailed, "store derived insights")
	}
	if err := o.opts.Insights.ReplaceActions(ctx, caseID, actions); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeAnalysisFailed, "store derived actions")
	}
	if err := o.opts.Events.InsightsReplaced(ctx, caseID, insights); err != nil {
		o.opts.Logger.Warn("publish insights event failed",
			logging.String("case_id", string(caseID)), logging.Err(err))
	}
	if err := o.opts.Events.ActionsReplaced(ctx, caseID, actions); err != nil {
		o.opts.Logger.Warn("publish actions event failed",
			logging.String("case_id", string(caseID)), logging.Err(err))
	}

	analysis.Insights = insightResults(insights)
	analysis.Actions = actionResults(actions)
	analysis.AnalyzedAt = common.Timestamp(o.opts.Clock.Now())

	o.opts.Metrics.ObserveAnalysis(o.opts.Clock.Now().Sub(start), len(insights), len(actions))
	o.opts.Logger.Info("case analyzed",
		logging.String("case_id", string(caseID)),
		logging.Int("insights", len(insights)),
		logging.Int("actions", len(actions)))
	return analysis, nil
}

// fetchRecords loads every record collection the analyzers read.  Any fetch
// failure aborts the analysis; the analyzers themselves never see I/O.
func (o *Orchestrator) fetchRecords(ctx context.Context, c *caserecord.Case) (*caseData, error) {
	data := &caseData{c: c}
	var err error

	if data.contacts, err = o.opts.Cases.ListContacts(ctx, c.ID); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeAnalysisFailed, "load contacts")
	}
	if data.timeline, err = o.opts.Cases.ListTimeline(ctx, c.ID); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeAnalysisFailed, "load timeline")
	}
	if data.calendar, err = o.opts.Cases.ListCalendarEvents(ctx, c.ID); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeAnalysisFailed, "load calendar")
	}
	if data.messages, err = o.opts.Comms.ListMessages(ctx, c.ID); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeAnalysisFailed, "load messages")
	}
	if data.entries, err = o.opts.Billing.ListTimeEntries(ctx, c.ID); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeAnalysisFailed, "load time entries")
	}
	if data.invoices, err = o.opts.Billing.ListInvoices(ctx, c.ID); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeAnalysisFailed, "load invoices")
	}
	if data.docs, err = o.opts.Documents.ListDocuments(ctx, c.ID); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeAnalysisFailed, "load documents")
	}
	return data, nil
}

// analyze runs the pure analyzers over already-fetched records.
func (o *Orchestrator) analyze(ctx context.Context, d *caseData) *braintypes.CaseAnalysis {
	return &braintypes.CaseAnalysis{
		CaseID:        string(d.c.ID),
		Risk:          o.opts.CaseAnalyzer.AssessRisk(d.c, d.contacts, d.timeline, d.docs, d.entries, d.messages),
		Completeness:  o.opts.CaseAnalyzer.AnalyzeCompleteness(d.c, d.contacts, d.docs, ""),
		Health:        o.opts.CaseAnalyzer.CalculateHealth(d.c, d.contacts, d.timeline, d.entries, d.messages),
		Deadlines:     o.opts.DeadlineEngine.Analyze(d.c, d.timeline, d.calendar),
		Communication: o.opts.CommScorer.ScoreHealth(d.c.ID, d.messages, d.contacts),
		Billing:       o.opts.BillingAnalyzer.Analyze(d.entries, d.invoices, []caserecord.Case{*d.c}),
		Documents:     o.analyzeDocuments(ctx, d.docs),
		Strategy:      o.opts.CaseAnalyzer.SuggestStrategy(d.c, d.contacts, d.timeline, ""),
	}
}

// analyzeDocuments classifies the case's stored documents.  A document whose
// text cannot be fetched is skipped with a warning; the rest of the analysis
// proceeds.
func (o *Orchestrator) analyzeDocuments(ctx context.Context, docs []document.Document) []braintypes.DocumentAnalysisResult {
	if o.opts.Blobs == nil {
		return nil
	}
	var results []braintypes.DocumentAnalysisResult
	analyzed := 0
	for i := range docs {
		if analyzed >= o.opts.MaxDocsPerCase {
			o.opts.Logger.Warn("document analysis capped",
				logging.Int("limit", o.opts.MaxDocsPerCase),
				logging.Int("total", len(docs)))
			break
		}
		doc := &docs[i]
		if doc.StorageKey == "" {
			continue
		}
		text, err := o.opts.Blobs.FetchText(ctx, doc.StorageKey)
		if err != nil {
			o.opts.Logger.Warn("document text unavailable",
				logging.String("document_id", string(doc.ID)),
				logging.String("storage_key", doc.StorageKey),
				logging.Err(err))
			continue
		}
		results = append(results, *o.opts.Classifier.Analyze(text, doc.Name))
		analyzed++
	}
	return results
}

// insightResults converts persisted insights to their DTO form.
func insightResults(insights []insight.Insight) []braintypes.InsightResult {
	out := make([]braintypes.InsightResult, len(insights))
	for i, ins := range insights {
		out[i] = braintypes.InsightResult{
			ID:          string(ins.ID),
			CaseID:      string(ins.CaseID),
			Type:        string(ins.Type),
			Severity:    ins.Severity,
			Title:       ins.Title,
			Description: ins.Description,
			Status:      string(ins.Status),
			CreatedAt:   common.Timestamp(ins.CreatedAt),
		}
	}
	return out
}

// actionResults converts persisted action suggestions to their DTO form.
func actionResults(actions []insight.ActionSuggestion) []braintypes.ActionSuggestionResult {
	out := make([]braintypes.ActionSuggestionResult, len(actions))
	for i, act := range actions {
		out[i] = braintypes.ActionSuggestionResult{
			ID:          string(act.ID),
			CaseID:      string(act.CaseID),
			Title:       act.Title,
			Description: act.Description,
			Priority:    act.Priority,
			Confidence:  act.Confidence,
			Source:      act.Source,
			Status:      string(act.Status),
			DueHint:     act.DueHint,
			CreatedAt:   common.Timestamp(act.CreatedAt),
		}
	}
	return out
}

func frenchDays(days int) string {
	if days == 1 || days == -1 {
		return "1 jour"
	}
	return fmt.Sprintf("%d jours", days)
}
