// Package caseanalysis implements the case analyzer: multi-factor risk
// assessment, document completeness against per-matter checklists, rule-based
// strategy suggestions and composite case health.
//
// The analyzer is pure: no I/O, no mutable state after construction, every
// date-relative value derived from the injected clock.  Safe for concurrent
// use.
package caseanalysis

import (
	"fmt"
	"time"

	dombilling "github.com/jurisio/casebrain/internal/domain/billing"
	"github.com/jurisio/casebrain/internal/domain/caserecord"
	"github.com/jurisio/casebrain/internal/domain/communication"
	"github.com/jurisio/casebrain/internal/domain/document"
	intcommon "github.com/jurisio/casebrain/internal/intelligence/common"
	"github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// RiskWeights are the per-factor weights of the risk assessment.  They sum
// to 1; the weighted mean re-normalizes anyway, so a disabled factor
// (weight 0) simply drops out.
type RiskWeights struct {
	DeadlineProximity float64
	MissingDocuments  float64
	AdverseCounsel    float64
	CaseAge           float64
	BillingGap        float64
	CommunicationGap  float64
}

// Config carries the analyzer's weight tables and thresholds.
type Config struct {
	Risk RiskWeights

	// ExpectedDurationDays maps a case status to how long a case is
	// expected to stay in it before age becomes a risk signal.
	ExpectedDurationDays map[caserecord.CaseStatus]int

	// StalePendingDays triggers the stale-pending strategy rule.
	StalePendingDays int

	// DefaultCommunicationGapDays is assumed when a case has no
	// communication at all.
	DefaultCommunicationGapDays int

	// Checklists maps a matter type to its completeness checklist; matters
	// absent from the map fall back to the MatterOther checklist.
	Checklists map[caserecord.MatterType][]ChecklistSpec
}

// ChecklistSpec declares one expected document element for a matter type.
// An element is present when any of its keywords occurs in a document name.
type ChecklistSpec struct {
	Name       string
	Label      string
	Importance brain.Importance
	Keywords   []string
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		Risk: RiskWeights{
			DeadlineProximity: 0.25,
			MissingDocuments:  0.20,
			AdverseCounsel:    0.10,
			CaseAge:           0.15,
			BillingGap:        0.15,
			CommunicationGap:  0.15,
		},
		ExpectedDurationDays: map[caserecord.CaseStatus]int{
			caserecord.StatusOpen:       180,
			caserecord.StatusInProgress: 365,
			caserecord.StatusPending:    90,
		},
		StalePendingDays:            60,
		DefaultCommunicationGapDays: 90,
		Checklists:                  defaultChecklists(),
	}
}

// Analyzer evaluates case risk, completeness, strategy and health.
type Analyzer struct {
	cfg   Config
	clock common.Clock
}

// NewAnalyzer constructs an Analyzer.  A nil clock falls back to the system
// clock; zero-valued config sections fall back to the defaults.
func NewAnalyzer(cfg Config, clock common.Clock) *Analyzer {
	if clock == nil {
		clock = common.NewSystemClock()
	}
	def := DefaultConfig()
	if cfg.Risk == (RiskWeights{}) {
		cfg.Risk = def.Risk
	}
	if len(cfg.ExpectedDurationDays) == 0 {
		cfg.ExpectedDurationDays = def.ExpectedDurationDays
	}
	if cfg.StalePendingDays <= 0 {
		cfg.StalePendingDays = def.StalePendingDays
	}
	if cfg.DefaultCommunicationGapDays <= 0 {
		cfg.DefaultCommunicationGapDays = def.DefaultCommunicationGapDays
	}
	if len(cfg.Checklists) == 0 {
		cfg.Checklists = def.Checklists
	}
	return &Analyzer{cfg: cfg, clock: clock}
}

// No-data factor scores.  A case that carries no signal for a factor gets a
// documented neutral value instead of an error.
const (
	noDeadlineDataScore = 30
	noAdversePartyScore = 20
	noBillingDataScore  = 50
)

// AssessRisk scores the six risk factors and combines them into a single
// weight-normalized assessment.  Every factor is total over missing data:
// empty slices produce the documented neutral scores, never an error.
func (a *Analyzer) AssessRisk(
	c *caserecord.Case,
	contacts []caserecord.CaseContact,
	timeline []caserecord.TimelineEvent,
	docs []document.Document,
	entries []dombilling.TimeEntry,
	messages []communication.Message,
) *brain.RiskAssessment {
	now := a.clock.Now()

	factors := []brain.RiskFactor{
		a.deadlineProximityFactor(timeline, now),
		a.missingDocumentsFactor(c, contacts, docs),
		a.adverseCounselFactor(contacts),
		a.caseAgeFactor(c, now),
		a.billingGapFactor(entries, now),
		a.communicationGapFactor(messages, now),
	}

	weighted := make([]intcommon.Weighted, len(factors))
	for i, f := range factors {
		weighted[i] = intcommon.Weighted{Score: f.Score, Weight: f.Weight}
	}
	overall := intcommon.WeightedMean(weighted, 0)

	assessment := &brain.RiskAssessment{
		OverallScore: overall,
		Level:        intcommon.RiskLevelForScore(overall),
		Factors:      factors,
		AssessedAt:   common.Timestamp(now),
	}
	if c != nil {
		assessment.CaseID = string(c.ID)
	}
	return assessment
}

// deadlineProximityFactor scores how close the nearest upcoming deadline is.
// Overdue deadlines dominate; no deadline events at all yields the neutral
// no-data score.
func (a *Analyzer) deadlineProximityFactor(timeline []caserecord.TimelineEvent, now time.Time) brain.RiskFactor {
	factor := brain.RiskFactor{
		Name:   "deadline_proximity",
		Label:  "Deadline proximity",
		Weight: a.cfg.Risk.DeadlineProximity,
	}

	nearest := 0
	found := false
	for _, ev := range timeline {
		switch ev.Category {
		case caserecord.CategoryDeadline, caserecord.CategoryHearing, caserecord.CategoryAudience:
		default:
			continue
		}
		days := intcommon.DaysBetween(now, ev.EventDate)
		if !found || days < nearest {
			nearest = days
			found = true
		}
	}

	if !found {
		factor.Score = noDeadlineDataScore
		factor.Detail = "no deadline events on record"
		return factor
	}

	switch {
	case nearest < 0:
		factor.Score = 100
		factor.Detail = fmt.Sprintf("deadline overdue by %d days", -nearest)
	case nearest <= 3:
		factor.Score = 90
	case nearest <= 7:
		factor.Score = 75
	case nearest <= 14:
		factor.Score = 50
	case nearest <= 30:
		factor.Score = 35
	default:
		factor.Score = 15
	}
	if factor.Detail == "" {
		factor.Detail = fmt.Sprintf("next deadline in %d days", nearest)
	}
	return factor
}

// missingDocumentsFactor inverts the completeness score, weighting missing
// critical elements twice as hard as important ones.
func (a *Analyzer) missingDocumentsFactor(
	c *caserecord.Case,
	contacts []caserecord.CaseContact,
	docs []document.Document,
) brain.RiskFactor {
	report := a.AnalyzeCompleteness(c, contacts, docs, "")
	score := intcommon.Clamp(100 - report.Score)
	detail := fmt.Sprintf("%d of %d expected elements present", presentCount(report.Items), len(report.Items))
	if n := len(report.MissingCritical); n > 0 {
		detail = fmt.Sprintf("%s, %d critical missing", detail, n)
	}
	return brain.RiskFactor{
		Name:   "missing_documents",
		Label:  "Missing documents",
		Score:  score,
		Weight: a.cfg.Risk.MissingDocuments,
		Detail: detail,
	}
}

func presentCount(items []brain.ChecklistItem) int {
	n := 0
	for _, it := range items {
		if it.Present {
			n++
		}
	}
	return n
}

// adverseCounselFactor scores the opposing side: a represented adversary is
// the strongest signal, an unidentified one the weakest.
func (a *Analyzer) adverseCounselFactor(contacts []caserecord.CaseContact) brain.RiskFactor {
	factor := brain.RiskFactor{
		Name:   "adverse_counsel",
		Label:  "Adverse party representation",
		Weight: a.cfg.Risk.AdverseCounsel,
	}
	var adverse, counsel bool
	for _, contact := range contacts {
		if contact.Role != caserecord.RoleAdverse {
			continue
		}
		adverse = true
		if contact.IsCounsel {
			counsel = true
		}
	}
	switch {
	case counsel:
		factor.Score = 70
		factor.Detail = "adverse party is represented by counsel"
	case adverse:
		factor.Score = 40
		factor.Detail = "adverse party identified, no counsel on record"
	default:
		factor.Score = noAdversePartyScore
		factor.Detail = "no adverse party identified"
	}
	return factor
}

// caseAgeFactor compares the case age to the expected duration for its
// status.  Statuses without an expectation (closed, archived) score 0.
func (a *Analyzer) caseAgeFactor(c *caserecord.Case, now time.Time) brain.RiskFactor {
	factor := brain.RiskFactor{
		Name:   "case_age",
		Label:  "Case age",
		Weight: a.cfg.Risk.CaseAge,
	}
	if c == nil {
		factor.Detail = "no case record"
		return factor
	}
	expected, ok := a.cfg.ExpectedDurationDays[c.Status]
	if !ok || expected <= 0 {
		factor.Detail = "no duration expectation for status " + string(c.Status)
		return factor
	}

	ageDays := int(c.Age(now).Hours() / 24)
	ratio := float64(ageDays) / float64(expected)
	switch {
	case ratio <= 0.5:
		factor.Score = 10
	case ratio <= 1:
		factor.Score = 40
	case ratio <= 1.5:
		factor.Score = 70
	default:
		factor.Score = 90
	}
	factor.Detail = fmt.Sprintf("open for %d days, %d expected for status %s", ageDays, expected, c.Status)
	return factor
}

// billingGapFactor scores how long ago work was last recorded.
func (a *Analyzer) billingGapFactor(entries []dombilling.TimeEntry, now time.Time) brain.RiskFactor {
	factor := brain.RiskFactor{
		Name:   "billing_gap",
		Label:  "Billing gap",
		Weight: a.cfg.Risk.BillingGap,
	}
	var last time.Time
	for i := range entries {
		if entries[i].Date.After(last) {
			last = entries[i].Date
		}
	}
	if last.IsZero() {
		factor.Score = noBillingDataScore
		factor.Detail = "no time entries on record"
		return factor
	}
	factor.Score = gapScore(intcommon.DaysBetween(last, now))
	factor.Detail = fmt.Sprintf("last time entry %d days ago", intcommon.DaysBetween(last, now))
	return factor
}

// communicationGapFactor scores how long the case has been silent.  With no
// communication at all the configured default gap applies.
func (a *Analyzer) communicationGapFactor(messages []communication.Message, now time.Time) brain.RiskFactor {
	factor := brain.RiskFactor{
		Name:   "communication_gap",
		Label:  "Communication gap",
		Weight: a.cfg.Risk.CommunicationGap,
	}
	var last time.Time
	for i := range messages {
		if messages[i].Timestamp.After(last) {
			last = messages[i].Timestamp
		}
	}
	gap := a.cfg.DefaultCommunicationGapDays
	if !last.IsZero() {
		gap = intcommon.DaysBetween(last, now)
	}
	factor.Score = gapScore(gap)
	if last.IsZero() {
		factor.Detail = fmt.Sprintf("no communication on record, assuming a %d-day gap", gap)
	} else {
		factor.Detail = fmt.Sprintf("last communication %d days ago", gap)
	}
	return factor
}

// gapScore converts a days-since-activity gap to a risk score.
func gapScore(days int) float64 {
	switch {
	case days <= 7:
		return 10
	case days <= 14:
		return 25
	case days <= 30:
		return 45
	case days <= 60:
		return 65
	default:
		return 80
	}
}
