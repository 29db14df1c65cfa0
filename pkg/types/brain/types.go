// Package brain defines the serializable result records produced by the
// case-intelligence engine.  They are plain data: once returned they are
// owned by the caller, carry no behavior, and marshal cleanly to JSON for the
// API and persistence collaborators.
package brain

import (
	"time"

	"github.com/jurisio/casebrain/pkg/types/common"
)

// ---------------------------------------------------------------------------
// Risk
// ---------------------------------------------------------------------------

// RiskFactor is one weighted component of a risk assessment.
type RiskFactor struct {
	Name   string  `json:"name"`
	Label  string  `json:"label"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
	Detail string  `json:"detail,omitempty"`
}

// RiskAssessment is the multi-factor risk picture of a case.
// OverallScore is the weight-normalized mean of all factors with positive
// weight, clamped to [0,100].
type RiskAssessment struct {
	CaseID       string           `json:"case_id"`
	OverallScore float64          `json:"overall_score"`
	Level        common.RiskLevel `json:"level"`
	Factors      []RiskFactor     `json:"factors"`
	AssessedAt   common.Timestamp `json:"assessed_at"`
}

// ---------------------------------------------------------------------------
// Completeness
// ---------------------------------------------------------------------------

// Importance tags a checklist element as blocking or merely expected.
type Importance string

const (
	ImportanceCritical  Importance = "critical"
	ImportanceImportant Importance = "important"
)

// ChecklistItem is one element of a matter-type completeness checklist.
type ChecklistItem struct {
	Name       string     `json:"name"`
	Label      string     `json:"label"`
	Importance Importance `json:"importance"`
	Present    bool       `json:"present"`
	MatchedBy  string     `json:"matched_by,omitempty"`
}

// CompletenessReport scores how much of the expected document set a case has.
type CompletenessReport struct {
	CaseID           string          `json:"case_id"`
	MatterType       string          `json:"matter_type"`
	Score            float64         `json:"score"`
	Items            []ChecklistItem `json:"items"`
	MissingCritical  []string        `json:"missing_critical"`
	MissingImportant []string        `json:"missing_important"`
}

// ---------------------------------------------------------------------------
// Strategy
// ---------------------------------------------------------------------------

// StrategySuggestion is one rule-derived recommendation, ordered by priority.
type StrategySuggestion struct {
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Priority    common.Priority `json:"priority"`
	Rationale   string          `json:"rationale,omitempty"`
}

// ---------------------------------------------------------------------------
// Health
// ---------------------------------------------------------------------------

// HealthStatus bands a health score.  Canonical bands: >=75 healthy,
// >=50 attention, >=25 at_risk, else critical.
type HealthStatus string

const (
	HealthHealthy   HealthStatus = "healthy"
	HealthAttention HealthStatus = "attention"
	HealthAtRisk    HealthStatus = "at_risk"
	HealthCritical  HealthStatus = "critical"
)

// Trend is the direction of recent case activity.
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

// HealthComponent is one weighted component of a case health score.
type HealthComponent struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
	Detail string  `json:"detail,omitempty"`
}

// CaseHealth is the composite operational health of a case.
type CaseHealth struct {
	CaseID       string            `json:"case_id"`
	OverallScore float64           `json:"overall_score"`
	Status       HealthStatus      `json:"status"`
	Components   []HealthComponent `json:"components"`
	Trend        Trend             `json:"trend"`
}

// ---------------------------------------------------------------------------
// Deadlines
// ---------------------------------------------------------------------------

// Urgency bands days-remaining for a deadline.  Canonical bands: overdue or
// <=3 days critical, <=7 urgent, <=14 attention, else normal.
type Urgency string

const (
	UrgencyCritical  Urgency = "critical"
	UrgencyUrgent    Urgency = "urgent"
	UrgencyAttention Urgency = "attention"
	UrgencyNormal    Urgency = "normal"
)

// Order returns the ordinal position of the urgency, most urgent first.
func (u Urgency) Order() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyUrgent:
		return 1
	case UrgencyAttention:
		return 2
	case UrgencyNormal:
		return 3
	default:
		return 4
	}
}

// DeadlineItem is a detected deadline with its urgency.
type DeadlineItem struct {
	Title         string    `json:"title"`
	Source        string    `json:"source"` // "timeline" | "calendar"
	Category      string    `json:"category,omitempty"`
	Date          time.Time `json:"date"`
	DaysRemaining int       `json:"days_remaining"`
	Urgency       Urgency   `json:"urgency"`
}

// DeadlineConflict flags two deadlines within one calendar day of each other.
type DeadlineConflict struct {
	FirstTitle  string           `json:"first_title"`
	SecondTitle string           `json:"second_title"`
	FirstDate   time.Time        `json:"first_date"`
	SecondDate  time.Time        `json:"second_date"`
	DaysApart   int              `json:"days_apart"`
	Severity    common.RiskLevel `json:"severity"` // high if same day, medium otherwise
}

// FilingSuggestion proposes a filing date ahead of a deadline.
type FilingSuggestion struct {
	DeadlineTitle string    `json:"deadline_title"`
	DeadlineDate  time.Time `json:"deadline_date"`
	SuggestedDate time.Time `json:"suggested_date"`
}

// DeadlineAnalysis is the full deadline picture of a case, deadlines sorted
// by date ascending.  Legal carries the statutory deadlines opened by the
// case's validated and key timeline events.
type DeadlineAnalysis struct {
	CaseID            string             `json:"case_id"`
	Deadlines         []DeadlineItem     `json:"deadlines"`
	Conflicts         []DeadlineConflict `json:"conflicts"`
	FilingSuggestions []FilingSuggestion `json:"filing_suggestions"`
	Legal             []LegalDeadline    `json:"legal_deadlines,omitempty"`
}

// LegalDeadline is a statutory deadline or prescription boundary computed
// from an event date.
type LegalDeadline struct {
	Label      string    `json:"label"`
	Date       time.Time `json:"date"`
	LegalBasis string    `json:"legal_basis"`
	Category   string    `json:"category"` // "procedural" | "prescription"
}

// WeekLoad is the predicted deadline load of one Monday-aligned week.
type WeekLoad struct {
	WeekStart  time.Time `json:"week_start"`
	Count      int       `json:"count"`
	Overloaded bool      `json:"overloaded"`
	Labels     []string  `json:"labels,omitempty"`
}

// WorkloadPrediction buckets upcoming deadlines into the next four weeks.
type WorkloadPrediction struct {
	Weeks         []WeekLoad `json:"weeks"`
	PeakWeekStart time.Time  `json:"peak_week_start"`
	PeakCount     int        `json:"peak_count"`
}

// ---------------------------------------------------------------------------
// Communication
// ---------------------------------------------------------------------------

// PartyStatus bands a party's contact recency against its role thresholds.
type PartyStatus string

const (
	PartyOK       PartyStatus = "ok"
	PartyWarning  PartyStatus = "warning"
	PartyCritical PartyStatus = "critical"
	PartyAbsent   PartyStatus = "absent" // no communication at all
)

// PartyHealth is the communication picture for one contact.
type PartyHealth struct {
	ContactID    string      `json:"contact_id"`
	Name         string      `json:"name"`
	Role         string      `json:"role"`
	LastContact  *time.Time  `json:"last_contact,omitempty"`
	DaysSince    int         `json:"days_since"`
	MessageCount int         `json:"message_count"`
	Status       PartyStatus `json:"status"`
	Score        float64     `json:"score"`
}

// CommunicationHealth aggregates the per-party picture for a case.
type CommunicationHealth struct {
	CaseID           string        `json:"case_id"`
	Parties          []PartyHealth `json:"parties"`
	AvgResponseHours float64       `json:"avg_response_hours"`
	OverallScore     float64       `json:"overall_score"`
}

// UrgencyScore is the keyword-derived urgency of a single message.
type UrgencyScore struct {
	Score    float64          `json:"score"`
	Category common.RiskLevel `json:"category"`
	Matched  []string         `json:"matched,omitempty"`
}

// SentimentShift marks an abrupt tone change between adjacent messages.
type SentimentShift struct {
	Index     int       `json:"index"`
	Timestamp time.Time `json:"timestamp"`
	Delta     float64   `json:"delta"`
	Excerpt   string    `json:"excerpt,omitempty"`
}

// SentimentTrend is the chronological tone analysis of a message sequence.
type SentimentTrend struct {
	Current    string           `json:"current"` // positive | neutral | negative | hostile
	Trend      Trend            `json:"trend"`
	KeyMoments []SentimentShift `json:"key_moments,omitempty"`
	AlertLevel common.RiskLevel `json:"alert_level"`
}

// ---------------------------------------------------------------------------
// Billing
// ---------------------------------------------------------------------------

// AnomalyType names one of the billing anomaly detectors.
type AnomalyType string

const (
	AnomalyUnbilledTime    AnomalyType = "unbilled_time"
	AnomalyUnusualHours    AnomalyType = "unusual_hours"
	AnomalyWeekendWork     AnomalyType = "weekend_work"
	AnomalyMissingRate     AnomalyType = "missing_rate"
	AnomalyOverdueInvoice  AnomalyType = "overdue_invoice"
	AnomalyClosedCaseWork  AnomalyType = "closed_case_work"
	AnomalyStaleBilling    AnomalyType = "stale_billing"
	AnomalyLowRecoveryRate AnomalyType = "low_recovery_rate"
)

// BillingAnomaly is one detected irregularity.
type BillingAnomaly struct {
	Type        AnomalyType      `json:"type"`
	Severity    common.RiskLevel `json:"severity"`
	CaseID      string           `json:"case_id,omitempty"`
	Description string           `json:"description"`
	Amount      float64          `json:"amount,omitempty"`
}

// InvoiceUrgency tiers invoice suggestions.
type InvoiceUrgency string

const (
	InvoiceOverdueTier     InvoiceUrgency = "overdue"
	InvoiceRecommendedTier InvoiceUrgency = "recommended"
	InvoiceNormalTier      InvoiceUrgency = "normal"
)

// Order returns the ordinal position of the tier, most urgent first.
func (u InvoiceUrgency) Order() int {
	switch u {
	case InvoiceOverdueTier:
		return 0
	case InvoiceRecommendedTier:
		return 1
	case InvoiceNormalTier:
		return 2
	default:
		return 3
	}
}

// InvoiceSuggestion proposes invoicing accumulated unbilled work.
type InvoiceSuggestion struct {
	CaseID          string         `json:"case_id"`
	UnbilledHours   float64        `json:"unbilled_hours"`
	EstimatedAmount float64        `json:"estimated_amount"`
	Urgency         InvoiceUrgency `json:"urgency"`
}

// CaseBilling is the per-case billing breakdown inside a report.
type CaseBilling struct {
	CaseID          string  `json:"case_id"`
	TotalHours      float64 `json:"total_hours"`
	BilledHours     float64 `json:"billed_hours"`
	UnbilledHours   float64 `json:"unbilled_hours"`
	EstimatedAmount float64 `json:"estimated_amount"`
	RecoveryRate    float64 `json:"recovery_rate"`
}

// BillingReport is the full billing health picture across the supplied cases.
type BillingReport struct {
	TotalUnbilledHours  float64             `json:"total_unbilled_hours"`
	TotalUnbilledAmount float64             `json:"total_unbilled_amount"`
	RecoveryRate        float64             `json:"recovery_rate"`
	PerCase             []CaseBilling       `json:"per_case"`
	Anomalies           []BillingAnomaly    `json:"anomalies"`
	Suggestions         []InvoiceSuggestion `json:"suggestions"`
	Recommendations     []string            `json:"recommendations"`
}

// ---------------------------------------------------------------------------
// Insights / actions (DTO forms)
// ---------------------------------------------------------------------------

// InsightResult is the serializable form of a derived insight.
type InsightResult struct {
	ID          string           `json:"id"`
	CaseID      string           `json:"case_id"`
	Type        string           `json:"type"`
	Severity    common.RiskLevel `json:"severity"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Status      string           `json:"status"`
	CreatedAt   common.Timestamp `json:"created_at"`
}

// ActionSuggestionResult is the serializable form of a derived action.
type ActionSuggestionResult struct {
	ID          string           `json:"id"`
	CaseID      string           `json:"case_id"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Priority    common.Priority  `json:"priority"`
	Confidence  float64          `json:"confidence"`
	Source      string           `json:"source,omitempty"`
	Status      string           `json:"status"`
	DueHint     *time.Time       `json:"due_hint,omitempty"`
	CreatedAt   common.Timestamp `json:"created_at"`
}

// ---------------------------------------------------------------------------
// Composition
// ---------------------------------------------------------------------------

// CaseAnalysis is everything the brain knows about one case after a full run.
type CaseAnalysis struct {
	CaseID        string                   `json:"case_id"`
	Risk          *RiskAssessment          `json:"risk"`
	Completeness  *CompletenessReport      `json:"completeness"`
	Health        *CaseHealth              `json:"health"`
	Deadlines     *DeadlineAnalysis        `json:"deadlines"`
	Communication *CommunicationHealth     `json:"communication"`
	Billing       *BillingReport           `json:"billing"`
	Documents     []DocumentAnalysisResult `json:"documents,omitempty"`
	Strategy      []StrategySuggestion     `json:"strategy,omitempty"`
	Insights      []InsightResult          `json:"insights"`
	Actions       []ActionSuggestionResult `json:"actions"`
	AnalyzedAt    common.Timestamp         `json:"analyzed_at"`
}

// BrainSummary is the dashboard-level aggregation across all active cases.
type BrainSummary struct {
	ActiveCases      int                      `json:"active_cases"`
	RiskDistribution map[common.RiskLevel]int `json:"risk_distribution"`
	DeadlinesNext7   int                      `json:"deadlines_next_7"`
	DeadlinesNext14  int                      `json:"deadlines_next_14"`
	DeadlinesNext30  int                      `json:"deadlines_next_30"`
	PendingActions   int                      `json:"pending_actions"`
	Workload         *WorkloadPrediction      `json:"workload"`
	RevenueAtRisk    float64                  `json:"revenue_at_risk"`
	GeneratedAt      common.Timestamp         `json:"generated_at"`
}
