// Package insight defines the derived observations the brain produces: typed,
// severity-tagged insights for human review and priority-tagged action
// suggestions with an approval lifecycle.  Both are created by the engine
// when an analysis threshold is crossed and reach their terminal state only
// through an external actor — they never self-clear.
package insight

import (
	"time"

	"github.com/jurisio/casebrain/pkg/errors"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// InsightType classifies what an insight is about.
type InsightType string

const (
	InsightDeadline      InsightType = "deadline"
	InsightRisk          InsightType = "risk"
	InsightDocumentGap   InsightType = "document_gap"
	InsightBilling       InsightType = "billing"
	InsightCommunication InsightType = "communication"
	InsightContactGap    InsightType = "contact_gap"
)

// InsightStatus is the lifecycle state of an insight.
type InsightStatus string

const (
	InsightNew       InsightStatus = "new"
	InsightDismissed InsightStatus = "dismissed"
)

// Insight is a severity-tagged observation about a case.
type Insight struct {
	ID          common.ID        `json:"id"`
	CaseID      common.ID        `json:"case_id"`
	Type        InsightType      `json:"type"`
	Severity    common.RiskLevel `json:"severity"`
	Title       string           `json:"title"`
	Description string           `json:"description,omitempty"`
	Status      InsightStatus    `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	DismissedAt *time.Time       `json:"dismissed_at,omitempty"`
	DismissedBy common.UserID    `json:"dismissed_by,omitempty"`
}

// Dismiss transitions the insight to its terminal state.  Dismissing an
// already-dismissed insight is a conflict, not a no-op.
func (i *Insight) Dismiss(by common.UserID, at time.Time) error {
	if i.Status == InsightDismissed {
		return errors.New(errors.ErrCodeInsightTransitionInvalid, "insight already dismissed")
	}
	i.Status = InsightDismissed
	i.DismissedAt = &at
	i.DismissedBy = by
	return nil
}

// ActionStatus is the lifecycle state of an action suggestion.
type ActionStatus string

const (
	ActionPending  ActionStatus = "pending"
	ActionApproved ActionStatus = "approved"
	ActionRejected ActionStatus = "rejected"
)

// ActionSuggestion is a recommended next step.  Unlike an insight it carries
// a confidence score and a two-way approval lifecycle.
type ActionSuggestion struct {
	ID          common.ID       `json:"id"`
	CaseID      common.ID       `json:"case_id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Priority    common.Priority `json:"priority"`
	Confidence  float64         `json:"confidence"`
	Source      string          `json:"source,omitempty"`
	Status      ActionStatus    `json:"status"`
	DueHint     *time.Time      `json:"due_hint,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	ResolvedAt  *time.Time      `json:"resolved_at,omitempty"`
	ResolvedBy  common.UserID   `json:"resolved_by,omitempty"`
}

// Approve transitions a pending suggestion to approved.
func (a *ActionSuggestion) Approve(by common.UserID, at time.Time) error {
	return a.resolve(ActionApproved, by, at)
}

// Reject transitions a pending suggestion to rejected.
func (a *ActionSuggestion) Reject(by common.UserID, at time.Time) error {
	return a.resolve(ActionRejected, by, at)
}

func (a *ActionSuggestion) resolve(to ActionStatus, by common.UserID, at time.Time) error {
	if a.Status != ActionPending {
		return errors.New(errors.ErrCodeActionTransitionInvalid,
			"action suggestion is not pending").WithDetail("status="+string(a.Status))
	}
	a.Status = to
	a.ResolvedAt = &at
	a.ResolvedBy = by
	return nil
}
