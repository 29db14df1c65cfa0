package brain

import (
	"context"

	"github.com/jurisio/casebrain/internal/domain/insight"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/jurisio/casebrain/pkg/errors"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// ListCaseInsights returns all insights for a case, newest first.
func (o *Orchestrator) ListCaseInsights(ctx context.Context, caseID common.ID) ([]insight.Insight, error) {
	return o.opts.Insights.ListInsights(ctx, caseID)
}

// ListCaseActions returns all action suggestions for a case, newest first.
func (o *Orchestrator) ListCaseActions(ctx context.Context, caseID common.ID) ([]insight.ActionSuggestion, error) {
	return o.opts.Insights.ListActions(ctx, caseID)
}

// DismissInsight moves an insight to its terminal dismissed state.
// Dismissing twice is a conflict surfaced to the caller.
func (o *Orchestrator) DismissInsight(ctx context.Context, id common.ID, by common.UserID) (*insight.Insight, error) {
	ins, err := o.opts.Insights.GetInsight(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ins.Dismiss(by, o.opts.Clock.Now()); err != nil {
		return nil, err
	}
	if err := o.opts.Insights.UpdateInsight(ctx, ins); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "update insight")
	}
	if err := o.opts.Events.InsightDismissed(ctx, ins); err != nil {
		o.opts.Logger.Warn("publish insight dismissal failed",
			logging.String("insight_id", string(id)), logging.Err(err))
	}
	return ins, nil
}

// ApproveAction resolves a pending action suggestion as approved.
func (o *Orchestrator) ApproveAction(ctx context.Context, id common.ID, by common.UserID) (*insight.ActionSuggestion, error) {
	return o.resolveAction(ctx, id, by, insight.ActionApproved)
}

// RejectAction resolves a pending action suggestion as rejected.
func (o *Orchestrator) RejectAction(ctx context.Context, id common.ID, by common.UserID) (*insight.ActionSuggestion, error) {
	return o.resolveAction(ctx, id, by, insight.ActionRejected)
}

func (o *Orchestrator) resolveAction(ctx context.Context, id common.ID, by common.UserID, to insight.ActionStatus) (*insight.ActionSuggestion, error) {
	act, err := o.opts.Insights.GetAction(ctx, id)
	if err != nil {
		return nil, err
	}
	now := o.opts.Clock.Now()
	if to == insight.ActionApproved {
		err = act.Approve(by, now)
	} else {
		err = act.Reject(by, now)
	}
	if err != nil {
		return nil, err
	}
	if err := o.opts.Insights.UpdateAction(ctx, act); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "update action")
	}
	if err := o.opts.Events.ActionResolved(ctx, act); err != nil {
		o.opts.Logger.Warn("publish action resolution failed",
			logging.String("action_id", string(id)), logging.Err(err))
	}
	return act, nil
}
