package handlers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jurisio/casebrain/internal/domain/insight"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	"github.com/jurisio/casebrain/pkg/errors"
	braintypes "github.com/jurisio/casebrain/pkg/types/brain"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// BrainService is the slice of the orchestrator the HTTP layer consumes.
type BrainService interface {
	AnalyzeCase(ctx context.Context, caseID common.ID) (*braintypes.CaseAnalysis, error)
	GetBrainSummary(ctx context.Context) (*braintypes.BrainSummary, error)
	ListCaseInsights(ctx context.Context, caseID common.ID) ([]insight.Insight, error)
	ListCaseActions(ctx context.Context, caseID common.ID) ([]insight.ActionSuggestion, error)
	DismissInsight(ctx context.Context, id common.ID, by common.UserID) (*insight.Insight, error)
	ApproveAction(ctx context.Context, id common.ID, by common.UserID) (*insight.ActionSuggestion, error)
	RejectAction(ctx context.Context, id common.ID, by common.UserID) (*insight.ActionSuggestion, error)
}

// BrainHandler serves the analysis, lifecycle and dashboard endpoints.
type BrainHandler struct {
	brain  BrainService
	logger logging.Logger
}

func NewBrainHandler(brain BrainService, logger logging.Logger) *BrainHandler {
	return &BrainHandler{brain: brain, logger: logger}
}

// AnalyzeCase handles POST /cases/{caseID}/analyze.  It runs a synchronous
// analysis and returns the full CaseAnalysis.
func (h *BrainHandler) AnalyzeCase(w http.ResponseWriter, r *http.Request) {
	caseID := common.ID(chi.URLParam(r, "caseID"))
	if caseID == "" {
		writeError(w, h.logger, errors.New(errors.ErrCodeBadRequest, "case id is required"))
		return
	}

	analysis, err := h.brain.AnalyzeCase(r.Context(), caseID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// ListInsights handles GET /cases/{caseID}/insights.
func (h *BrainHandler) ListInsights(w http.ResponseWriter, r *http.Request) {
	caseID := common.ID(chi.URLParam(r, "caseID"))
	insights, err := h.brain.ListCaseInsights(r.Context(), caseID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if insights == nil {
		insights = []insight.Insight{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"insights": insights})
}

// ListActions handles GET /cases/{caseID}/actions.
func (h *BrainHandler) ListActions(w http.ResponseWriter, r *http.Request) {
	caseID := common.ID(chi.URLParam(r, "caseID"))
	actions, err := h.brain.ListCaseActions(r.Context(), caseID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if actions == nil {
		actions = []insight.ActionSuggestion{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"actions": actions})
}

// actorRequest carries the acting user for lifecycle transitions.
type actorRequest struct {
	By string `json:"by"`
}

func (h *BrainHandler) actor(r *http.Request) (common.UserID, error) {
	var req actorRequest
	if err := decodeJSON(r, &req); err != nil {
		return "", err
	}
	if req.By == "" {
		return "", errors.New(errors.ErrCodeValidation, "field 'by' is required")
	}
	return common.UserID(req.By), nil
}

// DismissInsight handles POST /insights/{insightID}/dismiss.
func (h *BrainHandler) DismissInsight(w http.ResponseWriter, r *http.Request) {
	by, err := h.actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	ins, err := h.brain.DismissInsight(r.Context(), common.ID(chi.URLParam(r, "insightID")), by)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, ins)
}

// ApproveAction handles POST /actions/{actionID}/approve.
func (h *BrainHandler) ApproveAction(w http.ResponseWriter, r *http.Request) {
	h.resolveAction(w, r, h.brain.ApproveAction)
}

// RejectAction handles POST /actions/{actionID}/reject.
func (h *BrainHandler) RejectAction(w http.ResponseWriter, r *http.Request) {
	h.resolveAction(w, r, h.brain.RejectAction)
}

func (h *BrainHandler) resolveAction(w http.ResponseWriter, r *http.Request, resolve func(context.Context, common.ID, common.UserID) (*insight.ActionSuggestion, error)) {
	by, err := h.actor(r)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	action, err := resolve(r.Context(), common.ID(chi.URLParam(r, "actionID")), by)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, action)
}

// GetSummary handles GET /brain/summary.
func (h *BrainHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.brain.GetBrainSummary(r.Context())
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
