package insight

import (
	"context"

	"github.com/jurisio/casebrain/pkg/types/common"
)

// Repository is the persistence port for derived insights and actions.
// It is the only port the brain writes through.
type Repository interface {
	// ReplaceInsights atomically replaces all non-dismissed insights for a
	// case with the freshly derived set.  Dismissed insights are preserved so
	// that re-analysis never resurrects what a human has cleared.
	ReplaceInsights(ctx context.Context, caseID common.ID, insights []Insight) error

	// ReplaceActions does the same for pending action suggestions; approved
	// and rejected suggestions are preserved.
	ReplaceActions(ctx context.Context, caseID common.ID, actions []ActionSuggestion) error

	// ListInsights returns all insights for a case, newest first.
	ListInsights(ctx context.Context, caseID common.ID) ([]Insight, error)

	// ListActions returns all action suggestions for a case, newest first.
	ListActions(ctx context.Context, caseID common.ID) ([]ActionSuggestion, error)

	// GetInsight returns a single insight by ID.
	GetInsight(ctx context.Context, id common.ID) (*Insight, error)

	// GetAction returns a single action suggestion by ID.
	GetAction(ctx context.Context, id common.ID) (*ActionSuggestion, error)

	// UpdateInsight persists a lifecycle transition.
	UpdateInsight(ctx context.Context, ins *Insight) error

	// UpdateAction persists a lifecycle transition.
	UpdateAction(ctx context.Context, act *ActionSuggestion) error

	// CountPendingActions returns the number of pending suggestions across
	// the given cases.
	CountPendingActions(ctx context.Context, caseIDs []common.ID) (int, error)
}
