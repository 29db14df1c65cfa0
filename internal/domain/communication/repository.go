package communication

import (
	"context"

	"github.com/jurisio/casebrain/pkg/types/common"
)

// Repository is the persistence port for communication records.
type Repository interface {
	// ListMessages returns all emails and calls for a case, timestamp ascending.
	ListMessages(ctx context.Context, caseID common.ID) ([]Message, error)
}
