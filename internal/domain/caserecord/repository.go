package caserecord

import (
	"context"

	"github.com/jurisio/casebrain/pkg/types/common"
)

// Repository is the persistence port for case records.  The engine only ever
// reads through it; all writes belong to the owning collaborator.
type Repository interface {
	// GetCase returns a single case by ID.
	GetCase(ctx context.Context, id common.ID) (*Case, error)

	// ListActiveCases returns all cases whose status is open, in_progress or
	// pending, in no particular order.
	ListActiveCases(ctx context.Context) ([]Case, error)

	// ListContacts returns all contacts linked to the case.
	ListContacts(ctx context.Context, caseID common.ID) ([]CaseContact, error)

	// ListTimeline returns the case's timeline events ordered by event date ascending.
	ListTimeline(ctx context.Context, caseID common.ID) ([]TimelineEvent, error)

	// ListCalendarEvents returns the case's agenda entries ordered by start time ascending.
	ListCalendarEvents(ctx context.Context, caseID common.ID) ([]CalendarEvent, error)
}
