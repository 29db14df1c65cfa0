// Package repositories contains the PostgreSQL implementations of the
// domain persistence ports.  All repositories share one pgx pool; none of
// them owns a transaction across calls.
package repositories

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jurisio/casebrain/internal/domain/caserecord"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/jurisio/casebrain/pkg/errors"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// CaseRepository is the PostgreSQL implementation of caserecord.Repository.
type CaseRepository struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewCaseRepository constructs a ready-to-use CaseRepository.
func NewCaseRepository(pool *pgxpool.Pool, log logging.Logger) *CaseRepository {
	return &CaseRepository{pool: pool, log: log}
}

const caseColumns = `id, reference, title, matter_type, status, jurisdiction,
	court_reference, opened_at, closed_at, metadata`

// GetCase returns a single case by ID.
func (r *CaseRepository) GetCase(ctx context.Context, id common.ID) (*caserecord.Case, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+caseColumns+` FROM cases WHERE id = $1`, id)

	c, err := scanCase(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pkgerrors.New(pkgerrors.ErrCodeCaseNotFound, "case not found").
				WithDetail("id=" + string(id))
		}
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to load case")
	}
	return c, nil
}

// ListActiveCases returns all cases whose status is open, in_progress or
// pending.
func (r *CaseRepository) ListActiveCases(ctx context.Context) ([]caserecord.Case, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+caseColumns+` FROM cases
		 WHERE status IN ('open', 'in_progress', 'pending')
		 ORDER BY opened_at`)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to list active cases")
	}
	defer rows.Close()

	var out []caserecord.Case
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to scan case")
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to iterate cases")
	}
	return out, nil
}

// ListContacts returns all contacts linked to the case.
func (r *CaseRepository) ListContacts(ctx context.Context, caseID common.ID) ([]caserecord.CaseContact, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT contact_id, case_id, name, email, phone, role, is_counsel
		 FROM case_contacts WHERE case_id = $1 ORDER BY name`, caseID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to list contacts")
	}
	defer rows.Close()

	var out []caserecord.CaseContact
	for rows.Next() {
		var ct caserecord.CaseContact
		if err := rows.Scan(&ct.ContactID, &ct.CaseID, &ct.Name, &ct.Email,
			&ct.Phone, &ct.Role, &ct.IsCounsel); err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to scan contact")
		}
		out = append(out, ct)
	}
	return out, rows.Err()
}

// ListTimeline returns the case's timeline events ordered by event date.
func (r *CaseRepository) ListTimeline(ctx context.Context, caseID common.ID) ([]caserecord.TimelineEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, case_id, event_date, category, title, description, actors,
		        is_validated, is_key_event
		 FROM timeline_events WHERE case_id = $1 ORDER BY event_date`, caseID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to list timeline")
	}
	defer rows.Close()

	var out []caserecord.TimelineEvent
	for rows.Next() {
		var ev caserecord.TimelineEvent
		if err := rows.Scan(&ev.ID, &ev.CaseID, &ev.EventDate, &ev.Category,
			&ev.Title, &ev.Description, &ev.Actors, &ev.IsValidated, &ev.IsKeyEvent); err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to scan timeline event")
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// ListCalendarEvents returns the case's agenda entries ordered by start time.
func (r *CaseRepository) ListCalendarEvents(ctx context.Context, caseID common.ID) ([]caserecord.CalendarEvent, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, case_id, title, start_at, end_at
		 FROM calendar_events WHERE case_id = $1 ORDER BY start_at`, caseID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to list calendar events")
	}
	defer rows.Close()

	var out []caserecord.CalendarEvent
	for rows.Next() {
		var ev caserecord.CalendarEvent
		if err := rows.Scan(&ev.ID, &ev.CaseID, &ev.Title, &ev.StartAt, &ev.EndAt); err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to scan calendar event")
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func scanCase(row pgx.Row) (*caserecord.Case, error) {
	var c caserecord.Case
	var meta []byte
	if err := row.Scan(&c.ID, &c.Reference, &c.Title, &c.MatterType, &c.Status,
		&c.Jurisdiction, &c.CourtReference, &c.OpenedAt, &c.ClosedAt, &meta); err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &c.Metadata); err != nil {
			return nil, err
		}
	}
	return &c, nil
}
