package repositories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jurisio/casebrain/internal/domain/billing"
	"github.com/jurisio/casebrain/internal/infrastructure/monitoring/logging"
	pkgerrors "github.com/jurisio/casebrain/pkg/errors"
	"github.com/jurisio/casebrain/pkg/types/common"
)

// BillingRepository is the PostgreSQL implementation of billing.Repository.
type BillingRepository struct {
	pool *pgxpool.Pool
	log  logging.Logger
}

// NewBillingRepository constructs a ready-to-use BillingRepository.
func NewBillingRepository(pool *pgxpool.Pool, log logging.Logger) *BillingRepository {
	return &BillingRepository{pool: pool, log: log}
}

// ListTimeEntries returns all time entries for a case, date ascending.
func (r *BillingRepository) ListTimeEntries(ctx context.Context, caseID common.ID) ([]billing.TimeEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, case_id, date, hours, billable, status, hourly_rate, note
		 FROM time_entries WHERE case_id = $1 ORDER BY date`, caseID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to list time entries")
	}
	defer rows.Close()

	var out []billing.TimeEntry
	for rows.Next() {
		var e billing.TimeEntry
		if err := rows.Scan(&e.ID, &e.CaseID, &e.Date, &e.Hours, &e.Billable,
			&e.Status, &e.HourlyRate, &e.Note); err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to scan time entry")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ListInvoices returns all invoices for a case, issue date ascending.
func (r *BillingRepository) ListInvoices(ctx context.Context, caseID common.ID) ([]billing.Invoice, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, case_id, number, amount, status, issued_at, hours_covered
		 FROM invoices WHERE case_id = $1 ORDER BY issued_at`, caseID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to list invoices")
	}
	defer rows.Close()

	var out []billing.Invoice
	for rows.Next() {
		var inv billing.Invoice
		if err := rows.Scan(&inv.ID, &inv.CaseID, &inv.Number, &inv.Amount,
			&inv.Status, &inv.IssuedAt, &inv.HoursCovered); err != nil {
			return nil, pkgerrors.Wrap(err, pkgerrors.ErrCodeDatabaseError, "failed to scan invoice")
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}
