package billing

import (
	"context"

	"github.com/jurisio/casebrain/pkg/types/common"
)

// Repository is the persistence port for billing records.
type Repository interface {
	// ListTimeEntries returns all time entries for a case, date ascending.
	ListTimeEntries(ctx context.Context, caseID common.ID) ([]TimeEntry, error)

	// ListInvoices returns all invoices for a case, issue date ascending.
	ListInvoices(ctx context.Context, caseID common.ID) ([]Invoice, error)
}
