// Package billing defines time-entry and invoice records as produced by the
// practice-management collaborator.
package billing

import (
	"time"

	"github.com/jurisio/casebrain/pkg/types/common"
)

// EntryStatus is the workflow state of a time entry.
type EntryStatus string

const (
	EntryDraft     EntryStatus = "draft"
	EntrySubmitted EntryStatus = "submitted"
	EntryApproved  EntryStatus = "approved"
	EntryInvoiced  EntryStatus = "invoiced"
)

// TimeEntry is a unit of recorded work on a case.
type TimeEntry struct {
	ID         common.ID   `json:"id"`
	CaseID     common.ID   `json:"case_id"`
	Date       time.Time   `json:"date"`
	Hours      float64     `json:"hours"`
	Billable   bool        `json:"billable"`
	Status     EntryStatus `json:"status"`
	HourlyRate float64     `json:"hourly_rate,omitempty"`
	Note       string      `json:"note,omitempty"`
}

// IsBilled reports whether the entry has already been carried onto an invoice.
func (e *TimeEntry) IsBilled() bool {
	return e.Status == EntryInvoiced
}

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Invoice is a bill issued against a case.
type Invoice struct {
	ID           common.ID     `json:"id"`
	CaseID       common.ID     `json:"case_id"`
	Number       string        `json:"number,omitempty"`
	Amount       float64       `json:"amount"`
	Status       InvoiceStatus `json:"status"`
	IssuedAt     time.Time     `json:"issued_at"`
	HoursCovered float64       `json:"hours_covered"`
}

// IsOutstanding reports whether the invoice has been issued but not settled.
func (i *Invoice) IsOutstanding() bool {
	return i.Status == InvoiceSent || i.Status == InvoiceOverdue
}
