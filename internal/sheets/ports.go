// Package sheets mirrors invoices into a spreadsheet ledger.
package sheets

import (
	"context"
	"strconv"
	"time"

	"fatture/internal/core"
)

// Header is the first row of the ledger sheet. Column A holds the invoice id
// and is the lookup key for upserts.
var Header = []string{"Invoice ID", "Number", "Client", "Company", "Issue Date", "Due Date", "Total", "Status", "Updated At"}

// Row is one invoice as written to the ledger.
type Row struct {
	InvoiceID string
	Number    string
	Client    string
	Company   string
	IssueDate string
	DueDate   string
	Total     float64
	Status    string
	UpdatedAt time.Time
}

// RowFromInvoice flattens an invoice read with its client embedded.
func RowFromInvoice(inv core.Invoice, now time.Time) Row {
	r := Row{
		InvoiceID: inv.ID,
		Number:    inv.ShortID(),
		IssueDate: inv.IssueDate.Format(core.DateLayout),
		DueDate:   inv.DueDate.Format(core.DateLayout),
		Total:     inv.Total,
		Status:    string(inv.Status),
		UpdatedAt: now.UTC(),
	}
	if inv.Client != nil {
		r.Client = inv.Client.Name
		r.Company = inv.Client.Company
	}
	return r
}

// Values renders the row as spreadsheet cells.
func (r Row) Values() []any {
	return []any{
		r.InvoiceID,
		r.Number,
		r.Client,
		r.Company,
		r.IssueDate,
		r.DueDate,
		strconv.FormatFloat(r.Total, 'f', 2, 64),
		r.Status,
		r.UpdatedAt.Format(time.RFC3339),
	}
}

// LedgerWriter is implemented by the Google Sheets client.
type LedgerWriter interface {
	// UpsertInvoice rewrites the row with the same invoice id or appends one.
	UpsertInvoice(ctx context.Context, r Row) error
	// ReplaceAll clears the ledger and writes the header plus rows.
	ReplaceAll(ctx context.Context, rows []Row) error
}
