// Package store declares the table-scoped ports the application reads and
// writes through. Adapters live in internal/store/memory, internal/storage
// (SQLite) and internal/postgres.
package store

import (
	"context"
	"errors"
	"fmt"

	"fatture/internal/core"
)

// ErrNotFound is returned by single-row reads and updates that match no row.
var ErrNotFound = errors.New("not found")

// Error wraps a failure reported by the underlying store.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("store %s: %v", e.Op, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// Wrap annotates err with op unless it is nil or already a not-found result.
func Wrap(op string, err error) error {
	if err == nil || errors.Is(err, ErrNotFound) {
		return err
	}
	return &Error{Op: op, Err: err}
}

// InvoiceOrder selects the sort order of ListInvoices.
type InvoiceOrder int

const (
	// OrderCreated returns invoices in insertion order.
	OrderCreated InvoiceOrder = iota
	// OrderIssueDateDesc returns the most recently issued first.
	OrderIssueDateDesc
)

// InvoiceQuery narrows ListInvoices. Limit <= 0 means no limit.
type InvoiceQuery struct {
	Order InvoiceOrder
	Limit int
}

// Ports for outbound adapters.
type (
	ClientWriter interface {
		// CreateClient inserts a row and returns it with id and created_at set.
		CreateClient(ctx context.Context, d core.ClientDraft) (core.Client, error)
	}

	ClientLister interface {
		// ListClients returns every client ordered by name.
		ListClients(ctx context.Context) ([]core.Client, error)
	}

	ClientReader interface {
		GetClient(ctx context.Context, id string) (core.Client, error)
	}

	InvoiceWriter interface {
		// CreateInvoice stores the invoice and its items in one atomic write.
		// The referenced client must exist. The returned invoice has ids set
		// and carries the stored items.
		CreateInvoice(ctx context.Context, inv core.Invoice, items []core.ItemDraft) (core.Invoice, error)
	}

	InvoiceLister interface {
		// ListInvoices returns invoices with their client embedded.
		ListInvoices(ctx context.Context, q InvoiceQuery) ([]core.Invoice, error)
	}

	InvoiceReader interface {
		// GetInvoice returns one invoice with client and items embedded.
		GetInvoice(ctx context.Context, id string) (core.Invoice, error)
	}

	InvoiceStatusUpdater interface {
		UpdateInvoiceStatus(ctx context.Context, id string, status core.Status) error
	}

	// Backend is the full set of ports a data store provides.
	Backend interface {
		ClientWriter
		ClientLister
		ClientReader
		InvoiceWriter
		InvoiceLister
		InvoiceReader
		InvoiceStatusUpdater
	}
)
