// Package storage is the SQLite implementation of the store ports.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fatture/internal/core"
	"fatture/internal/log"
	"fatture/internal/store"
)

const timestampLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	logger  *log.Logger
	now     func() time.Time
}

var _ store.Backend = (*SQLiteRepository)(nil)

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteRepository(dbPath string, logger *log.Logger) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:      db,
		queries: New(db),
		logger:  logger.WithComponent(log.ComponentStorage),
		now:     time.Now,
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) CreateClient(ctx context.Context, d core.ClientDraft) (core.Client, error) {
	row := ClientRow{
		ID:        uuid.NewString(),
		Name:      d.Name,
		Company:   d.Company,
		Email:     d.Email,
		Phone:     d.Phone,
		Address:   d.Address,
		CreatedAt: r.now().UTC().Format(timestampLayout),
	}
	if err := r.queries.CreateClient(ctx, row); err != nil {
		return core.Client{}, store.Wrap("create client", err)
	}
	r.logger.InfoContext(ctx, "Client saved to SQLite", log.FieldClientID, row.ID)
	return clientFromRow(row)
}

func (r *SQLiteRepository) ListClients(ctx context.Context) ([]core.Client, error) {
	rows, err := r.queries.ListClients(ctx)
	if err != nil {
		return nil, store.Wrap("list clients", err)
	}
	out := make([]core.Client, 0, len(rows))
	for _, row := range rows {
		c, err := clientFromRow(row)
		if err != nil {
			return nil, store.Wrap("list clients", err)
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *SQLiteRepository) GetClient(ctx context.Context, id string) (core.Client, error) {
	row, err := r.queries.GetClient(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Client{}, store.ErrNotFound
	}
	if err != nil {
		return core.Client{}, store.Wrap("get client", err)
	}
	return clientFromRow(row)
}

// CreateInvoice writes the invoice row and its items in one transaction.
func (r *SQLiteRepository) CreateInvoice(ctx context.Context, inv core.Invoice, drafts []core.ItemDraft) (core.Invoice, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Invoice{}, store.Wrap("create invoice", fmt.Errorf("begin: %w", err))
	}
	defer tx.Rollback()

	q := r.queries.WithTx(tx)

	inv.ID = uuid.NewString()
	inv.CreatedAt = r.now().UTC()
	if inv.Status == "" {
		inv.Status = core.StatusPending
	}
	err = q.CreateInvoice(ctx, InvoiceRow{
		ID:        inv.ID,
		ClientID:  inv.ClientID,
		IssueDate: inv.IssueDate.Format(core.DateLayout),
		DueDate:   inv.DueDate.Format(core.DateLayout),
		Total:     inv.Total,
		Status:    string(inv.Status),
		CreatedAt: inv.CreatedAt.Format(timestampLayout),
	})
	if err != nil {
		return core.Invoice{}, store.Wrap("create invoice", err)
	}

	inv.Client = nil
	inv.Items = make([]core.InvoiceItem, len(drafts))
	for i, d := range drafts {
		item := core.InvoiceItem{
			ID:          uuid.NewString(),
			InvoiceID:   inv.ID,
			Description: d.Description,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
		}
		err := q.CreateInvoiceItem(ctx, InvoiceItemRow{
			ID:          item.ID,
			InvoiceID:   item.InvoiceID,
			Position:    int64(i),
			Description: item.Description,
			Quantity:    int64(item.Quantity),
			UnitPrice:   item.UnitPrice,
		})
		if err != nil {
			return core.Invoice{}, store.Wrap("create invoice item", err)
		}
		inv.Items[i] = item
	}

	if err := tx.Commit(); err != nil {
		return core.Invoice{}, store.Wrap("create invoice", fmt.Errorf("commit: %w", err))
	}

	r.logger.InfoContext(ctx, "Invoice saved to SQLite",
		log.NewFields().WithInvoice(inv.ID, inv.ClientID, string(inv.Status), inv.Total, len(inv.Items)).ToSlice()...)
	return inv, nil
}

func (r *SQLiteRepository) ListInvoices(ctx context.Context, q store.InvoiceQuery) ([]core.Invoice, error) {
	limit := int64(-1)
	if q.Limit > 0 {
		limit = int64(q.Limit)
	}
	rows, err := r.queries.ListInvoicesWithClient(ctx, q.Order == store.OrderIssueDateDesc, limit)
	if err != nil {
		return nil, store.Wrap("list invoices", err)
	}
	out := make([]core.Invoice, 0, len(rows))
	for _, row := range rows {
		inv, err := invoiceFromRow(row)
		if err != nil {
			return nil, store.Wrap("list invoices", err)
		}
		out = append(out, inv)
	}
	return out, nil
}

func (r *SQLiteRepository) GetInvoice(ctx context.Context, id string) (core.Invoice, error) {
	row, err := r.queries.GetInvoiceWithClient(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Invoice{}, store.ErrNotFound
	}
	if err != nil {
		return core.Invoice{}, store.Wrap("get invoice", err)
	}
	inv, err := invoiceFromRow(row)
	if err != nil {
		return core.Invoice{}, store.Wrap("get invoice", err)
	}

	items, err := r.queries.ListInvoiceItems(ctx, id)
	if err != nil {
		return core.Invoice{}, store.Wrap("list invoice items", err)
	}
	inv.Items = make([]core.InvoiceItem, len(items))
	for i, it := range items {
		inv.Items[i] = core.InvoiceItem{
			ID:          it.ID,
			InvoiceID:   it.InvoiceID,
			Description: it.Description,
			Quantity:    int(it.Quantity),
			UnitPrice:   it.UnitPrice,
		}
	}
	return inv, nil
}

func (r *SQLiteRepository) UpdateInvoiceStatus(ctx context.Context, id string, status core.Status) error {
	n, err := r.queries.UpdateInvoiceStatus(ctx, id, string(status))
	if err != nil {
		return store.Wrap("update invoice status", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func clientFromRow(row ClientRow) (core.Client, error) {
	created, err := time.Parse(timestampLayout, row.CreatedAt)
	if err != nil {
		return core.Client{}, fmt.Errorf("parse client created_at %q: %w", row.CreatedAt, err)
	}
	return core.Client{
		ID:        row.ID,
		Name:      row.Name,
		Company:   row.Company,
		Email:     row.Email,
		Phone:     row.Phone,
		Address:   row.Address,
		CreatedAt: created,
	}, nil
}

func invoiceFromRow(row InvoiceWithClientRow) (core.Invoice, error) {
	issue, err := core.ParseDate(row.Invoice.IssueDate)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("parse issue_date: %w", err)
	}
	due, err := core.ParseDate(row.Invoice.DueDate)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("parse due_date: %w", err)
	}
	created, err := time.Parse(timestampLayout, row.Invoice.CreatedAt)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("parse invoice created_at: %w", err)
	}
	client, err := clientFromRow(row.Client)
	if err != nil {
		return core.Invoice{}, err
	}
	return core.Invoice{
		ID:        row.Invoice.ID,
		ClientID:  row.Invoice.ClientID,
		Client:    &client,
		IssueDate: issue,
		DueDate:   due,
		Total:     row.Invoice.Total,
		Status:    core.Status(row.Invoice.Status),
		CreatedAt: created,
	}, nil
}
