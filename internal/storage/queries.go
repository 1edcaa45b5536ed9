package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the statements of the schema in migrations/.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type ClientRow struct {
	ID        string
	Name      string
	Company   string
	Email     string
	Phone     string
	Address   string
	CreatedAt string
}

type InvoiceRow struct {
	ID        string
	ClientID  string
	IssueDate string
	DueDate   string
	Total     float64
	Status    string
	CreatedAt string
}

type InvoiceItemRow struct {
	ID          string
	InvoiceID   string
	Position    int64
	Description string
	Quantity    int64
	UnitPrice   float64
}

// InvoiceWithClientRow is one row of the invoices ⋈ clients join.
type InvoiceWithClientRow struct {
	Invoice InvoiceRow
	Client  ClientRow
}

const clientColumns = `id, name, company, email, phone, address, created_at`

const createClient = `INSERT INTO clients (` + clientColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateClient(ctx context.Context, c ClientRow) error {
	_, err := q.db.ExecContext(ctx, createClient, c.ID, c.Name, c.Company, c.Email, c.Phone, c.Address, c.CreatedAt)
	return err
}

const getClient = `SELECT ` + clientColumns + ` FROM clients WHERE id = ?`

func (q *Queries) GetClient(ctx context.Context, id string) (ClientRow, error) {
	var c ClientRow
	err := q.db.QueryRowContext(ctx, getClient, id).Scan(&c.ID, &c.Name, &c.Company, &c.Email, &c.Phone, &c.Address, &c.CreatedAt)
	return c, err
}

const listClients = `SELECT ` + clientColumns + ` FROM clients ORDER BY name, created_at`

func (q *Queries) ListClients(ctx context.Context) ([]ClientRow, error) {
	rows, err := q.db.QueryContext(ctx, listClients)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ClientRow
	for rows.Next() {
		var c ClientRow
		if err := rows.Scan(&c.ID, &c.Name, &c.Company, &c.Email, &c.Phone, &c.Address, &c.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

const createInvoice = `INSERT INTO invoices (id, client_id, issue_date, due_date, total, status, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateInvoice(ctx context.Context, i InvoiceRow) error {
	_, err := q.db.ExecContext(ctx, createInvoice, i.ID, i.ClientID, i.IssueDate, i.DueDate, i.Total, i.Status, i.CreatedAt)
	return err
}

const createInvoiceItem = `INSERT INTO invoice_items (id, invoice_id, position, description, quantity, unit_price)
VALUES (?, ?, ?, ?, ?, ?)`

func (q *Queries) CreateInvoiceItem(ctx context.Context, it InvoiceItemRow) error {
	_, err := q.db.ExecContext(ctx, createInvoiceItem, it.ID, it.InvoiceID, it.Position, it.Description, it.Quantity, it.UnitPrice)
	return err
}

const invoiceWithClientColumns = `i.id, i.client_id, i.issue_date, i.due_date, i.total, i.status, i.created_at,
       c.id, c.name, c.company, c.email, c.phone, c.address, c.created_at
FROM invoices i
JOIN clients c ON c.id = i.client_id`

const (
	listInvoicesByInsertion = `SELECT ` + invoiceWithClientColumns + `
ORDER BY i.rowid
LIMIT ?`
	listInvoicesByIssueDate = `SELECT ` + invoiceWithClientColumns + `
ORDER BY i.issue_date DESC, i.rowid DESC
LIMIT ?`
	getInvoiceWithClient = `SELECT ` + invoiceWithClientColumns + `
WHERE i.id = ?`
)

func scanInvoiceWithClient(row interface{ Scan(...any) error }) (InvoiceWithClientRow, error) {
	var r InvoiceWithClientRow
	err := row.Scan(
		&r.Invoice.ID, &r.Invoice.ClientID, &r.Invoice.IssueDate, &r.Invoice.DueDate,
		&r.Invoice.Total, &r.Invoice.Status, &r.Invoice.CreatedAt,
		&r.Client.ID, &r.Client.Name, &r.Client.Company, &r.Client.Email,
		&r.Client.Phone, &r.Client.Address, &r.Client.CreatedAt,
	)
	return r, err
}

// ListInvoicesWithClient runs one of the list statements. A negative limit
// means no limit in SQLite.
func (q *Queries) ListInvoicesWithClient(ctx context.Context, byIssueDateDesc bool, limit int64) ([]InvoiceWithClientRow, error) {
	query := listInvoicesByInsertion
	if byIssueDateDesc {
		query = listInvoicesByIssueDate
	}
	rows, err := q.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InvoiceWithClientRow
	for rows.Next() {
		r, err := scanInvoiceWithClient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func (q *Queries) GetInvoiceWithClient(ctx context.Context, id string) (InvoiceWithClientRow, error) {
	return scanInvoiceWithClient(q.db.QueryRowContext(ctx, getInvoiceWithClient, id))
}

const listInvoiceItems = `SELECT id, invoice_id, position, description, quantity, unit_price
FROM invoice_items
WHERE invoice_id = ?
ORDER BY position`

func (q *Queries) ListInvoiceItems(ctx context.Context, invoiceID string) ([]InvoiceItemRow, error) {
	rows, err := q.db.QueryContext(ctx, listInvoiceItems, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []InvoiceItemRow
	for rows.Next() {
		var it InvoiceItemRow
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.Position, &it.Description, &it.Quantity, &it.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

const updateInvoiceStatus = `UPDATE invoices SET status = ? WHERE id = ?`

// UpdateInvoiceStatus returns the number of rows changed.
func (q *Queries) UpdateInvoiceStatus(ctx context.Context, id, status string) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateInvoiceStatus, status, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
