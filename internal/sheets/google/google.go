// Package google writes the invoice ledger to a Google Sheets spreadsheet.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fatture/internal/cache"
	"fatture/internal/log"
	ports "fatture/internal/sheets"
)

const valueInputOption = "USER_ENTERED"

// Row numbers are remembered for a while so repeated upserts of the same
// invoice skip the column scan. Hand edits to the sheet can move rows, so
// entries expire.
const (
	rowIndexSize = 4096
	rowIndexTTL  = 10 * time.Minute
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
	logger        *log.Logger
	rows          *cache.LRUCache[int]
}

var _ ports.LedgerWriter = (*Client)(nil)

// Credentials selects a service account key. JSON wins over File; when both
// are empty GOOGLE_APPLICATION_CREDENTIALS is used.
type Credentials struct {
	JSON string
	File string
}

func (c Credentials) load() ([]byte, error) {
	if js := strings.TrimSpace(c.JSON); js != "" {
		return []byte(js), nil
	}
	path := strings.TrimSpace(c.File)
	if path == "" {
		path = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if path == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return b, nil
}

// New builds a client authenticated with a service account.
func New(ctx context.Context, creds Credentials, spreadsheetID, sheetName string, logger *log.Logger) (*Client, error) {
	credentialsJSON, err := creds.load()
	if err != nil {
		return nil, err
	}
	return NewWithOptions(ctx, spreadsheetID, sheetName, logger,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
}

// NewWithOptions builds a client from raw API options; tests point it at a
// local endpoint.
func NewWithOptions(ctx context.Context, spreadsheetID, sheetName string, logger *log.Logger, opts ...goption.ClientOption) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	if strings.TrimSpace(sheetName) == "" {
		return nil, errors.New("missing sheet name")
	}
	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
		logger:        logger.WithComponent(log.ComponentSheets),
		rows:          cache.NewLRUCache[int](rowIndexSize, rowIndexTTL),
	}, nil
}

func (c *Client) rangeOf(a1 string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(c.sheetName, "'", "''"), a1)
}

// UpsertInvoice rewrites the row keyed by r.InvoiceID, appending one when
// the invoice is not in the sheet yet.
func (c *Client) UpsertInvoice(ctx context.Context, r ports.Row) error {
	vr := &gsheet.ValueRange{Values: [][]any{r.Values()}}

	n, cached := c.rows.Get(r.InvoiceID)
	var keys [][]any
	if !cached {
		resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, c.rangeOf("A:A")).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("read ledger keys: %w", err)
		}
		keys = resp.Values
		n = findRow(keys, r.InvoiceID)
	}

	if n > 0 {
		_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.rangeOf(rowRange(n)), vr).
			ValueInputOption(valueInputOption).Context(ctx).Do()
		if err != nil {
			c.rows.Delete(r.InvoiceID)
			return fmt.Errorf("update ledger row %d: %w", n, err)
		}
		c.rows.Set(r.InvoiceID, n)
		c.logger.DebugContext(ctx, "Ledger row updated", log.FieldInvoiceID, r.InvoiceID, "row", n)
		return nil
	}

	if len(keys) == 0 {
		vr.Values = append([][]any{headerValues()}, vr.Values...)
	}
	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, c.rangeOf("A:I"), vr).
		ValueInputOption(valueInputOption).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("append ledger row: %w", err)
	}
	if resp.Updates != nil {
		if last := lastRowOf(resp.Updates.UpdatedRange); last > 0 {
			c.rows.Set(r.InvoiceID, last)
		}
	}
	c.logger.DebugContext(ctx, "Ledger row appended", log.FieldInvoiceID, r.InvoiceID)
	return nil
}

// ReplaceAll clears the sheet and writes the header followed by rows.
func (c *Client) ReplaceAll(ctx context.Context, rows []ports.Row) error {
	c.rows.Clear()
	if _, err := c.svc.Spreadsheets.Values.Clear(c.spreadsheetID, c.rangeOf("A:I"), &gsheet.ClearValuesRequest{}).
		Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}

	values := make([][]any, 0, len(rows)+1)
	values = append(values, headerValues())
	for _, r := range rows {
		values = append(values, r.Values())
	}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, c.rangeOf("A1"), &gsheet.ValueRange{Values: values}).
		ValueInputOption(valueInputOption).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	for i, r := range rows {
		c.rows.Set(r.InvoiceID, i+2)
	}
	c.logger.InfoContext(ctx, "Ledger rebuilt", log.FieldRowCount, len(rows))
	return nil
}
