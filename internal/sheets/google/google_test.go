package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	goption "google.golang.org/api/option"

	ports "fatture/internal/sheets"
)

type call struct {
	method string
	path   string
	body   map[string]any
}

type fakeSheets struct {
	mu    sync.Mutex
	keys  [][]any
	calls []call
}

func (f *fakeSheets) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var body map[string]any
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&body)
	}
	f.calls = append(f.calls, call{method: r.Method, path: r.URL.Path, body: body})

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodGet:
		_ = json.NewEncoder(w).Encode(map[string]any{"values": f.keys})
	default:
		_, _ = w.Write([]byte(`{}`))
	}
}

func (f *fakeSheets) find(method, suffix string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.method == method && strings.HasSuffix(c.path, suffix) {
			out = append(out, c)
		}
	}
	return out
}

func newTestClient(t *testing.T, fake *fakeSheets) *Client {
	t.Helper()
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	c, err := NewWithOptions(context.Background(), "sheet-id", "Invoices", nil,
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("NewWithOptions: %v", err)
	}
	return c
}

func testRow(id string) ports.Row {
	return ports.Row{
		InvoiceID: id,
		Number:    id[:3],
		Client:    "Ada",
		IssueDate: "2024-03-01",
		DueDate:   "2024-03-31",
		Total:     125.5,
		Status:    "pending",
		UpdatedAt: time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC),
	}
}

func TestUpsertInvoiceUpdatesExistingRow(t *testing.T) {
	fake := &fakeSheets{keys: [][]any{{"Invoice ID"}, {"first"}, {"second"}}}
	c := newTestClient(t, fake)

	if err := c.UpsertInvoice(context.Background(), testRow("second")); err != nil {
		t.Fatalf("UpsertInvoice: %v", err)
	}

	puts := fake.find(http.MethodPut, "A3:I3")
	if len(puts) != 1 {
		t.Fatalf("expected one update of row 3, calls: %+v", fake.calls)
	}
	rows, _ := puts[0].body["values"].([]any)
	if len(rows) != 1 {
		t.Fatalf("values = %v", puts[0].body["values"])
	}
	cells := rows[0].([]any)
	if cells[0] != "second" || cells[6] != "125.50" || cells[7] != "pending" {
		t.Errorf("cells = %v", cells)
	}
	if n := len(fake.find(http.MethodPost, ":append")); n != 0 {
		t.Errorf("unexpected append calls: %d", n)
	}
}

func TestUpsertInvoiceAppendsNewRow(t *testing.T) {
	fake := &fakeSheets{keys: [][]any{{"Invoice ID"}, {"first"}}}
	c := newTestClient(t, fake)

	if err := c.UpsertInvoice(context.Background(), testRow("third")); err != nil {
		t.Fatalf("UpsertInvoice: %v", err)
	}
	appends := fake.find(http.MethodPost, ":append")
	if len(appends) != 1 {
		t.Fatalf("expected one append, calls: %+v", fake.calls)
	}
	if rows, _ := appends[0].body["values"].([]any); len(rows) != 1 {
		t.Errorf("append should carry a single row, got %d", len(rows))
	}
}

func TestUpsertInvoiceWritesHeaderOnEmptySheet(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	if err := c.UpsertInvoice(context.Background(), testRow("first")); err != nil {
		t.Fatalf("UpsertInvoice: %v", err)
	}
	appends := fake.find(http.MethodPost, ":append")
	if len(appends) != 1 {
		t.Fatalf("expected one append, calls: %+v", fake.calls)
	}
	rows, _ := appends[0].body["values"].([]any)
	if len(rows) != 2 || rows[0].([]any)[0] != "Invoice ID" {
		t.Errorf("values = %v", rows)
	}
}

func TestReplaceAll(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	rows := []ports.Row{testRow("first"), testRow("second")}
	if err := c.ReplaceAll(context.Background(), rows); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if n := len(fake.find(http.MethodPost, ":clear")); n != 1 {
		t.Fatalf("clear calls = %d", n)
	}
	puts := fake.find(http.MethodPut, "A1")
	if len(puts) != 1 {
		t.Fatalf("expected one write from A1, calls: %+v", fake.calls)
	}
	values, _ := puts[0].body["values"].([]any)
	if len(values) != 3 {
		t.Errorf("written rows = %d, want header + 2", len(values))
	}
}

func TestNewWithOptionsValidates(t *testing.T) {
	if _, err := NewWithOptions(context.Background(), "", "Invoices", nil); err == nil {
		t.Error("expected error for missing spreadsheet id")
	}
	if _, err := NewWithOptions(context.Background(), "id", " ", nil); err == nil {
		t.Error("expected error for missing sheet name")
	}
}

func TestCredentialsLoad(t *testing.T) {
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := (Credentials{}).load(); err == nil {
		t.Error("expected error without credentials")
	}
	b, err := (Credentials{JSON: ` {"type":"service_account"} `}).load()
	if err != nil || !strings.HasPrefix(string(b), "{") {
		t.Errorf("inline JSON: %q, %v", b, err)
	}
	if _, err := (Credentials{File: "/does/not/exist.json"}).load(); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestUpsertAfterReplaceAllUsesRowIndex(t *testing.T) {
	fake := &fakeSheets{}
	c := newTestClient(t, fake)

	if err := c.ReplaceAll(context.Background(), []ports.Row{testRow("first"), testRow("second")}); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if err := c.UpsertInvoice(context.Background(), testRow("second")); err != nil {
		t.Fatalf("UpsertInvoice: %v", err)
	}
	if n := len(fake.find(http.MethodGet, "")); n != 0 {
		t.Errorf("indexed row should skip the key scan, got %d reads", n)
	}
	if n := len(fake.find(http.MethodPut, "A3:I3")); n != 1 {
		t.Errorf("expected an update of row 3, calls: %+v", fake.calls)
	}
}
