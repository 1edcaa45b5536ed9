package sheets

import (
	"testing"
	"time"

	"fatture/internal/core"
)

func TestRowFromInvoice(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	inv := core.Invoice{
		ID:        "0123456789abcdef",
		ClientID:  "c1",
		Client:    &core.Client{ID: "c1", Name: "Ada", Company: "Engines Ltd"},
		IssueDate: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC),
		DueDate:   time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Total:     10,
		Status:    core.StatusPaid,
	}

	r := RowFromInvoice(inv, now)
	if r.Number != "01234567" || r.Client != "Ada" || r.Company != "Engines Ltd" {
		t.Errorf("row = %+v", r)
	}
	cells := r.Values()
	if len(cells) != len(Header) {
		t.Fatalf("cells = %d, header = %d", len(cells), len(Header))
	}
	if cells[4] != "2024-04-02" || cells[6] != "10.00" || cells[7] != "paid" || cells[8] != "2024-05-01T12:00:00Z" {
		t.Errorf("cells = %v", cells)
	}

	inv.Client = nil
	if r := RowFromInvoice(inv, now); r.Client != "" {
		t.Errorf("client should be empty without embedded client, got %q", r.Client)
	}
}
