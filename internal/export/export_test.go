package export

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"fatture/internal/core"
)

func sampleInvoices() []core.Invoice {
	return []core.Invoice{
		{
			ID:        "abcdef0123456789",
			Client:    &core.Client{Name: "Ada", Company: "Engines Ltd"},
			IssueDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			DueDate:   time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC),
			Status:    core.StatusPaid,
			Total:     1234.5,
		},
		{
			ID:        "ffff000011112222",
			IssueDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
			DueDate:   time.Date(2024, 4, 30, 0, 0, 0, 0, time.UTC),
			Status:    core.StatusPending,
			Total:     10,
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleInvoices()); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte{0xEF, 0xBB, 0xBF}) {
		t.Fatal("missing BOM")
	}
	records, err := csv.NewReader(bytes.NewReader(buf.Bytes()[3:])).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(header, ",") {
		t.Errorf("header = %v", records[0])
	}
	if got := records[1]; got[0] != "abcdef01" || got[2] != "Ada" || got[3] != "Engines Ltd" || got[7] != "1234.50" {
		t.Errorf("first record = %v", got)
	}
	if got := records[2]; got[2] != "" || got[6] != "pending" {
		t.Errorf("second record = %v", got)
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleInvoices()); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	if sheets := f.GetSheetList(); len(sheets) != 1 || sheets[0] != sheetName {
		t.Fatalf("sheets = %v", sheets)
	}
	rows, err := f.GetRows(sheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[1][0] != "abcdef01" || rows[1][4] != "2024-03-01" {
		t.Errorf("row 2 = %v", rows[1])
	}
	v, err := f.GetCellValue(sheetName, "H2", excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatal(err)
	}
	if total, err := strconv.ParseFloat(v, 64); err != nil || total != 1234.5 {
		t.Errorf("H2 = %q, want a numeric 1234.5", v)
	}
}

func TestFilename(t *testing.T) {
	now := time.Date(2024, 6, 9, 15, 0, 0, 0, time.UTC)
	if got := Filename(now, "csv"); got != "invoices_20240609.csv" {
		t.Errorf("Filename = %q", got)
	}
}
