// Package export renders the invoice list as CSV or XLSX downloads.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"fatture/internal/core"
)

const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "Invoices"
)

var header = []string{"Invoice #", "Invoice ID", "Client", "Company", "Issue Date", "Due Date", "Status", "Total"}

// Filename returns the attachment name for an export taken at now.
func Filename(now time.Time, ext string) string {
	return fmt.Sprintf("invoices_%s.%s", now.Format("20060102"), ext)
}

func record(inv core.Invoice) []string {
	company := ""
	if inv.Client != nil {
		company = inv.Client.Company
	}
	return []string{
		inv.ShortID(),
		inv.ID,
		inv.ClientName(),
		company,
		inv.IssueDate.Format(core.DateLayout),
		inv.DueDate.Format(core.DateLayout),
		string(inv.Status),
		strconv.FormatFloat(inv.Total, 'f', 2, 64),
	}
}

// WriteCSV writes a UTF-8 BOM, the header and one record per invoice.
// The BOM keeps spreadsheet apps from guessing the wrong encoding.
func WriteCSV(w io.Writer, invoices []core.Invoice) error {
	if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("write bom: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, inv := range invoices {
		if err := cw.Write(record(inv)); err != nil {
			return fmt.Errorf("write csv record %s: %w", inv.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook. Totals are stored as numbers so
// they can be summed in the spreadsheet.
func WriteXLSX(w io.Writer, invoices []core.Invoice) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	for i, h := range header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return err
		}
	}

	for idx, inv := range invoices {
		row := idx + 2
		rec := record(inv)
		for col, v := range rec[:len(rec)-1] {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return err
			}
		}
		cell, _ := excelize.CoordinatesToCellName(len(rec), row)
		if err := f.SetCellFloat(sheetName, cell, inv.Total, 2, 64); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "B", 38)
	_ = f.SetColWidth(sheetName, "C", "D", 24)
	_ = f.SetColWidth(sheetName, "E", "G", 12)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
