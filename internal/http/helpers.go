package http

import (
	"html/template"
	"net/http"
	"time"

	"fatture/internal/core"
)

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"currency":    core.FormatCurrency,
		"date":        formatDate,
		"isoDate":     func(t time.Time) string { return t.Format(core.DateLayout) },
		"statusClass": statusClass,
		"inc":         func(i int) int { return i + 1 },
	}
}

// formatDate renders a calendar date for display, e.g. "Mar 1, 2024".
func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

func statusClass(s core.Status) string {
	switch s {
	case core.StatusPaid:
		return "status status-paid"
	case core.StatusPending:
		return "status status-pending"
	case core.StatusUnpaid:
		return "status status-unpaid"
	case core.StatusOverdue:
		return "status status-overdue"
	default:
		return "status status-unknown"
	}
}

// HistogramBar is one column of the invoices-by-month chart, laid out in a
// 600x200 SVG viewBox. Geometry is computed here because the CSP forbids
// inline styles.
type HistogramBar struct {
	Label  string
	Count  int
	X      int
	Y      int
	Height int
}

const (
	chartHeight = 160
	chartBase   = 180
	barSlot     = 100
	barWidth    = 60
)

func histogramBars(stats core.InvoiceStats) []HistogramBar {
	maxCount := stats.MaxCount()
	bars := make([]HistogramBar, len(stats.Monthly))
	for i, b := range stats.Monthly {
		h := 0
		if maxCount > 0 {
			h = b.Count * chartHeight / maxCount
		}
		if b.Count > 0 && h < 2 {
			h = 2
		}
		bars[i] = HistogramBar{
			Label:  b.Label,
			Count:  b.Count,
			X:      i*barSlot + (barSlot-barWidth)/2,
			Y:      chartBase - h,
			Height: h,
		}
	}
	return bars
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
