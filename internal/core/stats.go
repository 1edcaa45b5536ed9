package core

import (
	"strings"
	"time"
)

// HistogramMonths is the number of monthly buckets in InvoiceStats.
const HistogramMonths = 6

type MonthBucket struct {
	Year  int
	Month time.Month
	Label string
	Count int
}

type InvoiceStats struct {
	TotalInvoices int
	TotalRevenue  float64
	// Unpaid counts every invoice whose status is not paid.
	Unpaid  int
	Monthly []MonthBucket
}

// MaxCount is the tallest bucket, used to scale the histogram bars.
func (s InvoiceStats) MaxCount() int {
	m := 0
	for _, b := range s.Monthly {
		m = max(m, b.Count)
	}
	return m
}

// ComputeInvoiceStats aggregates invoices relative to now. The histogram
// covers now's month and the five before it, oldest first, matching issue
// dates by calendar year and month.
func ComputeInvoiceStats(invoices []Invoice, now time.Time) InvoiceStats {
	stats := InvoiceStats{
		TotalInvoices: len(invoices),
		Monthly:       make([]MonthBucket, HistogramMonths),
	}

	for i := range HistogramMonths {
		first := time.Date(now.Year(), now.Month()-time.Month(HistogramMonths-1-i), 1, 0, 0, 0, 0, now.Location())
		stats.Monthly[i] = MonthBucket{
			Year:  first.Year(),
			Month: first.Month(),
			Label: first.Format("Jan 2006"),
		}
	}

	for _, inv := range invoices {
		stats.TotalRevenue += inv.Total
		if inv.Status != StatusPaid {
			stats.Unpaid++
		}
		y, m, _ := inv.IssueDate.Date()
		for i := range stats.Monthly {
			if stats.Monthly[i].Year == y && stats.Monthly[i].Month == m {
				stats.Monthly[i].Count++
				break
			}
		}
	}
	return stats
}

// DashboardSummary is the header block of the home page.
type DashboardSummary struct {
	TotalInvoices int
	TotalAmount   float64
	Recent        []Invoice
}

type ClientStats struct {
	TotalClients int
	NewThisMonth int
	// ActiveClients has no separate definition yet and equals TotalClients.
	ActiveClients int
}

// ComputeClientStats counts clients created in now's calendar month.
func ComputeClientStats(clients []Client, now time.Time) ClientStats {
	stats := ClientStats{TotalClients: len(clients), ActiveClients: len(clients)}
	y, m, _ := now.Date()
	for _, c := range clients {
		cy, cm, _ := c.CreatedAt.In(now.Location()).Date()
		if cy == y && cm == m {
			stats.NewThisMonth++
		}
	}
	return stats
}

// FilterClients keeps clients whose name, company or email contains term,
// ignoring case. An empty term keeps everything.
func FilterClients(clients []Client, term string) []Client {
	if term == "" {
		return clients
	}
	needle := strings.ToLower(term)
	out := make([]Client, 0, len(clients))
	for _, c := range clients {
		if strings.Contains(strings.ToLower(c.Name), needle) ||
			strings.Contains(strings.ToLower(c.Company), needle) ||
			strings.Contains(strings.ToLower(c.Email), needle) {
			out = append(out, c)
		}
	}
	return out
}
