package core

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestComputeInvoiceStatsEmpty(t *testing.T) {
	s := ComputeInvoiceStats(nil, day(2024, 3, 15))
	if s.TotalInvoices != 0 || s.TotalRevenue != 0 || s.Unpaid != 0 {
		t.Fatalf("expected zero stats, got %+v", s)
	}
	if len(s.Monthly) != 6 {
		t.Fatalf("expected 6 buckets, got %d", len(s.Monthly))
	}
	for _, b := range s.Monthly {
		if b.Count != 0 {
			t.Errorf("bucket %s has count %d", b.Label, b.Count)
		}
	}
}

func TestComputeInvoiceStats(t *testing.T) {
	now := day(2024, 2, 10)
	invoices := []Invoice{
		{Total: 100, Status: StatusPaid, IssueDate: day(2024, 2, 1)},
		{Total: 50.25, Status: StatusPending, IssueDate: day(2024, 1, 31)},
		{Total: 10, Status: StatusOverdue, IssueDate: day(2023, 9, 5)},
		{Total: 1, Status: StatusUnpaid, IssueDate: day(2023, 8, 31)},  // outside the window
		{Total: 2, Status: StatusPaid, IssueDate: day(2023, 2, 1)},     // same month, previous year
		{Total: 3, Status: Status("draft"), IssueDate: day(2024, 2, 9)}, // unknown status still counts as not paid
	}
	s := ComputeInvoiceStats(invoices, now)

	if s.TotalInvoices != 6 {
		t.Errorf("TotalInvoices = %d", s.TotalInvoices)
	}
	if s.TotalRevenue != 166.25 {
		t.Errorf("TotalRevenue = %v", s.TotalRevenue)
	}
	if s.Unpaid != 4 {
		t.Errorf("Unpaid = %d, want 4", s.Unpaid)
	}

	wantLabels := []string{"Sep 2023", "Oct 2023", "Nov 2023", "Dec 2023", "Jan 2024", "Feb 2024"}
	wantCounts := []int{1, 0, 0, 0, 1, 2}
	for i, b := range s.Monthly {
		if b.Label != wantLabels[i] || b.Count != wantCounts[i] {
			t.Errorf("bucket %d = %s/%d, want %s/%d", i, b.Label, b.Count, wantLabels[i], wantCounts[i])
		}
	}
	if s.MaxCount() != 2 {
		t.Errorf("MaxCount = %d", s.MaxCount())
	}
}

func TestComputeClientStats(t *testing.T) {
	now := day(2024, 6, 20)
	clients := []Client{
		{Name: "a", CreatedAt: day(2024, 6, 1)},
		{Name: "b", CreatedAt: day(2023, 6, 1)},
		{Name: "c", CreatedAt: day(2024, 5, 31)},
	}
	s := ComputeClientStats(clients, now)
	if s.TotalClients != 3 || s.ActiveClients != 3 || s.NewThisMonth != 1 {
		t.Fatalf("got %+v", s)
	}
}

func TestFilterClients(t *testing.T) {
	clients := []Client{
		{Name: "Ada Lovelace", Company: "Analytical", Email: "ada@engine.org"},
		{Name: "Grace", Company: "Navy", Email: "grace@cobol.mil"},
		{Name: "Linus", Company: "", Email: "linus@kernel.org"},
	}
	cases := map[string]int{
		"":        3,
		"ADA":     1,
		"navy":    1,
		".org":    2,
		"nothing": 0,
	}
	for term, want := range cases {
		if got := len(FilterClients(clients, term)); got != want {
			t.Errorf("FilterClients(%q) = %d results, want %d", term, got, want)
		}
	}
}

func TestMonthlyHistogramDocumentedExample(t *testing.T) {
	invoices := []Invoice{
		{Status: StatusPaid, IssueDate: day(2024, 3, 1)},
		{Status: StatusPaid, IssueDate: day(2023, 10, 5)},
	}
	s := ComputeInvoiceStats(invoices, day(2024, 3, 15))

	want := []struct {
		label string
		count int
	}{
		{"Oct 2023", 1},
		{"Nov 2023", 0},
		{"Dec 2023", 0},
		{"Jan 2024", 0},
		{"Feb 2024", 0},
		{"Mar 2024", 1},
	}
	if len(s.Monthly) != len(want) {
		t.Fatalf("got %d buckets", len(s.Monthly))
	}
	for i, w := range want {
		if b := s.Monthly[i]; b.Label != w.label || b.Count != w.count {
			t.Errorf("bucket %d = %s/%d, want %s/%d", i, b.Label, b.Count, w.label, w.count)
		}
	}
}
