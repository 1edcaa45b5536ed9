package core

import "testing"

func TestStatusToggle(t *testing.T) {
	cases := map[Status]Status{
		StatusPaid:    StatusUnpaid,
		StatusUnpaid:  StatusPaid,
		StatusPending: StatusPaid,
		StatusOverdue: StatusPaid,
	}
	for in, want := range cases {
		if got := in.Toggle(); got != want {
			t.Errorf("%s.Toggle() = %s, want %s", in, got, want)
		}
	}
	if StatusPaid.ToggleLabel() != "Mark as Unpaid" || StatusOverdue.ToggleLabel() != "Mark as Paid" {
		t.Error("unexpected toggle labels")
	}
}

func TestParseStatus(t *testing.T) {
	if s, err := ParseStatus(""); err != nil || s != StatusPending {
		t.Fatalf("empty status: %v %v", s, err)
	}
	if s, err := ParseStatus("overdue"); err != nil || s != StatusOverdue {
		t.Fatalf("overdue: %v %v", s, err)
	}
	if _, err := ParseStatus("PAID"); err == nil {
		t.Fatal("status values are case sensitive")
	}
}

func TestShortID(t *testing.T) {
	if got := (Invoice{ID: "0123456789abcdef"}).ShortID(); got != "01234567" {
		t.Errorf("ShortID = %q", got)
	}
	if got := (Invoice{ID: "abc"}).ShortID(); got != "abc" {
		t.Errorf("ShortID = %q", got)
	}
}

func TestGroupByStatus(t *testing.T) {
	invoices := []Invoice{
		{ID: "1", Status: StatusPaid},
		{ID: "2", Status: ""},
		{ID: "3", Status: StatusPaid},
		{ID: "4", Status: Status("void")},
		{ID: "5", Status: StatusPending},
		{ID: "6", Status: StatusOverdue},
	}
	g := GroupByStatus(invoices)

	if g.Len() != len(invoices) {
		t.Fatalf("Len = %d, want %d", g.Len(), len(invoices))
	}
	wantOrder := []Status{StatusPaid, StatusPending, StatusOverdue}
	if len(g.Groups) != len(wantOrder) {
		t.Fatalf("got %d groups", len(g.Groups))
	}
	for i, s := range wantOrder {
		if g.Groups[i].Status != s {
			t.Errorf("group %d = %s, want %s", i, g.Groups[i].Status, s)
		}
	}
	if ids := g.Get(StatusPaid); len(ids) != 2 || ids[0].ID != "1" || ids[1].ID != "3" {
		t.Errorf("paid group = %+v", ids)
	}
	if pending := g.Get(StatusPending); len(pending) != 2 || pending[0].ID != "2" {
		t.Errorf("pending group = %+v", pending)
	}
	if len(g.Unrecognized) != 1 || g.Unrecognized[0].ID != "4" {
		t.Errorf("unrecognized = %+v", g.Unrecognized)
	}
	if g.Get(StatusUnpaid) != nil {
		t.Error("absent status must have no group")
	}
}

func TestGroupByStatusEmpty(t *testing.T) {
	g := GroupByStatus(nil)
	if g.Len() != 0 || len(g.Groups) != 0 {
		t.Fatalf("got %+v", g)
	}
}

func TestGroupByStatusDocumentedExample(t *testing.T) {
	invoices := []Invoice{
		{ID: "inv0", Status: StatusPaid},
		{ID: "inv1", Status: StatusUnpaid},
		{ID: "inv2", Status: StatusPaid},
	}
	g := GroupByStatus(invoices)

	if len(g.Groups) != 2 || g.Groups[0].Status != StatusPaid || g.Groups[1].Status != StatusUnpaid {
		t.Fatalf("groups = %+v", g.Groups)
	}
	paid := g.Get(StatusPaid)
	if len(paid) != 2 || paid[0].ID != "inv0" || paid[1].ID != "inv2" {
		t.Errorf("paid = %+v", paid)
	}
	unpaid := g.Get(StatusUnpaid)
	if len(unpaid) != 1 || unpaid[0].ID != "inv1" {
		t.Errorf("unpaid = %+v", unpaid)
	}
}
