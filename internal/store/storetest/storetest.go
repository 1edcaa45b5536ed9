// Package storetest is a behavioural test suite shared by every
// store.Backend implementation.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"fatture/internal/core"
	"fatture/internal/store"
)

// Run exercises a fresh backend returned by newBackend for each subtest.
func Run(t *testing.T, newBackend func(t *testing.T) store.Backend) {
	t.Run("ClientRoundTrip", func(t *testing.T) { testClientRoundTrip(t, newBackend(t)) })
	t.Run("ClientsOrderedByName", func(t *testing.T) { testClientsOrderedByName(t, newBackend(t)) })
	t.Run("InvoiceRoundTrip", func(t *testing.T) { testInvoiceRoundTrip(t, newBackend(t)) })
	t.Run("CentPricesRoundTrip", func(t *testing.T) { testCentPricesRoundTrip(t, newBackend(t)) })
	t.Run("InvoiceUnknownClient", func(t *testing.T) { testInvoiceUnknownClient(t, newBackend(t)) })
	t.Run("ListInvoicesOrderAndLimit", func(t *testing.T) { testListInvoicesOrderAndLimit(t, newBackend(t)) })
	t.Run("UpdateInvoiceStatus", func(t *testing.T) { testUpdateInvoiceStatus(t, newBackend(t)) })
	t.Run("NotFound", func(t *testing.T) { testNotFound(t, newBackend(t)) })
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustClient(t *testing.T, b store.Backend, name string) core.Client {
	t.Helper()
	c, err := b.CreateClient(context.Background(), core.ClientDraft{
		Name:    name,
		Company: name + " Ltd",
		Email:   name + "@example.com",
	})
	if err != nil {
		t.Fatalf("CreateClient(%s): %v", name, err)
	}
	return c
}

func mustInvoice(t *testing.T, b store.Backend, clientID string, issue time.Time, items ...core.ItemDraft) core.Invoice {
	t.Helper()
	if len(items) == 0 {
		items = []core.ItemDraft{{Description: "Consulting", Quantity: 1, UnitPrice: 100}}
	}
	draft := core.InvoiceDraft{ClientID: clientID, IssueDate: issue, DueDate: issue.AddDate(0, 0, 30), Items: items}
	inv, err := b.CreateInvoice(context.Background(), core.NewInvoice(draft), items)
	if err != nil {
		t.Fatalf("CreateInvoice: %v", err)
	}
	return inv
}

func testClientRoundTrip(t *testing.T, b store.Backend) {
	ctx := context.Background()
	draft := core.ClientDraft{Name: "Ada", Company: "Engines", Email: "ada@example.com", Phone: "+44 1", Address: "London"}
	created, err := b.CreateClient(ctx, draft)
	if err != nil {
		t.Fatalf("CreateClient: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("store must assign id and created_at, got %+v", created)
	}

	got, err := b.GetClient(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetClient: %v", err)
	}
	if got.Name != draft.Name || got.Company != draft.Company || got.Email != draft.Email ||
		got.Phone != draft.Phone || got.Address != draft.Address {
		t.Errorf("GetClient = %+v, want fields of %+v", got, draft)
	}
}

func testClientsOrderedByName(t *testing.T, b store.Backend) {
	for _, n := range []string{"carol", "alice", "bob"} {
		mustClient(t, b, n)
	}
	clients, err := b.ListClients(context.Background())
	if err != nil {
		t.Fatalf("ListClients: %v", err)
	}
	want := []string{"alice", "bob", "carol"}
	if len(clients) != len(want) {
		t.Fatalf("got %d clients, want %d", len(clients), len(want))
	}
	for i, c := range clients {
		if c.Name != want[i] {
			t.Errorf("clients[%d] = %s, want %s", i, c.Name, want[i])
		}
	}
}

func testInvoiceRoundTrip(t *testing.T, b store.Backend) {
	ctx := context.Background()
	c := mustClient(t, b, "acme")
	items := []core.ItemDraft{
		{Description: "Design", Quantity: 2, UnitPrice: 50},
		{Description: "Hosting", Quantity: 1, UnitPrice: 25.5},
	}
	created := mustInvoice(t, b, c.ID, date(2024, 3, 10), items...)
	if created.ID == "" {
		t.Fatal("invoice id not assigned")
	}
	if len(created.Items) != 2 || created.Items[0].ID == "" || created.Items[0].InvoiceID != created.ID {
		t.Fatalf("created items = %+v", created.Items)
	}

	got, err := b.GetInvoice(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if got.Total != 125.5 {
		t.Errorf("Total = %v, want 125.5", got.Total)
	}
	if got.Status != core.StatusPending {
		t.Errorf("Status = %q, want pending", got.Status)
	}
	if got.IssueDate.Format(core.DateLayout) != "2024-03-10" || got.DueDate.Format(core.DateLayout) != "2024-04-09" {
		t.Errorf("dates = %s / %s", got.IssueDate, got.DueDate)
	}
	if got.Client == nil || got.Client.ID != c.ID || got.Client.Name != "acme" {
		t.Fatalf("client not embedded: %+v", got.Client)
	}
	if len(got.Items) != 2 {
		t.Fatalf("got %d items, want 2", len(got.Items))
	}
	for _, it := range got.Items {
		if it.InvoiceID != created.ID {
			t.Errorf("item %s belongs to %s", it.ID, it.InvoiceID)
		}
	}
	if sum := storedItemsTotal(got.Items); sum != got.Total {
		t.Errorf("Σ line totals = %v, total = %v", sum, got.Total)
	}
}

// storedItemsTotal recomputes Σ quantity × unit price from items as read back.
func storedItemsTotal(items []core.InvoiceItem) float64 {
	drafts := make([]core.ItemDraft, len(items))
	for i, it := range items {
		drafts[i] = core.ItemDraft{Description: it.Description, Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	return core.ComputeTotal(drafts)
}

// Every backend must read back the same prices and total it was given, so
// the stored total still equals the sum of the stored line totals.
func testCentPricesRoundTrip(t *testing.T, b store.Backend) {
	items := []core.ItemDraft{
		{Description: "Stamps", Quantity: 3, UnitPrice: 0.33},
		{Description: "Licence", Quantity: 7, UnitPrice: 19.99},
		{Description: "Retainer", Quantity: 1, UnitPrice: 9999.01},
	}
	c := mustClient(t, b, "cents")
	draft := core.InvoiceDraft{ClientID: c.ID, IssueDate: date(2024, 3, 1), DueDate: date(2024, 3, 31), Items: items}
	if err := draft.Validate(); err != nil {
		t.Fatalf("fixture must be valid: %v", err)
	}

	created := mustInvoice(t, b, c.ID, draft.IssueDate, items...)
	got, err := b.GetInvoice(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if got.Total != 10139.93 {
		t.Errorf("Total = %v, want 10139.93", got.Total)
	}
	if sum := storedItemsTotal(got.Items); sum != got.Total {
		t.Errorf("Σ line totals = %v, total = %v", sum, got.Total)
	}

	prices := map[string]float64{}
	for _, it := range got.Items {
		prices[it.Description] = it.UnitPrice
	}
	for _, it := range items {
		if prices[it.Description] != it.UnitPrice {
			t.Errorf("%s unit price = %v, want %v", it.Description, prices[it.Description], it.UnitPrice)
		}
	}
}

func testInvoiceUnknownClient(t *testing.T, b store.Backend) {
	ctx := context.Background()
	items := []core.ItemDraft{{Description: "x", Quantity: 1, UnitPrice: 1}}
	inv := core.NewInvoice(core.InvoiceDraft{ClientID: uuid.NewString(), IssueDate: date(2024, 1, 1), DueDate: date(2024, 1, 31), Items: items})
	if _, err := b.CreateInvoice(ctx, inv, items); err == nil {
		t.Fatal("expected error for unknown client")
	}
	list, err := b.ListInvoices(ctx, store.InvoiceQuery{})
	if err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("failed create left %d invoices behind", len(list))
	}
}

func testListInvoicesOrderAndLimit(t *testing.T, b store.Backend) {
	c := mustClient(t, b, "acme")
	for _, d := range []time.Time{date(2024, 1, 5), date(2024, 3, 1), date(2023, 12, 24), date(2024, 2, 14)} {
		mustInvoice(t, b, c.ID, d)
	}

	all, err := b.ListInvoices(context.Background(), store.InvoiceQuery{})
	if err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("got %d invoices, want 4", len(all))
	}
	for _, inv := range all {
		if inv.Client == nil || inv.Client.Name != "acme" {
			t.Fatalf("client not embedded in list: %+v", inv)
		}
	}

	recent, err := b.ListInvoices(context.Background(), store.InvoiceQuery{Order: store.OrderIssueDateDesc, Limit: 3})
	if err != nil {
		t.Fatalf("ListInvoices: %v", err)
	}
	want := []string{"2024-03-01", "2024-02-14", "2024-01-05"}
	if len(recent) != len(want) {
		t.Fatalf("got %d invoices, want %d", len(recent), len(want))
	}
	for i, inv := range recent {
		if got := inv.IssueDate.Format(core.DateLayout); got != want[i] {
			t.Errorf("recent[%d] = %s, want %s", i, got, want[i])
		}
	}
}

func testUpdateInvoiceStatus(t *testing.T, b store.Backend) {
	ctx := context.Background()
	c := mustClient(t, b, "acme")
	inv := mustInvoice(t, b, c.ID, date(2024, 5, 1))

	if err := b.UpdateInvoiceStatus(ctx, inv.ID, core.StatusPaid); err != nil {
		t.Fatalf("UpdateInvoiceStatus: %v", err)
	}
	got, err := b.GetInvoice(ctx, inv.ID)
	if err != nil {
		t.Fatalf("GetInvoice: %v", err)
	}
	if got.Status != core.StatusPaid {
		t.Fatalf("Status = %q, want paid", got.Status)
	}

	if err := b.UpdateInvoiceStatus(ctx, inv.ID, got.Status.Toggle()); err != nil {
		t.Fatalf("UpdateInvoiceStatus: %v", err)
	}
	got, _ = b.GetInvoice(ctx, inv.ID)
	if got.Status != core.StatusUnpaid {
		t.Fatalf("Status = %q, want unpaid", got.Status)
	}
}

func testNotFound(t *testing.T, b store.Backend) {
	ctx := context.Background()
	missing := uuid.NewString()
	if _, err := b.GetClient(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetClient: got %v, want ErrNotFound", err)
	}
	if _, err := b.GetInvoice(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetInvoice: got %v, want ErrNotFound", err)
	}
	if _, err := b.GetInvoice(ctx, "not-a-uuid"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("GetInvoice(malformed): got %v, want ErrNotFound", err)
	}
	if err := b.UpdateInvoiceStatus(ctx, missing, core.StatusPaid); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("UpdateInvoiceStatus: got %v, want ErrNotFound", err)
	}
}
