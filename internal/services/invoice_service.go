// Package services holds the use cases behind the web pages and the JSON API.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"fatture/internal/amqp"
	"fatture/internal/core"
	"fatture/internal/log"
	"fatture/internal/store"
)

// RecentInvoicesLimit is how many invoices the dashboard lists.
const RecentInvoicesLimit = 5

// Publisher is the outbound side of the invoice event stream.
type Publisher interface {
	PublishInvoiceEvent(ctx context.Context, ev amqp.InvoiceEvent) error
}

// InvoiceService validates input, talks to the store and announces changes.
// Publishing is best effort: a failed publish is logged and never turns a
// successful write into an error.
type InvoiceService struct {
	store     store.Backend
	publisher Publisher
	logger    *log.Logger
}

// NewInvoiceService wires a backend and an optional publisher (nil disables events).
func NewInvoiceService(backend store.Backend, publisher Publisher, logger *log.Logger) *InvoiceService {
	return &InvoiceService{
		store:     backend,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentInvoice),
	}
}

func (s *InvoiceService) CreateClient(ctx context.Context, d core.ClientDraft) (core.Client, error) {
	if err := d.Validate(); err != nil {
		return core.Client{}, err
	}
	c, err := s.store.CreateClient(ctx, d)
	if err != nil {
		return core.Client{}, fmt.Errorf("create client: %w", err)
	}
	return c, nil
}

func (s *InvoiceService) ListClients(ctx context.Context) ([]core.Client, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return clients, nil
}

// ClientsOverview is the data behind the clients page.
type ClientsOverview struct {
	Clients []core.Client
	Stats   core.ClientStats
	Search  string
}

// ClientsOverview returns every client matching search plus stats computed
// over the unfiltered list.
func (s *InvoiceService) ClientsOverview(ctx context.Context, search string, now time.Time) (ClientsOverview, error) {
	clients, err := s.ListClients(ctx)
	if err != nil {
		return ClientsOverview{}, err
	}
	return ClientsOverview{
		Clients: core.FilterClients(clients, search),
		Stats:   core.ComputeClientStats(clients, now),
		Search:  search,
	}, nil
}

// CreateInvoice validates the draft, checks the client exists and stores the
// invoice with its items in a single write.
func (s *InvoiceService) CreateInvoice(ctx context.Context, d core.InvoiceDraft) (core.Invoice, error) {
	if err := d.Validate(); err != nil {
		return core.Invoice{}, err
	}

	if _, err := s.store.GetClient(ctx, d.ClientID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return core.Invoice{}, core.NewValidationError("client_id", core.ErrUnknownClient, "Selected client does not exist")
		}
		return core.Invoice{}, fmt.Errorf("look up client: %w", err)
	}

	inv, err := s.store.CreateInvoice(ctx, core.NewInvoice(d), d.Items)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("create invoice: %w", err)
	}

	s.logger.InfoContext(ctx, "Invoice created",
		log.NewFields().WithInvoice(inv.ID, inv.ClientID, string(inv.Status), inv.Total, len(inv.Items)).ToSlice()...)
	s.publish(ctx, amqp.NewInvoiceEvent(amqp.EventInvoiceCreated, inv.ID, string(inv.Status)))
	return inv, nil
}

func (s *InvoiceService) GetInvoice(ctx context.Context, id string) (core.Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("get invoice %s: %w", id, err)
	}
	return inv, nil
}

func (s *InvoiceService) ListInvoices(ctx context.Context, q store.InvoiceQuery) ([]core.Invoice, error) {
	invoices, err := s.store.ListInvoices(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// ToggleStatus flips paid ↔ unpaid (any non-paid state becomes paid) and
// returns the updated invoice. Concurrent toggles are last-write-wins.
func (s *InvoiceService) ToggleStatus(ctx context.Context, id string) (core.Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return core.Invoice{}, fmt.Errorf("get invoice %s: %w", id, err)
	}

	next := inv.Status.Toggle()
	if err := s.store.UpdateInvoiceStatus(ctx, id, next); err != nil {
		return core.Invoice{}, fmt.Errorf("update invoice %s status: %w", id, err)
	}
	prev := inv.Status
	inv.Status = next

	s.logger.InfoContext(ctx, "Invoice status changed",
		log.FieldInvoiceID, id,
		"from", string(prev),
		log.FieldStatus, string(next))
	s.publish(ctx, amqp.NewInvoiceEvent(amqp.EventInvoiceStatusChanged, id, string(next)))
	return inv, nil
}

// InvoicesOverview is the data behind the invoices page.
type InvoicesOverview struct {
	Invoices []core.Invoice
	Stats    core.InvoiceStats
	Groups   core.StatusGroups
}

func (s *InvoiceService) InvoicesOverview(ctx context.Context, now time.Time) (InvoicesOverview, error) {
	invoices, err := s.ListInvoices(ctx, store.InvoiceQuery{})
	if err != nil {
		return InvoicesOverview{}, err
	}
	return InvoicesOverview{
		Invoices: invoices,
		Stats:    core.ComputeInvoiceStats(invoices, now),
		Groups:   core.GroupByStatus(invoices),
	}, nil
}

// Dashboard loads totals and the most recent invoices concurrently.
func (s *InvoiceService) Dashboard(ctx context.Context) (core.DashboardSummary, error) {
	var (
		all    []core.Invoice
		recent []core.Invoice
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		all, err = s.store.ListInvoices(gctx, store.InvoiceQuery{})
		return err
	})
	g.Go(func() error {
		var err error
		recent, err = s.store.ListInvoices(gctx, store.InvoiceQuery{Order: store.OrderIssueDateDesc, Limit: RecentInvoicesLimit})
		return err
	})
	if err := g.Wait(); err != nil {
		return core.DashboardSummary{}, fmt.Errorf("load dashboard: %w", err)
	}

	summary := core.DashboardSummary{TotalInvoices: len(all), Recent: recent}
	for _, inv := range all {
		summary.TotalAmount += inv.Total
	}
	return summary, nil
}

func (s *InvoiceService) publish(ctx context.Context, ev amqp.InvoiceEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishInvoiceEvent(ctx, ev); err != nil {
		fields := log.NewFields().
			WithError(err, log.ErrorTypeNetwork).
			WithOperation(log.OpPublish)
		fields[log.FieldInvoiceID] = ev.InvoiceID
		s.logger.ErrorContext(ctx, "Failed to publish invoice event", fields.ToSlice()...)
	}
}
