// Package memory is an in-process store used for local development and tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fatture/internal/core"
	"fatture/internal/store"
)

type Store struct {
	mu       sync.RWMutex
	clients  map[string]core.Client
	invoices []core.Invoice
	items    map[string][]core.InvoiceItem
	now      func() time.Time
}

var _ store.Backend = (*Store)(nil)

func New() *Store {
	return &Store{
		clients: make(map[string]core.Client),
		items:   make(map[string][]core.InvoiceItem),
		now:     time.Now,
	}
}

// WithClock replaces the clock used for created_at; meant for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) CreateClient(_ context.Context, d core.ClientDraft) (core.Client, error) {
	c := core.Client{
		ID:        uuid.NewString(),
		Name:      d.Name,
		Company:   d.Company,
		Email:     d.Email,
		Phone:     d.Phone,
		Address:   d.Address,
		CreatedAt: s.now().UTC(),
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clients[c.ID] = c
	return c, nil
}

func (s *Store) ListClients(_ context.Context) ([]core.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.Client, 0, len(s.clients))
	for _, c := range s.clients {
		out = append(out, c)
	}
	slices.SortStableFunc(out, func(a, b core.Client) int {
		if n := strings.Compare(a.Name, b.Name); n != 0 {
			return n
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (s *Store) GetClient(_ context.Context, id string) (core.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.clients[id]
	if !ok {
		return core.Client{}, store.ErrNotFound
	}
	return c, nil
}

func (s *Store) CreateInvoice(_ context.Context, inv core.Invoice, drafts []core.ItemDraft) (core.Invoice, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.clients[inv.ClientID]; !ok {
		return core.Invoice{}, store.Wrap("create invoice", fmt.Errorf("client %s does not exist", inv.ClientID))
	}

	inv.ID = uuid.NewString()
	inv.CreatedAt = s.now().UTC()
	if inv.Status == "" {
		inv.Status = core.StatusPending
	}
	inv.Client = nil
	inv.Items = nil

	items := make([]core.InvoiceItem, len(drafts))
	for i, d := range drafts {
		items[i] = core.InvoiceItem{
			ID:          uuid.NewString(),
			InvoiceID:   inv.ID,
			Description: d.Description,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
		}
	}
	s.invoices = append(s.invoices, inv)
	s.items[inv.ID] = items

	inv.Items = slices.Clone(items)
	return inv, nil
}

func (s *Store) ListInvoices(_ context.Context, q store.InvoiceQuery) ([]core.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.Invoice, len(s.invoices))
	for i, inv := range s.invoices {
		out[i] = s.withClient(inv)
	}
	if q.Order == store.OrderIssueDateDesc {
		slices.SortStableFunc(out, func(a, b core.Invoice) int {
			return b.IssueDate.Compare(a.IssueDate)
		})
	}
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (s *Store) GetInvoice(_ context.Context, id string) (core.Invoice, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, inv := range s.invoices {
		if inv.ID == id {
			inv = s.withClient(inv)
			inv.Items = slices.Clone(s.items[id])
			return inv, nil
		}
	}
	return core.Invoice{}, store.ErrNotFound
}

func (s *Store) UpdateInvoiceStatus(_ context.Context, id string, status core.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.invoices {
		if s.invoices[i].ID == id {
			s.invoices[i].Status = status
			return nil
		}
	}
	return store.ErrNotFound
}

// withClient must be called with the lock held.
func (s *Store) withClient(inv core.Invoice) core.Invoice {
	if c, ok := s.clients[inv.ClientID]; ok {
		inv.Client = &c
	}
	return inv
}
