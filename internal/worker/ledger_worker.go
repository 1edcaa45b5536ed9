// Package worker keeps the spreadsheet ledger in step with the invoice store.
package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"fatture/internal/amqp"
	"fatture/internal/log"
	"fatture/internal/sheets"
	"fatture/internal/store"
)

// InvoiceSource is the read side of the store the worker needs.
type InvoiceSource interface {
	store.InvoiceReader
	store.InvoiceLister
}

// LedgerWorker applies invoice events to the ledger one row at a time and
// periodically rewrites the whole sheet to recover from lost events.
type LedgerWorker struct {
	source InvoiceSource
	ledger sheets.LedgerWriter
	logger *log.Logger
	now    func() time.Time

	// rebuilds never overlap each other or a single-row upsert.
	mu sync.Mutex
}

func NewLedgerWorker(source InvoiceSource, ledger sheets.LedgerWriter, logger *log.Logger) *LedgerWorker {
	return &LedgerWorker{
		source: source,
		ledger: ledger,
		logger: logger.WithComponent(log.ComponentWorker),
		now:    time.Now,
	}
}

// HandleInvoiceEvent re-reads the invoice and upserts its ledger row. An
// invoice that no longer exists is logged and acknowledged; any other failure
// is returned so the message is redelivered.
func (w *LedgerWorker) HandleInvoiceEvent(ctx context.Context, ev amqp.InvoiceEvent) error {
	w.logger.InfoContext(ctx, "Processing invoice event",
		log.FieldInvoiceID, ev.InvoiceID,
		"event_type", ev.Type,
		log.FieldStatus, ev.Status)

	inv, err := w.source.GetInvoice(ctx, ev.InvoiceID)
	if errors.Is(err, store.ErrNotFound) {
		w.logger.WarnContext(ctx, "Invoice from event not found, skipping",
			log.FieldInvoiceID, ev.InvoiceID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get invoice %s: %w", ev.InvoiceID, err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ledger.UpsertInvoice(ctx, sheets.RowFromInvoice(inv, w.now())); err != nil {
		w.logger.ErrorContext(ctx, "Failed to upsert ledger row",
			log.FieldInvoiceID, inv.ID,
			log.FieldError, err)
		return fmt.Errorf("upsert ledger row: %w", err)
	}

	w.logger.InfoContext(ctx, "Ledger row synced",
		log.FieldInvoiceID, inv.ID,
		log.FieldStatus, string(inv.Status),
		log.FieldTotal, inv.Total)
	return nil
}

// Rebuild rewrites the ledger from every stored invoice, oldest first.
func (w *LedgerWorker) Rebuild(ctx context.Context) error {
	invoices, err := w.source.ListInvoices(ctx, store.InvoiceQuery{Order: store.OrderCreated})
	if err != nil {
		return fmt.Errorf("list invoices: %w", err)
	}

	now := w.now()
	rows := make([]sheets.Row, 0, len(invoices))
	for _, inv := range invoices {
		rows = append(rows, sheets.RowFromInvoice(inv, now))
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.ledger.ReplaceAll(ctx, rows); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	w.logger.InfoContext(ctx, "Ledger rebuilt", log.FieldRowCount, len(rows))
	return nil
}

// Schedule registers Rebuild on a cron spec such as "@every 5m". The caller
// starts and stops the returned scheduler.
func (w *LedgerWorker) Schedule(ctx context.Context, spec string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(spec, func() {
		if ctx.Err() != nil {
			return
		}
		if err := w.Rebuild(ctx); err != nil {
			w.logger.ErrorContext(ctx, "Periodic ledger rebuild failed",
				log.FieldOperation, log.OpSync,
				log.FieldError, err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule ledger rebuild %q: %w", spec, err)
	}
	return c, nil
}

// EverySpec turns an interval into a cron descriptor.
func EverySpec(d time.Duration) string {
	return "@every " + d.String()
}
