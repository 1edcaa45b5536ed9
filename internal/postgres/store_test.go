package postgres

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"fatture/internal/log"
	"fatture/internal/store"
	"fatture/internal/store/storetest"
)

// Runs only when FATTURE_TEST_POSTGRES_DSN points at a disposable database.
func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("FATTURE_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FATTURE_TEST_POSTGRES_DSN not set")
	}
	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})

	s, err := Open(context.Background(), dsn, logger)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	storetest.Run(t, func(t *testing.T) store.Backend {
		if err := s.db.Exec("TRUNCATE invoice_items, invoices, clients").Error; err != nil {
			t.Fatalf("truncate: %v", err)
		}
		return s
	})
}
