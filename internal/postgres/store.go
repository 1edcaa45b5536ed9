// Package postgres implements the store ports on PostgreSQL through gorm.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"fatture/internal/core"
	"fatture/internal/log"
	"fatture/internal/store"
)

type Store struct {
	db     *gorm.DB
	logger *log.Logger
	now    func() time.Time
}

var _ store.Backend = (*Store)(nil)

// Open connects to dsn and migrates the schema.
func Open(ctx context.Context, dsn string, logger *log.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:  gormlogger.Discard,
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := db.WithContext(ctx).AutoMigrate(&ClientRecord{}, &InvoiceRecord{}, &InvoiceItemRecord{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate postgres schema: %w", err)
	}

	return &Store{db: db, logger: logger.WithComponent(log.ComponentStorage), now: time.Now}, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) CreateClient(ctx context.Context, d core.ClientDraft) (core.Client, error) {
	rec := ClientRecord{
		ID:        uuid.New(),
		Name:      d.Name,
		Company:   d.Company,
		Email:     d.Email,
		Phone:     d.Phone,
		Address:   d.Address,
		CreatedAt: s.now().UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return core.Client{}, store.Wrap("create client", err)
	}
	s.logger.InfoContext(ctx, "Client saved to Postgres", log.FieldClientID, rec.ID.String())
	return rec.toCore(), nil
}

func (s *Store) ListClients(ctx context.Context) ([]core.Client, error) {
	var recs []ClientRecord
	if err := s.db.WithContext(ctx).Order("name").Order("created_at").Find(&recs).Error; err != nil {
		return nil, store.Wrap("list clients", err)
	}
	out := make([]core.Client, len(recs))
	for i, r := range recs {
		out[i] = r.toCore()
	}
	return out, nil
}

func (s *Store) GetClient(ctx context.Context, id string) (core.Client, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return core.Client{}, store.ErrNotFound
	}
	var rec ClientRecord
	err = s.db.WithContext(ctx).First(&rec, "id = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.Client{}, store.ErrNotFound
	}
	if err != nil {
		return core.Client{}, store.Wrap("get client", err)
	}
	return rec.toCore(), nil
}

// CreateInvoice inserts the invoice and its items in one transaction.
func (s *Store) CreateInvoice(ctx context.Context, inv core.Invoice, drafts []core.ItemDraft) (core.Invoice, error) {
	clientID, err := uuid.Parse(inv.ClientID)
	if err != nil {
		return core.Invoice{}, store.Wrap("create invoice", fmt.Errorf("client id %q: %w", inv.ClientID, err))
	}
	status := inv.Status
	if status == "" {
		status = core.StatusPending
	}

	rec := InvoiceRecord{
		ID:        uuid.New(),
		ClientID:  clientID,
		IssueDate: inv.IssueDate,
		DueDate:   inv.DueDate,
		Total:     inv.Total,
		Status:    string(status),
		CreatedAt: s.now().UTC(),
	}
	items := make([]InvoiceItemRecord, len(drafts))
	for i, d := range drafts {
		items[i] = InvoiceItemRecord{
			ID:          uuid.New(),
			InvoiceID:   rec.ID,
			Position:    i,
			Description: d.Description,
			Quantity:    d.Quantity,
			UnitPrice:   d.UnitPrice,
		}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&rec).Error; err != nil {
			return err
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return core.Invoice{}, store.Wrap("create invoice", err)
	}

	rec.Items = items
	out := rec.toCore()
	s.logger.InfoContext(ctx, "Invoice saved to Postgres",
		log.NewFields().WithInvoice(out.ID, out.ClientID, string(out.Status), out.Total, len(out.Items)).ToSlice()...)
	return out, nil
}

func (s *Store) ListInvoices(ctx context.Context, q store.InvoiceQuery) ([]core.Invoice, error) {
	tx := s.db.WithContext(ctx).Joins("Client")
	if q.Order == store.OrderIssueDateDesc {
		tx = tx.Order("invoices.issue_date DESC").Order("invoices.created_at DESC")
	} else {
		tx = tx.Order("invoices.created_at").Order("invoices.id")
	}
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}

	var recs []InvoiceRecord
	if err := tx.Find(&recs).Error; err != nil {
		return nil, store.Wrap("list invoices", err)
	}
	out := make([]core.Invoice, len(recs))
	for i, r := range recs {
		r.Items = nil
		out[i] = r.toCore()
	}
	return out, nil
}

func (s *Store) GetInvoice(ctx context.Context, id string) (core.Invoice, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return core.Invoice{}, store.ErrNotFound
	}
	var rec InvoiceRecord
	err = s.db.WithContext(ctx).
		Joins("Client").
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&rec, "invoices.id = ?", uid).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return core.Invoice{}, store.ErrNotFound
	}
	if err != nil {
		return core.Invoice{}, store.Wrap("get invoice", err)
	}
	if rec.Items == nil {
		rec.Items = []InvoiceItemRecord{}
	}
	return rec.toCore(), nil
}

func (s *Store) UpdateInvoiceStatus(ctx context.Context, id string, status core.Status) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return store.ErrNotFound
	}
	res := s.db.WithContext(ctx).Model(&InvoiceRecord{}).Where("id = ?", uid).Update("status", string(status))
	if res.Error != nil {
		return store.Wrap("update invoice status", res.Error)
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
