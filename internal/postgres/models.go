package postgres

import (
	"time"

	"github.com/google/uuid"

	"fatture/internal/core"
)

type ClientRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"not null;index"`
	Company   string    `gorm:"not null;default:''"`
	Email     string    `gorm:"not null"`
	Phone     string    `gorm:"not null;default:''"`
	Address   string    `gorm:"not null;default:''"`
	CreatedAt time.Time `gorm:"not null"`
}

func (ClientRecord) TableName() string { return "clients" }

type InvoiceRecord struct {
	ID        uuid.UUID           `gorm:"type:uuid;primaryKey"`
	ClientID  uuid.UUID           `gorm:"type:uuid;index;not null"`
	Client    *ClientRecord       `gorm:"foreignKey:ClientID"`
	IssueDate time.Time           `gorm:"type:date;not null;index"`
	DueDate   time.Time           `gorm:"type:date;not null"`
	Total     float64             `gorm:"type:decimal(12,2);not null;check:total >= 0"`
	Status    string              `gorm:"type:varchar(16);not null;default:'pending';check:status IN ('pending','unpaid','paid','overdue')"`
	Items     []InvoiceItemRecord `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time           `gorm:"not null"`
}

func (InvoiceRecord) TableName() string { return "invoices" }

type InvoiceItemRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	InvoiceID   uuid.UUID `gorm:"type:uuid;index;not null"`
	Position    int       `gorm:"not null"`
	Description string    `gorm:"not null"`
	Quantity    int       `gorm:"not null;check:quantity >= 1"`
	UnitPrice   float64   `gorm:"type:decimal(12,2);not null;check:unit_price >= 0"`
}

func (InvoiceItemRecord) TableName() string { return "invoice_items" }

func (r ClientRecord) toCore() core.Client {
	return core.Client{
		ID:        r.ID.String(),
		Name:      r.Name,
		Company:   r.Company,
		Email:     r.Email,
		Phone:     r.Phone,
		Address:   r.Address,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func (r InvoiceRecord) toCore() core.Invoice {
	inv := core.Invoice{
		ID:        r.ID.String(),
		ClientID:  r.ClientID.String(),
		IssueDate: asDate(r.IssueDate),
		DueDate:   asDate(r.DueDate),
		Total:     r.Total,
		Status:    core.Status(r.Status),
		CreatedAt: r.CreatedAt.UTC(),
	}
	if r.Client != nil {
		c := r.Client.toCore()
		inv.Client = &c
	}
	if r.Items != nil {
		inv.Items = make([]core.InvoiceItem, len(r.Items))
		for i, it := range r.Items {
			inv.Items[i] = it.toCore()
		}
	}
	return inv
}

func (r InvoiceItemRecord) toCore() core.InvoiceItem {
	return core.InvoiceItem{
		ID:          r.ID.String(),
		InvoiceID:   r.InvoiceID.String(),
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   r.UnitPrice,
	}
}

// asDate drops any zone the driver attached to a DATE column.
func asDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
