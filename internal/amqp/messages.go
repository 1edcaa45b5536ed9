package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType names what happened to an invoice.
type EventType string

const (
	EventInvoiceCreated       EventType = "invoice.created"
	EventInvoiceStatusChanged EventType = "invoice.status_changed"
)

// InvoiceEvent is a lightweight notification. Consumers re-read the invoice
// from the store, so only the id and the resulting status travel.
type InvoiceEvent struct {
	Type      EventType `json:"type"`
	InvoiceID string    `json:"invoice_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

func NewInvoiceEvent(t EventType, invoiceID, status string) InvoiceEvent {
	return InvoiceEvent{
		Type:      t,
		InvoiceID: invoiceID,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
}

func (e InvoiceEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// InvoiceEventFromJSON decodes and sanity-checks a message body.
func InvoiceEventFromJSON(data []byte) (InvoiceEvent, error) {
	var e InvoiceEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return InvoiceEvent{}, err
	}
	switch e.Type {
	case EventInvoiceCreated, EventInvoiceStatusChanged:
	default:
		return InvoiceEvent{}, fmt.Errorf("unknown event type %q", e.Type)
	}
	if e.InvoiceID == "" {
		return InvoiceEvent{}, fmt.Errorf("event %s without invoice_id", e.Type)
	}
	return e, nil
}
