package core

import (
	"fmt"
	"time"
)

// DateLayout is the wire and form format of issue and due dates.
const DateLayout = "2006-01-02"

// Invoice statuses. The set is closed; anything else is unrecognized.
const (
	StatusPending Status = "pending"
	StatusUnpaid  Status = "unpaid"
	StatusPaid    Status = "paid"
	StatusOverdue Status = "overdue"
)

// KnownStatuses lists the closed status set in display order.
var KnownStatuses = []Status{StatusPending, StatusUnpaid, StatusPaid, StatusOverdue}

type (
	Status string

	// ClientDraft is what the operator submits; the store assigns the rest.
	ClientDraft struct {
		Name    string
		Company string
		Email   string
		Phone   string
		Address string
	}

	Client struct {
		ID        string
		Name      string
		Company   string
		Email     string
		Phone     string
		Address   string
		CreatedAt time.Time
	}

	ItemDraft struct {
		Description string
		Quantity    int
		UnitPrice   float64
	}

	InvoiceItem struct {
		ID          string
		InvoiceID   string
		Description string
		Quantity    int
		UnitPrice   float64
	}

	InvoiceDraft struct {
		ClientID  string
		IssueDate time.Time
		DueDate   time.Time
		Items     []ItemDraft
	}

	// Invoice as read back from the store. Client is set when the read
	// embeds the referenced client, Items when it embeds the line items.
	Invoice struct {
		ID        string
		ClientID  string
		Client    *Client
		IssueDate time.Time
		DueDate   time.Time
		Total     float64
		Status    Status
		Items     []InvoiceItem
		CreatedAt time.Time
	}
)

// NewInvoice builds the invoice row for a validated draft: status pending,
// total derived from the items.
func NewInvoice(d InvoiceDraft) Invoice {
	return Invoice{
		ClientID:  d.ClientID,
		IssueDate: d.IssueDate,
		DueDate:   d.DueDate,
		Total:     ComputeTotal(d.Items),
		Status:    StatusPending,
	}
}

// ParseStatus maps a stored value onto the closed set. An empty value is
// treated as pending.
func ParseStatus(s string) (Status, error) {
	if s == "" {
		return StatusPending, nil
	}
	st := Status(s)
	if !st.Known() {
		return "", fmt.Errorf("unknown invoice status %q", s)
	}
	return st, nil
}

// Known reports whether s belongs to the closed status set.
func (s Status) Known() bool {
	for _, k := range KnownStatuses {
		if s == k {
			return true
		}
	}
	return false
}

// Toggle is the operator action on the detail page: paid becomes unpaid,
// every other state becomes paid.
func (s Status) Toggle() Status {
	if s == StatusPaid {
		return StatusUnpaid
	}
	return StatusPaid
}

// ToggleLabel is the caption of the button that applies Toggle.
func (s Status) ToggleLabel() string {
	if s == StatusPaid {
		return "Mark as Unpaid"
	}
	return "Mark as Paid"
}

func (s Status) String() string { return string(s) }

// ShortID is the invoice number shown to operators.
func (inv Invoice) ShortID() string {
	if len(inv.ID) <= 8 {
		return inv.ID
	}
	return inv.ID[:8]
}

// ClientName returns the embedded client's name, or "" when not embedded.
func (inv Invoice) ClientName() string {
	if inv.Client == nil {
		return ""
	}
	return inv.Client.Name
}

func (it InvoiceItem) LineTotal() float64 {
	return lineTotal(it.Quantity, it.UnitPrice).InexactFloat64()
}

func (it ItemDraft) LineTotal() float64 {
	return lineTotal(it.Quantity, it.UnitPrice).InexactFloat64()
}

// ParseDate parses a YYYY-MM-DD calendar date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}
