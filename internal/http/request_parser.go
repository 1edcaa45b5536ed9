// Package http provides HTTP server and handler implementations.
//
// This file turns submitted forms into drafts. Values are kept exactly as
// typed; validation happens in core.

package http

import (
	"net/url"
	"strconv"
	"strings"

	"fatture/internal/core"
)

// ParseClientForm reads the new-client form.
func ParseClientForm(form url.Values) core.ClientDraft {
	return core.ClientDraft{
		Name:    form.Get("name"),
		Company: form.Get("company"),
		Email:   form.Get("email"),
		Phone:   form.Get("phone"),
		Address: form.Get("address"),
	}
}

// ItemForm is one line-item row as submitted.
type ItemForm struct {
	Description string
	Quantity    string
	UnitPrice   string
}

// InvoiceForm holds the raw invoice form so it can be shown again on error.
type InvoiceForm struct {
	ClientID  string
	IssueDate string
	DueDate   string
	Items     []ItemForm
}

// DefaultInvoiceForm starts with one empty row of quantity 1 and price 0.
func DefaultInvoiceForm() InvoiceForm {
	return InvoiceForm{Items: []ItemForm{{Description: "", Quantity: "1", UnitPrice: "0"}}}
}

// ParseInvoiceForm reads line items from the parallel description, quantity
// and unit_price fields. Rows are matched by position; a short column reads
// as empty.
func ParseInvoiceForm(form url.Values) InvoiceForm {
	f := InvoiceForm{
		ClientID:  form.Get("client_id"),
		IssueDate: form.Get("issue_date"),
		DueDate:   form.Get("due_date"),
	}
	desc, qty, price := form["description"], form["quantity"], form["unit_price"]
	n := max(len(desc), len(qty), len(price))
	for i := range n {
		f.Items = append(f.Items, ItemForm{
			Description: at(desc, i),
			Quantity:    at(qty, i),
			UnitPrice:   at(price, i),
		})
	}
	return f
}

func at(vs []string, i int) string {
	if i < len(vs) {
		return vs[i]
	}
	return ""
}

// Draft converts the form. Unparseable dates and quantities become zero
// values that validation rejects; an unparseable price is reported here.
func (f InvoiceForm) Draft() (core.InvoiceDraft, error) {
	d := core.InvoiceDraft{ClientID: f.ClientID}
	d.IssueDate, _ = core.ParseDate(strings.TrimSpace(f.IssueDate))
	d.DueDate, _ = core.ParseDate(strings.TrimSpace(f.DueDate))

	for i, it := range f.Items {
		qty, err := strconv.Atoi(strings.TrimSpace(it.Quantity))
		if err != nil {
			qty = 0
		}
		price, err := core.ParseAmount(it.UnitPrice)
		if err != nil {
			return core.InvoiceDraft{}, core.UnitPriceError(i, err)
		}
		d.Items = append(d.Items, core.ItemDraft{
			Description: it.Description,
			Quantity:    qty,
			UnitPrice:   price,
		})
	}
	return d, nil
}

// Total is the running total shown under the items table. Rows that do not
// parse count as zero.
func (f InvoiceForm) Total() float64 {
	items := make([]core.ItemDraft, 0, len(f.Items))
	for _, it := range f.Items {
		qty, err := strconv.Atoi(strings.TrimSpace(it.Quantity))
		if err != nil {
			continue
		}
		price, err := core.ParseAmount(it.UnitPrice)
		if err != nil {
			continue
		}
		items = append(items, core.ItemDraft{Quantity: qty, UnitPrice: price})
	}
	return core.ComputeTotal(items)
}
