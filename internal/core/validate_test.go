package core

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestClientDraftValidate(t *testing.T) {
	cases := []struct {
		name  string
		draft ClientDraft
		want  error
		msg   string
	}{
		{"valid", ClientDraft{Name: "Ada", Email: "a@b.co"}, nil, ""},
		{"missing name", ClientDraft{Email: "a@b.co"}, ErrMissingRequiredField, "Name and email are required"},
		{"missing email", ClientDraft{Name: "Ada"}, ErrMissingRequiredField, "Name and email are required"},
		{"no tld", ClientDraft{Name: "Ada", Email: "a@b"}, ErrInvalidEmailFormat, "Please enter a valid email address"},
		{"space in local part", ClientDraft{Name: "Ada", Email: "a b@c.d"}, ErrInvalidEmailFormat, "Please enter a valid email address"},
		{"double at", ClientDraft{Name: "Ada", Email: "a@@b.co"}, ErrInvalidEmailFormat, ""},
		{"whitespace name is not trimmed", ClientDraft{Name: "   ", Email: "x@y.zz"}, nil, ""},
		{"no-break space in local part", ClientDraft{Name: "Ada", Email: "a\u00a0b@c.d"}, ErrInvalidEmailFormat, ""},
		{"em space in domain", ClientDraft{Name: "Ada", Email: "a@b\u2003c.d"}, ErrInvalidEmailFormat, ""},
		{"byte order mark", ClientDraft{Name: "Ada", Email: "\ufeffa@b.co"}, ErrInvalidEmailFormat, ""},
		{"vertical tab", ClientDraft{Name: "Ada", Email: "a\vb@c.d"}, ErrInvalidEmailFormat, ""},
		{"non-ascii letters allowed", ClientDraft{Name: "Ada", Email: "zoë@exämple.it"}, nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.draft.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) {
				t.Fatalf("expected *ValidationError, got %T", err)
			}
			if tc.msg != "" && ve.Message != tc.msg {
				t.Errorf("message = %q, want %q", ve.Message, tc.msg)
			}
		})
	}
}

func TestItemDraftValidate(t *testing.T) {
	cases := []struct {
		name string
		item ItemDraft
		want error
		msg  string
	}{
		{"free item", ItemDraft{Description: "Work", Quantity: 1, UnitPrice: 0}, nil, ""},
		{"largest price", ItemDraft{Description: "Work", Quantity: 1, UnitPrice: 9999999999.99}, nil, ""},
		{"no description", ItemDraft{Description: "", Quantity: 1, UnitPrice: 10}, ErrMissingRequiredField, ""},
		{"zero quantity", ItemDraft{Description: "Work", Quantity: 0, UnitPrice: 10}, ErrInvalidQuantity, ""},
		{"negative quantity", ItemDraft{Description: "Work", Quantity: -3, UnitPrice: 10}, ErrInvalidQuantity, ""},
		{"negative price", ItemDraft{Description: "Work", Quantity: 1, UnitPrice: -0.01}, ErrInvalidUnitPrice, "Unit price cannot be negative"},
		{"infinite price", ItemDraft{Description: "Work", Quantity: 1, UnitPrice: math.Inf(1)}, ErrInvalidUnitPrice, "Unit price must be a number"},
		{"NaN price", ItemDraft{Description: "Work", Quantity: 1, UnitPrice: math.NaN()}, ErrInvalidUnitPrice, "Unit price must be a number"},
		{"huge price", ItemDraft{Description: "Work", Quantity: 1, UnitPrice: 1e300}, ErrInvalidUnitPrice, "Unit price is too large"},
		{"price at the bound", ItemDraft{Description: "Work", Quantity: 1, UnitPrice: 1e10}, ErrInvalidUnitPrice, "Unit price is too large"},
		{"sub-cent price", ItemDraft{Description: "Work", Quantity: 3, UnitPrice: 0.333}, ErrInvalidUnitPrice, "Unit price cannot have more than 2 decimal places"},
		{"huge quantity", ItemDraft{Description: "Work", Quantity: math.MaxInt64, UnitPrice: 1}, ErrInvalidQuantity, "Line total is too large"},
		{"line total overflow", ItemDraft{Description: "Work", Quantity: 2, UnitPrice: 9999999999.99}, ErrInvalidQuantity, "Line total is too large"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.item.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("expected ok, got %v", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
			if tc.msg != "" && err.Error() != tc.msg {
				t.Errorf("message = %q, want %q", err.Error(), tc.msg)
			}
		})
	}
}

func TestInvoiceDraftTotalBound(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	d := InvoiceDraft{
		ClientID:  "c1",
		IssueDate: day,
		DueDate:   day,
		Items: []ItemDraft{
			{Description: "a", Quantity: 1, UnitPrice: 6e9},
			{Description: "b", Quantity: 1, UnitPrice: 6e9},
		},
	}
	err := d.Validate()
	if !errors.Is(err, ErrAmountTooLarge) || err.Error() != "Invoice total is too large" {
		t.Fatalf("got %v", err)
	}

	d.Items = d.Items[:1]
	if err := d.Validate(); err != nil {
		t.Fatalf("single item under the bound: %v", err)
	}
}

func TestUnitPriceError(t *testing.T) {
	err := UnitPriceError(1, ErrAmountPrecision)
	if !errors.Is(err, ErrInvalidUnitPrice) || !errors.Is(err, ErrAmountPrecision) {
		t.Fatalf("UnitPriceError should wrap both causes: %v", err)
	}
	if err.Field != "items[1].unit_price" || err.Message != "Item 2: Unit price cannot have more than 2 decimal places" {
		t.Errorf("got field %q message %q", err.Field, err.Message)
	}
}

func TestInvoiceDraftValidate(t *testing.T) {
	day := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	good := InvoiceDraft{
		ClientID:  "c1",
		IssueDate: day,
		DueDate:   day.AddDate(0, 0, 30),
		Items:     []ItemDraft{{Description: "Design", Quantity: 2, UnitPrice: 50}},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	noClient := good
	noClient.ClientID = ""
	noDue := good
	noDue.DueDate = time.Time{}
	noItems := good
	noItems.Items = nil
	badItem := good
	badItem.Items = []ItemDraft{good.Items[0], {Description: "x", Quantity: 0}}

	for name, d := range map[string]InvoiceDraft{"no client": noClient, "no due date": noDue, "no items": noItems} {
		if err := d.Validate(); !errors.Is(err, ErrMissingRequiredField) {
			t.Errorf("%s: got %v", name, err)
		}
	}

	err := badItem.Validate()
	if !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("got %v, want ErrInvalidQuantity", err)
	}
	if err.Error() != "Item 2: Quantity must be at least 1" {
		t.Errorf("message = %q", err.Error())
	}
}
