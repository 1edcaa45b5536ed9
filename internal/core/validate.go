package core

import (
	"errors"
	"fmt"
	"regexp"
)

var (
	ErrMissingRequiredField = errors.New("missing required field")
	ErrInvalidEmailFormat   = errors.New("invalid email format")
	ErrInvalidQuantity      = errors.New("invalid quantity")
	ErrInvalidUnitPrice     = errors.New("invalid unit price")
	ErrUnknownClient        = errors.New("unknown client")
)

// emailPattern only checks the local@domain.tld shape. Unicode spaces and
// the byte order mark count as whitespace alongside ASCII \s.
var emailPattern = regexp.MustCompile(`^[^\s\v\p{Z}\x{FEFF}@]+@[^\s\v\p{Z}\x{FEFF}@]+\.[^\s\v\p{Z}\x{FEFF}@]+$`)

// ValidationError carries the failed field, the sentinel cause and the
// message shown to the operator.
type ValidationError struct {
	Field   string
	Err     error
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return e.Err }

// NewValidationError builds a ValidationError for callers outside core.
func NewValidationError(field string, err error, msg string) *ValidationError {
	return invalid(field, err, msg)
}

func invalid(field string, err error, msg string) *ValidationError {
	return &ValidationError{Field: field, Err: err, Message: msg}
}

// ValidEmail reports whether s has the local@domain.tld shape.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// Validate checks a client draft. Values are not trimmed or
// normalized; a whitespace-only name passes.
func (d ClientDraft) Validate() error {
	if d.Name == "" || d.Email == "" {
		field := "name"
		if d.Name != "" {
			field = "email"
		}
		return invalid(field, ErrMissingRequiredField, "Name and email are required")
	}
	if !ValidEmail(d.Email) {
		return invalid("email", ErrInvalidEmailFormat, "Please enter a valid email address")
	}
	return nil
}

func (it ItemDraft) Validate() error {
	if it.Description == "" {
		return invalid("description", ErrMissingRequiredField, "Description is required")
	}
	if it.Quantity < 1 {
		return invalid("quantity", ErrInvalidQuantity, "Quantity must be at least 1")
	}
	if err := checkAmount(it.UnitPrice); err != nil {
		return invalid("unit_price", ErrInvalidUnitPrice, amountMessage(err))
	}
	if it.UnitPrice < 0 {
		return invalid("unit_price", ErrInvalidUnitPrice, "Unit price cannot be negative")
	}
	if lineTotal(it.Quantity, it.UnitPrice).GreaterThanOrEqual(maxAmount) {
		return invalid("quantity", ErrInvalidQuantity, "Line total is too large")
	}
	return nil
}

// UnitPriceError wraps a ParseAmount failure for the item at index i as the
// validation error shown on the invoice form.
func UnitPriceError(i int, err error) *ValidationError {
	return invalid(fmt.Sprintf("items[%d].unit_price", i), errors.Join(ErrInvalidUnitPrice, err),
		fmt.Sprintf("Item %d: %s", i+1, amountMessage(err)))
}

// Validate checks the header fields and every line item. Item errors are
// prefixed with their 1-based position.
func (d InvoiceDraft) Validate() error {
	if d.ClientID == "" {
		return invalid("client_id", ErrMissingRequiredField, "Please select a client")
	}
	if d.IssueDate.IsZero() || d.DueDate.IsZero() {
		return invalid("dates", ErrMissingRequiredField, "Issue date and due date are required")
	}
	if len(d.Items) == 0 {
		return invalid("items", ErrMissingRequiredField, "Add at least one line item")
	}
	for i, it := range d.Items {
		if err := it.Validate(); err != nil {
			var ve *ValidationError
			if errors.As(err, &ve) {
				return invalid(fmt.Sprintf("items[%d].%s", i, ve.Field), ve.Err, fmt.Sprintf("Item %d: %s", i+1, ve.Message))
			}
			return err
		}
	}
	if ComputeTotal(d.Items) >= MaxAmount {
		return invalid("items", ErrAmountTooLarge, "Invoice total is too large")
	}
	return nil
}
