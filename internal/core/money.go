package core

import (
	"errors"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrAmountTooLarge  = errors.New("amount too large")
	ErrAmountPrecision = errors.New("amount has more than two decimal places")
)

// MaxAmount bounds unit prices, line totals and invoice totals. It matches
// the decimal(12,2) columns of the SQL stores.
const MaxAmount = 1e10

// AmountScale is the number of decimal places an amount may carry.
const AmountScale = 2

var maxAmount = decimal.NewFromInt(1e10)

func lineTotal(quantity int, unitPrice float64) decimal.Decimal {
	return decimal.NewFromInt(int64(quantity)).Mul(decimal.NewFromFloat(unitPrice))
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// ComputeTotal returns Σ quantity × unit price. Products are summed as
// decimals so 0.1 + 0.2 style drift does not reach the stored total.
// Non-finite prices contribute nothing; validation rejects them first.
func ComputeTotal(items []ItemDraft) float64 {
	sum := decimal.Zero
	for _, it := range items {
		if !finite(it.UnitPrice) {
			continue
		}
		sum = sum.Add(lineTotal(it.Quantity, it.UnitPrice))
	}
	return sum.InexactFloat64()
}

// FormatCurrency renders an amount as "$1234.50".
func FormatCurrency(amount float64) string {
	if !finite(amount) {
		return "$-"
	}
	d := decimal.NewFromFloat(amount).Round(2)
	if d.IsNegative() {
		return "-$" + d.Neg().StringFixed(2)
	}
	return "$" + d.StringFixed(2)
}

// ParseAmount reads a unit price typed in a form. A comma decimal
// separator is accepted. Amounts must have at most two decimal places and
// stay below MaxAmount in magnitude; the sign is left to validation.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
	if err != nil {
		return 0, ErrInvalidAmount
	}
	if d.Abs().GreaterThanOrEqual(maxAmount) {
		return 0, ErrAmountTooLarge
	}
	if !hasCents(d) {
		return 0, ErrAmountPrecision
	}
	return d.InexactFloat64(), nil
}

func hasCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(AmountScale))
}

// checkAmount applies ParseAmount's bounds to an already numeric value.
func checkAmount(f float64) error {
	switch {
	case !finite(f):
		return ErrInvalidAmount
	case math.Abs(f) >= MaxAmount:
		return ErrAmountTooLarge
	case !hasCents(decimal.NewFromFloat(f)):
		return ErrAmountPrecision
	}
	return nil
}

// amountMessage is the operator-facing text for a ParseAmount or
// checkAmount error.
func amountMessage(err error) string {
	switch {
	case errors.Is(err, ErrAmountTooLarge):
		return "Unit price is too large"
	case errors.Is(err, ErrAmountPrecision):
		return "Unit price cannot have more than 2 decimal places"
	default:
		return "Unit price must be a number"
	}
}
