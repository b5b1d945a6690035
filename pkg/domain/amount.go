package domain

import "github.com/shopspring/decimal"

// AmountScale is the number of decimal places money is stored with.
const AmountScale = 2

// MaxAmount is the largest transfer amount or opening balance accepted.
var MaxAmount = decimal.RequireFromString("999999999.99")

// CheckAmount rejects values the numeric(20,2) columns cannot hold exactly.
// Trailing zeros beyond the scale are allowed, so 1.500 passes.
func CheckAmount(field string, d decimal.Decimal) error {
	if !d.Equal(d.Truncate(AmountScale)) {
		return &ValidationError{Field: field, Reason: "must have at most 2 decimal places"}
	}
	if d.GreaterThan(MaxAmount) {
		return &ValidationError{Field: field, Reason: "exceeds maximum limit of " + MaxAmount.StringFixed(AmountScale)}
	}
	return nil
}
