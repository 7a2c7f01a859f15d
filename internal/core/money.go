// Package core provides the domain types shared by storage, transport and
// the analytics engine: expenses, budgets, dates and money.
//
// Money is stored as integer cents. Parsing from the wire goes through
// shopspring/decimal so that "12.345" rounds half-up to 12.35 instead of
// accumulating float error.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseDecimalToCents converts a decimal string to cents with half-up
// rounding on the third decimal place. Both dot and comma separators are
// accepted. Only strictly positive amounts are valid.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" || strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Mul(decimal.NewFromInt(100)).Round(0)
	if !cents.IsPositive() {
		return 0, ErrInvalidAmount
	}
	if cents.GreaterThan(decimal.NewFromInt(1<<62 - 1)) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// CentsFromFloat converts a non-negative float amount to cents with half-up
// rounding. Used when accepting JSON numbers from the API.
func CentsFromFloat(v float64) (int64, error) {
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	cents := decimal.NewFromFloat(v).Mul(decimal.NewFromInt(100)).Round(0)
	if !cents.IsPositive() {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

// Float64 returns the monetary value in whole currency units. The analytics
// engine computes on float64; cents stay the storage representation.
func (m Money) Float64() float64 {
	return float64(m.Cents) / 100.0
}
