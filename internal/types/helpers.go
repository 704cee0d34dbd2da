package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoundMoney rounds a monetary amount to 2 decimal places. Rounding happens
// only at the point of persistence, never mid-calculation, so allocation
// loops do not compound rounding error.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ToNillableString returns a pointer to the string if not empty, nil otherwise
func ToNillableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ToNillableTime returns a pointer to the time if not zero, nil otherwise
func ToNillableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// FromNillableString returns the string value or empty string if nil
func FromNillableString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
