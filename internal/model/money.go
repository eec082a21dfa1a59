package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a platform price string ("12500", "99.90") into a decimal.
// The catalog platform sends every price as a decimal string; arithmetic must
// never be done on the raw strings. Returns ok=false for empty or malformed input.
func ParseAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// AmountOrZero is ParseAmount with malformed input collapsed to zero.
// Examples: "99.00" → 99, "" → 0, "abc" → 0
func AmountOrZero(s string) decimal.Decimal {
	d, _ := ParseAmount(s)
	return d
}
