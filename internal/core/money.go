// Package core provides money rounding and formatting utilities.
//
// Amounts are plain float64 values with no currency attached. Totals are
// rounded to two decimals for reporting; messages render amounts with a
// leading dollar sign.
package core

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// amountPattern allows an optional sign, digits, and either a dot fraction
// or a comma followed by one or two digits. "1,234" is not a decimal.
var amountPattern = regexp.MustCompile(`^[+-]?[0-9]+(\.[0-9]+|,[0-9]{1,2})?$`)

// RoundCents rounds x to two decimal places, half away from zero.
//
// Examples:
//
//	RoundCents(170.5)    -> 170.5
//	RoundCents(0.125)    -> 0.13
func RoundCents(x float64) float64 {
	return math.Round(x*100) / 100
}

// FormatDollars renders x with two decimals and a dollar sign (e.g. "$150.50").
// Negative values keep the sign after the symbol ("$-3.00").
func FormatDollars(x float64) string {
	return fmt.Sprintf("$%.2f", x)
}

// ParseAmount converts a decimal string to a float amount.
//
// It accepts dot (12.34) and comma (12,34) decimal separators and an
// optional leading sign. Thousands separators, exponents, hex and
// underscore forms are rejected. Used at the boundary where arguments
// arrive as strings; the ledger itself accepts any float.
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty amount")
	}
	if !amountPattern.MatchString(s) {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	return v, nil
}
