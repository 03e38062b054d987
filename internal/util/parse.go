package util

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseInt parses a whole number, tolerating surrounding whitespace and a
// trailing ".0" from JSON-ish sources. ok is false for empty or invalid input.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}

// ParseYear parses a calendar year in a plausible range.
func ParseYear(s string) (int, bool) {
	n, ok := ParseInt(s)
	if !ok || n < 1000 || n > 9999 {
		return 0, false
	}
	return n, true
}

// ParsePrice parses a non-negative price. ok is false for empty, invalid or negative input.
func ParsePrice(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return decimal.Zero, false
	}
	return d, true
}

// NormalizePrice returns the canonical stored form of a price, or "" when invalid.
func NormalizePrice(s string) string {
	d, ok := ParsePrice(s)
	if !ok {
		return ""
	}
	return d.String()
}

// ParseRating parses a 1-5 rating.
func ParseRating(s string) (int, bool) {
	n, ok := ParseInt(s)
	if !ok || n < 1 || n > 5 {
		return 0, false
	}
	return n, true
}
