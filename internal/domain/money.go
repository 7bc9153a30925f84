package domain

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for amounts that are not a valid monetary
// value: non-numeric input, more than two fractional digits, or (for ledger
// operations) a non-positive value.
var ErrInvalidAmount = errors.New("invalid amount")

// ParseAmount converts a decimal string such as "50.00" into cents. Decimal
// arithmetic is confined to this boundary; everything past it works on int64
// minor units.
func ParseAmount(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}

	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	cents := d.Shift(2)
	if !cents.IsInteger() {
		return 0, ErrInvalidAmount
	}
	if !cents.BigInt().IsInt64() {
		return 0, ErrInvalidAmount
	}

	return cents.IntPart(), nil
}

// FormatAmount renders cents as a two-decimal string, e.g. 5000 -> "50.00".
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
