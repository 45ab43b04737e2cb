package utils

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// All balances, payments and rates are held in integer cents.
// Decimal values only exist at the I/O edge.

var hundred = decimal.NewFromInt(100)

// ToCents converts a decimal currency amount to cents.
// Amounts with more than two fractional digits are rejected rather than rounded.
func ToCents(amount decimal.Decimal) (int64, error) {
	cents := amount.Mul(hundred)
	if !cents.Equal(cents.Truncate(0)) {
		return 0, fmt.Errorf("amount %s has more than 2 decimal places", amount.String())
	}
	if !cents.BigInt().IsInt64() {
		return 0, fmt.Errorf("amount %s is out of range", amount.String())
	}
	return cents.IntPart(), nil
}

// ToDollars converts cents to a decimal currency amount.
func ToDollars(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// ParseMoney parses a user-entered amount such as "1,250.50" into cents.
func ParseMoney(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, fmt.Errorf("amount is required")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return ToCents(d)
}

// FormatCents renders cents with exactly two decimals, e.g. 3006 -> "30.06".
func FormatCents(cents int64) string {
	return ToDollars(cents).StringFixed(2)
}

// SumMoney adds decimal amounts through cents so binary rounding never leaks in.
func SumMoney(amounts ...decimal.Decimal) (decimal.Decimal, error) {
	var total int64
	for _, a := range amounts {
		c, err := ToCents(a)
		if err != nil {
			return decimal.Zero, err
		}
		total += c
	}
	return ToDollars(total), nil
}

// SumCents adds cent amounts.
func SumCents(amounts ...int64) int64 {
	var total int64
	for _, a := range amounts {
		total += a
	}
	return total
}
