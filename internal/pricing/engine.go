package pricing

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents an exact decimal monetary value.
type Money = decimal.Decimal

// CentPlaces is the number of decimal places kept for monetary amounts.
const CentPlaces int32 = 2

// Zero is the zero amount.
var Zero = decimal.Zero

// Line describes anything that contributes a total to a cart subtotal.
type Line interface {
	TotalPrice() Money
}

// Round rounds an amount to whole cents, half away from zero.
func Round(m Money) Money {
	return m.Round(CentPlaces)
}

// ClampZero floors an amount at zero.
func ClampZero(m Money) Money {
	if m.IsNegative() {
		return Zero
	}
	return m
}

// Min returns the smaller of two amounts.
func Min(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Parse converts a decimal string such as "99.99" into Money.
func Parse(value string) (Money, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return Zero, nil
	}
	m, err := decimal.NewFromString(trimmed)
	if err != nil {
		return Zero, fmt.Errorf("pricing: parse amount %q: %w", value, err)
	}
	return m, nil
}

// MustParse behaves like Parse but panics on malformed input. Intended for static tables and tests.
func MustParse(value string) Money {
	m, err := Parse(value)
	if err != nil {
		panic(err)
	}
	return m
}

// Subtotal sums the totals of the provided lines. An empty slice yields zero.
func Subtotal[L Line](lines []L) Money {
	total := Zero
	for _, line := range lines {
		total = total.Add(line.TotalPrice())
	}
	return total
}

// Format renders an amount with exactly two decimal places.
func Format(m Money) string {
	return m.StringFixed(CentPlaces)
}
