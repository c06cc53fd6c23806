// Package money centralizes how monetary amounts are parsed from user input
// and rendered back in replies.
package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidAmount is returned for non-numeric or non-positive input.
var ErrInvalidAmount = errors.New("invalid amount")

// epsilon nudges values up before rounding so binary-float artifacts like
// 2.00499999 still round to 2.01.
var epsilon = decimal.New(1, -8)

// Parse reads a user-entered amount. Comma is accepted as the decimal
// separator. The result must be strictly positive.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// Format renders d with two decimal places, a space as the thousands
// separator and a comma as the decimal separator: 1234567.891 -> "1 234 567,89".
func Format(d decimal.Decimal) string {
	s := d.Add(epsilon).StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, _ := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	b.WriteByte(',')
	b.WriteString(fracPart)
	return b.String()
}
