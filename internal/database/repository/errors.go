package repository

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNotFound is returned by point lookups and deletes that matched no row.
var ErrNotFound = errors.New("not found")

// ErrDuplicateCategory is returned when (user, name, type) already exists.
var ErrDuplicateCategory = errors.New("category already exists")

func parseDecimal(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(s)
}
