package repository

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryType distinguishes income categories from expense categories.
type CategoryType string

const (
	CategoryIncome  CategoryType = "income"
	CategoryExpense CategoryType = "expense"
)

// Sign is +1 for income and -1 for expense: the direction a transaction in a
// category of this type moves the balance.
func (t CategoryType) Sign() decimal.Decimal {
	if t == CategoryExpense {
		return decimal.NewFromInt(-1)
	}
	return decimal.NewFromInt(1)
}

// User represents a users row. The id is the chat-platform user id.
type User struct {
	ID      int64
	Balance decimal.Decimal
}

// Category represents a categories row.
type Category struct {
	ID     int64
	UserID int64
	Name   string
	Type   CategoryType
}

// Transaction represents a transactions row. The sign of its balance effect is
// derived from the linked category, never stored here.
type Transaction struct {
	ID          int64
	UserID      int64
	Amount      decimal.Decimal
	CategoryID  int64
	Description *string
	CreatedAt   time.Time
}

// Entry is a transaction joined with its category, the shape history and
// reports consume.
type Entry struct {
	ID           int64
	UserID       int64
	Amount       decimal.Decimal
	CategoryName string
	CategoryType CategoryType
	Description  *string
	CreatedAt    time.Time
}

// Wish represents a wishes row: a savings goal measured against the balance.
type Wish struct {
	ID           int64
	UserID       int64
	Title        string
	Description  *string
	TargetAmount decimal.Decimal
	CreatedAt    time.Time
}
