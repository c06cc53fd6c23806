// Package ledger implements the mutations of the balance/transaction ledger.
// Every commit or removal pairs the transaction row with its balance
// adjustment inside one database transaction.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ovolkov/finbot/internal/database"
	"github.com/ovolkov/finbot/internal/database/repository"
)

var errNonPositiveAmount = errors.New("amount must be positive")

// Service coordinates the per-entity repositories.
type Service struct {
	db           *sql.DB
	Users        *repository.UserRepo
	Categories   *repository.CategoryRepo
	Transactions *repository.TransactionRepo
	Wishes       *repository.WishRepo
}

func NewService(db *sql.DB) *Service {
	return &Service{
		db:           db,
		Users:        repository.NewUserRepo(db),
		Categories:   repository.NewCategoryRepo(db),
		Transactions: repository.NewTransactionRepo(db),
		Wishes:       repository.NewWishRepo(db),
	}
}

// Commit records a transaction and shifts the balance by its signed amount in
// one atomic unit. at with zero value means now. Returns the new balance.
func (s *Service) Commit(ctx context.Context, userID, categoryID int64, amount decimal.Decimal, description *string, at time.Time) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, errNonPositiveAmount
	}
	cat, err := s.Categories.Get(ctx, categoryID)
	if err != nil {
		return decimal.Zero, err
	}
	if at.IsZero() {
		at = database.Now()
	}

	var balance decimal.Decimal
	err = database.WithTx(s.db, func(tx *sql.Tx) error {
		_, err := s.Transactions.InsertTx(ctx, tx, repository.Transaction{
			UserID:      userID,
			Amount:      amount,
			CategoryID:  categoryID,
			Description: description,
			CreatedAt:   at,
		})
		if err != nil {
			return err
		}
		balance, err = s.Users.AdjustBalanceTx(ctx, tx, userID, amount.Mul(cat.Type.Sign()))
		return err
	})
	if err != nil {
		return decimal.Zero, err
	}
	return balance, nil
}

// Remove deletes a transaction and reverses its balance effect atomically.
func (s *Service) Remove(ctx context.Context, txID int64) error {
	entry, err := s.Transactions.GetJoined(ctx, txID)
	if err != nil {
		return err
	}
	return database.WithTx(s.db, func(tx *sql.Tx) error {
		n, err := s.Transactions.DeleteTx(ctx, tx, txID)
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		reverse := entry.Amount.Mul(entry.CategoryType.Sign()).Neg()
		_, err = s.Users.AdjustBalanceTx(ctx, tx, entry.UserID, reverse)
		return err
	})
}

// RemoveSelected deletes the transactions whose toggle is set, reversing each
// one's balance effect individually. Ids that no longer exist are skipped.
// Returns the number actually deleted.
func (s *Service) RemoveSelected(ctx context.Context, userID int64, selections map[int64]bool) (int, error) {
	deleted := 0
	for id, selected := range selections {
		if !selected {
			continue
		}
		err := s.Remove(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue // concurrently deleted
		}
		if err != nil {
			return deleted, fmt.Errorf("delete transaction %d: %w", id, err)
		}
		deleted++
	}
	return deleted, nil
}

// MonthSummary returns income/expense totals for the calendar month holding day.
func (s *Service) MonthSummary(ctx context.Context, userID int64, day time.Time) (income, expense decimal.Decimal, err error) {
	start := time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return s.Transactions.SumByType(ctx, userID, start, end)
}
