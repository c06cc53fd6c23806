package repository

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
)

// UserRepo handles users.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// Ensure inserts the user if absent. An existing balance is never overwritten.
func (r *UserRepo) Ensure(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO users(user_id) VALUES(?)`, id)
	return err
}

// Balance returns the user's current balance.
func (r *UserRepo) Balance(ctx context.Context, id int64) (decimal.Decimal, error) {
	var s string
	err := r.db.QueryRowContext(ctx, `SELECT balance FROM users WHERE user_id = ?`, id).Scan(&s)
	if err == sql.ErrNoRows {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	return parseDecimal(s)
}

// SetBalance overwrites the balance unconditionally, creating the user row if needed.
func (r *UserRepo) SetBalance(ctx context.Context, id int64, v decimal.Decimal) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO users(user_id, balance) VALUES(?, ?)
	ON CONFLICT(user_id) DO UPDATE SET balance = excluded.balance`, id, v.String())
	return err
}

// AdjustBalanceTx applies a relative balance update inside the caller's
// transaction so it commits or rolls back together with the ledger row it
// belongs to. Returns the new balance.
func (r *UserRepo) AdjustBalanceTx(ctx context.Context, tx *sql.Tx, id int64, delta decimal.Decimal) (decimal.Decimal, error) {
	var s string
	err := tx.QueryRowContext(ctx, `SELECT balance FROM users WHERE user_id = ?`, id).Scan(&s)
	if err == sql.ErrNoRows {
		return decimal.Zero, ErrNotFound
	}
	if err != nil {
		return decimal.Zero, err
	}
	cur, err := parseDecimal(s)
	if err != nil {
		return decimal.Zero, err
	}
	next := cur.Add(delta)
	if _, err := tx.ExecContext(ctx, `UPDATE users SET balance = ? WHERE user_id = ?`, next.String(), id); err != nil {
		return decimal.Zero, err
	}
	return next, nil
}
