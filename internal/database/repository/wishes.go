package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shopspring/decimal"
)

// WishUpdate carries the fields of a partial wish update; nil means unchanged.
type WishUpdate struct {
	Title        *string
	Description  *string
	TargetAmount *decimal.Decimal
}

// WishRepo handles wishes.
type WishRepo struct {
	db *sql.DB
}

func NewWishRepo(db *sql.DB) *WishRepo { return &WishRepo{db: db} }

func (r *WishRepo) Add(ctx context.Context, w Wish) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
	INSERT INTO wishes(user_id, title, description, target_amount, created_at)
	VALUES(?, ?, ?, ?, ?)`,
		w.UserID, w.Title, w.Description, w.TargetAmount.String(), w.CreatedAt.UTC())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Update applies a partial update. ErrNotFound when the wish is gone;
// an empty update is a no-op.
func (r *WishRepo) Update(ctx context.Context, id int64, u WishUpdate) error {
	var set []string
	var args []interface{}
	if u.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *u.Title)
	}
	if u.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *u.Description)
	}
	if u.TargetAmount != nil {
		set = append(set, "target_amount = ?")
		args = append(args, u.TargetAmount.String())
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx, `UPDATE wishes SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *WishRepo) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM wishes WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of the user's wishes in insertion order.
func (r *WishRepo) List(ctx context.Context, userID int64, limit, offset int) ([]Wish, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, user_id, title, description, target_amount, created_at
	FROM wishes WHERE user_id = ? ORDER BY id LIMIT ? OFFSET ?`,
		userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Wish
	for rows.Next() {
		w, err := scanWish(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *WishRepo) Count(ctx context.Context, userID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM wishes WHERE user_id = ?`, userID).Scan(&n)
	return n, err
}

func (r *WishRepo) Get(ctx context.Context, id int64) (Wish, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, user_id, title, description, target_amount, created_at
	FROM wishes WHERE id = ?`, id)
	w, err := scanWish(row)
	if err == sql.ErrNoRows {
		return Wish{}, ErrNotFound
	}
	return w, err
}

// GetByTitle returns the user's first wish with the given title.
func (r *WishRepo) GetByTitle(ctx context.Context, userID int64, title string) (Wish, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, user_id, title, description, target_amount, created_at
	FROM wishes WHERE user_id = ? AND title = ? ORDER BY id LIMIT 1`, userID, title)
	w, err := scanWish(row)
	if err == sql.ErrNoRows {
		return Wish{}, ErrNotFound
	}
	return w, err
}

// SumTargets returns the total of all the user's target amounts.
func (r *WishRepo) SumTargets(ctx context.Context, userID int64) (decimal.Decimal, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT target_amount FROM wishes WHERE user_id = ?`, userID)
	if err != nil {
		return decimal.Zero, err
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return decimal.Zero, err
		}
		d, err := parseDecimal(s)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(d)
	}
	return total, rows.Err()
}

func scanWish(row scanner) (Wish, error) {
	var w Wish
	var target string
	var desc sql.NullString
	if err := row.Scan(&w.ID, &w.UserID, &w.Title, &desc, &target, &w.CreatedAt); err != nil {
		return Wish{}, err
	}
	d, err := parseDecimal(target)
	if err != nil {
		return Wish{}, err
	}
	w.TargetAmount = d
	if desc.Valid {
		w.Description = &desc.String
	}
	return w, nil
}
