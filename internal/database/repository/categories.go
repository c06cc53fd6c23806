package repository

import (
	"context"
	"database/sql"
	"strings"
)

// CategoryRepo handles categories.
type CategoryRepo struct {
	db *sql.DB
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo { return &CategoryRepo{db: db} }

// Add inserts a category. The (user, name, type) triple is unique; a second
// insert of the same triple returns ErrDuplicateCategory.
func (r *CategoryRepo) Add(ctx context.Context, userID int64, name string, typ CategoryType) (Category, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO categories(user_id, name, type) VALUES(?, ?, ?)`, userID, name, string(typ))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return Category{}, ErrDuplicateCategory
		}
		return Category{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Category{}, err
	}
	return Category{ID: id, UserID: userID, Name: name, Type: typ}, nil
}

// Delete removes the user's category by name, whichever type it has.
// Transactions referencing it are left in place; they disappear from joined
// views but keep their balance contribution.
func (r *CategoryRepo) Delete(ctx context.Context, userID int64, name string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM categories WHERE user_id = ? AND name = ?`, userID, name)
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

// List returns the user's categories, optionally restricted to one type
// (empty typ means both), ordered by name.
func (r *CategoryRepo) List(ctx context.Context, userID int64, typ CategoryType) ([]Category, error) {
	query := `SELECT id, user_id, name, type FROM categories WHERE user_id = ?`
	args := []interface{}{userID}
	if typ != "" {
		query += ` AND type = ?`
		args = append(args, string(typ))
	}
	query += ` ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		var t string
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &t); err != nil {
			return nil, err
		}
		c.Type = CategoryType(t)
		out = append(out, c)
	}
	return out, rows.Err()
}

// GetByName looks a category up scoped to the user and the expected type. A
// name that only exists under the other type is not found.
func (r *CategoryRepo) GetByName(ctx context.Context, userID int64, name string, typ CategoryType) (Category, error) {
	var c Category
	var t string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type FROM categories WHERE user_id = ? AND name = ? AND type = ?`,
		userID, name, string(typ)).Scan(&c.ID, &c.UserID, &c.Name, &t)
	if err == sql.ErrNoRows {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, err
	}
	c.Type = CategoryType(t)
	return c, nil
}

func (r *CategoryRepo) Get(ctx context.Context, id int64) (Category, error) {
	var c Category
	var t string
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, type FROM categories WHERE id = ?`, id).
		Scan(&c.ID, &c.UserID, &c.Name, &t)
	if err == sql.ErrNoRows {
		return Category{}, ErrNotFound
	}
	if err != nil {
		return Category{}, err
	}
	c.Type = CategoryType(t)
	return c, nil
}
