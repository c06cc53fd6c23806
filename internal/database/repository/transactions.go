package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryFilters defines list filters for joined transaction queries. From/To
// are calendar days; To is inclusive. Zero times mean no date bound.
type EntryFilters struct {
	Type   CategoryType // empty = both
	From   time.Time
	To     time.Time
	Oldest bool // ascending order; default is newest first
	Limit  int
	Offset int
}

// TransactionRepo handles transactions.
type TransactionRepo struct {
	db *sql.DB
}

func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

// InsertTx inserts a row inside the caller's transaction (the balance
// adjustment rides in the same one).
func (r *TransactionRepo) InsertTx(ctx context.Context, tx *sql.Tx, t Transaction) (int64, error) {
	res, err := tx.ExecContext(ctx, `
	INSERT INTO transactions(user_id, amount, category_id, description, created_at)
	VALUES(?, ?, ?, ?, ?)`,
		t.UserID, t.Amount.String(), t.CategoryID, t.Description, t.CreatedAt.UTC())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// DeleteTx removes a row inside the caller's transaction. Returns the number
// of rows actually deleted.
func (r *TransactionRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const entryColumns = `
	t.id, t.user_id, t.amount, c.name, c.type, t.description, t.created_at`

// GetJoined returns one transaction with its category attached.
func (r *TransactionRepo) GetJoined(ctx context.Context, id int64) (Entry, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT `+entryColumns+`
	FROM transactions t
	JOIN categories c ON t.category_id = c.id
	WHERE t.id = ?`, id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return Entry{}, ErrNotFound
	}
	return e, err
}

// ListJoined returns the user's transactions joined with categories.
func (r *TransactionRepo) ListJoined(ctx context.Context, userID int64, f EntryFilters) ([]Entry, error) {
	where := []string{"t.user_id = ?"}
	args := []interface{}{userID}

	if f.Type != "" {
		where = append(where, "c.type = ?")
		args = append(args, string(f.Type))
	}
	if !f.From.IsZero() {
		where = append(where, "t.created_at >= ?")
		args = append(args, dayStart(f.From))
	}
	if !f.To.IsZero() {
		where = append(where, "t.created_at < ?")
		args = append(args, dayStart(f.To).AddDate(0, 0, 1))
	}

	query := `
	SELECT ` + entryColumns + `
	FROM transactions t
	JOIN categories c ON t.category_id = c.id
	WHERE ` + strings.Join(where, " AND ")
	if f.Oldest {
		query += " ORDER BY t.created_at, t.id"
	} else {
		query += " ORDER BY t.created_at DESC, t.id DESC"
	}
	if f.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// LastN returns the user's n most recent transactions, newest first.
func (r *TransactionRepo) LastN(ctx context.Context, userID int64, n int) ([]Entry, error) {
	return r.ListJoined(ctx, userID, EntryFilters{Limit: n})
}

// Count returns how many transactions the user has, optionally of one type.
func (r *TransactionRepo) Count(ctx context.Context, userID int64, typ CategoryType) (int, error) {
	query := `
	SELECT COUNT(*) FROM transactions t
	JOIN categories c ON t.category_id = c.id
	WHERE t.user_id = ?`
	args := []interface{}{userID}
	if typ != "" {
		query += ` AND c.type = ?`
		args = append(args, string(typ))
	}
	var n int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

// SumByType returns income and expense totals for the inclusive day range.
func (r *TransactionRepo) SumByType(ctx context.Context, userID int64, from, to time.Time) (income, expense decimal.Decimal, err error) {
	income, expense = decimal.Zero, decimal.Zero
	rows, err := r.db.QueryContext(ctx, `
	SELECT c.type, t.amount
	FROM transactions t
	JOIN categories c ON t.category_id = c.id
	WHERE t.user_id = ? AND t.created_at >= ? AND t.created_at < ?`,
		userID, dayStart(from), dayStart(to).AddDate(0, 0, 1))
	if err != nil {
		return
	}
	defer rows.Close()

	for rows.Next() {
		var typ, amount string
		if err = rows.Scan(&typ, &amount); err != nil {
			return
		}
		var d decimal.Decimal
		if d, err = parseDecimal(amount); err != nil {
			return
		}
		if CategoryType(typ) == CategoryIncome {
			income = income.Add(d)
		} else {
			expense = expense.Add(d)
		}
	}
	err = rows.Err()
	return
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// scanEntry handles both Row and Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntry(row scanner) (Entry, error) {
	var e Entry
	var amount, typ string
	var desc sql.NullString
	if err := row.Scan(&e.ID, &e.UserID, &amount, &e.CategoryName, &typ, &desc, &e.CreatedAt); err != nil {
		return Entry{}, err
	}
	d, err := parseDecimal(amount)
	if err != nil {
		return Entry{}, err
	}
	e.Amount = d
	e.CategoryType = CategoryType(typ)
	if desc.Valid {
		e.Description = &desc.String
	}
	return e, nil
}
