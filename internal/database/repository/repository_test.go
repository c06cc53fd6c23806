package repository

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ovolkov/finbot/internal/database"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	dir, err := os.MkdirTemp("", "finbot-repo-test-*")
	if err != nil {
		t.Fatalf("mkdir temp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	db, err := database.Open(filepath.Join(dir, "finbot.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := database.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}

// ---- users ----

func TestUserEnsureKeepsBalance(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)

	if err := users.Ensure(ctx, 1); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if err := users.SetBalance(ctx, 1, dec(t, "42.50")); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	if err := users.Ensure(ctx, 1); err != nil {
		t.Fatalf("second ensure: %v", err)
	}

	got, err := users.Balance(ctx, 1)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !got.Equal(dec(t, "42.50")) {
		t.Errorf("balance = %s, want 42.50", got)
	}
}

func TestUserBalanceNotFound(t *testing.T) {
	db := testDB(t)
	users := NewUserRepo(db)

	if _, err := users.Balance(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUserSetBalanceCreatesRow(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)

	if err := users.SetBalance(ctx, 7, dec(t, "-15")); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	got, err := users.Balance(ctx, 7)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if !got.Equal(dec(t, "-15")) {
		t.Errorf("balance = %s, want -15", got)
	}
}

func TestAdjustBalanceTx(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)

	if err := users.SetBalance(ctx, 1, dec(t, "100")); err != nil {
		t.Fatalf("set balance: %v", err)
	}

	var got decimal.Decimal
	err := database.WithTx(db, func(tx *sql.Tx) error {
		var err error
		got, err = users.AdjustBalanceTx(ctx, tx, 1, dec(t, "-30.25"))
		return err
	})
	if err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if !got.Equal(dec(t, "69.75")) {
		t.Errorf("new balance = %s, want 69.75", got)
	}
}

// ---- categories ----

func TestCategoryAddDuplicate(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	cats := NewCategoryRepo(db)

	if err := users.Ensure(ctx, 1); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := cats.Add(ctx, 1, "Food", CategoryExpense); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := cats.Add(ctx, 1, "Food", CategoryExpense); !errors.Is(err, ErrDuplicateCategory) {
		t.Errorf("duplicate err = %v, want ErrDuplicateCategory", err)
	}
	// same name under the other type is a different category
	if _, err := cats.Add(ctx, 1, "Food", CategoryIncome); err != nil {
		t.Errorf("other-type add: %v", err)
	}
	// another user may reuse the name
	if err := users.Ensure(ctx, 2); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := cats.Add(ctx, 2, "Food", CategoryExpense); err != nil {
		t.Errorf("other-user add: %v", err)
	}
}

func TestCategoryListByType(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	cats := NewCategoryRepo(db)

	if err := users.Ensure(ctx, 1); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	for _, c := range []struct {
		name string
		typ  CategoryType
	}{
		{"Salary", CategoryIncome},
		{"Food", CategoryExpense},
		{"Rent", CategoryExpense},
	} {
		if _, err := cats.Add(ctx, 1, c.name, c.typ); err != nil {
			t.Fatalf("add %s: %v", c.name, err)
		}
	}

	expenses, err := cats.List(ctx, 1, CategoryExpense)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(expenses) != 2 || expenses[0].Name != "Food" || expenses[1].Name != "Rent" {
		t.Errorf("expense list = %+v, want Food, Rent", expenses)
	}

	all, err := cats.List(ctx, 1, "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all = %d categories, want 3", len(all))
	}
}

func TestCategoryGetByNameIsTypeScoped(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	cats := NewCategoryRepo(db)

	if err := users.Ensure(ctx, 1); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if _, err := cats.Add(ctx, 1, "Gifts", CategoryExpense); err != nil {
		t.Fatalf("add: %v", err)
	}

	if _, err := cats.GetByName(ctx, 1, "Gifts", CategoryIncome); !errors.Is(err, ErrNotFound) {
		t.Errorf("wrong-type lookup err = %v, want ErrNotFound", err)
	}
	got, err := cats.GetByName(ctx, 1, "Gifts", CategoryExpense)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Type != CategoryExpense {
		t.Errorf("type = %s, want expense", got.Type)
	}
}

func TestCategoryDeleteNotFound(t *testing.T) {
	db := testDB(t)
	cats := NewCategoryRepo(db)

	if err := cats.Delete(context.Background(), 1, "Ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// Deleting a category must not cascade into its transactions; the rows stay
// and only vanish from joined views.
func TestDeleteCategoryLeavesTransactions(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	cats := NewCategoryRepo(db)
	txs := NewTransactionRepo(db)

	if err := users.Ensure(ctx, 1); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	cat, err := cats.Add(ctx, 1, "Food", CategoryExpense)
	if err != nil {
		t.Fatalf("add category: %v", err)
	}

	var txID int64
	err = database.WithTx(db, func(tx *sql.Tx) error {
		txID, err = txs.InsertTx(ctx, tx, Transaction{
			UserID:     1,
			Amount:     dec(t, "10"),
			CategoryID: cat.ID,
			CreatedAt:  database.Now(),
		})
		return err
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := cats.Delete(ctx, 1, "Food"); err != nil {
		t.Fatalf("delete category: %v", err)
	}

	var count int
	if err := db.QueryRow(`SELECT COUNT(*) FROM transactions WHERE id = ?`, txID).Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("transaction row gone after category delete")
	}
	if _, err := txs.GetJoined(ctx, txID); !errors.Is(err, ErrNotFound) {
		t.Errorf("joined lookup err = %v, want ErrNotFound for orphaned row", err)
	}
}

// ---- transactions ----

func seedEntries(t *testing.T, db *sql.DB) (*TransactionRepo, int64) {
	t.Helper()
	ctx := context.Background()
	users := NewUserRepo(db)
	cats := NewCategoryRepo(db)
	txs := NewTransactionRepo(db)

	if err := users.Ensure(ctx, 1); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	salary, err := cats.Add(ctx, 1, "Salary", CategoryIncome)
	if err != nil {
		t.Fatalf("add salary: %v", err)
	}
	food, err := cats.Add(ctx, 1, "Food", CategoryExpense)
	if err != nil {
		t.Fatalf("add food: %v", err)
	}

	rows := []struct {
		amount string
		cat    int64
		day    time.Time
	}{
		{"1000", salary.ID, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)},
		{"40", food.ID, time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)},
		{"60", food.ID, time.Date(2024, 5, 3, 18, 30, 0, 0, time.UTC)},
	}
	var lastID int64
	for _, row := range rows {
		err := database.WithTx(db, func(tx *sql.Tx) error {
			var err error
			lastID, err = txs.InsertTx(ctx, tx, Transaction{
				UserID:     1,
				Amount:     dec(t, row.amount),
				CategoryID: row.cat,
				CreatedAt:  row.day,
			})
			return err
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	return txs, lastID
}

func TestListJoinedOrderAndFilters(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	txs, _ := seedEntries(t, db)

	newest, err := txs.ListJoined(ctx, 1, EntryFilters{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(newest) != 3 {
		t.Fatalf("got %d entries, want 3", len(newest))
	}
	if !newest[0].CreatedAt.After(newest[2].CreatedAt) {
		t.Errorf("default order is not newest first")
	}

	oldest, err := txs.ListJoined(ctx, 1, EntryFilters{Oldest: true})
	if err != nil {
		t.Fatalf("list oldest: %v", err)
	}
	if !oldest[0].Amount.Equal(dec(t, "1000")) {
		t.Errorf("oldest first entry amount = %s, want 1000", oldest[0].Amount)
	}

	expenses, err := txs.ListJoined(ctx, 1, EntryFilters{Type: CategoryExpense})
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(expenses) != 2 {
		t.Errorf("got %d expenses, want 2", len(expenses))
	}
}

func TestListJoinedDateRangeInclusive(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	txs, _ := seedEntries(t, db)

	got, err := txs.ListJoined(ctx, 1, EntryFilters{
		From: time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		To:   time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	// the To day is included even though its entry is mid-day
	if len(got) != 2 {
		t.Errorf("got %d entries in range, want 2", len(got))
	}
}

func TestLastNAndCount(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	txs, _ := seedEntries(t, db)

	last, err := txs.LastN(ctx, 1, 2)
	if err != nil {
		t.Fatalf("lastN: %v", err)
	}
	if len(last) != 2 || !last[0].Amount.Equal(dec(t, "60")) {
		t.Errorf("lastN = %+v, want newest two starting at 60", last)
	}

	n, err := txs.Count(ctx, 1, CategoryIncome)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("income count = %d, want 1", n)
	}
}

func TestSumByType(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	txs, _ := seedEntries(t, db)

	income, expense, err := txs.SumByType(ctx, 1,
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if !income.Equal(dec(t, "1000")) {
		t.Errorf("income = %s, want 1000", income)
	}
	if !expense.Equal(dec(t, "100")) {
		t.Errorf("expense = %s, want 100", expense)
	}
}

func TestDeleteTx(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	txs, lastID := seedEntries(t, db)

	err := database.WithTx(db, func(tx *sql.Tx) error {
		n, err := txs.DeleteTx(ctx, tx, lastID)
		if err != nil {
			return err
		}
		if n != 1 {
			t.Errorf("deleted %d rows, want 1", n)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := txs.GetJoined(ctx, lastID); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// ---- wishes ----

func TestWishUpdatePartial(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	wishes := NewWishRepo(db)

	if err := users.Ensure(ctx, 1); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	desc := "gaming"
	id, err := wishes.Add(ctx, Wish{
		UserID:       1,
		Title:        "Laptop",
		Description:  &desc,
		TargetAmount: dec(t, "1500"),
		CreatedAt:    database.Now(),
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	amount := dec(t, "1800")
	if err := wishes.Update(ctx, id, WishUpdate{TargetAmount: &amount}); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := wishes.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.TargetAmount.Equal(amount) {
		t.Errorf("target = %s, want 1800", got.TargetAmount)
	}
	if got.Title != "Laptop" || got.Description == nil || *got.Description != "gaming" {
		t.Errorf("unrelated fields changed: %+v", got)
	}

	// empty update is a no-op even for a missing id
	if err := wishes.Update(ctx, 999, WishUpdate{}); err != nil {
		t.Errorf("empty update: %v", err)
	}
	if err := wishes.Update(ctx, 999, WishUpdate{TargetAmount: &amount}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing id err = %v, want ErrNotFound", err)
	}
}

func TestWishListPagingAndSum(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	wishes := NewWishRepo(db)

	if err := users.Ensure(ctx, 1); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	for i, target := range []string{"100", "200", "300"} {
		_, err := wishes.Add(ctx, Wish{
			UserID:       1,
			Title:        string(rune('A' + i)),
			TargetAmount: dec(t, target),
			CreatedAt:    database.Now(),
		})
		if err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	page, err := wishes.List(ctx, 1, 2, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page) != 1 || page[0].Title != "C" {
		t.Errorf("page = %+v, want only C", page)
	}

	sum, err := wishes.SumTargets(ctx, 1)
	if err != nil {
		t.Fatalf("sum: %v", err)
	}
	if !sum.Equal(dec(t, "600")) {
		t.Errorf("sum = %s, want 600", sum)
	}
}

func TestWishGetByTitleFirstMatch(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	users := NewUserRepo(db)
	wishes := NewWishRepo(db)

	if err := users.Ensure(ctx, 1); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	first, err := wishes.Add(ctx, Wish{UserID: 1, Title: "Trip", TargetAmount: dec(t, "500"), CreatedAt: database.Now()})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := wishes.Add(ctx, Wish{UserID: 1, Title: "Trip", TargetAmount: dec(t, "900"), CreatedAt: database.Now()}); err != nil {
		t.Fatalf("add: %v", err)
	}

	got, err := wishes.GetByTitle(ctx, 1, "Trip")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != first {
		t.Errorf("got id %d, want first insert %d", got.ID, first)
	}

	if _, err := wishes.GetByTitle(ctx, 1, "Ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}
