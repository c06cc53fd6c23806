package conversation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/ovolkov/finbot/internal/database"
	"github.com/ovolkov/finbot/internal/database/repository"
)

func TestStartListsCommands(t *testing.T) {
	e, svc := testEngine(t)
	ctx := context.Background()

	// a brand-new sender gets a row on /start
	res := e.Start(ctx, 42)
	got := text(t, res)
	for _, cmd := range []string{"/setbalance", "/add_expense_list", "/wishlist", "/history"} {
		if !strings.Contains(got, cmd) {
			t.Errorf("help missing %s", cmd)
		}
	}
	if res.Messages[0].Keyboard.Kind != KeyboardMain {
		t.Error("start should attach the main keyboard")
	}

	if _, err := svc.Users.Balance(ctx, 42); err != nil {
		t.Errorf("user 42 not created: %v", err)
	}
}

func TestShowBalance(t *testing.T) {
	e, svc := testEngine(t)
	ctx := context.Background()

	if err := svc.Users.SetBalance(ctx, 1, dec(t, "1234.5")); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	res := e.ShowBalance(ctx, 1)
	if got := text(t, res); got != "🏦 Current balance: 1 234,50 $" {
		t.Errorf("reply = %q", got)
	}

	// unknown users read as zero, not as an error
	res = e.ShowBalance(ctx, 404)
	if got := text(t, res); got != "🏦 Current balance: 0,00 $" {
		t.Errorf("reply = %q", got)
	}
}

func TestShowCategoriesGroupsByType(t *testing.T) {
	e, svc := testEngine(t)
	ctx := context.Background()

	res := e.ShowCategories(ctx, 1)
	if got := text(t, res); got != "❌ You have no categories yet!" {
		t.Errorf("empty reply = %q", got)
	}

	for _, c := range []struct {
		name string
		typ  repository.CategoryType
	}{
		{"Salary", repository.CategoryIncome},
		{"Food", repository.CategoryExpense},
	} {
		if _, err := svc.Categories.Add(ctx, 1, c.name, c.typ); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	got := text(t, e.ShowCategories(ctx, 1))
	if !strings.Contains(got, "Income:\n- Salary") || !strings.Contains(got, "Expense:\n- Food") {
		t.Errorf("grouping wrong:\n%s", got)
	}
}

func TestWishlistProgress(t *testing.T) {
	e, svc := testEngine(t)
	ctx := context.Background()

	if err := svc.Users.SetBalance(ctx, 1, dec(t, "50")); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	if _, err := svc.Wishes.Add(ctx, repository.Wish{
		UserID:       1,
		Title:        "Laptop",
		TargetAmount: dec(t, "200"),
		CreatedAt:    database.Now(),
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	got := text(t, e.Wishlist(ctx, 1, 1, false))
	for _, want := range []string{
		"📋 Wishlist (page 1/1):",
		"💰 Total of all goals: 200,00 $",
		"🎯 Laptop",
		"Progress: 25% 🟩🟩⬜️⬜️⬜️⬜️⬜️⬜️⬜️⬜️",
		"Remaining: 150,00 $",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("wishlist missing %q:\n%s", want, got)
		}
	}
}

func TestWishlistProgressCapsAtTarget(t *testing.T) {
	e, svc := testEngine(t)
	ctx := context.Background()

	if err := svc.Users.SetBalance(ctx, 1, dec(t, "500")); err != nil {
		t.Fatalf("set balance: %v", err)
	}
	if _, err := svc.Wishes.Add(ctx, repository.Wish{
		UserID:       1,
		Title:        "Phone",
		TargetAmount: dec(t, "200"),
		CreatedAt:    database.Now(),
	}); err != nil {
		t.Fatalf("add: %v", err)
	}

	got := text(t, e.Wishlist(ctx, 1, 1, false))
	if !strings.Contains(got, "Progress: 100% "+strings.Repeat("🟩", 10)) {
		t.Errorf("over-funded wish not capped:\n%s", got)
	}
	if !strings.Contains(got, "Remaining: 0,00 $") {
		t.Errorf("remaining should floor at zero:\n%s", got)
	}
}

func TestWishlistPagination(t *testing.T) {
	e, svc := testEngine(t)
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		if _, err := svc.Wishes.Add(ctx, repository.Wish{
			UserID:       1,
			Title:        fmt.Sprintf("Wish %d", i+1),
			TargetAmount: dec(t, "100"),
			CreatedAt:    database.Now(),
		}); err != nil {
			t.Fatalf("add: %v", err)
		}
	}

	// page size is 5 in testEngine
	res := e.Wishlist(ctx, 1, 1, false)
	got := text(t, res)
	if !strings.Contains(got, "(page 1/2)") {
		t.Errorf("header = %s", got)
	}
	kb := res.Messages[0].Keyboard
	if kb.Kind != KeyboardInline || len(kb.Inline) != 1 || kb.Inline[0][0].Data != "wishlist_page_2" {
		t.Errorf("page 1 nav = %+v, want only next", kb)
	}

	// page totals only show on page 1
	res = e.HandleCallback(ctx, 1, "wishlist_page_2")
	got = text(t, res)
	if strings.Contains(got, "Total of all goals") {
		t.Error("goal total leaked onto page 2")
	}
	if !strings.Contains(got, "Wish 6") || !strings.Contains(got, "Wish 7") {
		t.Errorf("page 2 content wrong:\n%s", got)
	}
	if !res.Messages[0].Edit {
		t.Error("pagination should edit in place")
	}

	// out-of-range pages clamp instead of erroring
	got = text(t, e.Wishlist(ctx, 1, 99, false))
	if !strings.Contains(got, "(page 2/2)") {
		t.Errorf("clamped header = %s", got)
	}
}

func TestWishlistEmpty(t *testing.T) {
	e, _ := testEngine(t)

	got := text(t, e.Wishlist(context.Background(), 1, 1, false))
	if got != "The wishlist is empty 🌈" {
		t.Errorf("reply = %q", got)
	}
}

func TestHistoryFiltersAndPage(t *testing.T) {
	e, svc := testEngine(t)
	ctx := context.Background()

	res := e.HistoryFilters()
	kb := res.Messages[0].Keyboard
	if kb.Kind != KeyboardInline || len(kb.Inline[0]) != 3 {
		t.Fatalf("filter keyboard = %+v", kb)
	}
	if kb.Inline[0][1].Data != "history_filter_income_1" {
		t.Errorf("income filter data = %q", kb.Inline[0][1].Data)
	}

	salary, err := svc.Categories.Add(ctx, 1, "Salary", repository.CategoryIncome)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	food, err := svc.Categories.Add(ctx, 1, "Food", repository.CategoryExpense)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := svc.Commit(ctx, 1, salary.ID, dec(t, "1000"), nil, database.Now()); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := svc.Commit(ctx, 1, food.ID, dec(t, "250"), nil, database.Now()); err != nil {
		t.Fatalf("commit: %v", err)
	}

	got := text(t, e.HandleCallback(ctx, 1, "history_filter_all_1"))
	for _, want := range []string{
		"(page 1/1)",
		"Salary",
		"Food",
		"Total income",
		"1 000,00 $",
		"250,00 $",
		"750,00 $",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("history missing %q:\n%s", want, got)
		}
	}

	got = text(t, e.HandleCallback(ctx, 1, "history_filter_income_1"))
	if strings.Contains(got, "Food") {
		t.Errorf("income filter leaked expenses:\n%s", got)
	}

	got = text(t, e.HistoryPage(ctx, 1, "expense", 1, false))
	if strings.Contains(got, "Salary") {
		t.Errorf("expense filter leaked income:\n%s", got)
	}
}

func TestHistoryEmpty(t *testing.T) {
	e, _ := testEngine(t)

	got := text(t, e.HistoryPage(context.Background(), 1, "all", 1, false))
	if got != "📭 No transactions." {
		t.Errorf("reply = %q", got)
	}
}

func TestMenuSections(t *testing.T) {
	e, _ := testEngine(t)

	res := e.Menu()
	kb := res.Messages[0].Keyboard
	if kb.Kind != KeyboardInline || len(kb.Inline) != 7 {
		t.Fatalf("menu keyboard = %+v", kb)
	}

	res = e.HandleCallback(context.Background(), 1, "menu_reports")
	got := text(t, res)
	for _, want := range []string{"/report", "/monthly", "/compare"} {
		if !strings.Contains(got, want) {
			t.Errorf("reports section missing %s:\n%s", want, got)
		}
	}
	if !res.Messages[0].Edit {
		t.Error("section should replace the picker message")
	}
}

func TestHandleCallbackIgnoresGarbage(t *testing.T) {
	e, _ := testEngine(t)
	ctx := context.Background()

	for _, data := range []string{"", "bogus", "toggle:abc", "wishlist_page_x", "history_page_all"} {
		res := e.HandleCallback(ctx, 1, data)
		if len(res.Messages) != 0 || res.Ack != "" {
			t.Errorf("data %q produced output: %+v", data, res)
		}
	}
}
