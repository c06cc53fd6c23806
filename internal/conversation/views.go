package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ovolkov/finbot/internal/database/repository"
	"github.com/ovolkov/finbot/internal/pagination"
	"github.com/ovolkov/finbot/internal/report"
)

const helpText = "💰 Finance manager\n\n" +
	"Commands:\n" +
	"/setbalance - set the balance\n" +
	"/balance - current balance\n" +
	"/addcategory - add a category\n" +
	"/deletecategory - delete a category\n" +
	"/categories - my categories\n" +
	"/add_income - add income\n" +
	"/add_income_list - bulk add income\n" +
	"/add_expense - add an expense\n" +
	"/add_expense_list - bulk add expenses\n" +
	"/delete_transactions - delete transactions\n" +
	"/report - report for a period\n" +
	"/monthly - report for the current month\n" +
	"/compare - compare two months\n" +
	"/add_wish - add a wish\n" +
	"/add_wishes - bulk add wishes\n" +
	"/wishlist - show the wishlist\n" +
	"/delete_wish - delete a wish\n" +
	"/edit_wish - edit a wish\n" +
	"/history - transaction history\n" +
	"/help - this help\n" +
	"/menu - show the menu"

// Start upserts the user and shows the command list.
func (e *Engine) Start(ctx context.Context, userID int64) Result {
	if err := e.ledger.Users.Ensure(ctx, userID); err != nil {
		e.log.Error().Err(err).Int64("user", userID).Msg("ensure user")
		return reply("❌ Something went wrong, try again.", mainMenu())
	}
	return reply(helpText, mainMenu())
}

// ShowBalance is the one-shot /balance view.
func (e *Engine) ShowBalance(ctx context.Context, userID int64) Result {
	balance, err := e.ledger.Users.Balance(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		balance = decimal.Zero
	} else if err != nil {
		e.log.Error().Err(err).Int64("user", userID).Msg("balance")
		return reply("❌ Something went wrong, try again.", mainMenu())
	}
	return reply("🏦 Current balance: "+e.fmtMoney(balance), mainMenu())
}

// ShowCategories lists the user's categories grouped by type.
func (e *Engine) ShowCategories(ctx context.Context, userID int64) Result {
	incomes, err := e.ledger.Categories.List(ctx, userID, repository.CategoryIncome)
	if err != nil {
		return e.failView(userID, err)
	}
	expenses, err := e.ledger.Categories.List(ctx, userID, repository.CategoryExpense)
	if err != nil {
		return e.failView(userID, err)
	}
	if len(incomes) == 0 && len(expenses) == 0 {
		return reply("❌ You have no categories yet!", mainMenu())
	}

	var b strings.Builder
	b.WriteString("📂 Your categories:\n")
	if len(incomes) > 0 {
		b.WriteString("Income:\n")
		for _, c := range incomes {
			b.WriteString("- " + c.Name + "\n")
		}
	}
	if len(expenses) > 0 {
		if len(incomes) > 0 {
			b.WriteString("---------------\n")
		}
		b.WriteString("Expense:\n")
		for _, c := range expenses {
			b.WriteString("- " + c.Name + "\n")
		}
	}
	return reply(strings.TrimRight(b.String(), "\n"), mainMenu())
}

// ---- wishlist ----

// WishlistPagePrefix identifies a wishlist pagination callback.
const WishlistPagePrefix = "wishlist_page_"

// Wishlist renders one page of savings goals with progress against the
// current balance. Out-of-range pages are clamped.
func (e *Engine) Wishlist(ctx context.Context, userID int64, page int, edit bool) Result {
	balance, err := e.ledger.Users.Balance(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		balance = decimal.Zero
	} else if err != nil {
		return e.failView(userID, err)
	}

	total, err := e.ledger.Wishes.Count(ctx, userID)
	if err != nil {
		return e.failView(userID, err)
	}
	if total == 0 {
		return reply("The wishlist is empty 🌈", mainMenu())
	}

	_, totalPages := pagination.Paginate(total, e.wishlistPageSize, page)
	page = pagination.Clamp(page, totalPages)
	offset, _ := pagination.Paginate(total, e.wishlistPageSize, page)

	wishes, err := e.ledger.Wishes.List(ctx, userID, e.wishlistPageSize, offset)
	if err != nil {
		return e.failView(userID, err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📋 Wishlist (page %d/%d):\n\n", page, totalPages)
	if page == 1 {
		sum, err := e.ledger.Wishes.SumTargets(ctx, userID)
		if err != nil {
			return e.failView(userID, err)
		}
		fmt.Fprintf(&b, "💰 Total of all goals: %s\n\n", e.fmtMoney(sum))
	}
	for _, w := range wishes {
		b.WriteString(e.wishProgress(w, balance))
	}

	var nav []InlineButton
	if page > 1 {
		nav = append(nav, InlineButton{Text: "⬅️ Back", Data: fmt.Sprintf("%s%d", WishlistPagePrefix, page-1)})
	}
	if page < totalPages {
		nav = append(nav, InlineButton{Text: "Next ➡️", Data: fmt.Sprintf("%s%d", WishlistPagePrefix, page+1)})
	}
	kb := Keyboard{}
	if len(nav) > 0 {
		kb = inlineKb([][]InlineButton{nav})
	}
	return Result{Messages: []Message{{Text: strings.TrimRight(b.String(), "\n"), Keyboard: kb, Edit: edit}}}
}

func (e *Engine) wishProgress(w repository.Wish, balance decimal.Decimal) string {
	progress := decimal.Zero
	if w.TargetAmount.IsPositive() {
		progress = balance.Div(w.TargetAmount)
		if progress.GreaterThan(decimal.NewFromInt(1)) {
			progress = decimal.NewFromInt(1)
		}
		if progress.IsNegative() {
			progress = decimal.Zero
		}
	}
	percent := progress.Mul(decimal.NewFromInt(100)).IntPart()
	filled := int(progress.Mul(decimal.NewFromInt(10)).IntPart())
	bar := strings.Repeat("🟩", filled) + strings.Repeat("⬜️", 10-filled)

	remaining := w.TargetAmount.Sub(balance)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	return fmt.Sprintf("🎯 %s\nGoal: %s\nProgress: %d%% %s\nRemaining: %s\n\n",
		w.Title, e.fmtMoney(w.TargetAmount), percent, bar, e.fmtMoney(remaining))
}

// ---- history ----

// History callback data prefixes: filter choice and page navigation.
const (
	HistoryFilterPrefix = "history_filter_"
	HistoryPagePrefix   = "history_page_"
)

// HistoryFilters shows the type-filter choice.
func (e *Engine) HistoryFilters() Result {
	row := []InlineButton{
		{Text: "📥 All", Data: HistoryFilterPrefix + "all_1"},
		{Text: "➕ Income", Data: HistoryFilterPrefix + "income_1"},
		{Text: "➖ Expense", Data: HistoryFilterPrefix + "expense_1"},
	}
	return reply("Select which transactions to view:", inlineKb([][]InlineButton{row}))
}

// HistoryPage renders one page of the chronological transaction list, grouped
// by day (newest day first) with per-page totals.
func (e *Engine) HistoryPage(ctx context.Context, userID int64, filter string, page int, edit bool) Result {
	var typ repository.CategoryType
	switch filter {
	case "income":
		typ = repository.CategoryIncome
	case "expense":
		typ = repository.CategoryExpense
	default:
		filter = "all"
	}

	total, err := e.ledger.Transactions.Count(ctx, userID, typ)
	if err != nil {
		return e.failView(userID, err)
	}
	_, totalPages := pagination.Paginate(total, e.historyPageSize, page)
	page = pagination.Clamp(page, totalPages)
	offset, _ := pagination.Paginate(total, e.historyPageSize, page)

	entries, err := e.ledger.Transactions.ListJoined(ctx, userID, repository.EntryFilters{
		Type:   typ,
		Limit:  e.historyPageSize,
		Offset: offset,
	})
	if err != nil {
		return e.failView(userID, err)
	}
	if len(entries) == 0 {
		return reply("📭 No transactions.", mainMenu())
	}

	type dayGroup struct {
		label   string
		entries []repository.Entry
	}
	var days []*dayGroup
	byLabel := make(map[string]*dayGroup)
	totalIncome, totalExpense := decimal.Zero, decimal.Zero
	for _, entry := range entries {
		label := entry.CreatedAt.UTC().Format(report.DayLayout)
		g, ok := byLabel[label]
		if !ok {
			g = &dayGroup{label: label}
			byLabel[label] = g
			days = append(days, g)
		}
		g.entries = append(g.entries, entry)
		if entry.CategoryType == repository.CategoryIncome {
			totalIncome = totalIncome.Add(entry.Amount)
		} else {
			totalExpense = totalExpense.Add(entry.Amount)
		}
	}
	// entries arrive newest first, so first-seen day order is already newest first
	lines := []string{fmt.Sprintf("📞 Transaction history (page %d/%d) — filter: %s\n", page, totalPages, filter)}
	for _, day := range days {
		lines = append(lines, "", day.label)
		for _, entry := range day.entries {
			lines = append(lines, report.FormatEntry(entry, e.currency))
			if entry.Description != nil {
				lines = append(lines, "    📝 "+*entry.Description)
			}
		}
	}
	lines = append(lines, "", "Page totals:",
		fmt.Sprintf("%-15s: %s", "Total income", e.fmtMoney(totalIncome)),
		fmt.Sprintf("%-15s: %s", "Total expense", e.fmtMoney(totalExpense)),
		fmt.Sprintf("%-15s: %s", "Balance", e.fmtMoney(totalIncome.Sub(totalExpense))),
	)

	var nav []InlineButton
	if page > 1 {
		nav = append(nav, InlineButton{Text: "⬅️ Back", Data: fmt.Sprintf("%s%s_%d", HistoryPagePrefix, filter, page-1)})
	}
	if page < totalPages {
		nav = append(nav, InlineButton{Text: "Next ➡️", Data: fmt.Sprintf("%s%s_%d", HistoryPagePrefix, filter, page+1)})
	}
	kb := Keyboard{}
	if len(nav) > 0 {
		kb = inlineKb([][]InlineButton{nav})
	}
	return Result{Messages: []Message{{Text: strings.Join(lines, "\n"), Keyboard: kb, Edit: edit}}}
}

// ---- menu ----

const MenuPrefix = "menu_"

var menuSections = map[string][]string{
	"balance": {
		"/balance – current balance",
		"/setbalance – set the balance",
	},
	"categories": {
		"/categories – all categories",
		"/addcategory – add a category",
		"/deletecategory – delete a category",
	},
	"money": {
		"/add_income – add income",
		"/add_expense – add an expense",
		"/add_income_list – bulk add income",
		"/add_expense_list – bulk add expenses",
	},
	"wishlist": {
		"/add_wish – add a wish",
		"/add_wishes – bulk add",
		"/wishlist – show the list",
		"/delete_wish – delete a wish",
		"/edit_wish – edit a wish",
	},
	"reports": {
		"/report – for a period",
		"/monthly – for the current month",
		"/compare – compare two months",
	},
	"delete": {
		"/delete_transactions – delete transactions",
	},
	"help": {
		"/help – help on all commands",
	},
}

// Menu shows the command-category picker.
func (e *Engine) Menu() Result {
	rows := [][]InlineButton{
		{{Text: "💰 Balance", Data: MenuPrefix + "balance"}},
		{{Text: "📂 Categories", Data: MenuPrefix + "categories"}},
		{{Text: "💵 Income and expenses", Data: MenuPrefix + "money"}},
		{{Text: "🎯 Wishlist", Data: MenuPrefix + "wishlist"}},
		{{Text: "📊 Reports", Data: MenuPrefix + "reports"}},
		{{Text: "🧹 Deletion", Data: MenuPrefix + "delete"}},
		{{Text: "ℹ️ Help", Data: MenuPrefix + "help"}},
	}
	return reply("📋 Main menu:", inlineKb(rows))
}

// MenuSection expands one picker section in place.
func (e *Engine) MenuSection(section string) Result {
	return Result{Messages: []Message{{
		Text: "📎 Commands:\n" + strings.Join(menuSections[section], "\n"),
		Edit: true,
	}}}
}
