package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ovolkov/finbot/internal/database/repository"
	"github.com/ovolkov/finbot/internal/money"
	"github.com/ovolkov/finbot/internal/report"
)

// BeginTransaction starts the single-transaction flow for the given kind.
func (e *Engine) BeginTransaction(userID int64, kind repository.CategoryType) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.begin(userID, StepTxAmount)
	st.kind = kind
	if kind == repository.CategoryIncome {
		return reply("💰 Enter the income amount:", cancelKb())
	}
	return reply("💸 Enter the expense amount:", cancelKb())
}

func (e *Engine) handleTxAmount(ctx context.Context, userID int64, st *state, text string) Result {
	amount, err := money.Parse(text)
	if err != nil {
		return reply("❌ Enter a valid amount!", cancelKb())
	}

	cats, err := e.ledger.Categories.List(ctx, userID, st.kind)
	if err != nil {
		return e.fail(userID, err)
	}
	if len(cats) == 0 {
		e.clear(userID)
		kindWord := "income"
		if st.kind == repository.CategoryExpense {
			kindWord = "expense"
		}
		return reply(fmt.Sprintf("❌ No %s categories! Create them first with /addcategory", kindWord), mainMenu())
	}

	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	st.amount = amount
	st.step = StepTxCategory
	return reply("📋 Select a category:", listKb(names))
}

func (e *Engine) handleTxCategory(ctx context.Context, userID int64, st *state, text string) Result {
	cat, err := e.ledger.Categories.GetByName(ctx, userID, text, st.kind)
	if errors.Is(err, repository.ErrNotFound) {
		e.clear(userID)
		return reply("❌ Category not found!", mainMenu())
	}
	if err != nil {
		return e.fail(userID, err)
	}

	st.categoryID = cat.ID
	st.categoryName = cat.Name
	st.step = StepTxDescription
	if st.kind == repository.CategoryIncome {
		return reply("📝 Where is the income from? (e.g. 'Project advance')\nYou can skip ➡️", skipKb())
	}
	return reply("📝 What was it spent on? (e.g. 'Lunch at a cafe')\nYou can skip ➡️", skipKb())
}

func (e *Engine) handleTxDescription(ctx context.Context, userID int64, st *state, text string) Result {
	var description *string
	if text != SkipText {
		description = &text
	}

	balance, err := e.ledger.Commit(ctx, userID, st.categoryID, st.amount, description, time.Time{})
	if err != nil {
		return e.fail(userID, err)
	}
	e.clear(userID)

	kindLine := "✅ Income added!\n💵 Amount: "
	if st.kind == repository.CategoryExpense {
		kindLine = "✅ Expense added!\n💸 Amount: "
	}
	text = kindLine + e.fmtMoney(st.amount) +
		"\n📂 Category: " + st.categoryName +
		"\n🏦 New balance: " + e.fmtMoney(balance)
	if description != nil {
		text += "\n📝 Description: " + *description
	}
	return reply(text, mainMenu())
}

// ---- bulk dated import ----

// BeginBulkTransactions starts the dated line-import flow.
func (e *Engine) BeginBulkTransactions(userID int64, kind repository.CategoryType) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := e.begin(userID, StepBulkTxDate)
	st.kind = kind
	return reply("📅 Enter the date in DD.MM.YYYY format:", cancelKb())
}

func (e *Engine) handleBulkTxDate(userID int64, st *state, text string) Result {
	date, err := parseDay(text)
	if err != nil {
		return reply("❌ Invalid date format! Example: 24.05.2025", cancelKb())
	}
	st.bulkDate = date
	st.step = StepBulkTxLines
	return reply(
		"📝 Enter the list in the format:\n"+
			"Category - Amount - Description\n"+
			"Description is optional. One entry per line.\n\n"+
			"Example:\n"+
			"Salary - 10000 - for May\n"+
			"Freelance - 5000",
		cancelKb())
}

func (e *Engine) handleBulkTxLines(ctx context.Context, userID int64, st *state, text string) Result {
	res, err := e.ledger.ImportTransactions(ctx, userID, st.kind, st.bulkDate, text)
	if err != nil {
		return e.fail(userID, err)
	}
	e.clear(userID)

	out := fmt.Sprintf("✅ Added: %d\n", res.Succeeded)
	if len(res.Errors) > 0 {
		var lines []string
		for _, le := range res.Errors {
			lines = append(lines, fmt.Sprintf("Line %d: %v", le.Line, le.Err))
		}
		out += "❌ Errors:\n" + strings.Join(lines, "\n")
	}
	return reply(out, mainMenu())
}

// ---- multi-select deletion ----

const (
	toggleDataPrefix  = "toggle:"
	confirmDeleteData = "confirm_delete"
)

// BeginMultiDelete shows the last ten transactions as toggle buttons.
func (e *Engine) BeginMultiDelete(ctx context.Context, userID int64) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	entries, err := e.ledger.Transactions.LastN(ctx, userID, 10)
	if err != nil {
		return e.fail(userID, err)
	}
	if len(entries) == 0 {
		return reply("❌ No transactions to delete.", mainMenu())
	}

	st := e.begin(userID, StepMultiDelete)
	st.selections = make(map[int64]bool, len(entries))

	var rows [][]InlineButton
	for i, entry := range entries {
		st.selections[entry.ID] = false
		icon := "💵"
		if entry.CategoryType == repository.CategoryExpense {
			icon = "💸"
		}
		label := fmt.Sprintf("%d. %s | %s %s - %s",
			i+1, entry.CreatedAt.Format(report.DayLayout), icon, entry.CategoryName, e.fmtMoney(entry.Amount))
		if entry.Description != nil {
			label += " | 📝 " + *entry.Description
		}
		rows = append(rows, []InlineButton{{Text: label, Data: fmt.Sprintf("%s%d", toggleDataPrefix, entry.ID)}})
	}
	rows = append(rows, []InlineButton{{Text: "✅ Delete selected", Data: confirmDeleteData}})

	return reply("🗑 Select transactions to delete:", inlineKb(rows))
}

// ToggleSelection flips one transaction's selected flag.
func (e *Engine) ToggleSelection(userID, txID int64) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.states[userID]
	if !ok || st.step != StepMultiDelete {
		return Result{Ack: "Selection expired", AckAlert: true}
	}
	if _, known := st.selections[txID]; !known {
		return Result{Ack: "Transaction not found", AckAlert: true}
	}
	st.selections[txID] = !st.selections[txID]
	return Result{Ack: "Selection updated"}
}

// ConfirmMultiDelete deletes every currently-selected transaction, reversing
// each one's balance effect, and reports how many actually went away.
func (e *Engine) ConfirmMultiDelete(ctx context.Context, userID int64) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.states[userID]
	if !ok || st.step != StepMultiDelete {
		return Result{Ack: "Selection expired", AckAlert: true}
	}

	any := false
	for _, selected := range st.selections {
		if selected {
			any = true
			break
		}
	}
	if !any {
		return Result{Ack: "❌ Nothing selected", AckAlert: true}
	}

	deleted, err := e.ledger.RemoveSelected(ctx, userID, st.selections)
	if err != nil {
		return e.fail(userID, err)
	}
	e.clear(userID)
	return Result{Messages: []Message{{
		Text: fmt.Sprintf("✅ Transactions deleted: %d", deleted),
		Edit: true,
	}}}
}
