package conversation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BeginReport starts the date-range report flow.
func (e *Engine) BeginReport(userID int64) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.begin(userID, StepReportStart)
	return reply("📅 Enter the start date in DD.MM.YYYY format\nExample: 01.05.2024", cancelKb())
}

func (e *Engine) handleReportStart(userID int64, st *state, text string) Result {
	date, err := parseDay(text)
	if err != nil {
		return reply("❌ Invalid date format! Use DD.MM.YYYY", cancelKb())
	}
	st.reportStart = date
	st.step = StepReportEnd
	return reply("📅 Enter the end date:", cancelKb())
}

func (e *Engine) handleReportEnd(userID int64, st *state, text string) Result {
	date, err := parseDay(text)
	if err != nil {
		return reply("❌ Invalid date format! Use DD.MM.YYYY", cancelKb())
	}
	from := st.reportStart
	e.clear(userID)
	return Result{Report: &ReportRequest{From: from, To: date}}
}

// Monthly is the report flow pre-bound to the current calendar month.
func (e *Engine) Monthly(now time.Time) Result {
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	return Result{Report: &ReportRequest{From: from, To: now}}
}

// Compare summarizes the previous and current months side by side.
func (e *Engine) Compare(ctx context.Context, userID int64, now time.Time) Result {
	curIncome, curExpense, err := e.ledger.MonthSummary(ctx, userID, now)
	if err != nil {
		return e.fail(userID, err)
	}
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	prevIncome, prevExpense, err := e.ledger.MonthSummary(ctx, userID, monthStart.AddDate(0, 0, -1))
	if err != nil {
		return e.fail(userID, err)
	}

	if curIncome.IsZero() && curExpense.IsZero() && prevIncome.IsZero() && prevExpense.IsZero() {
		return reply("No data for the current and previous months.", mainMenu())
	}

	text := "📊 Two-month comparison:" +
		e.monthBlock("Previous month", prevIncome, prevExpense) +
		e.monthBlock("Current month", curIncome, curExpense)
	return reply(text, mainMenu())
}

func (e *Engine) monthBlock(label string, income, expense decimal.Decimal) string {
	return "\n\n📅 " + label + ":" +
		"\n💰 Income: " + e.fmtMoney(income) +
		"\n📉 Expense: " + e.fmtMoney(expense) +
		"\n🏦 Balance: " + e.fmtMoney(income.Sub(expense))
}
