// Package report turns a date-bounded transaction set into grouped text
// reports, chart series and exportable documents.
package report

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ovolkov/finbot/internal/database/repository"
	"github.com/ovolkov/finbot/internal/money"
)

// ErrNoOperations marks an empty result set; it is a distinct outcome, not an
// empty report.
var ErrNoOperations = errors.New("no operations found for the period")

// DayLayout is the user-facing date format throughout the bot.
const DayLayout = "02.01.2006"

const monthLayout = "Jan 2006"

// ChunkSize is how many report lines go into one chat message.
const ChunkSize = 10

// DayGroup is one calendar day's transactions in original chronological order.
type DayGroup struct {
	Date    time.Time
	Label   string
	Entries []repository.Entry
}

// Report is the aggregation of one user's transactions over a period.
type Report struct {
	From, To     time.Time
	Currency     string
	Days         []DayGroup
	TotalIncome  decimal.Decimal
	TotalExpense decimal.Decimal

	entries []repository.Entry // original chronological order
}

// Build groups entries (already ordered by creation time) by calendar day and
// accumulates the period totals. Days are sorted by actual date, not label.
func Build(entries []repository.Entry, from, to time.Time, currency string) (*Report, error) {
	if len(entries) == 0 {
		return nil, ErrNoOperations
	}

	r := &Report{
		From:         from,
		To:           to,
		Currency:     currency,
		TotalIncome:  decimal.Zero,
		TotalExpense: decimal.Zero,
		entries:      entries,
	}

	byDay := make(map[time.Time]*DayGroup)
	for _, e := range entries {
		day := dayOf(e.CreatedAt)
		g, ok := byDay[day]
		if !ok {
			g = &DayGroup{Date: day, Label: day.Format(DayLayout)}
			byDay[day] = g
		}
		g.Entries = append(g.Entries, e)

		if e.CategoryType == repository.CategoryIncome {
			r.TotalIncome = r.TotalIncome.Add(e.Amount)
		} else {
			r.TotalExpense = r.TotalExpense.Add(e.Amount)
		}
	}

	for _, g := range byDay {
		r.Days = append(r.Days, *g)
	}
	sort.Slice(r.Days, func(i, j int) bool { return r.Days[i].Date.Before(r.Days[j].Date) })
	return r, nil
}

// Net is total income minus total expense.
func (r *Report) Net() decimal.Decimal {
	return r.TotalIncome.Sub(r.TotalExpense)
}

// Lines renders the chronological grouped text report.
func (r *Report) Lines() []string {
	lines := []string{fmt.Sprintf("Report %s — %s:", r.From.Format(DayLayout), r.To.Format(DayLayout))}
	for _, day := range r.Days {
		lines = append(lines, "", day.Label)
		for _, e := range day.Entries {
			lines = append(lines, FormatEntry(e, r.Currency))
		}
	}
	lines = append(lines, "", "Totals:")
	lines = append(lines,
		fmt.Sprintf("%-15s: %s %s", "Total income", money.Format(r.TotalIncome), r.Currency),
		fmt.Sprintf("%-15s: %s %s", "Total expense", money.Format(r.TotalExpense), r.Currency),
		fmt.Sprintf("%-15s: %s %s", "Balance", money.Format(r.Net()), r.Currency),
	)
	return lines
}

// FormatEntry renders one transaction line for reports and history.
func FormatEntry(e repository.Entry, currency string) string {
	label := "Income"
	if e.CategoryType == repository.CategoryExpense {
		label = "Expense"
	}
	return fmt.Sprintf("  %-7s | %-20s | %s %s", label, e.CategoryName, money.Format(e.Amount), currency)
}

// Chunks splits lines into fixed-size groups for transports with message-size
// limits.
func Chunks(lines []string, size int) [][]string {
	if size <= 0 {
		return [][]string{lines}
	}
	var out [][]string
	for start := 0; start < len(lines); start += size {
		end := start + size
		if end > len(lines) {
			end = len(lines)
		}
		out = append(out, lines[start:end])
	}
	return out
}

// Series is a labeled numeric series for charting.
type Series struct {
	Labels []string
	Values []float64
}

// PairSeries carries matched income and expense values per label.
type PairSeries struct {
	Labels  []string
	Income  []float64
	Expense []float64
}

// DailySeries carries per-day income, expense and net.
type DailySeries struct {
	Labels  []string
	Income  []float64
	Expense []float64
	Net     []float64
}

// Summary returns the period totals as one three-bar series.
func (r *Report) Summary() Series {
	return Series{
		Labels: []string{"Income", "Expense", "Balance"},
		Values: []float64{
			r.TotalIncome.InexactFloat64(),
			r.TotalExpense.InexactFloat64(),
			r.Net().InexactFloat64(),
		},
	}
}

// Monthly re-keys the transactions into month buckets in chronological order.
func (r *Report) Monthly() PairSeries {
	type bucket struct {
		income  decimal.Decimal
		expense decimal.Decimal
	}
	byMonth := make(map[time.Time]*bucket)
	var months []time.Time
	for _, e := range r.entries {
		m := monthOf(e.CreatedAt)
		b, ok := byMonth[m]
		if !ok {
			b = &bucket{income: decimal.Zero, expense: decimal.Zero}
			byMonth[m] = b
			months = append(months, m)
		}
		if e.CategoryType == repository.CategoryIncome {
			b.income = b.income.Add(e.Amount)
		} else {
			b.expense = b.expense.Add(e.Amount)
		}
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	var s PairSeries
	for _, m := range months {
		b := byMonth[m]
		s.Labels = append(s.Labels, m.Format(monthLayout))
		s.Income = append(s.Income, b.income.InexactFloat64())
		s.Expense = append(s.Expense, b.expense.InexactFloat64())
	}
	return s
}

// CumulativeMonthly is the running net total across months.
func (r *Report) CumulativeMonthly() Series {
	monthly := r.Monthly()
	s := Series{Labels: monthly.Labels}
	running := 0.0
	for i := range monthly.Labels {
		running += monthly.Income[i] - monthly.Expense[i]
		s.Values = append(s.Values, running)
	}
	return s
}

// Daily returns per-day income, expense and net in chronological order.
func (r *Report) Daily() DailySeries {
	var s DailySeries
	for _, day := range r.Days {
		income, expense := decimal.Zero, decimal.Zero
		for _, e := range day.Entries {
			if e.CategoryType == repository.CategoryIncome {
				income = income.Add(e.Amount)
			} else {
				expense = expense.Add(e.Amount)
			}
		}
		s.Labels = append(s.Labels, day.Label)
		s.Income = append(s.Income, income.InexactFloat64())
		s.Expense = append(s.Expense, expense.InexactFloat64())
		s.Net = append(s.Net, income.Sub(expense).InexactFloat64())
	}
	return s
}

// CumulativeDaily is the running net total across days.
func (r *Report) CumulativeDaily() Series {
	daily := r.Daily()
	s := Series{Labels: daily.Labels}
	running := 0.0
	for i := range daily.Labels {
		running += daily.Net[i]
		s.Values = append(s.Values, running)
	}
	return s
}

func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func monthOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
