package report

import (
	"encoding/csv"
	"io"

	"github.com/ovolkov/finbot/internal/database/repository"
)

// utf8BOM lets spreadsheet software detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// WriteCSV writes the flat row set: one row per transaction in original
// chronological order.
func (r *Report) WriteCSV(w io.Writer) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Date", "Type", "Category", "Amount", "Description"}); err != nil {
		return err
	}
	for _, e := range r.entries {
		label := "Income"
		if e.CategoryType == repository.CategoryExpense {
			label = "Expense"
		}
		desc := ""
		if e.Description != nil {
			desc = *e.Description
		}
		row := []string{
			e.CreatedAt.UTC().Format(DayLayout),
			label,
			e.CategoryName,
			e.Amount.StringFixed(2),
			desc,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
