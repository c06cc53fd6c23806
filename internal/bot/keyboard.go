package bot

import (
	tele "gopkg.in/telebot.v3"

	"github.com/ovolkov/finbot/internal/conversation"
)

// mainRows is the persistent command keyboard, grouped the way the menu
// sections group commands.
var mainRows = [][]string{
	{"/balance", "/setbalance"},
	{"/categories"},
	{"/addcategory", "/deletecategory"},
	{"/add_income", "/add_expense"},
	{"/add_income_list", "/add_expense_list"},
	{"/add_wish", "/wishlist"},
	{"/add_wishes", "/delete_wish"},
	{"/edit_wish"},
	{"/report", "/monthly", "/compare"},
	{"/history"},
	{"/delete_transactions"},
	{"/help", "/menu"},
}

// renderKeyboard translates a transport-neutral keyboard descriptor into
// telebot markup.
func renderKeyboard(kb conversation.Keyboard) *tele.ReplyMarkup {
	switch kb.Kind {
	case conversation.KeyboardMain:
		return replyRows(mainRows, false)
	case conversation.KeyboardCancel:
		return replyRows([][]string{{conversation.CancelText}}, true)
	case conversation.KeyboardSkip:
		return replyRows([][]string{{conversation.SkipText}}, true)
	case conversation.KeyboardCategoryType:
		return replyRows([][]string{
			{conversation.IncomeLabel, conversation.ExpenseLabel},
			{conversation.CancelText},
		}, false)
	case conversation.KeyboardList:
		return replyRows(pairUp(append(append([]string(nil), kb.Items...), conversation.CancelText)), false)
	case conversation.KeyboardInline:
		rows := make([][]tele.InlineButton, 0, len(kb.Inline))
		for _, row := range kb.Inline {
			btns := make([]tele.InlineButton, 0, len(row))
			for _, b := range row {
				btns = append(btns, tele.InlineButton{Text: b.Text, Data: b.Data})
			}
			rows = append(rows, btns)
		}
		return &tele.ReplyMarkup{InlineKeyboard: rows}
	default:
		return nil
	}
}

func replyRows(rows [][]string, oneTime bool) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true, OneTimeKeyboard: oneTime}
	kb := make([][]tele.ReplyButton, 0, len(rows))
	for _, row := range rows {
		btns := make([]tele.ReplyButton, 0, len(row))
		for _, text := range row {
			btns = append(btns, tele.ReplyButton{Text: text})
		}
		kb = append(kb, btns)
	}
	markup.ReplyKeyboard = kb
	return markup
}

// pairUp lays items out two per row.
func pairUp(items []string) [][]string {
	var rows [][]string
	for i := 0; i < len(items); i += 2 {
		end := i + 2
		if end > len(items) {
			end = len(items)
		}
		rows = append(rows, items[i:end])
	}
	return rows
}
