package conversation

import "time"

// Sentinel inputs. The cancel sentinel is honored at the start of every
// in-flow handler, before any field parsing.
const (
	CancelText = "❌ Cancel"
	SkipText   = "⏭ Skip"
)

// Category-type choice buttons, shared with the transport adapter.
const (
	IncomeLabel  = "Income"
	ExpenseLabel = "Expense"
)

// KeyboardKind selects which selectable-options descriptor a message carries.
// Rendering a descriptor into transport markup is the adapter's concern.
type KeyboardKind int

const (
	KeyboardNone KeyboardKind = iota
	KeyboardMain
	KeyboardCancel
	KeyboardSkip
	KeyboardList // Items plus a trailing cancel button
	KeyboardCategoryType
	KeyboardInline
)

// InlineButton is one callback button.
type InlineButton struct {
	Text string
	Data string
}

// Keyboard describes the options offered with a message.
type Keyboard struct {
	Kind   KeyboardKind
	Items  []string
	Inline [][]InlineButton
}

// Message is one transport-neutral reply.
type Message struct {
	Text     string
	Keyboard Keyboard
	// Edit asks the adapter to replace the message the callback came from
	// instead of sending a new one.
	Edit bool
}

// ReportRequest is emitted by the terminal report step; the adapter runs the
// aggregation and delivers the artifacts.
type ReportRequest struct {
	From time.Time
	To   time.Time
}

// Result is everything one inbound event produced.
type Result struct {
	Messages []Message
	Report   *ReportRequest
	// Ack is a short callback answer; AckAlert makes it a popup.
	Ack      string
	AckAlert bool
}

func reply(text string, kb Keyboard) Result {
	return Result{Messages: []Message{{Text: text, Keyboard: kb}}}
}

func mainMenu() Keyboard { return Keyboard{Kind: KeyboardMain} }
func cancelKb() Keyboard { return Keyboard{Kind: KeyboardCancel} }
func skipKb() Keyboard   { return Keyboard{Kind: KeyboardSkip} }
func listKb(items []string) Keyboard {
	return Keyboard{Kind: KeyboardList, Items: items}
}
func inlineKb(rows [][]InlineButton) Keyboard {
	return Keyboard{Kind: KeyboardInline, Inline: rows}
}
