// Package conversation drives every multi-turn interaction as an explicit
// per-user state machine. Intermediate steps only write scratch state; the
// terminal step of each flow is the only place the ledger is mutated.
package conversation

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/ovolkov/finbot/internal/database/repository"
	"github.com/ovolkov/finbot/internal/ledger"
	"github.com/ovolkov/finbot/internal/money"
)

// Engine holds every user's conversation state and routes their input.
type Engine struct {
	ledger           *ledger.Service
	currency         string
	wishlistPageSize int
	historyPageSize  int
	log              zerolog.Logger

	mu     sync.Mutex
	states map[int64]*state
}

func NewEngine(svc *ledger.Service, currency string, wishlistPageSize, historyPageSize int, log zerolog.Logger) *Engine {
	return &Engine{
		ledger:           svc,
		currency:         currency,
		wishlistPageSize: wishlistPageSize,
		historyPageSize:  historyPageSize,
		log:              log,
		states:           make(map[int64]*state),
	}
}

// Step reports the user's current step. Mostly for tests.
func (e *Engine) Step(userID int64) Step {
	e.mu.Lock()
	defer e.mu.Unlock()
	if st, ok := e.states[userID]; ok {
		return st.step
	}
	return StepIdle
}

// HandleText routes a non-command message into the user's active flow. Idle
// users get an empty result. The cancel sentinel is checked before anything
// else and always returns the user to idle without touching storage.
func (e *Engine) HandleText(ctx context.Context, userID int64, text string) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.states[userID]
	if !ok || st.step == StepIdle {
		return Result{}
	}
	if text == CancelText {
		delete(e.states, userID)
		return reply("Cancelled", mainMenu())
	}

	switch st.step {
	case StepBalanceValue:
		return e.handleBalanceValue(ctx, userID, text)
	case StepCategoryType:
		return e.handleCategoryType(userID, st, text)
	case StepCategoryName:
		return e.handleCategoryName(ctx, userID, st, text)
	case StepCategoryDelete:
		return e.handleCategoryDelete(ctx, userID, text)
	case StepTxAmount:
		return e.handleTxAmount(ctx, userID, st, text)
	case StepTxCategory:
		return e.handleTxCategory(ctx, userID, st, text)
	case StepTxDescription:
		return e.handleTxDescription(ctx, userID, st, text)
	case StepBulkTxDate:
		return e.handleBulkTxDate(userID, st, text)
	case StepBulkTxLines:
		return e.handleBulkTxLines(ctx, userID, st, text)
	case StepWishTitle:
		return e.handleWishTitle(userID, st, text)
	case StepWishDescription:
		return e.handleWishDescription(userID, st, text)
	case StepWishAmount:
		return e.handleWishAmount(ctx, userID, st, text)
	case StepWishDelete:
		return e.handleWishDelete(ctx, userID, text)
	case StepBulkWishLines:
		return e.handleBulkWishLines(ctx, userID, text)
	case StepWishEditSelect:
		return e.handleWishEditSelect(ctx, userID, st, text)
	case StepWishEditField:
		return e.handleWishEditField(userID, st, text)
	case StepWishEditValue:
		return e.handleWishEditValue(ctx, userID, st, text)
	case StepReportStart:
		return e.handleReportStart(userID, st, text)
	case StepReportEnd:
		return e.handleReportEnd(userID, st, text)
	case StepMultiDelete:
		// toggles arrive as callbacks, free text is ignored
		return Result{}
	}
	return Result{}
}

// begin replaces the user's state with a fresh one at step. Callers hold the lock.
func (e *Engine) begin(userID int64, step Step) *state {
	st := &state{step: step}
	e.states[userID] = st
	return st
}

func (e *Engine) clear(userID int64) {
	delete(e.states, userID)
}

// fail clears the flow and reports a generic error; the user is never left in
// a broken state. Callers hold the lock.
func (e *Engine) fail(userID int64, err error) Result {
	e.log.Error().Err(err).Int64("user", userID).Msg("flow failed")
	e.clear(userID)
	return reply("❌ Something went wrong, try again.", mainMenu())
}

// failView is fail for one-shot views, which hold no lock and no flow state.
func (e *Engine) failView(userID int64, err error) Result {
	e.log.Error().Err(err).Int64("user", userID).Msg("view failed")
	return reply("❌ Something went wrong, try again.", mainMenu())
}

func (e *Engine) fmtMoney(d decimal.Decimal) string {
	return money.Format(d) + " " + e.currency
}

func parseDay(s string) (time.Time, error) {
	return time.Parse("02.01.2006", strings.TrimSpace(s))
}

// ---- set balance ----

func (e *Engine) BeginSetBalance(userID int64) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.begin(userID, StepBalanceValue)
	return reply("Enter your current balance:", cancelKb())
}

func (e *Engine) handleBalanceValue(ctx context.Context, userID int64, text string) Result {
	v, err := decimal.NewFromString(strings.ReplaceAll(strings.TrimSpace(text), ",", "."))
	if err != nil {
		return reply("❌ Enter a number!", cancelKb())
	}
	if err := e.ledger.Users.SetBalance(ctx, userID, v); err != nil {
		return e.fail(userID, err)
	}
	e.clear(userID)
	return reply("✅ Balance set: "+e.fmtMoney(v), mainMenu())
}

// ---- categories ----

func (e *Engine) BeginAddCategory(userID int64) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.begin(userID, StepCategoryType)
	return reply("Select the category type:", Keyboard{Kind: KeyboardCategoryType})
}

func (e *Engine) handleCategoryType(userID int64, st *state, text string) Result {
	switch text {
	case IncomeLabel:
		st.kind = repository.CategoryIncome
	case ExpenseLabel:
		st.kind = repository.CategoryExpense
	default:
		return reply("❌ Choose one of the offered types!", Keyboard{Kind: KeyboardCategoryType})
	}
	st.step = StepCategoryName
	return reply("Enter the category name:", cancelKb())
}

func (e *Engine) handleCategoryName(ctx context.Context, userID int64, st *state, text string) Result {
	_, err := e.ledger.Categories.Add(ctx, userID, text, st.kind)
	if errors.Is(err, repository.ErrDuplicateCategory) {
		e.clear(userID)
		return reply("❌ Such a category already exists!", mainMenu())
	}
	if err != nil {
		return e.fail(userID, err)
	}
	e.clear(userID)
	return reply("✅ Category '"+text+"' added!", mainMenu())
}

func (e *Engine) BeginDeleteCategory(ctx context.Context, userID int64) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	cats, err := e.ledger.Categories.List(ctx, userID, "")
	if err != nil {
		return e.fail(userID, err)
	}
	if len(cats) == 0 {
		return reply("❌ You have no categories yet.", mainMenu())
	}
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	e.begin(userID, StepCategoryDelete)
	return reply("Select a category to delete:", listKb(names))
}

func (e *Engine) handleCategoryDelete(ctx context.Context, userID int64, text string) Result {
	err := e.ledger.Categories.Delete(ctx, userID, text)
	if errors.Is(err, repository.ErrNotFound) {
		// stay in the step, let the user pick again
		return reply("❌ Category not found!", Keyboard{})
	}
	if err != nil {
		return e.fail(userID, err)
	}
	e.clear(userID)
	return reply("✅ Category '"+text+"' deleted!", mainMenu())
}
