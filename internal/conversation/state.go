package conversation

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/ovolkov/finbot/internal/database/repository"
)

// Step tags which input a user's next message is expected to carry. A user
// has at most one active step.
type Step int

const (
	StepIdle Step = iota
	StepBalanceValue
	StepCategoryType
	StepCategoryName
	StepCategoryDelete
	StepTxAmount
	StepTxCategory
	StepTxDescription
	StepBulkTxDate
	StepBulkTxLines
	StepWishTitle
	StepWishDescription
	StepWishAmount
	StepWishDelete
	StepBulkWishLines
	StepWishEditSelect
	StepWishEditField
	StepWishEditValue
	StepReportStart
	StepReportEnd
	StepMultiDelete
)

// WishField is the field being rewritten in the edit-wish flow.
type WishField int

const (
	WishFieldTitle WishField = iota
	WishFieldDescription
	WishFieldAmount
)

// state is one user's scratch data: partially-entered field values held only
// until the terminal step commits them or the flow is cancelled.
type state struct {
	step Step

	kind         repository.CategoryType // transaction flows
	amount       decimal.Decimal
	categoryID   int64
	categoryName string
	bulkDate     time.Time

	wishTitle       string
	wishDescription *string
	wishID          int64
	editField       WishField

	reportStart time.Time

	selections map[int64]bool // multi-delete toggles, id -> selected
}
