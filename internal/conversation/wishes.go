package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ovolkov/finbot/internal/database"
	"github.com/ovolkov/finbot/internal/database/repository"
	"github.com/ovolkov/finbot/internal/money"
)

// BeginAddWish starts the title → description → amount flow.
func (e *Engine) BeginAddWish(userID int64) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.begin(userID, StepWishTitle)
	return reply("Enter the title of the desired purchase:", cancelKb())
}

func (e *Engine) handleWishTitle(userID int64, st *state, text string) Result {
	st.wishTitle = text
	st.step = StepWishDescription
	return reply("What is it? Add a description of why you want it.\nYou can skip ➡️", skipKb())
}

func (e *Engine) handleWishDescription(userID int64, st *state, text string) Result {
	if text != SkipText {
		st.wishDescription = &text
	}
	st.step = StepWishAmount
	return reply("Enter the purchase price:", cancelKb())
}

func (e *Engine) handleWishAmount(ctx context.Context, userID int64, st *state, text string) Result {
	amount, err := money.Parse(text)
	if err != nil {
		return reply("❌ Enter a valid amount!", cancelKb())
	}

	_, err = e.ledger.Wishes.Add(ctx, repository.Wish{
		UserID:       userID,
		Title:        st.wishTitle,
		Description:  st.wishDescription,
		TargetAmount: amount,
		CreatedAt:    database.Now(),
	})
	if err != nil {
		return e.fail(userID, err)
	}
	e.clear(userID)
	return reply(fmt.Sprintf("✅ Wish '%s' added!", st.wishTitle), mainMenu())
}

// ---- bulk add ----

// BeginBulkWishes starts the "Title - Amount" line import.
func (e *Engine) BeginBulkWishes(userID int64) Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.begin(userID, StepBulkWishLines)
	return reply(
		"📝 Enter the wishlist in the format:\n"+
			"Title - Amount\n"+
			"One wish per line\n\n"+
			"Example:\n"+
			"Laptop - 100000\n"+
			"Bicycle - 50000\n"+
			"Trip - 200000",
		cancelKb())
}

func (e *Engine) handleBulkWishLines(ctx context.Context, userID int64, text string) Result {
	res, err := e.ledger.ImportWishes(ctx, userID, text)
	if err != nil {
		return e.fail(userID, err)
	}
	e.clear(userID)

	out := fmt.Sprintf("✅ Added: %d\n", res.Succeeded)
	if len(res.Errors) > 0 {
		var lines []string
		for _, le := range res.Errors {
			lines = append(lines, fmt.Sprintf("Line %d: %s", le.Line, le.Text))
		}
		out += "\n❌ Bad lines:\n" + strings.Join(lines, "\n")
	}
	return reply(out, mainMenu())
}

// ---- delete ----

// BeginDeleteWish shows the wish titles to pick from.
func (e *Engine) BeginDeleteWish(ctx context.Context, userID int64) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	titles, err := e.wishTitles(ctx, userID)
	if err != nil {
		return e.fail(userID, err)
	}
	if len(titles) == 0 {
		return reply("❌ The wishlist is empty!", mainMenu())
	}
	e.begin(userID, StepWishDelete)
	return reply("Select a wish to delete:", listKb(titles))
}

func (e *Engine) handleWishDelete(ctx context.Context, userID int64, text string) Result {
	wish, err := e.ledger.Wishes.GetByTitle(ctx, userID, text)
	if errors.Is(err, repository.ErrNotFound) {
		e.clear(userID)
		return reply("❌ Wish not found!", mainMenu())
	}
	if err != nil {
		return e.fail(userID, err)
	}
	if err := e.ledger.Wishes.Delete(ctx, wish.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return e.fail(userID, err)
	}
	e.clear(userID)
	return reply(fmt.Sprintf("✅ Wish '%s' deleted!", text), mainMenu())
}

// ---- edit ----

var wishFieldLabels = []string{"Title", "Description", "Amount"}

// BeginEditWish starts the select → field → value flow.
func (e *Engine) BeginEditWish(ctx context.Context, userID int64) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	titles, err := e.wishTitles(ctx, userID)
	if err != nil {
		return e.fail(userID, err)
	}
	if len(titles) == 0 {
		return reply("❌ The wishlist is empty!", mainMenu())
	}
	e.begin(userID, StepWishEditSelect)
	return reply("Select a wish to edit:", listKb(titles))
}

func (e *Engine) handleWishEditSelect(ctx context.Context, userID int64, st *state, text string) Result {
	wish, err := e.ledger.Wishes.GetByTitle(ctx, userID, text)
	if errors.Is(err, repository.ErrNotFound) {
		e.clear(userID)
		return reply("❌ Wish not found!", mainMenu())
	}
	if err != nil {
		return e.fail(userID, err)
	}
	st.wishID = wish.ID
	st.wishTitle = wish.Title
	st.step = StepWishEditField
	return reply("What do you want to change?", listKb(wishFieldLabels))
}

func (e *Engine) handleWishEditField(userID int64, st *state, text string) Result {
	switch text {
	case "Title":
		st.editField = WishFieldTitle
		st.step = StepWishEditValue
		return reply("Enter the new title:", cancelKb())
	case "Description":
		st.editField = WishFieldDescription
		st.step = StepWishEditValue
		return reply("Enter the new description:", cancelKb())
	case "Amount":
		st.editField = WishFieldAmount
		st.step = StepWishEditValue
		return reply("Enter the new amount:", cancelKb())
	default:
		return reply("❌ Choose one of the offered fields!", listKb(wishFieldLabels))
	}
}

func (e *Engine) handleWishEditValue(ctx context.Context, userID int64, st *state, text string) Result {
	var update repository.WishUpdate
	switch st.editField {
	case WishFieldTitle:
		update.Title = &text
	case WishFieldDescription:
		update.Description = &text
	case WishFieldAmount:
		amount, err := money.Parse(text)
		if err != nil {
			return reply("❌ Enter a valid amount!", cancelKb())
		}
		update.TargetAmount = &amount
	}

	err := e.ledger.Wishes.Update(ctx, st.wishID, update)
	if errors.Is(err, repository.ErrNotFound) {
		e.clear(userID)
		return reply("❌ Wish not found!", mainMenu())
	}
	if err != nil {
		return e.fail(userID, err)
	}
	e.clear(userID)
	return reply(fmt.Sprintf("✅ Wish '%s' updated!", st.wishTitle), mainMenu())
}

func (e *Engine) wishTitles(ctx context.Context, userID int64) ([]string, error) {
	n, err := e.ledger.Wishes.Count(ctx, userID)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	wishes, err := e.ledger.Wishes.List(ctx, userID, n, 0)
	if err != nil {
		return nil, err
	}
	titles := make([]string, len(wishes))
	for i, w := range wishes {
		titles[i] = w.Title
	}
	return titles, nil
}
