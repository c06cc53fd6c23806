package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ovolkov/finbot/internal/database"
	"github.com/ovolkov/finbot/internal/database/repository"
	"github.com/ovolkov/finbot/internal/money"
)

// LineError records one rejected line of a bulk import.
type LineError struct {
	Line int // 1-based
	Text string
	Err  error
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Text, e.Err)
}

// ImportResult summarizes a bulk import. Lines fail independently; a bad line
// never rolls back its neighbours.
type ImportResult struct {
	Succeeded int
	Errors    []LineError
}

// ImportTransactions commits one transaction per "Category - Amount -
// Description?" line, all dated to date and resolved against the user's
// categories of the given type.
func (s *Service) ImportTransactions(ctx context.Context, userID int64, typ repository.CategoryType, date time.Time, input string) (ImportResult, error) {
	var res ImportResult
	for i, line := range strings.Split(strings.TrimSpace(input), "\n") {
		lineNo := i + 1
		category, amount, description, err := parseTransactionLine(line)
		if err != nil {
			res.Errors = append(res.Errors, LineError{Line: lineNo, Text: line, Err: err})
			continue
		}
		cat, err := s.Categories.GetByName(ctx, userID, category, typ)
		if errors.Is(err, repository.ErrNotFound) {
			res.Errors = append(res.Errors, LineError{Line: lineNo, Text: line,
				Err: fmt.Errorf("category %q not found", category)})
			continue
		}
		if err != nil {
			return res, err
		}
		if _, err := s.Commit(ctx, userID, cat.ID, amount, description, date); err != nil {
			return res, err
		}
		res.Succeeded++
	}
	return res, nil
}

// ImportWishes adds one wish per "Title - Amount" line.
func (s *Service) ImportWishes(ctx context.Context, userID int64, input string) (ImportResult, error) {
	var res ImportResult
	for i, line := range strings.Split(strings.TrimSpace(input), "\n") {
		lineNo := i + 1
		title, rest, found := strings.Cut(line, "-")
		title = strings.TrimSpace(title)
		if !found || title == "" {
			res.Errors = append(res.Errors, LineError{Line: lineNo, Text: line,
				Err: errors.New("expected Title - Amount")})
			continue
		}
		amount, err := money.Parse(rest)
		if err != nil {
			res.Errors = append(res.Errors, LineError{Line: lineNo, Text: line, Err: err})
			continue
		}
		_, err = s.Wishes.Add(ctx, repository.Wish{
			UserID:       userID,
			Title:        title,
			TargetAmount: amount,
			CreatedAt:    database.Now(),
		})
		if err != nil {
			return res, err
		}
		res.Succeeded++
	}
	return res, nil
}

// parseTransactionLine splits "Category - Amount - Description?". Only the
// third dash-separated field is kept as description, matching how lines were
// always parsed.
func parseTransactionLine(line string) (category string, amount decimal.Decimal, description *string, err error) {
	parts := strings.Split(line, "-")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) < 2 || parts[0] == "" {
		return "", decimal.Zero, nil, errors.New("expected Category - Amount - Description?")
	}
	amount, err = money.Parse(parts[1])
	if err != nil {
		return "", decimal.Zero, nil, err
	}
	if len(parts) > 2 && parts[2] != "" {
		description = &parts[2]
	}
	return parts[0], amount, description, nil
}
