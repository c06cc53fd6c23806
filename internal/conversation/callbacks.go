package conversation

import (
	"context"
	"strconv"
	"strings"
)

// HandleCallback routes inline-button callback data to the right handler.
// Unknown data yields an empty Result so stale buttons stay silent.
func (e *Engine) HandleCallback(ctx context.Context, userID int64, data string) Result {
	switch {
	case strings.HasPrefix(data, toggleDataPrefix):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, toggleDataPrefix), 10, 64)
		if err != nil {
			return Result{}
		}
		return e.ToggleSelection(userID, id)

	case data == confirmDeleteData:
		return e.ConfirmMultiDelete(ctx, userID)

	case strings.HasPrefix(data, WishlistPagePrefix):
		page, err := strconv.Atoi(strings.TrimPrefix(data, WishlistPagePrefix))
		if err != nil {
			return Result{}
		}
		return e.Wishlist(ctx, userID, page, true)

	case strings.HasPrefix(data, HistoryFilterPrefix):
		filter, page, ok := splitFilterPage(strings.TrimPrefix(data, HistoryFilterPrefix))
		if !ok {
			return Result{}
		}
		return e.HistoryPage(ctx, userID, filter, page, true)

	case strings.HasPrefix(data, HistoryPagePrefix):
		filter, page, ok := splitFilterPage(strings.TrimPrefix(data, HistoryPagePrefix))
		if !ok {
			return Result{}
		}
		return e.HistoryPage(ctx, userID, filter, page, true)

	case strings.HasPrefix(data, MenuPrefix):
		return e.MenuSection(strings.TrimPrefix(data, MenuPrefix))
	}
	return Result{}
}

func splitFilterPage(s string) (string, int, bool) {
	filter, pageStr, ok := cutLast(s, "_")
	if !ok {
		return "", 0, false
	}
	page, err := strconv.Atoi(pageStr)
	if err != nil {
		return "", 0, false
	}
	return filter, page, true
}

func cutLast(s, sep string) (string, string, bool) {
	i := strings.LastIndex(s, sep)
	if i < 0 {
		return s, "", false
	}
	return s[:i], s[i+len(sep):], true
}
