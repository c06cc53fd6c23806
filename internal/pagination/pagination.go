// Package pagination slices ordered collections into fixed-size pages.
package pagination

// Paginate returns the offset of page and the total number of pages for a
// collection of total items. TotalPages is never below 1. Page numbers are
// 1-based and are not clamped here; callers guard their own range.
func Paginate(total, pageSize, page int) (offset, totalPages int) {
	if pageSize <= 0 {
		return 0, 1
	}
	totalPages = (total + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}
	offset = (page - 1) * pageSize
	return offset, totalPages
}

// Clamp forces page into [1, totalPages].
func Clamp(page, totalPages int) int {
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}
