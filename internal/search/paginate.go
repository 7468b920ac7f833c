package search

import (
	"strings"

	"github.com/hpungsan/lectio/internal/bible"
)

// PageSize is the number of results per page.
const PageSize = 100

// Pagination describes the page a slice was taken from.
type Pagination struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasPrev    bool `json:"has_prev"`
	HasNext    bool `json:"has_next"`
}

// TotalPages returns ceil(total/pageSize), and at least 1.
func TotalPages(total, pageSize int) int {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	pages := (total + pageSize - 1) / pageSize
	if pages < 1 {
		return 1
	}
	return pages
}

// ClampPage moves page into [1, TotalPages(total, pageSize)].
func ClampPage(page, total, pageSize int) int {
	if page < 1 {
		return 1
	}
	if last := TotalPages(total, pageSize); page > last {
		return last
	}
	return page
}

// Paginate returns the slice of items for the requested 1-based page.
// Out-of-range pages are clamped, never rejected.
func Paginate[T any](items []T, page, pageSize int) ([]T, Pagination) {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	total := len(items)
	page = ClampPage(page, total, pageSize)
	pages := TotalPages(total, pageSize)

	start := (page - 1) * pageSize
	end := min(start+pageSize, total)
	if start > total {
		start = total
	}
	return items[start:end], Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: pages,
		HasPrev:    page > 1,
		HasNext:    page < pages,
	}
}

// ParsePage reads a page query parameter. Anything unparsable or below 1 means page 1.
func ParsePage(raw string) int {
	n, ok := bible.ParseLeadingInt(strings.TrimSpace(raw))
	if !ok || n < 1 {
		return 1
	}
	return n
}
