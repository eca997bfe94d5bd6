// Package query implements the filter → sort → slice pipeline shared by the
// list endpoints.
package query

import (
	"cmp"
	"slices"
	"strings"
)

// Order is a sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Page describes one slice of a result set.
type Page struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"pageSize"`
	Total      int  `json:"total"`
	TotalPages int  `json:"totalPages"`
	HasNext    bool `json:"hasNext"`
	HasPrev    bool `json:"hasPrev"`
}

// NewPage computes pagination metadata for total items.
func NewPage(page, pageSize, total int) Page {
	totalPages := 0
	if pageSize > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}
	return Page{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Paginate returns items[(page-1)*pageSize : page*pageSize], clamped. Pages
// past the end yield an empty, non-nil slice.
func Paginate[T any](items []T, page, pageSize int) ([]T, Page) {
	meta := NewPage(page, pageSize, len(items))
	start := (page - 1) * pageSize
	if start < 0 || pageSize <= 0 || start >= len(items) {
		return []T{}, meta
	}
	end := min(start+pageSize, len(items))
	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, meta
}

// Normalize applies defaults to page and pageSize and caps pageSize at max.
func Normalize(page, pageSize, defaultSize, maxSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultSize
	}
	if maxSize > 0 && pageSize > maxSize {
		pageSize = maxSize
	}
	return page, pageSize
}

// ParseOrder maps "desc" (any case) to Desc and everything else to Asc.
func ParseOrder(s string) Order {
	if strings.EqualFold(s, string(Desc)) {
		return Desc
	}
	return Asc
}

// Comparator orders two items; negative means a sorts before b.
type Comparator[T any] func(a, b T) int

// ByString compares a string key case-insensitively.
func ByString[T any](key func(T) string) Comparator[T] {
	return func(a, b T) int {
		return strings.Compare(strings.ToLower(key(a)), strings.ToLower(key(b)))
	}
}

// ByNumber compares an ordered numeric key.
func ByNumber[T any, N cmp.Ordered](key func(T) N) Comparator[T] {
	return func(a, b T) int {
		return cmp.Compare(key(a), key(b))
	}
}

// Sort returns a sorted copy of items. The input is left untouched.
func Sort[T any](items []T, by Comparator[T], order Order) []T {
	out := slices.Clone(items)
	if by == nil {
		return out
	}
	slices.SortFunc(out, func(a, b T) int {
		if order == Desc {
			return by(b, a)
		}
		return by(a, b)
	})
	return out
}

// Filter keeps the items for which keep returns true.
func Filter[T any](items []T, keep func(T) bool) []T {
	out := make([]T, 0, len(items))
	for _, it := range items {
		if keep(it) {
			out = append(out, it)
		}
	}
	return out
}

// ContainsFold reports whether substr is within s, ignoring case.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
