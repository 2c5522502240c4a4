package domain

import (
	"math"

	"matcat/internal/core/apperror"
)

// PageRequest selects a zero-based page of Size items.
type PageRequest struct {
	Page int
	Size int
}

// Validate rejects negative pages, non-positive sizes and pages whose offset
// does not fit in an int.
func (p PageRequest) Validate() error {
	if p.Page < 0 {
		return apperror.NewValidation("page must not be negative").
			WithDetail("field", "page").
			WithDetail("value", p.Page)
	}
	if p.Size < 1 {
		return apperror.NewValidation("size must be at least 1").
			WithDetail("field", "size").
			WithDetail("value", p.Size)
	}
	if p.Page > math.MaxInt/p.Size {
		return apperror.NewValidation("page is out of range").
			WithDetail("field", "page").
			WithDetail("value", p.Page)
	}
	return nil
}

// Offset is the number of rows skipped before the page.
func (p PageRequest) Offset() int {
	return p.Page * p.Size
}

// Filter returns a ListFilter limited to this page, ordered by id.
func (p PageRequest) Filter() ListFilter {
	return ListFilter{
		OrderBy: "id",
		Limit:   p.Size,
		Offset:  p.Offset(),
	}
}

// Page is one page of results plus totals across all pages.
type Page[T any] struct {
	Items         []T
	TotalElements int64
	TotalPages    int
	Page          int
	Size          int
}

// TotalPages is ceil(total/size); zero when size is not positive.
func TotalPages(total int64, size int) int {
	if size <= 0 {
		return 0
	}
	pages := total / int64(size)
	if total%int64(size) > 0 {
		pages++
	}
	return int(pages)
}

// NewPage wraps items into a Page for req.
func NewPage[T any](items []T, total int64, req PageRequest) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:         items,
		TotalElements: total,
		TotalPages:    TotalPages(total, req.Size),
		Page:          req.Page,
		Size:          req.Size,
	}
}
