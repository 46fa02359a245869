package domain

import "math"

// Trip listing page sizes.
const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// maxPage keeps Page*Limit inside an INTEGER offset.
	maxPage = math.MaxInt32 / MaxPageSize
)

// PaginationParams selects one page of the trip list. Page counts from 1.
type PaginationParams struct {
	Page  int
	Limit int
}

// NewPaginationParams reads optional page and limit query values. Missing or
// non-positive values fall back to page 1 of DefaultPageSize trips; limit is
// clamped to MaxPageSize.
func NewPaginationParams(page, limit *int) PaginationParams {
	p := PaginationParams{Page: 1, Limit: DefaultPageSize}
	if page != nil && *page >= 1 {
		p.Page = min(*page, maxPage)
	}
	if limit != nil && *limit >= 1 {
		p.Limit = min(*limit, MaxPageSize)
	}
	return p
}

// Offset is the number of trips before this page.
func (p PaginationParams) Offset() int {
	return (p.Page - 1) * p.Limit
}
