package domain

import "strings"

// List defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// SortOrder is the direction of a list sort.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder parses "asc"/"desc" case-insensitively. Anything else is asc.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortDesc)) {
		return SortDesc
	}
	return SortAsc
}

// Filter names accepted by QueryOptions.WithFilter.
const (
	FilterStatus   = "status"
	FilterCategory = "category"
)

// QueryOptions is the state of one list view: pagination, free-text
// search, filters and sort.
type QueryOptions struct {
	Page      int       `json:"page"`
	Limit     int       `json:"limit"`
	Search    string    `json:"search"`
	Status    string    `json:"status"`
	Category  string    `json:"category"`
	SortBy    string    `json:"sortBy"`
	SortOrder SortOrder `json:"sortOrder"`
}

// DefaultQueryOptions returns page 1 with the given limit (10 when limit
// is not positive), no filters and ascending order.
func DefaultQueryOptions(limit int) QueryOptions {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return QueryOptions{
		Page:      DefaultPage,
		Limit:     limit,
		SortOrder: SortAsc,
	}
}

// Normalized clamps out-of-range values to their defaults.
func (q QueryOptions) Normalized() QueryOptions {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.SortOrder != SortDesc {
		q.SortOrder = SortAsc
	}
	return q
}

// WithSearch sets the search text and goes back to the first page.
func (q QueryOptions) WithSearch(term string) QueryOptions {
	q.Search = term
	q.Page = DefaultPage
	return q
}

// WithFilter sets a named filter and goes back to the first page.
func (q QueryOptions) WithFilter(name, value string) (QueryOptions, error) {
	switch name {
	case FilterStatus:
		q.Status = value
	case FilterCategory:
		q.Category = value
	default:
		return q, ErrInvalidArgument.WithDetails("unknown filter " + name)
	}
	q.Page = DefaultPage
	return q, nil
}

// WithSort sets the sort column and direction. The page is kept.
func (q QueryOptions) WithSort(by string, order SortOrder) QueryOptions {
	q.SortBy = by
	if order != SortDesc {
		order = SortAsc
	}
	q.SortOrder = order
	return q
}

// WithPage moves to page n, keeping filters and sort.
func (q QueryOptions) WithPage(n int) QueryOptions {
	if n < 1 {
		n = DefaultPage
	}
	q.Page = n
	return q
}

// Pagination is the uniform page metadata of a list response.
type Pagination struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalItems  int `json:"totalItems"`
	PerPage     int `json:"perPage"`
}

// HasNext reports whether a page after the current one exists.
func (p Pagination) HasNext() bool {
	return p.CurrentPage < p.TotalPages
}

// HasPrev reports whether a page before the current one exists.
func (p Pagination) HasPrev() bool {
	return p.CurrentPage > 1
}

// InitialPagination is the pagination shown before the first fetch.
func InitialPagination(limit int) Pagination {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return Pagination{CurrentPage: 1, TotalPages: 1, PerPage: limit}
}

// PageResult is one fetched page of items.
type PageResult[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}
