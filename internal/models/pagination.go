package models

const (
	DefaultPageLimit = 12
	MaxPageLimit     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Limit  int
}

// NewPage clamps the requested page and limit to sane values.
func NewPage(number, limit int) Page {
	if number < 1 {
		number = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	return Page{Number: number, Limit: limit}
}

// Normalize returns p with defaults applied.
func (p Page) Normalize() Page {
	return NewPage(p.Number, p.Limit)
}

// Offset is the number of rows to skip.
func (p Page) Offset() int {
	p = p.Normalize()
	return (p.Number - 1) * p.Limit
}

// PageResult is one page of items plus the size of the full result set.
type PageResult[T any] struct {
	Items []T
	Total int64
	Page  Page
}

// Pages is the number of pages needed to hold Total items.
func (r PageResult[T]) Pages() int {
	limit := r.Page.Normalize().Limit
	return int((r.Total + int64(limit) - 1) / int64(limit))
}
