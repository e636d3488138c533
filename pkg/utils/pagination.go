package utils

// MaxPageSize caps the page size accepted from query parameters.
const MaxPageSize = 100

// DefaultPageSize is used when the caller asks for no or a bad limit.
const DefaultPageSize = 20

// Pagination is a normalized page/limit pair. Build it with NewPagination
// so handlers never pass raw query values to the repositories.
type Pagination struct {
	Page  int
	Limit int
}

// NewPagination clamps raw query values into a valid range.
func NewPagination(page, limit int) Pagination {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return Pagination{Page: page, Limit: limit}
}

// Offset returns the SQL offset for the current page.
func (p Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageMeta is the pagination block echoed in list responses.
type PageMeta struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// Meta builds the response metadata for a total row count.
func (p Pagination) Meta(total int) PageMeta {
	totalPages := 0
	if total > 0 {
		totalPages = (total + p.Limit - 1) / p.Limit
	}
	return PageMeta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: totalPages,
	}
}
