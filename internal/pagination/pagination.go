// Package pagination converts page/limit requests into store queries and
// builds the paginated response envelope returned by list endpoints.
//
// The helpers are pure and safe for concurrent use.
package pagination

// Pagination defaults and bounds.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Params is a caller's page request. A nil *Params means "no pagination".
type Params struct {
	Page  int
	Limit int
}

// Query is the offset/limit pair handed to a repository.
type Query struct {
	Offset int
	Limit  int
}

// Page is the paginated response envelope.
type Page[T any] struct {
	Items       []T  `json:"items"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	Total       int  `json:"total"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrevious bool `json:"hasPrevious"`
}

// Normalize floors page at 1 and clamps limit to [1, MaxLimit].
func Normalize(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// ToStoreQuery converts a page request into an offset/limit query.
func ToStoreQuery(page, limit int) Query {
	page, limit = Normalize(page, limit)
	return Query{
		Offset: (page - 1) * limit,
		Limit:  limit,
	}
}

// Query returns the store query for p.
func (p Params) Query() Query {
	return ToStoreQuery(p.Page, p.Limit)
}

// ToResponse builds the envelope for one page of results.
// totalPages is ceil(total/limit); it is 0 when total is 0.
func ToResponse[T any](items []T, total, page, limit int) Page[T] {
	page, limit = Normalize(page, limit)
	if items == nil {
		items = []T{}
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + limit - 1) / limit
	}

	return Page[T]{
		Items:       items,
		Page:        page,
		Limit:       limit,
		Total:       total,
		TotalPages:  totalPages,
		HasNext:     page < totalPages,
		HasPrevious: page > 1,
	}
}

// Unpaged wraps a complete collection in the same envelope shape.
// The whole collection is a single page whose limit equals the total.
func Unpaged[T any](items []T, total int) Page[T] {
	if items == nil {
		items = []T{}
	}

	totalPages := 0
	if total > 0 {
		totalPages = 1
	}

	return Page[T]{
		Items:      items,
		Page:       DefaultPage,
		Limit:      total,
		Total:      total,
		TotalPages: totalPages,
	}
}
