package pagination

// Pagination is an offset page request. Page is 1-based.
type Pagination struct {
	Page     int `form:"page,default=1" validate:"gte=1"`
	PageSize int `form:"page_size,default=25" validate:"gte=1,lte=100"`
}

const (
	DefaultPageSize = 25
	MaxPageSize     = 100
)

func (p Pagination) Valid() bool {
	return p.Page >= 1 && p.PageSize >= 1 && p.PageSize <= MaxPageSize
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Slice applies the page window to an already ordered slice.
func Slice[T any](items []T, p Pagination) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
