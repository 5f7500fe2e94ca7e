package pagination

// DefaultPageSize is the fixed catalog page size.
const DefaultPageSize = 12

// Pagination is zero-based offset pagination with a fixed page size.
// A page beyond the result set yields an empty list, not an error.
type Pagination struct {
	Page     int `form:"page,default=0"`
	PageSize int `form:"-"`
}

func New(page int) Pagination {
	return Pagination{Page: page, PageSize: DefaultPageSize}
}

func (p Pagination) Normalize() Pagination {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	n := p.Normalize()
	return n.Page * n.PageSize
}

func (p Pagination) Limit() int {
	return p.Normalize().PageSize
}
