package domain

// PaginationParams carries the page window for list queries. Pages are
// 1-based.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset converts the page window into a 0-based row offset.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}
