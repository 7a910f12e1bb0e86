package pagination

// Params holds 1-based page selection taken from a request.
type Params struct {
	PageIndex int
	PageSize  int
}

// Offset returns the number of rows skipped before this page.
func (p Params) Offset() int {
	if p.PageIndex < 1 {
		return 0
	}
	return (p.PageIndex - 1) * p.PageSize
}

// Limit returns the page size for SQL LIMIT.
func (p Params) Limit() int {
	return p.PageSize
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int64) bool {
	return int64(p.Offset()+p.PageSize) < total
}

// Page wraps one page of results and echoes the requested paging.
type Page[T any] struct {
	PageNumber   int   `json:"pageNumber"`
	PageSize     int   `json:"pageSize"`
	TotalRecords int64 `json:"totalRecords"`
	Data         []T   `json:"data"`
}

// NewPage builds a page envelope. A nil data slice is rendered as an empty list.
func NewPage[T any](p Params, total int64, data []T) *Page[T] {
	if data == nil {
		data = []T{}
	}
	return &Page[T]{
		PageNumber:   p.PageIndex,
		PageSize:     p.PageSize,
		TotalRecords: total,
		Data:         data,
	}
}
