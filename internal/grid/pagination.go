package grid

import "fmt"

// Pagination is advisory bookkeeping: the grid never slices rows itself, the
// caller supplies the rows of the current page.
type Pagination struct {
	Page     int
	PageSize int
	Total    int
}

// StartItem is the 1-based index of the first row on the page.
func (p Pagination) StartItem() int {
	return (p.Page-1)*p.PageSize + 1
}

// EndItem is the 1-based index of the last row on the page.
func (p Pagination) EndItem() int {
	end := p.Page * p.PageSize
	if end > p.Total {
		return p.Total
	}
	return end
}

// Offset is the number of rows before the page, for SQL OFFSET clauses.
func (p Pagination) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// PageCount returns ceil(Total/PageSize).
func (p Pagination) PageCount() int {
	if p.PageSize <= 0 || p.Total <= 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// HasPrev reports whether a previous page exists.
func (p Pagination) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether a following page exists.
func (p Pagination) HasNext() bool {
	return p.Page < p.PageCount()
}

// Visible is false for an empty result set; renderers draw no controls then.
func (p Pagination) Visible() bool {
	return p.Total > 0
}

// Caption returns the "Showing X–Y of Z" line.
func (p Pagination) Caption() string {
	return fmt.Sprintf("Showing %d–%d of %d", p.StartItem(), p.EndItem(), p.Total)
}

// WithPage returns p moved to page. Out-of-range pages are not clamped.
func (p Pagination) WithPage(page int) Pagination {
	p.Page = page
	return p
}

// WithPageSize returns p with a new page size and the page reset to 1.
func (p Pagination) WithPageSize(size int) Pagination {
	p.PageSize = size
	p.Page = 1
	return p
}
