// Package query maps grid state to and from URL query parameters. It is
// the owner of controlled state for the HTML viewer: every link on a page
// encodes the state the grid would move to.
package query

import (
	"net/url"
	"strconv"

	"github.com/google/safehtml"
	"github.com/imgajeed76/pgrid/internal/grid"
)

// URL parameter names.
const (
	ParamSort     = "sort"
	ParamPage     = "page"
	ParamPageSize = "page_size"
	ParamFilter   = "filter"
	ParamSelect   = "select"
)

// State represents the parsed grid state of a viewer URL
type State struct {
	// Base path (e.g., "/")
	Path string

	Sort     grid.SortState
	Page     int
	PageSize int
	Filter   string
	Selected grid.Selection
}

// FromURL creates a State from a URL. Invalid values fall back to the
// defaults instead of failing the request.
func FromURL(u *url.URL, defaultPageSize int) *State {
	state := &State{
		Path:     u.Path,
		Page:     1,
		PageSize: defaultPageSize,
		Selected: grid.Selection{},
	}

	q := u.Query()

	if sortStr := q.Get(ParamSort); sortStr != "" {
		if s, err := grid.ParseSort(sortStr); err == nil {
			state.Sort = s
		}
	}

	if pageStr := q.Get(ParamPage); pageStr != "" {
		if page, err := strconv.Atoi(pageStr); err == nil && page >= 1 {
			state.Page = page
		}
	}

	if sizeStr := q.Get(ParamPageSize); sizeStr != "" {
		if size, err := strconv.Atoi(sizeStr); err == nil && size >= 1 {
			state.PageSize = size
		}
	}

	state.Filter = q.Get(ParamFilter)

	// Selection is one select parameter per key; keys may contain commas
	for _, key := range q[ParamSelect] {
		if key != "" {
			state.Selected[key] = true
		}
	}

	return state
}

// Clone creates a deep copy of the State
func (s *State) Clone() *State {
	c := *s
	c.Selected = s.Selected.Clone()
	return &c
}

// Pagination returns the pagination window for a result of total rows.
func (s *State) Pagination(total int) grid.Pagination {
	return grid.Pagination{Page: s.Page, PageSize: s.PageSize, Total: total}
}

// ToURL converts the State back to a URL string
func (s *State) ToURL() string {
	u := url.URL{Path: s.Path}
	if u.Path == "" {
		u.Path = "/"
	}
	q := url.Values{}

	if s.Sort.IsSorted() {
		q.Set(ParamSort, s.Sort.String())
	}
	if s.Page > 1 {
		q.Set(ParamPage, strconv.Itoa(s.Page))
	}
	q.Set(ParamPageSize, strconv.Itoa(s.PageSize))
	if s.Filter != "" {
		q.Set(ParamFilter, s.Filter)
	}
	if s.Selected.Len() > 0 {
		q[ParamSelect] = s.Selected.Keys()
	}

	u.RawQuery = q.Encode()
	return u.String()
}

// ToSafeURL converts the State to a safehtml.URL
func (s *State) ToSafeURL() safehtml.URL {
	return safehtml.URLSanitized(s.ToURL())
}

// FormAction is the URL the filter form submits to.
func (s *State) FormAction() safehtml.URL {
	path := s.Path
	if path == "" {
		path = "/"
	}
	return safehtml.URLSanitized(path)
}

// SortURL returns a URL with the sort toggled on key
func (s *State) SortURL(key string) safehtml.URL {
	next := s.Clone()
	next.Sort = grid.ToggleSort(s.Sort, key)
	return next.ToSafeURL()
}

// SelectAllURL returns a URL with keys selected, or with nothing selected
func (s *State) SelectAllURL(keys []string, checked bool) safehtml.URL {
	next := s.Clone()
	next.Selected = grid.SelectAll(keys, checked)
	return next.ToSafeURL()
}

// ToggleRowURL returns a URL with one row checked or unchecked
func (s *State) ToggleRowURL(key string, checked bool) safehtml.URL {
	next := s.Clone()
	next.Selected = grid.ToggleRow(s.Selected, key, checked)
	return next.ToSafeURL()
}

// PageURL returns a URL for another page
func (s *State) PageURL(page int) safehtml.URL {
	next := s.Clone()
	next.Page = page
	return next.ToSafeURL()
}

// PageSizeURL returns a URL with a different page size, back on page 1
func (s *State) PageSizeURL(size int) safehtml.URL {
	next := s.Clone()
	p := grid.Pagination{Page: s.Page, PageSize: s.PageSize}.WithPageSize(size)
	next.Page, next.PageSize = p.Page, p.PageSize
	return next.ToSafeURL()
}
