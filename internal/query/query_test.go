package query

import (
	"net/url"
	"testing"

	"github.com/imgajeed76/pgrid/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, raw string) *State {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return FromURL(u, 25)
}

func TestFromURL(t *testing.T) {
	s := parse(t, "/?sort=age:desc&page=3&page_size=10&filter=ada&select=b&select=a&select=&select=c")

	assert.Equal(t, "/", s.Path)
	assert.Equal(t, grid.SortState{Key: "age", Direction: grid.SortDescending}, s.Sort)
	assert.Equal(t, 3, s.Page)
	assert.Equal(t, 10, s.PageSize)
	assert.Equal(t, "ada", s.Filter)
	assert.Equal(t, grid.Selection{"a": true, "b": true, "c": true}, s.Selected)
}

func TestFromURL_Defaults(t *testing.T) {
	for _, raw := range []string{
		"/",
		"/?page=0&page_size=-5&sort=:desc",
		"/?page=abc&page_size=x",
	} {
		t.Run(raw, func(t *testing.T) {
			s := parse(t, raw)
			assert.Equal(t, 1, s.Page)
			assert.Equal(t, 25, s.PageSize)
			assert.False(t, s.Sort.IsSorted())
			assert.NotNil(t, s.Selected)
		})
	}
}

func TestFromURL_OutOfRangePageKept(t *testing.T) {
	s := parse(t, "/?page=99")
	assert.Equal(t, 99, s.Page)
}

func TestToURL_RoundTrip(t *testing.T) {
	s := parse(t, "/table?sort=name&page=2&page_size=50&filter=x%20y&select=k2&select=k1")
	again := parse(t, s.ToURL())

	assert.Equal(t, s, again)
	assert.Equal(t, "/table?filter=x+y&page=2&page_size=50&select=k1&select=k2&sort=name%3Aasc", s.ToURL())
}

func TestSortURL_Cycle(t *testing.T) {
	s := parse(t, "/?page=2")

	next := parse(t, s.SortURL("name").String())
	assert.Equal(t, grid.SortState{Key: "name", Direction: grid.SortAscending}, next.Sort)
	assert.Equal(t, 2, next.Page)

	next = parse(t, next.SortURL("name").String())
	assert.Equal(t, grid.SortDescending, next.Sort.Direction)

	next = parse(t, next.SortURL("name").String())
	assert.False(t, next.Sort.IsSorted())

	assert.False(t, s.Sort.IsSorted(), "receiver is not modified")
}

func TestSelectionURLs(t *testing.T) {
	s := parse(t, "/?select=other")

	all := parse(t, s.SelectAllURL([]string{"1", "2"}, true).String())
	assert.Equal(t, grid.Selection{"1": true, "2": true}, all.Selected)

	none := parse(t, all.SelectAllURL([]string{"1", "2"}, false).String())
	assert.Empty(t, none.Selected)

	toggled := parse(t, s.ToggleRowURL("3", true).String())
	assert.Equal(t, grid.Selection{"other": true, "3": true}, toggled.Selected)

	untoggled := parse(t, toggled.ToggleRowURL("other", false).String())
	assert.Equal(t, grid.Selection{"3": true}, untoggled.Selected)
}

func TestPageSizeURL_ResetsPage(t *testing.T) {
	s := parse(t, "/?page=4&page_size=10")

	next := parse(t, s.PageSizeURL(25).String())
	assert.Equal(t, 1, next.Page)
	assert.Equal(t, 25, next.PageSize)

	moved := parse(t, s.PageURL(5).String())
	assert.Equal(t, 5, moved.Page)
	assert.Equal(t, 10, moved.PageSize)
}

func TestSelectionURLs_KeysWithCommas(t *testing.T) {
	s := parse(t, "/")

	toggled := parse(t, s.ToggleRowURL("Smith, John", true).String())
	assert.Equal(t, grid.Selection{"Smith, John": true}, toggled.Selected)

	both := parse(t, toggled.ToggleRowURL("a,b", true).String())
	assert.Equal(t, []string{"Smith, John", "a,b"}, both.Selected.Keys())

	off := parse(t, both.ToggleRowURL("Smith, John", false).String())
	assert.Equal(t, grid.Selection{"a,b": true}, off.Selected)
}

func TestSortURL_KeyWithColon(t *testing.T) {
	s := parse(t, "/")

	next := parse(t, s.SortURL("time:utc").String())
	assert.Equal(t, grid.SortState{Key: "time:utc", Direction: grid.SortAscending}, next.Sort)

	next = parse(t, next.SortURL("time:utc").String())
	assert.Equal(t, grid.SortState{Key: "time:utc", Direction: grid.SortDescending}, next.Sort)
}
