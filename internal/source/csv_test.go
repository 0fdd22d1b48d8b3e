package source

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imgajeed76/pgrid/internal/grid"
)

const peopleCSV = `id,name,age,city
1,Alice,30,New York
2,bob,25,London
3,Charlie,35,Tokyo
4,Dana,9,london
5,Eve,,Paris
`

func loadPeople(t *testing.T) *CSVSource {
	t.Helper()
	s, err := NewCSV(strings.NewReader(peopleCSV), "people.csv", "")
	require.NoError(t, err)
	return s
}

func keys(rows []Record) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Key
	}
	return out
}

func TestNewCSV(t *testing.T) {
	s := loadPeople(t)
	cols, err := s.Columns(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name", "age", "city"}, cols)
	assert.Equal(t, "id", s.KeyColumn())
	assert.Equal(t, 5, s.Len())
}

func TestNewCSV_KeyColumn(t *testing.T) {
	s, err := NewCSV(strings.NewReader(peopleCSV), "people.csv", "name")
	require.NoError(t, err)

	page, err := s.Fetch(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, "Alice", page.Rows[0].Key)

	_, err = NewCSV(strings.NewReader(peopleCSV), "people.csv", "missing")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestNewCSV_Empty(t *testing.T) {
	_, err := NewCSV(strings.NewReader(""), "empty.csv", "")
	assert.ErrorIs(t, err, ErrNoHeader)
}

func TestCSVFetch_Paging(t *testing.T) {
	s := loadPeople(t)
	ctx := context.Background()

	page, err := s.Fetch(ctx, Query{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, []string{"3", "4"}, keys(page.Rows))

	page, err = s.Fetch(ctx, Query{Page: 3, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"5"}, keys(page.Rows))

	page, err = s.Fetch(ctx, Query{Page: 9, PageSize: 2})
	require.NoError(t, err)
	assert.Empty(t, page.Rows)
	assert.Equal(t, 5, page.Total)
}

func TestCSVFetch_Sort(t *testing.T) {
	s := loadPeople(t)
	ctx := context.Background()

	tests := []struct {
		name string
		sort grid.SortState
		want []string
	}{
		{name: "unsorted", sort: grid.SortState{}, want: []string{"1", "2", "3", "4", "5"}},
		{name: "age numeric asc, text last", sort: grid.SortState{Key: "age", Direction: grid.SortAscending}, want: []string{"4", "2", "1", "3", "5"}},
		{name: "age numeric desc", sort: grid.SortState{Key: "age", Direction: grid.SortDescending}, want: []string{"5", "3", "1", "2", "4"}},
		{name: "name case-insensitive", sort: grid.SortState{Key: "name", Direction: grid.SortAscending}, want: []string{"1", "2", "3", "4", "5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := s.Fetch(ctx, Query{Sort: tt.sort})
			require.NoError(t, err)
			assert.Equal(t, tt.want, keys(page.Rows))
		})
	}
}

func TestCSVFetch_SortUnknownColumn(t *testing.T) {
	s := loadPeople(t)
	_, err := s.Fetch(context.Background(), Query{Sort: grid.SortState{Key: "nope", Direction: grid.SortAscending}})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestCSVFetch_Filter(t *testing.T) {
	s := loadPeople(t)
	page, err := s.Fetch(context.Background(), Query{Filter: "LONDON", Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Equal(t, []string{"2", "4"}, keys(page.Rows))
}

func TestCSVFetch_DoesNotReorderSource(t *testing.T) {
	s := loadPeople(t)
	ctx := context.Background()
	_, err := s.Fetch(ctx, Query{Sort: grid.SortState{Key: "age", Direction: grid.SortDescending}})
	require.NoError(t, err)

	page, err := s.Fetch(ctx, Query{})
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, keys(page.Rows))
}

func TestGridColumns(t *testing.T) {
	cols := GridColumns([]string{"id", "name"}, map[string]int{"name": 12})
	require.Len(t, cols, 2)
	assert.True(t, cols[0].Sortable)
	assert.Equal(t, 12, cols[1].Width)

	r := Record{Key: "1", Values: []string{"1"}}
	assert.Equal(t, "1", cols[0].Cell(r))
	assert.Equal(t, "", cols[1].Cell(r), "short rows render empty")
}

func TestCSV_KeepsRawValues(t *testing.T) {
	s, err := NewCSV(strings.NewReader("id,note\n1,\"two\nlines\"\n2,NULL\n"), "notes.csv", "")
	require.NoError(t, err)
	page, err := s.Fetch(context.Background(), Query{})
	require.NoError(t, err)
	require.Len(t, page.Rows, 2)

	first := page.Rows[0]
	assert.Equal(t, "two\nlines", first.Values[1])
	assert.Equal(t, `two\nlines`, first.Display(1))
	assert.Equal(t, `two\nlines`, GridColumns(page.Columns, nil)[1].Cell(first))

	assert.Equal(t, "NULL", page.Rows[1].Values[1])
	assert.False(t, page.Rows[1].IsNull(1), "CSV text is never SQL NULL")
}

func TestRecord_IsNull(t *testing.T) {
	r := Record{Values: []string{"1", "NULL"}, Nulls: []bool{false, true}}
	assert.False(t, r.IsNull(0))
	assert.True(t, r.IsNull(1))
	assert.False(t, r.IsNull(2))
	assert.Equal(t, "", r.Display(5))
}
