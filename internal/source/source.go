// Package source supplies rows to pgrid grids. A Source receives the state the
// grid emitted (sort, page, filter) and returns the matching page of rows.
package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/imgajeed76/pgrid/internal/grid"
)

// Common errors returned by sources.
var (
	// ErrUnknownColumn is returned when a sort or key column does not exist.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNoHeader is returned when a CSV file has no header row.
	ErrNoHeader = errors.New("missing header row")
)

// Record is one row: its key plus raw cell values in column order. Values
// keep embedded newlines and tabs; Display escapes them for one-line output.
type Record struct {
	Key    string
	Values []string
	// Nulls marks SQL NULL cells. Their Values entry reads "NULL". Nil when
	// the source has no nulls (CSV).
	Nulls []bool
}

// Display returns cell i with control characters escaped, or "" past the end.
func (r Record) Display(i int) string {
	if i < 0 || i >= len(r.Values) {
		return ""
	}
	return escapeControl(r.Values[i])
}

// IsNull reports whether cell i is SQL NULL.
func (r Record) IsNull(i int) bool {
	return i >= 0 && i < len(r.Nulls) && r.Nulls[i]
}

// Query is the grid state a source must satisfy.
type Query struct {
	Sort     grid.SortState
	Page     int
	PageSize int
	Filter   string
}

// QueryFor builds the query for the current grid state.
func QueryFor(sort grid.SortState, p grid.Pagination, filter string) Query {
	return Query{Sort: sort, Page: p.Page, PageSize: p.PageSize, Filter: filter}
}

// Offset returns the number of rows before the requested page.
func (q Query) Offset() int {
	return grid.Pagination{Page: q.Page, PageSize: q.PageSize}.Offset()
}

// Page is one page of rows plus the total matching the filter.
type Page struct {
	Columns []string
	Rows    []Record
	Total   int
}

// Source fetches pages of rows.
type Source interface {
	// Name is a human readable description (file path or table).
	Name() string
	// KeyColumn is the column whose values identify rows.
	KeyColumn() string
	// Columns returns the column names in display order.
	Columns(ctx context.Context) ([]string, error)
	// Fetch returns the page of rows for q.
	Fetch(ctx context.Context, q Query) (Page, error)
	// Close releases resources held by the source.
	Close() error
}

// RowKey is the grid row-key function for records.
func RowKey(r Record) string {
	return r.Key
}

// GridColumns turns column names into sortable grid columns over records.
func GridColumns(names []string, widths map[string]int) []grid.Column[Record] {
	cols := make([]grid.Column[Record], len(names))
	for i, name := range names {
		idx := i
		cols[i] = grid.Column[Record]{
			Key:    name,
			Header: name,
			Cell: func(r Record) string {
				return r.Display(idx)
			},
			Sortable: true,
			Width:    widths[name],
		}
	}
	return cols
}

func columnIndex(cols []string, name string) (int, error) {
	for i, c := range cols {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrUnknownColumn, name)
}

// FormatValue formats a driver value as cell text. Strings are returned
// as-is; Record.Display escapes them.
func FormatValue(v any) string {
	if v == nil {
		return "NULL"
	}

	switch val := v.(type) {
	case []byte:
		// For byte arrays, check if it's printable text
		if len(val) == 0 {
			return ""
		}
		for _, b := range val {
			if b < 32 && b != '\n' && b != '\r' && b != '\t' {
				return fmt.Sprintf("[%d bytes]", len(val))
			}
		}
		return string(val)
	case string:
		return val
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

var controlReplacer = strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`)

func escapeControl(s string) string {
	return controlReplacer.Replace(s)
}
