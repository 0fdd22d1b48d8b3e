package source

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/imgajeed76/pgrid/internal/grid"
	"github.com/imgajeed76/pgrid/internal/util"
)

// CSVSource serves pages from a CSV file held in memory. Filtering, sorting
// and slicing happen here, on the caller side of the grid.
type CSVSource struct {
	name    string
	columns []string
	keyIdx  int
	rows    []Record
}

// OpenCSV loads a CSV file. keyColumn defaults to the first column.
func OpenCSV(path, keyColumn string) (*CSVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return NewCSV(f, path, keyColumn)
}

// NewCSV reads CSV data with a header row from r.
func NewCSV(r io.Reader, name, keyColumn string) (*CSVSource, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", name, ErrNoHeader)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(util.ToValidUTF8(header[i]))
	}

	keyIdx := 0
	if keyColumn != "" {
		keyIdx, err = columnIndex(header, keyColumn)
		if err != nil {
			return nil, fmt.Errorf("%s: key column: %w", name, err)
		}
	}

	s := &CSVSource{name: name, columns: header, keyIdx: keyIdx}
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		values := make([]string, len(header))
		for i := range values {
			if i < len(rec) {
				values[i] = util.ToValidUTF8(rec[i])
			}
		}
		s.rows = append(s.rows, Record{Key: values[keyIdx], Values: values})
	}

	return s, nil
}

// Name implements Source.
func (s *CSVSource) Name() string {
	return s.name
}

// KeyColumn implements Source.
func (s *CSVSource) KeyColumn() string {
	return s.columns[s.keyIdx]
}

// Columns implements Source.
func (s *CSVSource) Columns(ctx context.Context) ([]string, error) {
	return append([]string(nil), s.columns...), nil
}

// Len returns the number of data rows in the file.
func (s *CSVSource) Len() int {
	return len(s.rows)
}

// Fetch implements Source. A PageSize of 0 returns every matching row.
func (s *CSVSource) Fetch(ctx context.Context, q Query) (Page, error) {
	if err := ctx.Err(); err != nil {
		return Page{}, err
	}

	rows := s.filter(q.Filter)

	if q.Sort.IsSorted() {
		idx, err := columnIndex(s.columns, q.Sort.Key)
		if err != nil {
			return Page{}, err
		}
		sorted := make([]Record, len(rows))
		copy(sorted, rows)
		desc := q.Sort.Direction == grid.SortDescending
		sort.SliceStable(sorted, func(i, j int) bool {
			c := CompareValues(sorted[i].Values[idx], sorted[j].Values[idx])
			if desc {
				return c > 0
			}
			return c < 0
		})
		rows = sorted
	}

	page := Page{Columns: s.columns, Total: len(rows)}
	if q.PageSize <= 0 {
		page.Rows = rows
		return page, nil
	}

	start := q.Offset()
	if start > len(rows) {
		start = len(rows)
	}
	end := start + q.PageSize
	if end > len(rows) {
		end = len(rows)
	}
	page.Rows = rows[start:end]
	return page, nil
}

func (s *CSVSource) filter(query string) []Record {
	query = strings.ToLower(query)
	if query == "" {
		return s.rows
	}

	var out []Record
	for _, row := range s.rows {
		for _, val := range row.Values {
			if strings.Contains(strings.ToLower(val), query) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// Close implements Source.
func (s *CSVSource) Close() error {
	return nil
}
