package source

import (
	"context"
	"fmt"

	"github.com/imgajeed76/pgrid/internal/db"
	"github.com/imgajeed76/pgrid/internal/grid"
)

// PostgresSource pages through a table. Sorting, filtering and paging are
// pushed down into SQL.
type PostgresSource struct {
	db      *db.DB
	table   db.TableRef
	columns []string
	key     string
	owned   bool
}

// NewPostgres describes table on conn. keyColumn defaults to the first
// column. When owned is true Close also closes conn.
func NewPostgres(ctx context.Context, conn *db.DB, table, keyColumn string, owned bool) (*PostgresSource, error) {
	ref := db.ParseTableRef(table)
	cols, err := conn.ListColumns(ctx, ref)
	if err != nil {
		return nil, err
	}

	key := cols[0]
	if keyColumn != "" {
		if _, err := columnIndex(cols, keyColumn); err != nil {
			return nil, fmt.Errorf("%s: key column: %w", ref, err)
		}
		key = keyColumn
	}

	return &PostgresSource{db: conn, table: ref, columns: cols, key: key, owned: owned}, nil
}

// Name implements Source.
func (s *PostgresSource) Name() string {
	return s.table.String()
}

// KeyColumn implements Source.
func (s *PostgresSource) KeyColumn() string {
	return s.key
}

// Columns implements Source.
func (s *PostgresSource) Columns(ctx context.Context) ([]string, error) {
	return append([]string(nil), s.columns...), nil
}

func (s *PostgresSource) pageQuery(q Query) (db.PageQuery, error) {
	pq := db.PageQuery{
		Table:      s.table,
		Columns:    s.columns,
		Filter:     q.Filter,
		TieBreaker: s.key,
		Limit:      q.PageSize,
		Offset:     q.Offset(),
	}
	if q.Sort.IsSorted() {
		if _, err := columnIndex(s.columns, q.Sort.Key); err != nil {
			return db.PageQuery{}, err
		}
		pq.OrderBy = q.Sort.Key
		pq.Descending = q.Sort.Direction == grid.SortDescending
	}
	return pq, nil
}

// Fetch implements Source.
func (s *PostgresSource) Fetch(ctx context.Context, q Query) (Page, error) {
	pq, err := s.pageQuery(q)
	if err != nil {
		return Page{}, err
	}

	total, err := s.db.Count(ctx, pq)
	if err != nil {
		return Page{}, fmt.Errorf("count %s: %w", s.table, err)
	}
	if pq.Limit <= 0 {
		pq.Limit = total
	}

	raw, err := s.db.SelectPage(ctx, pq)
	if err != nil {
		return Page{}, fmt.Errorf("select %s: %w", s.table, err)
	}

	keyIdx, _ := columnIndex(s.columns, s.key)
	rows := make([]Record, len(raw))
	for i, values := range raw {
		strValues := make([]string, len(values))
		nulls := make([]bool, len(values))
		for j, v := range values {
			strValues[j] = FormatValue(v)
			nulls[j] = v == nil
		}
		rows[i] = Record{Key: strValues[keyIdx], Values: strValues, Nulls: nulls}
	}

	return Page{Columns: s.columns, Rows: rows, Total: total}, nil
}

// Close implements Source.
func (s *PostgresSource) Close() error {
	if s.owned {
		s.db.Close()
	}
	return nil
}
