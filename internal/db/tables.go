package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ErrTableNotFound is returned when a table has no visible columns.
var ErrTableNotFound = errors.New("table not found")

// TableRef names a table, optionally schema-qualified ("public.users").
type TableRef struct {
	Schema string
	Name   string
}

// ParseTableRef splits "schema.table"; the schema defaults to public.
func ParseTableRef(s string) TableRef {
	if schema, name, ok := strings.Cut(s, "."); ok {
		return TableRef{Schema: schema, Name: name}
	}
	return TableRef{Schema: "public", Name: s}
}

// Identifier returns the quoted, schema-qualified identifier.
func (t TableRef) Identifier() string {
	return pgx.Identifier{t.Schema, t.Name}.Sanitize()
}

func (t TableRef) String() string {
	return t.Schema + "." + t.Name
}

// ListColumns returns the column names of a table in ordinal order.
func (db *DB) ListColumns(ctx context.Context, t TableRef) ([]string, error) {
	rows, err := db.Query(ctx, `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, t.Schema, t.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", t, err)
	}

	cols, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("failed to list columns of %s: %w", t, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, t)
	}
	return cols, nil
}

// PageQuery describes one page of a table scan.
type PageQuery struct {
	Table      TableRef
	Columns    []string
	Filter     string // case-insensitive substring over the whole row
	OrderBy    string // column name, empty for natural order
	Descending bool
	TieBreaker string // appended to ORDER BY so pages are stable
	Limit      int
	Offset     int
}

// whereClause returns the WHERE clause and its arguments, numbered from 1.
func (q PageQuery) whereClause() (string, []any) {
	if q.Filter == "" {
		return "", nil
	}
	return " WHERE t::text ILIKE $1", []any{"%" + escapeLike(q.Filter) + "%"}
}

// SelectSQL builds the paged SELECT for q.
func (q PageQuery) SelectSQL() (string, []any) {
	cols := make([]string, len(q.Columns))
	for i, c := range q.Columns {
		cols[i] = "t." + pgx.Identifier{c}.Sanitize()
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	sb.WriteString(strings.Join(cols, ", "))
	sb.WriteString(" FROM ")
	sb.WriteString(q.Table.Identifier())
	sb.WriteString(" AS t")

	where, args := q.whereClause()
	sb.WriteString(where)

	var order []string
	if q.OrderBy != "" {
		dir := "ASC"
		if q.Descending {
			dir = "DESC"
		}
		order = append(order, fmt.Sprintf("t.%s %s", pgx.Identifier{q.OrderBy}.Sanitize(), dir))
	}
	if q.TieBreaker != "" && q.TieBreaker != q.OrderBy {
		order = append(order, "t."+pgx.Identifier{q.TieBreaker}.Sanitize())
	}
	if len(order) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(strings.Join(order, ", "))
	}

	args = append(args, q.Limit, q.Offset)
	sb.WriteString(fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(args)-1, len(args)))

	return sb.String(), args
}

// CountSQL builds the count(*) matching q's filter.
func (q PageQuery) CountSQL() (string, []any) {
	where, args := q.whereClause()
	return "SELECT count(*) FROM " + q.Table.Identifier() + " AS t" + where, args
}

// SelectPage runs q and returns the raw row values.
func (db *DB) SelectPage(ctx context.Context, q PageQuery) ([][]any, error) {
	sql, args := q.SelectSQL()
	rows, err := db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		out = append(out, values)
	}
	return out, rows.Err()
}

// Count returns the number of rows matching q's filter.
func (db *DB) Count(ctx context.Context, q PageQuery) (int, error) {
	sql, args := q.CountSQL()
	var n int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, err
	}
	return int(n), nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
