package db

import (
	"context"
	"testing"

	"github.com/imgajeed76/pgrid/internal/util"
	"github.com/stretchr/testify/assert"
)

func TestParseTableRef(t *testing.T) {
	assert.Equal(t, TableRef{Schema: "public", Name: "users"}, ParseTableRef("users"))
	assert.Equal(t, TableRef{Schema: "sales", Name: "orders"}, ParseTableRef("sales.orders"))
	assert.Equal(t, `"sales"."orders"`, ParseTableRef("sales.orders").Identifier())
}

func TestSelectSQL(t *testing.T) {
	q := PageQuery{
		Table:      ParseTableRef("users"),
		Columns:    []string{"id", "name"},
		OrderBy:    "name",
		Descending: true,
		TieBreaker: "id",
		Limit:      10,
		Offset:     20,
	}

	sql, args := q.SelectSQL()
	assert.Equal(t, `SELECT t."id", t."name" FROM "public"."users" AS t ORDER BY t."name" DESC, t."id" LIMIT $1 OFFSET $2`, sql)
	assert.Equal(t, []any{10, 20}, args)
}

func TestSelectSQL_Filter(t *testing.T) {
	q := PageQuery{
		Table:   ParseTableRef("users"),
		Columns: []string{"id"},
		Filter:  "50%_off",
		Limit:   5,
	}

	sql, args := q.SelectSQL()
	assert.Equal(t, `SELECT t."id" FROM "public"."users" AS t WHERE t::text ILIKE $1 LIMIT $2 OFFSET $3`, sql)
	assert.Equal(t, []any{`%50\%\_off%`, 5, 0}, args)

	count, countArgs := q.CountSQL()
	assert.Equal(t, `SELECT count(*) FROM "public"."users" AS t WHERE t::text ILIKE $1`, count)
	assert.Equal(t, []any{`%50\%\_off%`}, countArgs)
}

func TestSelectSQL_QuotesIdentifiers(t *testing.T) {
	q := PageQuery{
		Table:   ParseTableRef(`we"ird`),
		Columns: []string{`a"b`},
		OrderBy: `a"b`,
		Limit:   1,
	}
	sql, _ := q.SelectSQL()
	assert.Contains(t, sql, `t."a""b"`)
	assert.Contains(t, sql, `"public"."we""ird"`)
}

func TestClosedDB(t *testing.T) {
	db := &DB{}
	assert.False(t, db.IsConnected())

	_, err := db.Query(context.Background(), "SELECT 1")
	assert.ErrorIs(t, err, util.ErrNotConnected)
	assert.ErrorIs(t, db.Ping(context.Background()), util.ErrNotConnected)

	_, err = db.ListColumns(context.Background(), ParseTableRef("users"))
	assert.ErrorIs(t, err, util.ErrNotConnected)
}
