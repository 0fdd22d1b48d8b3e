package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imgajeed76/pgrid/internal/db"
	"github.com/imgajeed76/pgrid/internal/grid"
)

func TestPostgresPageQuery(t *testing.T) {
	s := &PostgresSource{
		table:   db.ParseTableRef("users"),
		columns: []string{"id", "name"},
		key:     "id",
	}

	pq, err := s.pageQuery(Query{
		Sort:     grid.SortState{Key: "name", Direction: grid.SortDescending},
		Page:     3,
		PageSize: 10,
		Filter:   "ann",
	})
	require.NoError(t, err)
	assert.Equal(t, "name", pq.OrderBy)
	assert.True(t, pq.Descending)
	assert.Equal(t, "id", pq.TieBreaker)
	assert.Equal(t, 20, pq.Offset)
	assert.Equal(t, 10, pq.Limit)
	assert.Equal(t, "ann", pq.Filter)
}

func TestPostgresPageQuery_UnknownSortColumn(t *testing.T) {
	s := &PostgresSource{table: db.ParseTableRef("users"), columns: []string{"id"}, key: "id"}
	_, err := s.pageQuery(Query{Sort: grid.SortState{Key: "password; DROP", Direction: grid.SortAscending}})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}
