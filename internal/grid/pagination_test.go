package grid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPagination_Items(t *testing.T) {
	tests := []struct {
		name      string
		p         Pagination
		wantStart int
		wantEnd   int
	}{
		{name: "last partial page", p: Pagination{Page: 3, PageSize: 10, Total: 25}, wantStart: 21, wantEnd: 25},
		{name: "first page", p: Pagination{Page: 1, PageSize: 10, Total: 25}, wantStart: 1, wantEnd: 10},
		{name: "exact fit", p: Pagination{Page: 2, PageSize: 5, Total: 10}, wantStart: 6, wantEnd: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantStart, tt.p.StartItem())
			assert.Equal(t, tt.wantEnd, tt.p.EndItem())
		})
	}
}

func TestPagination_EmptyNotVisible(t *testing.T) {
	p := Pagination{Page: 1, PageSize: 10, Total: 0}
	assert.False(t, p.Visible())
	assert.Equal(t, 0, p.PageCount())
	assert.False(t, p.HasNext())
}

func TestPagination_WithPageSizeResetsPage(t *testing.T) {
	p := Pagination{Page: 4, PageSize: 10, Total: 100}
	assert.Equal(t, Pagination{Page: 1, PageSize: 25, Total: 100}, p.WithPageSize(25))
	assert.Equal(t, Pagination{Page: 4, PageSize: 10, Total: 100}, p, "receiver is a value")
}

func TestPagination_WithPageNotClamped(t *testing.T) {
	p := Pagination{Page: 1, PageSize: 10, Total: 25}
	assert.Equal(t, 9, p.WithPage(9).Page)
}

func TestPagination_Navigation(t *testing.T) {
	p := Pagination{Page: 2, PageSize: 10, Total: 25}
	assert.Equal(t, 3, p.PageCount())
	assert.True(t, p.HasPrev())
	assert.True(t, p.HasNext())
	assert.Equal(t, 10, p.Offset())
	assert.Equal(t, "Showing 11–20 of 25", p.Caption())

	last := p.WithPage(3)
	assert.False(t, last.HasNext())
}
