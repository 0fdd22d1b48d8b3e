package table

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/imgajeed76/pgrid/internal/grid"
	"github.com/imgajeed76/pgrid/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []source.Record {
	return []source.Record{
		{Key: "1", Values: []string{"1", "ada", "36"}},
		{Key: "2", Values: []string{"2", "grace", "NULL"}},
		{Key: "3", Values: []string{"3", "linus", "21"}},
	}
}

func sampleOptions() grid.Options[source.Record] {
	return grid.Options[source.Record]{
		Columns:    source.GridColumns([]string{"id", "name", "age"}, nil),
		Data:       sampleRecords(),
		RowKey:     source.RowKey,
		Selectable: true,
	}
}

func render(t *testing.T, opts grid.Options[source.Record], fn func(c *grid.Controller[source.Record])) grid.Descriptor {
	t.Helper()
	c := grid.New(opts)
	if fn != nil {
		fn(c)
	}
	return c.Render()
}

func TestPrintPlain(t *testing.T) {
	page := grid.Pagination{Page: 1, PageSize: 3, Total: 7}
	opts := sampleOptions()
	opts.Pagination = &grid.Binding[grid.Pagination]{Value: &page}
	opts.Sort = grid.Uncontrolled(grid.SortState{Key: "name", Direction: grid.SortAscending}, nil)

	d := render(t, opts, func(c *grid.Controller[source.Record]) {
		c.ToggleRow("2", true)
	})

	var buf bytes.Buffer
	require.NoError(t, PrintPlain(&buf, d))
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")

	require.Len(t, lines, 7)
	assert.Equal(t, "[-]  id  name ▲  age", strings.TrimRight(lines[0], " "))
	assert.True(t, strings.HasPrefix(lines[1], "───  ──  ──────"))
	assert.Equal(t, "[ ]  1   ada     36", strings.TrimRight(lines[2], " "))
	assert.Equal(t, "[x]  2   grace   NULL", strings.TrimRight(lines[3], " "))
	assert.Equal(t, "", lines[5])
	assert.Equal(t, "Showing 1–3 of 7 (page 1 of 3) · 1 selected", lines[6])
}

func TestPrintPlain_Empty(t *testing.T) {
	opts := sampleOptions()
	opts.Data = nil
	opts.EmptyText = "nothing here"
	empty := grid.Pagination{Page: 1, PageSize: 10}
	opts.Pagination = &grid.Binding[grid.Pagination]{Value: &empty}

	var buf bytes.Buffer
	require.NoError(t, PrintPlain(&buf, render(t, opts, nil)))
	out := buf.String()

	assert.Contains(t, out, "id")
	assert.Contains(t, out, "nothing here")
	assert.NotContains(t, out, "Showing", "no pagination for an empty result")
}

func TestPrintPlain_Loading(t *testing.T) {
	opts := sampleOptions()
	opts.Loading = true

	var buf bytes.Buffer
	require.NoError(t, PrintPlain(&buf, render(t, opts, nil)))

	assert.Equal(t, grid.DefaultSkeletonRows*4, strings.Count(buf.String(), grid.SkeletonText))
}

func TestPrintJSON(t *testing.T) {
	d := render(t, sampleOptions(), func(c *grid.Controller[source.Record]) {
		c.ToggleRow("3", true)
	})

	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, d))

	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 3)
	assert.Equal(t, map[string]any{"id": "2", "name": "grace", "age": nil, "_selected": false}, got[1])
	assert.Equal(t, true, got[2]["_selected"])
}

func TestPrintJSON_NotSelectable(t *testing.T) {
	opts := sampleOptions()
	opts.Selectable = false

	var buf bytes.Buffer
	require.NoError(t, PrintJSON(&buf, render(t, opts, nil)))
	assert.NotContains(t, buf.String(), "_selected")
}

func TestPrintRaw(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintRaw(&buf, render(t, sampleOptions(), nil)))
	assert.Equal(t, "1\tada\t36\n2\tgrace\tNULL\n3\tlinus\t21\n", buf.String())
}

func TestPadOrTruncate(t *testing.T) {
	assert.Equal(t, "ab  ", PadOrTruncate("ab", 4))
	assert.Equal(t, "abc...", PadOrTruncate("abcdefghij", 6))
	assert.Equal(t, "äö", PadOrTruncate("äöü", 2))
}
