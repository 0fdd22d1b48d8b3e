package table

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/imgajeed76/pgrid/internal/grid"
	"github.com/imgajeed76/pgrid/internal/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scientistsCSV = `id,name,age
1,ada,36
2,grace,85
3,linus,54
4,ken,80
5,rob,67
`

func newTestModel(t *testing.T, data string, opts TUIOptions) tableModel {
	t.Helper()
	src, err := source.NewCSV(strings.NewReader(data), "scientists.csv", "")
	require.NoError(t, err)

	cols, err := src.Columns(context.Background())
	require.NoError(t, err)
	opts.Columns = cols
	opts.Title = src.Name()

	m := newTableModel(context.Background(), src, opts)
	m = send(t, m, tea.WindowSizeMsg{Width: 200, Height: 40})
	return m
}

// collect runs cmd and flattens batches. Only call it on fetch commands:
// ticks and blinks would block.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func send(t *testing.T, m tableModel, msg tea.Msg) tableModel {
	t.Helper()
	next, _ := m.Update(msg)
	mm, ok := next.(tableModel)
	require.True(t, ok)
	return mm
}

// press sends a key and returns the model plus any command it produced.
func press(t *testing.T, m tableModel, k string) (tableModel, tea.Cmd) {
	t.Helper()
	var msg tea.KeyMsg
	switch k {
	case "space":
		msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "right":
		msg = tea.KeyMsg{Type: tea.KeyRight}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	next, cmd := m.Update(msg)
	mm, ok := next.(tableModel)
	require.True(t, ok)
	return mm, cmd
}

// load delivers the results of a fetch command.
func load(t *testing.T, m tableModel, cmd tea.Cmd) tableModel {
	t.Helper()
	for _, msg := range collect(cmd) {
		if pm, ok := msg.(pageMsg); ok {
			m = send(t, m, pm)
		}
	}
	return m
}

func rowKeys(d grid.Descriptor) []string {
	out := make([]string, len(d.Rows))
	for i, r := range d.Rows {
		out[i] = r.Key
	}
	return out
}

func TestTUI_InitialLoadShowsSkeleton(t *testing.T) {
	m := newTestModel(t, scientistsCSV, TUIOptions{
		Pagination:   grid.Pagination{Page: 1, PageSize: 2},
		Selectable:   true,
		SkeletonRows: 9,
	})

	require.True(t, m.loading)
	assert.Equal(t, 9, m.opts.SkeletonRows)
	require.Len(t, m.desc.Rows, 2, "skeleton rows follow the page size")
	assert.True(t, m.desc.Rows[0].Skeleton)
	assert.False(t, m.desc.Interactive)

	m = load(t, m, m.Init())

	assert.False(t, m.loading)
	assert.Equal(t, []string{"1", "2"}, rowKeys(m.desc))
	assert.Equal(t, 5, m.st.page.Total)
	assert.Equal(t, "Showing 1–2 of 5", m.desc.Pagination.Caption())
}

func TestTUI_SortCycleRefetches(t *testing.T) {
	m := newTestModel(t, scientistsCSV, TUIOptions{
		Pagination: grid.Pagination{Page: 1, PageSize: 2},
		Selectable: true,
	})
	m = load(t, m, m.Init())

	// move from "id" to "age"
	m, _ = press(t, m, "right")
	m, _ = press(t, m, "right")
	h, ok := m.currentHeader()
	require.True(t, ok)
	require.Equal(t, "age", h.Key)

	m, cmd := press(t, m, "s")
	require.NotNil(t, cmd)
	assert.True(t, m.loading)
	assert.Equal(t, grid.SortState{Key: "age", Direction: grid.SortAscending}, m.st.sort)

	m = load(t, m, cmd)
	assert.Equal(t, []string{"1", "3"}, rowKeys(m.desc))

	m, cmd = press(t, m, "s")
	m = load(t, m, cmd)
	assert.Equal(t, []string{"2", "4"}, rowKeys(m.desc))
	assert.Equal(t, "▼", m.desc.Headers[3].Glyph)

	m, cmd = press(t, m, "s")
	m = load(t, m, cmd)
	assert.False(t, m.st.sort.IsSorted())
	assert.Equal(t, []string{"1", "2"}, rowKeys(m.desc))
}

func TestTUI_LoadingSuppressesGridKeys(t *testing.T) {
	m := newTestModel(t, scientistsCSV, TUIOptions{
		Pagination: grid.Pagination{Page: 1, PageSize: 2},
		Selectable: true,
	})
	m = load(t, m, m.Init())

	m, cmd := press(t, m, "s")
	require.True(t, m.loading)

	m, _ = press(t, m, "space")
	m, _ = press(t, m, "a")
	m, again := press(t, m, "s")
	m, _ = press(t, m, "n")

	assert.Nil(t, again)
	assert.Empty(t, m.st.sel)
	assert.Equal(t, grid.SortAscending, m.st.sort.Direction)
	assert.Equal(t, 1, m.st.page.Page)

	m = load(t, m, cmd)
	assert.False(t, m.loading)
}

func TestTUI_Selection(t *testing.T) {
	m := newTestModel(t, scientistsCSV, TUIOptions{
		Pagination: grid.Pagination{Page: 1, PageSize: 5},
		Selectable: true,
	})
	m = load(t, m, m.Init())

	m, _ = press(t, m, "a")
	assert.Equal(t, 5, m.st.sel.Len())
	assert.True(t, m.desc.Headers[0].Checked)

	m, _ = press(t, m, "j")
	m, _ = press(t, m, "j")
	m, _ = press(t, m, "space")
	assert.False(t, m.st.sel.Has("3"))
	assert.Equal(t, grid.SelectionSummary{Count: 4, Some: true}, m.desc.Selection)
	assert.Equal(t, tableModeNormal, m.mode, "checkbox toggle does not open the row")

	m, _ = press(t, m, "a")
	assert.Equal(t, 5, m.st.sel.Len())
	m, _ = press(t, m, "a")
	assert.Zero(t, m.st.sel.Len())
}

func TestTUI_SelectionSurvivesPaging(t *testing.T) {
	m := newTestModel(t, scientistsCSV, TUIOptions{
		Pagination: grid.Pagination{Page: 1, PageSize: 2},
		Selectable: true,
	})
	m = load(t, m, m.Init())

	m, _ = press(t, m, "space")
	m, cmd := press(t, m, "n")
	m = load(t, m, cmd)

	assert.Equal(t, 2, m.st.page.Page)
	assert.Equal(t, []string{"3", "4"}, rowKeys(m.desc))
	assert.True(t, m.st.sel.Has("1"))
	assert.Equal(t, 1, m.desc.Selection.Count)
}

func TestTUI_PruneStaleSelection(t *testing.T) {
	m := newTestModel(t, scientistsCSV, TUIOptions{
		Pagination: grid.Pagination{Page: 1, PageSize: 2},
		Selectable: true,
		PruneStale: true,
	})
	m = load(t, m, m.Init())

	m, _ = press(t, m, "space")
	m, cmd := press(t, m, "n")
	m = load(t, m, cmd)

	assert.Empty(t, m.st.sel)
}

func TestTUI_Paging(t *testing.T) {
	m := newTestModel(t, scientistsCSV, TUIOptions{
		Pagination: grid.Pagination{Page: 1, PageSize: 2},
	})
	m = load(t, m, m.Init())

	_, cmd := press(t, m, "p")
	assert.Nil(t, cmd, "no previous page")

	for _, want := range [][]string{{"3", "4"}, {"5"}} {
		m, cmd = press(t, m, "n")
		m = load(t, m, cmd)
		assert.Equal(t, want, rowKeys(m.desc))
	}

	_, cmd = press(t, m, "n")
	assert.Nil(t, cmd, "no next page")

	m, cmd = press(t, m, "+")
	m = load(t, m, cmd)
	assert.Equal(t, grid.Pagination{Page: 1, PageSize: 10, Total: 5}, m.st.page)
	assert.Len(t, m.desc.Rows, 5)
}

func TestTUI_FilterResetsPage(t *testing.T) {
	m := newTestModel(t, scientistsCSV, TUIOptions{
		Pagination: grid.Pagination{Page: 2, PageSize: 2},
	})
	m = load(t, m, m.Init())

	m, _ = press(t, m, "/")
	require.Equal(t, tableModeSearch, m.mode)
	m.searchInput.SetValue("GRACE")
	m, cmd := press(t, m, "enter")
	m = load(t, m, cmd)

	assert.Equal(t, tableModeNormal, m.mode)
	assert.Equal(t, "GRACE", m.st.filter)
	assert.Equal(t, grid.Pagination{Page: 1, PageSize: 2, Total: 1}, m.st.page)
	assert.Equal(t, []string{"2"}, rowKeys(m.desc))
}

func TestTUI_EmptyResult(t *testing.T) {
	m := newTestModel(t, scientistsCSV, TUIOptions{Filter: "nobody", EmptyText: "no scientists"})
	m = load(t, m, m.Init())

	assert.True(t, m.desc.Empty)
	assert.False(t, m.desc.ShowPagination())
	assert.Contains(t, m.View(), "no scientists")
}

func TestTUI_OpenRow(t *testing.T) {
	m := newTestModel(t, scientistsCSV, TUIOptions{Selectable: true})
	m = load(t, m, m.Init())

	m, _ = press(t, m, "j")
	m, _ = press(t, m, "enter")
	require.Equal(t, tableModeDetail, m.mode)
	require.NotNil(t, m.st.opened)
	assert.Equal(t, "2", m.st.opened.Key)
	assert.Contains(t, m.View(), "grace")
	assert.False(t, m.st.sel.Has("2"), "opening a row does not select it")

	m, _ = press(t, m, "esc")
	assert.Equal(t, tableModeNormal, m.mode)
	assert.Nil(t, m.st.opened)
}

func TestTUI_Export(t *testing.T) {
	var exported []source.Record
	m := newTestModel(t, scientistsCSV, TUIOptions{
		Selectable: true,
		Export: func(columns []string, rows []source.Record) (string, error) {
			assert.Equal(t, []string{"id", "name", "age"}, columns)
			exported = rows
			return "out.csv", nil
		},
	})
	m = load(t, m, m.Init())

	m, _ = press(t, m, "x")
	assert.Nil(t, exported)
	assert.Contains(t, m.statusMsg, "Nothing selected")

	m, _ = press(t, m, "space")
	m, _ = press(t, m, "x")
	require.Len(t, exported, 1)
	assert.Equal(t, "1", exported[0].Key)
	assert.Contains(t, m.statusMsg, "out.csv")
}

func TestTUI_StaleFetchDropped(t *testing.T) {
	m := newTestModel(t, scientistsCSV, TUIOptions{Pagination: grid.Pagination{Page: 1, PageSize: 2}})
	first := m.Init()

	m.st.page = m.st.page.WithPage(2)
	second := m.fetch()

	m = load(t, m, first)
	assert.True(t, m.loading, "older result ignored")

	m = load(t, m, second)
	assert.False(t, m.loading)
	assert.Equal(t, []string{"3", "4"}, rowKeys(m.desc))
}

func TestTUI_DuplicateKeys(t *testing.T) {
	m := newTestModel(t, "id,name\n1,a\n1,b\n", TUIOptions{})
	m = load(t, m, m.Init())

	require.ErrorIs(t, m.err, grid.ErrDuplicateRowKey)
	assert.Contains(t, m.View(), "duplicate")
}

func TestNextPageSize(t *testing.T) {
	tests := []struct {
		current, step, want int
	}{
		{25, 1, 50},
		{25, -1, 10},
		{7, 1, 10},
		{7, -1, 10},
		{100, 1, 100},
		{500, -1, 100},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, nextPageSize(tt.current, tt.step), "%d%+d", tt.current, tt.step)
	}
}

func TestApplyViewport(t *testing.T) {
	assert.Equal(t, "cde", applyViewport("abcdefg", 2, 3))
	assert.Equal(t, "fg  ", applyViewport("abcdefg", 5, 4))
	assert.Equal(t, "", applyViewport("abc", 0, 0))

	styled := "\x1b[1mbold\x1b[0m plain"
	assert.Equal(t, "\x1b[1mld\x1b[0m p", applyViewport(styled, 2, 4))
}
