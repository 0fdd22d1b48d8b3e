package table

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/imgajeed76/pgrid/internal/grid"
	"github.com/imgajeed76/pgrid/internal/source"
	"github.com/imgajeed76/pgrid/internal/ui/styles"
	"go.uber.org/zap"
)

// ═══════════════════════════════════════════════════════════════════════════
// Constants
// ═══════════════════════════════════════════════════════════════════════════

const (
	defaultColWidth = 20
	minColWidth     = 3
	hiddenColWidth  = 3
)

// Column display state
type colState int

const (
	colStateDefault  colState = iota // truncated to the default width
	colStateExpanded                 // full width
	colStateHidden                   // minimal width (just "...")
)

// Table mode
type tableMode int

const (
	tableModeNormal tableMode = iota
	tableModeSearch
	tableModeDetail
)

// Exit mode: what to do after quitting the TUI
type exitMode int

const (
	exitNormal exitMode = iota
	exitJSON
	exitRaw
	exitPlain
)

// ═══════════════════════════════════════════════════════════════════════════
// Options
// ═══════════════════════════════════════════════════════════════════════════

// ExportFunc writes rows to a file and returns its path.
type ExportFunc func(columns []string, rows []source.Record) (string, error)

// TUIOptions configures RunTUI. The state fields seed the grid.
type TUIOptions struct {
	Title   string
	Columns []string

	Sort       grid.SortState
	Pagination grid.Pagination
	Filter     string
	Selected   grid.Selection

	Selectable   bool
	PruneStale   bool
	EmptyText    string
	SkeletonRows int
	ColumnWidth  int

	Export ExportFunc
	Logger *zap.Logger
}

// TUIResult is the grid state when the viewer exited.
type TUIResult struct {
	Sort       grid.SortState
	Pagination grid.Pagination
	Filter     string
	Selected   grid.Selection
}

// ═══════════════════════════════════════════════════════════════════════════
// Model
// ═══════════════════════════════════════════════════════════════════════════

// gridState is the controlled grid state. The model owns it and the grid
// controller reports changes into it; it is shared by every model copy.
type gridState struct {
	sort   grid.SortState
	sel    grid.Selection
	page   grid.Pagination
	filter string

	// refetch is set when a change needs a new page from the source.
	refetch bool
	// opened is the row the user activated with enter.
	opened *source.Record
}

// pageMsg carries the result of an asynchronous fetch.
type pageMsg struct {
	seq  int
	page source.Page
	err  error
}

type tableModel struct {
	ctx  context.Context
	src  source.Source
	log  *zap.Logger
	st   *gridState
	ctrl *grid.Controller[source.Record]
	opts grid.Options[source.Record]

	title    string
	columns  []string
	rows     []source.Record
	loading  bool
	seq      int // id of the fetch whose result is awaited
	err      error
	desc     grid.Descriptor
	exportFn ExportFunc

	fullColWidths []int      // actual max width of each column's content
	colStates     []colState // display state for each column
	colWidth      int        // default column width
	cursor        int        // selected row
	colCursor     int        // selected column
	scrollX       int        // horizontal scroll offset in characters
	scrollY       int        // vertical scroll offset in rows
	width         int        // terminal width
	height        int        // terminal height
	ready         bool
	mode          tableMode
	searchInput   textinput.Model
	exitMode      exitMode // how to exit (for re-printing data)

	// Animation state for smooth scrolling
	animating   bool // whether animation is in progress
	animTargetX int  // target scrollX for animation
	animTargetY int  // target scrollY for animation

	// Status message (flash notification, e.g. after yank)
	statusMsg   string    // message to show in footer
	statusUntil time.Time // when to clear the message
}

// ═══════════════════════════════════════════════════════════════════════════
// Key Bindings
// ═══════════════════════════════════════════════════════════════════════════

type tableKeyMap struct {
	Up           key.Binding
	Down         key.Binding
	Left         key.Binding
	Right        key.Binding
	ShiftUp      key.Binding
	ShiftDown    key.Binding
	ShiftLeft    key.Binding
	ShiftRight   key.Binding
	PageUp       key.Binding
	PageDown     key.Binding
	Home         key.Binding
	End          key.Binding
	Sort         key.Binding
	ToggleRow    key.Binding
	ToggleAll    key.Binding
	NextPage     key.Binding
	PrevPage     key.Binding
	BiggerPage   key.Binding
	SmallerPage  key.Binding
	Open         key.Binding
	Expand       key.Binding
	Hide         key.Binding
	Search       key.Binding
	Quit         key.Binding
	YankCell     key.Binding
	YankRow      key.Binding
	Export       key.Binding
	PrintJSON    key.Binding
	PrintRaw     key.Binding
	PrintPlain   key.Binding
	CloseOverlay key.Binding
}

var tableKeys = tableKeyMap{
	Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Left:         key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev column")),
	Right:        key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next column")),
	ShiftUp:      key.NewBinding(key.WithKeys("shift+up"), key.WithHelp("⇧↑", "half page up")),
	ShiftDown:    key.NewBinding(key.WithKeys("shift+down"), key.WithHelp("⇧↓", "half page down")),
	ShiftLeft:    key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("⇧←", "scroll half left")),
	ShiftRight:   key.NewBinding(key.WithKeys("shift+right"), key.WithHelp("⇧→", "scroll half right")),
	PageUp:       key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "screen up")),
	PageDown:     key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "screen down")),
	Home:         key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "first row")),
	End:          key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "last row")),
	Sort:         key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	ToggleRow:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "select")),
	ToggleAll:    key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "select all")),
	NextPage:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "next page")),
	PrevPage:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "prev page")),
	BiggerPage:   key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "more rows")),
	SmallerPage:  key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "fewer rows")),
	Open:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open row")),
	Expand:       key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "expand/default")),
	Hide:         key.NewBinding(key.WithKeys("H"), key.WithHelp("H", "hide/default")),
	Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
	Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	YankCell:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy cell")),
	YankRow:      key.NewBinding(key.WithKeys("Y"), key.WithHelp("Y", "copy row")),
	Export:       key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export selection")),
	PrintJSON:    key.NewBinding(key.WithKeys("J"), key.WithHelp("J", "print as JSON")),
	PrintRaw:     key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "print raw")),
	PrintPlain:   key.NewBinding(key.WithKeys("P"), key.WithHelp("P", "print table")),
	CloseOverlay: key.NewBinding(key.WithKeys("esc", "enter", "q"), key.WithHelp("esc", "close")),
}

// ═══════════════════════════════════════════════════════════════════════════
// Entry Point
// ═══════════════════════════════════════════════════════════════════════════

// RunTUI launches the interactive grid viewer over src. It blocks until the
// user quits. If the user requests a print (J/R/P), the current page is
// printed to stdout after the TUI exits.
func RunTUI(ctx context.Context, src source.Source, opts TUIOptions) (TUIResult, error) {
	m := newTableModel(ctx, src, opts)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := p.Run()
	if err != nil {
		return TUIResult{}, err
	}

	fm, ok := finalModel.(tableModel)
	if !ok {
		return TUIResult{}, nil
	}

	switch fm.exitMode {
	case exitJSON:
		err = PrintJSON(os.Stdout, fm.desc)
	case exitRaw:
		err = PrintRaw(os.Stdout, fm.desc)
	case exitPlain:
		err = PrintPlain(os.Stdout, fm.desc)
	}

	return fm.result(), err
}

func newTableModel(ctx context.Context, src source.Source, opts TUIOptions) tableModel {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	st := &gridState{
		sort:   opts.Sort,
		sel:    opts.Selected.Clone(),
		page:   opts.Pagination,
		filter: opts.Filter,
	}
	if st.page.Page < 1 {
		st.page.Page = 1
	}
	if st.page.PageSize < 1 {
		st.page.PageSize = grid.DefaultPageSize
	}

	colWidth := opts.ColumnWidth
	if colWidth <= 0 {
		colWidth = defaultColWidth
	}

	// Initialize search input
	ti := textinput.New()
	ti.Placeholder = "filter..."
	ti.CharLimit = 100
	ti.Width = 30
	ti.SetValue(st.filter)

	m := tableModel{
		ctx:         ctx,
		src:         src,
		log:         log,
		st:          st,
		title:       opts.Title,
		columns:     opts.Columns,
		exportFn:    opts.Export,
		colWidth:    colWidth,
		mode:        tableModeNormal,
		searchInput: ti,
		exitMode:    exitNormal,
		loading:     true,
		seq:         1,
	}

	// The viewer is always paginated, so loading shows PageSize rows.
	m.opts = grid.Options[source.Record]{
		Columns:      source.GridColumns(opts.Columns, nil),
		RowKey:       source.RowKey,
		Selectable:   opts.Selectable,
		EmptyText:    opts.EmptyText,
		SkeletonRows: opts.SkeletonRows,
		PruneStale:   opts.PruneStale,
		Loading:      true,
		OnRowClick: func(r source.Record) {
			st.opened = &r
		},
		Sort: grid.Controlled(&st.sort, func(s grid.SortState) {
			st.sort = s
			st.refetch = true
		}),
		Selection: grid.Controlled(&st.sel, func(s grid.Selection) {
			st.sel = s
		}),
		Pagination: &grid.Binding[grid.Pagination]{
			Value: &st.page,
			OnChange: func(p grid.Pagination) {
				st.page = p
				st.refetch = true
			},
		},
		Logger: log,
	}
	m.ctrl = grid.New(m.opts)

	if opts.Selectable {
		m.colCursor = 1
	}
	m.refresh()
	return m
}

func (m tableModel) result() TUIResult {
	return TUIResult{
		Sort:       m.st.sort,
		Pagination: m.st.page,
		Filter:     m.st.filter,
		Selected:   m.st.sel.Clone(),
	}
}

// refresh hands the current rows to the controller and re-renders.
func (m *tableModel) refresh() {
	m.opts.Data = m.rows
	m.opts.Loading = m.loading
	m.ctrl.Update(m.opts)
	m.desc = m.ctrl.Render()
	m.measure()
}

// fetch starts loading the page for the current state. Results of older
// fetches are dropped when they arrive.
func (m *tableModel) fetch() tea.Cmd {
	m.seq++
	m.loading = true
	m.st.refetch = false
	m.refresh()
	return m.fetchCmd()
}

// fetchCmd loads the page for the current state under the current fetch id.
func (m tableModel) fetchCmd() tea.Cmd {
	q := source.QueryFor(m.st.sort, m.st.page, m.st.filter)
	seq, ctx, src, log := m.seq, m.ctx, m.src, m.log
	return func() tea.Msg {
		start := time.Now()
		page, err := src.Fetch(ctx, q)
		log.Debug("fetched page",
			zap.String("source", src.Name()),
			zap.Stringer("sort", q.Sort),
			zap.Int("page", q.Page),
			zap.Int("page_size", q.PageSize),
			zap.Int("rows", len(page.Rows)),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return pageMsg{seq: seq, page: page, err: err}
	}
}

func (m *tableModel) applyPage(msg pageMsg) {
	m.loading = false

	err := msg.err
	if err == nil {
		err = grid.Validate(msg.page.Rows, source.RowKey)
	}
	if err != nil {
		m.err = err
		m.rows = nil
		m.refresh()
		return
	}

	m.err = nil
	m.rows = msg.page.Rows
	m.st.page.Total = msg.page.Total
	m.refresh()

	if n := len(m.desc.Rows); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
	m.ensureRowVisible()
}

// measure recomputes content widths from the current descriptor.
func (m *tableModel) measure() {
	n := len(m.desc.Headers)
	if len(m.colStates) != n {
		m.colStates = make([]colState, n)
	}
	m.fullColWidths = make([]int, n)
	for i, h := range m.desc.Headers {
		m.fullColWidths[i] = lipgloss.Width(headerText(h))
	}
	for _, row := range m.desc.Rows {
		for i, c := range row.Cells {
			if i < n {
				m.fullColWidths[i] = max(m.fullColWidths[i], lipgloss.Width(cellText(c)))
			}
		}
	}
	if m.colCursor >= n {
		m.colCursor = max(n-1, 0)
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Bubble Tea Interface
// ═══════════════════════════════════════════════════════════════════════════

// Init starts the first fetch; newTableModel already counts it as in flight.
func (m tableModel) Init() tea.Cmd {
	return m.fetchCmd()
}

func (m tableModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true

	case pageMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.applyPage(msg)
		return m, nil

	case animTickMsg:
		// Handle animation frame
		cmd := m.updateAnimation()
		return m, cmd

	case statusClearMsg:
		// Clear the flash message if it has expired
		if !m.statusUntil.IsZero() && time.Now().After(m.statusUntil) {
			m.statusMsg = ""
			m.statusUntil = time.Time{}
		}
		return m, nil

	case tea.KeyMsg:
		// Cancel any ongoing animation when user presses a key
		m.cancelAnimation()

		switch m.mode {
		case tableModeSearch:
			return m.updateSearch(msg)
		case tableModeDetail:
			if key.Matches(msg, tableKeys.CloseOverlay) {
				m.mode = tableModeNormal
				m.st.opened = nil
			}
			return m, nil
		}

		model, cmd := m.updateNormal(msg)
		if mm, ok := model.(tableModel); ok && mm.st.refetch {
			return mm, tea.Batch(cmd, mm.fetch())
		}
		return model, cmd
	}

	return m, nil
}

func (m tableModel) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, tableKeys.Quit):
		return m, tea.Quit

	case key.Matches(msg, tableKeys.Search):
		if m.loading {
			return m, nil
		}
		m.mode = tableModeSearch
		m.searchInput.Focus()
		return m, textinput.Blink

	// Grid state. The controller ignores all of these while loading.

	case key.Matches(msg, tableKeys.Sort):
		if h, ok := m.currentHeader(); ok {
			m.ctrl.ClickHeader(h.Key)
		}

	case key.Matches(msg, tableKeys.ToggleRow):
		if row, ok := m.currentRow(); ok {
			m.ctrl.Click(row.Key, grid.TargetCheckbox)
			m.refresh()
		}

	case key.Matches(msg, tableKeys.ToggleAll):
		m.ctrl.ToggleAll(!m.desc.Selection.All)
		m.refresh()

	case key.Matches(msg, tableKeys.NextPage):
		if m.desc.ShowPagination() && m.desc.Pagination.HasNext() {
			m.ctrl.ChangePage(m.desc.Pagination.Page + 1)
		}

	case key.Matches(msg, tableKeys.PrevPage):
		if m.desc.ShowPagination() && m.desc.Pagination.HasPrev() {
			m.ctrl.ChangePage(m.desc.Pagination.Page - 1)
		}

	case key.Matches(msg, tableKeys.BiggerPage):
		if p := m.desc.Pagination; p != nil {
			m.ctrl.ChangePageSize(nextPageSize(p.PageSize, 1))
		}

	case key.Matches(msg, tableKeys.SmallerPage):
		if p := m.desc.Pagination; p != nil {
			m.ctrl.ChangePageSize(nextPageSize(p.PageSize, -1))
		}

	case key.Matches(msg, tableKeys.Open):
		if row, ok := m.currentRow(); ok {
			m.ctrl.ClickRow(row.Key)
			if m.st.opened != nil {
				m.mode = tableModeDetail
			}
		}

	case key.Matches(msg, tableKeys.Export):
		cmd := m.exportSelection()
		return m, cmd

	// Navigation

	case key.Matches(msg, tableKeys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Down):
		maxRows := m.displayRowCount()
		if m.cursor < maxRows-1 {
			m.cursor++
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Left):
		colStartX := m.getColStartX(m.colCursor)

		if colStartX < m.scrollX {
			m.scrollX -= 3
			if m.scrollX < colStartX {
				m.scrollX = colStartX
			}
			if m.scrollX < 0 {
				m.scrollX = 0
			}
		} else if m.colCursor > 0 {
			m.colCursor--
			m.ensureColVisibleFromRight()
		}

	case key.Matches(msg, tableKeys.Right):
		colEndX := m.getColEndX(m.colCursor)
		viewportEndX := m.scrollX + m.width - 2

		if colEndX > viewportEndX {
			m.scrollX += 3
			maxX := m.getMaxScrollX()
			if m.scrollX > maxX {
				m.scrollX = maxX
			}
		} else if m.colCursor < len(m.desc.Headers)-1 {
			m.colCursor++
			m.ensureColVisibleFromLeft()
		}

	case key.Matches(msg, tableKeys.ShiftLeft):
		halfWidth := max(m.width/2, 1)
		cmd := m.startAnimation(m.scrollX-halfWidth, m.scrollY)
		return m, cmd

	case key.Matches(msg, tableKeys.ShiftRight):
		halfWidth := max(m.width/2, 1)
		cmd := m.startAnimation(m.scrollX+halfWidth, m.scrollY)
		return m, cmd

	case key.Matches(msg, tableKeys.ShiftUp):
		halfPage := max(m.visibleRowCount()/2, 1)
		m.cursor = max(m.cursor-halfPage, 0)
		cmd := m.startAnimation(m.scrollX, m.scrollY-halfPage)
		return m, cmd

	case key.Matches(msg, tableKeys.ShiftDown):
		halfPage := max(m.visibleRowCount()/2, 1)
		maxRows := m.displayRowCount()
		m.cursor = max(min(m.cursor+halfPage, maxRows-1), 0)
		cmd := m.startAnimation(m.scrollX, m.scrollY+halfPage)
		return m, cmd

	case key.Matches(msg, tableKeys.PageUp):
		m.cursor = max(m.cursor-m.visibleRowCount(), 0)
		m.ensureRowVisible()

	case key.Matches(msg, tableKeys.PageDown):
		maxRows := m.displayRowCount()
		m.cursor = max(min(m.cursor+m.visibleRowCount(), maxRows-1), 0)
		m.ensureRowVisible()

	case key.Matches(msg, tableKeys.Home):
		m.cursor = 0
		m.scrollY = 0
		m.scrollX = 0

	case key.Matches(msg, tableKeys.End):
		if maxRows := m.displayRowCount(); maxRows > 0 {
			m.cursor = maxRows - 1
			m.ensureRowVisible()
		}

	case key.Matches(msg, tableKeys.Expand):
		if m.colCursor < len(m.colStates) {
			if m.colStates[m.colCursor] == colStateExpanded {
				m.colStates[m.colCursor] = colStateDefault
			} else {
				m.colStates[m.colCursor] = colStateExpanded
			}
			m.ensureColVisible()
		}

	case key.Matches(msg, tableKeys.Hide):
		if m.colCursor < len(m.colStates) {
			if m.colStates[m.colCursor] == colStateHidden {
				m.colStates[m.colCursor] = colStateDefault
			} else {
				m.colStates[m.colCursor] = colStateHidden
			}
			m.ensureColVisible()
		}

	case key.Matches(msg, tableKeys.YankCell):
		cmd := m.yankCell()
		return m, cmd

	case key.Matches(msg, tableKeys.YankRow):
		cmd := m.yankRow()
		return m, cmd

	case key.Matches(msg, tableKeys.PrintJSON):
		m.exitMode = exitJSON
		return m, tea.Quit

	case key.Matches(msg, tableKeys.PrintRaw):
		m.exitMode = exitRaw
		return m, tea.Quit

	case key.Matches(msg, tableKeys.PrintPlain):
		m.exitMode = exitPlain
		return m, tea.Quit
	}

	return m, nil
}

// nextPageSize steps through DefaultPageSizes from the current size.
func nextPageSize(current, step int) int {
	sizes := DefaultPageSizes
	if step > 0 {
		for _, s := range sizes {
			if s > current {
				return s
			}
		}
		return sizes[len(sizes)-1]
	}
	for i := len(sizes) - 1; i >= 0; i-- {
		if sizes[i] < current {
			return sizes[i]
		}
	}
	return sizes[0]
}

// ═══════════════════════════════════════════════════════════════════════════
// Search
// ═══════════════════════════════════════════════════════════════════════════

// updateSearch edits the filter. The filter is applied by the source, so
// it takes effect on enter and always starts again from page 1.
func (m tableModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = tableModeNormal
		m.searchInput.Blur()
		m.searchInput.SetValue("")
		if m.st.filter == "" {
			return m, nil
		}
		return m, m.applyFilter("")
	case tea.KeyEnter:
		m.mode = tableModeNormal
		m.searchInput.Blur()
		if m.searchInput.Value() == m.st.filter {
			return m, nil
		}
		return m, m.applyFilter(m.searchInput.Value())
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

func (m *tableModel) applyFilter(filter string) tea.Cmd {
	m.st.filter = filter
	m.st.page = m.st.page.WithPage(1)
	m.cursor = 0
	m.scrollY = 0
	return m.fetch()
}

// ═══════════════════════════════════════════════════════════════════════════
// Row / Column Helpers
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) displayRowCount() int {
	return len(m.desc.Rows)
}

func (m tableModel) getDisplayRow(displayIdx int) (grid.BodyRow, bool) {
	if displayIdx < 0 || displayIdx >= len(m.desc.Rows) {
		return grid.BodyRow{}, false
	}
	return m.desc.Rows[displayIdx], true
}

// currentRow is the data row under the cursor; skeleton rows don't count.
func (m tableModel) currentRow() (grid.BodyRow, bool) {
	row, ok := m.getDisplayRow(m.cursor)
	if !ok || row.Skeleton {
		return grid.BodyRow{}, false
	}
	return row, true
}

func (m tableModel) currentHeader() (grid.HeaderCell, bool) {
	if m.colCursor < 0 || m.colCursor >= len(m.desc.Headers) {
		return grid.HeaderCell{}, false
	}
	return m.desc.Headers[m.colCursor], true
}

func (m tableModel) getColDisplayWidth(colIdx int) int {
	if colIdx >= len(m.colStates) || colIdx >= len(m.fullColWidths) {
		return m.colWidth
	}

	limit := m.colWidth
	if h := m.desc.Headers[colIdx]; h.Width > 0 {
		limit = h.Width
	}

	switch m.colStates[colIdx] {
	case colStateExpanded:
		return max(m.fullColWidths[colIdx], minColWidth)
	case colStateHidden:
		return hiddenColWidth
	default:
		return max(min(m.fullColWidths[colIdx], limit), minColWidth)
	}
}

func (m tableModel) getColStartX(colIdx int) int {
	x := 0
	for i := 0; i < colIdx && i < len(m.desc.Headers); i++ {
		x += m.getColDisplayWidth(i) + 2 // +2 for column separator spacing
	}
	return x
}

func (m tableModel) getColEndX(colIdx int) int {
	return m.getColStartX(colIdx) + m.getColDisplayWidth(colIdx)
}

func (m tableModel) getTotalWidth() int {
	total := 0
	for i := range m.desc.Headers {
		total += m.getColDisplayWidth(i) + 2
	}
	return total
}

func (m tableModel) getMaxScrollX() int {
	return max(m.getTotalWidth()-m.width+2, 0) // +2 for some padding
}

func (m tableModel) getMaxScrollY() int {
	return max(m.displayRowCount()-m.visibleRowCount(), 0)
}

// ═══════════════════════════════════════════════════════════════════════════
// Animation
// ═══════════════════════════════════════════════════════════════════════════

type animTickMsg time.Time

const animationFrameInterval = 16 * time.Millisecond
const animationFraction = 0.25
const animationSnapThreshold = 1

func animTick() tea.Cmd {
	return tea.Tick(animationFrameInterval, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

func (m *tableModel) startAnimation(targetX, targetY int) tea.Cmd {
	m.animTargetX = max(min(targetX, m.getMaxScrollX()), 0)
	m.animTargetY = max(min(targetY, m.getMaxScrollY()), 0)

	if m.animTargetX == m.scrollX && m.animTargetY == m.scrollY {
		m.animating = false
		return nil
	}

	if !m.animating {
		m.animating = true
		return animTick()
	}

	return nil
}

func (m *tableModel) updateAnimation() tea.Cmd {
	if !m.animating {
		return nil
	}

	remainingX := m.animTargetX - m.scrollX
	remainingY := m.animTargetY - m.scrollY

	if abs(remainingX) <= animationSnapThreshold && abs(remainingY) <= animationSnapThreshold {
		m.scrollX = m.animTargetX
		m.scrollY = m.animTargetY
		m.animating = false
		return nil
	}

	m.scrollX += animStep(remainingX)
	m.scrollY += animStep(remainingY)

	return animTick()
}

// animStep moves a fraction of the remaining distance, at least one cell.
func animStep(remaining int) int {
	if remaining == 0 {
		return 0
	}
	delta := int(float64(remaining) * animationFraction)
	if delta == 0 {
		if remaining > 0 {
			return 1
		}
		return -1
	}
	return delta
}

func (m *tableModel) cancelAnimation() {
	m.animating = false
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ═══════════════════════════════════════════════════════════════════════════
// Status Message (flash notification)
// ═══════════════════════════════════════════════════════════════════════════

type statusClearMsg struct{}

const statusDuration = 2 * time.Second

// setStatus sets a temporary status message that auto-clears.
func (m *tableModel) setStatus(msg string) tea.Cmd {
	m.statusMsg = msg
	m.statusUntil = time.Now().Add(statusDuration)
	return tea.Tick(statusDuration, func(t time.Time) tea.Msg {
		return statusClearMsg{}
	})
}

// ═══════════════════════════════════════════════════════════════════════════
// Clipboard (yank) and export
// ═══════════════════════════════════════════════════════════════════════════

// yankCell copies the selected cell value to the system clipboard.
func (m *tableModel) yankCell() tea.Cmd {
	row, ok := m.currentRow()
	if !ok || m.colCursor >= len(row.Cells) {
		return nil
	}
	val := cellText(row.Cells[m.colCursor])
	if err := clipboard.WriteAll(val); err != nil {
		return m.setStatus(fmt.Sprintf("clipboard error: %s", err))
	}
	return m.setStatus(fmt.Sprintf("Copied: %s", Truncate(val, 40)))
}

// yankRow copies the data cells of the selected row (tab-separated).
func (m *tableModel) yankRow() tea.Cmd {
	row, ok := m.currentRow()
	if !ok {
		return nil
	}
	var vals []string
	for _, c := range row.Cells {
		if c.Kind == grid.CellText {
			vals = append(vals, c.Text)
		}
	}
	if err := clipboard.WriteAll(strings.Join(vals, "\t")); err != nil {
		return m.setStatus(fmt.Sprintf("clipboard error: %s", err))
	}
	return m.setStatus(fmt.Sprintf("Copied row (%d columns)", len(vals)))
}

// exportSelection writes the selected rows of the current page.
func (m *tableModel) exportSelection() tea.Cmd {
	if m.exportFn == nil || m.loading {
		return nil
	}

	var rows []source.Record
	for _, r := range m.rows {
		if m.st.sel.Has(r.Key) {
			rows = append(rows, r)
		}
	}
	if len(rows) == 0 {
		return m.setStatus("Nothing selected on this page")
	}

	path, err := m.exportFn(m.columns, rows)
	if err != nil {
		return m.setStatus(fmt.Sprintf("export error: %s", err))
	}
	return m.setStatus(fmt.Sprintf("Exported %d rows to %s", len(rows), path))
}

// ═══════════════════════════════════════════════════════════════════════════
// ANSI-aware Viewport Slicing
// ═══════════════════════════════════════════════════════════════════════════

// applyViewport extracts a horizontal slice of a string, handling ANSI escape
// codes properly. It returns the portion of the string from visual column
// startX with the given width.
func applyViewport(s string, startX, width int) string {
	if width <= 0 {
		return ""
	}
	if startX < 0 {
		startX = 0
	}

	var result strings.Builder
	result.Grow(width + 64)

	visualPos := 0
	outputChars := 0
	stylesApplied := false
	inEscape := false
	escapeSeq := strings.Builder{}

	var activeStyles []string

	runes := []rune(s)
	i := 0

	for i < len(runes) && outputChars < width {
		r := runes[i]

		if r == '\x1b' && i+1 < len(runes) && runes[i+1] == '[' {
			inEscape = true
			escapeSeq.Reset()
			escapeSeq.WriteRune(r)
			i++
			continue
		}

		if inEscape {
			escapeSeq.WriteRune(r)
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				inEscape = false
				seq := escapeSeq.String()

				if r == 'm' {
					if seq == "\x1b[0m" || seq == "\x1b[m" {
						activeStyles = nil
					} else {
						activeStyles = append(activeStyles, seq)
					}
				}

				if visualPos >= startX {
					result.WriteString(seq)
				}
			}
			i++
			continue
		}

		if visualPos >= startX {
			if !stylesApplied && len(activeStyles) > 0 {
				for _, style := range activeStyles {
					result.WriteString(style)
				}
				stylesApplied = true
			}
			result.WriteRune(r)
			outputChars++
		}

		visualPos++
		i++
	}

	if len(activeStyles) > 0 && outputChars > 0 {
		result.WriteString("\x1b[0m")
	}

	if outputChars < width {
		result.WriteString(strings.Repeat(" ", width-outputChars))
	}

	return result.String()
}

// ═══════════════════════════════════════════════════════════════════════════
// Scroll Helpers
// ═══════════════════════════════════════════════════════════════════════════

func (m *tableModel) ensureRowVisible() {
	visibleRows := max(m.visibleRowCount(), 1)
	if m.cursor < m.scrollY {
		m.scrollY = m.cursor
	} else if m.cursor >= m.scrollY+visibleRows {
		m.scrollY = m.cursor - visibleRows + 1
	}
}

func (m *tableModel) clampScrollX() {
	m.scrollX = max(min(m.scrollX, m.getMaxScrollX()), 0)
}

func (m *tableModel) ensureColVisible() {
	colStartX := m.getColStartX(m.colCursor)
	colEndX := m.getColEndX(m.colCursor)
	colWidth := colEndX - colStartX
	viewportWidth := m.width - 2

	if colStartX < m.scrollX {
		m.scrollX = colStartX
	} else if colEndX > m.scrollX+viewportWidth {
		if colWidth <= viewportWidth {
			m.scrollX = colEndX - viewportWidth
		} else {
			m.scrollX = colStartX
		}
	}
	m.clampScrollX()
}

func (m *tableModel) ensureColVisibleFromLeft() {
	m.scrollX = m.getColStartX(m.colCursor)
	m.clampScrollX()
}

func (m *tableModel) ensureColVisibleFromRight() {
	colStartX := m.getColStartX(m.colCursor)
	colEndX := m.getColEndX(m.colCursor)
	viewportWidth := m.width - 2

	m.scrollX = colEndX - viewportWidth
	if colEndX-colStartX <= viewportWidth && m.scrollX < colStartX {
		m.scrollX = colStartX
	}
	m.clampScrollX()
}

func (m tableModel) visibleRowCount() int {
	// title, filter, header, separator above; indicators, pager, help below
	return max(m.height-7, 1)
}

// ═══════════════════════════════════════════════════════════════════════════
// View
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) View() string {
	if !m.ready {
		return "Loading..."
	}

	if m.mode == tableModeDetail && m.st.opened != nil {
		return m.renderDetail(*m.st.opened)
	}

	var sb strings.Builder

	// Header with title info
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Accent)
	info := fmt.Sprintf("%s: %d rows, %d columns", m.title, m.st.page.Total, len(m.columns))
	if m.loading {
		info += " (loading...)"
	}
	sb.WriteString(headerStyle.Render(info))

	// Show state indicators for modified columns
	var stateInfo []string
	for i, state := range m.colStates {
		label := m.desc.Headers[i].Label
		if state == colStateExpanded {
			stateInfo = append(stateInfo, label+"+")
		} else if state == colStateHidden {
			stateInfo = append(stateInfo, label+"-")
		}
	}
	if len(stateInfo) > 0 {
		sb.WriteString(styles.MutedMsg(fmt.Sprintf("  [%s]", strings.Join(stateInfo, ", "))))
	}
	sb.WriteString("\n")

	// Filter bar
	if m.mode == tableModeSearch {
		sb.WriteString(fmt.Sprintf("/%s\n", m.searchInput.View()))
	} else if m.st.filter != "" {
		sb.WriteString(styles.MutedMsg(fmt.Sprintf("filter: %s\n", m.st.filter)))
	} else {
		sb.WriteString("\n")
	}

	if m.err != nil {
		sb.WriteString(styles.ErrorMsg(m.err.Error()))
		sb.WriteString("\n")
	} else {
		sb.WriteString(m.renderTable())
	}

	// Pager and selection
	sb.WriteString("\n")
	if footer := footerText(m.desc); footer != "" {
		sb.WriteString(styles.MutedMsg(footer))
	}
	sb.WriteString("\n")

	// Help or flash message
	if m.statusMsg != "" && time.Now().Before(m.statusUntil) {
		sb.WriteString(styles.SuccessMsg(m.statusMsg))
	} else if m.mode == tableModeSearch {
		sb.WriteString(styles.HelpItem("enter", "apply") + "  " + styles.HelpItem("esc", "clear"))
	} else {
		k := tableKeys
		sb.WriteString(helpBar(k.Sort, k.ToggleRow, k.ToggleAll, k.NextPage, k.PrevPage,
			k.BiggerPage, k.Search, k.Open, k.YankCell, k.Export, k.Quit))
	}

	return sb.String()
}

// helpBar lists the hints of bindings on one line.
func helpBar(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, styles.HelpItem(h.Key, h.Desc))
	}
	return strings.Join(parts, "  ")
}

func (m tableModel) renderDetail(r source.Record) string {
	var sb strings.Builder

	sb.WriteString(styles.SectionHeader(fmt.Sprintf("%s: row %s", m.title, styles.Key(r.Key))))
	sb.WriteString("\n\n")

	labelWidth := 0
	for _, c := range m.columns {
		labelWidth = max(labelWidth, lipgloss.Width(c))
	}
	for i, c := range m.columns {
		val := r.Display(i)
		if r.IsNull(i) {
			val = styles.Null(val)
		}
		sb.WriteString(fmt.Sprintf("  %s  %s\n", styles.Header(pad(c, labelWidth)), val))
	}

	sb.WriteString("\n")
	sb.WriteString(styles.MutedMsg("esc close"))
	return sb.String()
}

// ═══════════════════════════════════════════════════════════════════════════
// Render Table
// ═══════════════════════════════════════════════════════════════════════════

func (m tableModel) renderTable() string {
	var sb strings.Builder

	if len(m.desc.Headers) == 0 {
		return "No columns\n"
	}

	viewportWidth := m.width - 2

	headerStyle := styles.InfoStyle.Bold(true)
	selectedHeaderStyle := lipgloss.NewStyle().Bold(true).Foreground(styles.Accent)
	separatorStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	selectedSepStyle := lipgloss.NewStyle().Foreground(styles.Accent)

	headerLine := m.buildFullHeaderLine(headerStyle, selectedHeaderStyle)
	separatorLine := m.buildFullSeparatorLine(separatorStyle, selectedSepStyle)

	sb.WriteString(applyViewport(headerLine, m.scrollX, viewportWidth))
	sb.WriteString("\n")
	sb.WriteString(applyViewport(separatorLine, m.scrollX, viewportWidth))
	sb.WriteString("\n")

	if m.desc.Empty {
		sb.WriteString(styles.MutedMsg(m.desc.EmptyText))
		sb.WriteString("\n")
		return sb.String()
	}

	visibleRows := m.visibleRowCount()
	displayCount := m.displayRowCount()
	endRow := min(m.scrollY+visibleRows, displayCount)

	for displayIdx := m.scrollY; displayIdx < endRow; displayIdx++ {
		row, ok := m.getDisplayRow(displayIdx)
		if !ok {
			continue
		}
		rowLine := m.buildFullRowLine(row, displayIdx == m.cursor && !row.Skeleton)
		sb.WriteString(applyViewport(rowLine, m.scrollX, viewportWidth))
		sb.WriteString("\n")
	}

	// Scroll indicators
	var indicators []string
	if m.scrollX > 0 {
		indicators = append(indicators, "◀")
	}
	if m.scrollX+viewportWidth < m.getTotalWidth() {
		indicators = append(indicators, "▶")
	}
	if m.scrollY > 0 {
		indicators = append(indicators, "▲")
	}
	if m.scrollY+visibleRows < displayCount {
		indicators = append(indicators, "▼")
	}
	if len(indicators) > 0 {
		sb.WriteString(styles.MutedMsg(strings.Join(indicators, " ")))
	}

	return sb.String()
}

func (m tableModel) buildFullHeaderLine(normalStyle, selectedStyle lipgloss.Style) string {
	var sb strings.Builder

	for i, h := range m.desc.Headers {
		colWidth := m.getColDisplayWidth(i)

		var displayName string
		if m.colStates[i] == colStateHidden {
			displayName = PadOrTruncate("...", colWidth)
		} else {
			displayName = PadOrTruncate(headerText(h), colWidth)
		}

		style := normalStyle
		switch {
		case i == m.colCursor:
			style = selectedStyle
		case h.Glyph != "":
			style = styles.SortStyle
		}
		sb.WriteString(style.Render(displayName))
		sb.WriteString("  ")
	}

	return sb.String()
}

func (m tableModel) buildFullSeparatorLine(normalStyle, selectedStyle lipgloss.Style) string {
	var sb strings.Builder

	for i := range m.desc.Headers {
		sep := strings.Repeat("─", m.getColDisplayWidth(i))

		if i == m.colCursor {
			sb.WriteString(selectedStyle.Render(sep))
		} else {
			sb.WriteString(normalStyle.Render(sep))
		}
		sb.WriteString("  ")
	}

	return sb.String()
}

func (m tableModel) buildFullRowLine(row grid.BodyRow, isCursorRow bool) string {
	cursorRowStyle := styles.SelectedStyle
	cursorCellStyle := lipgloss.NewStyle().Background(styles.Accent).Foreground(lipgloss.Color("#000000"))
	highlightStyle := lipgloss.NewStyle().Foreground(styles.Warning)
	filter := strings.ToLower(m.st.filter)

	var sb strings.Builder

	for i := range m.desc.Headers {
		colWidth := m.getColDisplayWidth(i)

		var c grid.BodyCell
		if i < len(row.Cells) {
			c = row.Cells[i]
		}
		val := cellText(c)

		var displayVal string
		if m.colStates[i] == colStateHidden {
			displayVal = PadOrTruncate("...", colWidth)
		} else {
			displayVal = PadOrTruncate(val, colWidth)
		}

		isCursorCol := i == m.colCursor
		hasFilterMatch := filter != "" && c.Kind == grid.CellText && strings.Contains(strings.ToLower(val), filter)

		switch {
		case row.Skeleton:
			sb.WriteString(styles.Skeleton(displayVal))
		case isCursorRow && isCursorCol:
			sb.WriteString(cursorCellStyle.Render(displayVal))
		case isCursorRow:
			sb.WriteString(cursorRowStyle.Render(displayVal))
		case row.Selected:
			sb.WriteString(styles.CheckedRowStyle.Render(displayVal))
		case c.Kind == grid.CellText && val == NullText:
			sb.WriteString(styles.Null(displayVal))
		case hasFilterMatch:
			sb.WriteString(highlightStyle.Render(displayVal))
		default:
			sb.WriteString(displayVal)
		}
		sb.WriteString("  ")
	}

	return sb.String()
}
