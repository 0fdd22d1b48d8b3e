// Package grid holds the state model behind pgrid's data grids: the sort,
// selection and pagination reducers and the controller that combines them
// with column and row definitions into a Descriptor for a renderer.
//
// The grid never fetches, filters, sorts or slices rows. It reports state
// changes to the caller, and the caller supplies the rows for that state.
package grid

import (
	"fmt"

	"go.uber.org/zap"
)

const (
	// DefaultSkeletonRows is the number of placeholder rows shown while
	// loading a grid without pagination.
	DefaultSkeletonRows = 5
	// DefaultPageSize seeds uncontrolled pagination without an initial value.
	DefaultPageSize = 25
	// DefaultEmptyText is shown when there are no rows.
	DefaultEmptyText = "No data"
	// SkeletonText is the placeholder text of a loading cell.
	SkeletonText = "░░░"
)

// ClickTarget identifies what part of a row was clicked.
type ClickTarget int

const (
	// TargetRow is a click anywhere on the row except its checkbox.
	TargetRow ClickTarget = iota
	// TargetCheckbox is a click on the row's selection checkbox.
	TargetCheckbox
)

// Options is the per-render input of a Controller.
type Options[T any] struct {
	Columns []Column[T]
	Data    []T
	RowKey  func(row T) string

	Loading    bool
	Selectable bool

	// EmptyText replaces DefaultEmptyText.
	EmptyText string
	// SkeletonRows replaces DefaultSkeletonRows when pagination is not configured.
	SkeletonRows int
	// PruneStale drops selected keys that are not in Data whenever Update
	// receives a new data set.
	PruneStale bool

	OnRowClick func(row T)

	Sort      Binding[SortState]
	Selection Binding[Selection]
	// Pagination is nil when the grid is not paginated.
	Pagination *Binding[Pagination]

	Logger *zap.Logger
}

// Controller resolves controlled and uncontrolled state and assembles
// descriptors. It is not safe for concurrent use; every host owns its own.
type Controller[T any] struct {
	opts Options[T]
	log  *zap.Logger

	sort cell[SortState]
	sel  cell[Selection]
	page cell[Pagination]
}

// New creates a controller for the given options.
func New[T any](opts Options[T]) *Controller[T] {
	c := &Controller[T]{}
	c.setOptions(opts)
	return c
}

// Update replaces the options for the next render. Internal fallback state
// survives; with PruneStale the selection is pruned to the new data set.
func (c *Controller[T]) Update(opts Options[T]) {
	c.setOptions(opts)
	if !opts.PruneStale || opts.Loading || !opts.Selectable {
		return
	}

	sel := c.Selection()
	pruned := Prune(sel, c.visibleKeys())
	if pruned.Len() != sel.Len() {
		c.log.Debug("pruned stale selection",
			zap.Int("before", sel.Len()),
			zap.Int("after", pruned.Len()))
		c.sel.update(c.opts.Selection, pruned)
	}
}

func (c *Controller[T]) setOptions(opts Options[T]) {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Pagination != nil && opts.Pagination.Value == nil && opts.Pagination.Initial == (Pagination{}) {
		b := *opts.Pagination
		b.Initial = Pagination{Page: 1, PageSize: DefaultPageSize}
		opts.Pagination = &b
	}
	c.opts = opts
	c.log = opts.Logger
}

// SortState returns the resolved sort state.
func (c *Controller[T]) SortState() SortState {
	return c.sort.resolve(c.opts.Sort)
}

// Selection returns the resolved selection. The result is never nil.
func (c *Controller[T]) Selection() Selection {
	sel := c.sel.resolve(c.opts.Selection)
	if sel == nil {
		return Selection{}
	}
	return sel
}

// Pagination returns the resolved pagination state and whether pagination
// is configured at all.
func (c *Controller[T]) Pagination() (Pagination, bool) {
	if c.opts.Pagination == nil {
		return Pagination{}, false
	}
	return c.page.resolve(*c.opts.Pagination), true
}

// SetTotal records the total row count reported by the data source. For
// controlled pagination the caller owns Total and this does nothing.
func (c *Controller[T]) SetTotal(total int) {
	if c.opts.Pagination == nil || c.opts.Pagination.Value != nil {
		return
	}
	p := c.page.resolve(*c.opts.Pagination)
	p.Total = total
	c.page.value = p
}

// ═══════════════════════════════════════════════════════════════════════════
// Render
// ═══════════════════════════════════════════════════════════════════════════

// Render assembles the descriptor for the current options and state.
func (c *Controller[T]) Render() Descriptor {
	sortState := c.SortState()
	sel := c.Selection()

	d := Descriptor{
		Loading:     c.opts.Loading,
		Interactive: !c.opts.Loading,
		Sort:        sortState,
		Selectable:  c.opts.Selectable,
	}
	if p, ok := c.Pagination(); ok {
		d.Pagination = &p
	}

	if !c.opts.Loading {
		d.Selection = Summarize(sel, len(c.opts.Data))
	}

	d.Headers = c.renderHeaders(sortState, d.Selection)

	switch {
	case c.opts.Loading:
		d.Rows = c.renderSkeleton(d.Pagination)
	case len(c.opts.Data) == 0:
		d.Empty = true
		d.EmptyText = c.opts.EmptyText
		if d.EmptyText == "" {
			d.EmptyText = DefaultEmptyText
		}
	default:
		d.Rows = c.renderRows(sel)
	}

	return d
}

func (c *Controller[T]) renderHeaders(sortState SortState, summary SelectionSummary) []HeaderCell {
	headers := make([]HeaderCell, 0, len(c.opts.Columns)+1)

	if c.opts.Selectable {
		headers = append(headers, HeaderCell{
			Key:           SelectionColumnKey,
			Kind:          CellCheckbox,
			Width:         3,
			Checked:       summary.All,
			Indeterminate: summary.Some,
		})
	}

	for _, col := range c.opts.Columns {
		h := HeaderCell{
			Key:      col.Key,
			Label:    col.label(),
			Kind:     CellText,
			Width:    col.Width,
			Sortable: col.Sortable,
		}
		if col.Sortable && sortState.IsSorted() && sortState.Key == col.Key {
			h.Direction = sortState.Direction
			h.Glyph = sortState.Direction.Glyph()
		}
		headers = append(headers, h)
	}

	return headers
}

func (c *Controller[T]) renderSkeleton(p *Pagination) []BodyRow {
	n := c.opts.SkeletonRows
	if n <= 0 {
		n = DefaultSkeletonRows
	}
	if p != nil && p.PageSize > 0 {
		n = p.PageSize
	}

	rows := make([]BodyRow, n)
	for i := range rows {
		cells := make([]BodyCell, 0, len(c.opts.Columns)+1)
		if c.opts.Selectable {
			cells = append(cells, BodyCell{Key: SelectionColumnKey, Kind: CellSkeleton, Text: SkeletonText})
		}
		for _, col := range c.opts.Columns {
			cells = append(cells, BodyCell{Key: col.Key, Kind: CellSkeleton, Text: SkeletonText})
		}
		rows[i] = BodyRow{
			Key:      fmt.Sprintf("skeleton-%d", i),
			Skeleton: true,
			Cells:    cells,
		}
	}
	return rows
}

func (c *Controller[T]) renderRows(sel Selection) []BodyRow {
	rows := make([]BodyRow, len(c.opts.Data))
	for i, row := range c.opts.Data {
		key := c.rowKey(row, i)
		selected := c.opts.Selectable && sel.Has(key)

		cells := make([]BodyCell, 0, len(c.opts.Columns)+1)
		if c.opts.Selectable {
			cells = append(cells, BodyCell{Key: SelectionColumnKey, Kind: CellCheckbox, Checked: selected})
		}
		for _, col := range c.opts.Columns {
			var text string
			if col.Cell != nil {
				text = col.Cell(row)
			}
			cells = append(cells, BodyCell{Key: col.Key, Kind: CellText, Text: text})
		}

		rows[i] = BodyRow{Key: key, Selected: selected, Cells: cells}
	}
	return rows
}

func (c *Controller[T]) rowKey(row T, index int) string {
	if c.opts.RowKey == nil {
		return fmt.Sprintf("%d", index)
	}
	return c.opts.RowKey(row)
}

func (c *Controller[T]) visibleKeys() []string {
	keys := make([]string, len(c.opts.Data))
	for i, row := range c.opts.Data {
		keys[i] = c.rowKey(row, i)
	}
	return keys
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Handlers
// ═══════════════════════════════════════════════════════════════════════════

// ClickHeader toggles the sort on a sortable column. Clicks on unknown or
// non-sortable columns are ignored. The rows are not re-sorted here.
func (c *Controller[T]) ClickHeader(key string) {
	if c.opts.Loading {
		return
	}
	col, ok := c.column(key)
	if !ok || !col.Sortable {
		return
	}

	next := ToggleSort(c.SortState(), key)
	c.log.Debug("sort changed", zap.String("key", key), zap.Stringer("state", next))
	c.sort.update(c.opts.Sort, next)
}

// ToggleAll selects every visible row, or clears the selection.
func (c *Controller[T]) ToggleAll(checked bool) {
	if c.opts.Loading || !c.opts.Selectable {
		return
	}
	next := SelectAll(c.visibleKeys(), checked)
	c.log.Debug("select all", zap.Bool("checked", checked), zap.Int("count", next.Len()))
	c.sel.update(c.opts.Selection, next)
}

// ToggleRow sets the checked state of one row.
func (c *Controller[T]) ToggleRow(key string, checked bool) {
	if c.opts.Loading || !c.opts.Selectable {
		return
	}
	next := ToggleRow(c.Selection(), key, checked)
	c.log.Debug("toggle row", zap.String("key", key), zap.Bool("checked", checked))
	c.sel.update(c.opts.Selection, next)
}

// ClickRow reports a click on the row body to OnRowClick.
func (c *Controller[T]) ClickRow(key string) {
	c.Click(key, TargetRow)
}

// Click dispatches a click on a row. A checkbox click flips the row's
// selection and stops there: OnRowClick is never called for it.
func (c *Controller[T]) Click(key string, target ClickTarget) {
	if c.opts.Loading {
		return
	}

	if target == TargetCheckbox {
		c.ToggleRow(key, !c.Selection().Has(key))
		return
	}

	if c.opts.OnRowClick == nil {
		return
	}
	for i, row := range c.opts.Data {
		if c.rowKey(row, i) == key {
			c.opts.OnRowClick(row)
			return
		}
	}
}

// ChangePage moves to page. It does nothing without pagination.
func (c *Controller[T]) ChangePage(page int) {
	p, ok := c.Pagination()
	if !ok || c.opts.Loading {
		return
	}
	next := p.WithPage(page)
	c.log.Debug("page changed", zap.Int("page", next.Page))
	c.page.update(*c.opts.Pagination, next)
}

// ChangePageSize sets a new page size and resets the page to 1.
func (c *Controller[T]) ChangePageSize(size int) {
	p, ok := c.Pagination()
	if !ok || c.opts.Loading {
		return
	}
	next := p.WithPageSize(size)
	c.log.Debug("page size changed", zap.Int("page_size", next.PageSize))
	c.page.update(*c.opts.Pagination, next)
}

func (c *Controller[T]) column(key string) (Column[T], bool) {
	for _, col := range c.opts.Columns {
		if col.Key == key {
			return col, true
		}
	}
	return Column[T]{}, false
}

// Validate reports the first duplicate key among rows.
func Validate[T any](rows []T, rowKey func(T) string) error {
	if rowKey == nil {
		return nil
	}
	seen := make(map[string]int, len(rows))
	for i, row := range rows {
		key := rowKey(row)
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w %q (rows %d and %d)", ErrDuplicateRowKey, key, prev, i)
		}
		seen[key] = i
	}
	return nil
}
