package grid

// SelectionColumnKey is the key of the checkbox column prepended to selectable grids.
const SelectionColumnKey = "_select"

// CellKind tells the renderer how to draw a cell.
type CellKind int

const (
	// CellText is a plain text cell.
	CellText CellKind = iota
	// CellCheckbox is a row or header selection checkbox.
	CellCheckbox
	// CellSkeleton is a loading placeholder.
	CellSkeleton
)

// HeaderCell is one materialized header.
type HeaderCell struct {
	Key       string
	Label     string
	Kind      CellKind
	Width     int
	Sortable  bool
	Direction SortDirection // SortNone unless this is the active sort key
	Glyph     string

	// Checkbox state, only for the selection column.
	Checked       bool
	Indeterminate bool
}

// BodyCell is one materialized body cell.
type BodyCell struct {
	Key     string
	Text    string
	Kind    CellKind
	Checked bool
}

// BodyRow is one materialized row, real or skeleton.
type BodyRow struct {
	Key      string
	Selected bool
	Skeleton bool
	Cells    []BodyCell
}

// Descriptor is everything a dumb renderer needs to draw one grid frame.
type Descriptor struct {
	Headers []HeaderCell
	Rows    []BodyRow

	// Empty is set when not loading and there are no rows; EmptyText is the
	// single full-width placeholder shown instead of the body.
	Empty     bool
	EmptyText string

	Loading bool
	// Interactive is false while loading: renderers must not offer clicks.
	Interactive bool

	Sort       SortState
	Selection  SelectionSummary
	Selectable bool

	// Pagination is nil when the grid has no pagination configured.
	Pagination *Pagination
}

// ColumnKeys returns the header keys in render order.
func (d Descriptor) ColumnKeys() []string {
	keys := make([]string, len(d.Headers))
	for i, h := range d.Headers {
		keys[i] = h.Key
	}
	return keys
}

// ShowPagination reports whether pagination controls should be drawn.
func (d Descriptor) ShowPagination() bool {
	return d.Pagination != nil && d.Pagination.Visible()
}
