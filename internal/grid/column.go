package grid

// Column describes one caller-supplied grid column. Columns are immutable and
// re-supplied on every render.
type Column[T any] struct {
	// Key is unique within a grid.
	Key string
	// Header is the header label; Key is used when empty.
	Header string
	// Cell renders the value of this column for a row.
	Cell func(row T) string
	// Sortable makes the header clickable.
	Sortable bool
	// Width is a renderer hint in characters (0 = renderer default).
	Width int
}

func (c Column[T]) label() string {
	if c.Header != "" {
		return c.Header
	}
	return c.Key
}
