// Package table draws grid descriptors. It supports an interactive TUI
// (with search, column expand/hide, smooth scrolling), plain text tables,
// JSON output, raw tab-separated output and an HTML page.
//
// Renderers never change grid state. They draw whatever descriptor they are
// given and report user intent back to the grid controller.
package table

import (
	"io"
	"os"

	"github.com/imgajeed76/pgrid/internal/grid"
	"golang.org/x/term"
)

// DisplayOptions controls how results are rendered.
type DisplayOptions struct {
	// JSON outputs results as a JSON array of objects.
	JSON bool
	// Raw outputs results as tab-separated values (for piping).
	Raw bool
	// NoPager forces plain table output even on a TTY.
	NoPager bool
}

// Interactive reports whether the interactive TUI should be used.
func (o DisplayOptions) Interactive() bool {
	if o.JSON || o.Raw || o.NoPager {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// DisplayResults renders d in the non-interactive mode selected by opts.
func DisplayResults(w io.Writer, d grid.Descriptor, opts DisplayOptions) error {
	switch {
	case opts.Raw:
		return PrintRaw(w, d)
	case opts.JSON:
		return PrintJSON(w, d)
	default:
		return PrintPlain(w, d)
	}
}

// headerText is the label of a header as drawn by the text renderers.
func headerText(h grid.HeaderCell) string {
	switch h.Kind {
	case grid.CellCheckbox:
		return checkboxText(h.Checked, h.Indeterminate)
	default:
		if h.Glyph != "" {
			return h.Label + " " + h.Glyph
		}
		return h.Label
	}
}

// cellText is the text of a body cell as drawn by the text renderers.
func cellText(c grid.BodyCell) string {
	switch c.Kind {
	case grid.CellCheckbox:
		return checkboxText(c.Checked, false)
	case grid.CellSkeleton:
		return grid.SkeletonText
	default:
		return c.Text
	}
}

func checkboxText(checked, indeterminate bool) string {
	switch {
	case checked:
		return "[x]"
	case indeterminate:
		return "[-]"
	default:
		return "[ ]"
	}
}

// dataColumns returns the indexes of headers that carry row data.
func dataColumns(d grid.Descriptor) []int {
	idx := make([]int, 0, len(d.Headers))
	for i, h := range d.Headers {
		if h.Kind != grid.CellCheckbox {
			idx = append(idx, i)
		}
	}
	return idx
}
