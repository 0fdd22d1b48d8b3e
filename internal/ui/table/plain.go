package table

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/imgajeed76/pgrid/internal/grid"
)

// NullText is how sources spell SQL NULL in cell text.
const NullText = "NULL"

// PrintJSON outputs the data rows of d as a JSON array of objects keyed by
// column key. Selectable grids add a "_selected" field per row.
func PrintJSON(w io.Writer, d grid.Descriptor) error {
	cols := dataColumns(d)
	results := make([]map[string]any, 0, len(d.Rows))

	for _, row := range d.Rows {
		if row.Skeleton {
			continue
		}
		obj := make(map[string]any, len(cols)+1)
		for _, i := range cols {
			key := d.Headers[i].Key
			if i >= len(row.Cells) || row.Cells[i].Text == NullText {
				obj[key] = nil
				continue
			}
			obj[key] = row.Cells[i].Text
		}
		if d.Selectable {
			obj["_selected"] = row.Selected
		}
		results = append(results, obj)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

// PrintRaw outputs the data rows of d as tab-separated values.
func PrintRaw(w io.Writer, d grid.Descriptor) error {
	cols := dataColumns(d)
	for _, row := range d.Rows {
		if row.Skeleton {
			continue
		}
		vals := make([]string, 0, len(cols))
		for _, i := range cols {
			if i < len(row.Cells) {
				vals = append(vals, row.Cells[i].Text)
			}
		}
		if _, err := fmt.Fprintln(w, strings.Join(vals, "\t")); err != nil {
			return err
		}
	}
	return nil
}

// PrintPlain prints a properly aligned table for non-TTY output.
// Shows full content without truncation.
func PrintPlain(w io.Writer, d grid.Descriptor) error {
	if len(d.Headers) == 0 {
		_, err := fmt.Fprintln(w, "(0 columns)")
		return err
	}

	var sb strings.Builder

	// Calculate column widths based on actual content (no truncation)
	colWidths := make([]int, len(d.Headers))
	for i, h := range d.Headers {
		colWidths[i] = lipgloss.Width(headerText(h))
	}
	for _, row := range d.Rows {
		for i, c := range row.Cells {
			if i < len(colWidths) {
				colWidths[i] = max(colWidths[i], lipgloss.Width(cellText(c)))
			}
		}
	}

	// Header
	for i, h := range d.Headers {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(pad(headerText(h), colWidths[i]))
	}
	sb.WriteString("\n")

	// Separator
	for i, w := range colWidths {
		if i > 0 {
			sb.WriteString("  ")
		}
		sb.WriteString(strings.Repeat("─", w))
	}
	sb.WriteString("\n")

	if d.Empty {
		sb.WriteString(d.EmptyText)
		sb.WriteString("\n")
	}

	for _, row := range d.Rows {
		for i, c := range row.Cells {
			if i >= len(colWidths) {
				break
			}
			if i > 0 {
				sb.WriteString("  ")
			}
			sb.WriteString(pad(cellText(c), colWidths[i]))
		}
		sb.WriteString("\n")
	}

	if footer := footerText(d); footer != "" {
		sb.WriteString("\n")
		sb.WriteString(footer)
		sb.WriteString("\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// footerText is the pagination caption plus the selection count, if any.
func footerText(d grid.Descriptor) string {
	var parts []string
	if d.ShowPagination() {
		p := d.Pagination
		parts = append(parts, fmt.Sprintf("%s (page %d of %d)", p.Caption(), p.Page, p.PageCount()))
	}
	if d.Selectable && d.Selection.Count > 0 {
		parts = append(parts, fmt.Sprintf("%d selected", d.Selection.Count))
	}
	return strings.Join(parts, " · ")
}

// pad adds spaces to reach the desired width (no truncation).
func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// Truncate shortens a string to fit width, adding "..." if needed.
func Truncate(s string, width int) string {
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width > 3 {
		return string(runes[:width-3]) + "..."
	}
	return string(runes[:width])
}

// PadOrTruncate pads or truncates to exact width (for TUI table).
func PadOrTruncate(s string, width int) string {
	n := len([]rune(s))
	if n > width {
		return Truncate(s, width)
	}
	return s + strings.Repeat(" ", width-n)
}
