package styles

import (
	"fmt"
	"os"
	"sync/atomic"

	"github.com/charmbracelet/lipgloss"
)

// Symbols - Unicode with ASCII fallbacks
const (
	SymbolSuccess = "✓"
	SymbolError   = "✗"
	SymbolWarning = "⚠"
	SymbolArrow   = "→"
)

var forceNoColor atomic.Bool

// SetNoColor disables colors for the rest of the process (--no-color)
func SetNoColor(v bool) {
	forceNoColor.Store(v)
}

// NoColor checks if colors should be disabled
func NoColor() bool {
	return forceNoColor.Load() || os.Getenv("NO_COLOR") != "" || os.Getenv("PGRID_NO_COLOR") != ""
}

// IsAccessible checks if accessibility mode is enabled
// When enabled: no animations, no spinner, simplified output
func IsAccessible() bool {
	return os.Getenv("PGRID_ACCESSIBLE") == "1" || os.Getenv("PGRID_ACCESSIBLE") == "true"
}

// Base text styles
var (
	Bold      = lipgloss.NewStyle().Bold(true)
	Dim       = lipgloss.NewStyle().Foreground(Muted)
	Underline = lipgloss.NewStyle().Underline(true)
)

// Semantic styles - use these instead of raw colors
var (
	// Message types
	SuccessStyle = lipgloss.NewStyle().Foreground(Success)
	ErrorStyle   = lipgloss.NewStyle().Foreground(Error)
	WarningStyle = lipgloss.NewStyle().Foreground(Warning)
	InfoStyle    = lipgloss.NewStyle().Foreground(Info)
	MutedStyle   = lipgloss.NewStyle().Foreground(Muted)

	// Grid display
	HeaderStyle   = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	SortStyle     = lipgloss.NewStyle().Foreground(ColorSortHint)
	CheckedStyle  = lipgloss.NewStyle().Foreground(ColorChecked)
	KeyStyle      = lipgloss.NewStyle().Foreground(ColorKey)
	NullStyle     = lipgloss.NewStyle().Foreground(ColorNull).Italic(true)
	SkeletonStyle = lipgloss.NewStyle().Foreground(ColorSkeleton)

	// Interactive TUI
	SelectedStyle = lipgloss.NewStyle().
			Background(BgHighlight).
			Foreground(TextPrimary)
	CheckedRowStyle = lipgloss.NewStyle().
			Background(BgSelected).
			Foreground(TextPrimary)

	// Help bar
	HelpKey   = lipgloss.NewStyle().Foreground(Accent)
	HelpValue = lipgloss.NewStyle().Foreground(Muted)
)

// ═══════════════════════════════════════════════════════════════════════════
// Render functions - centralized formatting with NoColor support
// ═══════════════════════════════════════════════════════════════════════════

// render applies a style if colors are enabled
func render(s lipgloss.Style, text string) string {
	if NoColor() {
		return text
	}
	return s.Render(text)
}

// Header formats a column header label
func Header(label string) string {
	return render(HeaderStyle, label)
}

// Checkbox formats a checkbox for the given state
func Checkbox(checked, indeterminate bool) string {
	switch {
	case checked:
		return render(CheckedStyle, "[x]")
	case indeterminate:
		return render(WarningStyle, "[-]")
	default:
		return "[ ]"
	}
}

// Skeleton formats a loading placeholder
func Skeleton(text string) string {
	return render(SkeletonStyle, text)
}

// Null formats a NULL cell
func Null(text string) string {
	return render(NullStyle, text)
}

// Key formats a row key
func Key(key string) string {
	return render(KeyStyle, key)
}

// ═══════════════════════════════════════════════════════════════════════════
// Message formatters - structured output
// ═══════════════════════════════════════════════════════════════════════════

// SuccessMsg formats a success message with checkmark
func SuccessMsg(msg string) string {
	symbol := SymbolSuccess
	if NoColor() {
		symbol = "+"
	}
	return fmt.Sprintf("%s %s", render(SuccessStyle, symbol), msg)
}

// ErrorMsg formats an error message
func ErrorMsg(title string) string {
	return render(ErrorStyle, "Error: "+title)
}

// WarningMsg formats a warning message
func WarningMsg(msg string) string {
	symbol := SymbolWarning
	if NoColor() {
		symbol = "!"
	}
	return fmt.Sprintf("%s %s", render(WarningStyle, symbol), msg)
}

// MutedMsg formats muted/secondary text
func MutedMsg(msg string) string {
	return render(MutedStyle, msg)
}

// ═══════════════════════════════════════════════════════════════════════════
// Section formatters - consistent output structure
// ═══════════════════════════════════════════════════════════════════════════

// SectionHeader formats a section header
func SectionHeader(title string) string {
	return render(Bold, title)
}

// HelpItem formats one key hint of a help bar
func HelpItem(key, desc string) string {
	return render(HelpKey, key) + " " + render(HelpValue, desc)
}
