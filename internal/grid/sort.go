package grid

import (
	"fmt"
	"strings"
)

// SortDirection specifies the direction of sorting.
type SortDirection int

const (
	// SortNone indicates no sorting.
	SortNone SortDirection = iota
	// SortAscending indicates ascending sort order.
	SortAscending
	// SortDescending indicates descending sort order.
	SortDescending
)

// String returns the string representation of a SortDirection.
func (d SortDirection) String() string {
	switch d {
	case SortNone:
		return "none"
	case SortAscending:
		return "asc"
	case SortDescending:
		return "desc"
	default:
		return fmt.Sprintf("unknown(%d)", d)
	}
}

// Glyph returns the header indicator for the direction ("" when unsorted).
func (d SortDirection) Glyph() string {
	switch d {
	case SortAscending:
		return "▲"
	case SortDescending:
		return "▼"
	default:
		return ""
	}
}

// SortState is the single active sort of a grid. The zero value means unsorted.
type SortState struct {
	Key       string
	Direction SortDirection
}

// IsSorted returns true if this state represents an active sort.
func (s SortState) IsSorted() bool {
	return s.Key != "" && s.Direction != SortNone
}

// String renders the state as "key:asc" / "key:desc", or "" when unsorted.
func (s SortState) String() string {
	if !s.IsSorted() {
		return ""
	}
	return s.Key + ":" + s.Direction.String()
}

// ToggleSort returns the sort state after clicking the header of clickedKey.
// A new key always enters ascending; the same key cycles asc -> desc -> unsorted.
func ToggleSort(current SortState, clickedKey string) SortState {
	if !current.IsSorted() || current.Key != clickedKey {
		return SortState{Key: clickedKey, Direction: SortAscending}
	}
	if current.Direction == SortAscending {
		return SortState{Key: clickedKey, Direction: SortDescending}
	}
	return SortState{}
}

// ParseSort parses "key", "key:asc" or "key:desc". The direction is taken
// from the text after the last colon only when it names a direction, so
// keys may contain colons ("time:utc", "time:utc:desc"). An empty string
// yields the unsorted state.
func ParseSort(s string) (SortState, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return SortState{}, nil
	}

	key, dir := s, SortAscending
	if i := strings.LastIndex(s, ":"); i >= 0 {
		switch strings.ToLower(strings.TrimSpace(s[i+1:])) {
		case "asc", "ascending", "":
			key = s[:i]
		case "desc", "descending":
			key, dir = s[:i], SortDescending
		}
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return SortState{}, fmt.Errorf("%w: %q", ErrInvalidSort, s)
	}
	return SortState{Key: key, Direction: dir}, nil
}
