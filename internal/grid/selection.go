package grid

import "sort"

// Selection maps row keys to true. Absent keys are not selected; false is
// never stored.
type Selection map[string]bool

// Has reports whether key is selected.
func (s Selection) Has(key string) bool {
	return s[key]
}

// Len returns the number of selected keys.
func (s Selection) Len() int {
	return len(s)
}

// Keys returns the selected keys in sorted order.
func (s Selection) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns an independent copy of s. A nil selection clones to an empty one.
func (s Selection) Clone() Selection {
	out := make(Selection, len(s))
	for k := range s {
		out[k] = true
	}
	return out
}

// SelectAll replaces the selection with every key in keys, or empties it.
// It never merges with keys selected on other pages.
func SelectAll(keys []string, checked bool) Selection {
	if !checked {
		return Selection{}
	}
	out := make(Selection, len(keys))
	for _, k := range keys {
		out[k] = true
	}
	return out
}

// ToggleRow returns a copy of current with key inserted (checked) or removed.
func ToggleRow(current Selection, key string, checked bool) Selection {
	out := current.Clone()
	if checked {
		out[key] = true
	} else {
		delete(out, key)
	}
	return out
}

// Prune returns a copy of sel restricted to keys.
func Prune(sel Selection, keys []string) Selection {
	out := make(Selection, len(sel))
	for _, k := range keys {
		if sel[k] {
			out[k] = true
		}
	}
	return out
}

// SelectionSummary drives the header checkbox: All checks it, Some makes it
// indeterminate. All and Some are never both true.
type SelectionSummary struct {
	Count int
	All   bool
	Some  bool
}

// Summarize derives the header checkbox state for rowCount visible rows.
//
// Count is the size of sel, stale keys included. When sel holds keys from
// rows that are no longer visible, All can be true while some visible rows
// are unchecked, and Count can exceed rowCount. Callers that need the header
// to reflect only visible rows pass Prune(sel, visibleKeys). A Controller
// with Options.PruneStale keeps its selection pruned that way.
func Summarize(sel Selection, rowCount int) SelectionSummary {
	count := len(sel)
	all := rowCount > 0 && count == rowCount
	return SelectionSummary{
		Count: count,
		All:   all,
		Some:  count > 0 && !all,
	}
}
