package source

import (
	"strconv"
	"strings"
)

// CompareValues orders two cell values: numbers numerically, NULL first,
// everything else lexically (case-insensitive, then case-sensitive).
func CompareValues(a, b string) int {
	if a == b {
		return 0
	}
	if a == "NULL" {
		return -1
	}
	if b == "NULL" {
		return 1
	}

	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	switch {
	case errA == nil && errB == nil:
		if fa < fb {
			return -1
		}
		if fa > fb {
			return 1
		}
		return strings.Compare(a, b)
	case errA == nil:
		return -1
	case errB == nil:
		return 1
	}

	if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
		return c
	}
	return strings.Compare(a, b)
}
