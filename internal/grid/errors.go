package grid

import "errors"

// Common errors returned by the grid package.
var (
	// ErrDuplicateRowKey is returned by Validate when two rows share a key.
	ErrDuplicateRowKey = errors.New("duplicate row key")

	// ErrInvalidSort is returned when a sort expression cannot be parsed.
	ErrInvalidSort = errors.New("invalid sort expression")
)
