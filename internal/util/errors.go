package util

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors used throughout pgrid
var (
	ErrNoSource         = errors.New("no data source given (CSV file or --db/--table)")
	ErrConflictingInput = errors.New("both a CSV file and --table were given")
	ErrNotConnected     = errors.New("not connected to database")
	ErrNothingSelected  = errors.New("nothing selected")
)

// GridError is a structured error with context and suggestions
type GridError struct {
	Title       string   // Short error title
	Message     string   // Detailed message
	Context     string   // What was being attempted
	Causes      []string // Possible causes
	Suggestions []string // Actionable suggestions with commands
	Err         error    // Wrapped error
}

func (e *GridError) Error() string {
	return e.Title
}

func (e *GridError) Unwrap() error {
	return e.Err
}

// Format returns a nicely formatted error message
func (e *GridError) Format() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Error: %s\n", e.Title))

	if e.Message != "" {
		sb.WriteString(fmt.Sprintf("\n  %s\n", e.Message))
	}
	if e.Context != "" {
		sb.WriteString(fmt.Sprintf("\n  %s\n", e.Context))
	}

	if len(e.Causes) > 0 {
		sb.WriteString("\n  Possible causes:\n")
		for _, cause := range e.Causes {
			sb.WriteString(fmt.Sprintf("    • %s\n", cause))
		}
	}

	if len(e.Suggestions) > 0 {
		sb.WriteString("\n  Try:\n")
		for _, sug := range e.Suggestions {
			sb.WriteString(fmt.Sprintf("    $ %s\n", sug))
		}
	}

	return sb.String()
}

// NewError creates a new GridError
func NewError(title string) *GridError {
	return &GridError{Title: title}
}

// WithMessage adds a detailed message
func (e *GridError) WithMessage(msg string) *GridError {
	e.Message = msg
	return e
}

// WithContext adds context about what was being attempted
func (e *GridError) WithContext(ctx string) *GridError {
	e.Context = ctx
	return e
}

// WithCauses adds possible causes
func (e *GridError) WithCauses(causes ...string) *GridError {
	e.Causes = append(e.Causes, causes...)
	return e
}

// WithSuggestions adds actionable suggestions
func (e *GridError) WithSuggestions(sugs ...string) *GridError {
	e.Suggestions = append(e.Suggestions, sugs...)
	return e
}

// Wrap wraps an underlying error
func (e *GridError) Wrap(err error) *GridError {
	e.Err = err
	return e
}

// ══════════════════════════════════════════════════════════════════════════
// Pre-built error constructors for common cases
// ══════════════════════════════════════════════════════════════════════════

// NoSourceError returns a structured error for a missing data source
func NoSourceError() *GridError {
	return NewError("No data source").
		WithMessage("pgrid needs a CSV file or a PostgreSQL table to show").
		WithSuggestions(
			"pgrid view data.csv                       # View a CSV file",
			"pgrid view --db postgres://... --table t  # View a table",
			"pgrid config db.url postgres://...        # Store a default database",
		).
		Wrap(ErrNoSource)
}

// DatabaseConnectionError returns a structured error for DB connection issues
func DatabaseConnectionError(url string, err error) *GridError {
	return NewError("Cannot connect to database").
		WithContext(url).
		WithCauses(
			"Database server is not running",
			"Invalid connection credentials",
			"Network connectivity issues",
			"Database does not exist",
		).
		WithSuggestions(
			"psql \"" + url + "\"   # Check the URL by hand",
		).
		Wrap(err)
}

// DuplicateKeyError returns a structured error for rows sharing a key
func DuplicateKeyError(keyColumn string, err error) *GridError {
	return NewError("Row keys are not unique").
		WithMessage(err.Error()).
		WithContext(fmt.Sprintf("Rows are identified by column '%s'", keyColumn)).
		WithSuggestions("--key <column>          # Pick a column with unique values").
		Wrap(err)
}

// UnknownColumnError returns a structured error for a bad column name
func UnknownColumnError(name string, columns []string, err error) *GridError {
	return NewError(fmt.Sprintf("Unknown column '%s'", name)).
		WithMessage("Available columns: " + strings.Join(columns, ", ")).
		Wrap(err)
}
