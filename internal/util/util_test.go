package util

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGridErrorFormat(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := DatabaseConnectionError("postgres://localhost/db", cause)

	out := err.Format()
	assert.True(t, strings.HasPrefix(out, "Error: Cannot connect to database\n"))
	assert.Contains(t, out, "postgres://localhost/db")
	assert.Contains(t, out, "Possible causes:")
	assert.Contains(t, out, "• Database server is not running")
	assert.Contains(t, out, "Try:")
	assert.ErrorIs(t, err, cause)
}

func TestNoSourceError(t *testing.T) {
	err := NoSourceError()
	var ge *GridError
	require.ErrorAs(t, error(err), &ge)
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestExportFileName(t *testing.T) {
	name := ExportFileName("selection", "json")
	require.True(t, strings.HasPrefix(name, "selection-"))
	require.True(t, strings.HasSuffix(name, ".json"))

	id := strings.TrimSuffix(strings.TrimPrefix(name, "selection-"), ".json")
	assert.True(t, ValidateULID(strings.ToUpper(id)))
	assert.NotEqual(t, name, ExportFileName("selection", "json"))
}

func TestToValidUTF8(t *testing.T) {
	assert.Equal(t, "plain", ToValidUTF8("plain"))
	// "café" in ISO-8859-1
	assert.Equal(t, "café", ToValidUTF8("caf\xe9"))
}
