package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger_Levels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pgrid.log")

	quiet, err := newLogger(false, path)
	require.NoError(t, err)
	assert.False(t, quiet.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, quiet.Core().Enabled(zapcore.WarnLevel))

	quiet.Info("exported rows")
	require.NoError(t, quiet.Sync())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Empty(t, data)

	verbose, err := newLogger(true, path)
	require.NoError(t, err)
	assert.True(t, verbose.Core().Enabled(zapcore.DebugLevel))
}
