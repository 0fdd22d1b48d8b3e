package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile_Missing(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFile_PartialAppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[grid]\nprune_selection = true\n\n[db]\nurl = \"postgres://x\"\n"), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Grid.PruneSelection)
	assert.Equal(t, "postgres://x", cfg.DB.URL)
	assert.Equal(t, 25, cfg.Grid.PageSize)
	assert.Equal(t, 30, cfg.DB.Timeout)
	assert.Equal(t, "127.0.0.1:8080", cfg.Serve.Addr)
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := DefaultConfig()
	cfg.Grid.PageSize = 50
	require.NoError(t, cfg.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 50, loaded.Grid.PageSize)
}

func TestGetSetValue(t *testing.T) {
	cfg := DefaultConfig()

	v, ok := cfg.GetValue("grid.page_size")
	require.True(t, ok)
	assert.Equal(t, "25", v)

	require.NoError(t, cfg.SetValue("grid.pagesize", "40"))
	assert.Equal(t, 40, cfg.Grid.PageSize)

	require.NoError(t, cfg.SetValue("grid.prune_selection", "true"))
	assert.True(t, cfg.Grid.PruneSelection)
	v, _ = cfg.GetValue("grid.prune_selection")
	assert.Equal(t, "true", v)

	require.NoError(t, cfg.SetValue("db.url", "postgres://localhost/app"))
	assert.Equal(t, "postgres://localhost/app", cfg.DB.URL)

	_, ok = cfg.GetValue("grid.nope")
	assert.False(t, ok)
}

func TestSetValue_Validation(t *testing.T) {
	cfg := DefaultConfig()

	assert.ErrorContains(t, cfg.SetValue("grid.page_size", "0"), "below minimum")
	assert.ErrorContains(t, cfg.SetValue("grid.page_size", "20000"), "exceeds maximum")
	assert.ErrorContains(t, cfg.SetValue("grid.page_size", "ten"), "invalid integer")
	assert.ErrorContains(t, cfg.SetValue("grid.prune_selection", "maybe"), "invalid boolean")
	assert.ErrorContains(t, cfg.SetValue("nope.key", "1"), "unknown config key")
	assert.Equal(t, 25, cfg.Grid.PageSize)
}

func TestListKeysAndHelp(t *testing.T) {
	keys := ListKeys()
	assert.Contains(t, keys, "grid.page_size")
	assert.Contains(t, keys, "db.url")
	assert.Contains(t, keys, "serve.addr")
	assert.IsIncreasing(t, keys)

	help := GenerateHelpText()
	assert.Contains(t, help, "Grid:")
	assert.Contains(t, help, "(default: 25)")
}

func TestPath_EnvOverride(t *testing.T) {
	t.Setenv("PGRID_CONFIG", "/tmp/custom.toml")
	assert.Equal(t, "/tmp/custom.toml", Path())
}
