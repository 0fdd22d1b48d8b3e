package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config represents pgrid's settings stored in the user's config directory
type Config struct {
	Grid  GridConfig  `toml:"grid"`
	DB    DBConfig    `toml:"db"`
	Serve ServeConfig `toml:"serve"`
}

// GridConfig contains defaults for every grid pgrid shows
type GridConfig struct {
	PageSize       int    `toml:"page_size" config:"grid.page_size" default:"25" min:"1" max:"10000" desc:"Rows per page"`
	SkeletonRows   int    `toml:"skeleton_rows" config:"grid.skeleton_rows" default:"5" min:"1" max:"100" desc:"Placeholder rows while loading without pagination"`
	ColumnWidth    int    `toml:"column_width" config:"grid.column_width" default:"20" min:"3" max:"500" desc:"Default column width in the interactive view"`
	EmptyText      string `toml:"empty_text" config:"grid.empty_text" default:"No data" desc:"Placeholder shown when there are no rows"`
	PruneSelection bool   `toml:"prune_selection" config:"grid.prune_selection" default:"false" desc:"Drop selected rows that leave the current page"`
}

// DBConfig contains the default PostgreSQL connection
type DBConfig struct {
	URL     string `toml:"url" config:"db.url" desc:"PostgreSQL connection URL"`
	Timeout int    `toml:"timeout" config:"db.timeout" default:"30" min:"1" max:"3600" desc:"Query timeout in seconds"`
}

// ServeConfig contains the HTTP viewer settings
type ServeConfig struct {
	Addr string `toml:"addr" config:"serve.addr" default:"127.0.0.1:8080" desc:"Listen address for pgrid serve"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		Grid: GridConfig{
			PageSize:     25,
			SkeletonRows: 5,
			ColumnWidth:  20,
			EmptyText:    "No data",
		},
		DB: DBConfig{
			Timeout: 30,
		},
		Serve: ServeConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// Path returns the path to the config file. PGRID_CONFIG overrides it;
// otherwise it follows XDG on Linux and platform conventions elsewhere.
func Path() string {
	if p := os.Getenv("PGRID_CONFIG"); p != "" {
		return p
	}

	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, _ := os.UserHomeDir()
		configDir = filepath.Join(home, "Library", "Application Support", "pgrid")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "pgrid")
	default: // Linux and others - follow XDG
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			configDir = filepath.Join(xdg, "pgrid")
		} else {
			home, _ := os.UserHomeDir()
			configDir = filepath.Join(home, ".config", "pgrid")
		}
	}

	return filepath.Join(configDir, "config.toml")
}

// Load reads the config file, falling back to defaults if it doesn't exist
func Load() (*Config, error) {
	return LoadFile(Path())
}

// LoadFile reads the config at path, falling back to defaults if it doesn't exist
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	// Apply defaults for any missing values
	defaults := DefaultConfig()

	if cfg.Grid.PageSize == 0 {
		cfg.Grid.PageSize = defaults.Grid.PageSize
	}
	if cfg.Grid.SkeletonRows == 0 {
		cfg.Grid.SkeletonRows = defaults.Grid.SkeletonRows
	}
	if cfg.Grid.ColumnWidth == 0 {
		cfg.Grid.ColumnWidth = defaults.Grid.ColumnWidth
	}
	// NOTE: EmptyText is not defaulted: an explicit "" is honoured by the grid
	// as "use the built-in placeholder".
	if cfg.DB.Timeout == 0 {
		cfg.DB.Timeout = defaults.DB.Timeout
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = defaults.Serve.Addr
	}

	return cfg, nil
}

// Save writes the config file
func (c *Config) Save() error {
	return c.SaveFile(Path())
}

// SaveFile writes the config to path
func (c *Config) SaveFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	return encoder.Encode(c)
}

// GetValue returns a config value by key (uses reflection)
func (c *Config) GetValue(key string) (string, bool) {
	return getFieldValue(c, key)
}

// SetValue sets a config value by key (uses reflection with validation)
func (c *Config) SetValue(key, value string) error {
	return setFieldValue(c, key, value)
}
