package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/vidyasagar/framehop/internal/nav"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreFile   = "file"
)

// Config holds framehop user configuration. It seeds the panel settings on
// first run; after that the persisted settings win.
type Config struct {
	Theme           string `json:"theme"`
	HistoryCapacity int    `json:"history_capacity"`
	ShowPageLabels  bool   `json:"show_page_labels"`
	DedupPolicy     string `json:"dedup_policy"` // "append" or "move-to-front"
	Store           string `json:"store"`        // "sqlite" or "file"
	Document        string `json:"document"`     // host document to open; empty uses the bundled sample
	LogLevel        string `json:"log_level"`
	path            string
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Theme:           string(nav.ThemeDark),
		HistoryCapacity: nav.DefaultCapacity,
		ShowPageLabels:  false,
		DedupPolicy:     nav.PolicyAppend.String(),
		Store:           StoreSQLite,
		LogLevel:        "info",
	}
}

// LoadConfig loads configuration from the standard config directory and
// applies environment overrides.
func LoadConfig() (*Config, error) {
	dir, err := configDir()
	if err != nil {
		return nil, err
	}
	return LoadConfigFile(filepath.Join(dir, "config.json"))
}

// LoadConfigFile loads configuration from path, writing the defaults there
// if the file does not exist yet.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	cfg.path = path

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Save default config.
			cfg.Save()
			cfg = applyEnvOverrides(cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.path = path
	cfg = applyEnvOverrides(cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg Config) Config {
	if val := os.Getenv("FRAMEHOP_THEME"); val != "" {
		cfg.Theme = val
	}
	if val := os.Getenv("FRAMEHOP_CAPACITY"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.HistoryCapacity = n
		}
	}
	if val := os.Getenv("FRAMEHOP_POLICY"); val != "" {
		cfg.DedupPolicy = val
	}
	if val := os.Getenv("FRAMEHOP_STORE"); val != "" {
		cfg.Store = val
	}
	if val := os.Getenv("FRAMEHOP_DOCUMENT"); val != "" {
		cfg.Document = val
	}
	return cfg
}

// Validate reports the first invalid field.
func (c *Config) Validate() error {
	if _, err := nav.ParseTheme(c.Theme); err != nil {
		return err
	}
	if !nav.ValidCapacity(c.HistoryCapacity) {
		return fmt.Errorf("%w: %d (want one of %v)", nav.ErrInvalidCapacity, c.HistoryCapacity, nav.Capacities)
	}
	if _, err := nav.ParsePolicy(c.DedupPolicy); err != nil {
		return err
	}
	if c.Store != StoreSQLite && c.Store != StoreFile {
		return fmt.Errorf("unknown store %q (want %s or %s)", c.Store, StoreSQLite, StoreFile)
	}
	return nil
}

// Settings returns the first-run panel settings described by the config.
// Invalid values are left for the tracker to repair.
func (c *Config) Settings() nav.Settings {
	theme, _ := nav.ParseTheme(c.Theme)
	return nav.Settings{
		ShowPageLabels:  c.ShowPageLabels,
		HistoryCapacity: c.HistoryCapacity,
		Theme:           theme,
	}
}

// Policy returns the configured dedup policy, defaulting to append.
func (c *Config) Policy() nav.Policy {
	p, _ := nav.ParsePolicy(c.DedupPolicy)
	return p
}

// Path returns the file the config was loaded from.
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	if c.path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		c.path = filepath.Join(dir, "config.json")
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	return os.WriteFile(c.path, data, 0o644)
}

// OpenStateStore opens the state store selected by the config in dataDir.
// The returned close function releases the database, if any.
func (c *Config) OpenStateStore(dataDir string) (ManagedStore, func() error, error) {
	switch c.Store {
	case StoreFile:
		fs, err := NewFileStateStore(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return fs, func() error { return nil }, nil
	case StoreSQLite, "":
		db, err := OpenDB(dataDir)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteStateStore(db), db.Close, nil
	}
	return nil, nil, fmt.Errorf("unknown store %q", c.Store)
}

// DataDir returns the data directory for persistent storage.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}

	var dir string
	switch runtime.GOOS {
	case "darwin":
		dir = filepath.Join(home, "Library", "Application Support", "framehop")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			dir = filepath.Join(appData, "framehop")
		} else {
			dir = filepath.Join(home, ".framehop")
		}
	default: // Linux, BSD, etc.
		xdgData := os.Getenv("XDG_DATA_HOME")
		if xdgData != "" {
			dir = filepath.Join(xdgData, "framehop")
		} else {
			dir = filepath.Join(home, ".local", "share", "framehop")
		}
	}

	return dir, nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home dir: %w", err)
	}

	var dir string
	switch runtime.GOOS {
	case "darwin":
		dir = filepath.Join(home, "Library", "Application Support", "framehop")
	case "windows":
		appData := os.Getenv("APPDATA")
		if appData != "" {
			dir = filepath.Join(appData, "framehop")
		} else {
			dir = filepath.Join(home, ".framehop")
		}
	default:
		xdgConfig := os.Getenv("XDG_CONFIG_HOME")
		if xdgConfig != "" {
			dir = filepath.Join(xdgConfig, "framehop")
		} else {
			dir = filepath.Join(home, ".config", "framehop")
		}
	}

	return dir, nil
}
