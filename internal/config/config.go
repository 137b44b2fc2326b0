// Package config loads the TOML user configuration from ~/.taildeck.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/BurntSushi/toml"
)

// FileName is the TOML config file for user preferences.
const FileName = "config.toml"

// Config represents user-facing configuration in TOML format.
type Config struct {
	// Theme sets the color scheme: "dark" (default), "light", or "system"
	Theme string `toml:"theme"`

	// Stream tunes the incremental renderer
	Stream StreamSettings `toml:"stream"`

	// Logs defines debug log settings
	Logs LogSettings `toml:"logs"`

	// History defines the recent-subjects store settings
	History HistorySettings `toml:"history"`
}

// StreamSettings tunes the renderer's scroll behavior.
type StreamSettings struct {
	// QuietWindowMS is the debounce interval for bursty updates.
	// 0 disables batching; unset (-1) selects the 100ms default.
	QuietWindowMS int `toml:"quiet_window_ms"`

	// BurstThreshold is the per-commit growth at which the deferred
	// bottom pin kicks in (default 10).
	BurstThreshold int `toml:"burst_threshold"`

	// BottomTolerance is how many rows from the end still count as
	// "at bottom" (default 50).
	BottomTolerance int `toml:"bottom_tolerance"`
}

// LogSettings controls the debug log.
type LogSettings struct {
	DebugLevel  string `toml:"debug_level"`  // debug, info, warn, error
	DebugFormat string `toml:"debug_format"` // json, text
	MaxSizeMB   int    `toml:"max_size_mb"`
	MaxBackups  int    `toml:"max_backups"`
	MaxAgeDays  int    `toml:"max_age_days"`
}

// HistorySettings controls the recent-subjects store.
type HistorySettings struct {
	// Enabled turns subject history on (default true).
	Enabled *bool `toml:"enabled"`

	// Limit caps how many recent subjects are kept (default 50).
	Limit int `toml:"limit"`
}

// HistoryEnabled resolves the optional flag.
func (h HistorySettings) HistoryEnabled() bool {
	if h.Enabled == nil {
		return true
	}
	return *h.Enabled
}

var (
	loadOnce sync.Once
	loaded   *Config
	loadErr  error
)

// Dir returns the taildeck base directory, honoring TAILDECK_DIR.
func Dir() (string, error) {
	if dir := os.Getenv("TAILDECK_DIR"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: home dir: %w", err)
	}
	return filepath.Join(home, ".taildeck"), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Theme: "dark",
		Stream: StreamSettings{
			QuietWindowMS:   -1,
			BurstThreshold:  0,
			BottomTolerance: 0,
		},
		History: HistorySettings{Limit: 50},
	}
}

// Load reads and caches ~/.taildeck/config.toml. A missing file is not an
// error; defaults apply. A malformed file is an error so typos do not
// silently fall back to defaults.
func Load() (*Config, error) {
	loadOnce.Do(func() {
		loaded, loadErr = load()
	})
	return loaded, loadErr
}

func load() (*Config, error) {
	cfg := Default()

	dir, err := Dir()
	if err != nil {
		return cfg, nil
	}
	path := filepath.Join(dir, FileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a TOML document over the defaults, for tests and tooling.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
