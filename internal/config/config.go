package config

import (
	"github.com/mvp-joe/pymap/internal/indexer"
)

// Config represents the complete pymap configuration.
// It can be loaded from .pymap/config.yml with environment variable overrides.
type Config struct {
	// OutputDir is where reports and the index database are written,
	// relative to the project root unless absolute.
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir"`

	// Ignore holds glob patterns for entries to exclude. A trailing "/"
	// restricts a pattern to directories.
	Ignore []string `yaml:"ignore" mapstructure:"ignore"`

	// Reports enables the plain-text report files.
	Reports bool `yaml:"reports" mapstructure:"reports"`

	// Database enables persisting the index to SQLite.
	Database bool `yaml:"database" mapstructure:"database"`

	// CacheSize caps the number of memoized file analyses.
	CacheSize int `yaml:"cache_size" mapstructure:"cache_size"`

	// WatchDebounceMS is the quiet period in milliseconds before a
	// watch-mode rerun.
	WatchDebounceMS int `yaml:"watch_debounce_ms" mapstructure:"watch_debounce_ms"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		OutputDir:       indexer.DefaultOutputDir,
		Ignore:          append([]string(nil), indexer.DefaultIgnorePatterns...),
		Reports:         true,
		Database:        true,
		CacheSize:       4096,
		WatchDebounceMS: 500,
	}
}
