package config

import (
	"path/filepath"
	"time"

	"github.com/mvp-joe/pymap/internal/indexer"
)

// DatabaseFileName is the SQLite database file inside the output directory.
const DatabaseFileName = "index.db"

// ToIndexerConfig converts a Config to an indexer.Config.
// The rootDir parameter specifies the root directory of the project to index.
func (c *Config) ToIndexerConfig(rootDir string) *indexer.Config {
	return &indexer.Config{
		RootDir:        rootDir,
		OutputDir:      c.OutputDir,
		IgnorePatterns: c.Ignore,
		WriteReports:   c.Reports,
		CacheSize:      c.CacheSize,
		WatchDebounce:  time.Duration(c.WatchDebounceMS) * time.Millisecond,
	}
}

// OutputPath resolves the output directory against a project root.
func (c *Config) OutputPath(rootDir string) string {
	if filepath.IsAbs(c.OutputDir) {
		return c.OutputDir
	}
	return filepath.Join(rootDir, c.OutputDir)
}

// DatabasePath returns the index database location for a project root.
func (c *Config) DatabasePath(rootDir string) string {
	return filepath.Join(c.OutputPath(rootDir), DatabaseFileName)
}
