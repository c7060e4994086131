// Package indexer walks a Python project, analyzes every Python file,
// and produces the four report files plus an optional persisted index.
// The filesystem is walked exactly once per run; analysis results are
// memoized so watch-mode reruns stay cheap.
package indexer

import (
	"context"
	"time"
)

// Indexer provides the main interface for indexing a project.
type Indexer interface {
	// Index runs one full indexing pass and returns its result.
	Index(ctx context.Context) (*Result, error)

	// Watch re-runs the index whenever project files change.
	// Blocks until context is cancelled.
	Watch(ctx context.Context) error

	// Close releases all resources held by the indexer.
	Close() error
}

// ResultSink persists indexing results. The indexer calls Persist after
// every successful run, including watch-mode reruns.
type ResultSink interface {
	Persist(ctx context.Context, result *Result) error
}

// DefaultOutputDir is where reports and the index database live,
// relative to the project root.
const DefaultOutputDir = ".pymap"

// Config contains configuration for the indexer.
type Config struct {
	// Root directory of the project to index
	RootDir string

	// Output directory for reports and the database, relative to RootDir
	// unless absolute. Always implicitly ignored during walks.
	OutputDir string

	// Glob patterns for entries to exclude. A trailing "/" restricts a
	// pattern to directories.
	IgnorePatterns []string

	// WriteReports enables the report files.
	WriteReports bool

	// CacheSize caps the number of memoized file analyses.
	CacheSize int

	// WatchDebounce is the quiet period before a watch-mode rerun.
	WatchDebounce time.Duration
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig(rootDir string) *Config {
	return &Config{
		RootDir:        rootDir,
		OutputDir:      DefaultOutputDir,
		IgnorePatterns: append([]string(nil), DefaultIgnorePatterns...),
		WriteReports:   true,
		CacheSize:      4096,
		WatchDebounce:  500 * time.Millisecond,
	}
}
