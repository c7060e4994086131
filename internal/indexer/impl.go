package indexer

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/mvp-joe/pymap/internal/indexer/pysrc"
)

// indexer implements the Indexer interface.
type indexer struct {
	config   *Config
	ignore   *IgnoreSet
	analyzer *pysrc.Analyzer
	cache    *analysisCache
	sink     ResultSink
	progress ProgressReporter

	// mu serializes indexing runs; watch-mode reruns never overlap.
	mu sync.Mutex
}

// New creates an indexer for the configured project. sink may be nil to
// skip persistence, progress may be nil for silent operation.
func New(config *Config, sink ResultSink, progress ProgressReporter) (Indexer, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.RootDir == "" {
		return nil, fmt.Errorf("root directory is required")
	}
	if config.OutputDir == "" {
		config.OutputDir = DefaultOutputDir
	}
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}

	// The output directory is never indexed, whatever the patterns say.
	patterns := append([]string(nil), config.IgnorePatterns...)
	patterns = append(patterns, filepath.Base(config.OutputDir)+"/")
	ignore, err := NewIgnoreSet(patterns)
	if err != nil {
		return nil, err
	}

	cacheSize := config.CacheSize
	if cacheSize <= 0 {
		cacheSize = 4096
	}
	cache, err := newAnalysisCache(cacheSize)
	if err != nil {
		return nil, err
	}

	return &indexer{
		config:   config,
		ignore:   ignore,
		analyzer: pysrc.NewAnalyzer(),
		cache:    cache,
		sink:     sink,
		progress: progress,
	}, nil
}

// Close releases all resources held by the indexer.
func (idx *indexer) Close() error {
	idx.cache.close()
	return nil
}

// Index runs one full indexing pass.
func (idx *indexer) Index(ctx context.Context) (*Result, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.run(ctx)
}

func (idx *indexer) run(ctx context.Context) (*Result, error) {
	start := time.Now()

	idx.progress.OnWalkStart()
	w := newWalker(idx.config.RootDir, idx.ignore)
	tree := w.walk()
	idx.progress.OnWalkComplete(len(w.pyFiles))

	result := &Result{
		Root:    idx.config.RootDir,
		Modules: make(map[string]string),
		Stats:   w.stats,
	}

	files := make(map[string]*FileIndex, len(w.pyFiles))
	for _, rel := range w.pyFiles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fi := idx.analyzeFile(rel, result)
		files[rel] = fi
		result.Files = append(result.Files, fi)
		result.Modules[fi.Module] = rel
		idx.progress.OnFileAnalyzed(rel)
	}

	result.Externals = classifyExternals(result.Files, result.Modules)

	if idx.config.WriteReports {
		if err := idx.writeReports(tree, files, result); err != nil {
			return nil, err
		}
		idx.progress.OnReportsWritten(idx.outputPath())
	}

	if idx.sink != nil {
		if err := idx.sink.Persist(ctx, result); err != nil {
			return nil, fmt.Errorf("failed to persist index: %w", err)
		}
	}

	for _, failure := range result.Failures {
		log.Printf("Warning: skipped %s: %v", failure.Path, failure.Err)
	}

	result.Duration = time.Since(start)
	idx.progress.OnComplete(result)
	return result, nil
}

// analyzeFile analyzes one Python file, consulting the cache first. A
// failed file still yields an entry so the reports can list it; the
// failure itself is recorded on the result.
func (idx *indexer) analyzeFile(rel string, result *Result) *FileIndex {
	fi := &FileIndex{
		Path:    rel,
		Module:  moduleName(rel),
		Imports: map[string]bool{},
		Calls:   map[string]bool{},
	}

	fullPath := filepath.Join(idx.config.RootDir, filepath.FromSlash(rel))

	var key string
	if info, err := os.Stat(fullPath); err == nil {
		key = cacheKey(rel, info)
		if analysis, ok := idx.cache.get(key); ok {
			fi.apply(analysis)
			return fi
		}
	}

	source, err := os.ReadFile(fullPath)
	if err != nil {
		fi.Failed = true
		result.Failures = append(result.Failures, FileFailure{Path: rel, Err: err})
		return fi
	}

	analysis, err := idx.analyzer.Analyze(source)
	if err != nil {
		fi.Failed = true
		result.Failures = append(result.Failures, FileFailure{Path: rel, Err: err})
		return fi
	}

	if key != "" {
		idx.cache.put(key, analysis)
	}
	fi.apply(analysis)
	return fi
}

// writeReports renders and atomically writes the four report files.
func (idx *indexer) writeReports(tree *treeEntry, files map[string]*FileIndex, result *Result) error {
	writer, err := NewAtomicWriter(idx.outputPath())
	if err != nil {
		return err
	}
	defer writer.Cleanup()

	reports := []struct {
		name   string
		header string
		lines  []string
	}{
		{TreeFilesReport, treeFilesHeader, renderFileTree(tree, "", files)},
		{MapDefinitionsReport, mapDefinitionsHeader, renderDefinitions(tree, "", files)},
		{DependenciesReport, dependenciesHeader, buildDependencyLines(result)},
		{StatReport, statHeader, buildStatsLines(result.Stats)},
	}
	for _, report := range reports {
		if err := writer.WriteReport(report.name, report.header, report.lines); err != nil {
			return err
		}
	}
	return nil
}

// outputPath resolves the output directory against the project root.
func (idx *indexer) outputPath() string {
	if filepath.IsAbs(idx.config.OutputDir) {
		return idx.config.OutputDir
	}
	return filepath.Join(idx.config.RootDir, idx.config.OutputDir)
}
