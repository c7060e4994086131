package indexer

import (
	"fmt"
	"os"

	"github.com/maypok86/otter"

	"github.com/mvp-joe/pymap/internal/indexer/pysrc"
)

// analysisCache memoizes per-file analyses so watch-mode reruns only
// re-parse what changed. Keys combine path, size, and mtime, so any
// modification misses and the stale entry ages out.
type analysisCache struct {
	entries otter.Cache[string, *pysrc.Analysis]
}

func newAnalysisCache(capacity int) (*analysisCache, error) {
	entries, err := otter.MustBuilder[string, *pysrc.Analysis](capacity).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build analysis cache: %w", err)
	}
	return &analysisCache{entries: entries}, nil
}

// cacheKey builds the lookup key for a file at its current state.
func cacheKey(path string, info os.FileInfo) string {
	return fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
}

func (c *analysisCache) get(key string) (*pysrc.Analysis, bool) {
	return c.entries.Get(key)
}

func (c *analysisCache) put(key string, analysis *pysrc.Analysis) {
	c.entries.Set(key, analysis)
}

func (c *analysisCache) close() {
	c.entries.Close()
}
