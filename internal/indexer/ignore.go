package indexer

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// DefaultIgnorePatterns is the stock exclusion list applied when a
// project configures nothing else. Patterns ending in "/" match
// directories only; all other patterns match files and directories alike.
var DefaultIgnorePatterns = []string{
	"__pycache__",
	".pymap/",
	"venv/",
	"env/",
	"logs/",
	".*",
	"*.md",
	"*.txt",
	"*.csv",
	"*.db",
	"Dockerfile",
}

// compiledPattern pairs an ignore pattern with its compiled matcher.
type compiledPattern struct {
	pattern string
	dirOnly bool
	glob    glob.Glob
}

// IgnoreSet decides which files and directories are excluded from every
// walk. Matching is by entry name, not by path.
type IgnoreSet struct {
	patterns []compiledPattern
}

// NewIgnoreSet compiles the given glob patterns. A trailing "/" restricts
// a pattern to directories.
func NewIgnoreSet(patterns []string) (*IgnoreSet, error) {
	set := &IgnoreSet{}
	for _, pattern := range patterns {
		if pattern == "" {
			continue
		}
		compiled, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid ignore pattern %q: %w", pattern, err)
		}
		set.patterns = append(set.patterns, compiledPattern{
			pattern: pattern,
			dirOnly: strings.HasSuffix(pattern, "/"),
			glob:    compiled,
		})
	}
	return set, nil
}

// Match reports whether an entry with the given name is ignored.
func (s *IgnoreSet) Match(name string, isDir bool) bool {
	for _, cp := range s.patterns {
		if cp.dirOnly {
			if isDir && cp.glob.Match(name+"/") {
				return true
			}
			continue
		}
		if cp.glob.Match(name) {
			return true
		}
	}
	return false
}
