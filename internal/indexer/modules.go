package indexer

import (
	"sort"
	"strings"
)

// moduleName converts a relative file path to its dotted module name.
// Package __init__ files name the package itself, so "pkg/__init__.py"
// becomes "pkg" while "pkg/sub/mod.py" becomes "pkg.sub.mod". An
// __init__.py at the project root yields the empty module name.
func moduleName(rel string) string {
	parts := strings.Split(rel, "/")
	if parts[len(parts)-1] == "__init__.py" {
		return strings.Join(parts[:len(parts)-1], ".")
	}
	return strings.TrimSuffix(strings.Join(parts, "."), ".py")
}

// classifyExternals returns the sorted set of imported top-level names
// that do not appear as local module names. The whole dotted import is
// reduced to its first segment before the lookup, so "import pkg.sub"
// stays local only when "pkg" itself is a known module.
func classifyExternals(files []*FileIndex, modules map[string]string) []string {
	seen := make(map[string]bool)
	for _, f := range files {
		for module := range f.Imports {
			top := module
			if i := strings.Index(module, "."); i >= 0 {
				top = module[:i]
			}
			if _, local := modules[top]; !local {
				seen[top] = true
			}
		}
	}

	externals := make([]string, 0, len(seen))
	for name := range seen {
		externals = append(externals, name)
	}
	sort.Strings(externals)
	return externals
}
