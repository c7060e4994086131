package indexer

import (
	"time"

	"github.com/mvp-joe/pymap/internal/indexer/pysrc"
)

// FileIndex is the analysis output for one Python file.
type FileIndex struct {
	// Path is the file's slash-separated path relative to the project root.
	Path string `json:"path"`

	// Module is the dotted module name derived from Path.
	Module string `json:"module"`

	// Doc is the module-level docstring, or "".
	Doc string `json:"doc,omitempty"`

	// Entities holds the file's top-level definitions in source order.
	Entities []pysrc.Entity `json:"entities,omitempty"`

	// Imports holds the module names the file imports.
	Imports map[string]bool `json:"imports,omitempty"`

	// Calls holds the dotted names the file calls.
	Calls map[string]bool `json:"calls,omitempty"`

	// Failed marks a file whose read or analysis failed. Such files keep
	// their place in the reports with empty content.
	Failed bool `json:"failed,omitempty"`
}

// apply copies a completed analysis into the file entry.
func (fi *FileIndex) apply(analysis *pysrc.Analysis) {
	fi.Doc = analysis.ModuleDoc
	fi.Entities = analysis.Entities
	fi.Imports = analysis.Imports
	fi.Calls = analysis.Calls
}

// Stats holds project-level counts over the walked tree. Ignored and
// hidden entries are excluded throughout.
type Stats struct {
	Directories int   `json:"directories"`
	Files       int   `json:"files"`
	Lines       int64 `json:"lines"`
	Bytes       int64 `json:"bytes"`
}

// FileFailure records a file that was skipped after a read, decode, or
// parse failure.
type FileFailure struct {
	Path string
	Err  error
}

// Result is the outcome of one indexing run.
type Result struct {
	// Root is the indexed project root.
	Root string

	// Files holds every analyzed Python file in walk order: the files of
	// a directory first, then its subdirectories, lexicographically.
	Files []*FileIndex

	// Modules maps dotted module names to relative file paths. When two
	// files claim the same name, the later one in walk order wins.
	Modules map[string]string

	// Externals is the sorted set of imported top-level names that do
	// not resolve to a local module.
	Externals []string

	// Stats holds the tree-level counts.
	Stats Stats

	// Failures lists files skipped during analysis.
	Failures []FileFailure

	// Duration is the wall-clock time of the run.
	Duration time.Duration
}
