// Package pysrc analyzes Python source files using tree-sitter. For each
// file it extracts the nested definition structure (functions, classes,
// and their documentation) along with the file's dependencies: the modules
// it imports and the dotted names it calls.
package pysrc

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

// EntityKind identifies what an extracted entity represents.
type EntityKind string

const (
	KindFunction      EntityKind = "Function"
	KindAsyncFunction EntityKind = "Async Function"
	KindClass         EntityKind = "Class"
	KindArgs          EntityKind = "Args"
	KindReturns       EntityKind = "Returns"
)

// Section reports whether the entity is a synthesized Args or Returns
// section rather than a real definition.
func (k EntityKind) Section() bool {
	return k == KindArgs || k == KindReturns
}

// Entity is one node in a file's definition tree. Definitions carry their
// name and a one-line annotation assembled from preceding comments and the
// docstring summary. Args and Returns sections have no name and hold their
// lines in Annotation, newline separated.
type Entity struct {
	Kind       EntityKind `json:"kind"`
	Name       string     `json:"name"`
	Annotation string     `json:"annotation,omitempty"`
	Children   []Entity   `json:"children,omitempty"`
}

// Analysis is the full result of analyzing one Python source file.
type Analysis struct {
	// ModuleDoc is the cleaned module-level docstring, or "".
	ModuleDoc string

	// Entities holds the top-level definitions in source order.
	Entities []Entity

	// Imports holds every module name the file imports.
	Imports map[string]bool

	// Calls holds every dotted name the file calls.
	Calls map[string]bool
}

var (
	// ErrDecode reports source bytes that are not valid UTF-8 text.
	ErrDecode = errors.New("source is not valid UTF-8")

	// ErrParse reports source that does not form a valid syntax tree.
	ErrParse = errors.New("source failed to parse")
)

// Analyzer extracts structure and dependencies from Python sources. It is
// safe for concurrent use; each Analyze call runs its own parser.
type Analyzer struct {
	language *sitter.Language
}

// NewAnalyzer creates an Analyzer with the Python grammar loaded.
func NewAnalyzer() *Analyzer {
	return &Analyzer{language: sitter.NewLanguage(python.Language())}
}

// Analyze parses source and extracts the module docstring, the definition
// tree, and the dependency sets. It returns ErrDecode for non-UTF-8 input
// and ErrParse when the source contains syntax errors.
func (a *Analyzer) Analyze(source []byte) (*Analysis, error) {
	if !utf8.Valid(source) {
		return nil, ErrDecode
	}

	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(a.language); err != nil {
		return nil, fmt.Errorf("failed to set parser language: %w", err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, ErrParse
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil || root.HasError() {
		return nil, ErrParse
	}

	lines := strings.Split(string(source), "\n")
	imports, calls := collectDependencies(root, source)

	return &Analysis{
		ModuleDoc: docstringText(root, source),
		Entities:  extractEntities(statementsOf(root), source, lines),
		Imports:   imports,
		Calls:     calls,
	}, nil
}
