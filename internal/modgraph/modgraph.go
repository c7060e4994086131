// Package modgraph builds the local import graph between indexed
// modules. Vertices are dotted module names, edges point from the
// importing module to the module it imports. External imports never
// enter the graph.
package modgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dominikbraun/graph"

	"github.com/mvp-joe/pymap/internal/store"
)

// Graph is the directed import graph of a project snapshot.
type Graph struct {
	g    graph.Graph[string, string]
	size int

	modules []string // sorted vertex names

	// Reverse indexes for O(1) lookups
	imports    map[string][]string // module -> modules it imports
	importedBy map[string][]string // module -> modules importing it
}

// Build constructs the import graph from a snapshot. Modules with
// failed analysis still appear as vertices, they just carry no edges.
func Build(snapshot *store.Snapshot) (*Graph, error) {
	g := &Graph{
		g:          graph.New(graph.StringHash, graph.Directed()),
		imports:    make(map[string][]string),
		importedBy: make(map[string][]string),
	}

	known := make(map[string]bool, len(snapshot.Files))
	for _, file := range snapshot.Files {
		if file.Module != "" {
			known[file.Module] = true
		}
	}

	for name := range known {
		if err := g.g.AddVertex(name); err != nil {
			return nil, fmt.Errorf("failed to add module %s: %w", name, err)
		}
	}

	for _, file := range snapshot.Files {
		if file.Module == "" {
			continue
		}
		for _, imp := range file.Imports {
			if !imp.Local {
				continue
			}
			target := resolveImport(imp.Module, known)
			if target == "" || target == file.Module {
				continue
			}
			if contains(g.imports[file.Module], target) {
				continue
			}
			if err := g.g.AddEdge(file.Module, target); err != nil {
				return nil, fmt.Errorf("failed to add import edge %s -> %s: %w", file.Module, target, err)
			}
			g.imports[file.Module] = append(g.imports[file.Module], target)
			g.importedBy[target] = append(g.importedBy[target], file.Module)
			g.size++
		}
	}

	g.modules = make([]string, 0, len(known))
	for name := range known {
		g.modules = append(g.modules, name)
	}
	sort.Strings(g.modules)
	for name := range g.imports {
		sort.Strings(g.imports[name])
	}
	for name := range g.importedBy {
		sort.Strings(g.importedBy[name])
	}

	return g, nil
}

// resolveImport maps a dotted import to the indexed module providing it.
// Importing a name from inside a module lands on that module, so
// "helpers.util.trim" resolves to "helpers.util" when no module named
// after the full import exists.
func resolveImport(name string, known map[string]bool) string {
	for name != "" {
		if known[name] {
			return name
		}
		dot := strings.LastIndex(name, ".")
		if dot < 0 {
			return ""
		}
		name = name[:dot]
	}
	return ""
}

// Modules lists every module in the graph, sorted by name.
func (g *Graph) Modules() []string {
	return g.modules
}

// Contains reports whether the module is a vertex of the graph.
func (g *Graph) Contains(module string) bool {
	_, err := g.g.Vertex(module)
	return err == nil
}

// Imports lists the local modules the given module imports, sorted.
func (g *Graph) Imports(module string) []string {
	return g.imports[module]
}

// ImportedBy lists the local modules importing the given module, sorted.
func (g *Graph) ImportedBy(module string) []string {
	return g.importedBy[module]
}

// Order is the number of modules in the graph.
func (g *Graph) Order() int {
	return len(g.modules)
}

// Size is the number of import edges in the graph.
func (g *Graph) Size() int {
	return g.size
}

// Cycles reports the import cycles in the graph. Every strongly
// connected component with two or more members is a cycle. Members are
// sorted by name, and cycles are sorted by their first member.
func (g *Graph) Cycles() ([][]string, error) {
	components, err := graph.StronglyConnectedComponents(g.g)
	if err != nil {
		return nil, fmt.Errorf("failed to compute strongly connected components: %w", err)
	}

	var cycles [][]string
	for _, component := range components {
		if len(component) < 2 {
			continue
		}
		sort.Strings(component)
		cycles = append(cycles, component)
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles, nil
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
