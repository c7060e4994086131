package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/mvp-joe/pymap/internal/modgraph"
	"github.com/mvp-joe/pymap/internal/store"
	"github.com/spf13/cobra"
)

var modulesCyclesFlag bool

// modulesCmd represents the modules command
var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "List local modules and their import relations",
	Long: `Modules lists every local module with its file path and its local
import counts: how many local modules it imports (out) and how many
import it (in).

With --cycles the import graph is checked for cycles instead.

Examples:
  # List modules with fan-out/fan-in
  pymap modules

  # Report import cycles
  pymap modules --cycles
`,
	RunE: runModules,
}

func init() {
	rootCmd.AddCommand(modulesCmd)
	modulesCmd.Flags().BoolVar(&modulesCyclesFlag, "cycles", false, "Report import cycles instead of the module list")
}

func runModules(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	rootDir, err := projectRoot()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	snapshot, err := loadSnapshot(ctx, rootDir, cfg)
	if err != nil {
		return err
	}

	g, err := modgraph.Build(snapshot)
	if err != nil {
		return fmt.Errorf("failed to build module graph: %w", err)
	}

	var lines []string
	if modulesCyclesFlag {
		cycles, err := g.Cycles()
		if err != nil {
			return fmt.Errorf("failed to detect cycles: %w", err)
		}
		lines = buildCycleLines(cycles)
	} else {
		lines = buildModuleLines(g, snapshot)
	}

	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

// buildModuleLines renders the module listing with aligned columns and a
// trailing summary line.
func buildModuleLines(g *modgraph.Graph, snapshot *store.Snapshot) []string {
	modules := g.Modules()
	if len(modules) == 0 {
		return []string{"No local modules indexed"}
	}

	nameWidth := 0
	pathWidth := 0
	paths := make(map[string]string, len(modules))
	for _, module := range modules {
		path := ""
		if record := snapshot.Module(module); record != nil {
			path = record.Path
		}
		paths[module] = path

		if len(module) > nameWidth {
			nameWidth = len(module)
		}
		if len(path) > pathWidth {
			pathWidth = len(path)
		}
	}

	lines := make([]string, 0, len(modules)+2)
	for _, module := range modules {
		lines = append(lines, fmt.Sprintf("%-*s  %-*s  out:%-3d in:%d",
			nameWidth, module, pathWidth, paths[module],
			len(g.Imports(module)), len(g.ImportedBy(module))))
	}
	lines = append(lines, "", fmt.Sprintf("%d module(s), %d local import edge(s)", g.Order(), g.Size()))
	return lines
}

// buildCycleLines renders the cycle report.
func buildCycleLines(cycles [][]string) []string {
	if len(cycles) == 0 {
		return []string{"No import cycles found"}
	}

	lines := make([]string, 0, len(cycles)+2)
	for i, cycle := range cycles {
		lines = append(lines, fmt.Sprintf("Cycle %d: %s", i+1, strings.Join(cycle, " -> ")))
	}
	lines = append(lines, "", fmt.Sprintf("%d cycle(s) found", len(cycles)))
	return lines
}
