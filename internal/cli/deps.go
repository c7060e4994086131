package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/mvp-joe/pymap/internal/store"
	"github.com/spf13/cobra"
)

// depsCmd represents the deps command
var depsCmd = &cobra.Command{
	Use:   "deps [file]",
	Short: "Show dependencies for one file or the project's external libraries",
	Long: `Deps prints the imported modules and used functions/classes recorded
for one Python file. Without a file argument it prints the project's
external libraries instead.

Examples:
  # External libraries of the whole project
  pymap deps

  # Dependencies of one file
  pymap deps helpers/util.py
`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDeps,
}

func init() {
	rootCmd.AddCommand(depsCmd)
}

func runDeps(cmd *cobra.Command, args []string) error {
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

	var lines []string
	if len(args) == 0 {
		lines = buildExternalsLines(snapshot)
	} else {
		record := snapshot.File(normalizeDepPath(rootDir, args[0]))
		if record == nil {
			return fmt.Errorf("file %q is not in the index", args[0])
		}
		lines = buildFileDepsLines(record)
	}

	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

// buildExternalsLines renders the project-level external library summary.
func buildExternalsLines(snapshot *store.Snapshot) []string {
	lines := []string{"Project External Libraries:"}
	if len(snapshot.Externals) == 0 {
		return append(lines, "  (none)")
	}
	for _, lib := range snapshot.Externals {
		lines = append(lines, "  - "+lib)
	}
	return lines
}

// buildFileDepsLines renders the dependency report for one file.
func buildFileDepsLines(record *store.FileRecord) []string {
	lines := []string{"File: " + record.Path}
	if record.Module != "" {
		lines = append(lines, "Module: "+record.Module)
	}
	if record.Failed {
		lines = append(lines, "Note: analysis failed for this file, results may be incomplete")
	}

	if len(record.Imports) > 0 {
		lines = append(lines, "  Imported Modules:")
		for _, imp := range record.Imports {
			marker := "external"
			if imp.Local {
				marker = "local"
			}
			lines = append(lines, fmt.Sprintf("    - %s (%s)", imp.Module, marker))
		}
	}

	if len(record.Calls) > 0 {
		lines = append(lines, "  Used Functions/Classes:")
		for _, name := range record.Calls {
			lines = append(lines, "    - "+name)
		}
	}

	if len(record.Imports) == 0 && len(record.Calls) == 0 {
		lines = append(lines, "  No recorded dependencies")
	}
	return lines
}

// normalizeDepPath maps a user-supplied path onto the project-relative
// slash form the index stores.
func normalizeDepPath(rootDir, path string) string {
	if filepath.IsAbs(path) {
		if rel, err := filepath.Rel(rootDir, path); err == nil {
			path = rel
		}
	}
	return filepath.ToSlash(filepath.Clean(path))
}
