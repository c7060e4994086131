package cli

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mvp-joe/pymap/internal/indexer"
	"github.com/mvp-joe/pymap/internal/store"
	"github.com/spf13/cobra"
)

var (
	quietFlag bool
	watchFlag bool
)

// indexCmd represents the index command
var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Index the Python project",
	Long: `Index walks the project tree, analyzes every Python file, and writes
the report files plus the index database into the output directory.

The indexer:
  - Renders the directory tree with module docstrings (tree_files.txt)
  - Extracts functions, classes, and nested definitions (map_definitions.txt)
  - Collects per-file imports and used names (dependencies.txt)
  - Counts directories, files, lines, and bytes (stat.txt)
  - Persists everything to the SQLite index used by search, deps, and mcp

Examples:
  # Index the current directory
  pymap index

  # Index with progress output disabled
  pymap index --quiet

  # Watch for changes and reindex automatically
  pymap index --watch

  # Index a specific project
  pymap index --root /path/to/project
`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
	indexCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	indexCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch for file changes and reindex")
}

func runIndex(cmd *cobra.Command, args []string) error {
	// Set up context with cancellation for Ctrl+C
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling indexing...")
		cancel()
	}()

	rootDir, err := projectRoot()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// The database doubles as the persistence sink for watch-mode reruns.
	var sink indexer.ResultSink
	if cfg.Database {
		st, err := store.Open(cfg.DatabasePath(rootDir))
		if err != nil {
			return fmt.Errorf("failed to open index database: %w", err)
		}
		defer st.Close()
		if err := st.Migrate(); err != nil {
			return fmt.Errorf("failed to prepare index database: %w", err)
		}
		sink = st
	}

	progress := NewCLIProgressReporter(quietFlag, cfg.OutputPath(rootDir))

	idx, err := indexer.New(cfg.ToIndexerConfig(rootDir), sink, progress)
	if err != nil {
		return fmt.Errorf("failed to create indexer: %w", err)
	}
	defer idx.Close()

	if _, err := idx.Index(ctx); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("indexing cancelled")
		}
		return fmt.Errorf("indexing failed: %w", err)
	}

	if watchFlag {
		if !quietFlag {
			log.Println("Watching for changes... (Ctrl+C to stop)")
		}
		if err := idx.Watch(ctx); err != nil && ctx.Err() == nil {
			return fmt.Errorf("watch mode failed: %w", err)
		}
		if !quietFlag {
			log.Println("Watch mode stopped")
		}
	}

	return nil
}
