package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/pymap/internal/config"
	"github.com/spf13/cobra"
)

var (
	rootFlag   string
	configFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "pymap",
	Short: "pymap - a static indexer for Python projects",
	Long: `pymap walks a Python project, extracts its definitions, docstrings, and
dependencies, and writes plain-text reports plus a searchable index.

Run 'pymap index' first, then query the index with 'pymap search',
'pymap modules', 'pymap deps', or serve it to coding assistants with
'pymap mcp'.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "project root (default is the working directory)")
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "config file (default is <root>/.pymap/config.yml)")
}

// projectRoot resolves the project root from --root or the working directory.
func projectRoot() (string, error) {
	if rootFlag != "" {
		abs, err := filepath.Abs(rootFlag)
		if err != nil {
			return "", fmt.Errorf("failed to resolve project root: %w", err)
		}
		return abs, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return wd, nil
}

// loadConfig loads the project configuration, honoring --config.
func loadConfig(rootDir string) (*config.Config, error) {
	if configFlag != "" {
		return config.LoadConfigFromFile(configFlag)
	}
	return config.LoadConfigFromDir(rootDir)
}
