package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/pymap/internal/config"
	"github.com/spf13/cobra"
)

var cleanQuietFlag bool

// cleanCmd represents the clean command
var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the output directory",
	Long: `Clean removes the generated reports and the index database for the
current project. The next 'pymap index' run rebuilds everything from
scratch.

The configuration file (.pymap/config.yml) is preserved.

Use cases:
  - Stale reports after changing ignore patterns
  - Corrupted index database
  - Want a fresh start after major refactoring

Examples:
  # Clean output for the current project
  pymap clean

  # Clean with minimal output
  pymap clean --quiet
`,
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)
	cleanCmd.Flags().BoolVarP(&cleanQuietFlag, "quiet", "q", false, "Suppress output messages")
}

// configFileNames are the entries clean leaves in place when the output
// directory doubles as the config directory.
var configFileNames = map[string]bool{
	"config.yml":  true,
	"config.yaml": true,
}

func runClean(cmd *cobra.Command, args []string) error {
	rootDir, err := projectRoot()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(rootDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	outputDir := cfg.OutputPath(rootDir)
	configDir := filepath.Join(rootDir, config.ConfigDirName)
	return cleanOutputDir(outputDir, configDir, cleanQuietFlag)
}

// cleanOutputDir removes the output directory. When it doubles as the
// config directory (the default layout), the config file stays and only
// the generated entries are removed.
func cleanOutputDir(outputDir, configDir string, quiet bool) error {
	if _, err := os.Stat(outputDir); os.IsNotExist(err) {
		if !quiet {
			fmt.Println("No output directory found for this project")
		}
		return nil
	}

	if outputDir != configDir {
		sizeMB, fileCount, err := getOutputStats(outputDir)
		if err != nil {
			sizeMB = 0
			fileCount = 0
		}

		if err := os.RemoveAll(outputDir); err != nil {
			return fmt.Errorf("failed to remove output directory: %w", err)
		}

		if !quiet {
			if fileCount > 0 {
				fmt.Printf("✓ Removed %s (%d files, ~%.1f MB)\n", outputDir, fileCount, sizeMB)
			} else {
				fmt.Printf("✓ Removed %s\n", outputDir)
			}
			fmt.Println("Next 'pymap index' will rebuild the reports and the database")
		}
		return nil
	}

	removed, sizeMB, err := removeGeneratedEntries(outputDir)
	if err != nil {
		return fmt.Errorf("failed to clean output directory: %w", err)
	}

	if !quiet {
		if removed == 0 {
			fmt.Println("Nothing to clean")
			return nil
		}
		fmt.Printf("✓ Cleaned %s (%d entries, ~%.1f MB)\n", outputDir, removed, sizeMB)
		fmt.Println("Next 'pymap index' will rebuild the reports and the database")
	}
	return nil
}

// removeGeneratedEntries deletes every entry of dir except the config
// files. Returns the number of removed entries and their total size.
func removeGeneratedEntries(dir string) (removed int, sizeMB float64, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, err
	}

	for _, entry := range entries {
		if configFileNames[entry.Name()] {
			continue
		}

		if !entry.IsDir() {
			if info, err := entry.Info(); err == nil {
				sizeMB += float64(info.Size()) / (1024 * 1024)
			}
		}

		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return removed, sizeMB, err
		}
		removed++
	}

	return removed, sizeMB, nil
}

// getOutputStats sums the files directly inside the output directory.
func getOutputStats(outputDir string) (totalSizeMB float64, fileCount int, err error) {
	entries, err := os.ReadDir(outputDir)
	if err != nil {
		return 0, 0, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		fileCount++

		info, err := entry.Info()
		if err == nil {
			totalSizeMB += float64(info.Size()) / (1024 * 1024)
		}
	}

	return totalSizeMB, fileCount, nil
}
