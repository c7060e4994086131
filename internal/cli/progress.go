package cli

import (
	"fmt"
	"log"
	"time"

	"github.com/mvp-joe/pymap/internal/indexer"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter implements progress reporting with progress bars.
type CLIProgressReporter struct {
	quiet          bool
	outputDir      string
	fileBar        *progressbar.ProgressBar
	totalFiles     int
	processedFiles int
}

// NewCLIProgressReporter creates a new CLI progress reporter.
func NewCLIProgressReporter(quiet bool, outputDir string) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet:     quiet,
		outputDir: outputDir,
	}
}

func (c *CLIProgressReporter) OnWalkStart() {
	if c.quiet {
		return
	}
	log.Println("Scanning project tree...")
}

func (c *CLIProgressReporter) OnWalkComplete(pythonFiles int) {
	if c.quiet {
		return
	}
	c.totalFiles = pythonFiles
	c.processedFiles = 0

	if pythonFiles == 0 {
		log.Println("No Python files found")
		return
	}

	c.fileBar = progressbar.NewOptions(pythonFiles,
		progressbar.OptionSetDescription("Analyzing files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

func (c *CLIProgressReporter) OnFileAnalyzed(path string) {
	if c.quiet {
		return
	}
	if c.fileBar != nil {
		c.processedFiles++
		c.fileBar.Add(1)
	}
}

func (c *CLIProgressReporter) OnReportsWritten(outputDir string) {
	if c.quiet {
		return
	}
	log.Printf("Reports written to %s\n", outputDir)
}

func (c *CLIProgressReporter) OnComplete(result *indexer.Result) {
	if c.quiet {
		return
	}

	fmt.Println()
	fmt.Println("✓ Indexing complete.")
	fmt.Printf("  Directories: %s\n", formatNumber(result.Stats.Directories))
	fmt.Printf("  Files:       %s\n", formatNumber(result.Stats.Files))
	fmt.Printf("  Lines:       %s\n", formatNumber(int(result.Stats.Lines)))
	fmt.Printf("  Output:      %s\n", c.outputDir)
	fmt.Printf("  Took:        %.1fs\n", result.Duration.Seconds())
	if len(result.Failures) > 0 {
		fmt.Printf("  Skipped:     %d file(s), see warnings above\n", len(result.Failures))
	}
}

// formatNumber renders n with thousands separators.
func formatNumber(n int) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	str := fmt.Sprintf("%d", n)
	var result string
	for i, c := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result += ","
		}
		result += string(c)
	}
	return result
}
