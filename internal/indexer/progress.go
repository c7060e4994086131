package indexer

// ProgressReporter provides callbacks for reporting indexing progress.
// Implementations can display progress bars, log messages, or remain silent.
type ProgressReporter interface {
	// OnWalkStart is called before the project tree walk begins.
	OnWalkStart()

	// OnWalkComplete is called when the walk finishes, with the number of
	// Python files queued for analysis.
	OnWalkComplete(pythonFiles int)

	// OnFileAnalyzed is called after each Python file is analyzed.
	OnFileAnalyzed(path string)

	// OnReportsWritten is called after the report files land on disk.
	OnReportsWritten(outputDir string)

	// OnComplete is called when the run finishes successfully.
	OnComplete(result *Result)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnWalkStart()                      {}
func (n *NoOpProgressReporter) OnWalkComplete(pythonFiles int)    {}
func (n *NoOpProgressReporter) OnFileAnalyzed(path string)        {}
func (n *NoOpProgressReporter) OnReportsWritten(outputDir string) {}
func (n *NoOpProgressReporter) OnComplete(result *Result)         {}
