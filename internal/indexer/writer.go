package indexer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// AtomicWriter writes report files using the temp → rename pattern so
// readers never observe a half-written report.
type AtomicWriter struct {
	outputDir string
	tempDir   string
}

// NewAtomicWriter creates a writer rooted at the output directory,
// clearing any stale temp files from interrupted runs.
func NewAtomicWriter(outputDir string) (*AtomicWriter, error) {
	tempDir := filepath.Join(outputDir, ".tmp")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.RemoveAll(tempDir); err != nil {
		return nil, fmt.Errorf("failed to clean temp directory: %w", err)
	}
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}

	return &AtomicWriter{
		outputDir: outputDir,
		tempDir:   tempDir,
	}, nil
}

// WriteReport writes one report file: the comment header, a blank line,
// and the body lines joined with newlines.
func (w *AtomicWriter) WriteReport(filename, header string, lines []string) error {
	content := header + "\n\n" + strings.Join(lines, "\n")

	tempPath := filepath.Join(w.tempDir, filename)
	if err := os.WriteFile(tempPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	finalPath := filepath.Join(w.outputDir, filename)
	if err := os.Rename(tempPath, finalPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}

	return nil
}

// Cleanup removes the temp directory.
func (w *AtomicWriter) Cleanup() error {
	return os.RemoveAll(w.tempDir)
}
