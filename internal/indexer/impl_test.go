package indexer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/pymap/internal/indexer/pysrc"
)

// Test Plan for the indexer:
// - Full run produces the four reports with exact content
// - Modules, externals, and stats line up with the walked tree
// - Failed files stay in the reports and are recorded on the result
// - Progress hooks fire in analysis order
// - Results flow through the sink; sink failures abort the run
// - The output directory is never swept into a later run
// - Cancelled contexts stop the run
// - Invalid configuration is rejected

const mainPy = `"""Entry point for the demo app."""

# Starts the application.
def run(config):
    """Start the app.

    Args:
        config: Runtime settings.

    Returns:
        Exit code.
    """
    return helpers.run_all(config)
`

const helpersInit = `"""Helper package."""
`

const utilPy = `"""Utility helpers."""
import os
from collections import OrderedDict


class Runner:
    """Runs tasks."""

    # Executes every task.
    def run_all(self, config):
        return os.getcwd()
`

// demoProject builds a small fixture tree with one package, one ignored
// file, and one ignored directory.
func demoProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeProjectFile(t, root, "main.py", mainPy)
	writeProjectFile(t, root, "helpers/__init__.py", helpersInit)
	writeProjectFile(t, root, "helpers/util.py", utilPy)
	writeProjectFile(t, root, "notes.txt", "scratch\n")
	writeProjectFile(t, root, "venv/lib.py", "x = 1\n")
	return root
}

func TestIndexer_EndToEnd(t *testing.T) {
	t.Parallel()

	root := demoProject(t)
	idx, err := New(DefaultConfig(root), nil, nil)
	require.NoError(t, err)
	defer idx.Close()

	result, err := idx.Index(context.Background())
	require.NoError(t, err)

	paths := make([]string, 0, len(result.Files))
	for _, f := range result.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{"main.py", "helpers/__init__.py", "helpers/util.py"}, paths)

	assert.Equal(t, map[string]string{
		"main":         "main.py",
		"helpers":      "helpers/__init__.py",
		"helpers.util": "helpers/util.py",
	}, result.Modules)
	assert.Equal(t, []string{"collections", "os"}, result.Externals)
	assert.Empty(t, result.Failures)
	assert.Greater(t, result.Duration, time.Duration(0))

	readReport := func(name string) string {
		t.Helper()
		content, err := os.ReadFile(filepath.Join(root, ".pymap", name))
		require.NoError(t, err)
		return string(content)
	}

	assert.Equal(t, treeFilesHeader+"\n\n"+strings.Join([]string{
		"├── helpers/",
		"│   ├── __init__.py  # Helper package.",
		"│   └── util.py  # Utility helpers.",
		"├── main.py  # Entry point for the demo app.",
		"├── notes.txt  # ignored",
		"└── venv/  # ignored",
	}, "\n"), readReport(TreeFilesReport))

	assert.Equal(t, mapDefinitionsHeader+"\n\n"+strings.Join([]string{
		"├── helpers/",
		"│   ├── __init__.py  # Helper package.",
		"│   └── util.py  # Utility helpers.",
		"│           └── [Class] Runner  # Runs tasks.",
		"│               └── [Function] run_all  # Executes every task.",
		"├── main.py  # Entry point for the demo app.",
		"│       └── [Function] run  # Starts the application. | Start the app.",
		"│           ├── [Args] ",
		"│           │   └── config: Runtime settings.",
		"│           └── [Returns] ",
		"│               └── Exit code.",
		"├── notes.txt  # ignored",
		"└── venv/  # ignored",
	}, "\n"), readReport(MapDefinitionsReport))

	assert.Equal(t, dependenciesHeader+"\n\n"+strings.Join([]string{
		"Project External Libraries:",
		"  - collections",
		"  - os",
		"",
		"File: main.py",
		"  Used Functions/Classes:",
		"    - helpers.run_all",
		"",
		"File: helpers/__init__.py",
		"",
		"File: helpers/util.py",
		"  Imported Modules:",
		"    - collections",
		"    - os",
		"  Used Functions/Classes:",
		"    - os.getcwd",
		"",
	}, "\n"), readReport(DependenciesReport))

	lines := strings.Count(mainPy+helpersInit+utilPy, "\n")
	bytes := len(mainPy) + len(helpersInit) + len(utilPy)
	assert.Equal(t, statHeader+"\n\n"+strings.Join([]string{
		"Number of directories: 1",
		"Number of files: 3",
		fmt.Sprintf("Total number of lines: %d", lines),
		fmt.Sprintf("Total number of bytes: %d", bytes),
	}, "\n"), readReport(StatReport))

	assert.Equal(t, Stats{Directories: 1, Files: 3, Lines: int64(lines), Bytes: int64(bytes)}, result.Stats)
}

func TestIndexer_FailedFileStillListed(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProjectFile(t, root, "bad.py", "def broken(:\n")
	writeProjectFile(t, root, "good.py", "x = 1\n")

	idx, err := New(DefaultConfig(root), nil, nil)
	require.NoError(t, err)
	defer idx.Close()

	result, err := idx.Index(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.Equal(t, "bad.py", result.Failures[0].Path)
	assert.ErrorIs(t, result.Failures[0].Err, pysrc.ErrParse)

	require.Len(t, result.Files, 2)
	bad := result.Files[0]
	assert.True(t, bad.Failed)
	assert.Equal(t, "bad", bad.Module)
	assert.Empty(t, bad.Entities)
	assert.Empty(t, bad.Doc)

	content, err := os.ReadFile(filepath.Join(root, ".pymap", TreeFilesReport))
	require.NoError(t, err)
	assert.Contains(t, string(content), "├── bad.py\n└── good.py")
}

func TestIndexer_InvalidEncodingRecorded(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProjectFile(t, root, "latin.py", "s = '\xe9'\n")

	idx, err := New(DefaultConfig(root), nil, nil)
	require.NoError(t, err)
	defer idx.Close()

	result, err := idx.Index(context.Background())
	require.NoError(t, err)

	require.Len(t, result.Failures, 1)
	assert.ErrorIs(t, result.Failures[0].Err, pysrc.ErrDecode)
	assert.True(t, result.Files[0].Failed)
}

type captureProgress struct {
	walkStarts  int
	pythonFiles int
	analyzed    []string
	reportsDir  string
	completed   *Result
}

func (p *captureProgress) OnWalkStart()                      { p.walkStarts++ }
func (p *captureProgress) OnWalkComplete(pythonFiles int)    { p.pythonFiles = pythonFiles }
func (p *captureProgress) OnFileAnalyzed(path string)        { p.analyzed = append(p.analyzed, path) }
func (p *captureProgress) OnReportsWritten(outputDir string) { p.reportsDir = outputDir }
func (p *captureProgress) OnComplete(result *Result)         { p.completed = result }

func TestIndexer_ProgressHooks(t *testing.T) {
	t.Parallel()

	root := demoProject(t)
	progress := &captureProgress{}
	idx, err := New(DefaultConfig(root), nil, progress)
	require.NoError(t, err)
	defer idx.Close()

	result, err := idx.Index(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, progress.walkStarts)
	assert.Equal(t, 3, progress.pythonFiles)
	assert.Equal(t, []string{"main.py", "helpers/__init__.py", "helpers/util.py"}, progress.analyzed)
	assert.Equal(t, filepath.Join(root, ".pymap"), progress.reportsDir)
	assert.Same(t, result, progress.completed)
}

type captureSink struct {
	results []*Result
}

func (s *captureSink) Persist(ctx context.Context, result *Result) error {
	s.results = append(s.results, result)
	return nil
}

type failingSink struct{}

func (failingSink) Persist(ctx context.Context, result *Result) error {
	return errors.New("disk full")
}

func TestIndexer_PersistsThroughSink(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProjectFile(t, root, "app.py", "x = 1\n")

	sink := &captureSink{}
	config := DefaultConfig(root)
	config.WriteReports = false
	idx, err := New(config, sink, nil)
	require.NoError(t, err)
	defer idx.Close()

	result, err := idx.Index(context.Background())
	require.NoError(t, err)
	require.Len(t, sink.results, 1)
	assert.Same(t, result, sink.results[0])

	// Reports were disabled, so the output directory never appeared.
	_, err = os.Stat(filepath.Join(root, ".pymap"))
	assert.True(t, os.IsNotExist(err))
}

func TestIndexer_SinkFailureAborts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProjectFile(t, root, "app.py", "x = 1\n")

	config := DefaultConfig(root)
	config.WriteReports = false
	idx, err := New(config, failingSink{}, nil)
	require.NoError(t, err)
	defer idx.Close()

	_, err = idx.Index(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to persist index")
}

func TestIndexer_OutputDirNotReindexed(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProjectFile(t, root, "app.py", "x = 1\n")

	config := DefaultConfig(root)
	config.OutputDir = "out"
	idx, err := New(config, nil, nil)
	require.NoError(t, err)
	defer idx.Close()

	first, err := idx.Index(context.Background())
	require.NoError(t, err)

	// The first run created out/; the second run must not count it.
	second, err := idx.Index(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first.Stats, second.Stats)
	assert.Equal(t, first.Modules, second.Modules)
}

func TestIndexer_CancelledContext(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	writeProjectFile(t, root, "app.py", "x = 1\n")

	idx, err := New(DefaultConfig(root), nil, nil)
	require.NoError(t, err)
	defer idx.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = idx.Index(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	_, err := New(nil, nil, nil)
	assert.Error(t, err)

	_, err = New(&Config{}, nil, nil)
	assert.Error(t, err)

	_, err = New(&Config{RootDir: t.TempDir(), IgnorePatterns: []string{"[bad"}}, nil, nil)
	assert.Error(t, err)
}
