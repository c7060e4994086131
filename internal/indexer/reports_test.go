package indexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test Plan for report bodies:
// - Dependencies report opens with the sorted external library section
// - Per-file blocks follow walk order and end with a blank line
// - Files without imports or calls still get their block
// - Import and call lists are sorted within each block
// - Stats report renders the four counter lines

func TestBuildDependencyLines(t *testing.T) {
	t.Parallel()

	result := &Result{
		Externals: []string{"numpy", "requests"},
		Files: []*FileIndex{
			{
				Path:    "app.py",
				Imports: map[string]bool{"os": true, "numpy": true},
				Calls:   map[string]bool{"main": true, "np.array": true},
			},
			{
				Path:    "lib/empty.py",
				Imports: map[string]bool{},
				Calls:   map[string]bool{},
			},
		},
	}

	assert.Equal(t, []string{
		"Project External Libraries:",
		"  - numpy",
		"  - requests",
		"",
		"File: app.py",
		"  Imported Modules:",
		"    - numpy",
		"    - os",
		"  Used Functions/Classes:",
		"    - main",
		"    - np.array",
		"",
		"File: lib/empty.py",
		"",
	}, buildDependencyLines(result))
}

func TestBuildDependencyLines_NoExternals(t *testing.T) {
	t.Parallel()

	result := &Result{
		Files: []*FileIndex{
			{Path: "solo.py", Imports: map[string]bool{}, Calls: map[string]bool{"helper": true}},
		},
	}

	assert.Equal(t, []string{
		"Project External Libraries:",
		"",
		"File: solo.py",
		"  Used Functions/Classes:",
		"    - helper",
		"",
	}, buildDependencyLines(result))
}

func TestBuildStatsLines(t *testing.T) {
	t.Parallel()

	lines := buildStatsLines(Stats{Directories: 3, Files: 12, Lines: 340, Bytes: 9001})

	assert.Equal(t, []string{
		"Number of directories: 3",
		"Number of files: 12",
		"Total number of lines: 340",
		"Total number of bytes: 9001",
	}, lines)
}
