package cli

// Test Plan for Deps Command:
// - buildExternalsLines lists sorted externals or a (none) placeholder
// - buildFileDepsLines renders module, imports with local/external
//   markers, and used names
// - buildFileDepsLines flags failed files and empty dependency sets
// - normalizeDepPath maps user-supplied paths onto the stored form

import (
	"testing"

	"github.com/mvp-joe/pymap/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestBuildExternalsLines(t *testing.T) {
	t.Parallel()

	snapshot := &store.Snapshot{Externals: []string{"os", "requests"}}

	lines := buildExternalsLines(snapshot)
	assert.Equal(t, []string{
		"Project External Libraries:",
		"  - os",
		"  - requests",
	}, lines)
}

func TestBuildExternalsLines_Empty(t *testing.T) {
	t.Parallel()

	lines := buildExternalsLines(&store.Snapshot{})
	assert.Equal(t, []string{
		"Project External Libraries:",
		"  (none)",
	}, lines)
}

func TestBuildFileDepsLines(t *testing.T) {
	t.Parallel()

	record := &store.FileRecord{
		Path:   "helpers/util.py",
		Module: "helpers.util",
		Imports: []store.ImportRecord{
			{Module: "helpers", Local: true},
			{Module: "os", Local: false},
		},
		Calls: []string{"os.getcwd", "trim"},
	}

	lines := buildFileDepsLines(record)
	assert.Equal(t, []string{
		"File: helpers/util.py",
		"Module: helpers.util",
		"  Imported Modules:",
		"    - helpers (local)",
		"    - os (external)",
		"  Used Functions/Classes:",
		"    - os.getcwd",
		"    - trim",
	}, lines)
}

func TestBuildFileDepsLines_FailedFile(t *testing.T) {
	t.Parallel()

	record := &store.FileRecord{Path: "bad.py", Module: "bad", Failed: true}

	lines := buildFileDepsLines(record)
	assert.Contains(t, lines, "Note: analysis failed for this file, results may be incomplete")
	assert.Contains(t, lines, "  No recorded dependencies")
}

func TestNormalizeDepPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rootDir  string
		path     string
		expected string
	}{
		{"plain relative", "/srv/demo", "helpers/util.py", "helpers/util.py"},
		{"dot prefixed", "/srv/demo", "./helpers/util.py", "helpers/util.py"},
		{"absolute under root", "/srv/demo", "/srv/demo/main.py", "main.py"},
		{"redundant separators", "/srv/demo", "helpers//util.py", "helpers/util.py"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, normalizeDepPath(tt.rootDir, tt.path))
		})
	}
}
