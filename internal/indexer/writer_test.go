package indexer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test Plan for AtomicWriter:
// - Reports land as header, blank line, body with no trailing newline
// - Existing reports are replaced in place
// - Stale temp files from interrupted runs are cleared on creation
// - Cleanup removes the temp directory

func TestAtomicWriter_WriteReport(t *testing.T) {
	t.Parallel()

	outputDir := filepath.Join(t.TempDir(), ".pymap")
	w, err := NewAtomicWriter(outputDir)
	require.NoError(t, err)

	require.NoError(t, w.WriteReport("stat.txt", "# stat.txt", []string{"a", "b"}))

	content, err := os.ReadFile(filepath.Join(outputDir, "stat.txt"))
	require.NoError(t, err)
	assert.Equal(t, "# stat.txt\n\na\nb", string(content))

	require.NoError(t, w.Cleanup())
	_, err = os.Stat(filepath.Join(outputDir, ".tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestAtomicWriter_OverwritesExisting(t *testing.T) {
	t.Parallel()

	outputDir := filepath.Join(t.TempDir(), ".pymap")
	w, err := NewAtomicWriter(outputDir)
	require.NoError(t, err)
	defer w.Cleanup()

	require.NoError(t, w.WriteReport("tree_files.txt", "# header", []string{"old"}))
	require.NoError(t, w.WriteReport("tree_files.txt", "# header", []string{"new"}))

	content, err := os.ReadFile(filepath.Join(outputDir, "tree_files.txt"))
	require.NoError(t, err)
	assert.Equal(t, "# header\n\nnew", string(content))
}

func TestAtomicWriter_ClearsStaleTempFiles(t *testing.T) {
	t.Parallel()

	outputDir := filepath.Join(t.TempDir(), ".pymap")
	stale := filepath.Join(outputDir, ".tmp", "stale.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0755))
	require.NoError(t, os.WriteFile(stale, []byte("leftover"), 0644))

	_, err := NewAtomicWriter(outputDir)
	require.NoError(t, err)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err))
}
