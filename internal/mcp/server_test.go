package mcp

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/pymap/internal/config"
	"github.com/mvp-joe/pymap/internal/indexer"
	"github.com/mvp-joe/pymap/internal/indexer/pysrc"
	"github.com/mvp-joe/pymap/internal/store"
)

// Test Plan for the MCP server:
// - NewServer loads the snapshot, module graph, and searcher from the
//   database
// - NewServer fails with a run-index hint when no index exists
// - Reload picks up database changes written by another connection
// - Close releases resources even when Serve never ran

func persistResult(t *testing.T, dbPath string, result *indexer.Result) {
	t.Helper()

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate())
	require.NoError(t, st.Persist(context.Background(), result))
}

func serverResult(root string) *indexer.Result {
	return &indexer.Result{
		Root: root,
		Files: []*indexer.FileIndex{
			{
				Path:   "main.py",
				Module: "main",
				Doc:    "Entry point.",
				Entities: []pysrc.Entity{
					{Kind: pysrc.KindFunction, Name: "run", Annotation: "Start the app."},
				},
				Imports: map[string]bool{"os": true},
				Calls:   map[string]bool{"os.getcwd": true},
			},
		},
		Modules:   map[string]string{"main": "main.py"},
		Externals: []string{"os"},
		Stats:     indexer.Stats{Files: 1, Lines: 8, Bytes: 120},
	}
}

func TestNewServer_LoadsIndex(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg := config.Default()
	persistResult(t, cfg.DatabasePath(root), serverResult(root))

	srv, err := NewServer(context.Background(), root, cfg, "test")
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	snapshot := srv.Snapshot()
	require.NotNil(t, snapshot)
	require.Len(t, snapshot.Files, 1)
	assert.Equal(t, "main.py", snapshot.Files[0].Path)
	assert.Equal(t, []string{"os"}, snapshot.Externals)

	assert.Equal(t, 1, srv.Graph().Order())

	results, err := srv.Searcher().Search(context.Background(), "name:run", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "run", results[0].Name)
}

func TestNewServer_NotIndexed(t *testing.T) {
	t.Parallel()

	_, err := NewServer(context.Background(), t.TempDir(), config.Default(), "test")
	require.Error(t, err)
	assert.ErrorIs(t, err, store.ErrNotIndexed)
	assert.Contains(t, err.Error(), "pymap index")
}

func TestServer_Reload(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg := config.Default()
	dbPath := cfg.DatabasePath(root)
	persistResult(t, dbPath, serverResult(root))

	srv, err := NewServer(context.Background(), root, cfg, "test")
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	// A second index run adds a file through its own connection.
	updated := serverResult(root)
	updated.Files = append(updated.Files, &indexer.FileIndex{
		Path:   "worker.py",
		Module: "worker",
		Entities: []pysrc.Entity{
			{Kind: pysrc.KindFunction, Name: "spawn", Annotation: "Fork a worker."},
		},
		Imports: map[string]bool{"main": true},
		Calls:   map[string]bool{},
	})
	updated.Modules["worker"] = "worker.py"
	updated.Stats.Files = 2
	persistResult(t, dbPath, updated)

	require.NoError(t, srv.Reload(context.Background()))

	assert.Len(t, srv.Snapshot().Files, 2)
	assert.Equal(t, 2, srv.Graph().Order())
	assert.Equal(t, []string{"main"}, srv.Graph().Imports("worker"))

	results, err := srv.Searcher().Search(context.Background(), "spawn", nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "worker.py", results[0].Path)
}

func TestServer_CloseWithoutServe(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	cfg := config.Default()
	persistResult(t, cfg.DatabasePath(root), serverResult(root))

	srv, err := NewServer(context.Background(), root, cfg, "test")
	require.NoError(t, err)

	// The database watcher was never started; Close must not hang.
	require.NoError(t, srv.Close())
}
