package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/mvp-joe/pymap/internal/config"
	"github.com/mvp-joe/pymap/internal/store"
)

// loadSnapshot opens the index database for a project and loads the full
// snapshot. The store is closed before returning; the snapshot is a
// plain in-memory value.
func loadSnapshot(ctx context.Context, rootDir string, cfg *config.Config) (*store.Snapshot, error) {
	st, err := store.OpenExisting(cfg.DatabasePath(rootDir))
	if err != nil {
		return nil, indexHint(err)
	}
	defer st.Close()

	snapshot, err := st.Load(ctx)
	if err != nil {
		return nil, indexHint(err)
	}
	return snapshot, nil
}

// indexHint points the user at 'pymap index' when the database is missing.
func indexHint(err error) error {
	if errors.Is(err, store.ErrNotIndexed) {
		return fmt.Errorf("no index found, run 'pymap index' first: %w", err)
	}
	return fmt.Errorf("failed to load index: %w", err)
}
