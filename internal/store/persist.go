package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvp-joe/pymap/internal/indexer"
	"github.com/mvp-joe/pymap/internal/indexer/pysrc"
)

// Meta keys written alongside the index rows.
const (
	metaRoot      = "root"
	metaIndexedAt = "indexed_at"
	metaStats     = "stats"
	metaExternals = "externals"
	metaFailures  = "failures"
)

// Persist replaces the stored index with a fresh result in a single
// transaction. Readers keep seeing the previous index until the commit.
// It implements indexer.ResultSink.
func (s *Store) Persist(ctx context.Context, result *indexer.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("persist: begin: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM calls",
		"DELETE FROM imports",
		"DELETE FROM entities",
		"DELETE FROM files",
		"DELETE FROM meta",
	} {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("persist: clear tables: %w", err)
		}
	}

	for ordinal, f := range result.Files {
		fileID := uuid.New().String()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO files (id, path, module, doc, failed, ordinal) VALUES (?, ?, ?, ?, ?, ?)`,
			fileID, f.Path, f.Module, f.Doc, f.Failed, ordinal); err != nil {
			return fmt.Errorf("persist: file %q: %w", f.Path, err)
		}

		if err := insertEntitiesTx(ctx, tx, fileID, nil, f.Entities); err != nil {
			return fmt.Errorf("persist: entities of %q: %w", f.Path, err)
		}

		for _, module := range sortedKeys(f.Imports) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO imports (id, file_id, module, is_local) VALUES (?, ?, ?, ?)`,
				uuid.New().String(), fileID, module, isLocalImport(module, result.Modules)); err != nil {
				return fmt.Errorf("persist: import %q: %w", module, err)
			}
		}

		for _, name := range sortedKeys(f.Calls) {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO calls (id, file_id, name) VALUES (?, ?, ?)`,
				uuid.New().String(), fileID, name); err != nil {
				return fmt.Errorf("persist: call %q: %w", name, err)
			}
		}
	}

	if err := insertMetaTx(ctx, tx, result); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("persist: commit: %w", err)
	}
	return nil
}

// insertEntitiesTx inserts a definition forest depth-first, recording
// each entity's parent and its position among siblings.
func insertEntitiesTx(ctx context.Context, tx *sql.Tx, fileID string, parentID *string, entities []pysrc.Entity) error {
	for position, entity := range entities {
		id := uuid.New().String()
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO entities (id, file_id, parent_id, kind, name, annotation, position) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			id, fileID, parentID, string(entity.Kind), entity.Name, entity.Annotation, position); err != nil {
			return fmt.Errorf("insert entity %q: %w", entity.Name, err)
		}
		if err := insertEntitiesTx(ctx, tx, fileID, &id, entity.Children); err != nil {
			return err
		}
	}
	return nil
}

func insertMetaTx(ctx context.Context, tx *sql.Tx, result *indexer.Result) error {
	stats, err := json.Marshal(result.Stats)
	if err != nil {
		return fmt.Errorf("persist: marshal stats: %w", err)
	}
	externals, err := json.Marshal(result.Externals)
	if err != nil {
		return fmt.Errorf("persist: marshal externals: %w", err)
	}

	failures := make([]FailureRecord, 0, len(result.Failures))
	for _, f := range result.Failures {
		failures = append(failures, FailureRecord{Path: f.Path, Message: f.Err.Error()})
	}
	failureData, err := json.Marshal(failures)
	if err != nil {
		return fmt.Errorf("persist: marshal failures: %w", err)
	}

	entries := []struct {
		key   string
		value string
	}{
		{metaRoot, result.Root},
		{metaIndexedAt, time.Now().UTC().Format(time.RFC3339Nano)},
		{metaStats, string(stats)},
		{metaExternals, string(externals)},
		{metaFailures, string(failureData)},
	}
	for _, entry := range entries {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO meta (key, value) VALUES (?, ?)`, entry.key, entry.value); err != nil {
			return fmt.Errorf("persist: meta %q: %w", entry.key, err)
		}
	}
	return nil
}

// isLocalImport reports whether an imported module resolves to a module
// of the indexed project, judged by its top-level segment.
func isLocalImport(module string, modules map[string]string) bool {
	top := module
	if i := strings.Index(module, "."); i >= 0 {
		top = module[:i]
	}
	_, ok := modules[top]
	return ok
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
