package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mvp-joe/pymap/internal/indexer"
	"github.com/mvp-joe/pymap/internal/indexer/pysrc"
)

// ErrNotIndexed is returned by Load when the database holds no index yet.
var ErrNotIndexed = errors.New("project has not been indexed")

// Snapshot is a fully loaded index as stored by Persist.
type Snapshot struct {
	Root      string          `json:"root"`
	IndexedAt time.Time       `json:"indexed_at"`
	Stats     indexer.Stats   `json:"stats"`
	Externals []string        `json:"externals"`
	Failures  []FailureRecord `json:"failures,omitempty"`
	Files     []*FileRecord   `json:"files"`
}

// FileRecord is one indexed Python file with its definition forest.
type FileRecord struct {
	ID       string         `json:"id"`
	Path     string         `json:"path"`
	Module   string         `json:"module"`
	Doc      string         `json:"doc,omitempty"`
	Failed   bool           `json:"failed,omitempty"`
	Entities []pysrc.Entity `json:"entities,omitempty"`
	Imports  []ImportRecord `json:"imports,omitempty"`
	Calls    []string       `json:"calls,omitempty"`
}

// ImportRecord is one imported module and whether it resolved locally.
type ImportRecord struct {
	Module string `json:"module"`
	Local  bool   `json:"local"`
}

// FailureRecord describes a file the indexer could not analyze.
type FailureRecord struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Module returns the file record for a dotted module name, or nil.
func (s *Snapshot) Module(name string) *FileRecord {
	for _, f := range s.Files {
		if f.Module == name {
			return f
		}
	}
	return nil
}

// File returns the file record for a project-relative path, or nil.
func (s *Snapshot) File(path string) *FileRecord {
	for _, f := range s.Files {
		if f.Path == path {
			return f
		}
	}
	return nil
}

// Load reads the complete index back out of the database. Files come in
// the order they were persisted, entity forests in source order.
func (s *Store) Load(ctx context.Context) (*Snapshot, error) {
	snapshot := &Snapshot{}
	if err := s.loadMeta(ctx, snapshot); err != nil {
		return nil, err
	}

	files, byID, err := s.loadFiles(ctx)
	if err != nil {
		return nil, err
	}
	snapshot.Files = files

	if err := s.loadEntities(ctx, byID); err != nil {
		return nil, err
	}
	if err := s.loadImports(ctx, byID); err != nil {
		return nil, err
	}
	if err := s.loadCalls(ctx, byID); err != nil {
		return nil, err
	}

	return snapshot, nil
}

func (s *Store) loadMeta(ctx context.Context, snapshot *Snapshot) error {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM meta`)
	if err != nil {
		return fmt.Errorf("load meta: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scan meta: %w", err)
		}
		meta[key] = value
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load meta: %w", err)
	}

	root, ok := meta[metaRoot]
	if !ok {
		return ErrNotIndexed
	}
	snapshot.Root = root

	if raw, ok := meta[metaIndexedAt]; ok {
		if ts, err := time.Parse(time.RFC3339Nano, raw); err == nil {
			snapshot.IndexedAt = ts
		}
	}
	if raw, ok := meta[metaStats]; ok {
		if err := json.Unmarshal([]byte(raw), &snapshot.Stats); err != nil {
			return fmt.Errorf("unmarshal stats: %w", err)
		}
	}
	if raw, ok := meta[metaExternals]; ok {
		if err := json.Unmarshal([]byte(raw), &snapshot.Externals); err != nil {
			return fmt.Errorf("unmarshal externals: %w", err)
		}
	}
	if raw, ok := meta[metaFailures]; ok {
		if err := json.Unmarshal([]byte(raw), &snapshot.Failures); err != nil {
			return fmt.Errorf("unmarshal failures: %w", err)
		}
	}
	return nil
}

func (s *Store) loadFiles(ctx context.Context) ([]*FileRecord, map[string]*FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, module, doc, failed FROM files ORDER BY ordinal`)
	if err != nil {
		return nil, nil, fmt.Errorf("load files: %w", err)
	}
	defer rows.Close()

	var files []*FileRecord
	byID := make(map[string]*FileRecord)
	for rows.Next() {
		f := &FileRecord{}
		if err := rows.Scan(&f.ID, &f.Path, &f.Module, &f.Doc, &f.Failed); err != nil {
			return nil, nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, f)
		byID[f.ID] = f
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("load files: %w", err)
	}
	return files, byID, nil
}

type entityRow struct {
	id         string
	fileID     string
	parentID   sql.NullString
	kind       string
	name       string
	annotation string
}

func (s *Store) loadEntities(ctx context.Context, byID map[string]*FileRecord) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, file_id, parent_id, kind, name, annotation FROM entities ORDER BY position`)
	if err != nil {
		return fmt.Errorf("load entities: %w", err)
	}
	defer rows.Close()

	// Rows arrive position-ordered, so every per-parent bucket ends up
	// in sibling order. Top-level entities are bucketed under their file.
	byParent := make(map[string][]entityRow)
	for rows.Next() {
		var row entityRow
		if err := rows.Scan(&row.id, &row.fileID, &row.parentID, &row.kind, &row.name, &row.annotation); err != nil {
			return fmt.Errorf("scan entity: %w", err)
		}
		key := row.fileID
		if row.parentID.Valid {
			key = row.parentID.String
		}
		byParent[key] = append(byParent[key], row)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("load entities: %w", err)
	}

	for fileID, f := range byID {
		f.Entities = buildEntities(byParent[fileID], byParent)
	}
	return nil
}

// buildEntities converts parent-grouped rows back into the nested
// entity representation.
func buildEntities(rows []entityRow, byParent map[string][]entityRow) []pysrc.Entity {
	if len(rows) == 0 {
		return nil
	}
	entities := make([]pysrc.Entity, 0, len(rows))
	for _, row := range rows {
		entities = append(entities, pysrc.Entity{
			Kind:       pysrc.EntityKind(row.kind),
			Name:       row.name,
			Annotation: row.annotation,
			Children:   buildEntities(byParent[row.id], byParent),
		})
	}
	return entities
}

func (s *Store) loadImports(ctx context.Context, byID map[string]*FileRecord) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_id, module, is_local FROM imports ORDER BY module`)
	if err != nil {
		return fmt.Errorf("load imports: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fileID string
		var record ImportRecord
		if err := rows.Scan(&fileID, &record.Module, &record.Local); err != nil {
			return fmt.Errorf("scan import: %w", err)
		}
		if f := byID[fileID]; f != nil {
			f.Imports = append(f.Imports, record)
		}
	}
	return rows.Err()
}

func (s *Store) loadCalls(ctx context.Context, byID map[string]*FileRecord) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT file_id, name FROM calls ORDER BY name`)
	if err != nil {
		return fmt.Errorf("load calls: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var fileID, name string
		if err := rows.Scan(&fileID, &name); err != nil {
			return fmt.Errorf("scan call: %w", err)
		}
		if f := byID[fileID]; f != nil {
			f.Calls = append(f.Calls, name)
		}
	}
	return rows.Err()
}
