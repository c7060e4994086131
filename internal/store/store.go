// Package store persists index results to SQLite and loads them back
// for the query-side consumers.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for the index database.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) a SQLite database at dbPath with WAL
// mode enabled.
func Open(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenExisting opens the database only if it is already on disk.
// Readers use it so that querying a never-indexed project reports
// ErrNotIndexed instead of leaving an empty database behind.
func OpenExisting(dbPath string) (*Store, error) {
	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: no database at %s", ErrNotIndexed, dbPath)
		}
		return nil, fmt.Errorf("stat database: %w", err)
	}
	return Open(dbPath)
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates all tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS files (
  id       TEXT PRIMARY KEY,
  path     TEXT NOT NULL UNIQUE,
  module   TEXT NOT NULL,
  doc      TEXT NOT NULL DEFAULT '',
  failed   BOOLEAN NOT NULL DEFAULT FALSE,
  ordinal  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS entities (
  id         TEXT PRIMARY KEY,
  file_id    TEXT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
  parent_id  TEXT REFERENCES entities(id) ON DELETE CASCADE,
  kind       TEXT NOT NULL,
  name       TEXT NOT NULL,
  annotation TEXT NOT NULL DEFAULT '',
  position   INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS imports (
  id       TEXT PRIMARY KEY,
  file_id  TEXT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
  module   TEXT NOT NULL,
  is_local BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS calls (
  id      TEXT PRIMARY KEY,
  file_id TEXT NOT NULL REFERENCES files(id) ON DELETE CASCADE,
  name    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meta (
  key   TEXT PRIMARY KEY,
  value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_entities_file ON entities(file_id);
CREATE INDEX IF NOT EXISTS idx_entities_parent ON entities(parent_id);
CREATE INDEX IF NOT EXISTS idx_entities_name ON entities(name);
CREATE INDEX IF NOT EXISTS idx_entities_kind ON entities(kind);
CREATE INDEX IF NOT EXISTS idx_imports_file ON imports(file_id);
CREATE INDEX IF NOT EXISTS idx_imports_module ON imports(module);
CREATE INDEX IF NOT EXISTS idx_calls_file ON calls(file_id);
CREATE INDEX IF NOT EXISTS idx_calls_name ON calls(name);
`
