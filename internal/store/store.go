package store

import (
	"database/sql"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/mattn/go-sqlite3"
)

// DefaultCacheSize is the number of lookup results kept in memory.
const DefaultCacheSize = 1024

// Store is the SQLite data access layer for snippet snapshots.
type Store struct {
	db    *sql.DB
	cache *lru.Cache[string, []*Snippet]
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	cache, err := lru.New[string, []*Snippet](DefaultCacheSize)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache: %w", err)
	}
	return &Store{db: db, cache: cache}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB.
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
  id              INTEGER PRIMARY KEY,
  root            TEXT NOT NULL,
  path            TEXT NOT NULL,
  language        TEXT NOT NULL DEFAULT '',
  last_indexed    TIMESTAMP,
  UNIQUE (root, path)
);

CREATE TABLE IF NOT EXISTS snippets (
  id              INTEGER PRIMARY KEY,
  file_id         INTEGER NOT NULL REFERENCES files(id),
  region          TEXT NOT NULL,
  text            TEXT NOT NULL,
  hash            TEXT NOT NULL,
  UNIQUE (file_id, region)
);

CREATE TABLE IF NOT EXISTS types (
  name            TEXT PRIMARY KEY,
  fqn             TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_files_path ON files(path);
CREATE INDEX IF NOT EXISTS idx_snippets_region ON snippets(region);
CREATE INDEX IF NOT EXISTS idx_snippets_file ON snippets(file_id);
`
