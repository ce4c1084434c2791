// Package store is the SQLite persistence layer for generated docstrings.
//
// The store is append-only: an identity is written at most once, and a
// second Put for the same identity is a silent no-op. This is what makes
// repeated documentation runs idempotent — the graph builder stops expanding
// at identities the store already holds, and the engine skips generation
// for them entirely.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrUnavailable wraps every read/write failure of the backing database.
// Callers treat it as fatal for the whole run: without the store there is
// no way to decide skip-vs-generate or to assemble child context.
var ErrUnavailable = errors.New("documentation store unavailable")

// Store is the SQLite data access layer for the docstrings table.
type Store struct {
	db *sql.DB
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
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the schema. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS docstrings (
  identity      TEXT PRIMARY KEY,
  file_path     TEXT NOT NULL,
  func_name     TEXT NOT NULL,
  docstring     TEXT NOT NULL,
  created_at    TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_docstrings_file ON docstrings(file_path);
CREATE INDEX IF NOT EXISTS idx_docstrings_name ON docstrings(func_name);
`

// Has reports whether a docstring has been persisted for identity.
func (s *Store) Has(identity string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM docstrings WHERE identity = ?", identity).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query docstring: %w: %w", ErrUnavailable, err)
	}
	return true, nil
}

// Get returns the persisted docstring for identity, or ("", false, nil) if
// no entry exists.
func (s *Store) Get(identity string) (string, bool, error) {
	var text string
	err := s.db.QueryRow("SELECT docstring FROM docstrings WHERE identity = ?", identity).Scan(&text)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("query docstring: %w: %w", ErrUnavailable, err)
	}
	return text, true, nil
}

// Put persists a docstring entry. Entries are immutable: if identity already
// exists the write is silently dropped and the stored text is unchanged.
func (s *Store) Put(identity, filePath, funcName, docstring string) error {
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO docstrings (identity, file_path, func_name, docstring, created_at) VALUES (?, ?, ?, ?, ?)",
		identity, filePath, funcName, docstring, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("insert docstring: %w: %w", ErrUnavailable, err)
	}
	return nil
}

// Entries returns all persisted entries ordered by insertion time.
func (s *Store) Entries() ([]*Entry, error) {
	rows, err := s.db.Query(
		"SELECT identity, file_path, func_name, docstring, created_at FROM docstrings ORDER BY created_at, identity")
	if err != nil {
		return nil, fmt.Errorf("query docstrings: %w: %w", ErrUnavailable, err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		e := &Entry{}
		if err := rows.Scan(&e.Identity, &e.FilePath, &e.FuncName, &e.Docstring, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan docstring: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Count returns the number of persisted entries.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM docstrings").Scan(&n); err != nil {
		return 0, fmt.Errorf("count docstrings: %w: %w", ErrUnavailable, err)
	}
	return n, nil
}
