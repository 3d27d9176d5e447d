// Package storage owns the SQLite connection lifecycle: directory creation,
// foreign-key enforcement, idempotent schema bootstrap, and scoped
// transactions.
package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/username/tradedata/src/logger"
)

// MemoryPath is the sentinel for a transient, schema-bootstrapped in-memory
// database, used by tests.
const MemoryPath = ":memory:"

// Querier is satisfied by both *sql.DB and *sql.Tx so reads and writes can
// run either directly or inside a caller-owned transaction scope.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Storage wraps one SQLite database with foreign keys enforced and the
// schema created on open.
type Storage struct {
	path string
	db   *sql.DB
}

// New opens (creating if needed) the database at path and bootstraps the
// schema. The parent directory is created for file-backed databases.
func New(path string) (*Storage, error) {
	if path == "" {
		return nil, fmt.Errorf("storage: database path must not be empty")
	}
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory for %s: %w", path, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	// SQLite allows a single writer. One pooled connection also keeps the
	// foreign_keys pragma and :memory: contents bound to that connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("bootstrapping schema: %w", err)
	}

	logger.L.Debug("Database ready", "path", path)
	return &Storage{path: path, db: db}, nil
}

// Path returns the database location this instance was opened with.
func (s *Storage) Path() string { return s.path }

// DB exposes the underlying handle for direct statements outside any
// explicit transaction scope.
func (s *Storage) DB() *sql.DB { return s.db }

// Begin opens a scoped transaction. Statements issued through the returned
// handle commit together on Commit and roll back together on Rollback; this
// is the mechanism the sync orchestrator relies on for per-record atomicity.
// Scopes are independent: nested Begin calls do not compose.
func (s *Storage) Begin() (*sql.Tx, error) {
	return s.db.Begin()
}

func (s *Storage) Close() error {
	return s.db.Close()
}
