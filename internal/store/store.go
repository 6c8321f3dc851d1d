// Package store keeps feelio's local state in a single SQLite file: the
// signed-in identity, the LLM request journal and the activity journal.
// The backend remains the source of truth for answers and scores.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	_ "modernc.org/sqlite"
)

// pragmas run on every new database handle. WAL lets the CLI read the
// journals while the TUI writes them.
var pragmas = []string{
	"PRAGMA journal_mode = WAL",
	"PRAGMA busy_timeout = 5000",
	"PRAGMA foreign_keys = ON",
	"PRAGMA synchronous = NORMAL",
}

// Store owns the database handle and hands out repositories over it.
type Store struct {
	db  *sql.DB
	drv *entsql.Driver
}

// Open opens or creates the database at path and brings its schema up to
// date.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One connection keeps the pragmas in force for every statement.
	db.SetMaxOpenConns(1)

	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", p, err)
		}
	}

	drv := entsql.OpenDB(dialect.SQLite, db)
	if err := migrate(context.Background(), drv); err != nil {
		drv.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &Store{db: db, drv: drv}, nil
}

// DB exposes the raw handle for diagnostics and tests.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.drv.Close() }

func (s *Store) IdentityRepo() IdentityRepo { return &identityRepo{drv: s.drv} }

func (s *Store) EventRepo() EventRepo { return &eventRepo{drv: s.drv} }

func (s *Store) ActivityRepo() ActivityRepo { return &activityRepo{drv: s.drv} }

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.SQLite)
}

// DefaultDBPath is $FEELIO_DB when set, else feelio/feelio.db under the XDG
// data directory. The parent directory is created.
func DefaultDBPath() (string, error) {
	if p := os.Getenv("FEELIO_DB"); p != "" {
		return p, EnsureDir(p)
	}

	base := os.Getenv("XDG_DATA_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		base = filepath.Join(home, ".local", "share")
	}
	p := filepath.Join(base, "feelio", "feelio.db")
	return p, EnsureDir(p)
}

// EnsureDir creates the directory that will hold path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
