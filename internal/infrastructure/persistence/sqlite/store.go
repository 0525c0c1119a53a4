// Package sqlite is the embedded single-file store. It implements the same
// repositories as the postgres package and is used for local runs and tests.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/examhub/exam-room-scheduler/internal/domain/catalog"
)

//go:embed schema.sql
var schemaSQL string

// Store owns the database handle shared by the repositories.
type Store struct {
	db *sql.DB
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Open creates or opens the database at path, applies the schema and seeds
// the standard shifts. It is safe to call on an existing file.
//
// Write transactions begin IMMEDIATE so that concurrent allocations for the
// same slot are serialized by the database.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_txlock=immediate&_foreign_keys=on&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to connect to database: %w", err)
	}

	// SQLite has one writer; a single connection also keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: failed to apply schema: %w", err)
	}

	s := &Store{db: db}
	if err := s.seedShifts(context.Background()); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

func (s *Store) seedShifts(ctx context.Context) error {
	for _, sh := range catalog.StandardShifts() {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO shifts (code, start_time, end_time) VALUES (?, ?, ?)`,
			sh.Code, sh.StartTime, sh.EndTime,
		)
		if err != nil {
			return translate("Seed", err)
		}
	}
	return nil
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return translate("Ping", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB exposes the handle for tests and diagnostics.
func (s *Store) DB() *sql.DB {
	return s.db
}
