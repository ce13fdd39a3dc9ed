// Package database stores tracker, rotation and message data in SQLite.
// It is the alternative to the JSON file backend and is filled by cmd/import.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// DB is the SQLite greeting store.
type DB struct {
	*sql.DB
	logger *slog.Logger
}

// Config holds database configuration options.
type Config struct {
	Path        string        // SQLite file, or ":memory:"
	BusyTimeout time.Duration // how long a write waits on a locked file
}

// DefaultConfig returns the settings the server and importer use.
func DefaultConfig(path string) Config {
	return Config{Path: path, BusyTimeout: 5 * time.Second}
}

func (c Config) dsn() string {
	return fmt.Sprintf("%s?_journal_mode=WAL&_busy_timeout=%d", c.Path, c.BusyTimeout.Milliseconds())
}

// Open connects to the store at cfg.Path, creating its directory if needed.
// Every request already holds the service lock, so one connection is enough;
// it also keeps ":memory:" databases from splitting across connections.
func Open(cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", cfg.dsn())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetConnMaxLifetime(0)

	db := &DB{DB: sqlDB, logger: logger}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.Health(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	logger.Info("database connected", slog.String("path", cfg.Path))
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	db.logger.Info("closing database connection")
	return db.DB.Close()
}

// Health checks that the store answers a trivial query.
func (db *DB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		return fmt.Errorf("database query failed: %w", err)
	}
	return nil
}

// Migrate brings the schema up to date and reports how many versions it
// applied. All pending versions commit together or not at all.
func (db *DB) Migrate(ctx context.Context) (int, error) {
	var count int
	err := db.WithTx(ctx, func(tx *Tx) error {
		if _, err := tx.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version INTEGER PRIMARY KEY,
				applied_at TEXT NOT NULL DEFAULT (datetime('now'))
			)`); err != nil {
			return fmt.Errorf("create schema_migrations table: %w", err)
		}

		applied, err := tx.appliedVersions(ctx)
		if err != nil {
			return err
		}

		versions := make([]int, 0, len(migrationsSQL))
		for v := range migrationsSQL {
			versions = append(versions, v)
		}
		slices.Sort(versions)

		for _, v := range versions {
			if applied[v] {
				continue
			}
			db.logger.Info("applying migration", slog.Int("version", v))
			if _, err := tx.ExecContext(ctx, migrationsSQL[v]); err != nil {
				return fmt.Errorf("execute migration %d: %w", v, err)
			}
			if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (version) VALUES (?)`, v); err != nil {
				return fmt.Errorf("record migration %d: %w", v, err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	db.logger.Info("migrations complete", slog.Int("applied", count))
	return count, nil
}

func (tx *Tx) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := tx.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

// Tx is a store transaction. The save methods in queries.go run on either
// a Tx or the DB itself.
type Tx struct {
	*sql.Tx
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	tx, err := db.DB.BeginTx(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	return &Tx{tx}, nil
}

// WithTx runs fn in a transaction and commits only if fn returns nil.
func (db *DB) WithTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after Commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// querier is satisfied by both *DB and *Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// IsNotFound reports whether err means a single-row query found no row.
func IsNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
