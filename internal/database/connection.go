package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Config selects the database driver and its data source
type Config struct {
	// Type is "sqlite" or "postgres"
	Type string
	// DSN is the postgres connection string or the sqlite file path
	DSN string
}

// Connect establishes a connection to the database and initializes the schema
func Connect(cfg Config) (*sqlx.DB, error) {
	var db *sqlx.DB
	var err error

	switch strings.ToLower(cfg.Type) {
	case "postgres", "postgresql":
		db, err = sqlx.Connect(DriverPostgres, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	case "", "sqlite", "sqlite3":
		if dir := filepath.Dir(cfg.DSN); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
		db, err = sqlx.Connect(DriverSQLite, cfg.DSN+"?_foreign_keys=on&_busy_timeout=5000")
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		// Enable foreign keys
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	default:
		return nil, fmt.Errorf("unsupported database type %q", cfg.Type)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func isPostgres(ext interface{ DriverName() string }) bool {
	return ext.DriverName() == DriverPostgres
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if isPostgres(db) {
		idColumn = "BIGSERIAL PRIMARY KEY"
	}

	stmts := []struct {
		name string
		sql  string
	}{
		{"decks", `
			CREATE TABLE IF NOT EXISTS decks (
				id ` + idColumn + `,
				title TEXT NOT NULL,
				is_default BOOLEAN NOT NULL DEFAULT FALSE,
				owner_id TEXT,
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`},
		{"cards", `
			CREATE TABLE IF NOT EXISTS cards (
				id ` + idColumn + `,
				deck_id BIGINT NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
				word TEXT NOT NULL,
				translation TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
			)`},
		{"card_progress", `
			CREATE TABLE IF NOT EXISTS card_progress (
				id ` + idColumn + `,
				user_id TEXT NOT NULL,
				card_id BIGINT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
				stage SMALLINT NOT NULL DEFAULT 0,
				due DATE NOT NULL,
				ease NUMERIC(5,2) NOT NULL DEFAULT 1.85,
				priority INTEGER NOT NULL DEFAULT 1,
				UNIQUE(user_id, card_id)
			)`},
		{"learning_logs", `
			CREATE TABLE IF NOT EXISTS learning_logs (
				id ` + idColumn + `,
				user_id TEXT NOT NULL,
				card_id BIGINT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
				created_at TIMESTAMP NOT NULL
			)`},
		{"idx_cards_deck", `CREATE INDEX IF NOT EXISTS idx_cards_deck ON cards(deck_id)`},
		{"idx_progress_queue", `CREATE INDEX IF NOT EXISTS idx_progress_queue ON card_progress(user_id, due, priority)`},
		{"idx_learning_logs_user", `CREATE INDEX IF NOT EXISTS idx_learning_logs_user ON learning_logs(user_id, created_at)`},
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt.sql); err != nil {
			return fmt.Errorf("failed to create %s: %w", stmt.name, err)
		}
	}
	return nil
}

// withTx runs fn inside a transaction, rolling back when fn fails
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// insertReturningID runs an INSERT and returns the new row's id.
// Postgres has no LastInsertId, sqlite gets it from the driver.
func insertReturningID(ctx context.Context, ext sqlx.ExtContext, query string, args ...interface{}) (int64, error) {
	if isPostgres(ext) {
		var id int64
		if err := sqlx.GetContext(ctx, ext, &id, ext.Rebind(query+" RETURNING id"), args...); err != nil {
			return 0, err
		}
		return id, nil
	}
	result, err := ext.ExecContext(ctx, ext.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID: %w", err)
	}
	return id, nil
}
