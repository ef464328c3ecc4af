// Package sqlstore holds the sqlx-backed repositories. Queries are written
// with ? placeholders and rebound for the connected driver.
package sqlstore

import (
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"voxform/internal/config"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS form_sessions (
	session_id TEXT PRIMARY KEY,
	name       TEXT NOT NULL DEFAULT '',
	email      TEXT NOT NULL DEFAULT '',
	phone      TEXT NOT NULL DEFAULT '',
	address    TEXT NOT NULL DEFAULT '',
	updated_at BIGINT NOT NULL
);
CREATE TABLE IF NOT EXISTS submissions (
	id         TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	phone      TEXT NOT NULL,
	address    TEXT NOT NULL,
	provider   TEXT NOT NULL DEFAULT '',
	created_at BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_submissions_created_at ON submissions (created_at);
`

// NewPostgresDB creates a PostgreSQL connection pool. The schema is managed by cmd/migrate.
func NewPostgresDB(cfg *config.DBConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("pgx", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpen)
	db.SetMaxIdleConns(cfg.MaxIdle)
	return db, nil
}

// NewSQLiteDB opens the database file at path and creates the schema if needed.
func NewSQLiteDB(path string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", path, err)
	}
	// SQLite allows a single writer.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}
	return db, nil
}

// Open connects to the store named by cfg.Session.Store. It returns nil for "memory".
func Open(cfg *config.Config) (*sqlx.DB, error) {
	switch cfg.Session.Store {
	case "postgres":
		return NewPostgresDB(&cfg.DB)
	case "sqlite":
		return NewSQLiteDB(cfg.DB.SQLitePath)
	default:
		return nil, nil
	}
}
