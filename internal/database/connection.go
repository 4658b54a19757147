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

// Supported driver names
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Connect opens the database, applies driver settings and creates the schema
func Connect(driver, dsn string) (*sqlx.DB, error) {
	if driver == DriverSQLite {
		// Create data directory if it doesn't exist
		if dir := sqliteDir(dsn); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if driver == DriverSQLite {
		// Enable foreign keys
		if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
		}
		db.SetMaxOpenConns(1) // SQLite doesn't support multiple writers
		db.SetMaxIdleConns(1)
	}

	if err := initializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// sqliteDir returns the directory of a file DSN, or "" for in-memory databases
func sqliteDir(dsn string) string {
	path := strings.TrimPrefix(dsn, "file:")
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if path == "" || strings.Contains(path, ":memory:") {
		return ""
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return ""
	}
	return dir
}

// initializeSchema creates necessary tables if they don't exist
func initializeSchema(db *sqlx.DB) error {
	idColumn := "INTEGER PRIMARY KEY AUTOINCREMENT"
	timestamp := "TIMESTAMP"
	if db.DriverName() == DriverPostgres {
		idColumn = "BIGSERIAL PRIMARY KEY"
		timestamp = "TIMESTAMPTZ"
	}

	statements := []struct {
		name  string
		query string
	}{
		{"categories table", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS categories (
				id %s,
				user_id BIGINT NOT NULL,
				name TEXT NOT NULL,
				current_level INTEGER NOT NULL DEFAULT 1,
				words_per_level INTEGER,
				created_at %s NOT NULL,
				UNIQUE(user_id, name)
			)`, idColumn, timestamp)},
		{"words table", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS words (
				id %s,
				user_id BIGINT NOT NULL,
				category_id BIGINT NOT NULL REFERENCES categories(id),
				word TEXT NOT NULL,
				translation TEXT NOT NULL,
				level INTEGER,
				mastery_level INTEGER NOT NULL DEFAULT 0 CHECK (mastery_level BETWEEN 0 AND 100),
				last_practiced_at %s,
				correct_count INTEGER NOT NULL DEFAULT 0,
				incorrect_count INTEGER NOT NULL DEFAULT 0,
				created_at %s NOT NULL
			)`, idColumn, timestamp, timestamp)},
		{"words index", `CREATE INDEX IF NOT EXISTS idx_words_category_created ON words(category_id, created_at)`},
		{"practice_results table", fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS practice_results (
				id %s,
				user_id BIGINT NOT NULL,
				category_id BIGINT NOT NULL,
				mode TEXT NOT NULL,
				total_words INTEGER NOT NULL,
				correct_words INTEGER NOT NULL,
				wrong_words INTEGER NOT NULL,
				skipped_words INTEGER NOT NULL,
				percentage INTEGER NOT NULL,
				started_at %s NOT NULL,
				completed_at %s NOT NULL
			)`, idColumn, timestamp, timestamp)},
	}

	for _, s := range statements {
		if _, err := db.Exec(s.query); err != nil {
			return fmt.Errorf("failed to create %s: %w", s.name, err)
		}
	}
	return nil
}

// insertReturningID runs an INSERT and returns the new row id. PostgreSQL
// gets a RETURNING clause, SQLite uses LastInsertId.
func insertReturningID(ctx context.Context, ext sqlx.ExtContext, query string, args ...interface{}) (int64, error) {
	query = ext.Rebind(query)
	if ext.DriverName() == DriverPostgres {
		var id int64
		if err := ext.QueryRowxContext(ctx, query+" RETURNING id", args...).Scan(&id); err != nil {
			return 0, err
		}
		return id, nil
	}

	result, err := ext.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}
