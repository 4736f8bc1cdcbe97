package videocourse

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DB is the sqlite cache backend
type DB struct {
	db *sql.DB
}

// OpenDB opens a new database connection, creating the parent directory of
// the database file when needed
func OpenDB(dbPath string) (*DB, error) {
	dsn := dbPath
	if dbPath != ":memory:" && !strings.HasPrefix(dbPath, "file:") {
		if dir := filepath.Dir(dbPath); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
		dsn = dbPath + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.db.Close()
}

// CreateTables creates the cache tables if they don't exist
func (db *DB) CreateTables(ctx context.Context) error {
	for _, table := range Tables {
		query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			cache_key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`, table)
		if _, err := db.db.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table, err)
		}
	}
	return nil
}

// Get retrieves the value stored under key
func (db *DB) Get(ctx context.Context, table Table, key string) ([]byte, bool, error) {
	if !table.valid() {
		return nil, false, fmt.Errorf("unknown cache table %q", table)
	}

	var value string
	err := db.db.QueryRowContext(ctx,
		fmt.Sprintf("SELECT value FROM %s WHERE cache_key = ?", table),
		key,
	).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get %s entry: %w", table, err)
	}
	return []byte(value), true, nil
}

// Put inserts or replaces the value stored under key
func (db *DB) Put(ctx context.Context, table Table, key string, value []byte) error {
	if !table.valid() {
		return fmt.Errorf("unknown cache table %q", table)
	}

	_, err := db.db.ExecContext(ctx,
		fmt.Sprintf("INSERT OR REPLACE INTO %s (cache_key, value, created_at) VALUES (?, ?, ?)", table),
		key, string(value), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to save %s entry: %w", table, err)
	}
	return nil
}

// Delete removes the value stored under key
func (db *DB) Delete(ctx context.Context, table Table, key string) error {
	if !table.valid() {
		return fmt.Errorf("unknown cache table %q", table)
	}

	_, err := db.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE cache_key = ?", table), key)
	if err != nil {
		return fmt.Errorf("failed to delete %s entry: %w", table, err)
	}
	return nil
}
