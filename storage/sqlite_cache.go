package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	// Registers the "sqlite" database/sql driver.
	_ "modernc.org/sqlite"
)

// MemoryPath opens a cache that lives only as long as the process.
const MemoryPath = ":memory:"

const createCacheTable = `CREATE TABLE IF NOT EXISTS cache (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// SQLiteCache is a durable string key/value store backed by a single sqlite table.
type SQLiteCache struct {
	db *sql.DB
}

// OpenSQLiteCache opens (creating if needed) the cache database at path.
func OpenSQLiteCache(ctx context.Context, path string) (*SQLiteCache, error) {
	if path != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, createCacheTable); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create cache table: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

// Get returns the value stored under key and whether it was present.
func (c *SQLiteCache) Get(key string) (string, bool, error) {
	var value string
	err := c.db.QueryRow(`SELECT value FROM cache WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}

	return value, true, nil
}

// Set stores value under key, replacing any previous value.
func (c *SQLiteCache) Set(key, value string) error {
	_, err := c.db.Exec(
		`INSERT INTO cache (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to write cache key %s: %w", key, err)
	}

	return nil
}

// Close releases the database.
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
