package kvstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Store is a durable key-value table. Its only serious client is the batch
// pipeline's cursor, but nothing here is cursor-specific.
type Store struct {
	db *sqlx.DB
}

// Open connects to the backing database. driver is "sqlite3" or "postgres";
// for sqlite3 the parent directory of dsn is created when missing.
func Open(driver, dsn string) (*Store, error) {
	if driver == "sqlite3" {
		if dir := filepath.Dir(dsn); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %v", err)
			}
		}
	}

	db, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if driver == "sqlite3" {
		// SQLite doesn't support multiple writers
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create kv table: %v", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value for key and whether it was present
func (s *Store) Get(key string) (string, bool, error) {
	query := "SELECT value FROM kv WHERE key = ?"
	if s.db.DriverName() == "postgres" {
		query = "SELECT value FROM kv WHERE key = $1"
	}

	var value string
	err := s.db.Get(&value, query, key)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get key %q: %v", key, err)
	}
	return value, true, nil
}

// Set stores value under key, replacing any previous value
func (s *Store) Set(key, value string) error {
	query := `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`
	if s.db.DriverName() == "postgres" {
		query = `
			INSERT INTO kv (key, value) VALUES ($1, $2)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`
	}

	if _, err := s.db.Exec(query, key, value); err != nil {
		return fmt.Errorf("failed to set key %q: %v", key, err)
	}
	return nil
}

// Delete removes key. Deleting an absent key is not an error.
func (s *Store) Delete(key string) error {
	query := "DELETE FROM kv WHERE key = ?"
	if s.db.DriverName() == "postgres" {
		query = "DELETE FROM kv WHERE key = $1"
	}

	if _, err := s.db.Exec(query, key); err != nil {
		return fmt.Errorf("failed to delete key %q: %v", key, err)
	}
	return nil
}
