package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Registers the sqlite driver
)

// InMemory is the path that opens an ephemeral collection.
const InMemory = ":memory:"

// DB represents a wrapper around the SQL database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open opens the collection at path, creating the file and its parent
// directory if needed. InMemory opens a private database that lives as long
// as the returned DB.
func Open(path string) (*DB, error) {
	var dsn string
	if path == InMemory {
		dsn = "file::memory:?_pragma=foreign_keys(ON)"
	} else {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)", path)
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps every statement on the same in-memory
	// database and makes this process the only writer.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &DB{conn: conn, path: path}, nil
}

// InitSchema creates any missing tables. It is safe to call on every open.
func (db *DB) InitSchema() error {
	if _, err := db.conn.Exec(schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}

// Path returns the path the collection was opened from.
func (db *DB) Path() string {
	return db.path
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}
