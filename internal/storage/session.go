package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/conorfennell/knoldeck/internal/domain"
)

const creationStampKey = "creation_stamp"

// GetCreationStamp returns the collection's creation time in seconds since
// the epoch, or domain.ErrNotFound if it was never set.
func (db *DB) GetCreationStamp() (int64, error) {
	var ts int64
	err := db.conn.QueryRow(`SELECT value FROM session WHERE key = ?`, creationStampKey).Scan(&ts)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("creation stamp: %w", domain.ErrNotFound)
		}
		return 0, fmt.Errorf("failed to read creation stamp: %w", err)
	}
	return ts, nil
}

// SetCreationStamp stores the collection's creation time.
func (db *DB) SetCreationStamp(ts int64) error {
	_, err := db.conn.Exec(`
		INSERT INTO session (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, creationStampKey, ts)
	if err != nil {
		return fmt.Errorf("failed to write creation stamp: %w", err)
	}
	return nil
}
