package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// Deck is a named group of cards.
type Deck struct {
	ID    int64
	Name  string
	Cards int
}

// CreateDeck inserts a new deck and returns its ID.
func (db *DB) CreateDeck(name string) (int64, error) {
	res, err := db.conn.Exec(`INSERT INTO decks (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("failed to insert deck %s: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for deck %s: %w", name, err)
	}
	return id, nil
}

// FindDeckByName retrieves a deck by name. A missing deck returns
// domain.ErrNotFound.
func (db *DB) FindDeckByName(name string) (*Deck, error) {
	var d Deck
	err := db.conn.QueryRow(`
		SELECT d.id, d.name, COUNT(c.id)
		FROM decks d LEFT JOIN cards c ON c.deck_id = d.id
		WHERE d.name = ?
		GROUP BY d.id
	`, name).Scan(&d.ID, &d.Name, &d.Cards)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("deck %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find deck %s: %w", name, err)
	}
	return &d, nil
}

// ListDecks retrieves every deck with its card count.
func (db *DB) ListDecks() ([]Deck, error) {
	rows, err := db.conn.Query(`
		SELECT d.id, d.name, COUNT(c.id)
		FROM decks d LEFT JOIN cards c ON c.deck_id = d.id
		GROUP BY d.id
		ORDER BY d.id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	var decks []Deck
	for rows.Next() {
		var d Deck
		if err := rows.Scan(&d.ID, &d.Name, &d.Cards); err != nil {
			return nil, fmt.Errorf("failed to scan deck row: %w", err)
		}
		decks = append(decks, d)
	}
	return decks, rows.Err()
}
