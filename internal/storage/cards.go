package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/conorfennell/knoldeck/internal/domain"
)

const cardColumns = `id, deck_id, source_id, hash, question, answer, context, queue, due, interval, stability, difficulty`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCard(row rowScanner) (domain.Card, error) {
	var (
		card       domain.Card
		sourceID   sql.NullInt64
		stability  sql.NullFloat64
		difficulty sql.NullFloat64
	)
	err := row.Scan(
		&card.ID,
		&card.DeckID,
		&sourceID,
		&card.Hash,
		&card.Question,
		&card.Answer,
		&card.Context,
		&card.Bucket,
		&card.Due,
		&card.Interval,
		&stability,
		&difficulty,
	)
	if err != nil {
		return domain.Card{}, err
	}
	if sourceID.Valid {
		card.SourceID = &sourceID.Int64
	}
	if stability.Valid || difficulty.Valid {
		card.MemoryState = &domain.MemoryState{Stability: stability.Float64, Difficulty: difficulty.Float64}
	}
	return card, nil
}

func memoryColumns(card *domain.Card) (sql.NullFloat64, sql.NullFloat64) {
	if card.MemoryState == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: card.MemoryState.Stability, Valid: true},
		sql.NullFloat64{Float64: card.MemoryState.Difficulty, Valid: true}
}

// InsertCard stores a new card in the New bucket at the given position and
// returns its ID.
func (db *DB) InsertCard(deckID int64, note domain.Note, position int64, sourceID *int64) (int64, error) {
	res, err := db.conn.Exec(`
		INSERT INTO cards (deck_id, hash, question, answer, context, queue, due, interval, source_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)
	`,
		deckID,
		note.Hash,
		note.Question,
		note.Answer,
		note.Context,
		domain.New,
		position,
		sourceID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert card %s: %w", note.Hash, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for card %s: %w", note.Hash, err)
	}
	return id, nil
}

// LoadCard retrieves a card by ID. A missing card returns domain.ErrNotFound.
func (db *DB) LoadCard(id int64) (*domain.Card, error) {
	row := db.conn.QueryRow(`SELECT `+cardColumns+` FROM cards WHERE id = ?`, id)
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("card %d: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load card %d: %w", id, err)
	}
	return &card, nil
}

// SaveCard writes a card's scheduling state back.
func (db *DB) SaveCard(card *domain.Card) error {
	stability, difficulty := memoryColumns(card)
	res, err := db.conn.Exec(`
		UPDATE cards
		SET queue = ?, due = ?, interval = ?, stability = ?, difficulty = ?
		WHERE id = ?
	`,
		card.Bucket,
		card.Due,
		card.Interval,
		stability,
		difficulty,
		card.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save card %d: %w", card.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save card %d: %w", card.ID, err)
	}
	if n == 0 {
		return fmt.Errorf("card %d: %w", card.ID, domain.ErrNotFound)
	}
	return nil
}

// ForEachCardInDeck streams the deck's cards in one bucket, ordered by due
// then ID. Returning an error from fn stops the scan and returns that error.
// fn must not use db: the scan holds the only connection.
func (db *DB) ForEachCardInDeck(deckID int64, bucket domain.Bucket, fn func(card domain.Card) error) error {
	rows, err := db.conn.Query(`
		SELECT `+cardColumns+`
		FROM cards WHERE deck_id = ? AND queue = ?
		ORDER BY due, id
	`, deckID, bucket)
	if err != nil {
		return fmt.Errorf("failed to query %s cards for deck %d: %w", bucket, deckID, err)
	}
	defer rows.Close()

	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return fmt.Errorf("failed to scan card row for deck %d: %w", deckID, err)
		}
		if err := fn(card); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to iterate %s cards for deck %d: %w", bucket, deckID, err)
	}
	return nil
}

// FindCardByHash retrieves a deck's card by its content hash.
// A missing card returns domain.ErrNotFound.
func (db *DB) FindCardByHash(deckID int64, hash string) (*domain.Card, error) {
	row := db.conn.QueryRow(`SELECT `+cardColumns+` FROM cards WHERE deck_id = ? AND hash = ?`, deckID, hash)
	card, err := scanCard(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("card %s: %w", hash, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find card by hash %s: %w", hash, err)
	}
	return &card, nil
}

// GetCardsBySourceID retrieves all cards imported from a source.
func (db *DB) GetCardsBySourceID(sourceID int64) ([]domain.Card, error) {
	rows, err := db.conn.Query(`SELECT `+cardColumns+` FROM cards WHERE source_id = ? ORDER BY id`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to get cards for source ID %d: %w", sourceID, err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan card row for source ID %d: %w", sourceID, err)
		}
		cards = append(cards, card)
	}
	return cards, rows.Err()
}

// DeleteCard removes a card from the database.
func (db *DB) DeleteCard(id int64) error {
	if _, err := db.conn.Exec(`DELETE FROM cards WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete card %d: %w", id, err)
	}
	return nil
}

// NextNewPosition returns the position after the highest new-card position
// in the deck.
func (db *DB) NextNewPosition(deckID int64) (int64, error) {
	var pos sql.NullInt64
	err := db.conn.QueryRow(`SELECT MAX(due) FROM cards WHERE deck_id = ? AND queue = ?`, deckID, domain.New).Scan(&pos)
	if err != nil {
		return 0, fmt.Errorf("failed to get next position for deck %d: %w", deckID, err)
	}
	if !pos.Valid {
		return 0, nil
	}
	return pos.Int64 + 1, nil
}
