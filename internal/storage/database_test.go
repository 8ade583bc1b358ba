package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/sched"
)

var _ sched.Store = (*DB)(nil)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(InMemory)
	require.NoError(t, err)
	require.NoError(t, db.InitSchema())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func insertNotes(t *testing.T, db *DB, deckID int64, questions ...string) []int64 {
	t.Helper()
	var ids []int64
	for _, q := range questions {
		pos, err := db.NextNewPosition(deckID)
		require.NoError(t, err)
		id, err := db.InsertCard(deckID, domain.Note{Question: q, Answer: "a", Hash: "h-" + q}, pos, nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	return ids
}

func TestOpenFileAndInitSchemaTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "collection.db")
	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, db.InitSchema())
	require.NoError(t, db.InitSchema())
	assert.Equal(t, path, db.Path())
}

func TestCardRoundTrip(t *testing.T) {
	db := openTestDB(t)
	deckID, err := db.CreateDeck("go")
	require.NoError(t, err)
	ids := insertNotes(t, db, deckID, "What is a goroutine?")

	card, err := db.LoadCard(ids[0])
	require.NoError(t, err)
	assert.Equal(t, domain.New, card.Bucket)
	assert.Equal(t, int64(0), card.Due)
	assert.Nil(t, card.MemoryState)
	assert.Nil(t, card.SourceID)
	assert.Equal(t, "What is a goroutine?", card.Question)

	card.Bucket = domain.Review
	card.Due = 12
	card.Interval = 7
	card.MemoryState = &domain.MemoryState{Stability: 7.4, Difficulty: 5.5}
	require.NoError(t, db.SaveCard(card))

	reloaded, err := db.LoadCard(ids[0])
	require.NoError(t, err)
	assert.Equal(t, card, reloaded)
}

func TestLoadAndSaveMissingCard(t *testing.T) {
	db := openTestDB(t)

	_, err := db.LoadCard(404)
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	err = db.SaveCard(&domain.Card{ID: 404})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestForEachCardInDeck(t *testing.T) {
	db := openTestDB(t)
	deckID, err := db.CreateDeck("go")
	require.NoError(t, err)
	otherDeck, err := db.CreateDeck("rust")
	require.NoError(t, err)

	ids := insertNotes(t, db, deckID, "q1", "q2", "q3", "q4")
	insertNotes(t, db, otherDeck, "q5")

	// q3 becomes a review card due on day 9, q1 on day 4.
	for id, due := range map[int64]int64{ids[2]: 9, ids[0]: 4} {
		card, err := db.LoadCard(id)
		require.NoError(t, err)
		card.Bucket, card.Due, card.Interval = domain.Review, due, 2
		require.NoError(t, db.SaveCard(card))
	}

	collect := func(bucket domain.Bucket) []int64 {
		var got []int64
		require.NoError(t, db.ForEachCardInDeck(deckID, bucket, func(c domain.Card) error {
			got = append(got, c.ID)
			return nil
		}))
		return got
	}

	assert.Equal(t, []int64{ids[1], ids[3]}, collect(domain.New))
	assert.Equal(t, []int64{ids[0], ids[2]}, collect(domain.Review))
	assert.Empty(t, collect(domain.Learning))

	stop := errors.New("stop")
	err = db.ForEachCardInDeck(deckID, domain.New, func(domain.Card) error { return stop })
	assert.ErrorIs(t, err, stop)
}

func TestNextNewPosition(t *testing.T) {
	db := openTestDB(t)
	deckID, err := db.CreateDeck("go")
	require.NoError(t, err)

	pos, err := db.NextNewPosition(deckID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)

	insertNotes(t, db, deckID, "a", "b")
	pos, err = db.NextNewPosition(deckID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pos)
}

func TestCreationStamp(t *testing.T) {
	db := openTestDB(t)

	_, err := db.GetCreationStamp()
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, db.SetCreationStamp(1_700_000_000))
	require.NoError(t, db.SetCreationStamp(1_700_000_500))

	ts, err := db.GetCreationStamp()
	require.NoError(t, err)
	assert.Equal(t, int64(1_700_000_500), ts)
}

func TestDecksAndSources(t *testing.T) {
	db := openTestDB(t)
	deckID, err := db.CreateDeck("go")
	require.NoError(t, err)
	_, err = db.CreateDeck("go")
	assert.Error(t, err, "deck names are unique")

	sourceID, err := db.InsertSource(deckID, "/notes/go", SourceLocal)
	require.NoError(t, err)
	pos, err := db.NextNewPosition(deckID)
	require.NoError(t, err)
	_, err = db.InsertCard(deckID, domain.Note{Question: "q", Hash: "h"}, pos, &sourceID)
	require.NoError(t, err)

	decks, err := db.ListDecks()
	require.NoError(t, err)
	assert.Equal(t, []Deck{{ID: deckID, Name: "go", Cards: 1}}, decks)

	deck, err := db.FindDeckByName("go")
	require.NoError(t, err)
	assert.Equal(t, 1, deck.Cards)
	_, err = db.FindDeckByName("missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, db.UpdateSourceLastScanned(sourceID, time.Now()))
	sources, err := db.GetAllSources()
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, SourceLocal, sources[0].Type)
	assert.True(t, sources[0].LastScanned.Valid)

	cards, err := db.GetCardsBySourceID(sourceID)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	require.NoError(t, db.DeleteCard(cards[0].ID))

	require.NoError(t, db.DeleteSource(sourceID))
	sources, err = db.GetAllSources()
	require.NoError(t, err)
	assert.Empty(t, sources)
}

func TestCollectionOnSQLite(t *testing.T) {
	db := openTestDB(t)
	deckID, err := db.CreateDeck("go")
	require.NoError(t, err)
	ids := insertNotes(t, db, deckID, "q1", "q2")

	col, err := sched.NewCollection(db, reviewEverything{}, time.Unix(1_700_000_000, 0), nil)
	require.NoError(t, err)

	card, err := col.AnswerCard(ids[1], domain.Good)
	require.NoError(t, err)
	assert.Equal(t, domain.Review, card.Bucket)

	q := col.BuildQueue(deckID)
	assert.Equal(t, sched.Stats{New: 1, Review: 1}, q.Stats)
	first, ok := q.PopFront()
	require.True(t, ok)
	assert.Equal(t, ids[1], first.CardID)
}

type reviewEverything struct{}

func (reviewEverything) NextStates(current sched.CardState) sched.SchedulingStates {
	next := sched.ReviewState{ScheduledDays: 2}
	return sched.SchedulingStates{Current: current, Again: next, Hard: next, Good: next, Easy: next}
}
