package sched

import (
	"log/slog"

	"github.com/emirpasic/gods/lists/doublylinkedlist"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// Stats counts the cards collected from each bucket.
type Stats struct {
	New      int `json:"new"`
	Learning int `json:"learning"`
	Review   int `json:"review"`
}

// Total is the number of cards across all buckets.
func (s Stats) Total() int {
	return s.New + s.Learning + s.Review
}

// QueueEntry is a card paired with its precomputed successor states.
type QueueEntry struct {
	CardID int64
	Bucket domain.Bucket
	States SchedulingStates
}

// Queue is an ordered deque of entries. Entries are drawn from the front;
// either end accepts reinsertion so a card can be requeued without a rebuild.
type Queue struct {
	Stats Stats
	core  *doublylinkedlist.List
}

func newQueue() *Queue {
	return &Queue{core: doublylinkedlist.New()}
}

// Len returns the number of entries left.
func (q *Queue) Len() int {
	return q.core.Size()
}

// PeekFront returns the next entry without removing it.
func (q *Queue) PeekFront() (QueueEntry, bool) {
	v, ok := q.core.Get(0)
	if !ok {
		return QueueEntry{}, false
	}
	return v.(QueueEntry), true
}

// PopFront removes and returns the next entry.
func (q *Queue) PopFront() (QueueEntry, bool) {
	e, ok := q.PeekFront()
	if ok {
		q.core.Remove(0)
	}
	return e, ok
}

// PushFront makes e the next entry.
func (q *Queue) PushFront(e QueueEntry) {
	q.core.Prepend(e)
}

// PushBack appends e after every other entry.
func (q *Queue) PushBack(e QueueEntry) {
	q.core.Append(e)
}

// Entries returns a copy of the remaining entries in order.
func (q *Queue) Entries() []QueueEntry {
	out := make([]QueueEntry, 0, q.core.Size())
	it := q.core.Iterator()
	for it.Next() {
		out = append(out, it.Value().(QueueEntry))
	}
	return out
}

// CardLister streams a deck's cards in one bucket.
type CardLister interface {
	ForEachCardInDeck(deckID int64, bucket domain.Bucket, fn func(card domain.Card) error) error
}

// QueueBuilder collects a deck's cards by bucket and assembles a Queue.
type QueueBuilder struct {
	deckID   int64
	logger   *slog.Logger
	new      []domain.Card
	learning []domain.Card
	review   []domain.Card
}

func NewQueueBuilder(deckID int64, logger *slog.Logger) *QueueBuilder {
	if logger == nil {
		logger = slog.Default()
	}
	return &QueueBuilder{deckID: deckID, logger: logger}
}

// CollectCards scans New, Learning and Review cards in that order. A bucket
// whose scan fails is logged and left empty; the other buckets are still
// scanned.
func (b *QueueBuilder) CollectCards(store CardLister) {
	b.new = b.collect(store, domain.New)
	b.learning = b.collect(store, domain.Learning)
	b.review = b.collect(store, domain.Review)
}

func (b *QueueBuilder) collect(store CardLister, bucket domain.Bucket) []domain.Card {
	var cards []domain.Card
	err := store.ForEachCardInDeck(b.deckID, bucket, func(card domain.Card) error {
		cards = append(cards, card)
		return nil
	})
	if err != nil {
		b.logger.Error("Error collecting cards", "deck_id", b.deckID, "bucket", bucket.String(), "error", err)
		return nil
	}
	return cards
}

// Build orders the collected cards Review, then Learning, then New, and
// computes each card's successor states. Stats equal the number of cards
// collected from each bucket.
func (b *QueueBuilder) Build(scheduler Scheduler) *Queue {
	q := newQueue()
	q.Stats = Stats{New: len(b.new), Learning: len(b.learning), Review: len(b.review)}
	b.appendEntries(q, scheduler, b.review)
	b.appendEntries(q, scheduler, b.learning)
	b.appendEntries(q, scheduler, b.new)
	return q
}

// appendEntries skips cards whose state cannot be derived. A bucket-filtered
// scan never yields one.
func (b *QueueBuilder) appendEntries(q *Queue, scheduler Scheduler, cards []domain.Card) {
	for i := range cards {
		current, err := CurrentState(&cards[i])
		if err != nil {
			b.logger.Error("Skipping card", "deck_id", b.deckID, "card_id", cards[i].ID, "error", err)
			continue
		}
		q.PushBack(QueueEntry{
			CardID: cards[i].ID,
			Bucket: current.Bucket(),
			States: scheduler.NextStates(current),
		})
	}
}
