package sched

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// Store is the storage handle a Collection owns.
type Store interface {
	StampStore
	LoadCard(id int64) (*domain.Card, error)
	SaveCard(card *domain.Card) error
	ForEachCardInDeck(deckID int64, bucket domain.Bucket, fn func(card domain.Card) error) error
}

// Collection applies graded answers to cards and builds study queues.
//
// A Collection is the single owner of its store: answers are serialized
// behind a write lock, queue builds share a read lock. Its Timing is fixed at
// construction; callers that stay open across a day boundary must build a
// new Collection.
type Collection struct {
	mu        sync.RWMutex
	store     Store
	scheduler Scheduler
	timing    Timing
	logger    *slog.Logger
}

// NewCollection derives the timing for now and returns a ready Collection.
func NewCollection(store Store, scheduler Scheduler, now time.Time, logger *slog.Logger) (*Collection, error) {
	if logger == nil {
		logger = slog.Default()
	}
	timing, err := TimingForTimestamp(store, now.Unix(), logger)
	if err != nil {
		return nil, err
	}
	logger.Debug("Collection opened", "days_elapsed", timing.DaysElapsed, "next_day_at", timing.NextDayAt)

	return &Collection{
		store:     store,
		scheduler: scheduler,
		timing:    timing,
		logger:    logger,
	}, nil
}

// Timing returns the timing computed when the collection was opened.
func (c *Collection) Timing() Timing {
	return c.timing
}

// ApplyState moves card into next. It performs no I/O.
func (c *Collection) ApplyState(card *domain.Card, next CardState) error {
	switch s := next.(type) {
	case NewState:
		card.Bucket = domain.New
		card.Due = s.Position
	case LearningState:
		card.Bucket = domain.Learning
		card.MemoryState = memoryPtr(s.Memory)
	case ReviewState:
		card.Bucket = domain.Review
		card.Interval = s.ScheduledDays
		card.Due = c.timing.DaysElapsed + s.ScheduledDays
		card.MemoryState = memoryPtr(s.Memory)
	default:
		c.logger.Error("No mutation rule for card state", "card_id", card.ID, "state", fmt.Sprintf("%T", next))
		return fmt.Errorf("%w: %T", ErrUnknownState, next)
	}
	return nil
}

// AnswerCard applies grade to the card with the given id, persists it and
// returns the updated card.
func (c *Collection) AnswerCard(cardID int64, grade domain.Grade) (*domain.Card, error) {
	if !grade.IsValid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGrade, int(grade))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	card, err := c.store.LoadCard(cardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("card %d: %w", cardID, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: loading card %d: %v", ErrStorage, cardID, err)
	}

	current, err := CurrentState(card)
	if err != nil {
		return nil, err
	}

	next, _ := c.scheduler.NextStates(current).ForGrade(grade)
	if err := c.ApplyState(card, next); err != nil {
		return nil, err
	}

	if err := c.store.SaveCard(card); err != nil {
		return nil, fmt.Errorf("%w: saving card %d: %v", ErrStorage, cardID, err)
	}

	c.logger.Debug("Card answered",
		"card_id", card.ID,
		"grade", grade.String(),
		"from", current.Bucket().String(),
		"to", card.Bucket.String(),
		"due", card.Due,
	)
	return card, nil
}

// Card loads one card under the read lock.
func (c *Collection) Card(cardID int64) (*domain.Card, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	card, err := c.store.LoadCard(cardID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("card %d: %w", cardID, ErrNotFound)
		}
		return nil, fmt.Errorf("%w: loading card %d: %v", ErrStorage, cardID, err)
	}
	return card, nil
}

// BuildQueue scans deckID and returns its study queue.
func (c *Collection) BuildQueue(deckID int64) *Queue {
	c.mu.RLock()
	defer c.mu.RUnlock()

	b := NewQueueBuilder(deckID, c.logger)
	b.CollectCards(c.store)
	return b.Build(c.scheduler)
}

func memoryPtr(m domain.MemoryState) *domain.MemoryState {
	return &m
}
