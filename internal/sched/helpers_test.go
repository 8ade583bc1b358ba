package sched

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// memStore is an in-memory Store. Cards are listed in insertion order.
type memStore struct {
	mu         sync.Mutex
	cards      map[int64]domain.Card
	order      []int64
	stamp      *int64
	stampErr   error
	setErr     error
	loadErr    error
	saveErr    error
	failBucket map[domain.Bucket]bool
	saves      int
}

func newMemStore(cards ...domain.Card) *memStore {
	s := &memStore{cards: map[int64]domain.Card{}, failBucket: map[domain.Bucket]bool{}}
	for _, c := range cards {
		s.cards[c.ID] = c
		s.order = append(s.order, c.ID)
	}
	return s
}

func (s *memStore) GetCreationStamp() (int64, error) {
	if s.stampErr != nil {
		return 0, s.stampErr
	}
	if s.stamp == nil {
		return 0, domain.ErrNotFound
	}
	return *s.stamp, nil
}

func (s *memStore) SetCreationStamp(ts int64) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.stamp = &ts
	return nil
}

func (s *memStore) LoadCard(id int64) (*domain.Card, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	c, ok := s.cards[id]
	if !ok {
		return nil, fmt.Errorf("card %d: %w", id, domain.ErrNotFound)
	}
	if c.MemoryState != nil {
		m := *c.MemoryState
		c.MemoryState = &m
	}
	return &c, nil
}

func (s *memStore) SaveCard(card *domain.Card) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	s.cards[card.ID] = *card
	s.saves++
	return nil
}

func (s *memStore) ForEachCardInDeck(deckID int64, bucket domain.Bucket, fn func(domain.Card) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.order {
		c := s.cards[id]
		if c.DeckID != deckID || c.Bucket != bucket {
			continue
		}
		if s.failBucket[bucket] {
			// Fail after the first card so partial results must be discarded.
			_ = fn(c)
			return errors.New("disk I/O error")
		}
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

// stubScheduler returns fixed successors regardless of the current state.
type stubScheduler struct {
	again, hard, good, easy CardState
}

func (s stubScheduler) NextStates(current CardState) SchedulingStates {
	return SchedulingStates{Current: current, Again: s.again, Hard: s.hard, Good: s.good, Easy: s.easy}
}

// echoScheduler derives successors from the current state so queue tests can
// tell entries apart.
type echoScheduler struct{}

func (echoScheduler) NextStates(current CardState) SchedulingStates {
	return SchedulingStates{
		Current: current,
		Again:   LearningState{},
		Hard:    ReviewState{ScheduledDays: 1},
		Good:    ReviewState{ScheduledDays: 3},
		Easy:    ReviewState{ScheduledDays: 7},
	}
}

func newBufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})), &buf
}

func int64Ptr(v int64) *int64 { return &v }
