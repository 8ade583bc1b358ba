package sched

import (
	"fmt"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// CurrentState maps a persisted card to the state variant of its bucket.
func CurrentState(card *domain.Card) (CardState, error) {
	var memory domain.MemoryState
	if card.MemoryState != nil {
		memory = *card.MemoryState
	}

	switch card.Bucket {
	case domain.New:
		return NewState{Position: card.Due}, nil
	case domain.Learning:
		return LearningState{Memory: memory}, nil
	case domain.Review:
		return ReviewState{ScheduledDays: card.Interval, Memory: memory}, nil
	}
	return nil, fmt.Errorf("%w: card %d has bucket %d", ErrDataIntegrity, card.ID, int(card.Bucket))
}
