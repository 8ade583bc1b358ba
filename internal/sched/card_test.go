package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/knoldeck/internal/domain"
)

func TestCurrentState(t *testing.T) {
	memory := &domain.MemoryState{Stability: 4.5, Difficulty: 6}

	testCases := []struct {
		name string
		card domain.Card
		want CardState
	}{
		{
			name: "new card carries its position",
			card: domain.Card{ID: 1, Bucket: domain.New, Due: 12},
			want: NewState{Position: 12},
		},
		{
			name: "learning card carries its memory state",
			card: domain.Card{ID: 2, Bucket: domain.Learning, Due: 3, MemoryState: memory},
			want: LearningState{Memory: *memory},
		},
		{
			name: "learning card without memory state",
			card: domain.Card{ID: 3, Bucket: domain.Learning},
			want: LearningState{},
		},
		{
			name: "review card carries interval and memory state",
			card: domain.Card{ID: 4, Bucket: domain.Review, Due: 40, Interval: 9, MemoryState: memory},
			want: ReviewState{ScheduledDays: 9, Memory: *memory},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := CurrentState(&tc.card)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.card.Bucket, got.Bucket())
		})
	}
}

func TestCurrentStateRejectsUnknownBucket(t *testing.T) {
	_, err := CurrentState(&domain.Card{ID: 7, Bucket: domain.Bucket(5)})
	assert.ErrorIs(t, err, ErrDataIntegrity)
}

func TestSchedulingStatesForGrade(t *testing.T) {
	states := echoScheduler{}.NextStates(NewState{})

	got, ok := states.ForGrade(domain.Good)
	require.True(t, ok)
	assert.Equal(t, ReviewState{ScheduledDays: 3}, got)

	_, ok = states.ForGrade(domain.Grade(0))
	assert.False(t, ok)
}
