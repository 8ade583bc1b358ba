package sched

import "github.com/conorfennell/knoldeck/internal/domain"

// CardState describes where a card sits in its lifecycle, carrying only the
// fields relevant to that bucket. The set of variants is closed: NewState,
// LearningState and ReviewState.
type CardState interface {
	Bucket() domain.Bucket
	cardState()
}

// NewState is a card that has never been studied.
type NewState struct {
	Position int64
}

// LearningState is a card in short-interval learning.
type LearningState struct {
	Memory domain.MemoryState
}

// ReviewState is a card in the long-term review cycle.
type ReviewState struct {
	ScheduledDays int64
	Memory        domain.MemoryState
}

func (NewState) Bucket() domain.Bucket      { return domain.New }
func (LearningState) Bucket() domain.Bucket { return domain.Learning }
func (ReviewState) Bucket() domain.Bucket   { return domain.Review }

func (NewState) cardState()      {}
func (LearningState) cardState() {}
func (ReviewState) cardState()   {}

// SchedulingStates holds the state a card would move to for each grade.
type SchedulingStates struct {
	Current CardState
	Again   CardState
	Hard    CardState
	Good    CardState
	Easy    CardState
}

// ForGrade returns the successor for g, or false if g is not a valid grade.
func (s SchedulingStates) ForGrade(g domain.Grade) (CardState, bool) {
	switch g {
	case domain.Again:
		return s.Again, true
	case domain.Hard:
		return s.Hard, true
	case domain.Good:
		return s.Good, true
	case domain.Easy:
		return s.Easy, true
	}
	return nil, false
}

// Scheduler computes the four grade-conditioned successors of a state.
//
// Implementations must be deterministic: the same CardState always yields
// the same SchedulingStates. For Review successors ScheduledDays must be
// non-decreasing in the order Again, Hard, Good, Easy; queue consumers rely
// on it and it is not checked here.
type Scheduler interface {
	NextStates(current CardState) SchedulingStates
}
