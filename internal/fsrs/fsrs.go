package fsrs

import (
	"math"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/sched"
)

// Params holds the parameters for the FSRS algorithm.
// These are placeholder values and should be optimized later.
type Params struct {
	A                float64 // scales the overall memory increase
	B                float64 // difficulty exponent
	C                float64 // stability exponent
	D                float64 // retention effect scaler
	DesiredRetention float64 // desired retention rate (e.g., 0.9 for 90%)

	// InitialStability is the stability in days after the first answer,
	// indexed by grade.
	InitialStability [5]float64
	// InitialDifficulty is the difficulty after the first answer, indexed by grade.
	InitialDifficulty [5]float64
	HardFactor        float64 // applied to the recall stability on Hard
	EasyBonus         float64 // applied to the recall stability on Easy
	ForgetFactor      float64 // share of stability kept after a lapse
	MaximumInterval   int64   // upper bound for a review interval, in days
}

// DefaultParams provides a set of sensible default parameters to start with.
func DefaultParams() *Params {
	return &Params{
		A:                 0.2,
		B:                 0.5,
		C:                 0.1,
		D:                 4.0,
		DesiredRetention:  0.9,
		InitialStability:  [5]float64{domain.Again: 0.4, domain.Hard: 1.2, domain.Good: 3.2, domain.Easy: 15.7},
		InitialDifficulty: [5]float64{domain.Again: 7, domain.Hard: 6, domain.Good: 5, domain.Easy: 3},
		HardFactor:        0.8,
		EasyBonus:         1.3,
		ForgetFactor:      0.2,
		MaximumInterval:   36500,
	}
}

// Scheduler computes successor states from Params. It never reads the wall
// clock, so the same state always produces the same successors.
type Scheduler struct {
	params *Params
}

var _ sched.Scheduler = (*Scheduler)(nil)

func NewScheduler(p *Params) *Scheduler {
	if p == nil {
		p = DefaultParams()
	}
	return &Scheduler{params: p}
}

// NextStates implements sched.Scheduler.
func (s *Scheduler) NextStates(current sched.CardState) sched.SchedulingStates {
	states := sched.SchedulingStates{Current: current}

	switch c := current.(type) {
	case sched.NewState:
		states.Again = sched.LearningState{Memory: s.initialMemory(domain.Again)}
		states.Hard = sched.LearningState{Memory: s.initialMemory(domain.Hard)}
		states.Good = sched.LearningState{Memory: s.initialMemory(domain.Good)}
		easy := s.initialMemory(domain.Easy)
		states.Easy = sched.ReviewState{ScheduledDays: s.interval(easy.Stability), Memory: easy}

	case sched.LearningState:
		memory := c.Memory
		if memory.Stability <= 0 {
			memory = s.initialMemory(domain.Good)
		}
		states.Again = sched.LearningState{Memory: s.lapse(memory)}
		states.Hard = sched.LearningState{Memory: domain.MemoryState{
			Stability:  memory.Stability,
			Difficulty: clampDifficulty(memory.Difficulty + 0.1),
		}}
		good := s.recall(memory, domain.Good)
		easy := s.recall(memory, domain.Easy)
		goodDays, easyDays := s.interval(good.Stability), s.interval(easy.Stability)
		if easyDays <= goodDays {
			easyDays = goodDays + 1
		}
		states.Good = sched.ReviewState{ScheduledDays: goodDays, Memory: good}
		states.Easy = sched.ReviewState{ScheduledDays: s.capInterval(easyDays), Memory: easy}

	case sched.ReviewState:
		memory := c.Memory
		if memory.Stability <= 0 {
			memory.Stability = math.Max(1, float64(c.ScheduledDays))
		}
		states.Again = sched.LearningState{Memory: s.lapse(memory)}
		hard := s.recall(memory, domain.Hard)
		good := s.recall(memory, domain.Good)
		easy := s.recall(memory, domain.Easy)
		hardDays, goodDays, easyDays := s.orderedIntervals(
			s.interval(hard.Stability), s.interval(good.Stability), s.interval(easy.Stability))
		states.Hard = sched.ReviewState{ScheduledDays: hardDays, Memory: hard}
		states.Good = sched.ReviewState{ScheduledDays: goodDays, Memory: good}
		states.Easy = sched.ReviewState{ScheduledDays: easyDays, Memory: easy}

	default:
		// Unknown states are passed through; applying them is rejected by
		// the collection.
		states.Again, states.Hard, states.Good, states.Easy = current, current, current, current
	}

	return states
}

func (s *Scheduler) initialMemory(g domain.Grade) domain.MemoryState {
	return domain.MemoryState{
		Stability:  s.params.InitialStability[g],
		Difficulty: clampDifficulty(s.params.InitialDifficulty[g]),
	}
}

// lapse is the memory state after the user forgot the card.
func (s *Scheduler) lapse(m domain.MemoryState) domain.MemoryState {
	return domain.MemoryState{
		Stability:  math.Max(s.params.InitialStability[domain.Again], m.Stability*s.params.ForgetFactor),
		Difficulty: clampDifficulty(m.Difficulty + 0.5),
	}
}

// recall is the memory state after a successful answer graded g.
func (s *Scheduler) recall(m domain.MemoryState, g domain.Grade) domain.MemoryState {
	stability := s.params.calculateNewStability(m.Stability, m.Difficulty)
	difficulty := m.Difficulty
	switch g {
	case domain.Hard:
		stability = math.Max(m.Stability, stability*s.params.HardFactor)
		difficulty += 0.1
	case domain.Easy:
		stability *= s.params.EasyBonus
		difficulty -= 0.2
	}
	return domain.MemoryState{Stability: stability, Difficulty: clampDifficulty(difficulty)}
}

// calculateNewStability applies the core FSRS formula for a successful review.
func (p *Params) calculateNewStability(stability, difficulty float64) float64 {
	// Formula: S' = S * (1 + a * D^(-b) * S^c * (e^(d * (1-R)) - 1))
	if stability < 1 {
		stability = 1 // Ensure stability is at least 1 to avoid issues with pow
	}
	if difficulty < 1 {
		difficulty = 1 // Ensure difficulty is at least 1
	}

	factor := p.A * math.Pow(difficulty, -p.B) * math.Pow(stability, p.C)
	exponent := p.D * (1 - p.DesiredRetention)
	multiplier := math.Exp(exponent) - 1

	return stability * (1 + factor*multiplier)
}

// interval converts a stability into whole days, between 1 and the maximum.
func (s *Scheduler) interval(stability float64) int64 {
	return s.capInterval(int64(math.Round(stability)))
}

func (s *Scheduler) capInterval(days int64) int64 {
	if days < 1 {
		days = 1
	}
	if s.params.MaximumInterval > 0 && days > s.params.MaximumInterval {
		days = s.params.MaximumInterval
	}
	return days
}

// orderedIntervals forces hard <= good < easy where the maximum allows it.
func (s *Scheduler) orderedIntervals(hard, good, easy int64) (int64, int64, int64) {
	if hard > good {
		hard = good
	}
	if easy <= good {
		easy = s.capInterval(good + 1)
	}
	return hard, good, easy
}

func clampDifficulty(d float64) float64 {
	return math.Min(10, math.Max(1, d))
}
