package sched

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/conorfennell/knoldeck/internal/domain"
)

const secondsPerDay = 86_400

// Timing is the day-granularity clock of a collection.
// DaysElapsed counts whole days since the creation stamp and NextDayAt is the
// day index at which the day rolls over.
type Timing struct {
	Now         int64
	DaysElapsed int64
	NextDayAt   int64
}

// StampStore persists the creation stamp all day indices are measured from.
type StampStore interface {
	GetCreationStamp() (int64, error)
	SetCreationStamp(ts int64) error
}

// TimingForTimestamp derives the timing for now (seconds since epoch).
// A missing creation stamp is initialized to now and persisted.
func TimingForTimestamp(store StampStore, now int64, logger *slog.Logger) (Timing, error) {
	stamp, err := store.GetCreationStamp()
	switch {
	case errors.Is(err, domain.ErrNotFound):
		logger.Info("Creation stamp missing, initializing", "stamp", now)
		if setErr := store.SetCreationStamp(now); setErr != nil {
			logger.Warn("Failed to persist creation stamp", "stamp", now, "error", setErr)
		}
		stamp = now
	case err != nil:
		return Timing{}, fmt.Errorf("%w: reading creation stamp: %v", ErrStorage, err)
	}

	daysElapsed := floorDiv(now-stamp, secondsPerDay)
	if daysElapsed < 0 {
		logger.Warn("Clock is behind the creation stamp, clamping days elapsed to zero",
			"now", now, "stamp", stamp, "days_elapsed", daysElapsed)
		daysElapsed = 0
	}

	return Timing{
		Now:         now,
		DaysElapsed: daysElapsed,
		NextDayAt:   daysElapsed + 1,
	}, nil
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
