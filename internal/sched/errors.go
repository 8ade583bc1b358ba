package sched

import (
	"errors"

	"github.com/conorfennell/knoldeck/internal/domain"
)

// Use errors.Is to check the kind of a returned error.
var (
	// ErrNotFound is returned when the answered card does not exist.
	ErrNotFound = domain.ErrNotFound
	// ErrStorage wraps a failed read or write of the store.
	ErrStorage = errors.New("storage error")
	// ErrDataIntegrity is returned when a persisted card holds a bucket
	// value outside the known set.
	ErrDataIntegrity = errors.New("data integrity error")
	// ErrUnknownState is returned when a successor state has no mutation rule.
	ErrUnknownState = errors.New("unknown card state")
	// ErrInvalidGrade is returned for a grade outside Again..Easy.
	ErrInvalidGrade = errors.New("invalid grade")
)
