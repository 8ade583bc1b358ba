package sched

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const t0 = int64(1_700_000_000)

func TestTimingForTimestamp(t *testing.T) {
	t.Run("initializes a missing creation stamp", func(t *testing.T) {
		store := newMemStore()
		logger, _ := newBufferLogger()

		timing, err := TimingForTimestamp(store, t0, logger)
		require.NoError(t, err)
		assert.Equal(t, Timing{Now: t0, DaysElapsed: 0, NextDayAt: 1}, timing)
		require.NotNil(t, store.stamp)
		assert.Equal(t, t0, *store.stamp)
	})

	t.Run("counts whole days since the stamp", func(t *testing.T) {
		store := newMemStore()
		store.stamp = int64Ptr(t0)
		logger, _ := newBufferLogger()

		timing, err := TimingForTimestamp(store, t0+90_000, logger)
		require.NoError(t, err)
		assert.Equal(t, int64(1), timing.DaysElapsed)
		assert.Equal(t, int64(2), timing.NextDayAt)
	})

	t.Run("exact day boundary", func(t *testing.T) {
		store := newMemStore()
		store.stamp = int64Ptr(t0)
		logger, _ := newBufferLogger()

		timing, err := TimingForTimestamp(store, t0+3*86_400, logger)
		require.NoError(t, err)
		assert.Equal(t, int64(3), timing.DaysElapsed)
	})

	t.Run("clock behind the stamp clamps to zero", func(t *testing.T) {
		store := newMemStore()
		store.stamp = int64Ptr(t0)
		logger, buf := newBufferLogger()

		timing, err := TimingForTimestamp(store, t0-100_000, logger)
		require.NoError(t, err)
		assert.Equal(t, int64(0), timing.DaysElapsed)
		assert.Equal(t, int64(1), timing.NextDayAt)
		assert.Contains(t, buf.String(), `"level":"WARN"`)
		assert.Contains(t, buf.String(), "clamping")
	})

	t.Run("failed stamp write is not surfaced", func(t *testing.T) {
		store := newMemStore()
		store.setErr = errors.New("read-only database")
		logger, buf := newBufferLogger()

		timing, err := TimingForTimestamp(store, t0, logger)
		require.NoError(t, err)
		assert.Equal(t, int64(0), timing.DaysElapsed)
		assert.Contains(t, buf.String(), "read-only database")
	})

	t.Run("read failure is surfaced", func(t *testing.T) {
		store := newMemStore()
		store.stampErr = errors.New("database is locked")
		logger, _ := newBufferLogger()

		_, err := TimingForTimestamp(store, t0, logger)
		assert.ErrorIs(t, err, ErrStorage)
		assert.Nil(t, store.stamp)
	})
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, int64(1), floorDiv(90_000, 86_400))
	assert.Equal(t, int64(0), floorDiv(0, 86_400))
	assert.Equal(t, int64(-1), floorDiv(-1, 86_400))
	assert.Equal(t, int64(-2), floorDiv(-86_401, 86_400))
}
