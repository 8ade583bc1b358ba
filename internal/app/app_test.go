package app

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conorfennell/knoldeck/internal/config"
	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/sched"
)

func testConfig(t *testing.T, db string) *config.Config {
	cfg := config.Default()
	cfg.DB = db
	cfg.ReposDir = t.TempDir()
	return &cfg
}

func TestOpenImportAnswer(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := testConfig(t, filepath.Join(t.TempDir(), "collection.db"))
	created := time.Unix(1_700_000_000, 0)

	a, err := Open(cfg, logger, created)
	require.NoError(t, err)

	notes := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(notes, "go.md"), []byte("Q: What is Go?\nA: A language\n"), 0o644))
	source, err := a.Syncer().AddSource("go", notes)
	require.NoError(t, err)
	_, err = a.Syncer().RunSync()
	require.NoError(t, err)

	q := a.Collection.BuildQueue(source.DeckID)
	entry, ok := q.PopFront()
	require.True(t, ok)

	card, err := a.Collection.AnswerCard(entry.CardID, domain.Easy)
	require.NoError(t, err)
	assert.Equal(t, domain.Review, card.Bucket)
	assert.Equal(t, card.Interval, card.Due, "answered on day zero")
	require.NoError(t, a.Close())

	// Reopening three days later keeps the original creation stamp.
	a, err = Open(cfg, logger, created.Add(72*time.Hour+time.Minute))
	require.NoError(t, err)
	defer a.Close()
	assert.Equal(t, int64(3), a.Collection.Timing().DaysElapsed)

	reloaded, err := a.DB.LoadCard(card.ID)
	require.NoError(t, err)
	assert.Equal(t, card, reloaded)
}

func TestNewSchedulerOverrides(t *testing.T) {
	s := NewScheduler(config.SchedulerConfig{DesiredRetention: 0.8, MaximumInterval: 5})
	easy, ok := s.NextStates(sched.NewState{}).Easy.(sched.ReviewState)
	require.True(t, ok)
	assert.Equal(t, int64(5), easy.ScheduledDays)
}
