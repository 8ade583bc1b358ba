// Package app wires an opened collection together: storage, scheduler and
// the Collection that owns them. One App is opened per process and closed on
// shutdown.
package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/conorfennell/knoldeck/internal/config"
	"github.com/conorfennell/knoldeck/internal/fsrs"
	"github.com/conorfennell/knoldeck/internal/sched"
	"github.com/conorfennell/knoldeck/internal/storage"
	"github.com/conorfennell/knoldeck/internal/sync"
)

type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         *storage.DB
	Collection *sched.Collection
}

// Open opens the collection named by cfg.DB at time now.
func Open(cfg *config.Config, logger *slog.Logger, now time.Time) (*App, error) {
	logger.Info("Opening collection", "path", cfg.DB)

	db, err := storage.Open(cfg.DB)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	col, err := sched.NewCollection(db, NewScheduler(cfg.Scheduler), now, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Collection: col,
	}, nil
}

// NewScheduler builds the memory model from the configured overrides.
func NewScheduler(cfg config.SchedulerConfig) *fsrs.Scheduler {
	params := fsrs.DefaultParams()
	if cfg.DesiredRetention > 0 {
		params.DesiredRetention = cfg.DesiredRetention
	}
	if cfg.MaximumInterval > 0 {
		params.MaximumInterval = cfg.MaximumInterval
	}
	return fsrs.NewScheduler(params)
}

// Syncer returns a card importer bound to this collection.
func (a *App) Syncer() *sync.Syncer {
	return sync.NewSyncer(a.DB, a.Config.ReposDir, a.Logger)
}

// Close releases the storage handle. The App must not be used afterwards.
func (a *App) Close() error {
	a.Logger.Debug("Closing collection", "path", a.DB.Path())
	return a.DB.Close()
}
