package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knoldeck/internal/app"
	"github.com/conorfennell/knoldeck/internal/config"
	"github.com/conorfennell/knoldeck/internal/logging"
)

var cfgFile string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "knoldeck",
		Short:        "Spaced-repetition study from markdown notes.",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is "+config.DefaultPath()+")")
	config.RegisterFlags(root.PersistentFlags())

	root.AddCommand(
		deckCmd(),
		sourceCmd(),
		syncCmd(),
		queueCmd(),
		answerCmd(),
		reviewCmd(),
		serveCmd(),
	)
	return root
}

// withApp loads the configuration, opens the collection, runs fn and closes
// everything again.
func withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	path, explicit := cfgFile, cfgFile != ""
	if !explicit {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, explicit, cmd.Flags())
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	slog.SetDefault(logger)

	a, err := app.Open(cfg, logger, time.Now())
	if err != nil {
		return fmt.Errorf("failed to open collection %s: %w", cfg.DB, err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("Failed to close collection", "error", err)
		}
	}()

	return fn(a)
}
