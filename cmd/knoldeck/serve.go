package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knoldeck/internal/app"
	"github.com/conorfennell/knoldeck/internal/web"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
				defer stop()

				srv := &http.Server{
					Addr:              a.Config.Server.Addr,
					Handler:           web.NewServer(a.Collection, a.DB, a.Syncer(), a.Logger),
					ReadHeaderTimeout: 5 * time.Second,
				}

				errCh := make(chan error, 1)
				go func() {
					a.Logger.Info("Starting server", "addr", srv.Addr)
					errCh <- srv.ListenAndServe()
				}()

				select {
				case err := <-errCh:
					return err
				case <-ctx.Done():
				}

				a.Logger.Info("Shutting down server")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
		},
	}
}
