package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knoldeck/internal/app"
)

func sourceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "source",
		Short: "Manage card sources",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "add <deck> <path/or/url.git>",
		Short: "Import a directory or git repository of markdown notes into a deck",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				source, err := a.Syncer().AddSource(args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Added %s source %d to deck %q. Run 'knoldeck sync' to import it.\n",
					source.Type, source.ID, args[0])
				return nil
			})
		},
	})
	return cmd
}

func syncCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Import new notes from every source and drop removed ones",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(a *app.App) error {
				syncer := a.Syncer()
				if verbose {
					syncer.WithProgress(cmd.ErrOrStderr())
				}
				report, err := syncer.RunSync()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Synced %d sources: %d inserted, %d deleted, %d failed, %d errors.\n",
					report.Sources, report.Inserted, report.Deleted, report.Failed, report.Errors)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show git progress")
	return cmd
}
