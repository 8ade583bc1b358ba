package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knoldeck/internal/app"
)

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func queueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "queue <deck-id>",
		Short: "Show the study queue of a deck with the outcome of every grade",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deckID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App) error {
				q := a.Collection.BuildQueue(deckID)
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Day %d. %s\n", a.Collection.Timing().DaysElapsed, statsLine(q.Stats))
				t := queueTable(q)
				t.SetOutputMirror(out)
				t.Render()
				return nil
			})
		},
	}
}
