package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knoldeck/internal/app"
	"github.com/conorfennell/knoldeck/internal/domain"
)

func answerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "answer <card-id> <again|hard|good|easy>",
		Short: "Grade one card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cardID, err := parseID(args[0])
			if err != nil {
				return err
			}
			grade, err := domain.ParseGrade(args[1])
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App) error {
				card, err := a.Collection.AnswerCard(cardID, grade)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Card %d is now %s, due day %d.\n", card.ID, card.Bucket, card.Due)
				return nil
			})
		},
	}
}
