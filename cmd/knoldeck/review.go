package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conorfennell/knoldeck/internal/app"
	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/sched"
)

var errQuit = errors.New("quit")

func reviewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "review <deck-id>",
		Short: "Study a deck interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			deckID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, func(a *app.App) error {
				n, err := review(a.Collection, deckID, cmd.InOrStdin(), cmd.OutOrStdout())
				fmt.Fprintf(cmd.OutOrStdout(), "Reviewed %d cards.\n", n)
				return err
			})
		},
	}
}

// review walks the queue of deckID once, asking for a grade per card. It
// stops at the end of the queue, on "q" or at the end of input.
func review(col *sched.Collection, deckID int64, in io.Reader, out io.Writer) (int, error) {
	q := col.BuildQueue(deckID)
	fmt.Fprintln(out, statsLine(q.Stats))

	scanner := bufio.NewScanner(in)
	reviewed := 0
	for {
		entry, ok := q.PopFront()
		if !ok {
			return reviewed, nil
		}
		card, err := col.Card(entry.CardID)
		if err != nil {
			return reviewed, err
		}

		fmt.Fprintf(out, "\n[%s] %s\n", entry.Bucket, card.Question)
		if card.Context != "" {
			fmt.Fprintf(out, "(%s)\n", card.Context)
		}
		fmt.Fprint(out, "Press Enter to show the answer.")
		if _, err := readLine(scanner); err != nil {
			return reviewed, ignoreQuit(err)
		}
		fmt.Fprintf(out, "%s\n", card.Answer)

		grade, err := askGrade(scanner, out, entry.States)
		if err != nil {
			return reviewed, ignoreQuit(err)
		}
		if _, err := col.AnswerCard(entry.CardID, grade); err != nil {
			return reviewed, err
		}
		reviewed++
	}
}

func askGrade(scanner *bufio.Scanner, out io.Writer, states sched.SchedulingStates) (domain.Grade, error) {
	for {
		var prompt []string
		for _, g := range domain.Grades {
			next, _ := states.ForGrade(g)
			prompt = append(prompt, fmt.Sprintf("%d) %s: %s", g, g, describeState(next)))
		}
		fmt.Fprintf(out, "%s\n> ", strings.Join(prompt, "  "))

		line, err := readLine(scanner)
		if err != nil {
			return 0, err
		}
		grade, err := domain.ParseGrade(line)
		if err == nil {
			return grade, nil
		}
		fmt.Fprintln(out, err)
	}
}

func readLine(scanner *bufio.Scanner) (string, error) {
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", err
		}
		return "", errQuit
	}
	line := strings.TrimSpace(scanner.Text())
	if line == "q" {
		return "", errQuit
	}
	return line, nil
}

func ignoreQuit(err error) error {
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}
