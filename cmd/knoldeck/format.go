package main

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/conorfennell/knoldeck/internal/domain"
	"github.com/conorfennell/knoldeck/internal/sched"
)

// describeState renders a scheduling state in one short cell.
func describeState(st sched.CardState) string {
	switch s := st.(type) {
	case sched.NewState:
		return "new #" + strconv.FormatInt(s.Position, 10)
	case sched.LearningState:
		return fmt.Sprintf("learning s=%.2f", s.Memory.Stability)
	case sched.ReviewState:
		return fmt.Sprintf("review %dd", s.ScheduledDays)
	}
	return "?"
}

func queueTable(q *sched.Queue) table.Writer {
	t := table.NewWriter()
	header := table.Row{"Card", "Bucket", "Current"}
	for _, g := range domain.Grades {
		header = append(header, g.String())
	}
	t.AppendHeader(header)

	for _, e := range q.Entries() {
		row := table.Row{e.CardID, e.Bucket, describeState(e.States.Current)}
		for _, g := range domain.Grades {
			next, _ := e.States.ForGrade(g)
			row = append(row, describeState(next))
		}
		t.AppendRow(row)
	}
	t.AppendFooter(table.Row{"", "Total", q.Stats.Total()})
	return t
}

func statsLine(stats sched.Stats) string {
	return fmt.Sprintf("New: %d  Learning: %d  Review: %d", stats.New, stats.Learning, stats.Review)
}
