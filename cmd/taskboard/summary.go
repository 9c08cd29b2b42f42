package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tgienger/taskboard/internal/board"
	"github.com/tgienger/taskboard/internal/config"
	"github.com/tgienger/taskboard/internal/models"
)

func summaryCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print today's progress, overdue tasks and what is coming up",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			svc, err := newService(cfg, time.Now)
			if err != nil {
				return err
			}
			tasks, err := svc.GetAll()
			if err != nil {
				return err
			}
			writeSummary(cmd.OutOrStdout(), tasks, time.Now())
			return nil
		},
	}
}

func writeSummary(w io.Writer, tasks []models.Task, now time.Time) {
	sum := board.Summarize(tasks, now)

	fmt.Fprintf(w, "Good %s. %s\n\n", board.Greeting(now), now.Format(board.LongLayout))
	fmt.Fprintf(w, "Today:    %d/%d done (%.0f%%)\n", sum.Completed, sum.Today, sum.Progress*100)
	fmt.Fprintf(w, "Overdue:  %d\n", sum.Overdue)
	fmt.Fprintf(w, "Upcoming: %d\n", sum.Upcoming)
	if sum.AllDone() {
		fmt.Fprintln(w, "\nAll done for today!")
	}

	printSection(w, "Due today", board.Today(tasks, now), now)
	overdue := board.Overdue(tasks, now)
	board.SortByDue(overdue)
	printSection(w, "Overdue", overdue, now)
	printSection(w, "Coming up", board.Upcoming(tasks, now, board.DefaultUpcoming), now)
}

func printSection(w io.Writer, title string, tasks []models.Task, now time.Time) {
	if len(tasks) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, t := range tasks {
		box := "[ ]"
		if t.Completed {
			box = "[x]"
		}
		fmt.Fprintf(w, "  %s %s (%s, %s)\n", box, t.Title, t.Priority, board.FormatDue(t.DueDate, now))
	}
}
