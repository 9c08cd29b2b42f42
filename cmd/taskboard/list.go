package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/tgienger/taskboard/internal/board"
	"github.com/tgienger/taskboard/internal/config"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

func listCmd(configPath *string) *cobra.Command {
	var (
		status     string
		priorities []string
		completed  string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the seeded tasks through the status and priority filter",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := parseFilter(status, priorities)
			if err != nil {
				return err
			}
			var period board.Period
			if completed != "" {
				if period, err = board.ParsePeriod(completed); err != nil {
					return err
				}
			}
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

			now := time.Now()
			tasks = f.Apply(tasks, now)
			if period != "" {
				tasks = board.CompletedQuery{Period: period}.Apply(tasks, now, cfg.WeekStart())
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), tasks)
			}
			writeTable(cmd.OutOrStdout(), tasks, now)
			return nil
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "all", "Filter by status (all, pending, completed, overdue)")
	cmd.Flags().StringSliceVarP(&priorities, "priority", "p", nil, "Filter by priorities (low, medium, high)")
	cmd.Flags().StringVarP(&completed, "completed", "c", "", "Only tasks completed in a period (all, today, yesterday, week, month)")
	cmd.Flags().BoolVarP(&asJSON, "json", "j", false, "Output as JSON")

	return cmd
}

func parseFilter(status string, priorities []string) (board.Filter, error) {
	st, err := board.ParseStatus(status)
	if err != nil {
		return board.Filter{}, err
	}
	f := board.Filter{Status: st}
	for _, name := range priorities {
		p, err := models.ParsePriority(name)
		if err != nil {
			return board.Filter{}, err
		}
		if !f.HasPriority(p) {
			f = f.TogglePriority(p)
		}
	}
	return f, nil
}

func writeJSON(w io.Writer, tasks []models.Task) error {
	if tasks == nil {
		tasks = []models.Task{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(tasks)
}

func statusLabel(t models.Task, now time.Time) string {
	switch {
	case t.Completed:
		return "done"
	case t.DueDate.Before(now):
		return "overdue"
	}
	return "pending"
}

func writeTable(w io.Writer, tasks []models.Task, now time.Time) {
	headerStyle := lipgloss.NewStyle().Foreground(styles.Current.Primary).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		checklist := ""
		if n := len(t.Checklist); n > 0 {
			checklist = fmt.Sprintf("%d/%d", t.CheckedCount(), n)
		}
		rows = append(rows, []string{
			strconv.FormatInt(t.ID, 10),
			t.Title,
			t.Priority.Label(),
			board.FormatDue(t.DueDate, now),
			statusLabel(t, now),
			checklist,
		})
	}

	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(styles.Current.Border)).
		Headers("ID", "TITLE", "PRIORITY", "DUE", "STATUS", "CHECKLIST").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	fmt.Fprintln(w, tbl.Render())
	fmt.Fprintf(w, "%d task(s)\n", len(tasks))
}
