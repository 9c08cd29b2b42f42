// Package board derives read-only views from a snapshot of the task
// collection: day partitions, filters, completion groups, progress and the
// calendar grid. Nothing here mutates a task.
package board

import (
	"sort"
	"time"

	"github.com/tgienger/taskboard/internal/models"
)

// DefaultUpcoming is how many upcoming tasks the dashboard lists
const DefaultUpcoming = 3

// Today returns the tasks due on now's calendar day, completed or not
func Today(tasks []models.Task, now time.Time) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if IsToday(t.DueDate, now) {
			out = append(out, t)
		}
	}
	return out
}

// Upcoming returns open tasks due after today, soonest first.
// A limit of zero or less returns all of them.
func Upcoming(tasks []models.Task, now time.Time, limit int) []models.Task {
	end := EndOfDay(now, now.Location())
	var out []models.Task
	for _, t := range tasks {
		if !t.Completed && t.DueDate.After(end) {
			out = append(out, t)
		}
	}
	SortByDue(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Overdue returns open tasks due strictly before now and not due today
func Overdue(tasks []models.Task, now time.Time) []models.Task {
	var out []models.Task
	for _, t := range tasks {
		if isOverdue(t, now) {
			out = append(out, t)
		}
	}
	return out
}

func isOverdue(t models.Task, now time.Time) bool {
	return !t.Completed && t.DueDate.Before(now) && !IsToday(t.DueDate, now)
}

// DaySummary holds the dashboard counters
type DaySummary struct {
	Today     int
	Completed int
	Overdue   int
	Upcoming  int
	// Progress is completed-today over due-today, in [0, 1]
	Progress float64
}

// AllDone reports whether every task due today is complete
func (s DaySummary) AllDone() bool {
	return s.Today > 0 && s.Completed == s.Today
}

// Summarize computes the dashboard counters
func Summarize(tasks []models.Task, now time.Time) DaySummary {
	today := Today(tasks, now)
	s := DaySummary{
		Today:    len(today),
		Overdue:  len(Overdue(tasks, now)),
		Upcoming: len(Upcoming(tasks, now, DefaultUpcoming)),
	}
	for _, t := range today {
		if t.Completed {
			s.Completed++
		}
	}
	s.Progress = Ratio(s.Completed, s.Today)
	return s
}

// Greeting returns the part of day for now
func Greeting(now time.Time) string {
	switch h := now.Hour(); {
	case h < 12:
		return "morning"
	case h < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

// Progress returns the fraction of checked checklist items, 0 with no checklist
func Progress(t models.Task) float64 {
	return Ratio(t.CheckedCount(), len(t.Checklist))
}

// Ratio returns n/total, or 0 when total is 0
func Ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

// SortByDue sorts tasks by due date ascending, keeping insertion order for ties
func SortByDue(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return tasks[i].DueDate.Before(tasks[j].DueDate)
	})
}
