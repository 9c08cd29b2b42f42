package board

import (
	"fmt"
	"strings"
	"time"

	"github.com/tgienger/taskboard/internal/models"
)

// Status selects tasks by completion state
type Status string

const (
	StatusAll       Status = "all"
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
)

// Statuses in the order the filter bar cycles through them
var Statuses = []Status{StatusAll, StatusPending, StatusCompleted, StatusOverdue}

// ParseStatus parses a status name; the empty string means all
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return StatusAll, nil
	}
	for _, known := range Statuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", s)
}

// Next returns the status after s in the cycle
func (s Status) Next() Status {
	for i, st := range Statuses {
		if st == s {
			return Statuses[(i+1)%len(Statuses)]
		}
	}
	return StatusAll
}

// Filter is the task list's status and priority selection
type Filter struct {
	Status     Status
	Priorities []models.Priority // empty means any priority
}

// IsZero reports whether the filter lets every task through
func (f Filter) IsZero() bool {
	return (f.Status == "" || f.Status == StatusAll) && len(f.Priorities) == 0
}

// HasPriority reports whether p is selected
func (f Filter) HasPriority(p models.Priority) bool {
	for _, sel := range f.Priorities {
		if sel == p {
			return true
		}
	}
	return false
}

// TogglePriority adds p to the selection, or removes it if present
func (f Filter) TogglePriority(p models.Priority) Filter {
	out := Filter{Status: f.Status}
	found := false
	for _, sel := range f.Priorities {
		if sel == p {
			found = true
			continue
		}
		out.Priorities = append(out.Priorities, sel)
	}
	if !found {
		out.Priorities = append(out.Priorities, p)
	}
	return out
}

// Match reports whether a task passes both predicates
func (f Filter) Match(t models.Task, now time.Time) bool {
	switch f.Status {
	case StatusPending:
		if t.Completed {
			return false
		}
	case StatusCompleted:
		if !t.Completed {
			return false
		}
	case StatusOverdue:
		if t.Completed || !t.DueDate.Before(now) {
			return false
		}
	}
	if len(f.Priorities) > 0 && !f.HasPriority(t.Priority) {
		return false
	}
	return true
}

// Apply returns the matching tasks sorted ascending by due date
func (f Filter) Apply(tasks []models.Task, now time.Time) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t, now) {
			out = append(out, t)
		}
	}
	SortByDue(out)
	return out
}

// Stats are the task page header counters
type Stats struct {
	Total     int
	Completed int
	Pending   int
	Overdue   int
}

// Count computes the header counters. Overdue here is any open task past due.
func Count(tasks []models.Task, now time.Time) Stats {
	var s Stats
	for _, t := range tasks {
		s.Total++
		if t.Completed {
			s.Completed++
			continue
		}
		s.Pending++
		if t.DueDate.Before(now) {
			s.Overdue++
		}
	}
	return s
}
