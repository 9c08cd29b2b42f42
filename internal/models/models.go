package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Priority is the urgency of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Valid reports whether p is one of the known priorities
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Label returns the capitalized name shown in the UI
func (p Priority) Label() string {
	if p == "" {
		return ""
	}
	return strings.ToUpper(string(p[:1])) + string(p[1:])
}

// ParsePriority parses a priority name, case-insensitively
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown priority %q", s)
	}
	return p, nil
}

// ChecklistItem is a sub-step of a task
type ChecklistItem struct {
	ID        string     `json:"id"`
	Text      string     `json:"text"`
	Checked   bool       `json:"checked"`
	CheckedAt *time.Time `json:"checkedAt"`
}

// Task represents a single task
type Task struct {
	ID          int64           `json:"id"`
	Title       string          `json:"title"`
	DueDate     time.Time       `json:"dueDate"`
	Priority    Priority        `json:"priority"`
	Completed   bool            `json:"completed"`
	CompletedAt *time.Time      `json:"completedAt"`
	CreatedAt   time.Time       `json:"createdAt"`
	Checklist   []ChecklistItem `json:"checklist"`
}

// Clone returns a deep copy of the task, including the checklist and every timestamp pointer
func (t Task) Clone() Task {
	c := t
	c.CompletedAt = cloneTime(t.CompletedAt)
	c.Checklist = CloneChecklist(t.Checklist)
	return c
}

// CheckedCount returns how many checklist items are checked
func (t Task) CheckedCount() int {
	n := 0
	for _, item := range t.Checklist {
		if item.Checked {
			n++
		}
	}
	return n
}

// AllChecked reports whether the checklist is non-empty and fully checked
func (t Task) AllChecked() bool {
	return len(t.Checklist) > 0 && t.CheckedCount() == len(t.Checklist)
}

// CloneChecklist deep-copies a checklist. A nil checklist becomes an empty one.
func CloneChecklist(items []ChecklistItem) []ChecklistItem {
	out := make([]ChecklistItem, len(items))
	for i, item := range items {
		out[i] = item
		out[i].CheckedAt = cloneTime(item.CheckedAt)
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Validation errors returned by TaskInput.Validate
var (
	ErrTitleRequired   = errors.New("title is required")
	ErrDueDateRequired = errors.New("due date is required")
	ErrInvalidPriority = errors.New("invalid priority")
)

// TaskInput holds the fields needed to create a task
type TaskInput struct {
	Title     string
	DueDate   time.Time
	Priority  Priority
	Checklist []ChecklistItem
}

// Validate checks the fields a caller must supply before creating a task
func (in TaskInput) Validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return ErrTitleRequired
	}
	if in.DueDate.IsZero() {
		return ErrDueDateRequired
	}
	if !in.Priority.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, in.Priority)
	}
	return nil
}

// TaskPatch is a partial update. Nil fields are left untouched.
// It has no ID field, so identity cannot change through an update.
type TaskPatch struct {
	Title       *string
	DueDate     *time.Time
	Priority    *Priority
	Checklist   *[]ChecklistItem
	Completed   *bool
	CompletedAt *time.Time
}

// PatchFromInput builds a patch that replaces the editable fields of a task with the input
func PatchFromInput(in TaskInput) TaskPatch {
	title := in.Title
	due := in.DueDate
	priority := in.Priority
	checklist := CloneChecklist(in.Checklist)
	return TaskPatch{
		Title:     &title,
		DueDate:   &due,
		Priority:  &priority,
		Checklist: &checklist,
	}
}
