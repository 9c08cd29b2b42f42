// Package service is the public API over the task store: CRUD plus the
// complete/reopen/checklist lifecycle rules.
package service

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	nanoid "github.com/jaevor/go-nanoid"

	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/store"
)

// ErrNotFound is returned when a task or checklist item id does not exist
var ErrNotFound = store.ErrNotFound

// Simulated response times, per operation
var defaultLatency = map[string]time.Duration{
	"getAll":              300 * time.Millisecond,
	"getById":             200 * time.Millisecond,
	"create":              400 * time.Millisecond,
	"update":              300 * time.Millisecond,
	"delete":              250 * time.Millisecond,
	"updateChecklistItem": 200 * time.Millisecond,
	"completeTask":        300 * time.Millisecond,
	"reopenTask":          300 * time.Millisecond,
}

const itemIDAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// Option configures a TaskService
type Option func(*TaskService)

// WithClock replaces time.Now as the source of timestamps
func WithClock(now func() time.Time) Option {
	return func(s *TaskService) { s.now = now }
}

// WithoutLatency disables the simulated response delay
func WithoutLatency() Option {
	return func(s *TaskService) { s.latency = nil }
}

// WithSleep replaces time.Sleep for the simulated delay
func WithSleep(sleep func(time.Duration)) Option {
	return func(s *TaskService) { s.sleep = sleep }
}

// TaskService wraps task-related business logic
type TaskService struct {
	store   *store.Store
	now     func() time.Time
	sleep   func(time.Duration)
	latency map[string]time.Duration
	suffix  func() string
}

// New creates a task service over the given store
func New(st *store.Store, opts ...Option) (*TaskService, error) {
	suffix, err := nanoid.CustomASCII(itemIDAlphabet, 9)
	if err != nil {
		return nil, fmt.Errorf("item id generator: %w", err)
	}

	s := &TaskService{
		store:   st,
		now:     time.Now,
		sleep:   time.Sleep,
		latency: defaultLatency,
		suffix:  suffix,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// GetAll returns a snapshot of every task in insertion order
func (s *TaskService) GetAll() ([]models.Task, error) {
	s.delay("getAll")
	return s.store.All(), nil
}

// GetByID returns the task with the given id
func (s *TaskService) GetByID(id int64) (models.Task, error) {
	s.delay("getById")
	task, err := s.store.Find(id)
	if err != nil {
		return models.Task{}, fmt.Errorf("get task %d: %w", id, err)
	}
	return task, nil
}

// Create stores a new, open task. The input is not validated here;
// callers run TaskInput.Validate first.
func (s *TaskService) Create(in models.TaskInput) (models.Task, error) {
	s.delay("create")
	now := s.now()

	task := models.Task{
		Title:     in.Title,
		DueDate:   in.DueDate,
		Priority:  in.Priority,
		CreatedAt: now,
		Checklist: s.normalizeChecklist(in.Checklist, now),
	}

	created := s.store.Insert(task)
	log.Printf("[task] created %d %q", created.ID, created.Title)
	return created, nil
}

// Update merges the patch into the task
func (s *TaskService) Update(id int64, patch models.TaskPatch) (models.Task, error) {
	s.delay("update")
	now := s.now()

	task, err := s.store.Mutate(id, func(t *models.Task) error {
		applyPatch(t, patch, now, s.normalizeChecklist)
		return nil
	})
	if err != nil {
		return models.Task{}, fmt.Errorf("update task %d: %w", id, err)
	}
	log.Printf("[task] updated %d", id)
	return task, nil
}

// Delete removes the task and returns what was removed
func (s *TaskService) Delete(id int64) (models.Task, error) {
	s.delay("delete")
	task, err := s.store.Remove(id)
	if err != nil {
		return models.Task{}, fmt.Errorf("delete task %d: %w", id, err)
	}
	log.Printf("[task] deleted %d", id)
	return task, nil
}

// UpdateChecklistItem checks or unchecks one item, then re-derives the task's
// completion: complete iff the checklist is non-empty and fully checked.
func (s *TaskService) UpdateChecklistItem(taskID int64, itemID string, checked bool) (models.Task, error) {
	s.delay("updateChecklistItem")
	now := s.now()

	task, err := s.store.Mutate(taskID, func(t *models.Task) error {
		idx := -1
		for i, item := range t.Checklist {
			if item.ID == itemID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return fmt.Errorf("checklist item %q: %w", itemID, ErrNotFound)
		}

		item := &t.Checklist[idx]
		item.Checked = checked
		item.CheckedAt = nil
		if checked {
			at := now
			item.CheckedAt = &at
		}

		allChecked := t.AllChecked()
		switch {
		case allChecked && !t.Completed:
			at := now
			t.Completed = true
			t.CompletedAt = &at
		case !allChecked && t.Completed:
			t.Completed = false
			t.CompletedAt = nil
		}
		return nil
	})
	if err != nil {
		return models.Task{}, fmt.Errorf("update checklist of task %d: %w", taskID, err)
	}
	log.Printf("[task] checklist %d/%s checked=%t", taskID, itemID, checked)
	return task, nil
}

// CompleteTask marks the task and every checklist item done
func (s *TaskService) CompleteTask(id int64) (models.Task, error) {
	s.delay("completeTask")
	now := s.now()

	task, err := s.store.Mutate(id, func(t *models.Task) error {
		at := now
		t.Completed = true
		t.CompletedAt = &at
		for i := range t.Checklist {
			itemAt := now
			t.Checklist[i].Checked = true
			t.Checklist[i].CheckedAt = &itemAt
		}
		return nil
	})
	if err != nil {
		return models.Task{}, fmt.Errorf("complete task %d: %w", id, err)
	}
	log.Printf("[task] completed %d", id)
	return task, nil
}

// ReopenTask marks the task open again. Checklist items keep their state.
func (s *TaskService) ReopenTask(id int64) (models.Task, error) {
	s.delay("reopenTask")

	task, err := s.store.Mutate(id, func(t *models.Task) error {
		t.Completed = false
		t.CompletedAt = nil
		return nil
	})
	if err != nil {
		return models.Task{}, fmt.Errorf("reopen task %d: %w", id, err)
	}
	log.Printf("[task] reopened %d", id)
	return task, nil
}

// Version changes whenever a task is created, changed or deleted. It is
// answered at once, without the simulated delay.
func (s *TaskService) Version() uint64 {
	return s.store.Version()
}

// IsNotFound reports whether err means a missing task or checklist item
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func (s *TaskService) delay(op string) {
	if d := s.latency[op]; d > 0 {
		s.sleep(d)
	}
}

// NewItemID returns a fresh checklist item id of the form cl_<millis>_<suffix>
func (s *TaskService) NewItemID() string {
	return "cl_" + strconv.FormatInt(s.now().UnixMilli(), 10) + "_" + s.suffix()
}

// normalizeChecklist copies the items, gives missing or repeated ids a fresh
// one and makes checkedAt agree with checked
func (s *TaskService) normalizeChecklist(items []models.ChecklistItem, now time.Time) []models.ChecklistItem {
	out := models.CloneChecklist(items)
	seen := make(map[string]bool, len(out))
	for i := range out {
		for out[i].ID == "" || seen[out[i].ID] {
			out[i].ID = s.NewItemID()
		}
		seen[out[i].ID] = true
		switch {
		case out[i].Checked && out[i].CheckedAt == nil:
			at := now
			out[i].CheckedAt = &at
		case !out[i].Checked:
			out[i].CheckedAt = nil
		}
	}
	return out
}
