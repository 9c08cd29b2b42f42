package service

import (
	"time"

	"github.com/tgienger/taskboard/internal/models"
)

// applyPatch copies the allowed fields of the patch onto t.
// Completion fields are reconciled so completed and completedAt always agree.
func applyPatch(t *models.Task, p models.TaskPatch, now time.Time,
	normalize func([]models.ChecklistItem, time.Time) []models.ChecklistItem) {

	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.DueDate != nil {
		t.DueDate = *p.DueDate
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Checklist != nil {
		t.Checklist = normalize(*p.Checklist, now)
	}

	if p.Completed != nil {
		t.Completed = *p.Completed
		if !t.Completed {
			t.CompletedAt = nil
		} else if p.CompletedAt == nil && t.CompletedAt == nil {
			at := now
			t.CompletedAt = &at
		}
	}
	if p.CompletedAt != nil && t.Completed {
		at := *p.CompletedAt
		t.CompletedAt = &at
	}
}
