package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority(" High ")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("urgent")
	assert.Error(t, err)
}

func TestPriorityLabel(t *testing.T) {
	assert.Equal(t, "Medium", PriorityMedium.Label())
	assert.Equal(t, "", Priority("").Label())
}

func TestTaskCloneIsDeep(t *testing.T) {
	now := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	orig := Task{
		ID:          1,
		Title:       "Write report",
		Completed:   true,
		CompletedAt: &now,
		Checklist: []ChecklistItem{
			{ID: "a", Text: "draft", Checked: true, CheckedAt: &now},
		},
	}

	c := orig.Clone()
	c.Title = "changed"
	*c.CompletedAt = now.Add(time.Hour)
	c.Checklist[0].Text = "changed"
	*c.Checklist[0].CheckedAt = now.Add(time.Hour)

	assert.Equal(t, "Write report", orig.Title)
	assert.Equal(t, now, *orig.CompletedAt)
	assert.Equal(t, "draft", orig.Checklist[0].Text)
	assert.Equal(t, now, *orig.Checklist[0].CheckedAt)
}

func TestCloneChecklistNil(t *testing.T) {
	out := CloneChecklist(nil)
	require.NotNil(t, out)
	assert.Empty(t, out)
}

func TestAllChecked(t *testing.T) {
	assert.False(t, Task{}.AllChecked(), "empty checklist is never all checked")

	task := Task{Checklist: []ChecklistItem{{ID: "a", Checked: true}, {ID: "b"}}}
	assert.False(t, task.AllChecked())
	assert.Equal(t, 1, task.CheckedCount())

	task.Checklist[1].Checked = true
	assert.True(t, task.AllChecked())
}

func TestTaskInputValidate(t *testing.T) {
	due := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		input TaskInput
		want  error
	}{
		{"valid", TaskInput{Title: "Call", DueDate: due, Priority: PriorityLow}, nil},
		{"blank title", TaskInput{Title: "   ", DueDate: due, Priority: PriorityLow}, ErrTitleRequired},
		{"no due date", TaskInput{Title: "Call", Priority: PriorityLow}, ErrDueDateRequired},
		{"bad priority", TaskInput{Title: "Call", DueDate: due, Priority: "urgent"}, ErrInvalidPriority},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Validate()
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestPatchFromInputCopiesChecklist(t *testing.T) {
	in := TaskInput{
		Title:     "Plan",
		Priority:  PriorityHigh,
		Checklist: []ChecklistItem{{ID: "a", Text: "one"}},
	}
	patch := PatchFromInput(in)
	require.NotNil(t, patch.Checklist)

	(*patch.Checklist)[0].Text = "changed"
	assert.Equal(t, "one", in.Checklist[0].Text)
	assert.Equal(t, "Plan", *patch.Title)
	assert.Nil(t, patch.Completed)
}
