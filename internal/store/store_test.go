package store

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/taskboard/internal/models"
)

func TestInsertAssignsMaxPlusOne(t *testing.T) {
	s := New(nil)

	a := s.Insert(models.Task{Title: "a"})
	b := s.Insert(models.Task{Title: "b"})
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)

	_, err := s.Remove(a.ID)
	require.NoError(t, err)
	c := s.Insert(models.Task{Title: "c"})
	assert.Equal(t, int64(3), c.ID)
}

func TestDeletedIDsAreNeverReused(t *testing.T) {
	s := New([]models.Task{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}})

	_, err := s.Remove(2)
	require.NoError(t, err)
	got := s.Insert(models.Task{Title: "c"})
	assert.Equal(t, int64(3), got.ID)

	_, err = s.Remove(1)
	require.NoError(t, err)
	_, err = s.Remove(3)
	require.NoError(t, err)
	got = s.Insert(models.Task{Title: "d"})
	assert.Equal(t, int64(4), got.ID)
}

func TestInsertIgnoresCallerID(t *testing.T) {
	s := New([]models.Task{{ID: 7, Title: "seeded"}})
	got := s.Insert(models.Task{ID: 2, Title: "new"})
	assert.Equal(t, int64(8), got.ID)
}

func TestFindAndRemoveNotFound(t *testing.T) {
	s := New([]models.Task{{ID: 1, Title: "a"}})

	_, err := s.Find(42)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.Remove(42)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 1, s.Len())
}

func TestAllPreservesInsertionOrder(t *testing.T) {
	s := New([]models.Task{{ID: 5, Title: "five"}, {ID: 2, Title: "two"}})
	s.Insert(models.Task{Title: "six"})

	var titles []string
	for _, task := range s.All() {
		titles = append(titles, task.Title)
	}
	assert.Equal(t, []string{"five", "two", "six"}, titles)
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := New([]models.Task{{
		ID:        1,
		Title:     "orig",
		Checklist: []models.ChecklistItem{{ID: "x", Text: "item"}},
	}})

	got, err := s.Find(1)
	require.NoError(t, err)
	got.Title = "mutated"
	got.Checklist[0].Checked = true

	all := s.All()
	all[0].Checklist[0].Text = "mutated"

	again, err := s.Find(1)
	require.NoError(t, err)
	assert.Equal(t, "orig", again.Title)
	assert.False(t, again.Checklist[0].Checked)
	assert.Equal(t, "item", again.Checklist[0].Text)
}

func TestMutateIsAllOrNothing(t *testing.T) {
	s := New([]models.Task{{ID: 1, Title: "orig"}})
	before := s.Version()

	boom := errors.New("boom")
	_, err := s.Mutate(1, func(task *models.Task) error {
		task.Title = "half-done"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := s.Find(1)
	assert.Equal(t, "orig", got.Title)
	assert.Equal(t, before, s.Version())

	updated, err := s.Mutate(1, func(task *models.Task) error {
		task.Title = "done"
		task.ID = 99
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated.ID)
	assert.Equal(t, "done", updated.Title)
	assert.Greater(t, s.Version(), before)
}

func TestLoadSeed(t *testing.T) {
	tasks, err := LoadSeed()
	require.NoError(t, err)
	require.NotEmpty(t, tasks)

	seen := map[int64]bool{}
	for _, task := range tasks {
		assert.False(t, seen[task.ID], "duplicate id %d", task.ID)
		seen[task.ID] = true
		assert.NotEmpty(t, task.Title)
		assert.True(t, task.Priority.Valid(), "task %d priority", task.ID)
		assert.Equal(t, task.Completed, task.CompletedAt != nil, "task %d completion invariant", task.ID)
		assert.NotNil(t, task.Checklist)
		for _, item := range task.Checklist {
			assert.Equal(t, item.Checked, item.CheckedAt != nil, "item %s checked invariant", item.ID)
		}
	}
}

func TestLoadSeedFileMissing(t *testing.T) {
	_, err := LoadSeedFile("/nonexistent/tasks.json")
	assert.Error(t, err)
}

func TestRebase(t *testing.T) {
	created := time.Date(2024, 1, 15, 8, 0, 0, 0, time.UTC)
	done := time.Date(2024, 1, 14, 19, 0, 0, 0, time.UTC)
	tasks := []models.Task{
		{ID: 1, CreatedAt: created.AddDate(0, 0, -3), DueDate: created.AddDate(0, 0, -1)},
		{
			ID:          2,
			CreatedAt:   created,
			DueDate:     created.Add(2 * time.Hour),
			Completed:   true,
			CompletedAt: &done,
			Checklist:   []models.ChecklistItem{{ID: "a", Checked: true, CheckedAt: &done}},
		},
	}

	now := time.Date(2024, 3, 10, 21, 0, 0, 0, time.UTC)
	out := Rebase(tasks, now)

	assert.Equal(t, time.Date(2024, 3, 10, 8, 0, 0, 0, time.UTC), out[1].CreatedAt)
	assert.Equal(t, time.Date(2024, 3, 10, 10, 0, 0, 0, time.UTC), out[1].DueDate)
	assert.Equal(t, time.Date(2024, 3, 9, 19, 0, 0, 0, time.UTC), *out[1].CompletedAt)
	assert.Equal(t, time.Date(2024, 3, 9, 19, 0, 0, 0, time.UTC), *out[1].Checklist[0].CheckedAt)
	assert.Equal(t, time.Date(2024, 3, 9, 8, 0, 0, 0, time.UTC), out[0].DueDate)

	// input untouched
	assert.Equal(t, done, *tasks[1].CompletedAt)
}
