package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/taskboard/internal/board"
	"github.com/tgienger/taskboard/internal/models"
)

func openMemory(t *testing.T) *DB {
	t.Helper()
	d, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func TestSettingRoundTrip(t *testing.T) {
	d := openMemory(t)

	v, err := d.GetSetting("missing")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, d.SetSetting("k", "one"))
	require.NoError(t, d.SetSetting("k", "two"))
	v, err = d.GetSetting("k")
	require.NoError(t, err)
	assert.Equal(t, "two", v)
}

func TestLastPage(t *testing.T) {
	d := openMemory(t)

	page, err := d.LastPage()
	require.NoError(t, err)
	assert.Empty(t, page)

	require.NoError(t, d.SetLastPage("calendar"))
	page, err = d.LastPage()
	require.NoError(t, err)
	assert.Equal(t, "calendar", page)
}

func TestTaskFilter(t *testing.T) {
	d := openMemory(t)

	f, err := d.TaskFilter()
	require.NoError(t, err)
	assert.True(t, f.IsZero())

	want := board.Filter{
		Status:     board.StatusOverdue,
		Priorities: []models.Priority{models.PriorityHigh, models.PriorityLow},
	}
	require.NoError(t, d.SetTaskFilter(want))

	f, err = d.TaskFilter()
	require.NoError(t, err)
	assert.Equal(t, want, f)

	require.NoError(t, d.SetTaskFilter(board.Filter{}))
	f, err = d.TaskFilter()
	require.NoError(t, err)
	assert.Equal(t, board.StatusAll, f.Status)
	assert.Empty(t, f.Priorities)
}

func TestTaskFilterIgnoresUnknownValues(t *testing.T) {
	d := openMemory(t)
	require.NoError(t, d.SetSetting(KeyFilterStatus, "someday"))
	require.NoError(t, d.SetSetting(KeyFilterPriority, "urgent,medium"))

	f, err := d.TaskFilter()
	require.NoError(t, err)
	assert.Equal(t, board.StatusAll, f.Status)
	assert.Equal(t, []models.Priority{models.PriorityMedium}, f.Priorities)
}

func TestOpenFilePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.db")

	d, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, d.SetLastPage("completed"))
	require.NoError(t, d.Close())

	d, err = Open(path)
	require.NoError(t, err)
	defer d.Close()
	page, err := d.LastPage()
	require.NoError(t, err)
	assert.Equal(t, "completed", page)
}

func TestDefaultPathUsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)

	p, err := getDBPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "taskboard", "taskboard.db"), p)
	assert.DirExists(t, filepath.Join(dir, "taskboard"))
}
