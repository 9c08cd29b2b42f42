package views

import (
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tgienger/taskboard/internal/board"
	"github.com/tgienger/taskboard/internal/db"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/service"
	"github.com/tgienger/taskboard/internal/store"
	"github.com/tgienger/taskboard/internal/ui/keys"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// Wednesday, 8 May 2024, 10:00 UTC
var testNow = time.Date(2024, 5, 8, 10, 0, 0, 0, time.UTC)

func day(d, hour int) time.Time {
	return time.Date(2024, 5, d, hour, 0, 0, 0, time.UTC)
}

func fixture() []models.Task {
	doneAt := func(t time.Time) *time.Time { return &t }
	return []models.Task{
		{ID: 1, Title: "Pay rent", Priority: models.PriorityHigh, DueDate: day(8, 9), CreatedAt: day(1, 9),
			Checklist: []models.ChecklistItem{{ID: "cl_1_a", Text: "Transfer"}, {ID: "cl_1_b", Text: "Receipt"}}},
		{ID: 2, Title: "Buy groceries", Priority: models.PriorityMedium, DueDate: day(8, 18), CreatedAt: day(1, 9),
			Checklist: []models.ChecklistItem{}},
		{ID: 3, Title: "Write report", Priority: models.PriorityHigh, DueDate: day(10, 12), CreatedAt: day(1, 9),
			Checklist: []models.ChecklistItem{}},
		{ID: 4, Title: "Call plumber", Priority: models.PriorityLow, DueDate: day(6, 12), CreatedAt: day(1, 9),
			Checklist: []models.ChecklistItem{}},
		{ID: 5, Title: "File taxes", Priority: models.PriorityHigh, DueDate: day(7, 12), CreatedAt: day(1, 9),
			Completed: true, CompletedAt: doneAt(day(8, 8)), Checklist: []models.ChecklistItem{}},
		{ID: 6, Title: "Renew passport", Priority: models.PriorityMedium, DueDate: day(1, 12), CreatedAt: day(1, 9),
			Completed: true, CompletedAt: doneAt(day(2, 15)), Checklist: []models.ChecklistItem{}},
	}
}

type testEnv struct {
	deps     *Deps
	svc      *service.TaskService
	settings *db.DB
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	clock := func() time.Time { return testNow }
	svc, err := service.New(store.New(fixture()), service.WithoutLatency(), service.WithClock(clock))
	require.NoError(t, err)
	settings, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { settings.Close() })

	return &testEnv{
		svc:      svc,
		settings: settings,
		deps: &Deps{
			Service:   svc,
			Settings:  settings,
			Now:       clock,
			WeekStart: time.Sunday,
			Styles:    styles.NewStyles(),
			Keys:      keys.DefaultKeyMap(),
		},
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "ctrl+s":
		return tea.KeyMsg{Type: tea.KeyCtrlS}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd executes cmd and flattens batches. Commands that block, such as
// ticks, are dropped.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()

	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, runCmd(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// send delivers msg and every message its commands produce, returning the
// messages that were produced
func send(m tea.Model, msg tea.Msg) []tea.Msg {
	var seen []tea.Msg
	queue := []tea.Msg{msg}
	for i := 0; i < len(queue) && i < 50; i++ {
		_, cmd := m.Update(queue[i])
		out := runCmd(cmd)
		seen = append(seen, out...)
		queue = append(queue, out...)
	}
	return seen
}

func press(m tea.Model, ks ...string) []tea.Msg {
	var out []tea.Msg
	for _, k := range ks {
		out = append(out, send(m, keyMsg(k))...)
	}
	return out
}

func initPage(t *testing.T, m tea.Model) {
	t.Helper()
	send(m, tea.WindowSizeMsg{Width: 80, Height: 40})
	for _, msg := range runCmd(m.Init()) {
		send(m, msg)
	}
}

func listIDs(l *TaskList) []int64 {
	var ids []int64
	for _, sec := range l.sections {
		for _, t := range sec.Tasks {
			ids = append(ids, t.ID)
		}
	}
	return ids
}

func findMsg[T any](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func TestTasksPageFilterComposition(t *testing.T) {
	env := newEnv(t)
	v := NewTaskListView(env.deps)
	initPage(t, v)
	assert.Len(t, listIDs(v.list), 6)

	press(v, "s", "h")
	assert.Equal(t, board.StatusPending, v.Filter().Status)
	assert.Equal(t, []int64{1, 3}, listIDs(v.list))

	saved, err := env.settings.TaskFilter()
	require.NoError(t, err)
	assert.Equal(t, v.Filter(), saved)

	restored := NewTaskListView(env.deps)
	assert.Equal(t, saved, restored.Filter())

	press(v, "c")
	assert.True(t, v.Filter().IsZero())
	assert.Len(t, listIDs(v.list), 6)
}

func TestTasksPageOverdueStatus(t *testing.T) {
	env := newEnv(t)
	v := NewTaskListView(env.deps)
	initPage(t, v)

	press(v, "s", "s", "s")
	assert.Equal(t, board.StatusOverdue, v.Filter().Status)
	assert.Equal(t, []int64{4, 1}, listIDs(v.list))
}

func TestDashboardCompleteTask(t *testing.T) {
	env := newEnv(t)
	v := NewDashboardView(env.deps)
	initPage(t, v)
	assert.Equal(t, []int64{1, 2}, listIDs(v.list))

	msgs := press(v, "x")
	changed, ok := findMsg[TaskChangedMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, OpCompleted, changed.Op)

	cached, ok := v.cache.Get(1)
	require.True(t, ok)
	assert.True(t, cached.Completed)
	assert.True(t, cached.AllChecked())
	assert.Contains(t, v.View(), "1/2 done today")

	// x again reopens
	msgs = press(v, "x")
	changed, ok = findMsg[TaskChangedMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, OpReopened, changed.Op)
	cached, _ = v.cache.Get(1)
	assert.False(t, cached.Completed)
}

func TestChecklistToggleFromList(t *testing.T) {
	env := newEnv(t)
	v := NewDashboardView(env.deps)
	initPage(t, v)

	press(v, "enter", "down")
	msgs := press(v, " ")
	changed, ok := findMsg[TaskChangedMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, OpChecklist, changed.Op)
	assert.True(t, changed.Task.Checklist[0].Checked)
	assert.False(t, changed.Task.Completed)

	// cursor stays on the first item after the refresh
	r, ok := v.list.currentRow()
	require.True(t, ok)
	assert.Equal(t, 0, r.item)

	msgs = press(v, "down", " ")
	changed, ok = findMsg[TaskChangedMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, OpChecklistCompleted, changed.Op)
	assert.Equal(t, "Task completed", changed.Op.Toast())

	got, err := env.svc.GetByID(1)
	require.NoError(t, err)
	assert.True(t, got.Completed, "checking the last item completes the task")

	// unchecking reopens quietly
	msgs = press(v, " ")
	changed, ok = findMsg[TaskChangedMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, OpChecklist, changed.Op)
	assert.Empty(t, changed.Op.Toast())
}

// flakyService fails GetAll while down is set and counts the calls
type flakyService struct {
	TaskService
	down  bool
	loads int
}

func (f *flakyService) GetAll() ([]models.Task, error) {
	f.loads++
	if f.down {
		return nil, errors.New("backend unavailable")
	}
	return f.TaskService.GetAll()
}

func TestLoadFailureShowsRetry(t *testing.T) {
	env := newEnv(t)
	flaky := &flakyService{TaskService: env.svc, down: true}
	env.deps.Service = flaky
	v := NewCompletedView(env.deps)
	initPage(t, v)

	out := v.View()
	assert.Contains(t, out, "Could not load tasks")
	assert.Contains(t, out, "backend unavailable")
	assert.Contains(t, out, "ctrl+r")
	assert.False(t, v.cache.Loaded())

	flaky.down = false
	for _, msg := range runCmd(v.Init()) {
		send(v, msg)
	}
	assert.NoError(t, v.cache.Err())
	assert.Contains(t, v.View(), "File taxes")
}

func TestRefreshSkipsUnchangedTasks(t *testing.T) {
	env := newEnv(t)
	flaky := &flakyService{TaskService: env.svc}
	env.deps.Service = flaky
	v := NewTaskListView(env.deps)
	initPage(t, v)
	require.Equal(t, 1, flaky.loads)

	assert.Nil(t, v.Refresh(), "nothing changed since the load")

	_, err := env.svc.Create(models.TaskInput{Title: "Added elsewhere", DueDate: day(9, 9), Priority: models.PriorityLow})
	require.NoError(t, err)
	for _, msg := range runCmd(v.Refresh()) {
		send(v, msg)
	}
	assert.Equal(t, 2, flaky.loads)
	assert.Contains(t, listIDs(v.list), int64(7))
	assert.Nil(t, v.Refresh())
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	env := newEnv(t)
	v := NewDashboardView(env.deps)
	initPage(t, v)

	press(v, "d")
	assert.True(t, v.Capturing())
	assert.Contains(t, v.View(), `Delete "Pay rent"?`)
	press(v, "n")
	assert.False(t, v.Capturing())
	_, err := env.svc.GetByID(1)
	require.NoError(t, err)

	msgs := press(v, "d", "y")
	_, ok := findMsg[TaskDeletedMsg](msgs)
	require.True(t, ok)
	_, err = env.svc.GetByID(1)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Equal(t, []int64{2}, listIDs(v.list))
}

func TestServiceErrorLeavesCacheUntouched(t *testing.T) {
	env := newEnv(t)
	v := NewDashboardView(env.deps)
	initPage(t, v)

	// another page removed the task behind this page's back
	_, err := env.svc.Delete(1)
	require.NoError(t, err)

	msgs := press(v, "x")
	errMsg, ok := findMsg[ErrMsg](msgs)
	require.True(t, ok)
	assert.ErrorIs(t, errMsg.Err, service.ErrNotFound)

	cached, ok := v.cache.Get(1)
	require.True(t, ok)
	assert.False(t, cached.Completed)
}

func TestEditOpensForm(t *testing.T) {
	env := newEnv(t)
	v := NewDashboardView(env.deps)
	initPage(t, v)

	msgs := press(v, "e")
	open, ok := findMsg[OpenFormMsg](msgs)
	require.True(t, ok)
	require.NotNil(t, open.Task)
	assert.Equal(t, int64(1), open.Task.ID)

	msgs = press(v, "n")
	open, ok = findMsg[OpenFormMsg](msgs)
	require.True(t, ok)
	assert.Nil(t, open.Task)
	assert.Equal(t, day(8, 11), open.Due)
}

func TestCompletedPage(t *testing.T) {
	env := newEnv(t)
	v := NewCompletedView(env.deps)
	initPage(t, v)

	require.Len(t, v.list.sections, 2)
	assert.Equal(t, "Today", v.list.sections[0].Title)
	assert.Equal(t, "Older", v.list.sections[1].Title)
	assert.Equal(t, []int64{5, 6}, listIDs(v.list))
	assert.Contains(t, v.View(), "done May 8, 8:00 AM", "archive rows show the completion time")

	press(v, "/")
	assert.True(t, v.Capturing())
	press(v, "passport")
	assert.Equal(t, "passport", v.Query().Search)
	assert.Equal(t, []int64{6}, listIDs(v.list))
	press(v, "esc")
	assert.Empty(t, v.Query().Search)
	assert.False(t, v.Capturing())

	press(v, "p")
	assert.Equal(t, board.PeriodToday, v.Query().Period)
	assert.Equal(t, []int64{5}, listIDs(v.list))

	msgs := press(v, "r")
	changed, ok := findMsg[TaskChangedMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, OpReopened, changed.Op)
	assert.Empty(t, listIDs(v.list), "reopened task leaves the archive")

	got, err := env.svc.GetByID(5)
	require.NoError(t, err)
	assert.False(t, got.Completed)
	assert.Nil(t, got.CompletedAt)
}

func TestCalendarNavigation(t *testing.T) {
	env := newEnv(t)
	v := NewCalendarView(env.deps)
	initPage(t, v)

	assert.Equal(t, day(8, 0), v.Selected())
	assert.Equal(t, []int64{1, 2}, listIDs(v.list))

	press(v, "right", "right")
	assert.Equal(t, day(10, 0), v.Selected())
	assert.Equal(t, []int64{3}, listIDs(v.list))

	press(v, "up")
	assert.Equal(t, time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), v.Selected())
	assert.Empty(t, listIDs(v.list))

	msgs := press(v, "enter")
	note, ok := findMsg[ToastMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, "Nothing due on May 3", note.Text)
	assert.False(t, v.inList)

	msgs = press(v, "n")
	open, ok := findMsg[OpenFormMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 5, 3, 11, 0, 0, 0, time.UTC), open.Due)

	press(v, "]")
	assert.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), v.Selected())
	press(v, "t")
	assert.Equal(t, day(8, 0), v.Selected())
}

func TestCalendarListFocus(t *testing.T) {
	env := newEnv(t)
	v := NewCalendarView(env.deps)
	initPage(t, v)

	press(v, "enter")
	assert.True(t, v.inList)
	msgs := press(v, "down", "x")
	changed, ok := findMsg[TaskChangedMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, int64(2), changed.Task.ID)

	press(v, "esc")
	assert.False(t, v.inList)
}

func TestShiftMonthClampsDay(t *testing.T) {
	jan31 := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), shiftMonth(jan31, 1))
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC), shiftMonth(jan31, -1))
}

func TestFormCreate(t *testing.T) {
	env := newEnv(t)
	f := NewTaskForm(env.deps)
	f.Open(nil, day(9, 14))
	assert.True(t, f.Active())

	// empty title is rejected before the service is called
	cmd := f.Update(keyMsg("ctrl+s"))
	assert.Nil(t, cmd)
	assert.ErrorIs(t, f.err, models.ErrTitleRequired)

	f.Update(keyMsg("Buy stamps"))
	f.Update(keyMsg("tab"))   // due
	f.Update(keyMsg("tab"))   // priority
	f.Update(keyMsg("right")) // medium -> high
	f.Update(keyMsg("tab"))   // checklist
	f.Update(keyMsg("tab"))   // new item
	f.Update(keyMsg("Find envelope"))
	f.Update(keyMsg("enter"))

	in, err := f.Input()
	require.NoError(t, err)
	assert.Equal(t, "Buy stamps", in.Title)
	assert.Equal(t, day(9, 14), in.DueDate)
	assert.Equal(t, models.PriorityHigh, in.Priority)
	require.Len(t, in.Checklist, 1)
	assert.Equal(t, "Find envelope", in.Checklist[0].Text)

	msgs := runCmd(f.Update(keyMsg("ctrl+s")))
	assert.True(t, f.Saving())
	changed, ok := findMsg[TaskChangedMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, OpCreated, changed.Op)
	assert.Equal(t, int64(7), changed.Task.ID)
	assert.Regexp(t, `^cl_\d+_[0-9a-z]{9}$`, changed.Task.Checklist[0].ID)
}

func TestFormRejectsBadDueDate(t *testing.T) {
	env := newEnv(t)
	f := NewTaskForm(env.deps)
	f.Open(nil, day(9, 14))
	f.Update(keyMsg("Something"))
	f.Update(keyMsg("tab"))
	f.due.SetValue("tomorrow-ish")

	assert.Nil(t, f.Update(keyMsg("ctrl+s")))
	require.Error(t, f.err)
	assert.False(t, f.Saving())
}

func TestFormEdit(t *testing.T) {
	env := newEnv(t)
	task, err := env.svc.GetByID(1)
	require.NoError(t, err)

	f := NewTaskForm(env.deps)
	f.Open(&task, time.Time{})
	assert.Equal(t, "Pay rent", f.title.Value())
	assert.Equal(t, "2024-05-08 09:00", f.due.Value())

	f.title.SetValue("Pay rent early")
	f.focusIdx = focusChecklist
	f.Update(keyMsg("d")) // remove "Transfer"

	msgs := runCmd(f.Update(keyMsg("ctrl+s")))
	changed, ok := findMsg[TaskChangedMsg](msgs)
	require.True(t, ok)
	assert.Equal(t, OpUpdated, changed.Op)
	assert.Equal(t, "Pay rent early", changed.Task.Title)
	require.Len(t, changed.Task.Checklist, 1)
	assert.Equal(t, "cl_1_b", changed.Task.Checklist[0].ID)
	assert.Equal(t, task.CreatedAt, changed.Task.CreatedAt)
}

func TestFormCancel(t *testing.T) {
	env := newEnv(t)
	f := NewTaskForm(env.deps)
	f.Open(nil, day(9, 14))
	f.Update(keyMsg("esc"))
	assert.False(t, f.Active())
}
