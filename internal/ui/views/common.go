package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskboard/internal/board"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/keys"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// TaskService is the subset of the service API the pages call
type TaskService interface {
	GetAll() ([]models.Task, error)
	GetByID(id int64) (models.Task, error)
	Create(in models.TaskInput) (models.Task, error)
	Update(id int64, patch models.TaskPatch) (models.Task, error)
	Delete(id int64) (models.Task, error)
	UpdateChecklistItem(taskID int64, itemID string, checked bool) (models.Task, error)
	CompleteTask(id int64) (models.Task, error)
	ReopenTask(id int64) (models.Task, error)
	// Version changes with every successful mutation
	Version() uint64
}

// Settings persists UI preferences
type Settings interface {
	TaskFilter() (board.Filter, error)
	SetTaskFilter(f board.Filter) error
}

// Deps are shared by every page
type Deps struct {
	Service   TaskService
	Settings  Settings
	Now       func() time.Time
	WeekStart time.Weekday
	Styles    *styles.Styles
	Keys      keys.KeyMap
}

// Op names the mutation that produced a TaskChangedMsg
type Op int

const (
	OpCreated Op = iota
	OpUpdated
	OpCompleted
	OpReopened
	OpChecklist
	// OpChecklistCompleted is a checklist toggle that completed the task
	OpChecklistCompleted
)

// Toast returns the confirmation shown after the operation, if any
func (o Op) Toast() string {
	switch o {
	case OpCreated:
		return "Task created"
	case OpUpdated:
		return "Task updated"
	case OpCompleted, OpChecklistCompleted:
		return "Task completed"
	case OpReopened:
		return "Task reopened"
	}
	return ""
}

// TasksLoadedMsg carries a fresh snapshot from GetAll and the service
// version it was read at
type TasksLoadedMsg struct {
	Tasks   []models.Task
	Version uint64
}

// TaskChangedMsg carries the copy returned by a mutating call
type TaskChangedMsg struct {
	Task models.Task
	Op   Op
}

// TaskDeletedMsg carries the removed task
type TaskDeletedMsg struct {
	Task models.Task
}

// actionLoad names the ErrMsg of a failed GetAll
const actionLoad = "load tasks"

// ErrMsg reports a failed service call. Pages leave their cache untouched.
type ErrMsg struct {
	Action string
	Err    error
}

func (e ErrMsg) Error() string {
	return fmt.Sprintf("%s: %v", e.Action, e.Err)
}

// OpenFormMsg asks the app to open the task form. A nil Task creates one due at Due.
type OpenFormMsg struct {
	Task *models.Task
	Due  time.Time
}

// ToastMsg asks the app to show a message
type ToastMsg struct {
	Text  string
	Error bool
}

func toast(text string) tea.Cmd {
	return func() tea.Msg { return ToastMsg{Text: text} }
}

func loadTasks(svc TaskService) tea.Cmd {
	return func() tea.Msg {
		// read before GetAll so a concurrent change shows up as stale
		version := svc.Version()
		tasks, err := svc.GetAll()
		if err != nil {
			return ErrMsg{Action: actionLoad, Err: err}
		}
		return TasksLoadedMsg{Tasks: tasks, Version: version}
	}
}

// reloadIfStale reloads only when the service changed since the cache was filled
func reloadIfStale(svc TaskService, c *board.Cache) tea.Cmd {
	if !c.Stale(svc.Version()) {
		return nil
	}
	return loadTasks(svc)
}

func completeTask(svc TaskService, id int64) tea.Cmd {
	return func() tea.Msg {
		task, err := svc.CompleteTask(id)
		if err != nil {
			return ErrMsg{Action: "complete task", Err: err}
		}
		return TaskChangedMsg{Task: task, Op: OpCompleted}
	}
}

func reopenTask(svc TaskService, id int64) tea.Cmd {
	return func() tea.Msg {
		task, err := svc.ReopenTask(id)
		if err != nil {
			return ErrMsg{Action: "reopen task", Err: err}
		}
		return TaskChangedMsg{Task: task, Op: OpReopened}
	}
}

func toggleItem(svc TaskService, before models.Task, itemID string, checked bool) tea.Cmd {
	return func() tea.Msg {
		task, err := svc.UpdateChecklistItem(before.ID, itemID, checked)
		if err != nil {
			return ErrMsg{Action: "update checklist", Err: err}
		}
		op := OpChecklist
		if task.Completed && !before.Completed {
			op = OpChecklistCompleted
		}
		return TaskChangedMsg{Task: task, Op: op}
	}
}

func deleteTask(svc TaskService, id int64) tea.Cmd {
	return func() tea.Msg {
		task, err := svc.Delete(id)
		if err != nil {
			return ErrMsg{Action: "delete task", Err: err}
		}
		return TaskDeletedMsg{Task: task}
	}
}

func createTask(svc TaskService, in models.TaskInput) tea.Cmd {
	return func() tea.Msg {
		task, err := svc.Create(in)
		if err != nil {
			return ErrMsg{Action: "create task", Err: err}
		}
		return TaskChangedMsg{Task: task, Op: OpCreated}
	}
}

func updateTask(svc TaskService, id int64, patch models.TaskPatch) tea.Cmd {
	return func() tea.Msg {
		task, err := svc.Update(id, patch)
		if err != nil {
			return ErrMsg{Action: "update task", Err: err}
		}
		return TaskChangedMsg{Task: task, Op: OpUpdated}
	}
}

// applyResult merges a service result into the cache. It reports whether
// the message was one of the result types.
func applyResult(c *board.Cache, msg tea.Msg) bool {
	switch msg := msg.(type) {
	case TasksLoadedMsg:
		c.Replace(msg.Tasks, msg.Version)
	case ErrMsg:
		if msg.Action != actionLoad {
			return false
		}
		c.Fail(msg.Err)
	case TaskChangedMsg:
		c.Upsert(msg.Task)
	case TaskDeletedMsg:
		c.Remove(msg.Task.ID)
	default:
		return false
	}
	return true
}

// loadingView is shown until the first snapshot arrives
func loadingView(s *styles.Styles, c *board.Cache, retry string) string {
	if err := c.Err(); err != nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			s.FieldError.Render("Could not load tasks: "+err.Error()),
			helpLine(s, retry, "retry"),
		)
	}
	return s.TitleMuted.Render("Loading...")
}

// nextHour returns the top of the hour after now
func nextHour(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), now.Hour()+1, 0, 0, 0, now.Location())
}

// clamp returns val clamped between minVal and maxVal
func clamp(val, minVal, maxVal int) int {
	if val < minVal {
		return minVal
	}
	if val > maxVal {
		return maxVal
	}
	return val
}

// helpLine renders alternating key/description pairs
func helpLine(s *styles.Styles, pairs ...string) string {
	var parts []string
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, s.HelpKey.Render(pairs[i])+" "+s.HelpDesc.Render(pairs[i+1]))
	}
	return s.Help.Render(strings.Join(parts, " • "))
}

// statCard renders a labelled counter
func statCard(s *styles.Styles, label string, value int) string {
	return s.Card.Render(s.StatValue.Render(strconv.Itoa(value)) + " " + s.StatLabel.Render(label))
}
