package views

import (
	"fmt"
	"log"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskboard/internal/board"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// TaskListView shows every task through the status and priority filter
type TaskListView struct {
	deps   *Deps
	cache  board.Cache
	list   *TaskList
	filter board.Filter

	width  int
	height int
}

// NewTaskListView creates the tasks page with the saved filter
func NewTaskListView(deps *Deps) *TaskListView {
	v := &TaskListView{
		deps:   deps,
		list:   NewTaskList(deps, "No tasks match. Press 'c' to clear the filter or 'n' to create one."),
		filter: board.Filter{Status: board.StatusAll},
	}
	if deps.Settings != nil {
		if f, err := deps.Settings.TaskFilter(); err == nil {
			v.filter = f
		} else {
			log.Printf("[ui] load task filter: %v", err)
		}
	}
	return v
}

func (v *TaskListView) Name() string { return "Tasks" }

func (v *TaskListView) Capturing() bool { return v.list.Capturing() }

// Filter returns the active filter
func (v *TaskListView) Filter() board.Filter { return v.filter }

func (v *TaskListView) Init() tea.Cmd {
	return loadTasks(v.deps.Service)
}

// Refresh reloads when the tasks changed since the last load
func (v *TaskListView) Refresh() tea.Cmd {
	return reloadIfStale(v.deps.Service, &v.cache)
}

func (v *TaskListView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if applyResult(&v.cache, msg) {
		v.refresh()
		return v, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.list.SetSize(msg.Width, max(msg.Height-10, 3))
		return v, nil

	case tea.KeyMsg:
		if v.list.Capturing() {
			cmd, _ := v.list.Update(msg)
			return v, cmd
		}
		return v.updateNormal(msg)
	}
	return v, nil
}

func (v *TaskListView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := v.deps.Keys
	switch {
	case key.Matches(msg, k.New):
		due := nextHour(v.deps.Now())
		return v, func() tea.Msg { return OpenFormMsg{Due: due} }

	case key.Matches(msg, k.Status):
		v.filter.Status = v.filter.Status.Next()
		return v, v.filterChanged()

	case key.Matches(msg, k.High):
		v.filter = v.filter.TogglePriority(models.PriorityHigh)
		return v, v.filterChanged()

	case key.Matches(msg, k.Medium):
		v.filter = v.filter.TogglePriority(models.PriorityMedium)
		return v, v.filterChanged()

	case key.Matches(msg, k.Low):
		v.filter = v.filter.TogglePriority(models.PriorityLow)
		return v, v.filterChanged()

	case key.Matches(msg, k.Clear):
		v.filter = board.Filter{Status: board.StatusAll}
		return v, v.filterChanged()
	}

	cmd, _ := v.list.Update(msg)
	return v, cmd
}

func (v *TaskListView) filterChanged() tea.Cmd {
	v.refresh()
	if v.deps.Settings == nil {
		return nil
	}
	if err := v.deps.Settings.SetTaskFilter(v.filter); err != nil {
		return func() tea.Msg { return ErrMsg{Action: "save filter", Err: err} }
	}
	return nil
}

func (v *TaskListView) refresh() {
	v.list.SetTasks(v.filter.Apply(v.cache.Tasks(), v.deps.Now()))
}

func (v *TaskListView) View() string {
	s := v.deps.Styles
	if !v.cache.Loaded() {
		return loadingView(s, &v.cache, v.deps.Keys.Reload.Help().Key)
	}

	stats := board.Count(v.cache.Tasks(), v.deps.Now())

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		statCard(s, "total", stats.Total),
		statCard(s, "pending", stats.Pending),
		statCard(s, "done", stats.Completed),
		statCard(s, "overdue", stats.Overdue),
	))
	b.WriteString("\n")
	b.WriteString(v.renderFilterBar())
	b.WriteString("\n")
	b.WriteString(s.TitleMuted.Render(fmt.Sprintf("%d of %d tasks", v.list.Len(), stats.Total)))
	b.WriteString("\n")
	b.WriteString(v.list.View())
	b.WriteString("\n")
	b.WriteString(helpLine(s, "s", "status", "h/m/l", "priority", "c", "clear", "↵", "checklist",
		"x", "done", "e", "edit", "n", "new", "d", "del"))

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *TaskListView) renderFilterBar() string {
	s := v.deps.Styles

	var statuses []string
	for _, st := range board.Statuses {
		label := strings.ToUpper(string(st[:1])) + string(st[1:])
		if st == v.filter.Status {
			statuses = append(statuses, s.FilterActive.Render(label))
		} else {
			statuses = append(statuses, s.FilterButton.Render(label))
		}
	}

	var prios []string
	for _, p := range []models.Priority{models.PriorityHigh, models.PriorityMedium, models.PriorityLow} {
		label := "[ ] " + p.Label()
		if v.filter.HasPriority(p) {
			label = "[x] " + p.Label()
			prios = append(prios, lipgloss.NewStyle().Foreground(styles.PriorityColor(p)).Bold(true).Render(label))
		} else {
			prios = append(prios, s.FilterButton.Render(label))
		}
	}

	return s.FilterBar.Render(strings.Join(statuses, "") + s.TitleMuted.Render(" │ ") + strings.Join(prios, " "))
}
