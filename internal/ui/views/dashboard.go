package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskboard/internal/board"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// DashboardView shows today's progress, today's tasks and the overdue and
// upcoming lists
type DashboardView struct {
	deps  *Deps
	cache board.Cache
	list  *TaskList

	width  int
	height int
}

func NewDashboardView(deps *Deps) *DashboardView {
	return &DashboardView{
		deps: deps,
		list: NewTaskList(deps, "Nothing due today. Press 'n' to add a task."),
	}
}

func (v *DashboardView) Name() string { return "Dashboard" }

func (v *DashboardView) Capturing() bool { return v.list.Capturing() }

func (v *DashboardView) Init() tea.Cmd {
	return loadTasks(v.deps.Service)
}

// Refresh reloads when the tasks changed since the last load
func (v *DashboardView) Refresh() tea.Cmd {
	return reloadIfStale(v.deps.Service, &v.cache)
}

func (v *DashboardView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if applyResult(&v.cache, msg) {
		v.refresh()
		return v, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.list.SetSize(msg.Width, max(msg.Height-14, 3))
		return v, nil

	case tea.KeyMsg:
		if !v.list.Capturing() && key.Matches(msg, v.deps.Keys.New) {
			due := nextHour(v.deps.Now())
			return v, func() tea.Msg { return OpenFormMsg{Due: due} }
		}
		cmd, _ := v.list.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *DashboardView) refresh() {
	today := board.Today(v.cache.Tasks(), v.deps.Now())
	board.SortByDue(today)
	v.list.SetTasks(today)
}

func (v *DashboardView) View() string {
	s := v.deps.Styles
	if !v.cache.Loaded() {
		return loadingView(s, &v.cache, v.deps.Keys.Reload.Help().Key)
	}

	now := v.deps.Now()
	tasks := v.cache.Tasks()
	sum := board.Summarize(tasks, now)
	contentWidth := styles.ContentWidth(v.width)

	var b strings.Builder
	b.WriteString(s.Title.Render("Good "+board.Greeting(now)) + "  " +
		s.TitleMuted.Render(now.Format(board.LongLayout)))
	b.WriteString("\n\n")

	barWidth := clamp(contentWidth-24, 10, 50)
	progress := fmt.Sprintf("%s %d/%d done today", s.ProgressBar(sum.Progress, barWidth), sum.Completed, sum.Today)
	if sum.AllDone() {
		progress += "  " + s.Checked.Render("All done!")
	}
	b.WriteString(progress)
	b.WriteString("\n")

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		statCard(s, "today", sum.Today),
		statCard(s, "done", sum.Completed),
		statCard(s, "overdue", sum.Overdue),
		statCard(s, "upcoming", sum.Upcoming),
	))
	b.WriteString("\n")

	b.WriteString(s.Section.Render("Today"))
	b.WriteString("\n")
	b.WriteString(v.list.View())
	b.WriteString("\n")

	half := max(contentWidth/2-2, 20)
	overdue := board.Overdue(tasks, now)
	board.SortByDue(overdue)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(half).Render(v.renderSide("Overdue", overdue, "Nothing overdue")),
		lipgloss.NewStyle().Width(half).Render(v.renderSide("Upcoming",
			board.Upcoming(tasks, now, board.DefaultUpcoming), "Nothing upcoming")),
	))

	b.WriteString("\n")
	b.WriteString(helpLine(s, "↑/↓", "move", "↵", "checklist", "space", "check", "x", "done",
		"e", "edit", "n", "new", "d", "del"))

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *DashboardView) renderSide(title string, tasks []models.Task, empty string) string {
	s := v.deps.Styles
	now := v.deps.Now()
	lines := []string{s.Section.Render(fmt.Sprintf("%s (%d)", title, len(tasks)))}
	if len(tasks) == 0 {
		lines = append(lines, s.TitleMuted.Render(empty))
	}
	for _, t := range tasks {
		lines = append(lines, s.PriorityDot(t.Priority)+" "+t.Title+" "+
			s.TitleMuted.Render(board.FormatDue(t.DueDate, now)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
