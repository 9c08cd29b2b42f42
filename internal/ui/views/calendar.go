package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskboard/internal/board"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// markers per calendar cell before collapsing into "+n"
const maxDayMarkers = 3

// CalendarView shows a month grid with the selected day's tasks below it
type CalendarView struct {
	deps     *Deps
	cache    board.Cache
	list     *TaskList
	selected time.Time // midnight of the selected day
	inList   bool

	width  int
	height int
}

func NewCalendarView(deps *Deps) *CalendarView {
	v := &CalendarView{
		deps: deps,
		list: NewTaskList(deps, "No tasks on this day. Press 'n' to add one."),
	}
	now := deps.Now()
	v.selected = board.StartOfDay(now, now.Location())
	v.list.Focus(false)
	return v
}

func (v *CalendarView) Name() string { return "Calendar" }

func (v *CalendarView) Capturing() bool { return v.list.Capturing() }

// Selected returns the selected day
func (v *CalendarView) Selected() time.Time { return v.selected }

func (v *CalendarView) Init() tea.Cmd {
	return loadTasks(v.deps.Service)
}

// Refresh reloads when the tasks changed since the last load
func (v *CalendarView) Refresh() tea.Cmd {
	return reloadIfStale(v.deps.Service, &v.cache)
}

func (v *CalendarView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if applyResult(&v.cache, msg) {
		v.refresh()
		return v, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.list.SetSize(msg.Width, max(msg.Height-18, 3))
		return v, nil

	case tea.KeyMsg:
		if v.list.Capturing() {
			cmd, _ := v.list.Update(msg)
			return v, cmd
		}
		k := v.deps.Keys
		if key.Matches(msg, k.New) {
			due := board.AtDayTime(v.selected, nextHour(v.deps.Now()))
			return v, func() tea.Msg { return OpenFormMsg{Due: due} }
		}
		if v.inList {
			if key.Matches(msg, k.Back) {
				v.setInList(false)
				return v, nil
			}
			cmd, _ := v.list.Update(msg)
			return v, cmd
		}
		return v.updateGrid(msg)
	}
	return v, nil
}

func (v *CalendarView) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := v.deps.Keys
	switch {
	case key.Matches(msg, k.Left):
		v.selectDay(v.selected.AddDate(0, 0, -1))
	case key.Matches(msg, k.Right):
		v.selectDay(v.selected.AddDate(0, 0, 1))
	case key.Matches(msg, k.Up):
		v.selectDay(v.selected.AddDate(0, 0, -7))
	case key.Matches(msg, k.Down):
		v.selectDay(v.selected.AddDate(0, 0, 7))
	case key.Matches(msg, k.PrevMonth):
		v.selectDay(shiftMonth(v.selected, -1))
	case key.Matches(msg, k.NextMonth):
		v.selectDay(shiftMonth(v.selected, 1))
	case key.Matches(msg, k.Today):
		now := v.deps.Now()
		v.selectDay(board.StartOfDay(now, now.Location()))
	case key.Matches(msg, k.Enter):
		if v.list.Len() == 0 {
			return v, toast("Nothing due on " + v.selected.Format("Jan 2"))
		}
		v.setInList(true)
	}
	return v, nil
}

func (v *CalendarView) setInList(on bool) {
	v.inList = on
	v.list.Focus(on)
}

func (v *CalendarView) selectDay(day time.Time) {
	v.selected = day
	v.refresh()
}

// shiftMonth moves by whole months, clamping the day to the target month's length
func shiftMonth(day time.Time, months int) time.Time {
	first := time.Date(day.Year(), day.Month()+time.Month(months), 1, 0, 0, 0, 0, day.Location())
	last := board.EndOfMonth(first, day.Location()).Day()
	return time.Date(first.Year(), first.Month(), min(day.Day(), last), 0, 0, 0, 0, day.Location())
}

func (v *CalendarView) refresh() {
	onDay := board.OnDay(v.cache.Tasks(), v.selected)
	board.SortByDue(onDay)
	v.list.SetTasks(onDay)
	if v.list.Len() == 0 {
		v.setInList(false)
	}
}

func (v *CalendarView) View() string {
	s := v.deps.Styles
	if !v.cache.Loaded() {
		return loadingView(s, &v.cache, v.deps.Keys.Reload.Help().Key)
	}

	var b strings.Builder
	b.WriteString(s.Title.Render(v.selected.Format("January 2006")))
	b.WriteString("\n\n")
	b.WriteString(v.renderGrid())
	b.WriteString("\n")
	b.WriteString(s.Section.Render(v.selected.Format(board.LongLayout)))
	b.WriteString("\n")
	b.WriteString(v.list.View())
	b.WriteString("\n")
	if v.inList {
		b.WriteString(helpLine(s, "↑/↓", "move", "↵", "checklist", "space", "check", "x", "done",
			"e", "edit", "d", "del", "esc", "calendar"))
	} else {
		b.WriteString(helpLine(s, "←/→/↑/↓", "day", "[/]", "month", "t", "today", "↵", "tasks", "n", "new"))
	}

	return styles.CenterView(b.String(), v.width, v.height)
}

func (v *CalendarView) renderGrid() string {
	s := v.deps.Styles
	now := v.deps.Now()
	tasks := v.cache.Tasks()

	var header []string
	for _, name := range board.WeekdayHeaders(v.deps.WeekStart) {
		header = append(header, s.DayOutside.Foreground(styles.Current.ForegroundDim).Render(name))
	}
	rows := []string{lipgloss.JoinHorizontal(lipgloss.Top, header...)}

	for _, week := range board.MonthGrid(v.selected, v.deps.WeekStart) {
		var cells []string
		for _, day := range week {
			cells = append(cells, v.renderCell(day, board.OnDay(tasks, day), now))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (v *CalendarView) renderCell(day time.Time, tasks []models.Task, now time.Time) string {
	s := v.deps.Styles

	style := s.Day
	switch {
	case day.Equal(v.selected):
		style = s.DaySelected
	case board.IsToday(day, now):
		style = s.DayToday
	case day.Month() != v.selected.Month():
		style = s.DayOutside
	}

	label := fmt.Sprintf("%2d ", day.Day())
	for i, t := range tasks {
		if i == maxDayMarkers {
			label += fmt.Sprintf("+%d", len(tasks)-maxDayMarkers)
			break
		}
		label += s.PriorityDot(t.Priority)
	}
	return style.Render(label)
}
