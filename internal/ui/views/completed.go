package views

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskboard/internal/board"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// CompletedView is the archive of completed tasks, grouped by completion day
type CompletedView struct {
	deps   *Deps
	cache  board.Cache
	list   *TaskList
	query  board.CompletedQuery
	search textinput.Model

	searching bool
	width     int
	height    int
}

func NewCompletedView(deps *Deps) *CompletedView {
	search := textinput.New()
	search.Placeholder = "Search completed tasks..."
	search.CharLimit = 100

	list := NewTaskList(deps, "No completed tasks match.")
	list.ShowCompletedAt(true)

	return &CompletedView{
		deps:   deps,
		list:   list,
		query:  board.CompletedQuery{Period: board.PeriodAll},
		search: search,
	}
}

func (v *CompletedView) Name() string { return "Completed" }

func (v *CompletedView) Capturing() bool { return v.searching || v.list.Capturing() }

// Query returns the active search and period
func (v *CompletedView) Query() board.CompletedQuery { return v.query }

func (v *CompletedView) Init() tea.Cmd {
	return loadTasks(v.deps.Service)
}

// Refresh reloads when the tasks changed since the last load
func (v *CompletedView) Refresh() tea.Cmd {
	return reloadIfStale(v.deps.Service, &v.cache)
}

func (v *CompletedView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if applyResult(&v.cache, msg) {
		v.refresh()
		return v, nil
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.width = msg.Width
		v.height = msg.Height
		v.list.SetSize(msg.Width, max(msg.Height-12, 3))
		return v, nil

	case tea.KeyMsg:
		if v.searching {
			return v.updateSearch(msg)
		}
		if v.list.Capturing() {
			cmd, _ := v.list.Update(msg)
			return v, cmd
		}
		return v.updateNormal(msg)
	}

	if v.searching {
		var cmd tea.Cmd
		v.search, cmd = v.search.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *CompletedView) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, v.deps.Keys.Back):
		v.searching = false
		v.search.Blur()
		v.search.Reset()
		v.query.Search = ""
		v.refresh()
		return v, nil
	case key.Matches(msg, v.deps.Keys.Enter):
		v.searching = false
		v.search.Blur()
		return v, nil
	}

	var cmd tea.Cmd
	v.search, cmd = v.search.Update(msg)
	v.query.Search = v.search.Value()
	v.refresh()
	return v, cmd
}

func (v *CompletedView) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := v.deps.Keys
	switch {
	case key.Matches(msg, k.Search):
		v.searching = true
		v.search.Focus()
		return v, textinput.Blink

	case key.Matches(msg, k.Period):
		v.query.Period = v.query.Period.Next()
		v.refresh()
		return v, nil

	case key.Matches(msg, k.Reopen):
		if task, ok := v.list.Selected(); ok {
			return v, reopenTask(v.deps.Service, task.ID)
		}
		return v, nil
	}

	cmd, _ := v.list.Update(msg)
	return v, cmd
}

func (v *CompletedView) refresh() {
	now := v.deps.Now()
	found := v.query.Apply(v.cache.Tasks(), now, v.deps.WeekStart)
	g := board.GroupCompleted(found, now, v.deps.WeekStart)

	var sections []Section
	for _, sec := range []Section{
		{Title: "Today", Tasks: g.Today},
		{Title: "Yesterday", Tasks: g.Yesterday},
		{Title: "Earlier this week", Tasks: g.EarlierWeek},
		{Title: "Older", Tasks: g.Older},
	} {
		if len(sec.Tasks) > 0 {
			sections = append(sections, sec)
		}
	}
	v.list.SetSections(sections...)
}

func (v *CompletedView) View() string {
	s := v.deps.Styles
	if !v.cache.Loaded() {
		return loadingView(s, &v.cache, v.deps.Keys.Reload.Help().Key)
	}

	now := v.deps.Now()
	tasks := v.cache.Tasks()
	totals := board.ArchiveTotals(tasks, now, v.deps.WeekStart)

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		statCard(s, "completed", totals.Total),
		statCard(s, "today", totals.Today),
		statCard(s, "this week", totals.ThisWeek),
	))
	b.WriteString("\n")

	searchStyle := s.Input
	if v.searching {
		searchStyle = s.InputFocused
	}
	inputWidth := clamp(styles.ContentWidth(v.width)-6, 20, 50)
	b.WriteString(searchStyle.Width(inputWidth).Render(v.search.View()))
	b.WriteString("\n")

	counts := v.query.PeriodCounts(tasks, now, v.deps.WeekStart)
	var periods []string
	for _, p := range board.Periods {
		label := fmt.Sprintf("%s (%d)", p.Label(), counts[p])
		if p == v.query.Period {
			periods = append(periods, s.FilterActive.Render(label))
		} else {
			periods = append(periods, s.FilterButton.Render(label))
		}
	}
	b.WriteString(strings.Join(periods, ""))
	b.WriteString("\n")

	b.WriteString(v.list.View())
	b.WriteString("\n")
	if v.searching {
		b.WriteString(helpLine(s, "↵", "done", "esc", "clear"))
	} else {
		b.WriteString(helpLine(s, "/", "search", "p", "period", "r", "reopen", "↵", "checklist",
			"e", "edit", "d", "del"))
	}

	return styles.CenterView(b.String(), v.width, v.height)
}
