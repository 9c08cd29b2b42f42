package ui

import (
	"log"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskboard/internal/ui/styles"
	"github.com/tgienger/taskboard/internal/ui/views"
)

// ToastTTL is how long a toast stays on screen
const ToastTTL = 3 * time.Second

// Page is one of the app's top-level screens
type Page interface {
	tea.Model
	Name() string
	// Capturing reports whether the page needs every key, e.g. while typing
	Capturing() bool
	// Refresh reloads the page only if the tasks changed since its last load
	Refresh() tea.Cmd
}

// PageStore remembers the last open page between runs
type PageStore interface {
	LastPage() (string, error)
	SetLastPage(page string) error
}

// DayChangedMsg is sent by the scheduler at midnight
type DayChangedMsg struct{}

// RefreshMsg asks the current page to reload if the tasks changed
type RefreshMsg struct{}

type toastExpiredMsg struct {
	seq int
}

type toast struct {
	text  string
	isErr bool
	seq   int
}

type App struct {
	deps    *views.Deps
	store   PageStore
	pages   []Page
	current int
	form    *views.TaskForm
	toast   *toast
	seq     int
	help    help.Model
	width   int
	height  int
}

// Creates a new application
func NewApp(deps *views.Deps, store PageStore) *App {
	return &App{
		deps:  deps,
		store: store,
		pages: []Page{
			views.NewDashboardView(deps),
			views.NewTaskListView(deps),
			views.NewCalendarView(deps),
			views.NewCompletedView(deps),
		},
		form: views.NewTaskForm(deps),
		help: help.New(),
	}
}

// Current returns the active page
func (a *App) Current() Page { return a.pages[a.current] }

// Form returns the task form overlay
func (a *App) Form() *views.TaskForm { return a.form }

// Toast returns the visible toast text, if any
func (a *App) Toast() (string, bool) {
	if a.toast == nil {
		return "", false
	}
	return a.toast.text, a.toast.isErr
}

func (a *App) Init() tea.Cmd {
	if a.store != nil {
		last, err := a.store.LastPage()
		if err != nil {
			log.Printf("[ui] load last page: %v", err)
		}
		for i, p := range a.pages {
			if strings.EqualFold(p.Name(), last) {
				a.current = i
			}
		}
	}
	return a.Current().Init()
}

func (a *App) switchTo(i int) tea.Cmd {
	if i == a.current {
		return nil
	}
	a.current = i
	if a.store != nil {
		if err := a.store.SetLastPage(strings.ToLower(a.Current().Name())); err != nil {
			log.Printf("[ui] save last page: %v", err)
		}
	}

	// Pages reload on every visit
	return a.Current().Init()
}

func (a *App) showToast(text string, isErr bool) tea.Cmd {
	a.seq++
	seq := a.seq
	a.toast = &toast{text: text, isErr: isErr, seq: seq}
	return tea.Tick(ToastTTL, func(time.Time) tea.Msg {
		return toastExpiredMsg{seq: seq}
	})
}

func (a *App) pageHeight() int {
	// tab bar, toast line, help line and their spacing
	return max(a.height-5, 0)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		sized := tea.WindowSizeMsg{Width: msg.Width, Height: a.pageHeight()}
		// Every page keeps its size so switching renders at once
		for _, p := range a.pages {
			p.Update(sized)
		}
		return a, nil

	case toastExpiredMsg:
		if a.toast != nil && a.toast.seq == msg.seq {
			a.toast = nil
		}
		return a, nil

	case views.ToastMsg:
		return a, a.showToast(msg.Text, msg.Error)

	case views.ErrMsg:
		log.Printf("[ui] %v", msg)
		if a.form.Active() && a.form.Saving() {
			a.form.Fail(msg.Err)
		}
		_, cmd := a.Current().Update(msg)
		return a, tea.Batch(a.showToast("Error: "+msg.Error(), true), cmd)

	case views.OpenFormMsg:
		return a, a.form.Open(msg.Task, msg.Due)

	case views.TaskChangedMsg:
		var cmds []tea.Cmd
		if (msg.Op == views.OpCreated || msg.Op == views.OpUpdated) && a.form.Saving() {
			a.form.Close()
		}
		if text := msg.Op.Toast(); text != "" {
			cmds = append(cmds, a.showToast(text, false))
		}
		_, cmd := a.Current().Update(msg)
		return a, tea.Batch(append(cmds, cmd)...)

	case views.TaskDeletedMsg:
		_, cmd := a.Current().Update(msg)
		return a, tea.Batch(a.showToast("Task deleted", false), cmd)

	case DayChangedMsg:
		return a, a.Current().Init()

	case RefreshMsg:
		return a, a.Current().Refresh()

	case tea.KeyMsg:
		if a.form.Active() {
			return a, a.form.Update(msg)
		}
		if !a.Current().Capturing() {
			if cmd, ok := a.handleGlobalKey(msg); ok {
				return a, cmd
			}
		}
		_, cmd := a.Current().Update(msg)
		return a, cmd
	}

	if a.form.Active() {
		return a, a.form.Update(msg)
	}
	_, cmd := a.Current().Update(msg)
	return a, cmd
}

func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	k := a.deps.Keys
	switch {
	case key.Matches(msg, k.Quit):
		return tea.Quit, true
	case key.Matches(msg, k.Help):
		a.help.ShowAll = !a.help.ShowAll
		return nil, true
	case key.Matches(msg, k.Reload):
		return a.Current().Init(), true
	case key.Matches(msg, k.Dashboard):
		return a.switchTo(0), true
	case key.Matches(msg, k.Tasks):
		return a.switchTo(1), true
	case key.Matches(msg, k.Calendar):
		return a.switchTo(2), true
	case key.Matches(msg, k.Completed):
		return a.switchTo(3), true
	case key.Matches(msg, k.Tab):
		return a.switchTo((a.current + 1) % len(a.pages)), true
	case key.Matches(msg, k.ShiftTab):
		return a.switchTo((a.current + len(a.pages) - 1) % len(a.pages)), true
	}
	return nil, false
}

func (a *App) View() string {
	if a.form.Active() {
		return a.form.View(a.width, a.height)
	}

	s := a.deps.Styles
	var tabs []string
	for i, p := range a.pages {
		label := string(rune('1'+i)) + " " + p.Name()
		if i == a.current {
			tabs = append(tabs, s.TabActive.Render(label))
		} else {
			tabs = append(tabs, s.Tab.Render(label))
		}
	}
	header := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)

	toastLine := ""
	if a.toast != nil {
		if a.toast.isErr {
			toastLine = s.ToastError.Render(a.toast.text)
		} else {
			toastLine = s.ToastSuccess.Render(a.toast.text)
		}
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		header,
		toastLine,
		a.Current().View(),
		a.help.View(a.deps.Keys),
	)
	return styles.CenterView(content, a.width, a.height)
}
