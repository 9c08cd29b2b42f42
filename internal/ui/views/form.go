package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tgienger/taskboard/internal/board"
	"github.com/tgienger/taskboard/internal/models"
	"github.com/tgienger/taskboard/internal/ui/styles"
)

// defaultDueHour is used when only a date is typed
const defaultDueHour = 9

// form focus order
const (
	focusTitle = iota
	focusDue
	focusPriority
	focusChecklist
	focusNewItem
	focusSave
	focusCount
)

// TaskForm creates and edits tasks
type TaskForm struct {
	deps *Deps

	active  bool
	saving  bool
	editing *models.Task
	err     error

	title     textinput.Model
	due       textinput.Model
	newItem   textinput.Model
	priority  models.Priority
	checklist []models.ChecklistItem
	itemIdx   int
	focusIdx  int
}

// NewTaskForm creates a closed form
func NewTaskForm(deps *Deps) *TaskForm {
	title := textinput.New()
	title.Placeholder = "Task title"
	title.CharLimit = 200

	due := textinput.New()
	due.Placeholder = board.InputLayout
	due.CharLimit = len(board.InputLayout)

	newItem := textinput.New()
	newItem.Placeholder = "Add checklist item"
	newItem.CharLimit = 200

	return &TaskForm{
		deps:    deps,
		title:   title,
		due:     due,
		newItem: newItem,
	}
}

// Open shows the form. A nil task starts a new one due at due.
func (f *TaskForm) Open(task *models.Task, due time.Time) tea.Cmd {
	f.active = true
	f.saving = false
	f.err = nil
	f.focusIdx = focusTitle
	f.itemIdx = 0
	f.newItem.Reset()

	loc := f.deps.Now().Location()
	if task == nil {
		f.editing = nil
		f.title.Reset()
		f.due.SetValue(due.In(loc).Format(board.InputLayout))
		f.priority = models.PriorityMedium
		f.checklist = nil
	} else {
		t := task.Clone()
		f.editing = &t
		f.title.SetValue(t.Title)
		f.due.SetValue(t.DueDate.In(loc).Format(board.InputLayout))
		f.priority = t.Priority
		f.checklist = t.Checklist
	}
	f.updateFocus()
	return textinput.Blink
}

// Active reports whether the form is open
func (f *TaskForm) Active() bool { return f.active }

// Saving reports whether a submitted save is still in flight
func (f *TaskForm) Saving() bool { return f.saving }

// Close hides the form
func (f *TaskForm) Close() {
	f.active = false
	f.saving = false
}

// Fail reopens the form for editing after a failed save
func (f *TaskForm) Fail(err error) {
	f.saving = false
	f.err = err
}

// Input collects and validates the form fields
func (f *TaskForm) Input() (models.TaskInput, error) {
	loc := f.deps.Now().Location()
	in := models.TaskInput{
		Title:     strings.TrimSpace(f.title.Value()),
		Priority:  f.priority,
		Checklist: models.CloneChecklist(f.checklist),
	}
	if v := strings.TrimSpace(f.due.Value()); v != "" {
		due, err := board.ParseInput(v, loc, defaultDueHour)
		if err != nil {
			return in, err
		}
		in.DueDate = due
	}
	return in, in.Validate()
}

func (f *TaskForm) submit() tea.Cmd {
	in, err := f.Input()
	if err != nil {
		f.err = err
		return nil
	}
	f.err = nil
	f.saving = true
	if f.editing != nil {
		return updateTask(f.deps.Service, f.editing.ID, models.PatchFromInput(in))
	}
	return createTask(f.deps.Service, in)
}

// Update handles a message while the form is open
func (f *TaskForm) Update(msg tea.Msg) tea.Cmd {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return f.updateInputs(msg)
	}
	if f.saving {
		return nil
	}

	k := f.deps.Keys
	switch {
	case key.Matches(keyMsg, k.Back):
		f.Close()
		return nil

	case key.Matches(keyMsg, k.Save):
		return f.submit()

	case key.Matches(keyMsg, k.Tab):
		f.focusIdx = (f.focusIdx + 1) % focusCount
		f.updateFocus()
		return nil

	case key.Matches(keyMsg, k.ShiftTab):
		f.focusIdx = (f.focusIdx + focusCount - 1) % focusCount
		f.updateFocus()
		return nil

	case key.Matches(keyMsg, k.Enter):
		switch f.focusIdx {
		case focusNewItem:
			f.addItem()
			return nil
		case focusSave:
			return f.submit()
		case focusChecklist:
			f.toggleItem()
			return nil
		}
		f.focusIdx++
		f.updateFocus()
		return nil
	}

	switch f.focusIdx {
	case focusPriority:
		switch {
		case key.Matches(keyMsg, k.Left):
			f.priority = cyclePriority(f.priority, -1)
		case key.Matches(keyMsg, k.Right), key.Matches(keyMsg, k.Toggle):
			f.priority = cyclePriority(f.priority, 1)
		}
		return nil

	case focusChecklist:
		switch {
		case key.Matches(keyMsg, k.Up):
			if f.itemIdx > 0 {
				f.itemIdx--
			}
		case key.Matches(keyMsg, k.Down):
			if f.itemIdx < len(f.checklist)-1 {
				f.itemIdx++
			}
		case key.Matches(keyMsg, k.Toggle):
			f.toggleItem()
		case key.Matches(keyMsg, k.Delete), keyMsg.String() == "backspace":
			f.removeItem()
		}
		return nil
	}

	return f.updateInputs(msg)
}

func (f *TaskForm) updateInputs(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch f.focusIdx {
	case focusTitle:
		f.title, cmd = f.title.Update(msg)
	case focusDue:
		f.due, cmd = f.due.Update(msg)
	case focusNewItem:
		f.newItem, cmd = f.newItem.Update(msg)
	}
	return cmd
}

func (f *TaskForm) updateFocus() {
	f.title.Blur()
	f.due.Blur()
	f.newItem.Blur()

	switch f.focusIdx {
	case focusTitle:
		f.title.Focus()
	case focusDue:
		f.due.Focus()
	case focusNewItem:
		f.newItem.Focus()
	}
}

func (f *TaskForm) addItem() {
	text := strings.TrimSpace(f.newItem.Value())
	if text == "" {
		return
	}
	// ids are assigned by the service
	f.checklist = append(f.checklist, models.ChecklistItem{Text: text})
	f.newItem.Reset()
}

func (f *TaskForm) removeItem() {
	if f.itemIdx >= len(f.checklist) {
		return
	}
	f.checklist = append(f.checklist[:f.itemIdx], f.checklist[f.itemIdx+1:]...)
	f.itemIdx = clamp(f.itemIdx, 0, max(0, len(f.checklist)-1))
}

func (f *TaskForm) toggleItem() {
	if f.itemIdx >= len(f.checklist) {
		return
	}
	item := &f.checklist[f.itemIdx]
	item.Checked = !item.Checked
	if !item.Checked {
		item.CheckedAt = nil
	}
}

func cyclePriority(p models.Priority, dir int) models.Priority {
	n := len(models.Priorities)
	for i, known := range models.Priorities {
		if known == p {
			return models.Priorities[(i+dir+n)%n]
		}
	}
	return models.PriorityMedium
}

// View renders the form centered in the given area
func (f *TaskForm) View(width, height int) string {
	s := f.deps.Styles
	contentWidth := styles.ContentWidth(width)
	inputWidth := clamp(contentWidth-6, 20, 50)

	field := func(idx int) lipgloss.Style {
		if f.focusIdx == idx {
			return s.InputFocused.Width(inputWidth)
		}
		return s.Input.Width(inputWidth)
	}

	formTitle := "New Task"
	if f.editing != nil {
		formTitle = "Edit Task"
	}

	var prios []string
	for _, p := range models.Priorities {
		if p == f.priority {
			prios = append(prios, "▸"+s.Priority(p))
		} else {
			prios = append(prios, s.TitleMuted.Render(p.Label()))
		}
	}

	var items []string
	for i, item := range f.checklist {
		box := "[ ]"
		if item.Checked {
			box = s.Checked.Render("[x]")
		}
		line := box + " " + item.Text
		if f.focusIdx == focusChecklist && i == f.itemIdx {
			line = s.ListSelected.Render(line)
		} else {
			line = s.ListItem.Render(line)
		}
		items = append(items, line)
	}
	if len(items) == 0 {
		items = append(items, s.TitleMuted.Render("  no items"))
	}

	btn := s.Button
	if f.focusIdx == focusSave {
		btn = s.ButtonFocused
	}
	label := " Save "
	if f.saving {
		label = " Saving... "
	}

	rows := []string{
		s.Title.Render(formTitle),
		"",
		"Title:",
		field(focusTitle).Render(f.title.View()),
		"Due (" + board.InputLayout + "):",
		field(focusDue).Render(f.due.View()),
		"Priority:",
		field(focusPriority).Render(strings.Join(prios, "  ")),
		"Checklist:",
		field(focusChecklist).Render(lipgloss.JoinVertical(lipgloss.Left, items...)),
		field(focusNewItem).Render(f.newItem.View()),
		"",
		btn.Render(label),
	}
	if f.err != nil {
		rows = append(rows, "", s.FieldError.Render(fmt.Sprintf("Error: %v", f.err)))
	}
	rows = append(rows, "",
		s.TitleMuted.Render("Tab: next • ←/→: priority • Space: check • d: remove item • Ctrl+S: save • Esc: cancel"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	centered := lipgloss.Place(contentWidth, height,
		lipgloss.Center, lipgloss.Center,
		form,
	)
	return styles.CenterView(centered, width, height)
}
