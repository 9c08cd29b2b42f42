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

// Section is a titled group of tasks in a TaskList
type Section struct {
	Title string
	Tasks []models.Task
}

// row is one selectable line: a task, or one of its checklist items
type row struct {
	section int
	task    int
	item    int // -1 for the task line
}

// TaskList is the task list shared by every page: selection, checklist
// expansion, complete/reopen, item toggling, edit and delete confirmation.
type TaskList struct {
	deps     *Deps
	sections []Section
	rows     []row
	expanded map[int64]bool
	empty    string
	// showDone replaces the due date of completed tasks with their completion time
	showDone bool

	cursor  int
	scrollY int
	width   int
	height  int
	focused bool

	confirmingDelete bool
	deleteTarget     models.Task
}

// NewTaskList creates a list; empty is shown when it has no tasks
func NewTaskList(deps *Deps, empty string) *TaskList {
	return &TaskList{
		deps:     deps,
		expanded: make(map[int64]bool),
		empty:    empty,
		focused:  true,
	}
}

// ShowCompletedAt makes completed rows show when they were completed
func (l *TaskList) ShowCompletedAt(on bool) { l.showDone = on }

// SetTasks shows tasks as a single untitled section
func (l *TaskList) SetTasks(tasks []models.Task) {
	l.SetSections(Section{Tasks: tasks})
}

// SetSections replaces the content, keeping the cursor on the same task
// or item when it is still present
func (l *TaskList) SetSections(sections ...Section) {
	prevTask, prevItem := int64(0), ""
	if r, ok := l.currentRow(); ok {
		t := l.sections[r.section].Tasks[r.task]
		prevTask = t.ID
		if r.item >= 0 {
			prevItem = t.Checklist[r.item].ID
		}
	}

	l.sections = sections
	l.rebuild()

	l.cursor = clamp(l.cursor, 0, max(0, len(l.rows)-1))
	for i, r := range l.rows {
		t := l.sections[r.section].Tasks[r.task]
		if t.ID != prevTask {
			continue
		}
		if r.item < 0 && prevItem == "" || r.item >= 0 && t.Checklist[r.item].ID == prevItem {
			l.cursor = i
			break
		}
	}
	l.ensureVisible()
}

func (l *TaskList) rebuild() {
	l.rows = l.rows[:0]
	for si, sec := range l.sections {
		for ti, t := range sec.Tasks {
			l.rows = append(l.rows, row{section: si, task: ti, item: -1})
			if l.expanded[t.ID] {
				for ii := range t.Checklist {
					l.rows = append(l.rows, row{section: si, task: ti, item: ii})
				}
			}
		}
	}
}

func (l *TaskList) currentRow() (row, bool) {
	if l.cursor < 0 || l.cursor >= len(l.rows) {
		return row{}, false
	}
	return l.rows[l.cursor], true
}

// Selected returns the task under the cursor
func (l *TaskList) Selected() (models.Task, bool) {
	r, ok := l.currentRow()
	if !ok {
		return models.Task{}, false
	}
	return l.sections[r.section].Tasks[r.task], true
}

// Len returns the number of tasks shown
func (l *TaskList) Len() int {
	n := 0
	for _, s := range l.sections {
		n += len(s.Tasks)
	}
	return n
}

// Capturing reports whether the list is consuming every key
func (l *TaskList) Capturing() bool {
	return l.confirmingDelete
}

// Focus toggles cursor highlighting
func (l *TaskList) Focus(on bool) {
	l.focused = on
}

// SetSize sets the area the list renders into
func (l *TaskList) SetSize(width, height int) {
	l.width = width
	l.height = height
	l.ensureVisible()
}

// Update handles a key. It reports whether the key was consumed.
func (l *TaskList) Update(msg tea.KeyMsg) (tea.Cmd, bool) {
	if l.confirmingDelete {
		return l.updateConfirmDelete(msg), true
	}

	k := l.deps.Keys
	switch {
	case key.Matches(msg, k.Up):
		if l.cursor > 0 {
			l.cursor--
			l.ensureVisible()
		}
		return nil, true

	case key.Matches(msg, k.Down):
		if l.cursor < len(l.rows)-1 {
			l.cursor++
			l.ensureVisible()
		}
		return nil, true
	}

	r, ok := l.currentRow()
	if !ok {
		return nil, false
	}
	task := l.sections[r.section].Tasks[r.task]
	svc := l.deps.Service

	switch {
	case key.Matches(msg, k.Enter):
		l.expanded[task.ID] = !l.expanded[task.ID]
		if !l.expanded[task.ID] && r.item >= 0 {
			// collapse onto the task line
			l.cursor -= r.item + 1
		}
		l.rebuild()
		l.ensureVisible()
		return nil, true

	case key.Matches(msg, k.Toggle):
		if r.item < 0 {
			return nil, true
		}
		item := task.Checklist[r.item]
		return toggleItem(svc, task, item.ID, !item.Checked), true

	case key.Matches(msg, k.Complete):
		if task.Completed {
			return reopenTask(svc, task.ID), true
		}
		return completeTask(svc, task.ID), true

	case key.Matches(msg, k.Edit):
		t := task.Clone()
		return func() tea.Msg { return OpenFormMsg{Task: &t} }, true

	case key.Matches(msg, k.Delete):
		l.confirmingDelete = true
		l.deleteTarget = task
		return nil, true
	}
	return nil, false
}

func (l *TaskList) updateConfirmDelete(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "y", "Y":
		l.confirmingDelete = false
		return deleteTask(l.deps.Service, l.deleteTarget.ID)
	case "n", "N", "esc":
		l.confirmingDelete = false
	}
	return nil
}

func (l *TaskList) visibleRows() int {
	h := l.height - 2*len(l.sections)
	if l.confirmingDelete {
		h -= 2
	}
	return max(h, 1)
}

func (l *TaskList) ensureVisible() {
	visible := l.visibleRows()
	if l.cursor < l.scrollY {
		l.scrollY = l.cursor
	} else if l.cursor >= l.scrollY+visible {
		l.scrollY = l.cursor - visible + 1
	}
	if l.scrollY > max(0, len(l.rows)-visible) {
		l.scrollY = max(0, len(l.rows)-visible)
	}
}

// View renders the visible rows with their section headers
func (l *TaskList) View() string {
	s := l.deps.Styles
	if len(l.rows) == 0 {
		var b strings.Builder
		for _, sec := range l.sections {
			if sec.Title != "" {
				b.WriteString(s.Section.Render(sec.Title) + "\n")
			}
		}
		b.WriteString(s.TitleMuted.Render(l.empty))
		return b.String()
	}

	var lines []string
	end := min(l.scrollY+l.visibleRows(), len(l.rows))
	lastSection := -1
	for i := l.scrollY; i < end; i++ {
		r := l.rows[i]
		if r.section != lastSection {
			if title := l.sections[r.section].Title; title != "" {
				lines = append(lines, s.Section.Render(
					fmt.Sprintf("%s (%d)", title, len(l.sections[r.section].Tasks))))
			}
			lastSection = r.section
		}
		lines = append(lines, l.renderRow(r, i == l.cursor && l.focused))
	}

	if l.confirmingDelete {
		lines = append(lines, "",
			s.FieldError.Render(fmt.Sprintf("Delete %q?", l.deleteTarget.Title))+" "+
				s.HelpKey.Render("y")+s.HelpDesc.Render(" yes • ")+
				s.HelpKey.Render("n")+s.HelpDesc.Render(" no"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (l *TaskList) renderRow(r row, selected bool) string {
	s := l.deps.Styles
	width := max(styles.ContentWidth(l.width)-4, 20)
	task := l.sections[r.section].Tasks[r.task]

	lineStyle := s.ListItem.Width(width)
	if selected {
		lineStyle = s.ListSelected.Width(width)
	}

	if r.item >= 0 {
		item := task.Checklist[r.item]
		box := "[ ]"
		text := item.Text
		if item.Checked {
			box = s.Checked.Render("[x]")
			text = s.TaskDone.Render(text)
		}
		return lineStyle.Render("    " + box + " " + text)
	}

	now := l.deps.Now()
	box := "[ ]"
	title := task.Title
	due := board.FormatDue(task.DueDate, now)
	switch {
	case task.Completed:
		box = s.Checked.Render("[x]")
		title = s.TaskDone.Render(title)
		if l.showDone && task.CompletedAt != nil {
			due = s.TitleMuted.Render("done " + board.FormatStamp(*task.CompletedAt, now.Location()))
		}
	case task.DueDate.Before(now):
		due = s.TaskOverdue.Render(due)
	}

	marker := "  "
	if len(task.Checklist) > 0 {
		marker = "▸ "
		if l.expanded[task.ID] {
			marker = "▾ "
		}
	}

	parts := []string{marker + box + " " + title, s.PriorityDot(task.Priority), due}
	if n := len(task.Checklist); n > 0 {
		parts = append(parts, s.TitleMuted.Render(fmt.Sprintf("%d/%d", task.CheckedCount(), n)))
	}
	return lineStyle.Render(strings.Join(parts, "  "))
}
