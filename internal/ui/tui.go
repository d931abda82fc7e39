// Package ui provides the interactive plan checklist.
package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nibzard/planner-go/internal/plan"
)

const (
	defaultTickInterval = 2 * time.Second
	progressBarWidth    = 24
)

// RunTUI opens an interactive checklist for the plan at path. Marked tasks
// are written through store, so the file on disk follows the same update
// rules as the update command.
func RunTUI(ctx context.Context, store *plan.Store, path string) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	program := tea.NewProgram(newTUIModel(store, path), tea.WithAltScreen(), tea.WithContext(ctx))
	finalModel, err := program.Run()
	if err != nil {
		return err
	}
	if m, ok := finalModel.(*tuiModel); ok && m.doc == nil && m.loadErr != nil {
		return m.loadErr
	}
	return nil
}

type tuiModel struct {
	store        *plan.Store
	path         string
	doc          *plan.Document
	loadErr      error
	cursor       int
	pending      map[int]bool
	message      string
	messageErr   bool
	showHelp     bool
	tickInterval time.Duration
}

type tickMsg time.Time

func newTUIModel(store *plan.Store, path string) *tuiModel {
	return &tuiModel{
		store:        store,
		path:         path,
		pending:      map[int]bool{},
		tickInterval: defaultTickInterval,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	m.refresh()
	return tickCmd(m.tickInterval)
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < m.taskCount()-1 {
				m.cursor++
			}
		case " ", "x":
			m.toggle()
		case "w", "enter":
			m.save()
		case "r", "f5":
			m.pending = map[int]bool{}
			m.refresh()
			m.setMessage("Reloaded", false)
		case "h", "?":
			m.showHelp = !m.showHelp
		}
	case tickMsg:
		if len(m.pending) == 0 {
			m.refresh()
		}
		return m, tickCmd(m.tickInterval)
	}
	return m, nil
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Planner") + "  " + mutedStyle.Render(m.path) + "\n\n")

	if m.showHelp {
		b.WriteString(helpView())
		return b.String()
	}
	if m.loadErr != nil {
		b.WriteString(errorStyle.Render("Error loading plan:") + "\n")
		b.WriteString("  " + m.loadErr.Error() + "\n\n")
		b.WriteString(footerView())
		return b.String()
	}
	if m.doc == nil {
		b.WriteString("Loading...\n\n")
		return b.String()
	}

	b.WriteString(headingStyle.Render(m.doc.Title) + "\n\n")
	b.WriteString(progressView(m.doc.Progress, m.projected()) + "\n\n")

	var rows []string
	for i, task := range m.doc.Tasks {
		rows = append(rows, m.taskRow(i, task))
	}
	if len(rows) == 0 {
		rows = append(rows, mutedStyle.Render("No tasks in this plan."))
	}
	b.WriteString(boxStyle.Render(strings.Join(rows, "\n")) + "\n\n")

	if m.message != "" {
		if m.messageErr {
			b.WriteString(errorStyle.Render(m.message) + "\n\n")
		} else {
			b.WriteString(doneStyle.Render(m.message) + "\n\n")
		}
	}
	b.WriteString(footerView())
	return b.String()
}

func (m *tuiModel) taskCount() int {
	if m.doc == nil {
		return 0
	}
	return len(m.doc.Tasks)
}

func (m *tuiModel) toggle() {
	if m.cursor >= m.taskCount() {
		return
	}
	if m.doc.Tasks[m.cursor].Done {
		m.setMessage("Completed tasks cannot be unchecked", true)
		return
	}
	if m.doc.Tasks[m.cursor].Plain {
		m.setMessage("Items without a checkbox cannot be marked", true)
		return
	}
	if m.pending[m.cursor] {
		delete(m.pending, m.cursor)
	} else {
		m.pending[m.cursor] = true
	}
	m.message = ""
}

func (m *tuiModel) save() {
	if len(m.pending) == 0 {
		m.setMessage("Nothing to save", false)
		return
	}
	indices := make([]int, 0, len(m.pending))
	for idx := range m.pending {
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	u, err := m.store.Update(m.path, indices)
	if err != nil {
		m.setMessage(err.Error(), true)
		return
	}
	m.pending = map[int]bool{}
	m.refresh()
	m.setMessage("Plan updated! "+u.Progress.String(), false)
}

func (m *tuiModel) refresh() {
	doc, err := m.store.Load(m.path)
	if err != nil {
		m.loadErr = err
		m.doc = nil
		return
	}
	m.loadErr = nil
	m.doc = doc
	if m.cursor >= len(doc.Tasks) {
		m.cursor = max(len(doc.Tasks)-1, 0)
	}
}

func (m *tuiModel) setMessage(msg string, isErr bool) {
	m.message = msg
	m.messageErr = isErr
}

// projected returns progress as it would be after saving pending marks.
func (m *tuiModel) projected() plan.Progress {
	if m.doc == nil {
		return plan.Progress{}
	}
	done := m.doc.Progress.Completed + len(m.pending)
	return plan.Progress{
		Completed: done,
		Total:     m.doc.Progress.Total,
		Percent:   plan.Percent(done, m.doc.Progress.Total),
	}
}

func (m *tuiModel) taskRow(i int, task plan.TaskItem) string {
	pointer := "  "
	if i == m.cursor {
		pointer = cursorStyle.Render("> ")
	}
	switch {
	case task.Done:
		return pointer + doneStyle.Render("[x] "+task.Description)
	case task.Plain:
		return pointer + mutedStyle.Render("-   "+task.Description)
	case m.pending[i]:
		return pointer + pendingStyle.Render("[+] "+task.Description)
	default:
		return pointer + "[ ] " + task.Description
	}
}

func progressView(current, projected plan.Progress) string {
	filled := 0
	if current.Total > 0 {
		filled = progressBarWidth * current.Completed / current.Total
	}
	bar := doneStyle.Render(strings.Repeat("#", filled)) + mutedStyle.Render(strings.Repeat("-", progressBarWidth-filled))
	line := "[" + bar + "] " + current.String()
	if projected.Completed != current.Completed {
		line += pendingStyle.Render(fmt.Sprintf("  -> %d%% after save", projected.Percent))
	}
	return line
}

func helpView() string {
	var b strings.Builder
	b.WriteString(headingStyle.Render("Keyboard Shortcuts") + "\n\n")
	b.WriteString("  j, down      Move down\n")
	b.WriteString("  k, up        Move up\n")
	b.WriteString("  space, x     Mark or unmark a task for completion\n")
	b.WriteString("  w, enter     Write marked tasks to the plan\n")
	b.WriteString("  r, F5        Reload from disk (drops marks)\n")
	b.WriteString("  h, ?         Toggle this help screen\n")
	b.WriteString("  q, ctrl+c    Quit\n\n")
	return b.String()
}

func footerView() string {
	return mutedStyle.Render("space mark | w save | ? help | q quit") + "\n"
}

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
