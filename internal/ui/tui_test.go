package ui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nibzard/planner-go/internal/plan"
)

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestModel(t *testing.T) (*tuiModel, string) {
	t.Helper()
	store := plan.NewStore(t.TempDir())
	path, err := store.Create("Build a website", []string{"Design", "Code", "Deploy"}, time.Now(), plan.Renderer{})
	require.NoError(t, err)

	m := newTUIModel(store, path)
	require.NotNil(t, m.Init())
	require.NotNil(t, m.doc)
	return m, path
}

func press(m *tuiModel, keys ...string) {
	for _, k := range keys {
		m.Update(keyMsg(k))
	}
}

func TestTUIMarkAndSave(t *testing.T) {
	m, path := newTestModel(t)

	press(m, " ", "j", "j", "x")
	assert.Equal(t, map[int]bool{0: true, 2: true}, m.pending)
	assert.Contains(t, m.View(), "67% after save")

	press(m, "w")
	assert.Empty(t, m.pending)
	assert.Equal(t, "Plan updated! 2/3 tasks completed (67%)", m.message)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "- [x] Design\n- [ ] Code\n- [x] Deploy\n")
	assert.Contains(t, string(data), "- 2/3 tasks completed (67%)\n")
}

func TestTUIDoneTasksCannotBeUnchecked(t *testing.T) {
	m, _ := newTestModel(t)

	press(m, " ", "enter")
	require.True(t, m.doc.Tasks[0].Done)

	press(m, " ")
	assert.Empty(t, m.pending)
	assert.True(t, m.messageErr)
	assert.True(t, m.doc.Tasks[0].Done)
}

func TestTUIToggleUnmarks(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "j", " ", " ")
	assert.Empty(t, m.pending)
}

func TestTUICursorBounds(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "k", "k")
	assert.Equal(t, 0, m.cursor)
	press(m, "j", "j", "j", "j")
	assert.Equal(t, 2, m.cursor)
}

func TestTUITickReloadsOnlyWithoutPendingMarks(t *testing.T) {
	m, path := newTestModel(t)

	_, err := m.store.Update(path, []int{1})
	require.NoError(t, err)

	press(m, " ")
	m.Update(tickMsg(time.Now()))
	assert.False(t, m.doc.Tasks[1].Done, "reloaded while marks were pending")

	press(m, "r")
	assert.Empty(t, m.pending)
	assert.True(t, m.doc.Tasks[1].Done)
}

func TestTUISaveWithoutMarks(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "w")
	assert.Equal(t, "Nothing to save", m.message)
}

func TestTUILoadError(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan-bad.md")
	require.NoError(t, os.WriteFile(path, []byte("# nothing\n"), 0644))

	m := newTUIModel(plan.NewStore(dir), path)
	m.Init()
	assert.ErrorIs(t, m.loadErr, plan.ErrTaskSectionMissing)
	assert.Contains(t, m.View(), "Error loading plan")

	press(m, " ", "w")
	assert.Empty(t, m.pending)
}

func TestTUIHelpAndQuit(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "?")
	assert.Contains(t, m.View(), "Keyboard Shortcuts")
	press(m, "?")
	assert.NotContains(t, m.View(), "Keyboard Shortcuts")

	_, cmd := m.Update(keyMsg("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestTUIView(t *testing.T) {
	m, _ := newTestModel(t)
	view := m.View()
	assert.Contains(t, view, "# Project Plan: Build a website")
	assert.Contains(t, view, "0/3 tasks completed (0%)")
	assert.Contains(t, view, "[ ] Design")
}

func TestIsTTY(t *testing.T) {
	assert.False(t, IsTTY(&bytes.Buffer{}))
	f, err := os.CreateTemp(t.TempDir(), "out")
	require.NoError(t, err)
	defer f.Close()
	assert.False(t, IsTTY(f))
}

func TestTUIPlainItemsCannotBeMarked(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan-mixed.md")
	text := "# Project Plan: mixed\n\n## Tasks\n- plain item\n- [ ] boxed\n\n## Progress\n- 0/2 tasks completed (0%)\n"
	require.NoError(t, os.WriteFile(path, []byte(text), 0644))

	m := newTUIModel(plan.NewStore(dir), path)
	m.Init()
	require.NotNil(t, m.doc)

	press(m, " ")
	assert.Empty(t, m.pending)
	assert.True(t, m.messageErr)

	press(m, "j", " ")
	assert.Equal(t, map[int]bool{1: true}, m.pending)
	assert.Contains(t, m.View(), "50% after save")

	press(m, "w")
	assert.Equal(t, "Plan updated! 1/2 tasks completed (50%)", m.message)
}
