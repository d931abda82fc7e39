package plan

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreCreateAndUpdate(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "plans")
	store := NewStore(dir)

	path, err := store.Create("Build a website", []string{"Design", "Code", "Deploy"}, testDate, Renderer{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plan-build-a-website.md"), path)
	assert.Equal(t, path, store.Path("Build a website"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, websitePlan, string(data))

	u, err := store.Update(path, []int{0, 2, 99})
	require.NoError(t, err)
	assert.Equal(t, "2/3 tasks completed (67%)", u.Progress.String())
	assert.Equal(t, []int{99}, u.Ignored)

	doc, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Build a website", doc.Goal)
	assert.Equal(t, 2, doc.Progress.Completed)
}

func TestStoreCreateOverwritesCollidingGoal(t *testing.T) {
	store := NewStore(t.TempDir())

	first, err := store.Create("Ship it!", []string{"one"}, testDate, Renderer{})
	require.NoError(t, err)
	second, err := store.Create("ship it?", []string{"two"}, testDate, Renderer{})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	doc, err := store.Load(second)
	require.NoError(t, err)
	require.Len(t, doc.Tasks, 1)
	assert.Equal(t, "two", doc.Tasks[0].Description)
}

func TestStoreCreateRejectsEmptyTasks(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	_, err := store.Create("goal", []string{" "}, testDate, Renderer{})
	assert.ErrorIs(t, err, ErrNoTasks)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStoreUpdateLeavesMalformedFileUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan-broken.md")
	original := "# Project Plan: broken\n\n## Progress\n- 0/0 tasks completed (0%)\n"
	require.NoError(t, os.WriteFile(path, []byte(original), 0644))

	_, err := NewStore(dir).Update(path, []int{0})
	assert.ErrorIs(t, err, ErrTaskSectionMissing)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, original, string(data))
}

func TestStoreUpdateMissingFile(t *testing.T) {
	_, err := NewStore(t.TempDir()).Update(filepath.Join(t.TempDir(), "nope.md"), []int{0})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	_, err := store.Create("alpha", []string{"a", "b"}, testDate, Renderer{})
	require.NoError(t, err)
	betaPath, err := store.Create("beta", []string{"a"}, testDate, Renderer{})
	require.NoError(t, err)
	_, err = store.Update(betaPath, []int{0})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "plan-bad.md"), []byte("no tasks\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.md"), []byte("## Tasks\n"), 0644))

	entries, err := store.List()
	require.NoError(t, err)
	require.Len(t, entries, 3)

	byName := map[string]Entry{}
	for _, e := range entries {
		byName[filepath.Base(e.Path)] = e
	}
	assert.Equal(t, "alpha", byName["plan-alpha.md"].Goal)
	assert.Equal(t, Progress{Completed: 1, Total: 1, Percent: 100}, byName["plan-beta.md"].Progress)
	assert.ErrorIs(t, byName["plan-bad.md"].Err, ErrTaskSectionMissing)
}

func TestStoreListMissingDir(t *testing.T) {
	entries, err := NewStore(filepath.Join(t.TempDir(), "missing")).List()
	require.NoError(t, err)
	assert.Empty(t, entries)
}
