package plan

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Store reads and writes plan documents in a directory.
type Store struct {
	dir string
}

// Entry describes a plan file found by List.
type Entry struct {
	Path     string
	Goal     string
	Progress Progress
	ModTime  time.Time
	Err      error // set when the file could not be parsed
}

// NewStore creates a store rooted at dir, defaulting to the working directory.
func NewStore(dir string) *Store {
	if dir == "" {
		dir = "."
	}
	return &Store{dir: dir}
}

// Dir returns the plan directory.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the file path used for goal.
func (s *Store) Path(goal string) string {
	return filepath.Join(s.dir, Filename(goal))
}

// Create renders a plan for goal and writes it, replacing any plan whose
// goal normalizes to the same file name. It returns the written path.
func (s *Store) Create(goal string, tasks []string, now time.Time, r Renderer) (string, error) {
	rendered, err := r.Build(goal, tasks, now)
	if err != nil {
		return "", fmt.Errorf("build plan: %w", err)
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("create plan dir: %w", err)
	}
	path := filepath.Join(s.dir, rendered.Filename)
	if err := os.WriteFile(path, []byte(rendered.Text), 0644); err != nil {
		return "", fmt.Errorf("write plan file: %w", err)
	}
	return path, nil
}

// Update applies completion indices to the plan at path. The file is only
// rewritten when the update succeeds.
func (s *Store) Update(path string, completed []int) (*Update, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	u, err := ApplyUpdate(string(data), completed)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", filepath.Base(path), err)
	}
	if u.Text == string(data) {
		return u, nil
	}
	if err := os.WriteFile(path, []byte(u.Text), 0644); err != nil {
		return nil, fmt.Errorf("write plan file: %w", err)
	}
	return u, nil
}

// Load reads and parses the plan at path.
func (s *Store) Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	doc, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// List finds plan files in the store directory by name, newest first.
// Files that fail to parse are still listed with Err set.
func (s *Store) List() ([]Entry, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read plan dir: %w", err)
	}

	var plans []Entry
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "plan-") || !strings.HasSuffix(name, ".md") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		path := filepath.Join(s.dir, name)
		e := Entry{Path: path, ModTime: info.ModTime()}
		doc, err := s.Load(path)
		if err != nil {
			e.Err = err
		} else {
			e.Goal = doc.Goal
			e.Progress = doc.Progress
		}
		plans = append(plans, e)
	}

	sort.SliceStable(plans, func(i, j int) bool {
		if plans[i].ModTime.Equal(plans[j].ModTime) {
			return plans[i].Path < plans[j].Path
		}
		return plans[i].ModTime.After(plans[j].ModTime)
	})
	return plans, nil
}
