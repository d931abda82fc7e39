// Package prompts loads and renders the prompt sent to the task generator.
package prompts

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"
)

const (
	// GeneratePrompt asks an agent to break a goal into subtasks.
	GeneratePrompt = "generate.txt"
	// TaskSchema is the JSON Schema for the agent's structured reply.
	TaskSchema = "tasks.schema.json"
)

const bundledGeneratePrompt = `You are a helpful planning assistant. Your job is to break down a main task into {{.Count}} specific, actionable subtasks.
Each subtask should be:
1. Clear and concise
2. Actionable (start with a verb)
3. Specific enough to be completable
4. Logically ordered from first to last

Reply with a single JSON object of the form {"tasks": ["first subtask", "second subtask"]} and nothing else.
If you cannot reply with JSON, provide only the tasks, one per line, without numbering or bullet points.

Break down the following task into {{.Count}} specific, actionable subtasks: "{{.Goal}}"
`

const bundledTaskSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Planner Subtasks",
  "type": "object",
  "required": ["tasks"],
  "properties": {
    "tasks": {
      "type": "array",
      "minItems": 1,
      "items": { "type": "string", "minLength": 1 }
    }
  }
}`

var bundled = map[string]string{
	GeneratePrompt: bundledGeneratePrompt,
	TaskSchema:     bundledTaskSchema,
}

// BundledTaskSchema returns the bundled subtask schema JSON content.
func BundledTaskSchema() []byte {
	return []byte(bundledTaskSchema)
}

// Store loads prompt assets from an optional override directory, falling
// back to the bundled copies.
type Store struct {
	dir string
}

// NewStore creates a prompt store. An empty dir uses only bundled prompts.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the override directory, which may be empty.
func (s *Store) Dir() string {
	return s.dir
}

// Load reads a prompt asset as a string.
func (s *Store) Load(name string) (string, error) {
	if name == "" {
		return "", errors.New("prompt name is empty")
	}
	if s != nil && s.dir != "" {
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		switch {
		case err == nil:
			return string(data), nil
		case !errors.Is(err, os.ErrNotExist):
			return "", fmt.Errorf("read prompt %q: %w", name, err)
		}
	}
	if raw, ok := bundled[name]; ok {
		return raw, nil
	}
	return "", fmt.Errorf("prompt %q not found", name)
}

// Source reports where name would be loaded from: a file path or "bundled".
func (s *Store) Source(name string) string {
	if s != nil && s.dir != "" {
		path := filepath.Join(s.dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return "bundled"
}

// Data holds prompt template variables.
type Data struct {
	Goal  string
	Count int
	Now   string
}

// NewData builds prompt data with a UTC timestamp formatted in RFC3339.
func NewData(goal string, count int, now time.Time) Data {
	return Data{
		Goal:  goal,
		Count: count,
		Now:   now.UTC().Format(time.RFC3339),
	}
}

// Renderer renders templates with strict missing-key behavior.
type Renderer struct {
	store *Store
}

// NewRenderer creates a prompt renderer.
func NewRenderer(store *Store) *Renderer {
	return &Renderer{store: store}
}

// Render loads and renders a prompt template with required variable checks.
func (r *Renderer) Render(name string, data Data) (string, error) {
	if r == nil || r.store == nil {
		return "", errors.New("prompt renderer is not initialized")
	}
	if err := validateRequired(name, data); err != nil {
		return "", err
	}
	raw, err := r.store.Load(name)
	if err != nil {
		return "", err
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse prompt %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render prompt %q: %w", name, err)
	}
	return buf.String(), nil
}

func validateRequired(name string, data Data) error {
	switch name {
	case GeneratePrompt:
		if data.Goal == "" {
			return fmt.Errorf("prompt %q requires Goal", name)
		}
		if data.Count <= 0 {
			return fmt.Errorf("prompt %q requires Count > 0", name)
		}
		return nil
	}
	return fmt.Errorf("unknown prompt %q", name)
}
