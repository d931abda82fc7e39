package generator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nibzard/planner-go/internal/prompts"
)

// AgentType names a task generator backend.
type AgentType string

const (
	AgentTypeClaude AgentType = "claude"
	AgentTypeCodex  AgentType = "codex"
)

// PromptFormat controls how a generic agent receives the prompt.
type PromptFormat string

const (
	PromptFormatStdin PromptFormat = "stdin"
	PromptFormatArg   PromptFormat = "arg"
)

const (
	// DefaultTimeout bounds a single generation run.
	DefaultTimeout = 10 * time.Minute

	// DefaultTaskCount is the number of subtasks requested when none is given.
	DefaultTaskCount = 5
)

// ErrNoContent indicates the agent replied without any usable task.
var ErrNoContent = errors.New("agent returned no tasks")

// Generator produces an ordered list of subtasks for a goal.
type Generator interface {
	Generate(ctx context.Context, goal string, count int) ([]string, error)
}

// Config configures a generator run. A zero Timeout uses DefaultTimeout and
// a negative one disables the limit.
type Config struct {
	Binary       string
	Model        string
	Reasoning    string
	Args         []string
	PromptFormat PromptFormat
	APIKey       string
	Timeout      time.Duration
	WorkDir      string

	// Prompt renders the generation prompt. Nil uses the bundled template.
	Prompt *prompts.Renderer
	// Schema overrides the bundled subtask JSON Schema.
	Schema []byte
	// LogWriter receives run events. Nil discards them.
	LogWriter LogWriter
}

// GenerationError reports a failed generation. No plan should be written
// when one is returned.
type GenerationError struct {
	Agent string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Agent == "" {
		return fmt.Sprintf("generate tasks: %v", e.Err)
	}
	return fmt.Sprintf("generate tasks with %s: %v", e.Agent, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
