package generator

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"
	"time"

	"github.com/nibzard/planner-go/internal/prompts"
)

// Factory creates a Generator from a Config.
type Factory func(cfg Config) (Generator, error)

// Registry holds registered agent types and their factories.
var Registry = map[AgentType]Factory{}

// RegisterAgent registers an agent type with its factory.
func RegisterAgent(agentType AgentType, factory Factory) {
	Registry[agentType] = factory
}

func init() {
	RegisterAgent(AgentTypeClaude, func(cfg Config) (Generator, error) {
		return newAgentGenerator(claudeSpec, normalizeConfig(AgentTypeClaude, cfg)), nil
	})
	RegisterAgent(AgentTypeCodex, func(cfg Config) (Generator, error) {
		return newAgentGenerator(codexSpec, normalizeConfig(AgentTypeCodex, cfg)), nil
	})
}

// IsAgentTypeRegistered reports whether agentType has a built-in factory.
func IsAgentTypeRegistered(agentType string) bool {
	_, ok := Registry[AgentType(agentType)]
	return ok
}

// RegisteredAgentTypes returns the registered agent types in sorted order.
func RegisteredAgentTypes() []string {
	types := make([]string, 0, len(Registry))
	for t := range Registry {
		types = append(types, string(t))
	}
	sort.Strings(types)
	return types
}

// New creates a generator for agentType. Unknown types run Binary (or the
// type name) as a generic agent.
func New(agentType string, cfg Config) (Generator, error) {
	name := AgentType(strings.ToLower(strings.TrimSpace(agentType)))
	if name == "" {
		return nil, errors.New("agent type is empty")
	}
	if factory, ok := Registry[name]; ok {
		return factory(cfg)
	}
	return newAgentGenerator(genericSpec(string(name)), normalizeConfig(name, cfg)), nil
}

var claudeSpec = agentSpec{
	name:      string(AgentTypeClaude),
	apiKeyEnv: "ANTHROPIC_API_KEY",
	buildArgs: func(cfg Config, prompt string) []string {
		args := []string{"--output-format", "text"}
		if cfg.Model != "" {
			args = append(args, "--model", cfg.Model)
		}
		args = append(args, cfg.Args...)
		return append(args, "-p", prompt)
	},
}

var codexSpec = agentSpec{
	name:      string(AgentTypeCodex),
	apiKeyEnv: "OPENAI_API_KEY",
	buildArgs: func(cfg Config, _ string) []string {
		args := []string{"exec"}
		if cfg.Model != "" {
			args = append(args, "-m", cfg.Model)
		}
		if cfg.Reasoning != "" {
			args = append(args, "-c", "model_reasoning_effort="+cfg.Reasoning)
		}
		args = append(args, cfg.Args...)
		return append(args, "-")
	},
	setupStdin: stdinPrompt,
}

func genericSpec(name string) agentSpec {
	return agentSpec{
		name: name,
		buildArgs: func(cfg Config, prompt string) []string {
			args := append([]string(nil), cfg.Args...)
			if cfg.PromptFormat == PromptFormatArg {
				args = append(args, prompt)
			}
			return args
		},
		setupStdin: func(cmd *exec.Cmd, cfg Config, prompt string) {
			if cfg.PromptFormat != PromptFormatArg {
				stdinPrompt(cmd, cfg, prompt)
			}
		},
	}
}

func stdinPrompt(cmd *exec.Cmd, _ Config, prompt string) {
	cmd.Stdin = strings.NewReader(ensurePromptTerminator(prompt))
}

func normalizeConfig(agentType AgentType, cfg Config) Config {
	if cfg.Binary == "" {
		cfg.Binary = string(agentType)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.PromptFormat == "" {
		cfg.PromptFormat = PromptFormatStdin
	}
	return cfg
}

// agentGenerator renders the prompt, runs an agent and parses its reply.
type agentGenerator struct {
	spec agentSpec
	cfg  Config
}

func newAgentGenerator(spec agentSpec, cfg Config) *agentGenerator {
	return &agentGenerator{spec: spec, cfg: cfg}
}

// Generate asks the agent for count subtasks of goal. A count below one
// requests DefaultTaskCount.
func (g *agentGenerator) Generate(ctx context.Context, goal string, count int) ([]string, error) {
	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, &GenerationError{Agent: g.spec.name, Err: errors.New("goal is empty")}
	}
	if count < 1 {
		count = DefaultTaskCount
	}

	renderer := g.cfg.Prompt
	if renderer == nil {
		renderer = prompts.NewRenderer(prompts.NewStore(""))
	}
	prompt, err := renderer.Render(prompts.GeneratePrompt, prompts.NewData(goal, count, time.Now()))
	if err != nil {
		return nil, &GenerationError{Agent: g.spec.name, Err: err}
	}

	logWriter := normalizeLogWriter(g.cfg.LogWriter)
	out, err := runAgent(ctx, g.cfg, prompt, logWriter, g.spec)
	if err != nil {
		return nil, &GenerationError{Agent: g.spec.name, Err: err}
	}

	tasks, err := parseTasks(out, g.cfg.Schema, logWriter)
	if err != nil {
		_ = logWriter.Write(LogEvent{
			Type:      "error",
			Timestamp: time.Now().UTC(),
			Agent:     g.spec.name,
			Content:   err.Error(),
		})
		return nil, &GenerationError{Agent: g.spec.name, Err: err}
	}
	_ = logWriter.Write(LogEvent{
		Type:      "tasks",
		Timestamp: time.Now().UTC(),
		Agent:     g.spec.name,
		Tasks:     tasks,
	})
	return tasks, nil
}

// String names the agent.
func (g *agentGenerator) String() string {
	return fmt.Sprintf("%s (%s)", g.spec.name, g.cfg.Binary)
}
