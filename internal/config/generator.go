package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nibzard/planner-go/internal/generator"
	"github.com/nibzard/planner-go/internal/prompts"
)

var (
	validLogLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true, "fatal": true}
	validLogFormats = map[string]bool{"text": true, "json": true, "logfmt": true}
)

// Validate reports configuration values that cannot be used.
func (c *Config) Validate() error {
	var errs []error
	if c.TaskCount < 1 {
		errs = append(errs, fmt.Errorf("task_count must be at least 1, got %d", c.TaskCount))
	}
	if c.Agent == "" {
		errs = append(errs, errors.New("agent must not be empty"))
	}
	if !validLogLevels[c.LogLevel] {
		errs = append(errs, fmt.Errorf("unknown log_level %q", c.LogLevel))
	}
	if !validLogFormats[c.LogFormat] {
		errs = append(errs, fmt.Errorf("unknown log_format %q (want text, json or logfmt)", c.LogFormat))
	}
	for name, agent := range c.Agents {
		switch generator.PromptFormat(agent.PromptFormat) {
		case "", generator.PromptFormatStdin, generator.PromptFormatArg:
		default:
			errs = append(errs, fmt.Errorf("agents.%s: unknown prompt_format %q", name, agent.PromptFormat))
		}
	}
	return errors.Join(errs...)
}

// Timeout returns the generation timeout. Zero or negative seconds
// disable the limit and yield a negative duration.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return -1
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// SelectedAgent returns the resolved settings of the configured agent.
func (c *Config) SelectedAgent() Agent {
	agent := c.Agents.GetAgent(c.Agent)
	if agent.Binary == "" {
		if binary, ok := DefaultAgentBinaries()[c.Agent]; ok {
			agent.Binary = binary
		} else {
			agent.Binary = c.Agent
		}
	}
	if c.Model != "" {
		agent.Model = c.Model
	}
	return agent
}

// PromptStore returns the prompt store for the configured prompt dir.
func (c *Config) PromptStore() *prompts.Store {
	return prompts.NewStore(c.PromptDir)
}

// GeneratorConfig builds the generator settings for the selected agent.
// The caller attaches a LogWriter.
func (c *Config) GeneratorConfig() (generator.Config, error) {
	agent := c.SelectedAgent()
	store := c.PromptStore()

	gc := generator.Config{
		Binary:       agent.Binary,
		Model:        agent.Model,
		Reasoning:    agent.Reasoning,
		Args:         append([]string(nil), agent.Args...),
		PromptFormat: generator.PromptFormat(strings.ToLower(agent.PromptFormat)),
		APIKey:       agent.APIKey,
		Timeout:      c.Timeout(),
		WorkDir:      c.ProjectRoot,
		Prompt:       prompts.NewRenderer(store),
	}
	if store.Source(prompts.TaskSchema) != "bundled" {
		schema, err := store.Load(prompts.TaskSchema)
		if err != nil {
			return generator.Config{}, err
		}
		gc.Schema = []byte(schema)
	}
	return gc, nil
}
