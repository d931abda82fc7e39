package config

import (
	"fmt"

	"github.com/nibzard/planner-go/internal/utils"
)

// ConfigSource represents where a configuration value came from.
type ConfigSource string

const (
	SourceDefault  ConfigSource = "default"
	SourceUserFile ConfigSource = "user file"
	SourceProjFile ConfigSource = "project file"
	SourceDotenv   ConfigSource = "dotenv"
	SourceEnv      ConfigSource = "environment"
	SourceFlag     ConfigSource = "flag"
)

// Default values.
const (
	DefaultPlanDir        = "."
	DefaultTaskCount      = 5
	DefaultAgent          = "claude"
	DefaultTimeoutSeconds = 600
	DefaultLogDir         = "~/.planner"
	DefaultRunLog         = true
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "text"
)

// DefaultAgentBinaries returns the default binary names for each agent type.
func DefaultAgentBinaries() map[string]string {
	return map[string]string{
		"codex":  "codex",
		"claude": "claude",
	}
}

// Config holds the full configuration for planner.
type Config struct {
	// Plans
	PlanDir   string `toml:"plan_dir"`
	TaskCount int    `toml:"task_count"`

	// Generation
	Agent          string      `toml:"agent"`
	Model          string      `toml:"model"` // overrides the selected agent's model
	TimeoutSeconds int         `toml:"timeout_seconds"`
	PromptDir      string      `toml:"prompt_dir"`
	Agents         AgentConfig `toml:"agents"`

	// Run logs
	LogDir string `toml:"log_dir"`
	RunLog bool   `toml:"run_log"`

	// Console logging
	LogLevel      string `toml:"log_level"`
	LogFormat     string `toml:"log_format"`
	LogTimestamps bool   `toml:"log_timestamps"`
	LogCaller     bool   `toml:"log_caller"`

	// Computed
	ProjectRoot string                  `toml:"-"`
	Files       []string                `toml:"-"` // config files that were read, in order
	Sources     map[string]ConfigSource `toml:"-"`
	Warnings    []string                `toml:"-"`
}

// Source returns where the named field was last set.
func (c *Config) Source(field string) ConfigSource {
	if src, ok := c.Sources[field]; ok {
		return src
	}
	return SourceDefault
}

func (c *Config) setSource(field string, source ConfigSource) {
	if c.Sources == nil {
		c.Sources = make(map[string]ConfigSource)
	}
	c.Sources[field] = source
}

func (c *Config) warnf(format string, args ...any) {
	c.Warnings = append(c.Warnings, fmt.Sprintf(format, args...))
}

// Agent holds configuration for a single agent type.
type Agent struct {
	Binary       string   `toml:"binary"`
	Model        string   `toml:"model"`
	Reasoning    string   `toml:"reasoning"`     // reasoning effort for codex (low, medium, high)
	Args         []string `toml:"args"`          // extra arguments passed to the agent binary
	PromptFormat string   `toml:"prompt_format"` // stdin or arg
	APIKey       string   `toml:"-"`
}

// AgentConfig is keyed by agent type (claude, codex, or any custom binary).
type AgentConfig map[string]Agent

// UnmarshalTOML merges agent tables field by field so a later file only
// overrides the keys it sets.
func (ac *AgentConfig) UnmarshalTOML(data any) error {
	table, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("agents config must be a table")
	}
	if *ac == nil {
		*ac = AgentConfig{}
	}
	return mergeAgentTables(*ac, table)
}

// GetAgent returns the configuration for a given agent type.
func (ac AgentConfig) GetAgent(agentType string) Agent {
	if ac == nil {
		return Agent{}
	}
	key := utils.NormalizeAgentName(agentType)
	if key == "" {
		return Agent{}
	}
	return ac[key]
}

// SetAgent sets the configuration for a given agent type.
func (ac *AgentConfig) SetAgent(agentType string, config Agent) {
	key := utils.NormalizeAgentName(agentType)
	if key == "" {
		return
	}
	if *ac == nil {
		*ac = AgentConfig{}
	}
	(*ac)[key] = config
}

// update applies fn to the named agent's settings.
func (ac *AgentConfig) update(agentType string, fn func(*Agent)) {
	agent := ac.GetAgent(agentType)
	fn(&agent)
	ac.SetAgent(agentType, agent)
}
