package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/nibzard/planner-go/internal/utils"
)

// lookupFunc reads one variable. os.LookupEnv satisfies it.
type lookupFunc func(key string) (string, bool)

// loadFromEnv overrides config from environment-style variables.
func loadFromEnv(cfg *Config, lookup lookupFunc, source ConfigSource) {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}
	setString := func(key, field string, dst *string) {
		if v, ok := get(key); ok {
			*dst = v
			cfg.setSource(field, source)
		}
	}
	setInt := func(key, field string, dst *int) {
		v, ok := get(key)
		if !ok {
			return
		}
		i, err := strconv.Atoi(v)
		if err != nil {
			cfg.warnf("ignoring %s=%q: not an integer", key, v)
			return
		}
		*dst = i
		cfg.setSource(field, source)
	}
	setBool := func(key, field string, dst *bool) {
		if v, ok := get(key); ok {
			*dst = utils.BoolFromString(v)
			cfg.setSource(field, source)
		}
	}
	setAgent := func(key, agent, field string, apply func(*Agent, string)) {
		if v, ok := get(key); ok {
			cfg.Agents.update(agent, func(a *Agent) { apply(a, v) })
			cfg.setSource("agents."+agent+"."+field, source)
		}
	}

	setString("PLANNER_PLAN_DIR", "plan_dir", &cfg.PlanDir)
	setInt("TASK_COUNT", "task_count", &cfg.TaskCount)
	setInt("PLANNER_TASK_COUNT", "task_count", &cfg.TaskCount)
	setString("PLANNER_AGENT", "agent", &cfg.Agent)
	setString("MODEL_NAME", "model", &cfg.Model)
	setString("PLANNER_MODEL", "model", &cfg.Model)
	if v, ok := get("PLANNER_TIMEOUT"); ok {
		if secs, ok := parseTimeoutSeconds(v); ok {
			cfg.TimeoutSeconds = secs
			cfg.setSource("timeout_seconds", source)
		} else {
			cfg.warnf("ignoring PLANNER_TIMEOUT=%q: not a duration", v)
		}
	}
	setString("PLANNER_PROMPT_DIR", "prompt_dir", &cfg.PromptDir)
	setString("PLANNER_LOG_DIR", "log_dir", &cfg.LogDir)
	setBool("PLANNER_RUN_LOG", "run_log", &cfg.RunLog)

	setString("PLANNER_LOG_LEVEL", "log_level", &cfg.LogLevel)
	setString("PLANNER_LOG_FORMAT", "log_format", &cfg.LogFormat)
	setBool("PLANNER_LOG_TIMESTAMPS", "log_timestamps", &cfg.LogTimestamps)
	setBool("PLANNER_LOG_CALLER", "log_caller", &cfg.LogCaller)

	binary := func(a *Agent, v string) { a.Binary = v }
	model := func(a *Agent, v string) { a.Model = v }
	args := func(a *Agent, v string) { a.Args = utils.SplitAndTrim(v, ",") }
	reasoning := func(a *Agent, v string) { a.Reasoning = v }
	apiKey := func(a *Agent, v string) { a.APIKey = v }

	setAgent("CLAUDE_BIN", "claude", "binary", binary)
	setAgent("CLAUDE_MODEL", "claude", "model", model)
	setAgent("CLAUDE_ARGS", "claude", "args", args)
	setAgent("ANTHROPIC_API_KEY", "claude", "api_key", apiKey)

	setAgent("CODEX_BIN", "codex", "binary", binary)
	setAgent("CODEX_MODEL", "codex", "model", model)
	setAgent("CODEX_ARGS", "codex", "args", args)
	setAgent("CODEX_REASONING", "codex", "reasoning", reasoning)
	setAgent("CODEX_REASONING_EFFORT", "codex", "reasoning", reasoning)
	setAgent("OPENAI_API_KEY", "codex", "api_key", apiKey)
}

// parseTimeoutSeconds accepts plain seconds or a Go duration such as "2m".
func parseTimeoutSeconds(v string) (int, bool) {
	if secs, err := strconv.Atoi(v); err == nil {
		return secs, true
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return int(d / time.Second), true
}
