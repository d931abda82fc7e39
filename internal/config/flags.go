package config

import (
	"flag"
	"fmt"
)

// flagFields maps global flag names to config field names.
var flagFields = map[string]string{
	"plan-dir":       "plan_dir",
	"task-count":     "task_count",
	"agent":          "agent",
	"model":          "model",
	"timeout":        "timeout_seconds",
	"prompt-dir":     "prompt_dir",
	"log-dir":        "log_dir",
	"run-log":        "run_log",
	"log-level":      "log_level",
	"log-format":     "log_format",
	"log-timestamps": "log_timestamps",
	"log-caller":     "log_caller",
}

// parseFlags defines global flags on fs, seeded with the values loaded so
// far, and parses args.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	if fs == nil {
		fs = flag.NewFlagSet("planner", flag.ContinueOnError)
	}

	fs.StringVar(&cfg.PlanDir, "plan-dir", cfg.PlanDir, "Directory for plan files")
	fs.IntVar(&cfg.TaskCount, "task-count", cfg.TaskCount, "Number of subtasks to request")
	fs.StringVar(&cfg.Agent, "agent", cfg.Agent, "Task generator agent (claude, codex, or a binary name)")
	fs.StringVar(&cfg.Model, "model", cfg.Model, "Model for the selected agent")
	fs.Func("timeout", fmt.Sprintf("Generation timeout in seconds or as a duration (default %d)", cfg.TimeoutSeconds), func(v string) error {
		secs, ok := parseTimeoutSeconds(v)
		if !ok {
			return fmt.Errorf("invalid timeout %q", v)
		}
		cfg.TimeoutSeconds = secs
		return nil
	})
	fs.StringVar(&cfg.PromptDir, "prompt-dir", cfg.PromptDir, "Directory with prompt overrides")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Run log directory")
	fs.BoolVar(&cfg.RunLog, "run-log", cfg.RunLog, "Record generator runs as JSONL")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (text, json, logfmt)")
	fs.BoolVar(&cfg.LogTimestamps, "log-timestamps", cfg.LogTimestamps, "Show timestamps in logs")
	fs.BoolVar(&cfg.LogCaller, "log-caller", cfg.LogCaller, "Show caller location in logs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	fs.Visit(func(f *flag.Flag) {
		if field, ok := flagFields[f.Name]; ok {
			cfg.setSource(field, SourceFlag)
		}
	})
	return nil
}
