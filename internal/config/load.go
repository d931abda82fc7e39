package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// fileFields are the top-level TOML keys tracked for source reporting.
var fileFields = []string{
	"plan_dir",
	"task_count",
	"agent",
	"model",
	"timeout_seconds",
	"prompt_dir",
	"log_dir",
	"run_log",
	"log_level",
	"log_format",
	"log_timestamps",
	"log_caller",
}

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.planner/planner.toml or OS-specific config dir)
// 3. Project config file (planner.toml or .planner.toml in current directory)
// 4. .env file in the current directory
// 5. Environment variables
// 6. CLI flags
//
// Global flags are registered on fs and parsed from args; fs.Args holds
// the remaining command line afterwards.
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}

	// 1. Set defaults
	setDefaults(cfg)

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	cfg.ProjectRoot = wd

	// 2. User config file
	if path := findUserConfigFile(); path != "" {
		if err := loadConfigFile(cfg, path, SourceUserFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", path, err)
		}
	}

	// 3. Project config file (overrides user config)
	if path := findProjectConfigFile(wd); path != "" {
		if err := loadConfigFile(cfg, path, SourceProjFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", path, err)
		}
	}

	// 4. .env
	dotenv, err := readDotenv(filepath.Join(wd, ".env"))
	if err != nil {
		return nil, err
	}
	if len(dotenv) > 0 {
		loadFromEnv(cfg, func(key string) (string, bool) {
			if _, set := os.LookupEnv(key); set {
				return "", false
			}
			v, ok := dotenv[key]
			return v, ok
		}, SourceDotenv)
	}

	// 5. Environment
	loadFromEnv(cfg, os.LookupEnv, SourceEnv)

	// 6. Flags
	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	finalizeConfig(cfg)
	return cfg, nil
}

// setDefaults applies default values to the config.
func setDefaults(cfg *Config) {
	cfg.PlanDir = DefaultPlanDir
	cfg.TaskCount = DefaultTaskCount
	cfg.Agent = DefaultAgent
	cfg.TimeoutSeconds = DefaultTimeoutSeconds
	cfg.LogDir = DefaultLogDir
	cfg.RunLog = DefaultRunLog
	cfg.LogLevel = DefaultLogLevel
	cfg.LogFormat = DefaultLogFormat

	for name, binary := range DefaultAgentBinaries() {
		cfg.Agents.SetAgent(name, Agent{Binary: binary})
	}
}

// loadConfigFile decodes a TOML file over cfg and records which keys it set.
func loadConfigFile(cfg *Config, path string, source ConfigSource) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return err
	}
	cfg.Files = append(cfg.Files, path)

	for _, field := range fileFields {
		if md.IsDefined(field) {
			cfg.setSource(field, source)
		}
	}
	for _, key := range md.Keys() {
		if len(key) == 3 && key[0] == "agents" {
			cfg.setSource(strings.Join(key, "."), source)
		}
	}
	for _, key := range md.Undecoded() {
		if len(key) > 0 && key[0] == "agents" {
			continue
		}
		cfg.warnf("%s: unknown key %q", filepath.Base(path), key.String())
	}
	return nil
}

// readDotenv reads KEY=VALUE pairs from path. A missing file is not an error.
func readDotenv(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return values, nil
}

// finalizeConfig computes derived values.
func finalizeConfig(cfg *Config) {
	for _, dir := range []*string{&cfg.PlanDir, &cfg.LogDir, &cfg.PromptDir} {
		*dir = expandPath(*dir)
	}
	cfg.Agent = strings.ToLower(strings.TrimSpace(cfg.Agent))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
}

// expandPath expands $VAR references and a leading ~ in a directory
// setting. An unset variable expands to nothing.
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, "~"+string(filepath.Separator)) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
