package config

import (
	"fmt"
	"strings"

	"github.com/nibzard/planner-go/internal/utils"
)

// mergeAgentTables merges [agents.<name>] tables into target.
func mergeAgentTables(target AgentConfig, table map[string]any) error {
	for key, value := range table {
		raw, ok := value.(map[string]any)
		if !ok {
			return fmt.Errorf("agents.%s must be a table", key)
		}
		name := utils.NormalizeAgentName(key)
		agent, err := decodeAgentConfig(target[name], raw)
		if err != nil {
			return fmt.Errorf("agent %s: %w", key, err)
		}
		target[name] = agent
	}
	return nil
}

// decodeAgentConfig overlays the keys present in raw onto agent.
func decodeAgentConfig(agent Agent, raw map[string]any) (Agent, error) {
	str := func(key string, dst *string) error {
		v, ok := raw[key]
		if !ok {
			return nil
		}
		s, ok := v.(string)
		if !ok {
			return fmt.Errorf("%s must be a string", key)
		}
		*dst = s
		return nil
	}
	for key, dst := range map[string]*string{
		"binary":        &agent.Binary,
		"model":         &agent.Model,
		"reasoning":     &agent.Reasoning,
		"prompt_format": &agent.PromptFormat,
	} {
		if err := str(key, dst); err != nil {
			return agent, err
		}
	}
	if v, ok := raw["args"]; ok {
		args, err := parseArgsValue(v)
		if err != nil {
			return agent, err
		}
		agent.Args = args
	}
	return agent, nil
}

// parseArgsValue parses the args field which can be a string array or comma-separated string.
func parseArgsValue(v any) ([]string, error) {
	switch val := v.(type) {
	case []string:
		return filterEmptyArgs(val), nil
	case []any:
		args := make([]string, 0, len(val))
		for _, item := range val {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("args must be a string array")
			}
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				args = append(args, trimmed)
			}
		}
		return args, nil
	case string:
		return utils.SplitAndTrim(val, ","), nil
	default:
		return nil, fmt.Errorf("args must be a string or string array")
	}
}

func filterEmptyArgs(args []string) []string {
	filtered := make([]string, 0, len(args))
	for _, arg := range args {
		if trimmed := strings.TrimSpace(arg); trimmed != "" {
			filtered = append(filtered, trimmed)
		}
	}
	return filtered
}
