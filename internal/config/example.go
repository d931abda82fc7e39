package config

// ExampleConfig returns an example configuration showing all available options.
func ExampleConfig() string {
	return `# Planner configuration file
# Values can be overridden by .env, environment variables or CLI flags

# Directory where plan-<goal>.md files are written
plan_dir = "."

# Number of subtasks to request from the agent
task_count = 5

# Task generator: claude, codex, or the name of any configured agent
agent = "claude"

# Model override for the selected agent (MODEL_NAME also sets this)
# model = "claude-3-5-sonnet-latest"

# Generation timeout in seconds (0 disables the limit)
timeout_seconds = 600

# Directory holding generate.txt / tasks.schema.json overrides
# prompt_dir = "~/.planner/prompts"

# Run logs (directories support ~ and $VAR expansion)
log_dir = "~/.planner"
run_log = true

# Console logging
log_level = "info"
log_format = "text"
log_timestamps = false
log_caller = false

[agents.claude]
binary = "claude"
model = ""

[agents.codex]
binary = "codex"
model = ""
# reasoning = "medium"

# Any other command line tool can generate tasks
# [agents.ollama]
# binary = "ollama"
# args = ["run", "llama3"]
# prompt_format = "stdin"
`
}
