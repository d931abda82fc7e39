// Package cmd implements the CLI command structure for planner.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/nibzard/planner-go/internal/config"
	"github.com/nibzard/planner-go/internal/generator"
	"github.com/nibzard/planner-go/internal/logging"
	"github.com/nibzard/planner-go/internal/plan"
	"github.com/nibzard/planner-go/internal/ui"
	"github.com/nibzard/planner-go/internal/utils"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Output streams and clock, replaced in tests.
var (
	stdout io.Writer = os.Stdout
	stderr io.Writer = os.Stderr
	now              = time.Now
)

// Run executes the planner CLI.
func Run(ctx context.Context, args []string) error {
	// Create a flag set for global options
	fs := flag.NewFlagSet("planner", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		printUsage(fs, stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	// Global flags
	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	remainingArgs := fs.Args()
	if len(remainingArgs) == 0 {
		printUsage(fs, stderr)
		return errors.New("no command given")
	}
	subcommand := remainingArgs[0]
	remainingArgs = remainingArgs[1:]

	logger := newLogger(cfg)
	for _, warning := range cfg.Warnings {
		logger.Warn(warning)
	}

	switch subcommand {
	case "create":
		return createCommand(ctx, cfg, logger, remainingArgs)
	case "update":
		return updateCommand(cfg, logger, remainingArgs)
	case "show":
		return showCommand(cfg, remainingArgs)
	case "ls":
		return lsCommand(cfg, remainingArgs)
	case "tui":
		return tuiCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(cfg, remainingArgs)
	case "config":
		return configCommand(cfg, remainingArgs)
	case "logs":
		return logsCommand(ctx, cfg, remainingArgs)
	case "version":
		return versionCommand()
	case "help":
		printUsage(fs, stdout)
		return nil
	default:
		fmt.Fprintf(stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func newLogger(cfg *config.Config) *log.Logger {
	return logging.NewFromConfig(stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps, cfg.LogCaller)
}

// createCommand generates tasks for a goal and writes a new plan file.
func createCommand(ctx context.Context, cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("planner create", flag.ContinueOnError)
	fs.SetOutput(stderr)
	update := fs.String("update", "", "Comma-separated task indices to mark done after creating")
	dryRun := fs.Bool("dry-run", false, "Print the plan instead of writing it")
	fromFile := fs.String("from-file", "", "Read tasks from a file instead of running an agent")

	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}

	goal := strings.TrimSpace(strings.Join(positional, " "))
	if goal == "" {
		return errors.New("create requires a goal")
	}
	indices, err := parseIndices(*update)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	gen, closeRunLog, err := newGenerator(cfg, logger, *fromFile)
	if err != nil {
		return err
	}
	defer closeRunLog()

	fmt.Fprintf(stdout, "Running planning agent for task: \"%s\"\n", goal)
	tasks, err := gen.Generate(ctx, goal, cfg.TaskCount)
	if err != nil {
		return fmt.Errorf("generating tasks: %w", err)
	}
	if len(tasks) != cfg.TaskCount {
		logger.Debug("Task count differs from request", "requested", cfg.TaskCount, "got", len(tasks))
	}

	renderer := plan.Renderer{Attribution: attribution(cfg.Agent, *fromFile)}
	if *dryRun {
		rendered, err := renderer.Build(goal, tasks, now())
		if err != nil {
			return err
		}
		text := rendered.Text
		if len(indices) > 0 {
			if text, err = plan.Apply(text, indices); err != nil {
				return err
			}
		}
		fmt.Fprint(stdout, text)
		return nil
	}

	store := plan.NewStore(cfg.PlanDir)
	path, err := store.Create(goal, tasks, now(), renderer)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Planning complete! Markdown file created: %s\n", path)

	if len(indices) == 0 {
		return nil
	}
	return applyIndices(store, logger, path, indices)
}

// newGenerator builds the task generator and its log writers. The returned
// func closes the run log, if one was opened.
func newGenerator(cfg *config.Config, logger *log.Logger, fromFile string) (generator.Generator, func(), error) {
	noop := func() {}
	if fromFile != "" {
		return generator.FileGenerator{Path: fromFile}, noop, nil
	}

	gc, err := cfg.GeneratorConfig()
	if err != nil {
		return nil, noop, fmt.Errorf("loading prompts: %w", err)
	}

	writers := []generator.LogWriter{generator.NewConsoleLogWriter(logger)}
	closeFn := noop
	if cfg.RunLog {
		runLog, err := logging.NewRunLogger(cfg.LogDir, cfg.ProjectRoot, "create")
		if err != nil {
			logger.Warn("Run log disabled", "err", err)
		} else {
			logger.Debug("Run log", "path", runLog.LogPath)
			writers = append(writers, generator.NewIOStreamLogWriter(runLog.Writer()))
			closeFn = func() {
				if err := runLog.Close(); err != nil {
					logger.Warn("Closing run log", "err", err)
				}
			}
		}
	}
	gc.LogWriter = generator.NewMultiLogWriter(writers...)

	gen, err := generator.New(cfg.Agent, gc)
	if err != nil {
		closeFn()
		return nil, noop, err
	}
	return gen, closeFn, nil
}

// attribution names the task source in the plan's Notes section.
func attribution(agent, fromFile string) string {
	switch {
	case fromFile != "":
		return "planner"
	case agent == string(generator.AgentTypeClaude):
		return plan.DefaultAttribution
	case agent == string(generator.AgentTypeCodex):
		return "Codex"
	default:
		return agent
	}
}

// updateCommand marks tasks of an existing plan as completed.
func updateCommand(cfg *config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("planner update", flag.ContinueOnError)
	fs.SetOutput(stderr)
	done := fs.String("done", "", "Comma-separated task indices to mark done")

	remaining, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(remaining) == 0 {
		return errors.New("please provide a file path for the plan to update")
	}
	indices, err := parseIndices(*done)
	if err != nil {
		return err
	}
	for _, arg := range remaining[1:] {
		more, err := parseIndices(arg)
		if err != nil {
			return err
		}
		indices = append(indices, more...)
	}

	store := plan.NewStore(cfg.PlanDir)
	path := resolvePlanPath(cfg, remaining[0])
	return applyIndices(store, logger, path, indices)
}

func applyIndices(store *plan.Store, logger *log.Logger, path string, indices []int) error {
	fmt.Fprintf(stdout, "Updating plan: %s\n", path)
	if len(indices) > 0 {
		fmt.Fprintf(stdout, "Marking tasks %s as completed\n", joinOneBased(indices))
	}

	u, err := store.Update(path, indices)
	if err != nil {
		return err
	}
	if len(u.Ignored) > 0 {
		logger.Warn("Ignoring out-of-range task indices", "indices", u.Ignored, "tasks", u.Progress.Total)
	}
	if !u.ProgressRewritten {
		logger.Warn("Plan has no progress section; progress line not written", "path", path)
	}
	fmt.Fprintf(stdout, "Plan updated! %s\n", u.Progress)
	return nil
}

// showCommand prints the parsed view of a plan.
func showCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("planner show", flag.ContinueOnError)
	fs.SetOutput(stderr)
	format := fs.String("format", "text", "Output format (text, json, yaml)")

	remaining, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(remaining) != 1 {
		return errors.New("show requires exactly one plan file")
	}

	doc, err := plan.NewStore(cfg.PlanDir).Load(resolvePlanPath(cfg, remaining[0]))
	if err != nil {
		return err
	}

	switch strings.ToLower(*format) {
	case "text":
		printDocument(stdout, doc)
		return nil
	case "json":
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case "yaml", "yml":
		enc := yaml.NewEncoder(stdout)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", *format)
	}
}

func printDocument(w io.Writer, doc *plan.Document) {
	fmt.Fprintln(w, doc.Title)
	fmt.Fprintln(w)
	if doc.CreatedDate != "" {
		fmt.Fprintf(w, "Created:  %s\n", doc.CreatedDate)
	}
	fmt.Fprintf(w, "Progress: %s\n", doc.Progress)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Tasks:")
	for i, task := range doc.Tasks {
		mark := " "
		if task.Done {
			mark = "x"
		}
		fmt.Fprintf(w, "  %2d. [%s] %s\n", i, mark, task.Description)
	}
}

// lsCommand lists plan files in the plan directory.
func lsCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("planner ls", flag.ContinueOnError)
	fs.SetOutput(stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	store := plan.NewStore(cfg.PlanDir)
	entries, err := store.List()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(stdout, "No plans found in %s.\n", store.Dir())
		return nil
	}

	for _, e := range entries {
		name := filepath.Base(e.Path)
		if e.Err != nil {
			fmt.Fprintf(stdout, "  ❌ %s: %v\n", name, e.Err)
			continue
		}
		icon := "📝"
		if e.Progress.Total > 0 && e.Progress.Completed == e.Progress.Total {
			icon = "✅"
		}
		fmt.Fprintf(stdout, "  %s %3d%%  %-40s %s\n", icon, e.Progress.Percent, name, e.Goal)
	}
	return nil
}

// tuiCommand opens the interactive checklist.
func tuiCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("planner tui", flag.ContinueOnError)
	fs.SetOutput(stderr)
	remaining, err := parseInterspersed(fs, args)
	if err != nil {
		return err
	}
	if len(remaining) != 1 {
		return errors.New("tui requires exactly one plan file")
	}
	return ui.RunTUI(ctx, plan.NewStore(cfg.PlanDir), resolvePlanPath(cfg, remaining[0]))
}

// configCommand prints the effective configuration and where each value
// came from.
func configCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("planner config", flag.ContinueOnError)
	fs.SetOutput(stderr)
	example := fs.Bool("example", false, "Print an example config file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *example {
		fmt.Fprint(stdout, config.ExampleConfig())
		return nil
	}

	if len(cfg.Files) == 0 {
		fmt.Fprintln(stdout, "Config files: (none)")
	} else {
		fmt.Fprintln(stdout, "Config files:")
		for _, f := range cfg.Files {
			fmt.Fprintf(stdout, "  %s\n", f)
		}
	}
	fmt.Fprintln(stdout)

	rows := []struct {
		field string
		value any
	}{
		{"plan_dir", cfg.PlanDir},
		{"task_count", cfg.TaskCount},
		{"agent", cfg.Agent},
		{"model", cfg.Model},
		{"timeout_seconds", cfg.TimeoutSeconds},
		{"prompt_dir", cfg.PromptDir},
		{"log_dir", cfg.LogDir},
		{"run_log", cfg.RunLog},
		{"log_level", cfg.LogLevel},
		{"log_format", cfg.LogFormat},
		{"log_timestamps", cfg.LogTimestamps},
		{"log_caller", cfg.LogCaller},
	}
	for _, row := range rows {
		fmt.Fprintf(stdout, "%-16s = %-30v (%s)\n", row.field, row.value, cfg.Source(row.field))
	}

	names := make([]string, 0, len(cfg.Agents))
	for name := range cfg.Agents {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		agent := cfg.Agents[name]
		prefix := "agents." + name + "."
		fmt.Fprintln(stdout)
		fmt.Fprintf(stdout, "[agents.%s]\n", name)
		fmt.Fprintf(stdout, "%-16s = %-30s (%s)\n", "binary", agent.Binary, cfg.Source(prefix+"binary"))
		if agent.Model != "" {
			fmt.Fprintf(stdout, "%-16s = %-30s (%s)\n", "model", agent.Model, cfg.Source(prefix+"model"))
		}
		if agent.Reasoning != "" {
			fmt.Fprintf(stdout, "%-16s = %-30s (%s)\n", "reasoning", agent.Reasoning, cfg.Source(prefix+"reasoning"))
		}
		if len(agent.Args) > 0 {
			fmt.Fprintf(stdout, "%-16s = %-30s (%s)\n", "args", strings.Join(agent.Args, ","), cfg.Source(prefix+"args"))
		}
		if agent.PromptFormat != "" {
			fmt.Fprintf(stdout, "%-16s = %-30s (%s)\n", "prompt_format", agent.PromptFormat, cfg.Source(prefix+"prompt_format"))
		}
		if agent.APIKey != "" {
			fmt.Fprintf(stdout, "%-16s = %-30s (%s)\n", "api_key", "(set)", cfg.Source(prefix+"api_key"))
		}
	}
	return nil
}

// logsCommand prints the latest run log or lists all runs.
func logsCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("planner logs", flag.ContinueOnError)
	fs.SetOutput(stderr)
	follow := fs.Bool("f", false, "Follow the log (like tail -f)")
	fs.BoolVar(follow, "follow", false, "Follow the log (like tail -f)")
	n := fs.Int("n", 0, "Number of lines to show (0 = all)")
	list := fs.Bool("list", false, "List recorded runs")

	if err := fs.Parse(args); err != nil {
		return err
	}

	logDir, err := logging.FindLogDir(cfg.LogDir, cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("finding log directory: %w", err)
	}

	if *list {
		runs, err := logging.FindLogRuns(logDir)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(stdout, "No log files found.")
			return nil
		}
		for _, run := range runs {
			fmt.Fprintf(stdout, "%s  %-8s %8d bytes  %s\n", run.ModTime.Format(time.DateTime), run.Label, run.Size, run.Path)
		}
		return nil
	}

	logPath, err := logging.FindLatestLog(logDir)
	if err != nil {
		return fmt.Errorf("finding latest log: %w", err)
	}
	if logPath == "" {
		fmt.Fprintln(stdout, "No log files found.")
		return nil
	}

	fmt.Fprintf(stdout, "Tailing: %s\n", logPath)
	if *follow {
		fmt.Fprintln(stdout, "(Ctrl+C to stop)")
	}
	fmt.Fprintln(stdout)

	return logging.TailLog(ctx, stdout, logPath, *n, *follow)
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Fprintf(stdout, "planner version %s\n", Version)
	return nil
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Planner - Break a goal into a Markdown task checklist")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  planner [options] <command> [command options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  create <goal...>        Generate tasks and write plan-<goal>.md")
	fmt.Fprintln(w, "  update <file> [index..] Mark tasks completed and recompute progress")
	fmt.Fprintln(w, "  show <file>             Print the parsed plan")
	fmt.Fprintln(w, "  ls                      List plans in the plan directory")
	fmt.Fprintln(w, "  tui <file>              Check off tasks interactively")
	fmt.Fprintln(w, "  doctor                  Check agent, config, and prompts")
	fmt.Fprintln(w, "  config                  Show the effective configuration")
	fmt.Fprintln(w, "  logs                    Show the latest run log")
	fmt.Fprintln(w, "  version                 Show version information")
	fmt.Fprintln(w, "  help                    Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Create Options:")
	fmt.Fprintln(w, "  -update string")
	fmt.Fprintln(w, "        Comma-separated task indices to mark done after creating")
	fmt.Fprintln(w, "  -dry-run")
	fmt.Fprintln(w, "        Print the plan instead of writing it")
	fmt.Fprintln(w, "  -from-file string")
	fmt.Fprintln(w, "        Read tasks from a file instead of running an agent")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Update Options:")
	fmt.Fprintln(w, "  -done string")
	fmt.Fprintln(w, "        Comma-separated task indices to mark done (0-based)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Show Options:")
	fmt.Fprintln(w, "  -format string")
	fmt.Fprintln(w, "        Output format: text, json or yaml (default \"text\")")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Logs Options:")
	fmt.Fprintln(w, "  -f, --follow")
	fmt.Fprintln(w, "        Follow the log (like tail -f)")
	fmt.Fprintln(w, "  -n int")
	fmt.Fprintln(w, "        Number of lines to show (0 = all)")
	fmt.Fprintln(w, "  -list")
	fmt.Fprintln(w, "        List recorded runs")
}

// parseInterspersed parses fs flags wherever they appear in args and
// returns the positional arguments in order. Everything after "--" is
// positional.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			return append(positional, rest...), nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// parseIndices parses a comma-separated list of task indices.
func parseIndices(s string) ([]int, error) {
	var indices []int
	for _, part := range utils.SplitAndTrim(s, ",") {
		i, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid task index %q", part)
		}
		indices = append(indices, i)
	}
	return indices, nil
}

// joinOneBased renders indices the way people count tasks.
func joinOneBased(indices []int) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = strconv.Itoa(idx + 1)
	}
	return strings.Join(parts, ", ")
}

// resolvePlanPath accepts a path as given, or a bare file name relative to
// the plan directory when it does not exist as given.
func resolvePlanPath(cfg *config.Config, arg string) string {
	if _, err := os.Stat(arg); err == nil || filepath.IsAbs(arg) {
		return arg
	}
	candidate := filepath.Join(cfg.PlanDir, arg)
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return arg
}
