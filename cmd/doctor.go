package cmd

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/nibzard/planner-go/internal/config"
	"github.com/nibzard/planner-go/internal/generator"
	"github.com/nibzard/planner-go/internal/logging"
	"github.com/nibzard/planner-go/internal/prompts"
)

// doctorCommand checks the agent binary, config, directories and prompts.
func doctorCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("planner doctor", flag.ContinueOnError)
	fs.SetOutput(stderr)
	verbose := fs.Bool("v", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	fmt.Fprintln(stdout, "Planner Doctor")
	fmt.Fprintln(stdout, "==============")
	fmt.Fprintln(stdout)

	allOK := true

	// Config
	fmt.Fprintln(stdout, "Config:")
	if len(cfg.Files) == 0 {
		fmt.Fprintln(stdout, "  ✅ No config file (defaults)")
	}
	for _, f := range cfg.Files {
		fmt.Fprintf(stdout, "  ✅ Loaded %s\n", f)
	}
	if err := cfg.Validate(); err != nil {
		for _, e := range unwrapJoined(err) {
			fmt.Fprintf(stdout, "  ❌ %v\n", e)
		}
		allOK = false
	}
	for _, w := range cfg.Warnings {
		fmt.Fprintf(stdout, "  ⚠️  %s\n", w)
	}
	fmt.Fprintln(stdout)

	// Agent
	agent := cfg.SelectedAgent()
	fmt.Fprintf(stdout, "Agent: %s\n", cfg.Agent)
	if !generator.IsAgentTypeRegistered(cfg.Agent) {
		format := agent.PromptFormat
		if format == "" {
			format = string(generator.PromptFormatStdin)
		}
		fmt.Fprintf(stdout, "  ⚠️  Custom agent, prompt sent via %s\n", format)
	}
	if path, err := generator.ResolveBinary(agent.Binary); err != nil {
		fmt.Fprintf(stdout, "  ❌ %v\n", err)
		allOK = false
	} else {
		fmt.Fprintf(stdout, "  ✅ Binary: %s\n", path)
	}
	if agent.Model != "" {
		fmt.Fprintf(stdout, "  ✅ Model: %s\n", agent.Model)
	}
	if cfg.Timeout() < 0 {
		fmt.Fprintln(stdout, "  ⚠️  Timeout disabled")
	} else {
		fmt.Fprintf(stdout, "  ✅ Timeout: %s\n", cfg.Timeout())
	}
	if *verbose {
		for _, name := range generator.RegisteredAgentTypes() {
			if name == cfg.Agent {
				continue
			}
			if path, err := generator.FindAgentBinary(generator.AgentType(name)); err == nil {
				fmt.Fprintf(stdout, "  ✅ Also available: %s (%s)\n", name, path)
			} else {
				fmt.Fprintf(stdout, "  ⚠️  Not available: %s\n", name)
			}
		}
	}
	fmt.Fprintln(stdout)

	// Directories
	fmt.Fprintf(stdout, "Plan directory: %s\n", cfg.PlanDir)
	if !checkDir(cfg.PlanDir) {
		allOK = false
	}
	if cfg.RunLog {
		logDir, err := logging.FindLogDir(cfg.LogDir, cfg.ProjectRoot)
		if err != nil {
			fmt.Fprintf(stdout, "Log directory: %s\n  ❌ %v\n", cfg.LogDir, err)
			allOK = false
		} else {
			fmt.Fprintf(stdout, "Log directory: %s\n", logDir)
			checkDir(logDir)
		}
	} else {
		fmt.Fprintln(stdout, "Log directory: (run logs disabled)")
	}
	fmt.Fprintln(stdout)

	// Prompts
	store := cfg.PromptStore()
	fmt.Fprintln(stdout, "Prompts:")
	fmt.Fprintf(stdout, "  %s: %s\n", prompts.GeneratePrompt, store.Source(prompts.GeneratePrompt))
	if _, err := prompts.NewRenderer(store).Render(prompts.GeneratePrompt, prompts.NewData("example goal", cfg.TaskCount, now())); err != nil {
		fmt.Fprintf(stdout, "  ❌ %v\n", err)
		allOK = false
	} else if *verbose {
		fmt.Fprintln(stdout, "  ✅ Renders")
	}
	fmt.Fprintf(stdout, "  %s: %s\n", prompts.TaskSchema, store.Source(prompts.TaskSchema))
	if schema, err := store.Load(prompts.TaskSchema); err != nil {
		fmt.Fprintf(stdout, "  ❌ %v\n", err)
		allOK = false
	} else if !json.Valid([]byte(schema)) {
		fmt.Fprintf(stdout, "  ❌ %s: invalid JSON\n", prompts.TaskSchema)
		allOK = false
	} else if *verbose {
		fmt.Fprintln(stdout, "  ✅ Valid JSON")
	}
	fmt.Fprintln(stdout)

	if allOK {
		fmt.Fprintln(stdout, "✅ All checks passed!")
		return nil
	}
	fmt.Fprintln(stdout, "⚠️  Some checks failed. Planner may not function correctly.")
	return errors.New("doctor checks failed")
}

// checkDir reports whether dir exists. A missing directory is only a
// warning since planner creates it on first write.
func checkDir(dir string) bool {
	info, err := os.Stat(dir)
	switch {
	case os.IsNotExist(err):
		fmt.Fprintln(stdout, "  ⚠️  Does not exist yet (created on first write)")
		return true
	case err != nil:
		fmt.Fprintf(stdout, "  ❌ Error: %v\n", err)
		return false
	case !info.IsDir():
		fmt.Fprintln(stdout, "  ❌ Not a directory")
		return false
	}
	fmt.Fprintln(stdout, "  ✅ OK")
	return true
}

// unwrapJoined splits an errors.Join result into its parts.
func unwrapJoined(err error) []error {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		return joined.Unwrap()
	}
	return []error{err}
}
