package generator

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Wait blocks on output pipes after the process
// is killed.
const waitDelay = 2 * time.Second

// agentSpec captures agent-specific invocation details.
type agentSpec struct {
	name       string
	apiKeyEnv  string
	buildArgs  func(cfg Config, prompt string) []string
	setupStdin func(cmd *exec.Cmd, cfg Config, prompt string)
}

// runAgent executes the agent binary and returns its standard output.
func runAgent(ctx context.Context, cfg Config, prompt string, logWriter LogWriter, spec agentSpec) (string, error) {
	logWriter = normalizeLogWriter(logWriter)

	args := spec.buildArgs(cfg, prompt)

	ctx, cancel := applyTimeout(ctx, cfg.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, cfg.Binary, args...)
	cmd.WaitDelay = waitDelay
	if cfg.WorkDir != "" {
		cmd.Dir = cfg.WorkDir
	}
	if cfg.APIKey != "" && spec.apiKeyEnv != "" {
		cmd.Env = append(os.Environ(), spec.apiKeyEnv+"="+cfg.APIKey)
	}
	if spec.setupStdin != nil {
		spec.setupStdin(cmd, cfg, prompt)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		_ = logWriter.Write(LogEvent{
			Type:      "error",
			Timestamp: time.Now().UTC(),
			Agent:     spec.name,
			Content:   err.Error(),
		})
		return "", fmt.Errorf("start %s: %w", spec.name, err)
	}

	if err := logWriter.Write(LogEvent{
		Type:      "command",
		Timestamp: time.Now().UTC(),
		Agent:     spec.name,
		Command:   redactPrompt(cmd.Args, prompt),
	}); err != nil {
		_ = cmd.Process.Kill()
		_ = cmd.Wait()
		return "", fmt.Errorf("write log event: %w", err)
	}

	runErr := cmd.Wait()
	exitCode := exitCodeFromError(runErr)
	_ = logWriter.Write(LogEvent{
		Type:      "command",
		Timestamp: time.Now().UTC(),
		Agent:     spec.name,
		Command:   redactPrompt(cmd.Args, prompt),
		ExitCode:  exitCode,
	})
	if errText := strings.TrimSpace(stderr.String()); errText != "" {
		_ = logWriter.Write(LogEvent{
			Type:      "stderr",
			Timestamp: time.Now().UTC(),
			Agent:     spec.name,
			Content:   errText,
		})
	}

	if runErr != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			_ = logWriter.Write(LogEvent{
				Type:      "error",
				Timestamp: time.Now().UTC(),
				Agent:     spec.name,
				Content:   fmt.Sprintf("%s timeout after %s", spec.name, cfg.Timeout),
			})
			return "", fmt.Errorf("%s timeout after %s: %w", spec.name, cfg.Timeout, context.DeadlineExceeded)
		}
		if errText := lastLine(stderr.String()); errText != "" {
			return "", fmt.Errorf("%s failed: %w: %s", spec.name, runErr, errText)
		}
		return "", fmt.Errorf("%s failed: %w", spec.name, runErr)
	}

	out := stdout.String()
	_ = logWriter.Write(LogEvent{
		Type:      "output",
		Timestamp: time.Now().UTC(),
		Agent:     spec.name,
		Content:   out,
	})
	return out, nil
}

func applyTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func exitCodeFromError(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func ensurePromptTerminator(prompt string) string {
	if strings.HasSuffix(prompt, "\n") {
		return prompt
	}
	return prompt + "\n"
}

// redactPrompt replaces the prompt argument so logs stay one line.
func redactPrompt(args []string, prompt string) []string {
	out := make([]string, len(args))
	for i, arg := range args {
		if arg == prompt && prompt != "" {
			arg = "<prompt>"
		}
		out[i] = arg
	}
	return out
}

func lastLine(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}
