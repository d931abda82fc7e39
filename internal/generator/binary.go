package generator

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/nibzard/planner-go/internal/utils"
)

// FindAgentBinary looks up the binary for agentType in PATH. Custom agent
// types use their own name as the binary.
func FindAgentBinary(agentType AgentType) (string, error) {
	name := string(agentType)
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("agent binary %q not found in PATH: %w", name, err)
	}
	return path, nil
}

// ValidateBinary checks that path exists and is executable.
func ValidateBinary(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("binary not found: %s", path)
		}
		return fmt.Errorf("stat binary: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("binary path is a directory: %s", path)
	}
	if !utils.IsExecutable(path, info) {
		return fmt.Errorf("binary is not executable: %s", path)
	}
	return nil
}

// ResolveBinary returns an absolute path for binary, searching PATH when it
// is a bare name.
func ResolveBinary(binary string) (string, error) {
	path, err := exec.LookPath(binary)
	if err != nil {
		return "", fmt.Errorf("agent binary %q not found: %w", binary, err)
	}
	if err := ValidateBinary(path); err != nil {
		return "", err
	}
	return path, nil
}
