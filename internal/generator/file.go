package generator

import (
	"context"
	"fmt"
	"os"
)

// FileGenerator reads tasks from a file instead of asking an agent. The
// file may hold a task reply in any format ParseTasks accepts.
type FileGenerator struct {
	Path string
}

// Generate ignores goal and count and returns the tasks found in the file.
func (f FileGenerator) Generate(ctx context.Context, _ string, _ int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &GenerationError{Agent: "file", Err: fmt.Errorf("read tasks file: %w", err)}
	}
	tasks, err := ParseTasks(string(data))
	if err != nil {
		return nil, &GenerationError{Agent: "file", Err: err}
	}
	return tasks, nil
}
