package plan

import (
	"errors"
	"fmt"
)

var (
	// ErrTaskSectionMissing indicates the document has no "## Tasks" header.
	ErrTaskSectionMissing = errors.New("could not find task list section")

	// ErrNoTasks indicates every supplied task was blank.
	ErrNoTasks = errors.New("task list is empty")
)

// FormatError reports a document that does not follow the plan grammar.
type FormatError struct {
	Section string // Section that could not be located or parsed
	Line    int    // 1-based line number, 0 when not tied to a line
	Err     error
}

func (e *FormatError) Error() string {
	switch {
	case e.Section != "" && e.Line > 0:
		return fmt.Sprintf("plan format: %s (line %d): %s", e.Section, e.Line, e.Err)
	case e.Section != "":
		return fmt.Sprintf("plan format: %s: %s", e.Section, e.Err)
	}
	return fmt.Sprintf("plan format: %s", e.Err)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Err
}

func missingTaskSection() error {
	return &FormatError{Section: SectionTasks, Err: ErrTaskSectionMissing}
}
