package plan

import (
	"fmt"
	"math"
)

// TaskItem is a single checklist entry. Its identity is its position.
type TaskItem struct {
	Description string `json:"description" yaml:"description"`
	Done        bool   `json:"done" yaml:"done"`
	// Plain marks a "- " item without a checkbox. It counts toward the
	// total but can never be checked.
	Plain bool `json:"plain,omitempty" yaml:"plain,omitempty"`
}

// Section is a free-form "## " section carried through unchanged.
type Section struct {
	Name string `json:"name" yaml:"name"`
	Body string `json:"body" yaml:"body"`
}

// Document is the parsed view of a plan document.
type Document struct {
	Title       string     `json:"title" yaml:"title"`
	Goal        string     `json:"goal" yaml:"goal"`
	CreatedDate string     `json:"created_date,omitempty" yaml:"created_date,omitempty"`
	Tasks       []TaskItem `json:"tasks" yaml:"tasks"`
	Progress    Progress   `json:"progress" yaml:"progress"`
	Sections    []Section  `json:"sections,omitempty" yaml:"sections,omitempty"`
}

// Progress summarizes task completion.
type Progress struct {
	Completed int `json:"completed" yaml:"completed"`
	Total     int `json:"total" yaml:"total"`
	Percent   int `json:"percent" yaml:"percent"`
}

// String renders the progress summary without the list marker.
func (p Progress) String() string {
	return fmt.Sprintf("%d/%d tasks completed (%d%%)", p.Completed, p.Total, p.Percent)
}

// line renders the full progress line as it appears under "## Progress".
func (p Progress) line() string {
	return itemPrefix + p.String()
}

// ComputeProgress counts done tasks and rounds the percentage half up.
func ComputeProgress(tasks []TaskItem) Progress {
	p := Progress{Total: len(tasks)}
	for _, t := range tasks {
		if t.Done {
			p.Completed++
		}
	}
	p.Percent = Percent(p.Completed, p.Total)
	return p
}

// Percent returns round(100*completed/total) with halves rounded up.
// A zero total is reported as 0%.
func Percent(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Floor(100*float64(completed)/float64(total) + 0.5))
}

// Rendered is a freshly built plan document and its file name.
type Rendered struct {
	Filename string
	Text     string
}

// Update is the outcome of applying completion indices to a document.
type Update struct {
	Text     string
	Progress Progress
	// Applied lists in-range indices in the order they were supplied.
	Applied []int
	// Ignored lists indices outside the task range.
	Ignored []int
	// ProgressRewritten is false when the document has no progress header.
	ProgressRewritten bool
}
