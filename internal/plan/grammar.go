package plan

import (
	"strings"
)

// Section names recognized in a plan document.
const (
	SectionOverview  = "Overview"
	SectionTasks     = "Tasks"
	SectionProgress  = "Progress"
	SectionTimeline  = "Timeline"
	SectionResources = "Resources Needed"
	SectionNotes     = "Notes"
)

const (
	titlePrefix   = "# Project Plan: "
	headerPrefix  = "## "
	itemPrefix    = "- "
	uncheckedMark = "- [ ]"
	checkedMark   = "- [x]"
)

// LineKind classifies a single line of a plan document.
type LineKind int

const (
	LineOther LineKind = iota
	LineTitle
	LineHeader
	LineTask
)

func (k LineKind) String() string {
	switch k {
	case LineTitle:
		return "title"
	case LineHeader:
		return "header"
	case LineTask:
		return "task"
	default:
		return "other"
	}
}

// ClassifyLine reports the grammar production a line belongs to.
// Headers are matched on the trimmed line; task lines on the raw prefix.
func ClassifyLine(line string) LineKind {
	if strings.HasPrefix(line, itemPrefix) {
		return LineTask
	}
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, headerPrefix):
		return LineHeader
	case strings.HasPrefix(trimmed, titlePrefix):
		return LineTitle
	}
	return LineOther
}

// HeaderName returns the section name of a header line, or "" if the line
// is not a header.
func HeaderName(line string) string {
	if ClassifyLine(line) != LineHeader {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), headerPrefix))
}

// isHeader reports whether line is exactly the header for section name.
func isHeader(line, name string) bool {
	return strings.TrimSpace(line) == headerPrefix+name
}

// ParseTaskLine parses a task line into a TaskItem.
// A "- " line without a checkbox is still a task; it is never done.
func ParseTaskLine(line string) (TaskItem, bool) {
	if ClassifyLine(line) != LineTask {
		return TaskItem{}, false
	}
	body := strings.TrimSuffix(line, "\r")
	switch {
	case strings.HasPrefix(body, checkedMark):
		return TaskItem{Description: strings.TrimSpace(body[len(checkedMark):]), Done: true}, true
	case strings.HasPrefix(body, uncheckedMark):
		return TaskItem{Description: strings.TrimSpace(body[len(uncheckedMark):])}, true
	}
	return TaskItem{Description: strings.TrimSpace(body[len(itemPrefix):]), Plain: true}, true
}

// taskSpan locates the task section in lines. start is the index of the
// first line after the "## Tasks" header and end is one past the last
// contiguous task line, so lines[start:end] are the tasks.
func taskSpan(lines []string) (start, end int, ok bool) {
	header := -1
	for i, line := range lines {
		if isHeader(line, SectionTasks) {
			header = i
			break
		}
	}
	if header < 0 {
		return 0, 0, false
	}
	start = header + 1
	end = start
	for end < len(lines) && ClassifyLine(lines[end]) == LineTask {
		end++
	}
	return start, end, true
}

// findHeader returns the index of the first header line for name, or -1.
func findHeader(lines []string, name string) int {
	for i, line := range lines {
		if isHeader(line, name) {
			return i
		}
	}
	return -1
}

func splitLines(text string) []string {
	return strings.Split(text, "\n")
}

func joinLines(lines []string) string {
	return strings.Join(lines, "\n")
}
