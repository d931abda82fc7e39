package plan

import (
	"strings"
)

// Apply marks the tasks at the given 0-based indices as done and rewrites
// the progress line. It returns the updated document text.
func Apply(text string, completed []int) (string, error) {
	u, err := ApplyUpdate(text, completed)
	if err != nil {
		return "", err
	}
	return u.Text, nil
}

// ApplyUpdate is Apply with a report of what changed.
//
// Indices outside [0, len(tasks)) are ignored. Tasks not named keep their
// current state, so a checked task is never unchecked. When the document
// has no "## Progress" header the summary line is left as is.
func ApplyUpdate(text string, completed []int) (*Update, error) {
	lines := splitLines(text)

	start, end, ok := taskSpan(lines)
	if !ok {
		return nil, missingTaskSection()
	}

	u := &Update{}
	total := end - start
	for _, idx := range completed {
		if idx < 0 || idx >= total {
			u.Ignored = append(u.Ignored, idx)
			continue
		}
		lines[start+idx] = checkLine(lines[start+idx])
		u.Applied = append(u.Applied, idx)
	}

	tasks := make([]TaskItem, 0, total)
	for _, line := range lines[start:end] {
		item, _ := ParseTaskLine(line)
		tasks = append(tasks, item)
	}
	u.Progress = ComputeProgress(tasks)

	if header := findHeader(lines, SectionProgress); header >= 0 {
		summary := u.Progress.line()
		if next := header + 1; next < len(lines) {
			if strings.HasSuffix(lines[next], "\r") {
				summary += "\r"
			}
			lines[next] = summary
		} else {
			lines = append(lines, summary)
		}
		u.ProgressRewritten = true
	}

	u.Text = joinLines(lines)
	return u, nil
}

// checkLine rewrites an unchecked task marker to checked. Lines that are
// already checked, or carry no checkbox, are returned unchanged.
func checkLine(line string) string {
	if !strings.HasPrefix(line, uncheckedMark) {
		return line
	}
	return checkedMark + line[len(uncheckedMark):]
}
