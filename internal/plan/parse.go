package plan

import (
	"regexp"
	"strings"
)

var createdDatePattern = regexp.MustCompile(`generated on (\d{4}-\d{2}-\d{2})`)

// Parse reads a plan document into its structured form. Sections other
// than Tasks and Progress are kept as opaque bodies in document order.
func Parse(text string) (*Document, error) {
	lines := splitLines(text)

	start, end, ok := taskSpan(lines)
	if !ok {
		return nil, missingTaskSection()
	}

	doc := &Document{Tasks: make([]TaskItem, 0, end-start)}
	for _, line := range lines[start:end] {
		item, _ := ParseTaskLine(line)
		doc.Tasks = append(doc.Tasks, item)
	}
	doc.Progress = ComputeProgress(doc.Tasks)

	var current *Section
	var body []string
	flush := func() {
		if current == nil {
			return
		}
		current.Body = strings.TrimRight(joinLines(body), "\r\n")
		doc.Sections = append(doc.Sections, *current)
		current = nil
		body = nil
	}

	for _, line := range lines {
		switch ClassifyLine(line) {
		case LineTitle:
			if doc.Title == "" {
				doc.Title = strings.TrimSpace(line)
				doc.Goal = strings.TrimPrefix(doc.Title, strings.TrimSpace(titlePrefix))
				doc.Goal = strings.TrimSpace(doc.Goal)
			}
			continue
		case LineHeader:
			flush()
			name := HeaderName(line)
			if name == SectionTasks || name == SectionProgress {
				continue
			}
			current = &Section{Name: name}
			continue
		}
		if current == nil {
			continue
		}
		if current.Name == SectionOverview && doc.CreatedDate == "" {
			if m := createdDatePattern.FindStringSubmatch(line); m != nil {
				doc.CreatedDate = m[1]
			}
		}
		body = append(body, line)
	}
	flush()

	return doc, nil
}
