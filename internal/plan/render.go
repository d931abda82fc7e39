package plan

import (
	"fmt"
	"strings"
	"time"
)

// DefaultAttribution names the generator in the Notes section.
const DefaultAttribution = "Claude AI"

const dateLayout = "2006-01-02"

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Renderer builds plan documents.
type Renderer struct {
	// Attribution is the generator name written to the Notes section.
	// Empty means DefaultAttribution.
	Attribution string
}

// Build renders a plan document with the default renderer.
func Build(goal string, tasks []string, generatedOn time.Time) (*Rendered, error) {
	return Renderer{}.Build(goal, tasks, generatedOn)
}

// Build renders a plan document for goal with every task unchecked.
// Blank tasks are dropped; ErrNoTasks is returned when none remain.
func (r Renderer) Build(goal string, tasks []string, generatedOn time.Time) (*Rendered, error) {
	items := CleanTasks(tasks)
	if len(items) == 0 {
		return nil, ErrNoTasks
	}

	attribution := r.Attribution
	if attribution == "" {
		attribution = DefaultAttribution
	}
	date := generatedOn.UTC().Format(dateLayout)

	var b strings.Builder
	fmt.Fprintf(&b, "%s%s\n\n", titlePrefix, goal)

	fmt.Fprintf(&b, "%s%s\n", headerPrefix, SectionOverview)
	fmt.Fprintf(&b, "This project plan was generated on %s to accomplish the task: \"%s\".\n\n", date, goal)

	fmt.Fprintf(&b, "%s%s\n", headerPrefix, SectionTasks)
	for _, item := range items {
		fmt.Fprintf(&b, "%s %s\n", uncheckedMark, item)
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s%s\n", headerPrefix, SectionProgress)
	fmt.Fprintf(&b, "%s\n\n", Progress{Total: len(items)}.line())

	fmt.Fprintf(&b, "%s%s\n", headerPrefix, SectionTimeline)
	b.WriteString("Estimated completion date: *To be determined*\n\n")

	fmt.Fprintf(&b, "%s%s\n", headerPrefix, SectionResources)
	b.WriteString("*To be determined*\n\n")

	fmt.Fprintf(&b, "%s%s\n", headerPrefix, SectionNotes)
	fmt.Fprintf(&b, "This plan was automatically generated using %s.\n", attribution)

	return &Rendered{
		Filename: Filename(goal),
		Text:     b.String(),
	}, nil
}

// CleanTasks trims tasks, drops blank ones, and folds line breaks into
// single spaces so each task stays on one line.
func CleanTasks(tasks []string) []string {
	items := make([]string, 0, len(tasks))
	for _, task := range tasks {
		task = strings.TrimSpace(lineBreaks.Replace(task))
		if task != "" {
			items = append(items, task)
		}
	}
	return items
}

// Filename derives the plan file name for goal: the goal is lower-cased
// and every rune outside [a-z0-9] becomes '-'.
func Filename(goal string) string {
	return "plan-" + Slug(goal) + ".md"
}

// Slug lower-cases s and replaces every rune outside [a-z0-9] with '-'.
func Slug(s string) string {
	lower := strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('-')
	}
	return b.String()
}
