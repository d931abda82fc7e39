package plan

import (
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)

const websitePlan = `# Project Plan: Build a website

## Overview
This project plan was generated on 2025-01-02 to accomplish the task: "Build a website".

## Tasks
- [ ] Design
- [ ] Code
- [ ] Deploy

## Progress
- 0/3 tasks completed (0%)

## Timeline
Estimated completion date: *To be determined*

## Resources Needed
*To be determined*

## Notes
This plan was automatically generated using Claude AI.
`

func buildWebsite(t *testing.T) string {
	t.Helper()
	r, err := Build("Build a website", []string{"Design", "  Code  ", "", "\t", "Deploy"}, testDate)
	require.NoError(t, err)
	return r.Text
}

func TestBuild(t *testing.T) {
	r, err := Build("Build a website", []string{"Design", "  Code  ", "", "\t", "Deploy"}, testDate)
	require.NoError(t, err)
	assert.Equal(t, websitePlan, r.Text)
	assert.Equal(t, "plan-build-a-website.md", r.Filename)
}

func TestBuildAllUncheckedForAnyLength(t *testing.T) {
	for n := 1; n <= 12; n++ {
		tasks := make([]string, n)
		for i := range tasks {
			tasks[i] = strings.Repeat("x", i+1)
		}
		r, err := Build("goal", tasks, testDate)
		require.NoError(t, err)

		doc, err := Parse(r.Text)
		require.NoError(t, err)
		require.Len(t, doc.Tasks, n)
		for i, task := range doc.Tasks {
			assert.False(t, task.Done, "task %d", i)
			assert.Equal(t, tasks[i], task.Description)
		}
		assert.Contains(t, r.Text, "\n- 0/"+strconv.Itoa(n)+" tasks completed (0%)\n")
	}
}

func TestBuildRejectsBlankTasks(t *testing.T) {
	_, err := Build("goal", []string{"", "   ", "\n"}, testDate)
	assert.ErrorIs(t, err, ErrNoTasks)

	_, err = Build("goal", nil, testDate)
	assert.ErrorIs(t, err, ErrNoTasks)
}

func TestBuildFoldsLineBreaks(t *testing.T) {
	r, err := Build("goal", []string{"first line\nsecond line"}, testDate)
	require.NoError(t, err)
	assert.Contains(t, r.Text, "\n- [ ] first line second line\n")
}

func TestRendererAttribution(t *testing.T) {
	r, err := Renderer{Attribution: "codex"}.Build("goal", []string{"a"}, testDate)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(r.Text, "This plan was automatically generated using codex.\n"))
}

func TestFilename(t *testing.T) {
	tests := []struct {
		goal string
		want string
	}{
		{"Build a personal portfolio website", "plan-build-a-personal-portfolio-website.md"},
		{"Hello, World!", "plan-hello--world-.md"},
		{"v2.0 Release", "plan-v2-0-release.md"},
		{"Café", "plan-caf-.md"},
		{"", "plan-.md"},
	}
	for _, tt := range tests {
		t.Run(tt.goal, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.goal))
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 3, 0},
		{1, 3, 33},
		{2, 3, 67},
		{3, 3, 100},
		{1, 2, 50},
		{1, 8, 13},
		{5, 8, 63},
		{0, 0, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Percent(tt.completed, tt.total), "%d/%d", tt.completed, tt.total)
	}
}

func TestApplyMarksIndices(t *testing.T) {
	u, err := ApplyUpdate(buildWebsite(t), []int{0, 2})
	require.NoError(t, err)

	assert.Contains(t, u.Text, "## Tasks\n- [x] Design\n- [ ] Code\n- [x] Deploy\n\n")
	assert.Contains(t, u.Text, "## Progress\n- 2/3 tasks completed (67%)\n")
	assert.Equal(t, Progress{Completed: 2, Total: 3, Percent: 67}, u.Progress)
	assert.Equal(t, []int{0, 2}, u.Applied)
	assert.Empty(t, u.Ignored)
	assert.True(t, u.ProgressRewritten)
}

func TestApplyEmptySetIsIdentity(t *testing.T) {
	doc := buildWebsite(t)
	out, err := Apply(doc, nil)
	require.NoError(t, err)
	assert.Equal(t, doc, out)

	checked, err := Apply(doc, []int{1})
	require.NoError(t, err)
	again, err := Apply(checked, []int{})
	require.NoError(t, err)
	assert.Equal(t, checked, again)
}

func TestApplyIsMonotonic(t *testing.T) {
	doc := buildWebsite(t)
	first, err := Apply(doc, []int{0})
	require.NoError(t, err)
	second, err := Apply(first, []int{2})
	require.NoError(t, err)

	parsed, err := Parse(second)
	require.NoError(t, err)
	assert.True(t, parsed.Tasks[0].Done)
	assert.False(t, parsed.Tasks[1].Done)
	assert.True(t, parsed.Tasks[2].Done)
	assert.Contains(t, second, "- 2/3 tasks completed (67%)")

	// Re-applying an already checked index changes nothing.
	third, err := Apply(second, []int{0, 0})
	require.NoError(t, err)
	assert.Equal(t, second, third)
}

func TestApplyIgnoresOutOfRange(t *testing.T) {
	u, err := ApplyUpdate(buildWebsite(t), []int{99, -1, 3})
	require.NoError(t, err)
	assert.Contains(t, u.Text, "- 0/3 tasks completed (0%)")
	assert.Equal(t, []int{99, -1, 3}, u.Ignored)
	assert.Empty(t, u.Applied)
}

func TestApplyMissingTaskSection(t *testing.T) {
	doc := "# Project Plan: x\n\n## Progress\n- 0/0 tasks completed (0%)\n"
	_, err := Apply(doc, []int{0})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTaskSectionMissing)

	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, SectionTasks, fe.Section)
}

func TestApplyMissingProgressHeader(t *testing.T) {
	doc := "## Tasks\n- [ ] a\n- [ ] b\n\n## Notes\n- 0/2 tasks completed (0%)\n"
	u, err := ApplyUpdate(doc, []int{1})
	require.NoError(t, err)
	assert.False(t, u.ProgressRewritten)
	assert.Equal(t, "## Tasks\n- [ ] a\n- [x] b\n\n## Notes\n- 0/2 tasks completed (0%)\n", u.Text)
	assert.Equal(t, 1, u.Progress.Completed)
}

func TestApplyProgressHeaderAtEnd(t *testing.T) {
	out, err := Apply("## Tasks\n- [ ] a\n## Progress", []int{0})
	require.NoError(t, err)
	assert.Equal(t, "## Tasks\n- [x] a\n## Progress\n- 1/1 tasks completed (100%)", out)
}

func TestApplyPreservesCRLF(t *testing.T) {
	doc := "## Tasks\r\n- [ ] a\r\n- [ ] b\r\n\r\n## Progress\r\n- 0/2 tasks completed (0%)\r\n"
	out, err := Apply(doc, []int{0})
	require.NoError(t, err)
	assert.Equal(t, "## Tasks\r\n- [x] a\r\n- [ ] b\r\n\r\n## Progress\r\n- 1/2 tasks completed (50%)\r\n", out)
}

func TestApplyStopsAtFirstNonTaskLine(t *testing.T) {
	doc := "## Tasks\n- [ ] a\n\n- [ ] not a task\n## Progress\n- 0/1 tasks completed (0%)\n"
	u, err := ApplyUpdate(doc, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, []int{1}, u.Ignored)
	assert.Contains(t, u.Text, "\n- [ ] not a task\n")
	assert.Contains(t, u.Text, "- 1/1 tasks completed (100%)")
}

func TestApplyBareItemCountsButNeverChecks(t *testing.T) {
	doc := "## Tasks\n- plain item\n- [ ] boxed\n## Progress\n- 0/2 tasks completed (0%)\n"
	out, err := Apply(doc, []int{0, 1})
	require.NoError(t, err)
	assert.Equal(t, "## Tasks\n- plain item\n- [x] boxed\n## Progress\n- 1/2 tasks completed (50%)\n", out)
}

func TestApplyProgressHeaderMatchedExactly(t *testing.T) {
	doc := "## Tasks\n- [ ] a\n## Progress Report\n- 0/1 tasks completed (0%)\n"
	u, err := ApplyUpdate(doc, []int{0})
	require.NoError(t, err)
	assert.False(t, u.ProgressRewritten)
	assert.Equal(t, "## Tasks\n- [x] a\n## Progress Report\n- 0/1 tasks completed (0%)\n", u.Text)

	u, err = ApplyUpdate("## Tasks\n- [ ] a\n  ## Progress  \n- 0/1 tasks completed (0%)\n", []int{0})
	require.NoError(t, err)
	assert.True(t, u.ProgressRewritten)
	assert.Contains(t, u.Text, "  ## Progress  \n- 1/1 tasks completed (100%)\n")
}

func TestParseMarksPlainItems(t *testing.T) {
	doc, err := Parse("## Tasks\n- plain item\n- [ ] boxed\n")
	require.NoError(t, err)
	assert.Equal(t, []TaskItem{
		{Description: "plain item", Plain: true},
		{Description: "boxed"},
	}, doc.Tasks)
}

func TestApplyPreservesFreeformSections(t *testing.T) {
	doc := buildWebsite(t)
	doc = strings.Replace(doc, "*To be determined*\n\n## Notes", "- laptop\n- coffee\n\n## Notes", 1)
	out, err := Apply(doc, []int{1})
	require.NoError(t, err)

	before := doc[strings.Index(doc, "## Timeline"):]
	after := out[strings.Index(out, "## Timeline"):]
	assert.Equal(t, before, after)
}

func TestParse(t *testing.T) {
	text, err := Apply(buildWebsite(t), []int{1})
	require.NoError(t, err)

	doc, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "# Project Plan: Build a website", doc.Title)
	assert.Equal(t, "Build a website", doc.Goal)
	assert.Equal(t, "2025-01-02", doc.CreatedDate)
	assert.Equal(t, []TaskItem{
		{Description: "Design"},
		{Description: "Code", Done: true},
		{Description: "Deploy"},
	}, doc.Tasks)
	assert.Equal(t, Progress{Completed: 1, Total: 3, Percent: 33}, doc.Progress)

	names := make([]string, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{SectionOverview, SectionTimeline, SectionResources, SectionNotes}, names)
	assert.Equal(t, "This plan was automatically generated using Claude AI.", doc.Sections[3].Body)
}

func TestParseMissingTaskSection(t *testing.T) {
	_, err := Parse("# Project Plan: nothing here\n")
	assert.ErrorIs(t, err, ErrTaskSectionMissing)
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want LineKind
	}{
		{"# Project Plan: x", LineTitle},
		{"## Tasks", LineHeader},
		{"  ## Tasks  ", LineHeader},
		{"- [ ] a", LineTask},
		{"- a", LineTask},
		{" - a", LineOther},
		{"-a", LineOther},
		{"", LineOther},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClassifyLine(tt.line), "%q", tt.line)
	}
}
