package generator

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	bulletPattern   = regexp.MustCompile(`^[-*]\s*`)
	numberPattern   = regexp.MustCompile(`^\d+[.)]\s+`)
	checkboxPattern = regexp.MustCompile(`^\[[ xX]\]\s+`)
)

// ParseTasks extracts subtasks from an agent reply using the bundled schema.
func ParseTasks(output string) ([]string, error) {
	return parseTasks(output, nil, nil)
}

// parseTasks tries, in order, a {"tasks": [...]} object, a bare JSON array
// of strings, and finally one task per line.
func parseTasks(output string, schema []byte, logWriter LogWriter) ([]string, error) {
	logWriter = normalizeLogWriter(logWriter)

	if raw := extractJSON(output); raw != "" {
		tasks, err := decodeTaskObject(raw, schema)
		switch {
		case err == nil:
			return tasks, nil
		case !errors.Is(err, errNotTaskObject):
			return nil, err
		}
		_ = logWriter.Write(LogEvent{
			Type:      "debug",
			Timestamp: time.Now().UTC(),
			Content:   "reply object has no tasks field, trying other formats",
		})
	}

	if raw := extractJSONArray(output); raw != "" {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			if tasks := cleanTasks(list); len(tasks) > 0 {
				return tasks, nil
			}
		}
	}

	tasks := ParseLines(output)
	if len(tasks) == 0 {
		return nil, ErrNoContent
	}
	return tasks, nil
}

var errNotTaskObject = errors.New("not a task object")

// decodeTaskObject validates raw against the subtask schema. Objects that
// are not valid JSON or carry no "tasks" field return errNotTaskObject.
func decodeTaskObject(raw string, schema []byte) ([]string, error) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, errNotTaskObject
	}
	if _, ok := obj["tasks"]; !ok {
		return nil, errNotTaskObject
	}
	if err := validateTaskReply(obj, schema); err != nil {
		return nil, err
	}

	var reply struct {
		Tasks []string `json:"tasks"`
	}
	if err := json.Unmarshal([]byte(raw), &reply); err != nil {
		return nil, fmt.Errorf("decode task reply: %w", err)
	}
	tasks := cleanTasks(reply.Tasks)
	if len(tasks) == 0 {
		return nil, ErrNoContent
	}
	return tasks, nil
}

// ParseLines reads one task per non-blank line, dropping code fences and
// leading bullets, numbering or checkboxes.
func ParseLines(output string) []string {
	var tasks []string
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "```") {
			continue
		}
		line = bulletPattern.ReplaceAllString(line, "")
		line = numberPattern.ReplaceAllString(line, "")
		line = checkboxPattern.ReplaceAllString(line, "")
		if line = strings.TrimSpace(line); line != "" {
			tasks = append(tasks, line)
		}
	}
	return tasks
}

func cleanTasks(list []string) []string {
	tasks := make([]string, 0, len(list))
	for _, task := range list {
		if task = strings.TrimSpace(task); task != "" {
			tasks = append(tasks, task)
		}
	}
	return tasks
}

// extractJSON finds the first JSON object in s, tolerating code fences.
func extractJSON(s string) string {
	return extractBalanced(stripFence(s), '{', '}')
}

// extractJSONArray finds the first JSON array in s.
func extractJSONArray(s string) string {
	return extractBalanced(stripFence(s), '[', ']')
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	}
	if end := strings.LastIndex(s, "```"); end >= 0 {
		s = s[:end]
	}
	return strings.TrimSpace(s)
}

// extractBalanced returns the first span from open to its matching close,
// skipping delimiters inside JSON strings.
func extractBalanced(s string, open, close byte) string {
	start := strings.IndexByte(s, open)
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
