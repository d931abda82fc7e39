package generator

import (
	"github.com/charmbracelet/log"
)

// ConsoleLogWriter renders run events through a charmbracelet logger.
type ConsoleLogWriter struct {
	logger *log.Logger
}

// NewConsoleLogWriter wraps logger.
func NewConsoleLogWriter(logger *log.Logger) *ConsoleLogWriter {
	return &ConsoleLogWriter{logger: logger}
}

func (c *ConsoleLogWriter) Write(event LogEvent) error {
	if c == nil || c.logger == nil {
		return nil
	}
	msg := formatMessage(event)
	fields := extractFields(event)

	switch event.Type {
	case "error":
		c.logger.Error(msg, fields...)
	case "tasks":
		c.logger.Info(msg, fields...)
	case "command":
		if event.ExitCode != 0 {
			c.logger.Warn(msg, fields...)
			return nil
		}
		c.logger.Info(msg, fields...)
	default:
		c.logger.Debug(msg, fields...)
	}
	return nil
}

func extractFields(event LogEvent) []any {
	var fields []any
	if event.Agent != "" {
		fields = append(fields, "agent", event.Agent)
	}
	if len(event.Command) > 0 {
		fields = append(fields, "command", event.Command[0])
	}
	if event.ExitCode != 0 {
		fields = append(fields, "exit_code", event.ExitCode)
	}
	if len(event.Tasks) > 0 {
		fields = append(fields, "count", len(event.Tasks))
	}
	return fields
}

func formatMessage(event LogEvent) string {
	if event.Content != "" {
		return event.Content
	}
	switch event.Type {
	case "command":
		if event.ExitCode != 0 {
			return "Agent exited"
		}
		return "Running agent"
	case "tasks":
		return "Tasks generated"
	case "output":
		return "Agent output"
	case "error":
		return "Error"
	default:
		return event.Type
	}
}
