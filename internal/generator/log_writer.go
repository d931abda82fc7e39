package generator

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"
)

// LogEvent is a single event from a generator run.
type LogEvent struct {
	// Type is one of command, output, stderr, tasks, error, debug.
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Agent     string    `json:"agent,omitempty"`
	Content   string    `json:"content,omitempty"`
	Command   []string  `json:"command,omitempty"`
	ExitCode  int       `json:"exit_code,omitempty"`
	Tasks     []string  `json:"tasks,omitempty"`
}

// LogWriter writes log events.
type LogWriter interface {
	Write(event LogEvent) error
}

// IOStreamLogWriter writes log events as JSON lines.
type IOStreamLogWriter struct {
	w      io.Writer
	indent string
}

// NewIOStreamLogWriter creates a new log writer that writes to an io.Writer.
func NewIOStreamLogWriter(w io.Writer) *IOStreamLogWriter {
	return &IOStreamLogWriter{w: w}
}

// SetIndent sets the indentation prefix for log output.
func (l *IOStreamLogWriter) SetIndent(indent string) {
	l.indent = indent
}

func (l *IOStreamLogWriter) Write(event LogEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal log event: %w", err)
	}
	if l.indent != "" {
		data = append([]byte(l.indent), data...)
	}
	data = append(data, '\n')
	_, err = l.w.Write(data)
	return err
}

// MultiLogWriter fans events out to several writers.
type MultiLogWriter struct {
	writers []LogWriter
}

// NewMultiLogWriter creates a new multi-log writer. Nil writers are skipped.
func NewMultiLogWriter(writers ...LogWriter) *MultiLogWriter {
	m := &MultiLogWriter{}
	for _, w := range writers {
		if w != nil {
			m.writers = append(m.writers, w)
		}
	}
	return m
}

// Write writes the event to all underlying writers.
func (m *MultiLogWriter) Write(event LogEvent) error {
	var errs []error
	for _, w := range m.writers {
		if err := w.Write(event); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multi-writer errors: %v", errs)
	}
	return nil
}

// NullLogWriter is a no-op log writer.
type NullLogWriter struct{}

// Write does nothing.
func (NullLogWriter) Write(LogEvent) error {
	return nil
}

type lockedLogWriter struct {
	mu     sync.Mutex
	writer LogWriter
}

func (l *lockedLogWriter) Write(event LogEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.writer.Write(event)
}

func normalizeLogWriter(writer LogWriter) LogWriter {
	if writer == nil {
		return NullLogWriter{}
	}
	if _, ok := writer.(*lockedLogWriter); ok {
		return writer
	}
	return &lockedLogWriter{writer: writer}
}
