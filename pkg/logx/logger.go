package logx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Fields is a map of structured log fields
type Fields map[string]interface{}

// Format represents the output format
type Format string

const (
	// FormatConsole outputs human-readable console logs (default)
	FormatConsole Format = "console"
	// FormatJSON outputs JSON formatted logs
	FormatJSON Format = "json"
)

// Logger is the main logger instance
type Logger struct {
	mu       sync.Mutex
	level    Level
	format   Format
	writer   io.Writer
	exitFunc func(int)
}

// NewLogger creates a new logger
func NewLogger(level Level, format Format, w io.Writer) *Logger {
	if w == nil {
		w = os.Stdout
	}
	return &Logger{
		level:    level,
		format:   format,
		writer:   w,
		exitFunc: os.Exit,
	}
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// WithField creates a new entry with a field
func (l *Logger) WithField(key string, value interface{}) *Entry {
	return l.WithFields(Fields{key: value})
}

// WithFields creates a new entry with fields
func (l *Logger) WithFields(fields Fields) *Entry {
	copied := make(Fields, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Entry{logger: l, fields: copied}
}

// WithError creates a new entry with an error field
func (l *Logger) WithError(err error) *Entry {
	return l.WithField("error", err)
}

// log is the internal logging method
func (l *Logger) log(level Level, msg string, fields Fields) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.level.Enabled(level) {
		return
	}

	now := time.Now().Format(time.RFC3339)

	var line []byte
	if l.format == FormatJSON {
		payload := map[string]interface{}{
			"time":    now,
			"level":   level.String(),
			"message": msg,
		}
		for k, v := range fields {
			if err, ok := v.(error); ok {
				payload[k] = err.Error()
				continue
			}
			payload[k] = v
		}
		line, _ = json.Marshal(payload)
		line = append(line, '\n')
	} else {
		var b strings.Builder
		fmt.Fprintf(&b, "%s [%s] %s", now, level.String(), msg)
		if len(fields) > 0 {
			keys := make([]string, 0, len(fields))
			for k := range fields {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, " %s=%v", k, fields[k])
			}
		}
		b.WriteByte('\n')
		line = []byte(b.String())
	}

	if _, err := l.writer.Write(line); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing log: %v\n", err)
	}
}

// Entry is a logger with bound fields
type Entry struct {
	logger *Logger
	fields Fields
}

// WithField adds a field to the entry
func (e *Entry) WithField(key string, value interface{}) *Entry {
	fields := make(Fields, len(e.fields)+1)
	for k, v := range e.fields {
		fields[k] = v
	}
	fields[key] = value
	return &Entry{logger: e.logger, fields: fields}
}

// WithError adds an error field to the entry
func (e *Entry) WithError(err error) *Entry {
	return e.WithField("error", err)
}

// Debug logs a debug level message with the entry's fields
func (e *Entry) Debug(msg string) { e.logger.log(LevelDebug, msg, e.fields) }

// Info logs an info level message with the entry's fields
func (e *Entry) Info(msg string) { e.logger.log(LevelInfo, msg, e.fields) }

// Warn logs a warning level message with the entry's fields
func (e *Entry) Warn(msg string) { e.logger.log(LevelWarn, msg, e.fields) }

// Error logs an error level message with the entry's fields
func (e *Entry) Error(msg string) { e.logger.log(LevelError, msg, e.fields) }

// Debugf logs a formatted debug message with the entry's fields
func (e *Entry) Debugf(format string, args ...interface{}) {
	e.logger.log(LevelDebug, fmt.Sprintf(format, args...), e.fields)
}

// Infof logs a formatted info message with the entry's fields
func (e *Entry) Infof(format string, args ...interface{}) {
	e.logger.log(LevelInfo, fmt.Sprintf(format, args...), e.fields)
}

// Warnf logs a formatted warning message with the entry's fields
func (e *Entry) Warnf(format string, args ...interface{}) {
	e.logger.log(LevelWarn, fmt.Sprintf(format, args...), e.fields)
}

// Errorf logs a formatted error message with the entry's fields
func (e *Entry) Errorf(format string, args ...interface{}) {
	e.logger.log(LevelError, fmt.Sprintf(format, args...), e.fields)
}
