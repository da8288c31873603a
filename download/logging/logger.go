package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// LogLevel represents the log level.
type LogLevel string

const (
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)

// LogEntry is one structured line in the run log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Level     LogLevel  `json:"level"`
	Message   string    `json:"message"`
	Service   string    `json:"service"`
	Operation string    `json:"operation,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// Logger writes JSON-lines run lifecycle events to a file. A nil file (from
// Nop) makes every call a no-op, so callers never need nil checks.
type Logger struct {
	file    *os.File
	mu      sync.Mutex
	service string
}

// NewLogger opens (or creates) the log file in append mode.
func NewLogger(logPath, service string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &Logger{file: file, service: service}, nil
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{}
}

// Close closes the log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func (l *Logger) log(level LogLevel, message, operation string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   message,
		Service:   l.service,
		Operation: operation,
	}
	if err != nil {
		entry.Error = err.Error()
	}

	data, marshalErr := json.Marshal(entry)
	if marshalErr != nil {
		_, _ = fmt.Fprintf(l.file, "{\"timestamp\":%q,\"level\":%q,\"message\":%q,\"service\":%q}\n",
			time.Now().Format(time.RFC3339), level, message, l.service)
		return
	}
	_, _ = fmt.Fprintln(l.file, string(data))
}

// Info logs an info message.
func (l *Logger) Info(message string) {
	l.log(LogLevelInfo, message, "", nil)
}

// Infof logs a formatted info message.
func (l *Logger) Infof(format string, args ...any) {
	l.Info(fmt.Sprintf(format, args...))
}

// InfoWithOperation logs an info message with operation context.
func (l *Logger) InfoWithOperation(operation, message string) {
	l.log(LogLevelInfo, message, operation, nil)
}

// Warn logs a warning message.
func (l *Logger) Warn(message string) {
	l.log(LogLevelWarn, message, "", nil)
}

// Warnf logs a formatted warning message.
func (l *Logger) Warnf(format string, args ...any) {
	l.Warn(fmt.Sprintf(format, args...))
}

// Error logs an error message.
func (l *Logger) Error(message string, err error) {
	l.log(LogLevelError, message, "", err)
}

// ErrorWithOperation logs an error message with operation context.
func (l *Logger) ErrorWithOperation(operation, message string, err error) {
	l.log(LogLevelError, message, operation, err)
}
