// Package logging provides structured logging for contract runs
// with JSON, console and multi-destination output. Probe traffic
// gets its own entry types so it can be written to a separate
// stream.
package logging

import (
	"fmt"
	"strings"
)

// Logger defines the interface for structured harness logging.
type Logger interface {
	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Warn logs a warning message.
	Warn(msg string, fields ...Field)

	// Error logs an error message.
	Error(msg string, fields ...Field)

	// Debug logs a debug-level message.
	Debug(msg string, fields ...Field)

	// WithFields returns a Logger with additional default
	// fields attached to every subsequent log entry.
	WithFields(fields ...Field) Logger

	// LogProbeRequest logs an outbound probe request.
	LogProbeRequest(request ProbeRequestLog)

	// LogProbeResponse logs the normalized probe response.
	LogProbeResponse(response ProbeResponseLog)

	// Close flushes any buffers and releases resources.
	Close() error
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// ProbeRequestLog captures an outbound probe request.
type ProbeRequestLog struct {
	Timestamp  string            `json:"timestamp"`
	RequestID  string            `json:"request_id"`
	Method     string            `json:"method"`
	URL        string            `json:"url"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body,omitempty"`
	BodyLength int               `json:"body_length"`
}

// ProbeResponseLog captures a received probe response.
type ProbeResponseLog struct {
	Timestamp   string            `json:"timestamp"`
	RequestID   string            `json:"request_id"`
	StatusCode  int               `json:"status_code"`
	ContentType string            `json:"content_type,omitempty"`
	Headers     map[string]string `json:"headers"`
	BodyPreview string            `json:"body_preview,omitempty"`
	BodyLength  int               `json:"body_length"`
	ElapsedMs   float64           `json:"elapsed_ms"`
}

// LogLevel represents logging severity levels.
type LogLevel int

const (
	// LevelDebug is the most verbose level.
	LevelDebug LogLevel = iota
	// LevelInfo is the default level.
	LevelInfo
	// LevelWarn indicates potential issues.
	LevelWarn
	// LevelError indicates failures.
	LevelError
)

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name such as "debug" or "WARN"
// into a LogLevel.
func ParseLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "", "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %q", s)
}
