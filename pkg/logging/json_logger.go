package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// jsonMarshal is a variable for dependency injection in tests.
var jsonMarshal = json.Marshal

// LogEntry represents a single JSON log entry.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// LoggerConfig configures the JSONLogger. Writers take
// precedence over paths.
type LoggerConfig struct {
	// Output receives harness entries. Defaults to stdout.
	Output io.Writer
	// OutputPath opens a file for harness entries.
	OutputPath string

	// ProbeOutput receives probe request/response entries.
	// Probe logging is off when both it and ProbeLogPath are
	// unset.
	ProbeOutput  io.Writer
	ProbeLogPath string

	Level  LogLevel
	Fields map[string]any
}

// JSONLogger implements Logger with JSON Lines output.
type JSONLogger struct {
	mu     *sync.Mutex
	output io.Writer
	probes io.Writer
	owned  []io.Closer
	level  LogLevel
	fields map[string]any
	closed *bool
}

// NewJSONLogger creates a new JSON logger.
func NewJSONLogger(config LoggerConfig) (*JSONLogger, error) {
	closed := false
	logger := &JSONLogger{
		mu:     &sync.Mutex{},
		level:  config.Level,
		fields: make(map[string]any, len(config.Fields)),
		closed: &closed,
	}
	for k, v := range config.Fields {
		logger.fields[k] = v
	}

	switch {
	case config.Output != nil:
		logger.output = config.Output
	case config.OutputPath != "":
		f, err := openAppend(config.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		logger.output = f
		logger.owned = append(logger.owned, f)
	default:
		logger.output = os.Stdout
	}

	switch {
	case config.ProbeOutput != nil:
		logger.probes = config.ProbeOutput
	case config.ProbeLogPath != "":
		f, err := openAppend(config.ProbeLogPath)
		if err != nil {
			_ = logger.Close()
			return nil, fmt.Errorf("failed to open probe log: %w", err)
		}
		logger.probes = f
		logger.owned = append(logger.owned, f)
	}

	return logger, nil
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func (l *JSONLogger) log(level LogLevel, msg string, fields ...Field) {
	if level < l.level {
		return
	}

	entry := LogEntry{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Level:     level.String(),
		Message:   msg,
	}
	if len(l.fields)+len(fields) > 0 {
		entry.Fields = make(map[string]any, len(l.fields)+len(fields))
		for k, v := range l.fields {
			entry.Fields[k] = v
		}
		for _, f := range fields {
			entry.Fields[f.Key] = f.Value
		}
	}

	l.write(l.output, entry)
}

func (l *JSONLogger) write(w io.Writer, v any) {
	if w == nil {
		return
	}
	data, err := jsonMarshal(v)
	if err != nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if *l.closed {
		return
	}
	fmt.Fprintln(w, string(data))
}

// Info logs an informational message.
func (l *JSONLogger) Info(msg string, fields ...Field) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *JSONLogger) Warn(msg string, fields ...Field) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *JSONLogger) Error(msg string, fields ...Field) {
	l.log(LevelError, msg, fields...)
}

// Debug logs a debug message.
func (l *JSONLogger) Debug(msg string, fields ...Field) {
	l.log(LevelDebug, msg, fields...)
}

// WithFields returns a Logger sharing this logger's writers with
// additional default fields. Closing either closes both.
func (l *JSONLogger) WithFields(fields ...Field) Logger {
	newFields := make(map[string]any, len(l.fields)+len(fields))
	for k, v := range l.fields {
		newFields[k] = v
	}
	for _, f := range fields {
		newFields[f.Key] = f.Value
	}

	child := *l
	child.fields = newFields
	return &child
}

// LogProbeRequest writes a request entry to the probe stream.
func (l *JSONLogger) LogProbeRequest(request ProbeRequestLog) {
	if request.Timestamp == "" {
		request.Timestamp = time.Now().Format(time.RFC3339Nano)
	}
	l.write(l.probes, struct {
		Type string `json:"type"`
		ProbeRequestLog
	}{"request", request})
}

// LogProbeResponse writes a response entry to the probe stream.
func (l *JSONLogger) LogProbeResponse(response ProbeResponseLog) {
	if response.Timestamp == "" {
		response.Timestamp = time.Now().Format(time.RFC3339Nano)
	}
	l.write(l.probes, struct {
		Type string `json:"type"`
		ProbeResponseLog
	}{"response", response})
}

// Close closes any files the logger opened. Writers passed in
// through LoggerConfig are left open.
func (l *JSONLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if *l.closed {
		return nil
	}
	*l.closed = true

	var errs []error
	for _, c := range l.owned {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SetupLogging creates a JSON logger writing run.log and
// probes.log under logsDir.
func SetupLogging(logsDir string, verbose bool) (*JSONLogger, error) {
	config := LoggerConfig{
		OutputPath:   filepath.Join(logsDir, "run.log"),
		ProbeLogPath: filepath.Join(logsDir, "probes.log"),
		Level:        LevelInfo,
	}
	if verbose {
		config.Level = LevelDebug
	}
	return NewJSONLogger(config)
}
