package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
)

// ConsoleOption configures a ConsoleLogger.
type ConsoleOption func(*ConsoleLogger)

// WithOutput sets the destination writer.
func WithOutput(w io.Writer) ConsoleOption {
	return func(c *ConsoleLogger) {
		c.output = w
	}
}

// WithoutColor disables ANSI escape codes.
func WithoutColor() ConsoleOption {
	return func(c *ConsoleLogger) {
		c.color = false
	}
}

// WithoutTimestamp drops the leading clock time.
func WithoutTimestamp() ConsoleOption {
	return func(c *ConsoleLogger) {
		c.timestamps = false
	}
}

// ConsoleLogger provides colored console output.
type ConsoleLogger struct {
	mu         *sync.Mutex
	output     io.Writer
	verbose    bool
	color      bool
	timestamps bool
	fields     []Field
}

// NewConsoleLogger creates a console logger writing to stderr.
// When verbose is true, debug messages and probe traffic are
// emitted.
func NewConsoleLogger(verbose bool, opts ...ConsoleOption) *ConsoleLogger {
	c := &ConsoleLogger{
		mu:         &sync.Mutex{},
		output:     os.Stderr,
		verbose:    verbose,
		color:      true,
		timestamps: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *ConsoleLogger) paint(color, s string) string {
	if !c.color {
		return s
	}
	return color + s + colorReset
}

func (c *ConsoleLogger) log(level LogLevel, color, msg string, fields ...Field) {
	all := make([]Field, 0, len(c.fields)+len(fields))
	all = append(all, c.fields...)
	all = append(all, fields...)

	var b strings.Builder
	if c.timestamps {
		b.WriteString(c.paint(colorGray, time.Now().Format("15:04:05")))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "[%s] %s", c.paint(color, fmt.Sprintf("%-5s", level)), msg)

	if len(all) > 0 {
		parts := make([]string, 0, len(all))
		for _, f := range all {
			parts = append(parts, fmt.Sprintf("%s=%v", f.Key, f.Value))
		}
		b.WriteByte(' ')
		b.WriteString(c.paint(colorGray, "{"+strings.Join(parts, ", ")+"}"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.output, b.String())
}

// Info logs an informational message.
func (c *ConsoleLogger) Info(msg string, fields ...Field) {
	c.log(LevelInfo, colorBlue, msg, fields...)
}

// Warn logs a warning message.
func (c *ConsoleLogger) Warn(msg string, fields ...Field) {
	c.log(LevelWarn, colorYellow, msg, fields...)
}

// Error logs an error message.
func (c *ConsoleLogger) Error(msg string, fields ...Field) {
	c.log(LevelError, colorRed, msg, fields...)
}

// Debug logs a debug message only if verbose is enabled.
func (c *ConsoleLogger) Debug(msg string, fields ...Field) {
	if c.verbose {
		c.log(LevelDebug, colorGray, msg, fields...)
	}
}

// WithFields returns a new Logger with additional default
// fields.
func (c *ConsoleLogger) WithFields(fields ...Field) Logger {
	child := *c
	child.fields = append(append([]Field(nil), c.fields...), fields...)
	return &child
}

// LogProbeRequest prints a one-line request summary in verbose
// mode.
func (c *ConsoleLogger) LogProbeRequest(request ProbeRequestLog) {
	c.Debug("probe request",
		StringField("request_id", request.RequestID),
		StringField("method", request.Method),
		StringField("url", request.URL),
	)
}

// LogProbeResponse prints a one-line response summary in
// verbose mode.
func (c *ConsoleLogger) LogProbeResponse(response ProbeResponseLog) {
	c.Debug("probe response",
		StringField("request_id", response.RequestID),
		IntField("status", response.StatusCode),
		Float64Field("elapsed_ms", response.ElapsedMs),
	)
}

// Close is a no-op for ConsoleLogger.
func (c *ConsoleLogger) Close() error {
	return nil
}
