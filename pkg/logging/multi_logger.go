package logging

import "errors"

// MultiLogger fans out log calls to multiple loggers.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a logger that writes to multiple
// destinations.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	return &MultiLogger{loggers: loggers}
}

// Info logs to all loggers.
func (m *MultiLogger) Info(msg string, fields ...Field) {
	for _, l := range m.loggers {
		l.Info(msg, fields...)
	}
}

// Warn logs to all loggers.
func (m *MultiLogger) Warn(msg string, fields ...Field) {
	for _, l := range m.loggers {
		l.Warn(msg, fields...)
	}
}

// Error logs to all loggers.
func (m *MultiLogger) Error(msg string, fields ...Field) {
	for _, l := range m.loggers {
		l.Error(msg, fields...)
	}
}

// Debug logs to all loggers.
func (m *MultiLogger) Debug(msg string, fields ...Field) {
	for _, l := range m.loggers {
		l.Debug(msg, fields...)
	}
}

// WithFields returns a MultiLogger where each inner logger
// has the given fields applied.
func (m *MultiLogger) WithFields(fields ...Field) Logger {
	inner := make([]Logger, len(m.loggers))
	for i, l := range m.loggers {
		inner[i] = l.WithFields(fields...)
	}
	return &MultiLogger{loggers: inner}
}

// LogProbeRequest logs to all loggers.
func (m *MultiLogger) LogProbeRequest(request ProbeRequestLog) {
	for _, l := range m.loggers {
		l.LogProbeRequest(request)
	}
}

// LogProbeResponse logs to all loggers.
func (m *MultiLogger) LogProbeResponse(response ProbeResponseLog) {
	for _, l := range m.loggers {
		l.LogProbeResponse(response)
	}
}

// Close closes all loggers and joins their errors.
func (m *MultiLogger) Close() error {
	var errs []error
	for _, l := range m.loggers {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
