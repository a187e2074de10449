package logging

// NullLogger discards all log output. Runners fall back to it
// when no logger is configured.
type NullLogger struct{}

// Info is a no-op.
func (NullLogger) Info(_ string, _ ...Field) {}

// Warn is a no-op.
func (NullLogger) Warn(_ string, _ ...Field) {}

// Error is a no-op.
func (NullLogger) Error(_ string, _ ...Field) {}

// Debug is a no-op.
func (NullLogger) Debug(_ string, _ ...Field) {}

// WithFields returns the NullLogger itself.
func (NullLogger) WithFields(_ ...Field) Logger {
	return NullLogger{}
}

// LogProbeRequest is a no-op.
func (NullLogger) LogProbeRequest(_ ProbeRequestLog) {}

// LogProbeResponse is a no-op.
func (NullLogger) LogProbeResponse(_ ProbeResponseLog) {}

// Close is a no-op.
func (NullLogger) Close() error { return nil }
