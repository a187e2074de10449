package logging

import "strings"

// RedactingLogger is a decorator that redacts sensitive strings
// from log messages and field values before passing them to the
// inner logger. Probe headers carrying credentials are masked
// regardless of the configured secrets.
type RedactingLogger struct {
	inner   Logger
	secrets []string
}

// NewRedactingLogger creates a logger that redacts the given
// secrets from all messages and string field values. Secrets of
// four characters or fewer are ignored.
func NewRedactingLogger(inner Logger, secrets ...string) *RedactingLogger {
	kept := make([]string, 0, len(secrets))
	for _, s := range secrets {
		if len(s) > 4 {
			kept = append(kept, s)
		}
	}
	return &RedactingLogger{inner: inner, secrets: kept}
}

func (r *RedactingLogger) redact(msg string) string {
	for _, secret := range r.secrets {
		msg = strings.ReplaceAll(msg, secret, MaskSecret(secret))
	}
	return msg
}

// MaskSecret keeps the first four characters and stars the rest.
func MaskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return s[:4] + strings.Repeat("*", len(s)-4)
}

func (r *RedactingLogger) redactFields(fields []Field) []Field {
	result := make([]Field, len(fields))
	for i, f := range fields {
		if str, ok := f.Value.(string); ok {
			f.Value = r.redact(str)
		}
		result[i] = f
	}
	return result
}

// Info logs a redacted informational message.
func (r *RedactingLogger) Info(msg string, fields ...Field) {
	r.inner.Info(r.redact(msg), r.redactFields(fields)...)
}

// Warn logs a redacted warning message.
func (r *RedactingLogger) Warn(msg string, fields ...Field) {
	r.inner.Warn(r.redact(msg), r.redactFields(fields)...)
}

// Error logs a redacted error message.
func (r *RedactingLogger) Error(msg string, fields ...Field) {
	r.inner.Error(r.redact(msg), r.redactFields(fields)...)
}

// Debug logs a redacted debug message.
func (r *RedactingLogger) Debug(msg string, fields ...Field) {
	r.inner.Debug(r.redact(msg), r.redactFields(fields)...)
}

// WithFields returns a RedactingLogger wrapping a new inner
// logger with the given fields applied.
func (r *RedactingLogger) WithFields(fields ...Field) Logger {
	return &RedactingLogger{
		inner:   r.inner.WithFields(r.redactFields(fields)...),
		secrets: r.secrets,
	}
}

// LogProbeRequest logs a probe request with redacted headers,
// URL and body.
func (r *RedactingLogger) LogProbeRequest(request ProbeRequestLog) {
	request.Headers = r.redactHeaders(request.Headers)
	request.URL = r.redact(request.URL)
	request.Body = r.redact(request.Body)
	r.inner.LogProbeRequest(request)
}

// LogProbeResponse logs a probe response with redacted headers
// and body preview.
func (r *RedactingLogger) LogProbeResponse(response ProbeResponseLog) {
	response.Headers = r.redactHeaders(response.Headers)
	response.BodyPreview = r.redact(response.BodyPreview)
	r.inner.LogProbeResponse(response)
}

// Close closes the inner logger.
func (r *RedactingLogger) Close() error {
	return r.inner.Close()
}

var sensitiveHeaders = map[string]bool{
	"authorization":       true,
	"proxy-authorization": true,
	"x-api-key":           true,
	"api-key":             true,
	"x-auth-token":        true,
	"x-access-token":      true,
	"cookie":              true,
	"set-cookie":          true,
}

func (r *RedactingLogger) redactHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	result := make(map[string]string, len(headers))
	for k, v := range headers {
		if sensitiveHeaders[strings.ToLower(k)] {
			result[k] = "****"
		} else {
			result[k] = r.redact(v)
		}
	}
	return result
}
