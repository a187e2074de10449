// Package metrics records run, case and rule counters for
// contract runs.
package metrics

import "time"

// RunMetrics defines the interface for recording run metrics.
type RunMetrics interface {
	// RecordCase records a finished case.
	RecordCase(suite, status string, elapsed time.Duration)
	// RecordRule records one rule evaluation.
	RecordRule(suite, ruleType string, passed bool)
	// RecordRetry records an extra attempt after a network
	// error.
	RecordRetry(suite string)
	// IncrementRunTotal increments the total run counter.
	IncrementRunTotal()
	// SetInFlight sets the gauge of probes in flight.
	SetInFlight(count int)
}

// NoopMetrics is a no-op implementation of RunMetrics used when
// metrics collection is disabled.
type NoopMetrics struct{}

func (NoopMetrics) RecordCase(_, _ string, _ time.Duration) {}
func (NoopMetrics) RecordRule(_, _ string, _ bool)          {}
func (NoopMetrics) RecordRetry(_ string)                    {}
func (NoopMetrics) IncrementRunTotal()                      {}
func (NoopMetrics) SetInFlight(_ int)                       {}
