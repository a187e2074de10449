package runner

import (
	"digital.vasic.contracts/pkg/logging"
	"digital.vasic.contracts/pkg/metrics"
	"digital.vasic.contracts/pkg/monitor"
	"digital.vasic.contracts/pkg/plugin"
	"digital.vasic.contracts/pkg/probe"
	"digital.vasic.contracts/pkg/rule"
)

// RunnerOption configures a DefaultRunner.
type RunnerOption func(*DefaultRunner)

// WithEngine sets the rule engine used for validation and
// evaluation.
func WithEngine(e rule.Engine) RunnerOption {
	return func(r *DefaultRunner) {
		r.engine = e
	}
}

// WithProber replaces the HTTP probe built from the run config.
func WithProber(p probe.Prober) RunnerOption {
	return func(r *DefaultRunner) {
		r.prober = p
	}
}

// WithLogger sets the logger used by the runner and its probe.
func WithLogger(logger logging.Logger) RunnerOption {
	return func(r *DefaultRunner) {
		r.logger = logger
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m metrics.RunMetrics) RunnerOption {
	return func(r *DefaultRunner) {
		r.metrics = m
	}
}

// WithCollector publishes case events to a live monitor.
func WithCollector(c *monitor.EventCollector) RunnerOption {
	return func(r *DefaultRunner) {
		r.collector = c
	}
}

// WithPlugins registers rule plugins on the engine before the
// first run. A plugin that fails to initialize faults every run.
func WithPlugins(plugins ...plugin.Plugin) RunnerOption {
	return func(r *DefaultRunner) {
		r.plugins = append(r.plugins, plugins...)
	}
}
