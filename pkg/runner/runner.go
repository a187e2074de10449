// Package runner executes contract suites against a live API. A
// run validates every suite up front, then schedules cases on one
// worker pool, sequentially or with bounded parallelism, and
// folds the verdicts into reports.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"digital.vasic.contracts/pkg/contract"
	"digital.vasic.contracts/pkg/logging"
	"digital.vasic.contracts/pkg/metrics"
	"digital.vasic.contracts/pkg/monitor"
	"digital.vasic.contracts/pkg/plugin"
	"digital.vasic.contracts/pkg/probe"
	"digital.vasic.contracts/pkg/report"
	"digital.vasic.contracts/pkg/rule"
)

// Runner defines the interface for suite execution.
type Runner interface {
	// Run executes a single suite.
	Run(
		ctx context.Context,
		suite contract.Suite,
		cfg *contract.RunConfig,
	) (*report.Report, error)

	// RunAll executes suites in order on a shared worker pool
	// and returns one report per suite.
	RunAll(
		ctx context.Context,
		suites []contract.Suite,
		cfg *contract.RunConfig,
	) ([]*report.Report, error)
}

// DefaultRunner is the standard Runner implementation.
type DefaultRunner struct {
	engine    rule.Engine
	prober    probe.Prober
	logger    logging.Logger
	metrics   metrics.RunMetrics
	collector *monitor.EventCollector
	inFlight  atomic.Int64

	plugins     []plugin.Plugin
	pluginsOnce sync.Once
	pluginsErr  error
}

// NewRunner creates a DefaultRunner with the supplied options.
func NewRunner(opts ...RunnerOption) *DefaultRunner {
	r := &DefaultRunner{
		engine:  rule.NewEngine(),
		logger:  logging.NullLogger{},
		metrics: metrics.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes a single suite.
func (r *DefaultRunner) Run(
	ctx context.Context,
	suite contract.Suite,
	cfg *contract.RunConfig,
) (*report.Report, error) {
	reports, err := r.RunAll(ctx, []contract.Suite{suite}, cfg)
	if err != nil {
		return nil, err
	}
	return reports[0], nil
}

// Validate checks cfg and every suite without sending a probe.
// The returned error wraps one *contract.FaultError per problem
// source.
func (r *DefaultRunner) Validate(suites []contract.Suite, cfg *contract.RunConfig) error {
	var errs []error
	if cfg == nil {
		errs = append(errs, &contract.FaultError{Problems: []string{"run config is required"}})
	} else if err := cfg.Validate(); err != nil {
		errs = append(errs, err)
	}
	seen := make(map[string]bool, len(suites))
	for _, s := range suites {
		if err := contract.Validate(s, r.engine); err != nil {
			errs = append(errs, err)
		}
		if s.Name != "" && seen[s.Name] {
			errs = append(errs, &contract.FaultError{
				Suite:    s.Name,
				Problems: []string{"duplicate suite name"},
			})
		}
		seen[s.Name] = true
	}
	return errors.Join(errs...)
}

// RunAll executes suites in order. Harness faults abort the run
// before any probe is sent.
func (r *DefaultRunner) RunAll(
	ctx context.Context,
	suites []contract.Suite,
	cfg *contract.RunConfig,
) ([]*report.Report, error) {
	if err := r.loadPlugins(); err != nil {
		return nil, err
	}
	if err := r.Validate(suites, cfg); err != nil {
		return nil, err
	}

	prober, err := r.buildProber(cfg)
	if err != nil {
		return nil, err
	}

	runID := uuid.Must(uuid.NewV7()).String()
	logger := r.logger.WithFields(logging.StringField("run_id", runID))
	r.metrics.IncrementRunTotal()

	workers := newPool(cfg.MaxWorkers)
	defer workers.close()

	reports := make([]*report.Report, 0, len(suites))
	for _, s := range suites {
		exec := &suiteRun{
			runner: r,
			runID:  runID,
			suite:  s,
			cases:  s.Expanded(),
			cfg:    cfg,
			prober: prober,
			pool:   workers,
			logger: logger.WithFields(logging.StringField("suite", s.Name)),
		}
		reports = append(reports, exec.run(ctx))
	}
	return reports, nil
}

func (r *DefaultRunner) loadPlugins() error {
	r.pluginsOnce.Do(func() {
		if len(r.plugins) == 0 {
			return
		}
		loader := plugin.NewLoader(plugin.NewRegistry())
		if err := loader.LoadAndInit(r.plugins, &plugin.Context{Rules: r.engine}); err != nil {
			r.pluginsErr = fmt.Errorf("plugins: %w", err)
		}
	})
	return r.pluginsErr
}

func (r *DefaultRunner) buildProber(cfg *contract.RunConfig) (probe.Prober, error) {
	if r.prober != nil {
		return r.prober, nil
	}
	tokens, err := probe.NewTokenSource(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("auth: %w", err)
	}

	var secrets []string
	if cfg.Auth != nil {
		secrets = cfg.Auth.Secrets()
	}
	// Credential headers are masked even without auth secrets.
	logger := logging.NewRedactingLogger(r.logger, secrets...)
	opts := []probe.ProbeOption{
		probe.WithHeaders(cfg.Headers),
		probe.WithLogger(logger),
	}
	if tokens != nil {
		opts = append(opts, probe.WithTokenSource(tokens))
	}
	return probe.NewHTTPProbe(cfg.BaseURL, opts...), nil
}

func (r *DefaultRunner) emit(e monitor.CaseEvent) {
	if r.collector != nil {
		r.collector.Emit(e)
	}
}

// suiteRun holds the state of one suite within a run.
type suiteRun struct {
	runner *DefaultRunner
	runID  string
	suite  contract.Suite
	cases  []contract.TestCase
	cfg    *contract.RunConfig
	prober probe.Prober
	pool   *pool
	logger logging.Logger
}

func (s *suiteRun) run(ctx context.Context) *report.Report {
	r := s.runner
	start := time.Now()

	suiteCtx := ctx
	if s.cfg.SuiteDeadline > 0 {
		var cancel context.CancelFunc
		suiteCtx, cancel = context.WithTimeout(ctx, s.cfg.SuiteDeadline)
		defer cancel()
	}

	limit := s.suite.Concurrency.Limit(s.cfg.MaxWorkers)
	s.logger.Info("suite started",
		logging.IntField("cases", len(s.cases)),
		logging.IntField("limit", limit),
	)
	r.emit(monitor.CaseEvent{
		Type: monitor.EventSuiteStarted, RunID: s.runID, Suite: s.suite.Name,
	})

	results := newSlots[contract.CaseResult](len(s.cases))
	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup

dispatch:
	for i, tc := range s.cases {
		select {
		case sem <- struct{}{}:
		case <-suiteCtx.Done():
			break dispatch
		}
		if suiteCtx.Err() != nil {
			<-sem
			break
		}

		wg.Add(1)
		task := func() {
			defer wg.Done()
			defer func() { <-sem }()
			results.set(i, s.runCase(suiteCtx, tc))
		}
		if !s.pool.submit(suiteCtx, task) {
			wg.Done()
			<-sem
			break
		}
	}
	wg.Wait()

	cause := abortCause(suiteCtx)
	final := results.drain(func(i int) contract.CaseResult {
		res := contract.Errored(s.cases[i].Name, cause, 0, 0)
		s.record(res)
		return res
	})

	rep := report.Build(s.suite.Name, final)
	rep.RunID = s.runID
	rep.StartedAt = start
	rep.Duration = time.Since(start)
	if budget := s.suite.Budget(); budget > 0 {
		rep.Budget = budget
		rep.BudgetExceeded = rep.Duration > budget
	}

	s.logger.Info("suite finished",
		logging.IntField("passed", rep.Passed),
		logging.IntField("failed", rep.Failed),
		logging.IntField("errored", rep.Errored),
		logging.DurationField("duration", rep.Duration),
	)
	if rep.BudgetExceeded {
		s.logger.Warn("suite budget exceeded",
			logging.DurationField("budget", rep.Budget),
		)
	}
	r.emit(monitor.CaseEvent{
		Type: monitor.EventSuiteFinished, RunID: s.runID,
		Suite: s.suite.Name, Elapsed: rep.Duration,
	})
	return rep
}

// record publishes a finished case to logs, metrics and the
// monitor.
func (s *suiteRun) record(res contract.CaseResult) {
	r := s.runner
	r.metrics.RecordCase(s.suite.Name, string(res.Status), res.Elapsed)
	for _, o := range res.Outcomes {
		r.metrics.RecordRule(s.suite.Name, string(o.Type), o.Passed)
	}

	fields := []logging.Field{
		logging.StringField("case", res.Case),
		logging.StringField("status", string(res.Status)),
		logging.IntField("attempts", res.Attempts),
		logging.DurationField("elapsed", res.Elapsed),
	}
	msg := ""
	switch res.Status {
	case contract.StatusPassed:
		s.logger.Info("case passed", fields...)
	case contract.StatusFailed:
		msg = fmt.Sprint(res.RuleFailures)
		s.logger.Warn("case failed", append(fields, logging.LogField("rule_failures", res.RuleFailures))...)
	default:
		msg = res.Cause
		s.logger.Error("case errored", append(fields, logging.StringField("cause", res.Cause))...)
	}

	r.emit(monitor.CaseEvent{
		Type:    monitor.EventType(res.Status),
		RunID:   s.runID,
		Suite:   s.suite.Name,
		Case:    res.Case,
		State:   res.Status.State(),
		Message: msg,
		Attempt: res.Attempts,
		Elapsed: res.Elapsed,
	})
}
