package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digital.vasic.contracts/pkg/contract"
	"digital.vasic.contracts/pkg/logging"
	"digital.vasic.contracts/pkg/monitor"
	"digital.vasic.contracts/pkg/probe"
)

// Causes recorded on errored cases.
var (
	errCaseTimeout   = errors.New("timeout")
	errSuiteDeadline = errors.New("suite deadline exceeded")
	errCanceled      = errors.New("run canceled")
)

// panicError carries a recovered panic value.
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// abortCause explains why ctx ended.
func abortCause(ctx context.Context) string {
	return ctxError(ctx).Error()
}

func ctxError(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return errCanceled
	}
	return errSuiteDeadline
}

// runCase probes tc, retrying network errors up to cfg.Retries
// times, and judges the response.
func (s *suiteRun) runCase(ctx context.Context, tc contract.TestCase) (res contract.CaseResult) {
	r := s.runner
	start := time.Now()
	attempts := 0

	defer func() {
		if v := recover(); v != nil {
			res = contract.Errored(tc.Name, (&panicError{v}).Error(), time.Since(start), attempts)
		}
		s.record(res)
	}()

	timeout := tc.Timeout(s.cfg.PerCaseTimeout)
	var resp *probe.Response
	for {
		attempts++
		r.emit(monitor.CaseEvent{
			Type: monitor.EventDispatched, RunID: s.runID,
			Suite: s.suite.Name, Case: tc.Name, Attempt: attempts,
			State: contract.StateDispatched,
		})

		var err error
		resp, err = s.probeOnce(ctx, tc.Endpoint, timeout)
		if err == nil {
			break
		}
		if s.retryable(ctx, err, attempts) {
			r.metrics.RecordRetry(s.suite.Name)
			s.logger.Warn("retrying after network error",
				logging.StringField("case", tc.Name),
				logging.IntField("attempt", attempts),
				logging.ErrorField(err),
			)
			r.emit(monitor.CaseEvent{
				Type: monitor.EventRetry, RunID: s.runID, Suite: s.suite.Name,
				Case: tc.Name, Attempt: attempts + 1, Message: err.Error(),
				State: contract.StatePending,
			})
			continue
		}
		return contract.Errored(tc.Name, err.Error(), time.Since(start), attempts)
	}

	outcomes := r.engine.EvaluateAll(tc.Rules, resp)
	status, failures := contract.Judge(outcomes, tc.Expect)
	return contract.CaseResult{
		Case:         tc.Name,
		Status:       status,
		RuleFailures: failures,
		Outcomes:     outcomes,
		StatusCode:   resp.StatusCode,
		Elapsed:      resp.Elapsed,
		Attempts:     attempts,
	}
}

// retryable reports whether another attempt is allowed. Only
// transport failures are retried; timeouts and deadlines are
// final.
func (s *suiteRun) retryable(ctx context.Context, err error, attempts int) bool {
	if attempts > s.cfg.Retries || ctx.Err() != nil {
		return false
	}
	if errors.Is(err, errCaseTimeout) {
		return false
	}
	return probe.IsNetwork(err)
}

type probeResult struct {
	resp *probe.Response
	err  error
}

// probeOnce sends one request bounded by timeout. It returns as
// soon as the deadline passes even if the prober ignores its
// context; a late response is discarded.
func (s *suiteRun) probeOnce(
	ctx context.Context, ep probe.Endpoint, timeout time.Duration,
) (*probe.Response, error) {
	r := s.runner
	caseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r.metrics.SetInFlight(int(r.inFlight.Add(1)))
	defer func() { r.metrics.SetInFlight(int(r.inFlight.Add(-1))) }()

	done := make(chan probeResult, 1)
	go func() {
		defer func() {
			if v := recover(); v != nil {
				done <- probeResult{err: &panicError{v}}
			}
		}()
		resp, err := s.prober.Send(caseCtx, ep, timeout)
		done <- probeResult{resp: resp, err: err}
	}()

	select {
	case res := <-done:
		if res.err != nil && caseCtx.Err() != nil {
			return nil, expiry(ctx)
		}
		if res.err == nil && res.resp == nil {
			return nil, errors.New("prober returned no response")
		}
		return res.resp, res.err
	case <-caseCtx.Done():
		return nil, expiry(ctx)
	}
}

// expiry classifies a case context that ended: the suite's
// context ending wins over the per-case timeout.
func expiry(suiteCtx context.Context) error {
	if suiteCtx.Err() != nil {
		return ctxError(suiteCtx)
	}
	return errCaseTimeout
}
