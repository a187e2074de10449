package contract

import (
	"time"

	"digital.vasic.contracts/pkg/rule"
)

// Status is the final verdict of a case.
type Status string

// Case statuses.
const (
	// StatusPassed means the response met the expectation.
	StatusPassed Status = "passed"

	// StatusFailed means a response arrived but violated the
	// contract.
	StatusFailed Status = "failed"

	// StatusErrored means no usable response was obtained:
	// network failure, timeout, deadline or a harness panic.
	StatusErrored Status = "errored"
)

// State tracks a case through a run. A case is pending until a
// request goes out, dispatched while it is in flight and pending
// again while it waits for a retry. It ends evaluated when a
// response was judged, errored otherwise.
type State string

// Case states.
const (
	StatePending    State = "pending"
	StateDispatched State = "dispatched"
	StateEvaluated  State = "evaluated"
	StateErrored    State = "errored"
)

// State returns the terminal state a case with status s ends in.
func (s Status) State() State {
	if s == StatusErrored {
		return StateErrored
	}
	return StateEvaluated
}

// ExpectedFailureReason is recorded when an expected_failure case
// sees every rule pass.
const ExpectedFailureReason = "expected failure but all rules passed"

// CaseResult is the outcome of one case.
type CaseResult struct {
	Case         string         `json:"case"`
	Status       Status         `json:"status"`
	RuleFailures []string       `json:"rule_failures,omitempty"`
	Outcomes     []rule.Outcome `json:"outcomes,omitempty"`

	// Cause explains an errored case.
	Cause string `json:"cause,omitempty"`

	// StatusCode of the response that was evaluated.
	StatusCode int `json:"status_code,omitempty"`

	// Elapsed is the probe time of the evaluated response, or
	// the time spent before the case errored.
	Elapsed  time.Duration `json:"elapsed"`
	Attempts int           `json:"attempts"`
}

// Judge turns rule outcomes into a verdict under expect.
func Judge(outcomes []rule.Outcome, expect Expectation) (Status, []string) {
	failures := rule.Failures(outcomes)
	if expect == ExpectFailure {
		if len(failures) == 0 {
			return StatusFailed, []string{ExpectedFailureReason}
		}
		return StatusPassed, nil
	}
	if len(failures) > 0 {
		return StatusFailed, failures
	}
	return StatusPassed, nil
}

// Errored builds the result of a case that produced no usable
// response.
func Errored(name, cause string, elapsed time.Duration, attempts int) CaseResult {
	return CaseResult{
		Case:     name,
		Status:   StatusErrored,
		Cause:    cause,
		Elapsed:  elapsed,
		Attempts: attempts,
	}
}
