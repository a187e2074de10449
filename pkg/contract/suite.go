// Package contract defines test cases, suites and the verdict
// types produced when a suite runs against a live API.
package contract

import (
	"time"

	"digital.vasic.contracts/pkg/probe"
	"digital.vasic.contracts/pkg/rule"
)

// Expectation states whether a case should satisfy its rules.
type Expectation string

// Expectations.
const (
	// ExpectPass means every rule must pass.
	ExpectPass Expectation = "pass"

	// ExpectFailure means at least one rule must fail. It is
	// used to check that the API rejects bad input.
	ExpectFailure Expectation = "expected_failure"
)

// Valid reports whether e is a known expectation. The empty
// value reads as ExpectPass.
func (e Expectation) Valid() bool {
	switch e {
	case "", ExpectPass, ExpectFailure:
		return true
	}
	return false
}

// TestCase is one request plus the rules its response must
// satisfy.
type TestCase struct {
	Name     string            `json:"name" yaml:"name"`
	Endpoint probe.Endpoint    `json:"request" yaml:"request"`
	Rules    []rule.Definition `json:"rules" yaml:"rules"`
	Expect   Expectation       `json:"expect,omitempty" yaml:"expect,omitempty"`

	// TimeoutMillis overrides the run's per-case timeout when
	// positive.
	TimeoutMillis int64 `json:"timeout_ms,omitempty" yaml:"timeout_ms,omitempty"`
}

// Timeout returns the case timeout, falling back to def.
func (tc TestCase) Timeout(def time.Duration) time.Duration {
	if tc.TimeoutMillis > 0 {
		return time.Duration(tc.TimeoutMillis) * time.Millisecond
	}
	return def
}

// Mode selects how a suite's cases are scheduled.
type Mode string

// Scheduling modes.
const (
	ModeSequential Mode = "sequential"
	ModeParallel   Mode = "parallel"
)

// Concurrency describes suite scheduling. The zero value is
// sequential.
type Concurrency struct {
	Mode       Mode `json:"mode,omitempty" yaml:"mode,omitempty"`
	MaxWorkers int  `json:"max_workers,omitempty" yaml:"max_workers,omitempty"`
}

// Sequential runs cases one at a time in declaration order.
func Sequential() Concurrency {
	return Concurrency{Mode: ModeSequential}
}

// Parallel runs up to n cases at once.
func Parallel(n int) Concurrency {
	return Concurrency{Mode: ModeParallel, MaxWorkers: n}
}

// IsParallel reports whether cases may overlap.
func (c Concurrency) IsParallel() bool {
	return c.Mode == ModeParallel
}

// Limit returns how many cases may be in flight given the run's
// worker cap.
func (c Concurrency) Limit(runMax int) int {
	if !c.IsParallel() {
		return 1
	}
	n := c.MaxWorkers
	if runMax < n {
		n = runMax
	}
	if n < 1 {
		n = 1
	}
	return n
}

// Suite is a named collection of cases that run together.
type Suite struct {
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Concurrency Concurrency `json:"concurrency,omitempty" yaml:"concurrency,omitempty"`
	Cases       []TestCase  `json:"cases,omitempty" yaml:"cases,omitempty"`

	// Parametrized templates expand into cases appended after
	// Cases.
	Parametrized []Template `json:"parametrized,omitempty" yaml:"parametrized,omitempty"`

	// BudgetMillis is an optional wall-clock budget for the
	// whole suite. Exceeding it is reported but does not fail
	// the run.
	BudgetMillis int64 `json:"budget_ms,omitempty" yaml:"budget_ms,omitempty"`
}

// Budget returns the suite budget, zero when unset.
func (s Suite) Budget() time.Duration {
	return time.Duration(s.BudgetMillis) * time.Millisecond
}

// Expanded returns the explicit cases followed by every
// parametrized case, in declaration order.
func (s Suite) Expanded() []TestCase {
	out := make([]TestCase, 0, len(s.Cases))
	out = append(out, s.Cases...)
	for _, tpl := range s.Parametrized {
		out = append(out, tpl.Expand()...)
	}
	return out
}
