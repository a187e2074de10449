// Package report folds case results into per-suite reports and
// renders them. Aggregation is pure; formatting lives in the
// Reporter implementations.
package report

import (
	"time"

	"digital.vasic.contracts/pkg/contract"
)

// Process exit codes of a contract run.
const (
	// ExitOK means every case passed.
	ExitOK = 0

	// ExitViolation means at least one case failed or errored.
	ExitViolation = 1

	// ExitFault means the harness could not run: invalid suites,
	// bad configuration or an I/O error.
	ExitFault = 2
)

// Report is the outcome of one suite run.
type Report struct {
	RunID   string                `json:"run_id"`
	Suite   string                `json:"suite"`
	Total   int                   `json:"total"`
	Passed  int                   `json:"passed"`
	Failed  int                   `json:"failed"`
	Errored int                   `json:"errored"`
	Results []contract.CaseResult `json:"results"`

	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`

	// Budget is the suite's declared timing budget, zero when
	// none was set. Exceeding it does not change the verdict.
	Budget         time.Duration `json:"budget,omitempty"`
	BudgetExceeded bool          `json:"budget_exceeded,omitempty"`
}

// Build aggregates results in the order given. It does no I/O
// and leaves the run metadata to the caller.
func Build(suite string, results []contract.CaseResult) *Report {
	r := &Report{
		Suite:   suite,
		Total:   len(results),
		Results: make([]contract.CaseResult, len(results)),
	}
	copy(r.Results, results)

	for _, res := range results {
		switch res.Status {
		case contract.StatusPassed:
			r.Passed++
		case contract.StatusFailed:
			r.Failed++
		default:
			r.Errored++
		}
	}
	return r
}

// OK reports whether no case failed or errored.
func (r *Report) OK() bool {
	return r.Failed == 0 && r.Errored == 0
}

// Totals sums counts across reports.
type Totals struct {
	Suites   int           `json:"suites"`
	Total    int           `json:"total"`
	Passed   int           `json:"passed"`
	Failed   int           `json:"failed"`
	Errored  int           `json:"errored"`
	Duration time.Duration `json:"duration"`
}

// Summarize adds up reports. Nil entries are skipped.
func Summarize(reports []*Report) Totals {
	var t Totals
	for _, r := range reports {
		if r == nil {
			continue
		}
		t.Suites++
		t.Total += r.Total
		t.Passed += r.Passed
		t.Failed += r.Failed
		t.Errored += r.Errored
		t.Duration += r.Duration
	}
	return t
}

// ExitCode maps reports to the process exit status: ExitOK iff
// nothing failed or errored across all of them.
func ExitCode(reports ...*Report) int {
	for _, r := range reports {
		if r != nil && !r.OK() {
			return ExitViolation
		}
	}
	return ExitOK
}

// runID returns the first non-empty run ID.
func runID(reports []*Report) string {
	for _, r := range reports {
		if r != nil && r.RunID != "" {
			return r.RunID
		}
	}
	return ""
}

func formatDuration(d time.Duration) string {
	return d.Round(time.Millisecond).String()
}
