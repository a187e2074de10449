package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.contracts/pkg/contract"
)

// sampleReports returns two fixed reports used across the
// formatter tests.
func sampleReports() []*Report {
	started := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	users := Build("users", []contract.CaseResult{
		{
			Case: "get_user", Status: contract.StatusPassed,
			StatusCode: 200, Elapsed: 12 * time.Millisecond, Attempts: 1,
		},
		{
			Case: "create_user", Status: contract.StatusFailed,
			StatusCode: 200, Elapsed: 40 * time.Millisecond, Attempts: 1,
			RuleFailures: []string{
				"expected status 201, got 200",
				"path not found: id",
			},
		},
		contract.Errored("slow", "timeout", 2*time.Second, 2),
	})
	users.RunID = "run-1"
	users.StartedAt = started
	users.Duration = 1500 * time.Millisecond
	users.Budget = time.Second
	users.BudgetExceeded = true

	health := Build("health", []contract.CaseResult{
		{
			Case: "ping", Status: contract.StatusPassed,
			StatusCode: 200, Elapsed: 5 * time.Millisecond, Attempts: 1,
		},
	})
	health.RunID = "run-1"
	health.StartedAt = started.Add(2 * time.Second)
	health.Duration = 250 * time.Millisecond

	return []*Report{users, health}
}

func TestBuild_Counts(t *testing.T) {
	results := []contract.CaseResult{
		{Case: "a", Status: contract.StatusPassed},
		{Case: "b", Status: contract.StatusFailed},
		{Case: "c", Status: contract.StatusErrored},
		{Case: "d", Status: contract.StatusPassed},
	}

	r := Build("s", results)
	assert.Equal(t, "s", r.Suite)
	assert.Equal(t, 4, r.Total)
	assert.Equal(t, 2, r.Passed)
	assert.Equal(t, 1, r.Failed)
	assert.Equal(t, 1, r.Errored)
	assert.Equal(t, r.Total, r.Passed+r.Failed+r.Errored)
	assert.Equal(t, r.Total, len(r.Results))
	assert.Empty(t, r.RunID)
	assert.True(t, r.StartedAt.IsZero())
}

func TestBuild_PreservesOrderAndCopies(t *testing.T) {
	results := []contract.CaseResult{
		{Case: "first", Status: contract.StatusPassed},
		{Case: "second", Status: contract.StatusPassed},
	}

	r := Build("s", results)
	results[0].Case = "mutated"

	require.Len(t, r.Results, 2)
	assert.Equal(t, "first", r.Results[0].Case)
	assert.Equal(t, "second", r.Results[1].Case)
}

func TestBuild_Deterministic(t *testing.T) {
	results := []contract.CaseResult{
		{Case: "a", Status: contract.StatusFailed, RuleFailures: []string{"x"}},
		{Case: "b", Status: contract.StatusPassed},
	}
	assert.Equal(t, Build("s", results), Build("s", results))
}

func TestBuild_Empty(t *testing.T) {
	r := Build("empty", nil)
	assert.Equal(t, 0, r.Total)
	assert.NotNil(t, r.Results)
	assert.True(t, r.OK())
}

func TestExitCode(t *testing.T) {
	passed := Build("p", []contract.CaseResult{
		{Case: "a", Status: contract.StatusPassed},
	})
	failed := Build("f", []contract.CaseResult{
		{Case: "a", Status: contract.StatusFailed},
	})
	errored := Build("e", []contract.CaseResult{
		{Case: "a", Status: contract.StatusErrored},
	})

	tests := []struct {
		name    string
		reports []*Report
		want    int
	}{
		{"none", nil, ExitOK},
		{"all passed", []*Report{passed, passed}, ExitOK},
		{"one failed", []*Report{passed, failed}, ExitViolation},
		{"one errored", []*Report{errored, passed}, ExitViolation},
		{"nil entries", []*Report{nil, passed}, ExitOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.reports...))
		})
	}
}

func TestSummarize(t *testing.T) {
	totals := Summarize(append(sampleReports(), nil))
	assert.Equal(t, Totals{
		Suites:   2,
		Total:    4,
		Passed:   2,
		Failed:   1,
		Errored:  1,
		Duration: 1750 * time.Millisecond,
	}, totals)
}
