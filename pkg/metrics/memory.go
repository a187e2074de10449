package metrics

import (
	"sort"
	"sync"
	"time"
)

// InMemoryMetrics implements RunMetrics with counters held in
// memory. It is safe for concurrent use.
type InMemoryMetrics struct {
	mu        sync.Mutex
	cases     map[string]int
	rules     map[string]int
	retries   map[string]int
	durations map[string][]time.Duration
	runTotal  int
	inFlight  int
	peak      int
}

// NewInMemoryMetrics creates a new InMemoryMetrics instance.
func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		cases:     make(map[string]int),
		rules:     make(map[string]int),
		retries:   make(map[string]int),
		durations: make(map[string][]time.Duration),
	}
}

func (m *InMemoryMetrics) RecordCase(suite, status string, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cases[suite+":"+status]++
	m.durations[suite] = append(m.durations[suite], elapsed)
}

func (m *InMemoryMetrics) RecordRule(suite, ruleType string, passed bool) {
	status := "failed"
	if passed {
		status = "passed"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[suite+":"+ruleType+":"+status]++
}

func (m *InMemoryMetrics) RecordRetry(suite string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.retries[suite]++
}

func (m *InMemoryMetrics) IncrementRunTotal() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runTotal++
}

func (m *InMemoryMetrics) SetInFlight(count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = count
	if count > m.peak {
		m.peak = count
	}
}

// CaseCount returns the count for a suite+status combination.
func (m *InMemoryMetrics) CaseCount(suite, status string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cases[suite+":"+status]
}

// RuleCount returns how often a rule type passed or failed in a
// suite.
func (m *InMemoryMetrics) RuleCount(suite, ruleType string, passed bool) int {
	status := "failed"
	if passed {
		status = "passed"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.rules[suite+":"+ruleType+":"+status]
}

// RetryCount returns the retries recorded for a suite.
func (m *InMemoryMetrics) RetryCount(suite string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.retries[suite]
}

// RunTotal returns the total number of runs.
func (m *InMemoryMetrics) RunTotal() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runTotal
}

// InFlight returns the current in-flight gauge.
func (m *InMemoryMetrics) InFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.inFlight
}

// PeakInFlight returns the highest in-flight value seen.
func (m *InMemoryMetrics) PeakInFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peak
}

// Percentile returns the p-th percentile (0-100) of case
// durations recorded for suite, or zero when none exist.
func (m *InMemoryMetrics) Percentile(suite string, p float64) time.Duration {
	m.mu.Lock()
	ds := append([]time.Duration(nil), m.durations[suite]...)
	m.mu.Unlock()

	if len(ds) == 0 {
		return 0
	}
	sort.Slice(ds, func(i, j int) bool { return ds[i] < ds[j] })
	idx := int(p / 100 * float64(len(ds)-1))
	if idx < 0 {
		idx = 0
	}
	if idx >= len(ds) {
		idx = len(ds) - 1
	}
	return ds[idx]
}
