package monitor

import (
	"sort"
	"sync"
	"time"

	"digital.vasic.contracts/pkg/contract"
)

// DashboardData provides a real-time snapshot of run state.
type DashboardData struct {
	mu        sync.RWMutex
	runID     string
	startTime time.Time
	status    string
	cases     map[string]CaseState
	order     []string
}

// CaseState represents the current state of a case.
type CaseState struct {
	Suite    string         `json:"suite"`
	Case     string         `json:"case"`
	Status   string         `json:"status"`
	State    contract.State `json:"state,omitempty"`
	Attempts int            `json:"attempts,omitempty"`
	Elapsed  time.Duration  `json:"elapsed,omitempty"`
	Message  string         `json:"message,omitempty"`
}

// DashboardSummary holds aggregate stats for the dashboard.
type DashboardSummary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Errored  int     `json:"errored"`
	Running  int     `json:"running"`
	PassRate float64 `json:"pass_rate"`
	Elapsed  string  `json:"elapsed"`
}

// DashboardSnapshot is a point-in-time copy of the dashboard.
type DashboardSnapshot struct {
	RunID     string           `json:"run_id"`
	StartTime time.Time        `json:"start_time"`
	Status    string           `json:"status"`
	Suites    []string         `json:"suites"`
	Cases     []CaseState      `json:"cases"`
	Summary   DashboardSummary `json:"summary"`
}

// NewDashboardData creates a new dashboard data instance.
func NewDashboardData(runID string) *DashboardData {
	return &DashboardData{
		runID:     runID,
		startTime: time.Now(),
		status:    "running",
		cases:     make(map[string]CaseState),
	}
}

// UpdateFromEvent updates dashboard state from a case event.
func (d *DashboardData) UpdateFromEvent(event CaseEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if event.RunID != "" {
		d.runID = event.RunID
	}
	if event.Case == "" {
		return
	}

	key := event.Key()
	state, exists := d.cases[key]
	if !exists {
		state = CaseState{Suite: event.Suite, Case: event.Case, State: contract.StatePending}
		d.order = append(d.order, key)
	}
	if event.State != "" {
		state.State = event.State
	}

	switch event.Type {
	case EventDispatched:
		state.Status = "running"
		state.Attempts = event.Attempt
	case EventRetry:
		state.Attempts = event.Attempt
		state.Message = event.Message
	case EventPassed, EventFailed, EventErrored:
		state.Status = string(event.Type)
		state.Elapsed = event.Elapsed
		state.Message = event.Message
	}
	d.cases[key] = state
}

// MarkComplete sets the overall run status.
func (d *DashboardData) MarkComplete(status string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.status = status
}

// Snapshot returns a copy of the current dashboard state.
func (d *DashboardData) Snapshot() DashboardSnapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()

	snap := DashboardSnapshot{
		RunID:     d.runID,
		StartTime: d.startTime,
		Status:    d.status,
		Cases:     make([]CaseState, 0, len(d.order)),
	}

	suites := map[string]bool{}
	for _, key := range d.order {
		cs := d.cases[key]
		snap.Cases = append(snap.Cases, cs)
		suites[cs.Suite] = true

		snap.Summary.Total++
		switch cs.Status {
		case "passed":
			snap.Summary.Passed++
		case "failed":
			snap.Summary.Failed++
		case "errored":
			snap.Summary.Errored++
		case "running":
			snap.Summary.Running++
		}
	}
	for s := range suites {
		snap.Suites = append(snap.Suites, s)
	}
	sort.Strings(snap.Suites)

	if done := snap.Summary.Passed + snap.Summary.Failed + snap.Summary.Errored; done > 0 {
		snap.Summary.PassRate = float64(snap.Summary.Passed) / float64(done)
	}
	snap.Summary.Elapsed = time.Since(d.startTime).Round(time.Millisecond).String()
	return snap
}
