// Package monitor collects case lifecycle events during a run and
// serves them to live dashboards over SSE and WebSocket.
package monitor

import (
	"time"

	"digital.vasic.contracts/pkg/contract"
)

// EventType represents the type of run event.
type EventType string

const (
	EventSuiteStarted  EventType = "suite_started"
	EventSuiteFinished EventType = "suite_finished"
	EventDispatched    EventType = "dispatched"
	EventPassed        EventType = "passed"
	EventFailed        EventType = "failed"
	EventErrored       EventType = "errored"
	EventRetry         EventType = "retry"
)

// CaseEvent represents a lifecycle event of a case or suite.
type CaseEvent struct {
	Type      EventType      `json:"type"`
	RunID     string         `json:"run_id,omitempty"`
	Suite     string         `json:"suite"`
	Case      string         `json:"case,omitempty"`
	State     contract.State `json:"state,omitempty"`
	Message   string         `json:"message,omitempty"`
	Attempt   int            `json:"attempt,omitempty"`
	Elapsed   time.Duration  `json:"elapsed,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
}

// Key identifies the case an event belongs to.
func (e CaseEvent) Key() string {
	return e.Suite + "/" + e.Case
}

// IsTerminal reports whether the event closes a case.
func (e CaseEvent) IsTerminal() bool {
	switch e.Type {
	case EventPassed, EventFailed, EventErrored:
		return true
	}
	return false
}
