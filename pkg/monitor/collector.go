package monitor

import (
	"sync"
	"time"
)

// EventCollector captures run events and keeps running totals.
// It is safe for concurrent use.
type EventCollector struct {
	mu       sync.RWMutex
	events   []CaseEvent
	handlers []func(CaseEvent)
	stats    CollectorStats
	inFlight map[string]bool
}

// CollectorStats holds aggregate statistics.
type CollectorStats struct {
	Cases     int           `json:"cases"`
	Passed    int           `json:"passed"`
	Failed    int           `json:"failed"`
	Errored   int           `json:"errored"`
	Retries   int           `json:"retries"`
	InFlight  int           `json:"in_flight"`
	StartTime time.Time     `json:"start_time"`
	Duration  time.Duration `json:"duration"`
}

// NewEventCollector creates a new event collector.
func NewEventCollector() *EventCollector {
	return &EventCollector{
		events:   make([]CaseEvent, 0, 64),
		stats:    CollectorStats{StartTime: time.Now()},
		inFlight: make(map[string]bool),
	}
}

// OnEvent registers a handler to be called for each event.
// Handlers run on the emitting goroutine.
func (c *EventCollector) OnEvent(handler func(CaseEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Emit records an event and notifies all handlers.
func (c *EventCollector) Emit(event CaseEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	c.mu.Lock()
	c.events = append(c.events, event)
	switch event.Type {
	case EventDispatched:
		c.inFlight[event.Key()] = true
	case EventRetry:
		c.stats.Retries++
	case EventPassed:
		c.stats.Passed++
	case EventFailed:
		c.stats.Failed++
	case EventErrored:
		c.stats.Errored++
	}
	if event.IsTerminal() {
		c.stats.Cases++
		delete(c.inFlight, event.Key())
	}
	c.stats.InFlight = len(c.inFlight)
	handlers := make([]func(CaseEvent), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// Events returns a copy of all collected events.
func (c *EventCollector) Events() []CaseEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]CaseEvent, len(c.events))
	copy(result, c.events)
	return result
}

// Stats returns the current aggregate statistics.
func (c *EventCollector) Stats() CollectorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Duration = time.Since(s.StartTime)
	return s
}

// Reset clears all collected events and statistics.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = c.events[:0]
	c.stats = CollectorStats{StartTime: time.Now()}
	c.inFlight = make(map[string]bool)
}
