package probe

import (
	"context"
	"errors"
	"fmt"
)

// ErrorKind classifies a failed probe.
type ErrorKind string

// Error kinds.
const (
	// KindNetwork covers connection refused, DNS failure,
	// transport timeouts and broken reads.
	KindNetwork ErrorKind = "network"

	// KindRequest means the request could not be built.
	KindRequest ErrorKind = "request"
)

// Error is returned when no HTTP response was received. A
// response with any status code is never an Error.
type Error struct {
	Kind ErrorKind
	URL  string
	Err  error
}

func (e *Error) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s: %v", e.Kind, e.URL, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Timeout reports whether the failure was a deadline expiring.
func (e *Error) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Err, &te) && te.Timeout()
}

// IsNetwork reports whether err is a network-level probe error.
func IsNetwork(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Kind == KindNetwork
}
