package contract

import (
	"fmt"
	"net/url"
	"time"

	"digital.vasic.contracts/pkg/probe"
)

// Run configuration defaults.
const (
	DefaultMaxWorkers     = 5
	DefaultPerCaseTimeout = 10 * time.Second
)

// RunConfig holds the settings shared by every suite in a run.
type RunConfig struct {
	// BaseURL is prefixed to every endpoint path.
	BaseURL string `json:"base_url"`

	// MaxWorkers caps concurrent probes across the whole run.
	MaxWorkers int `json:"max_workers"`

	// PerCaseTimeout bounds each attempt of a case.
	PerCaseTimeout time.Duration `json:"per_case_timeout"`

	// SuiteDeadline bounds each suite. Zero means no deadline.
	SuiteDeadline time.Duration `json:"suite_deadline,omitempty"`

	// Retries is how many extra attempts a case gets after a
	// network error. Responses are never retried.
	Retries int `json:"retries"`

	// Headers are sent with every request.
	Headers map[string]string `json:"headers,omitempty"`

	// Auth enables bearer authentication.
	Auth *probe.AuthConfig `json:"auth,omitempty"`
}

// NewRunConfig creates a RunConfig with sensible defaults.
func NewRunConfig(baseURL string) *RunConfig {
	return &RunConfig{
		BaseURL:        baseURL,
		MaxWorkers:     DefaultMaxWorkers,
		PerCaseTimeout: DefaultPerCaseTimeout,
		Headers:        make(map[string]string),
	}
}

// Validate returns a *FaultError listing every problem.
func (c *RunConfig) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.BaseURL == "" {
		add("base_url is required")
	} else if u, err := url.Parse(c.BaseURL); err != nil ||
		(u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		add("base_url must be an absolute http(s) URL: %q", c.BaseURL)
	}
	if c.MaxWorkers < 1 {
		add("max_workers must be >= 1")
	}
	if c.PerCaseTimeout <= 0 {
		add("per_case_timeout must be positive")
	}
	if c.SuiteDeadline < 0 {
		add("suite_deadline must not be negative")
	}
	if c.Retries < 0 {
		add("retries must not be negative")
	}
	if c.Auth != nil {
		if err := c.Auth.Validate(); err != nil {
			add("auth: %v", err)
		}
	}

	if len(problems) > 0 {
		return &FaultError{Problems: problems}
	}
	return nil
}
