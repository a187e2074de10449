package contract

import (
	"fmt"
	"strings"

	"digital.vasic.contracts/pkg/rule"
)

// FaultError reports a malformed suite or run configuration. It
// is raised before any probe is sent.
type FaultError struct {
	// Suite is empty for run configuration faults.
	Suite    string
	Problems []string
}

func (e *FaultError) Error() string {
	subject := "run config"
	if e.Suite != "" {
		subject = fmt.Sprintf("suite %q", e.Suite)
	}
	return fmt.Sprintf("invalid %s: %s", subject, strings.Join(e.Problems, "; "))
}

// RuleValidator checks a rule definition. rule.Engine satisfies
// it.
type RuleValidator interface {
	Validate(def rule.Definition) error
}

// Validate checks suite structure and every rule, collecting all
// problems. It returns nil or a *FaultError.
func Validate(s Suite, rules RuleValidator) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if strings.TrimSpace(s.Name) == "" {
		add("suite name is required")
	}
	switch s.Concurrency.Mode {
	case "", ModeSequential:
	case ModeParallel:
		if s.Concurrency.MaxWorkers < 1 {
			add("parallel concurrency requires max_workers >= 1")
		}
	default:
		add("unknown concurrency mode %q", s.Concurrency.Mode)
	}
	if s.BudgetMillis < 0 {
		add("budget_ms must not be negative")
	}

	for i, tpl := range s.Parametrized {
		where := fmt.Sprintf("parametrized[%d]", i)
		if tpl.Name == "" {
			add("%s: name is required", where)
		}
		if tpl.Param == "" {
			add("%s: param is required", where)
		}
		if len(tpl.Values) == 0 {
			add("%s: values must not be empty", where)
		}
	}

	cases := s.Expanded()
	if len(cases) == 0 {
		add("suite has no cases")
	}

	seen := make(map[string]bool, len(cases))
	for i, tc := range cases {
		where := fmt.Sprintf("cases[%d]", i)
		if tc.Name == "" {
			add("%s: name is required", where)
		} else {
			if seen[tc.Name] {
				add("%s: duplicate case name %q", where, tc.Name)
			}
			seen[tc.Name] = true
			where = fmt.Sprintf("case %q", tc.Name)
		}

		if !tc.Endpoint.Method.Valid() {
			add("%s: unsupported method %q", where, tc.Endpoint.Method)
		}
		if tc.Endpoint.Path == "" {
			add("%s: path is required", where)
		} else if _, err := tc.Endpoint.ResolvePath(); err != nil {
			add("%s: %v", where, err)
		}
		if !tc.Expect.Valid() {
			add("%s: unknown expectation %q", where, tc.Expect)
		}
		if tc.TimeoutMillis < 0 {
			add("%s: timeout_ms must not be negative", where)
		}
		for j, r := range tc.Rules {
			if err := rules.Validate(r); err != nil {
				add("%s: rules[%d]: %v", where, j, err)
			}
		}
	}

	if len(problems) > 0 {
		return &FaultError{Suite: s.Name, Problems: problems}
	}
	return nil
}
