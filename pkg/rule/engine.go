package rule

import (
	"fmt"
	"regexp"
	"sync"

	"digital.vasic.contracts/pkg/probe"
)

// Evaluator checks one rule type against a response. It returns
// whether the rule passed and, on failure, the reason.
type Evaluator func(def Definition, resp *probe.Response) (bool, string)

// Engine evaluates rule definitions against normalized responses.
type Engine interface {
	// Evaluate checks a single rule.
	Evaluate(def Definition, resp *probe.Response) Outcome

	// EvaluateAll checks every rule in order. It never stops at
	// the first failure.
	EvaluateAll(defs []Definition, resp *probe.Response) []Outcome

	// Validate reports a malformed definition before any probe
	// is sent.
	Validate(def Definition) error

	// Register adds a custom evaluator for the given rule type.
	// Returns an error if the type is already registered.
	Register(ruleType Type, evaluator Evaluator) error
}

// DefaultEngine is the standard Engine implementation. It is
// safe for concurrent use.
type DefaultEngine struct {
	mu         sync.RWMutex
	evaluators map[Type]Evaluator
	patterns   *patternCache
}

// NewEngine creates a DefaultEngine with the built-in rule types
// registered.
func NewEngine() *DefaultEngine {
	e := &DefaultEngine{
		evaluators: make(map[Type]Evaluator),
		patterns:   &patternCache{compiled: make(map[string]*regexp.Regexp)},
	}
	e.registerDefaults()
	return e
}

func (e *DefaultEngine) registerDefaults() {
	e.evaluators[TypeStatusEquals] = evaluateStatusEquals
	e.evaluators[TypeStatusIn] = evaluateStatusIn
	e.evaluators[TypeContentTypeContains] = evaluateContentTypeContains
	e.evaluators[TypeJSONIsObject] = evaluateJSONIsObject
	e.evaluators[TypeJSONIsArray] = evaluateJSONIsArray
	e.evaluators[TypeFieldsPresent] = evaluateFieldsPresent
	e.evaluators[TypeFieldEquals] = evaluateFieldEquals
	e.evaluators[TypeFieldMatchesPattern] = e.evaluateFieldMatchesPattern
	e.evaluators[TypeFieldOfType] = evaluateFieldOfType
	e.evaluators[TypeResponseTimeUnder] = evaluateResponseTimeUnder
	e.evaluators[TypeHeaderPresent] = evaluateHeaderPresent
	e.evaluators[TypeArrayLengthAtLeast] = evaluateArrayLengthAtLeast
}

// Register adds a custom evaluator for the given rule type.
func (e *DefaultEngine) Register(ruleType Type, evaluator Evaluator) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.evaluators[ruleType]; exists {
		return fmt.Errorf("rule type already registered: %s", ruleType)
	}
	e.evaluators[ruleType] = evaluator
	return nil
}

// HasEvaluator returns true if the given rule type has a
// registered evaluator.
func (e *DefaultEngine) HasEvaluator(ruleType Type) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, exists := e.evaluators[ruleType]
	return exists
}

// Evaluate runs a single rule against resp.
func (e *DefaultEngine) Evaluate(def Definition, resp *probe.Response) Outcome {
	out := Outcome{Type: def.Type, Target: def.Target()}

	e.mu.RLock()
	evaluator, exists := e.evaluators[def.Type]
	e.mu.RUnlock()

	if !exists {
		out.Reason = fmt.Sprintf("unknown rule type: %s", def.Type)
		return out
	}
	if resp == nil {
		out.Reason = "no response"
		return out
	}

	passed, reason := evaluator(def, resp)
	out.Passed = passed
	if !passed {
		out.Reason = reason
		if def.Message != "" {
			out.Reason = def.Message + ": " + reason
		}
	}
	return out
}

// EvaluateAll runs every rule against resp.
func (e *DefaultEngine) EvaluateAll(defs []Definition, resp *probe.Response) []Outcome {
	outcomes := make([]Outcome, 0, len(defs))
	for _, d := range defs {
		outcomes = append(outcomes, e.Evaluate(d, resp))
	}
	return outcomes
}

// Validate checks that def names a registered type and that the
// parameters of built-in types are usable.
func (e *DefaultEngine) Validate(def Definition) error {
	if !e.HasEvaluator(def.Type) {
		return fmt.Errorf("unknown rule type: %q", def.Type)
	}

	switch def.Type {
	case TypeStatusEquals:
		return checkStatus(def.Status)
	case TypeStatusIn:
		if len(def.Statuses) == 0 {
			return fmt.Errorf("%s: statuses must not be empty", def.Type)
		}
		for _, s := range def.Statuses {
			if err := checkStatus(s); err != nil {
				return err
			}
		}
	case TypeContentTypeContains:
		if def.Substring == "" {
			return fmt.Errorf("%s: substring must not be empty", def.Type)
		}
	case TypeJSONIsArray:
		if def.Min < 0 {
			return fmt.Errorf("%s: min must not be negative", def.Type)
		}
	case TypeFieldsPresent:
		if len(def.Paths) == 0 {
			return fmt.Errorf("%s: paths must not be empty", def.Type)
		}
		for _, p := range def.Paths {
			if _, err := ParsePath(p); err != nil {
				return fmt.Errorf("%s: %w", def.Type, err)
			}
		}
	case TypeFieldEquals, TypeFieldOfType, TypeFieldMatchesPattern,
		TypeArrayLengthAtLeast:
		if _, err := ParsePath(def.Path); err != nil {
			return fmt.Errorf("%s: %w", def.Type, err)
		}
		switch def.Type {
		case TypeFieldOfType:
			if !def.Kind.Valid() {
				return fmt.Errorf("%s: unknown kind %q", def.Type, def.Kind)
			}
		case TypeFieldMatchesPattern:
			if _, err := e.patterns.get(def.Pattern); err != nil {
				return fmt.Errorf("%s: invalid pattern: %w", def.Type, err)
			}
		case TypeArrayLengthAtLeast:
			if def.Min < 0 {
				return fmt.Errorf("%s: min must not be negative", def.Type)
			}
		}
	case TypeResponseTimeUnder:
		if def.Millis <= 0 {
			return fmt.Errorf("%s: millis must be positive", def.Type)
		}
	case TypeHeaderPresent:
		if def.Header == "" {
			return fmt.Errorf("%s: header must not be empty", def.Type)
		}
	}
	return nil
}

func checkStatus(code int) error {
	if code < 100 || code > 599 {
		return fmt.Errorf("invalid status code: %d", code)
	}
	return nil
}

// patternCache compiles each pattern once, anchored so it must
// match the whole value.
type patternCache struct {
	mu       sync.Mutex
	compiled map[string]*regexp.Regexp
}

func (c *patternCache) get(pattern string) (*regexp.Regexp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if re, ok := c.compiled[pattern]; ok {
		return re, nil
	}
	re, err := regexp.Compile(Anchor(pattern))
	if err != nil {
		return nil, err
	}
	c.compiled[pattern] = re
	return re, nil
}

// Anchor wraps pattern so that it only matches a full string.
func Anchor(pattern string) string {
	return `^(?:` + pattern + `)$`
}
