package plugin

import (
	"fmt"
	"sort"

	"digital.vasic.contracts/pkg/rule"
)

// Loader registers and initializes plugins in one step.
type Loader struct {
	registry *Registry
}

// NewLoader creates a loader backed by registry.
func NewLoader(registry *Registry) *Loader {
	return &Loader{registry: registry}
}

// LoadAndInit registers every plugin, then initializes them all.
func (l *Loader) LoadAndInit(plugins []Plugin, ctx *Context) error {
	for _, p := range plugins {
		if err := l.registry.Register(p); err != nil {
			return fmt.Errorf("load plugin: %w", err)
		}
	}
	return l.registry.InitAll(ctx)
}

// LoadOne registers and initializes a single plugin.
func (l *Loader) LoadOne(p Plugin, ctx *Context) error {
	if err := l.registry.Register(p); err != nil {
		return fmt.Errorf("load plugin: %w", err)
	}
	return l.registry.Init(p.Name(), ctx)
}

// RulePack is a Plugin that registers a fixed set of evaluators.
type RulePack struct {
	name       string
	version    string
	evaluators map[rule.Type]rule.Evaluator
}

// NewRulePack creates an empty pack.
func NewRulePack(name, version string) *RulePack {
	return &RulePack{
		name:       name,
		version:    version,
		evaluators: make(map[rule.Type]rule.Evaluator),
	}
}

// Add puts an evaluator for ruleType in the pack.
func (p *RulePack) Add(ruleType rule.Type, ev rule.Evaluator) *RulePack {
	p.evaluators[ruleType] = ev
	return p
}

func (p *RulePack) Name() string    { return p.name }
func (p *RulePack) Version() string { return p.version }

// Types returns the rule types of the pack, sorted.
func (p *RulePack) Types() []rule.Type {
	types := make([]rule.Type, 0, len(p.evaluators))
	for t := range p.evaluators {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// Init registers every evaluator on ctx.Rules. A type that is
// already registered fails the whole pack.
func (p *RulePack) Init(ctx *Context) error {
	for _, t := range p.Types() {
		if err := ctx.Rules.Register(t, p.evaluators[t]); err != nil {
			return err
		}
	}
	return nil
}
