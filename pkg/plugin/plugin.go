// Package plugin extends a rule engine with rule types defined
// outside this module. A plugin registers its evaluators when it
// is initialized; suites can then name those types like any
// built-in rule.
package plugin

import (
	"fmt"
	"sync"

	"digital.vasic.contracts/pkg/rule"
)

// Plugin is a named set of rule extensions.
type Plugin interface {
	// Name returns the plugin's unique name.
	Name() string
	// Version returns the plugin's version string.
	Version() string
	// Init registers the plugin's rules on ctx.Rules.
	Init(ctx *Context) error
}

// Context is handed to every plugin during initialization.
type Context struct {
	Rules  rule.Engine
	Config map[string]any
}

// Registry keeps plugins in registration order and remembers
// which ones were initialized.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	order   []string
	loaded  map[string]bool
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins: make(map[string]Plugin),
		loaded:  make(map[string]bool),
	}
}

// Register adds a plugin. Names must be unique.
func (r *Registry) Register(p Plugin) error {
	if p == nil {
		return fmt.Errorf("plugin cannot be nil")
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("plugin name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[name]; exists {
		return fmt.Errorf("plugin %q already registered", name)
	}
	r.plugins[name] = p
	r.order = append(r.order, name)
	return nil
}

// Get retrieves a registered plugin by name.
func (r *Registry) Get(name string) (Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[name]
	return p, ok
}

// InitAll initializes, in registration order, every plugin not
// yet loaded. It stops at the first failure.
func (r *Registry) InitAll(ctx *Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, name := range r.order {
		if err := r.initLocked(name, ctx); err != nil {
			return err
		}
	}
	return nil
}

// Init initializes a single plugin. Loaded plugins are skipped.
func (r *Registry) Init(name string, ctx *Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.plugins[name]; !ok {
		return fmt.Errorf("plugin %q not found", name)
	}
	return r.initLocked(name, ctx)
}

func (r *Registry) initLocked(name string, ctx *Context) error {
	if r.loaded[name] {
		return nil
	}
	if ctx == nil || ctx.Rules == nil {
		return fmt.Errorf("init plugin %q: no rule engine", name)
	}
	if err := r.plugins[name].Init(ctx); err != nil {
		return fmt.Errorf("init plugin %q: %w", name, err)
	}
	r.loaded[name] = true
	return nil
}

// List returns the plugin names in registration order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

// IsLoaded reports whether a plugin has been initialized.
func (r *Registry) IsLoaded(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded[name]
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}
