// Package loader reads contract suites from JSON, YAML and CUE
// files.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"digital.vasic.contracts/pkg/contract"
)

// Catalog collects suites loaded from one or more files. Suite
// names are unique across the catalog.
type Catalog struct {
	mu      sync.RWMutex
	suites  map[string]contract.Suite
	order   []string
	origin  map[string]string
	sources []string
}

// New creates an empty Catalog.
func New() *Catalog {
	return &Catalog{
		suites: make(map[string]contract.Suite),
		origin: make(map[string]string),
	}
}

// LoadFile adds the suites of one file. Nothing is added when
// the file fails to decode or repeats a known suite name.
func (c *Catalog) LoadFile(path string) error {
	file, err := ReadFile(path)
	if err != nil {
		return err
	}
	if file.Version != "" && file.Version != SupportedVersion {
		return fmt.Errorf(
			"suite file %s: unsupported version %q", path, file.Version,
		)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	seen := make(map[string]bool, len(file.Suites))
	for i, s := range file.Suites {
		if s.Name == "" {
			return fmt.Errorf("suite at index %d in %s has no name", i, path)
		}
		if prev, ok := c.origin[s.Name]; ok {
			return fmt.Errorf(
				"duplicate suite %q in %s (first defined in %s)",
				s.Name, path, prev,
			)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate suite %q in %s", s.Name, path)
		}
		seen[s.Name] = true
	}

	for _, s := range file.Suites {
		c.suites[s.Name] = s
		c.origin[s.Name] = path
		c.order = append(c.order, s.Name)
	}
	c.sources = append(c.sources, path)
	return nil
}

// LoadDir loads every suite file in dir in lexical order.
// Subdirectories are not descended into.
func (c *Catalog) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("read suite directory %s: %w", dir, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !IsSuiteFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		if err := c.LoadFile(filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}

// Load loads each path as a file or a directory.
func (c *Catalog) Load(paths ...string) error {
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return fmt.Errorf("stat %s: %w", p, err)
		}
		if info.IsDir() {
			err = c.LoadDir(p)
		} else {
			err = c.LoadFile(p)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Get retrieves a suite by name.
func (c *Catalog) Get(name string) (contract.Suite, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.suites[name]
	return s, ok
}

// All returns the suites in load order.
func (c *Catalog) All() []contract.Suite {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]contract.Suite, 0, len(c.order))
	for _, name := range c.order {
		result = append(result, c.suites[name])
	}
	return result
}

// Select returns the named suites in the order given. An unknown
// name is an error.
func (c *Catalog) Select(names ...string) ([]contract.Suite, error) {
	if len(names) == 0 {
		return c.All(), nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]contract.Suite, 0, len(names))
	for _, name := range names {
		s, ok := c.suites[name]
		if !ok {
			return nil, fmt.Errorf("unknown suite %q", name)
		}
		result = append(result, s)
	}
	return result, nil
}

// Count returns the number of loaded suites.
func (c *Catalog) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Sources returns the list of loaded file paths.
func (c *Catalog) Sources() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]string, len(c.sources))
	copy(result, c.sources)
	return result
}
