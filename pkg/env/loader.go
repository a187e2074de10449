// Package env reads harness settings from .env files and the
// process environment. Process variables take precedence over
// values loaded from files.
package env

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"sync"
)

// Loader defines the interface for environment variable management.
type Loader interface {
	// Load reads environment variables from a .env file.
	Load(path string) error
	// Get retrieves an environment variable value.
	Get(key string) string
	// GetRequired retrieves a required environment variable or returns error.
	GetRequired(key string) (string, error)
	// GetWithDefault retrieves an environment variable with a default fallback.
	GetWithDefault(key, defaultValue string) string
	// Set sets an environment variable.
	Set(key, value string) error
	// All returns all loaded environment variables.
	All() map[string]string
}

// DefaultLoader implements Loader with .env file support.
type DefaultLoader struct {
	mu     sync.RWMutex
	vars   map[string]string
	loaded bool
}

// NewLoader creates an empty DefaultLoader.
func NewLoader() *DefaultLoader {
	return &DefaultLoader{
		vars: make(map[string]string),
	}
}

// Load reads KEY=VALUE lines from a .env file. Blank lines and
// comments are skipped. Later files override earlier ones.
func (l *DefaultLoader) Load(path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open env file %s: %w", path, err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		if key == "" {
			continue
		}
		value := strings.TrimSpace(parts[1])
		// Remove surrounding quotes
		value = strings.Trim(value, `"'`)
		l.vars[key] = value
	}

	l.loaded = true
	return scanner.Err()
}

// Get returns the process value of key, falling back to the
// loaded files.
func (l *DefaultLoader) Get(key string) string {
	// OS env takes precedence
	if v := os.Getenv(key); v != "" {
		return v
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.vars[key]
}

func (l *DefaultLoader) GetRequired(key string) (string, error) {
	v := l.Get(key)
	if v == "" {
		return "", fmt.Errorf("required environment variable %s is not set", key)
	}
	return v, nil
}

func (l *DefaultLoader) GetWithDefault(key, defaultValue string) string {
	if v := l.Get(key); v != "" {
		return v
	}
	return defaultValue
}

// Set stores value and exports it to the process environment.
func (l *DefaultLoader) Set(key, value string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.vars[key] = value
	return os.Setenv(key, value)
}

// All returns a copy of the values loaded from files.
func (l *DefaultLoader) All() map[string]string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	result := make(map[string]string, len(l.vars))
	for k, v := range l.vars {
		result[k] = v
	}
	return result
}
