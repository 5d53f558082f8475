// Package catalog loads the embedded tool and conversation policy.
package catalog

import (
	"embed"
	"fmt"
	"regexp"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed config/*.yaml
var configFiles embed.FS

// Registry answers policy questions against the loaded catalog
type Registry struct {
	catalog     *Catalog
	mutating    map[string]bool
	pathPattern *regexp.Regexp
	mu          sync.RWMutex
}

// NewRegistry loads the embedded catalog
func NewRegistry() (*Registry, error) {
	data, err := configFiles.ReadFile("config/catalog.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from catalog YAML
func Parse(data []byte) (*Registry, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	r := &Registry{}
	if err := r.load(&c); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) load(c *Catalog) error {
	var pattern *regexp.Regexp
	if c.Renderer.PathPattern != "" {
		p, err := regexp.Compile(c.Renderer.PathPattern)
		if err != nil {
			return fmt.Errorf("invalid path pattern: %w", err)
		}
		pattern = p
	}

	mutating := make(map[string]bool, len(c.Renderer.MutatingOperations))
	for _, op := range c.Renderer.MutatingOperations {
		mutating[op] = true
	}

	r.mu.Lock()
	r.catalog = c
	r.mutating = mutating
	r.pathPattern = pattern
	r.mu.Unlock()

	return nil
}

// Catalog returns the loaded catalog
func (r *Registry) Catalog() *Catalog {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.catalog
}

// IsMutating reports whether a renderer operation changes its target file
func (r *Registry) IsMutating(op string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mutating[op]
}

// PathPattern returns the free-text path fallback, or nil when none is configured
func (r *Registry) PathPattern() *regexp.Regexp {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.pathPattern
}

// Tool returns the built-in tool declared under name
func (r *Registry) Tool(name string) (*ToolSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := range r.catalog.Tools {
		if r.catalog.Tools[i].Name == name {
			return &r.catalog.Tools[i], nil
		}
	}
	return nil, fmt.Errorf("unknown tool: %s", name)
}
