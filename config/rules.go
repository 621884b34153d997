package config

import (
	"sync"

	"github.com/philipp01105/jsonlog/formatter"
)

// Registry maps rule names usable from configuration files to rules.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]formatter.AttributeRule
}

// NewRegistry returns a registry holding the built-in rules uuid and
// hostname.
func NewRegistry() *Registry {
	return &Registry{rules: map[string]formatter.AttributeRule{
		"uuid":     formatter.UUIDRule(),
		"hostname": formatter.HostnameRule(),
	}}
}

// Register adds or replaces a rule.
func (r *Registry) Register(name string, rule formatter.AttributeRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[name] = rule
}

// Lookup returns the named rule.
func (r *Registry) Lookup(name string) (formatter.AttributeRule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[name]
	return rule, ok
}
