package options

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps string keys to fixed, explicitly registered option
// lists. Static sources (enumerations, yes/no lists) are resolved here
// without touching the database or the language model.
type Registry struct {
	mu      sync.RWMutex
	sources map[string][]Item
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string][]Item)}
}

// Register adds a named option list. Registering the same key twice is
// an error; sources are wired once at startup.
func (r *Registry) Register(key string, items []Item) error {
	if key == "" {
		return fmt.Errorf("registry key cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[key]; exists {
		return fmt.Errorf("option source %s already registered", key)
	}

	r.sources[key] = append([]Item(nil), items...)

	return nil
}

// Lookup returns a copy of the option list for the given key
func (r *Registry) Lookup(key string) ([]Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	items, ok := r.sources[key]
	if !ok {
		return nil, false
	}

	return append([]Item(nil), items...), true
}

// Keys returns the registered source keys in sorted order
func (r *Registry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.sources))
	for key := range r.sources {
		keys = append(keys, key)
	}

	sort.Strings(keys)

	return keys
}
