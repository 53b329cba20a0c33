package catalog

import "sync"

// Registry holds all registered catalog adapters keyed by name.
type Registry struct {
	mu        sync.RWMutex
	searchers map[Name]Searcher
}

// NewRegistry creates an empty catalog registry.
func NewRegistry() *Registry {
	return &Registry{
		searchers: make(map[Name]Searcher),
	}
}

// Register adds a catalog adapter to the registry.
func (r *Registry) Register(s Searcher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.searchers[s.Name()] = s
}

// Get returns a catalog by name, or nil if not registered.
func (r *Registry) Get(name Name) Searcher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.searchers[name]
}

// All returns all registered catalogs in a stable order.
func (r *Registry) All() []Searcher {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []Searcher
	for _, name := range AllNames() {
		if s, ok := r.searchers[name]; ok {
			result = append(result, s)
		}
	}
	return result
}
