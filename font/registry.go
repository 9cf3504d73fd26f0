package font

import (
	"fmt"
	"sync"
)

// Registry resolves family names to loaded Sources. It implements the
// renderer's font collaborator contract: discovery, upload, and
// validation of fonts happen elsewhere; the registry only maps resolved
// family names to faces.
//
// Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]*Source
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sources: make(map[string]*Source)}
}

// Register associates a family name with a source. Registering the same
// family twice replaces the earlier source.
func (r *Registry) Register(family string, src *Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[family] = src
}

// Face resolves a family at the given size.
// Returns ErrUnknownFamily when the family was never registered.
func (r *Registry) Face(family string, size float64) (Face, error) {
	r.mu.RLock()
	src, ok := r.sources[family]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFamily, family)
	}
	return src.Face(size)
}

// Families returns the registered family names.
func (r *Registry) Families() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	return names
}
