package adapter

import "github.com/dealscope/backend/internal/domain"

// Registry holds the configured source adapters keyed by source id.
// Registration order is preserved so fan-out and reporting stay stable
// across requests.
type Registry struct {
	order []string
	byID  map[string]domain.SourceAdapter
}

// NewRegistry creates a registry seeded with the given adapters
func NewRegistry(adapters ...domain.SourceAdapter) *Registry {
	r := &Registry{
		byID: make(map[string]domain.SourceAdapter),
	}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds an adapter; registering the same id again replaces the
// earlier adapter in place
func (r *Registry) Register(a domain.SourceAdapter) {
	id := a.ID()
	if _, exists := r.byID[id]; !exists {
		r.order = append(r.order, id)
	}
	r.byID[id] = a
}

// Get returns the adapter for a source id
func (r *Registry) Get(sourceID string) (domain.SourceAdapter, bool) {
	a, ok := r.byID[sourceID]
	return a, ok
}

// All returns every adapter in registration order
func (r *Registry) All() []domain.SourceAdapter {
	adapters := make([]domain.SourceAdapter, 0, len(r.order))
	for _, id := range r.order {
		adapters = append(adapters, r.byID[id])
	}
	return adapters
}

// IDs returns the registered source ids in registration order
func (r *Registry) IDs() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	return ids
}
