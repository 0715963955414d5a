package process

import (
	"errors"
	"sync"
)

// ErrAlreadyRegistered is returned when an ID is already bound to a handle.
var ErrAlreadyRegistered = errors.New("process already registered")

// Registry maps stream IDs to live handles.
type Registry struct {
	mu      sync.Mutex
	handles map[string]*Handle
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]*Handle)}
}

// Register binds id to h. It never replaces an existing entry.
func (r *Registry) Register(id string, h *Handle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handles[id]; exists {
		return ErrAlreadyRegistered
	}
	r.handles[id] = h
	return nil
}

// Lookup returns the handle for id.
func (r *Registry) Lookup(id string) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h, ok := r.handles[id]
	return h, ok
}

// Unregister removes id. Removing an absent ID is a no-op.
func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	delete(r.handles, id)
	r.mu.Unlock()
}

// Len returns the number of registered handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.handles)
}

// Snapshot returns a copy of the current entries.
func (r *Registry) Snapshot() map[string]*Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[string]*Handle, len(r.handles))
	for id, h := range r.handles {
		out[id] = h
	}
	return out
}
