package syncengine

import (
	"fmt"
	"sync"

	"fieldsync/core/queue"
	"fieldsync/core/remote"
)

// Registry maps item types to handlers.
type Registry struct {
	mu       sync.RWMutex
	handlers map[queue.Type]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[queue.Type]Handler)}
}

// DefaultRegistry wires the handler of every known type.
func DefaultRegistry(backend remote.Backend, identity remote.Identity) *Registry {
	r := NewRegistry()
	r.Register(queue.TypeStatusUpdate, NewStatusUpdateHandler(backend))
	r.Register(queue.TypeHazardReport, NewInsertHandler(backend, identity, remote.CollectionHazardReports, "reported_by"))
	r.Register(queue.TypeInspection, NewInsertHandler(backend, identity, remote.CollectionInspections, "inspector_id"))
	r.Register(queue.TypeTimeEntry, NewNotImplementedHandler(queue.TypeTimeEntry))
	r.Register(queue.TypePhotoCapture, NewNotImplementedHandler(queue.TypePhotoCapture))
	return r
}

// Register sets the handler for t, replacing any previous one.
func (r *Registry) Register(t queue.Type, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[t] = h
}

// Lookup returns the handler for t.
func (r *Registry) Lookup(t queue.Type) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[t]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHandler, t)
	}
	return h, nil
}
