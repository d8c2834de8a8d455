package persist

import (
	"sync"

	"github.com/google/uuid"
)

// SnapshotFunc receives the state snapshot associated with a lifecycle
// notification.
type SnapshotFunc func(snapshot map[string]any)

// registry is an explicit set of owned subscriber callbacks. Entries are
// keyed by handle so unsubscription is exact even when the same function is
// registered twice.
type registry struct {
	mu      sync.Mutex
	entries map[string]SnapshotFunc
}

func newRegistry() *registry {
	return &registry{entries: map[string]SnapshotFunc{}}
}

// add registers fn and returns its unsubscribe handle.
func (r *registry) add(fn SnapshotFunc) func() {
	if fn == nil {
		return func() {}
	}
	handle := uuid.NewString()
	r.mu.Lock()
	r.entries[handle] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.entries, handle)
		r.mu.Unlock()
	}
}

// snapshot copies the registered callbacks so they can be invoked outside
// the registry lock.
func (r *registry) snapshot() []SnapshotFunc {
	r.mu.Lock()
	defer r.mu.Unlock()

	callbacks := make([]SnapshotFunc, 0, len(r.entries))
	for _, fn := range r.entries {
		callbacks = append(callbacks, fn)
	}
	return callbacks
}

// notify invokes every registered callback with snapshot. Callbacks run
// outside the registry lock so they may unsubscribe themselves.
func (r *registry) notify(snapshot map[string]any) {
	for _, fn := range r.snapshot() {
		fn(snapshot)
	}
}
