package persist

import "strings"

// Event is a named transition dispatched through a state store. The
// middleware observes every event and emits its own lifecycle events on the
// same channel.
type Event struct {
	Name    string
	Payload any
}

// Lifecycle events emitted by the middleware, namespaced so they never
// collide with application-defined events. The write path skips them.
const (
	eventNamespace = "persist/"

	// EventHydrationStart marks the beginning of a restore attempt.
	EventHydrationStart = eventNamespace + "hydration-start"
	// EventHydrationComplete carries the merged snapshot as payload; the
	// store's own mutation machinery owns applying it.
	EventHydrationComplete = eventNamespace + "hydration-complete"
	// EventHydrationError carries the failing *OperationError as payload.
	EventHydrationError = eventNamespace + "hydration-error"
)

func isSystemEvent(name string) bool {
	return strings.HasPrefix(name, eventNamespace)
}

// Store is the live state store the middleware wraps. The store owns the
// application state; the middleware reads it for extraction, requests
// mutations through Dispatch, and observes changes through Subscribe.
type Store interface {
	// State returns the current application state.
	State() map[string]any
	// Dispatch applies a named transition to the store.
	Dispatch(Event)
	// Subscribe registers fn to run after every dispatched event with the
	// resulting state, returning an unsubscribe handle.
	Subscribe(fn func(Event, map[string]any)) (unsubscribe func())
}
