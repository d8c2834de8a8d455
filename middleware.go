// Package persist mirrors an in-memory application state store into a
// durable key-value backend and restores it on startup. The middleware
// wraps a store's change-notification channel: once hydration completes,
// every mutation is extracted, versioned and handed to a coalescing
// scheduler; on boot a hydration lifecycle restores the persisted envelope,
// reconciles schema drift and merges the result into the live state.
package persist

import (
	"context"
	"sync"

	"github.com/goliatone/go-persist/codec"
	"github.com/goliatone/go-persist/internal/paths"
	"github.com/goliatone/go-persist/scheduler"
)

// Middleware owns the hydration lifecycle and the write path for a single
// storage key. One instance owns its durable record; concurrent instances
// targeting the same key race last-writer-wins with no coordination.
type Middleware struct {
	cfg   config
	sched scheduler.Scheduler

	startSubs  *registry
	finishSubs *registry

	mu       sync.Mutex
	store    Store
	status   Status
	snapshot map[string]any
}

// New validates the configuration and constructs the middleware.
// Configuration errors (invalid key name, conflicting scheduling policies)
// are not recoverable at runtime and fail here.
func New(name string, opts ...Option) (*Middleware, error) {
	cfg, err := applyConfig(name, opts)
	if err != nil {
		return nil, err
	}
	return &Middleware{
		cfg:        cfg,
		sched:      cfg.policy.build(),
		startSubs:  newRegistry(),
		finishSubs: newRegistry(),
	}, nil
}

// Attach wires the middleware to a live store and, unless hydration was
// skipped, schedules the automatic restore to run once asynchronously so the
// store finishes its own synchronous initialisation first. The returned
// detach cancels any pending write and unsubscribes from the store.
func (m *Middleware) Attach(store Store) (detach func()) {
	m.mu.Lock()
	m.store = store
	m.mu.Unlock()

	unsubscribe := store.Subscribe(m.observe)
	if !m.cfg.skipHydration {
		go func() {
			_ = m.Rehydrate(context.Background())
		}()
	}
	return func() {
		m.sched.Cancel()
		unsubscribe()
		m.mu.Lock()
		m.store = nil
		m.mu.Unlock()
	}
}

// observe is the write path: every store mutation that is not a lifecycle
// event of this middleware is extracted and scheduled for persistence.
// Mutations before hydration completes are suppressed entirely so transient
// boot-time defaults never clobber the durable state.
func (m *Middleware) observe(evt Event, state map[string]any) {
	if isSystemEvent(evt.Name) {
		return
	}
	m.mu.Lock()
	hydrated := m.status == StatusHydrated
	m.mu.Unlock()
	if !hydrated {
		return
	}

	selected, err := m.cfg.selector.Select(state)
	if err != nil {
		m.report(wrapOperationError(OpSave, m.cfg.name, err))
		return
	}
	if len(m.cfg.exclude) > 0 {
		selected = paths.Remove(selected, m.cfg.exclude)
	}

	envelope := codec.Envelope{Version: m.cfg.version, State: selected}
	m.sched.Schedule(func() {
		m.write(envelope)
	})
}

func (m *Middleware) write(envelope codec.Envelope) {
	encoded, err := m.cfg.codec.Encode(envelope)
	if err != nil {
		m.report(wrapOperationError(OpSave, m.cfg.name, err))
		return
	}
	if err := m.cfg.backend.Set(context.Background(), m.cfg.name, encoded); err != nil {
		// The in-memory state is unaffected; the write is lost because the
		// persisted record is a cache, not a source of truth.
		m.report(wrapOperationError(OpSave, m.cfg.name, err))
		return
	}
	if m.cfg.onSaveComplete != nil {
		m.cfg.onSaveComplete(envelope)
	}
}

// Rehydrate runs the restore sequence: read, decode, migrate on version
// mismatch, merge into the live state and dispatch the result through the
// store. Calling it while a hydration is already in flight is a no-op;
// calling it again from a terminal state starts a fresh cycle. Failures in
// any step leave the live state untouched.
func (m *Middleware) Rehydrate(ctx context.Context) error {
	m.mu.Lock()
	if m.store == nil {
		m.mu.Unlock()
		return ErrNotAttached
	}
	if m.status == StatusHydrating {
		m.mu.Unlock()
		return nil
	}
	m.status = StatusHydrating
	store := m.store
	m.mu.Unlock()

	store.Dispatch(Event{Name: EventHydrationStart})
	live := store.State()
	m.startSubs.notify(live)
	if m.cfg.onHydrateStart != nil {
		m.cfg.onHydrateStart(live)
	}

	snapshot, restored, err := m.load(ctx, store)
	if err != nil {
		opErr := wrapOperationError(OpLoad, m.cfg.name, err)
		m.mu.Lock()
		m.status = StatusFailed
		m.mu.Unlock()
		store.Dispatch(Event{Name: EventHydrationError, Payload: opErr})
		m.report(opErr)
		return opErr
	}

	if restored {
		// The store's own mutation machinery applies the merged snapshot.
		store.Dispatch(Event{Name: EventHydrationComplete, Payload: snapshot})
	}

	// The terminal transition and the subscriber snapshot share one critical
	// section with OnFinishHydration, so every finish subscriber fires
	// exactly once: either through this notify or through the immediate call
	// on late registration, never both.
	m.mu.Lock()
	m.status = StatusHydrated
	m.snapshot = snapshot
	finishers := m.finishSubs.snapshot()
	m.mu.Unlock()

	for _, fn := range finishers {
		fn(snapshot)
	}
	if m.cfg.onHydrationComplete != nil {
		m.cfg.onHydrationComplete(snapshot)
	}
	return nil
}

// load reads and decodes the persisted envelope and produces the hydrated
// snapshot. Absence is not an error: it reports restored=false with the live
// state as the snapshot and no merge performed.
func (m *Middleware) load(ctx context.Context, store Store) (snapshot map[string]any, restored bool, err error) {
	raw, ok, err := m.cfg.backend.Get(ctx, m.cfg.name)
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return paths.Clone(store.State()), false, nil
	}

	envelope, err := m.cfg.codec.Decode(raw)
	if err != nil {
		return nil, false, err
	}

	candidate := envelope.State
	if envelope.Version != m.cfg.version && m.cfg.migrate != nil {
		candidate, err = m.cfg.migrate(ctx, candidate, envelope.Version)
		if err != nil {
			return nil, false, err
		}
	}

	return m.cfg.merge(candidate, store.State()), true, nil
}

// HasHydrated reports whether the last hydration cycle completed
// successfully.
func (m *Middleware) HasHydrated() bool {
	return m.HydrationState() == StatusHydrated
}

// HydrationState returns the current lifecycle status.
func (m *Middleware) HydrationState() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

// HydratedState returns a copy of the last-hydrated snapshot, nil before the
// first successful hydration.
func (m *Middleware) HydratedState() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return paths.Clone(m.snapshot)
}

// ClearStorage removes the durable record. A pending coalesced write is
// discarded first so it cannot immediately undo the clear.
func (m *Middleware) ClearStorage(ctx context.Context) error {
	m.sched.Cancel()
	if err := m.cfg.backend.Remove(ctx, m.cfg.name); err != nil {
		opErr := wrapOperationError(OpClear, m.cfg.name, err)
		m.report(opErr)
		return opErr
	}
	return nil
}

// OnHydrate registers a callback fired when a hydration cycle starts,
// returning its unsubscribe handle.
func (m *Middleware) OnHydrate(fn SnapshotFunc) (unsubscribe func()) {
	return m.startSubs.add(fn)
}

// OnFinishHydration registers a callback fired when a hydration cycle
// completes. A subscriber registered after hydration already completed is
// invoked immediately, exactly once, with the hydrated snapshot.
func (m *Middleware) OnFinishHydration(fn SnapshotFunc) (unsubscribe func()) {
	// Registration is serialised with the terminal transition in Rehydrate:
	// either the subscriber lands in the registry before the transition takes
	// its snapshot, or it observes the hydrated status and fires here.
	m.mu.Lock()
	hydrated := m.status == StatusHydrated
	snapshot := m.snapshot
	remove := m.finishSubs.add(fn)
	m.mu.Unlock()

	if hydrated && fn != nil {
		fn(snapshot)
	}
	return remove
}

func (m *Middleware) report(opErr *OperationError) {
	m.cfg.logger.Warn("persistence operation failed",
		"op", string(opErr.Op), "key", opErr.Key, "error", opErr.Err)
	if m.cfg.onError != nil {
		m.cfg.onError(opErr, opErr.Op)
	}
}
