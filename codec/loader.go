package codec

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotLoaded reports that an optional module has not been initialised yet.
// It is distinct from a failed initialisation so retry logic can tell the
// two states apart.
var ErrNotLoaded = errors.New("codec: module not loaded")

// LoadFailedError reports that an optional module was requested but its
// initialisation failed.
type LoadFailedError struct {
	Module string
	Err    error
}

func (e *LoadFailedError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("codec: module %q failed to load: %v", e.Module, e.Err)
}

func (e *LoadFailedError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type loaderState int

const (
	loaderIdle loaderState = iota
	loaderReady
	loaderFailed
)

// Loader lazily initialises an optional module exactly once per successful
// load. Each Loader is an owned instance, not process-global cache state, so
// independent pipelines stay isolated. A failed load is retried on the next
// Load call; Get never triggers initialisation.
type Loader[T any] struct {
	mu       sync.Mutex
	name     string
	importFn func() (T, error)
	state    loaderState
	value    T
	err      error
}

// NewLoader constructs a loader for the named module using importFn to
// perform the actual initialisation.
func NewLoader[T any](name string, importFn func() (T, error)) *Loader[T] {
	return &Loader[T]{name: name, importFn: importFn}
}

// Load initialises the module if needed and returns it. After a failure the
// next Load attempts initialisation again.
func (l *Loader[T]) Load() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.state == loaderReady {
		return l.value, nil
	}
	if l.importFn == nil {
		var zero T
		l.state = loaderFailed
		l.err = fmt.Errorf("codec: module %q has no import function", l.name)
		return zero, &LoadFailedError{Module: l.name, Err: l.err}
	}

	value, err := l.importFn()
	if err != nil {
		var zero T
		l.state = loaderFailed
		l.err = err
		return zero, &LoadFailedError{Module: l.name, Err: err}
	}
	l.state = loaderReady
	l.value = value
	l.err = nil
	return value, nil
}

// Get returns the loaded module without triggering initialisation. It
// reports ErrNotLoaded before the first Load and a LoadFailedError after a
// failed one.
func (l *Loader[T]) Get() (T, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var zero T
	switch l.state {
	case loaderReady:
		return l.value, nil
	case loaderFailed:
		return zero, &LoadFailedError{Module: l.name, Err: l.err}
	default:
		return zero, fmt.Errorf("%w: %q", ErrNotLoaded, l.name)
	}
}

// IsLoaded reports whether the module initialised successfully.
func (l *Loader[T]) IsLoaded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == loaderReady
}

// TypedLoader returns a loader for the typed-value codec.
func TypedLoader() *Loader[Codec] {
	return NewLoader("typed", func() (Codec, error) {
		return Typed(), nil
	})
}

// CompressedLoader returns a loader for the compression codec wrapped around
// inner.
func CompressedLoader(inner Codec) *Loader[Codec] {
	return NewLoader("compressed", func() (Codec, error) {
		return Compressed(inner), nil
	})
}
