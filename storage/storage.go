// Package storage defines the key-value backend contracts used by the
// persistence middleware, together with a set of ready-made backends
// (in-memory, file, no-op) and adapters that normalise heterogeneous or
// absent storage media behind a single interface.
package storage

import (
	"context"
	"log/slog"
)

// Backend is the synchronous key-value contract. Get reports ok=false when
// the key has no record; that is not an error.
type Backend interface {
	Get(key string) (value string, ok bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// AsyncBackend is the context-aware form of Backend, implemented directly by
// remote-backed stores and obtainable from any Backend via Async.
type AsyncBackend interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

type asyncAdapter struct {
	backend Backend
}

// Async wraps a synchronous backend so callers needing the uniform
// context-aware contract do not have to special-case it. The context is
// honoured between operations only; the wrapped calls themselves remain
// synchronous and atomic.
func Async(backend Backend) AsyncBackend {
	if backend == nil {
		backend = Noop()
	}
	return &asyncAdapter{backend: backend}
}

func (a *asyncAdapter) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	return a.backend.Get(key)
}

func (a *asyncAdapter) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.backend.Set(key, value)
}

func (a *asyncAdapter) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return a.backend.Remove(key)
}

type safeBackend struct {
	backend AsyncBackend
	logger  *slog.Logger
}

// Safe wraps a backend so failures from the underlying medium are converted
// into a logged warning plus the no-op result: Get reports absence, Set and
// Remove report success. Errors never propagate to callers above.
func Safe(backend AsyncBackend, logger *slog.Logger) AsyncBackend {
	if backend == nil {
		backend = Async(Noop())
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &safeBackend{backend: backend, logger: logger}
}

func (s *safeBackend) Get(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := s.backend.Get(ctx, key)
	if err != nil {
		s.logger.Warn("storage get failed, returning empty result", "key", key, "error", err)
		return "", false, nil
	}
	return value, ok, nil
}

func (s *safeBackend) Set(ctx context.Context, key, value string) error {
	if err := s.backend.Set(ctx, key, value); err != nil {
		s.logger.Warn("storage set failed, write dropped", "key", key, "error", err)
	}
	return nil
}

func (s *safeBackend) Remove(ctx context.Context, key string) error {
	if err := s.backend.Remove(ctx, key); err != nil {
		s.logger.Warn("storage remove failed", "key", key, "error", err)
	}
	return nil
}

const probeKey = "storage.probe"

// Available reports whether backend accepts a live write-then-delete round
// trip. Quota limits, read-only media and disabled storage all surface here
// as false rather than as errors.
func Available(backend Backend) bool {
	if backend == nil {
		return false
	}
	if err := backend.Set(probeKey, "1"); err != nil {
		return false
	}
	if err := backend.Remove(probeKey); err != nil {
		return false
	}
	return true
}
