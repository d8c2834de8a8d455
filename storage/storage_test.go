package storage

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
)

type failingBackend struct {
	err error
}

func (f failingBackend) Get(string) (string, bool, error) { return "", false, f.err }
func (f failingBackend) Set(string, string) error         { return f.err }
func (f failingBackend) Remove(string) error              { return f.err }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestMemoryBackendRoundTrip(t *testing.T) {
	backend := Memory()
	if _, ok, err := backend.Get("missing"); err != nil || ok {
		t.Fatalf("expected absent key, got ok=%t err=%v", ok, err)
	}

	if err := backend.Set("board", `{"columns":[]}`); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	value, ok, err := backend.Get("board")
	if err != nil || !ok {
		t.Fatalf("expected record, got ok=%t err=%v", ok, err)
	}
	if value != `{"columns":[]}` {
		t.Fatalf("unexpected value %q", value)
	}

	if err := backend.Remove("board"); err != nil {
		t.Fatalf("unexpected remove error: %v", err)
	}
	if _, ok, _ := backend.Get("board"); ok {
		t.Fatalf("expected record to be removed")
	}
}

func TestNoopBackendSilentlySucceeds(t *testing.T) {
	backend := Noop()
	if err := backend.Set("k", "v"); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	if value, ok, err := backend.Get("k"); err != nil || ok || value != "" {
		t.Fatalf("expected no-op read, got value=%q ok=%t err=%v", value, ok, err)
	}
	if err := backend.Remove("k"); err != nil {
		t.Fatalf("unexpected remove error: %v", err)
	}
}

func TestAsyncAdapterHonoursContext(t *testing.T) {
	backend := Memory()
	async := Async(backend)

	ctx := context.Background()
	if err := async.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	value, ok, err := async.Get(ctx, "k")
	if err != nil || !ok || value != "v" {
		t.Fatalf("unexpected read value=%q ok=%t err=%v", value, ok, err)
	}

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	if err := async.Set(cancelled, "k2", "v2"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context error, got %v", err)
	}
	if _, ok, _ := backend.Get("k2"); ok {
		t.Fatalf("cancelled write must not reach the backend")
	}
}

func TestAsyncNilBackendDegradesToNoop(t *testing.T) {
	async := Async(nil)
	ctx := context.Background()

	if err := async.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	if value, ok, err := async.Get(ctx, "k"); err != nil || ok || value != "" {
		t.Fatalf("expected no-op read, got value=%q ok=%t err=%v", value, ok, err)
	}
	if err := async.Remove(ctx, "k"); err != nil {
		t.Fatalf("unexpected remove error: %v", err)
	}
}

func TestSafeBackendSwallowsFailures(t *testing.T) {
	boom := errors.New("quota exceeded")
	safe := Safe(Async(failingBackend{err: boom}), testLogger())
	ctx := context.Background()

	if value, ok, err := safe.Get(ctx, "k"); err != nil || ok || value != "" {
		t.Fatalf("expected swallowed get, got value=%q ok=%t err=%v", value, ok, err)
	}
	if err := safe.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("expected swallowed set, got %v", err)
	}
	if err := safe.Remove(ctx, "k"); err != nil {
		t.Fatalf("expected swallowed remove, got %v", err)
	}
}

func TestAvailableProbe(t *testing.T) {
	if !Available(Memory()) {
		t.Fatalf("expected memory backend to be available")
	}
	if Available(failingBackend{err: errors.New("disabled")}) {
		t.Fatalf("expected failing backend to be unavailable")
	}
	if Available(nil) {
		t.Fatalf("expected nil backend to be unavailable")
	}
}

func TestFileBackend(t *testing.T) {
	backend := File(t.TempDir())

	if _, ok, err := backend.Get("app-state"); err != nil || ok {
		t.Fatalf("expected missing file to read as absence, got ok=%t err=%v", ok, err)
	}
	if err := backend.Set("app-state", "payload"); err != nil {
		t.Fatalf("unexpected set error: %v", err)
	}
	value, ok, err := backend.Get("app-state")
	if err != nil || !ok || value != "payload" {
		t.Fatalf("unexpected read value=%q ok=%t err=%v", value, ok, err)
	}
	if err := backend.Remove("app-state"); err != nil {
		t.Fatalf("unexpected remove error: %v", err)
	}
	if err := backend.Remove("app-state"); err != nil {
		t.Fatalf("removing an absent record must succeed, got %v", err)
	}
}
