package scheduler

import (
	"sync"
	"time"
)

type throttle struct {
	mu       sync.Mutex
	window   time.Duration
	active   bool
	timer    *time.Timer
	trailing func()
}

// NewThrottle returns a scheduler that runs the first call of a window
// immediately, then at most once more at the window boundary carrying the
// most recent function scheduled during the window.
func NewThrottle(window time.Duration) Scheduler {
	if window <= 0 {
		window = time.Millisecond
	}
	return &throttle{window: window}
}

func (t *throttle) Schedule(fn func()) {
	if fn == nil {
		return
	}
	t.mu.Lock()
	if t.active {
		t.trailing = fn
		t.mu.Unlock()
		return
	}
	t.active = true
	t.timer = time.AfterFunc(t.window, t.boundary)
	t.mu.Unlock()

	fn()
}

func (t *throttle) boundary() {
	t.mu.Lock()
	fn := t.trailing
	t.trailing = nil
	if fn == nil {
		t.active = false
		t.timer = nil
		t.mu.Unlock()
		return
	}
	// A trailing run opens the next window so bursts stay rate-bounded.
	t.timer = time.AfterFunc(t.window, t.boundary)
	t.mu.Unlock()

	fn()
}

func (t *throttle) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.trailing = nil
	t.active = false
}
