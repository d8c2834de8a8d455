package scheduler

import (
	"sync"
	"time"
)

type debounce struct {
	mu      sync.Mutex
	delay   time.Duration
	timer   *time.Timer
	pending func()
}

// NewDebounce returns a scheduler that resets its timer on every call and
// fires once, delay after the last call in the burst. A zero delay still
// coalesces calls arriving before the timer goroutine runs.
func NewDebounce(delay time.Duration) Scheduler {
	if delay < 0 {
		delay = 0
	}
	return &debounce{delay: delay}
}

func (d *debounce) Schedule(fn func()) {
	if fn == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = fn
	if d.timer != nil {
		d.timer.Reset(d.delay)
		return
	}
	d.timer = time.AfterFunc(d.delay, d.fire)
}

func (d *debounce) fire() {
	d.mu.Lock()
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (d *debounce) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.pending = nil
}
