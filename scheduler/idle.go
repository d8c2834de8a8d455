package scheduler

import (
	"sync"
	"time"
)

// IdleDetector is the platform idle-detection primitive: it invokes fn when
// the host is idle and returns a cancel handle. Platforms without one leave
// the detector nil and the scheduler falls back to a minimal-delay timer.
type IdleDetector interface {
	RequestIdle(fn func()) (cancel func())
}

// IdleDetectorFunc adapts a function to IdleDetector.
type IdleDetectorFunc func(fn func()) (cancel func())

// RequestIdle implements IdleDetector.
func (f IdleDetectorFunc) RequestIdle(fn func()) func() {
	if f == nil {
		return func() {}
	}
	return f(fn)
}

// fallbackDelay is used when no idle detector is available: near-immediate,
// still off the caller's stack.
const fallbackDelay = time.Millisecond

type idleDeferred struct {
	mu         sync.Mutex
	detector   IdleDetector
	maxWait    time.Duration
	pending    func()
	armed      bool
	cancelIdle func()
	deadline   *time.Timer
}

// NewIdle returns a scheduler that defers execution to detector, bounded by
// maxWait so a busy host cannot starve the pending run forever.
func NewIdle(detector IdleDetector, maxWait time.Duration) Scheduler {
	if maxWait <= 0 {
		maxWait = time.Second
	}
	return &idleDeferred{detector: detector, maxWait: maxWait}
}

func (s *idleDeferred) Schedule(fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = fn
	if s.armed {
		return
	}
	s.armed = true
	if s.detector == nil {
		s.deadline = time.AfterFunc(fallbackDelay, s.fire)
		return
	}
	s.cancelIdle = s.detector.RequestIdle(s.fire)
	s.deadline = time.AfterFunc(s.maxWait, s.fire)
}

// fire runs at most once per armed cycle; whichever of the idle callback and
// the deadline timer arrives first wins and disarms the other.
func (s *idleDeferred) fire() {
	s.mu.Lock()
	if !s.armed {
		s.mu.Unlock()
		return
	}
	fn := s.pending
	s.disarmLocked()
	s.mu.Unlock()

	if fn != nil {
		fn()
	}
}

func (s *idleDeferred) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disarmLocked()
}

func (s *idleDeferred) disarmLocked() {
	if s.deadline != nil {
		s.deadline.Stop()
		s.deadline = nil
	}
	if s.cancelIdle != nil {
		s.cancelIdle()
		s.cancelIdle = nil
	}
	s.pending = nil
	s.armed = false
}
