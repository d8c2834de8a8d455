// Package scheduler turns an unbounded stream of schedule requests into a
// bounded-rate stream of executions. Every policy guarantees that the last
// function scheduled in a burst eventually runs; at most one execution is
// pending per scheduler instance, and a new request replaces the pending
// function rather than queuing a second one.
package scheduler

// Scheduler coalesces rapid Schedule calls according to its policy.
type Scheduler interface {
	// Schedule arranges for fn to run. If an execution is already pending
	// it is retargeted at fn instead of queuing another run.
	Schedule(fn func())
	// Cancel discards a pending, not-yet-executed run. It cannot abort a
	// run already in flight.
	Cancel()
}
