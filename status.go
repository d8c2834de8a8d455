package persist

// Status is the hydration lifecycle state. Transitions only move forward:
// idle -> hydrating -> hydrated | failed. The terminal states allow a manual
// re-trigger, which starts a fresh hydrating cycle.
type Status int

const (
	StatusIdle Status = iota
	StatusHydrating
	StatusHydrated
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusHydrating:
		return "hydrating"
	case StatusHydrated:
		return "hydrated"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}
