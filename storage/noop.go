package storage

// NoopBackend accepts every operation and performs no durable effect. It is
// substituted transparently when no real storage is available so callers
// never have to branch on platform support.
type NoopBackend struct{}

// Noop returns the shared no-op backend.
func Noop() NoopBackend {
	return NoopBackend{}
}

func (NoopBackend) Get(string) (string, bool, error) { return "", false, nil }
func (NoopBackend) Set(string, string) error         { return nil }
func (NoopBackend) Remove(string) error              { return nil }
