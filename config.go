package persist

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goliatone/go-persist/codec"
	"github.com/goliatone/go-persist/scheduler"
	"github.com/goliatone/go-persist/storage"
)

// MigrateFunc reconciles a persisted state written under an older schema
// version with the configured target version. It receives the persisted
// state and the version it was written with; its result becomes the
// candidate for merging.
type MigrateFunc func(ctx context.Context, state map[string]any, fromVersion int) (map[string]any, error)

// ErrorFunc receives every load/save/clear failure together with the
// operation that produced it.
type ErrorFunc func(err error, op Operation)

// SaveFunc receives the envelope that was successfully written.
type SaveFunc func(envelope codec.Envelope)

type policyKind int

const (
	policyUnset policyKind = iota
	policyDebounce
	policyThrottle
	policyIdle
)

// schedulingPolicy is the tagged scheduling variant, resolved once at
// construction into a single concrete scheduler instance.
type schedulingPolicy struct {
	kind     policyKind
	interval time.Duration
	detector scheduler.IdleDetector
	maxWait  time.Duration
}

func (p schedulingPolicy) build() scheduler.Scheduler {
	switch p.kind {
	case policyThrottle:
		return scheduler.NewThrottle(p.interval)
	case policyIdle:
		return scheduler.NewIdle(p.detector, p.maxWait)
	default:
		return scheduler.NewDebounce(p.interval)
	}
}

type config struct {
	name     string
	version  int
	migrate  MigrateFunc
	selector Selector
	exclude  []string
	backend  storage.AsyncBackend
	codec    codec.Codec
	merge    Merger
	logger   *slog.Logger

	policy        schedulingPolicy
	policyCount   int
	skipHydration bool

	onHydrateStart      SnapshotFunc
	onHydrationComplete SnapshotFunc
	onSaveComplete      SaveFunc
	onError             ErrorFunc
}

// Option configures the middleware at construction time.
type Option func(*config)

func applyConfig(name string, opts []Option) (config, error) {
	cfg := config{name: name}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	if err := storage.ValidateKey(cfg.name); err != nil {
		return config{}, fmt.Errorf("persist: %w", err)
	}
	if cfg.policyCount > 1 {
		return config{}, fmt.Errorf("persist: scheduling policies are mutually exclusive, %d configured", cfg.policyCount)
	}

	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	if cfg.codec == nil {
		cfg.codec = codec.JSON()
	}
	if cfg.backend == nil {
		cfg.backend = storage.Default(cfg.logger)
	}
	if cfg.selector == nil {
		cfg.selector = identitySelector{}
	}
	if cfg.merge == nil {
		cfg.merge = ShallowMerge
	}
	return cfg, nil
}

// WithVersion sets the target schema version stamped into every written
// envelope.
func WithVersion(version int) Option {
	return func(cfg *config) {
		cfg.version = version
	}
}

// WithMigration registers the function invoked when a persisted envelope's
// version differs from the configured target.
func WithMigration(fn MigrateFunc) Option {
	return func(cfg *config) {
		cfg.migrate = fn
	}
}

// WithSlices persists only the named top-level state slices.
func WithSlices(names ...string) Option {
	return func(cfg *config) {
		cfg.selector = Slices(names...)
	}
}

// WithPartialize persists the result of a derivation function applied to the
// live state.
func WithPartialize(fn func(state map[string]any) map[string]any) Option {
	return func(cfg *config) {
		if fn == nil {
			return
		}
		cfg.selector = SelectorFunc(func(state map[string]any) (map[string]any, error) {
			return fn(state), nil
		})
	}
}

// WithSelector installs a custom selector, e.g. one built by NewExprSelector
// or NewCELSelector.
func WithSelector(selector Selector) Option {
	return func(cfg *config) {
		cfg.selector = selector
	}
}

// WithExclude removes the given dot paths from the selected state before it
// is written.
func WithExclude(dotPaths ...string) Option {
	return func(cfg *config) {
		cfg.exclude = append(cfg.exclude, dotPaths...)
	}
}

// WithStorage overrides the default backend.
func WithStorage(backend storage.AsyncBackend) Option {
	return func(cfg *config) {
		cfg.backend = backend
	}
}

// WithSyncStorage overrides the default backend with a synchronous one,
// adapting it to the uniform async contract.
func WithSyncStorage(backend storage.Backend) Option {
	return func(cfg *config) {
		cfg.backend = storage.Async(backend)
	}
}

// WithCodec overrides the default JSON codec.
func WithCodec(c codec.Codec) Option {
	return func(cfg *config) {
		cfg.codec = c
	}
}

// WithDebounce coalesces writes so one fires delay after the last mutation
// in a burst.
func WithDebounce(delay time.Duration) Option {
	return func(cfg *config) {
		cfg.policy = schedulingPolicy{kind: policyDebounce, interval: delay}
		cfg.policyCount++
	}
}

// WithThrottle coalesces writes to at most two per window: one immediately,
// one at the window boundary carrying the latest state.
func WithThrottle(window time.Duration) Option {
	return func(cfg *config) {
		cfg.policy = schedulingPolicy{kind: policyThrottle, interval: window}
		cfg.policyCount++
	}
}

// WithIdleDeferred defers writes to the idle detector, bounded by maxWait.
// A nil detector falls back to a minimal-delay timer.
func WithIdleDeferred(detector scheduler.IdleDetector, maxWait time.Duration) Option {
	return func(cfg *config) {
		cfg.policy = schedulingPolicy{kind: policyIdle, detector: detector, maxWait: maxWait}
		cfg.policyCount++
	}
}

// WithSkipHydration disables the automatic hydration trigger that otherwise
// runs once after Attach.
func WithSkipHydration() Option {
	return func(cfg *config) {
		cfg.skipHydration = true
	}
}

// WithMerge overrides the default shallow-merge strategy.
func WithMerge(merge Merger) Option {
	return func(cfg *config) {
		cfg.merge = merge
	}
}

// WithLogger attaches a logger for degradation warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// OnHydrateStart registers a callback fired when a restore attempt begins,
// with the live state at that moment.
func OnHydrateStart(fn SnapshotFunc) Option {
	return func(cfg *config) {
		cfg.onHydrateStart = fn
	}
}

// OnHydrationComplete registers a callback fired with the merged snapshot
// once a restore attempt succeeds.
func OnHydrationComplete(fn SnapshotFunc) Option {
	return func(cfg *config) {
		cfg.onHydrationComplete = fn
	}
}

// OnSaveComplete registers a callback fired after each successful write.
func OnSaveComplete(fn SaveFunc) Option {
	return func(cfg *config) {
		cfg.onSaveComplete = fn
	}
}

// OnError registers the funnel for load/save/clear failures.
func OnError(fn ErrorFunc) Option {
	return func(cfg *config) {
		cfg.onError = fn
	}
}
