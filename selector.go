package persist

import (
	"fmt"

	"github.com/goliatone/go-persist/internal/paths"
)

// Selector extracts the slice of live state that gets persisted. The result
// must be a fresh map; the middleware never writes the live state directly.
type Selector interface {
	Select(state map[string]any) (map[string]any, error)
}

// SelectorFunc adapts a derivation function to Selector.
type SelectorFunc func(state map[string]any) (map[string]any, error)

// Select dispatches to the underlying function.
func (f SelectorFunc) Select(state map[string]any) (map[string]any, error) {
	if f == nil {
		return nil, fmt.Errorf("persist: selector function is nil")
	}
	return f(state)
}

type sliceSelector []string

// Slices returns a selector that keeps only the named top-level state
// slices. Missing names are skipped silently.
func Slices(names ...string) Selector {
	return sliceSelector(names)
}

func (s sliceSelector) Select(state map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(s))
	for _, name := range s {
		value, ok := state[name]
		if !ok {
			continue
		}
		out[name] = value
	}
	return paths.Clone(out), nil
}

type identitySelector struct{}

func (identitySelector) Select(state map[string]any) (map[string]any, error) {
	return paths.Clone(state), nil
}

// selectionResult normalises an evaluator result into persistable state.
func selectionResult(engine string, value any) (map[string]any, error) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, nil
	case nil:
		return nil, fmt.Errorf("persist: %s selector produced nil, want map", engine)
	default:
		return nil, fmt.Errorf("persist: %s selector produced %T, want map", engine, value)
	}
}
