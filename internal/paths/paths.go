// Package paths removes dot-separated paths from nested state maps without
// mutating the input.
package paths

import "strings"

// Remove returns a deep copy of state with every dot path in exclude
// removed. Paths that do not resolve are ignored; intermediate segments that
// are not maps stop the descent.
func Remove(state map[string]any, exclude []string) map[string]any {
	if state == nil {
		return nil
	}
	out := cloneMap(state)
	for _, path := range exclude {
		segments := strings.Split(path, ".")
		removePath(out, segments)
	}
	return out
}

func removePath(current map[string]any, segments []string) {
	if len(segments) == 0 {
		return
	}
	head := segments[0]
	if len(segments) == 1 {
		delete(current, head)
		return
	}
	nested, ok := current[head].(map[string]any)
	if !ok {
		return
	}
	removePath(nested, segments[1:])
}

// Clone deep-copies a state map so callers can hand out snapshots without
// sharing mutable structure.
func Clone(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	return cloneMap(src)
}

func cloneMap(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = cloneValue(value)
	}
	return dst
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return cloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, nested := range typed {
			out[i] = cloneValue(nested)
		}
		return out
	default:
		return value
	}
}
