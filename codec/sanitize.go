package codec

// Keys that must never be assigned onto a freshly constructed object, at any
// nesting depth. A deserializer that trusts untyped persisted text is a
// prototype-pollution vector; stripping happens before any caller sees the
// decoded value.
var unsafeKeys = map[string]struct{}{
	"__proto__":   {},
	"prototype":   {},
	"constructor": {},
}

// sanitizeValue walks a freshly decoded value and removes unsafe keys from
// every map it contains. Slices are walked in place; scalars pass through.
func sanitizeValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		for key, nested := range typed {
			if _, unsafe := unsafeKeys[key]; unsafe {
				delete(typed, key)
				continue
			}
			typed[key] = sanitizeValue(nested)
		}
		return typed
	case []any:
		for i, nested := range typed {
			typed[i] = sanitizeValue(nested)
		}
		return typed
	default:
		return value
	}
}

func sanitizeState(state map[string]any) map[string]any {
	if state == nil {
		return nil
	}
	sanitized := sanitizeValue(state)
	return sanitized.(map[string]any)
}
