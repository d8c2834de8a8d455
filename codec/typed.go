package codec

import (
	"fmt"
	"time"

	gojson "github.com/goccy/go-json"
)

// Set is a collection persisted with set semantics. It round-trips through
// the typed codec as a tagged value rather than a plain array.
type Set []any

const (
	tagKey   = "__type"
	valueKey = "value"

	kindDate = "Date"
	kindMap  = "Map"
	kindSet  = "Set"
)

type typedCodec struct{}

// Typed constructs a codec that widens the default JSON support to
// non-native types by tagging them as {"__type": kind, "value": primitive}
// on the way out and reconstructing them on the way in. Timestamps become
// Date tags, Set values become Set tags, and Map tags written by other
// producers revive into plain maps. Unknown tags pass through untouched.
func Typed() Codec {
	return typedCodec{}
}

func (typedCodec) Encode(envelope Envelope) (string, error) {
	state := envelope.State
	if state != nil {
		tagged, err := tagValue(any(state))
		if err != nil {
			return "", err
		}
		state = tagged.(map[string]any)
	}
	payload, err := gojson.Marshal(Envelope{Version: envelope.Version, State: state})
	if err != nil {
		return "", fmt.Errorf("codec: encode envelope: %w", err)
	}
	return string(payload), nil
}

func (typedCodec) Decode(raw string) (Envelope, error) {
	var envelope Envelope
	if err := gojson.Unmarshal([]byte(raw), &envelope); err != nil {
		return Envelope{}, fmt.Errorf("codec: decode envelope: %w", err)
	}
	envelope.State = sanitizeState(envelope.State)
	if envelope.State != nil {
		revived, err := reviveValue(any(envelope.State))
		if err != nil {
			return Envelope{}, err
		}
		envelope.State = revived.(map[string]any)
	}
	return envelope, nil
}

func tagValue(value any) (any, error) {
	switch typed := value.(type) {
	case time.Time:
		return map[string]any{tagKey: kindDate, valueKey: typed.Format(time.RFC3339Nano)}, nil
	case Set:
		members := make([]any, len(typed))
		for i, member := range typed {
			tagged, err := tagValue(member)
			if err != nil {
				return nil, err
			}
			members[i] = tagged
		}
		return map[string]any{tagKey: kindSet, valueKey: members}, nil
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, nested := range typed {
			tagged, err := tagValue(nested)
			if err != nil {
				return nil, err
			}
			out[key] = tagged
		}
		return out, nil
	case []any:
		out := make([]any, len(typed))
		for i, nested := range typed {
			tagged, err := tagValue(nested)
			if err != nil {
				return nil, err
			}
			out[i] = tagged
		}
		return out, nil
	default:
		return value, nil
	}
}

func reviveValue(value any) (any, error) {
	switch typed := value.(type) {
	case map[string]any:
		if kind, tagged := taggedKind(typed); tagged {
			return reviveTagged(kind, typed[valueKey])
		}
		for key, nested := range typed {
			revived, err := reviveValue(nested)
			if err != nil {
				return nil, err
			}
			typed[key] = revived
		}
		return typed, nil
	case []any:
		for i, nested := range typed {
			revived, err := reviveValue(nested)
			if err != nil {
				return nil, err
			}
			typed[i] = revived
		}
		return typed, nil
	default:
		return value, nil
	}
}

func taggedKind(value map[string]any) (string, bool) {
	if len(value) != 2 {
		return "", false
	}
	kind, ok := value[tagKey].(string)
	if !ok {
		return "", false
	}
	if _, ok := value[valueKey]; !ok {
		return "", false
	}
	return kind, true
}

func reviveTagged(kind string, payload any) (any, error) {
	switch kind {
	case kindDate:
		text, ok := payload.(string)
		if !ok {
			return nil, fmt.Errorf("codec: Date tag carries %T, want string", payload)
		}
		parsed, err := time.Parse(time.RFC3339Nano, text)
		if err != nil {
			return nil, fmt.Errorf("codec: revive Date: %w", err)
		}
		return parsed, nil
	case kindSet:
		members, ok := payload.([]any)
		if !ok {
			return nil, fmt.Errorf("codec: Set tag carries %T, want array", payload)
		}
		out := make(Set, len(members))
		for i, member := range members {
			revived, err := reviveValue(member)
			if err != nil {
				return nil, err
			}
			out[i] = revived
		}
		return out, nil
	case kindMap:
		entries, ok := payload.([]any)
		if !ok {
			return nil, fmt.Errorf("codec: Map tag carries %T, want entry array", payload)
		}
		out := make(map[string]any, len(entries))
		for _, entry := range entries {
			pair, ok := entry.([]any)
			if !ok || len(pair) != 2 {
				return nil, fmt.Errorf("codec: Map tag entry is not a key/value pair")
			}
			key, ok := pair[0].(string)
			if !ok {
				return nil, fmt.Errorf("codec: Map tag key is %T, want string", pair[0])
			}
			if _, unsafe := unsafeKeys[key]; unsafe {
				continue
			}
			revived, err := reviveValue(pair[1])
			if err != nil {
				return nil, err
			}
			out[key] = revived
		}
		return out, nil
	default:
		// Unknown producer tag, keep the raw shape.
		return map[string]any{tagKey: kind, valueKey: payload}, nil
	}
}
