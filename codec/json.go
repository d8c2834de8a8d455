package codec

import (
	"fmt"

	gojson "github.com/goccy/go-json"

	"github.com/goliatone/go-persist/internal/paths"
)

// ValueHook transforms a single value during encode (replacer) or decode
// (reviver). The key is the map key the value sits under, empty for the
// envelope root and for slice elements.
type ValueHook func(key string, value any) any

// JSONOption configures a JSON codec instance.
type JSONOption func(*jsonCodec)

// WithReplacer applies hook to every value before it is encoded.
func WithReplacer(hook ValueHook) JSONOption {
	return func(c *jsonCodec) {
		if hook != nil {
			c.replacers = append(c.replacers, hook)
		}
	}
}

// WithReviver applies hook to every value after it is decoded and sanitised.
func WithReviver(hook ValueHook) JSONOption {
	return func(c *jsonCodec) {
		if hook != nil {
			c.revivers = append(c.revivers, hook)
		}
	}
}

type jsonCodec struct {
	replacers []ValueHook
	revivers  []ValueHook
}

// JSON constructs the default structured-text codec.
func JSON(opts ...JSONOption) Codec {
	c := &jsonCodec{}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *jsonCodec) Encode(envelope Envelope) (string, error) {
	state := envelope.State
	if len(c.replacers) > 0 {
		// applyHooks rewrites maps in place, so it works on a copy and the
		// caller's state stays untouched.
		transformed := applyHooks("", any(paths.Clone(state)), c.replacers)
		mapped, ok := transformed.(map[string]any)
		if !ok && transformed != nil {
			return "", fmt.Errorf("codec: replacer produced %T for envelope state, want map", transformed)
		}
		state = mapped
	}
	payload, err := gojson.Marshal(Envelope{Version: envelope.Version, State: state})
	if err != nil {
		return "", fmt.Errorf("codec: encode envelope: %w", err)
	}
	return string(payload), nil
}

func (c *jsonCodec) Decode(raw string) (Envelope, error) {
	var envelope Envelope
	if err := gojson.Unmarshal([]byte(raw), &envelope); err != nil {
		return Envelope{}, fmt.Errorf("codec: decode envelope: %w", err)
	}
	envelope.State = sanitizeState(envelope.State)
	if len(c.revivers) > 0 && envelope.State != nil {
		revived := applyHooks("", any(envelope.State), c.revivers)
		mapped, ok := revived.(map[string]any)
		if !ok {
			return Envelope{}, fmt.Errorf("codec: reviver produced %T for envelope state, want map", revived)
		}
		envelope.State = mapped
	}
	return envelope, nil
}

// applyHooks walks value depth first, transforming leaves before parents so
// a hook sees fully transformed children.
func applyHooks(key string, value any, hooks []ValueHook) any {
	switch typed := value.(type) {
	case map[string]any:
		for nestedKey, nested := range typed {
			typed[nestedKey] = applyHooks(nestedKey, nested, hooks)
		}
	case []any:
		for i, nested := range typed {
			typed[i] = applyHooks("", nested, hooks)
		}
	}
	for _, hook := range hooks {
		value = hook(key, value)
	}
	return value
}
