package codec

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestJSONRoundTrip(t *testing.T) {
	c := JSON()
	envelope := Envelope{
		Version: 3,
		State: map[string]any{
			"columns": []any{
				map[string]any{"id": "todo", "cards": []any{"a", "b"}},
				map[string]any{"id": "done", "cards": []any{}},
			},
			"filter": "mine",
			"limit":  float64(25),
		},
	}

	raw, err := c.Encode(envelope)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	decoded, err := c.Decode(raw)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if !reflect.DeepEqual(decoded, envelope) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", decoded, envelope)
	}
}

func TestJSONDecodeMalformedPayload(t *testing.T) {
	if _, err := JSON().Decode("{not json"); err == nil {
		t.Fatalf("expected decode error for malformed payload")
	}
}

func TestDecodeStripsUnsafeKeysAtEveryDepth(t *testing.T) {
	payloads := []string{
		`{"version":1,"state":{"__proto__":{"polluted":true}}}`,
		`{"version":1,"state":{"nested":{"constructor":{"prototype":{"polluted":true}}}}}`,
		`{"version":1,"state":{"items":[{"__proto__":{"polluted":true},"keep":1}]}}`,
		`{"version":1,"state":{"prototype":1,"keep":true}}`,
	}
	for _, payload := range payloads {
		envelope, err := JSON().Decode(payload)
		if err != nil {
			t.Fatalf("unexpected decode error for %s: %v", payload, err)
		}
		assertNoUnsafeKeys(t, envelope.State)
	}
}

func assertNoUnsafeKeys(t *testing.T, value any) {
	t.Helper()
	switch typed := value.(type) {
	case map[string]any:
		for key, nested := range typed {
			if _, unsafe := unsafeKeys[key]; unsafe {
				t.Fatalf("unsafe key %q survived decoding", key)
			}
			assertNoUnsafeKeys(t, nested)
		}
	case []any:
		for _, nested := range typed {
			assertNoUnsafeKeys(t, nested)
		}
	}
}

func TestReplacerAndReviverHooks(t *testing.T) {
	redacting := JSON(WithReplacer(func(key string, value any) any {
		if key == "token" {
			return "redacted"
		}
		return value
	}))
	raw, err := redacting.Encode(Envelope{Version: 1, State: map[string]any{"token": "secret", "keep": "x"}})
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	if strings.Contains(raw, "secret") {
		t.Fatalf("replacer did not run: %s", raw)
	}

	upper := JSON(WithReviver(func(key string, value any) any {
		if text, ok := value.(string); ok {
			return strings.ToUpper(text)
		}
		return value
	}))
	envelope, err := upper.Decode(`{"version":1,"state":{"filter":"mine"}}`)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if envelope.State["filter"] != "MINE" {
		t.Fatalf("reviver did not run, got %#v", envelope.State)
	}
}

func TestEncodeReplacerLeavesInputUntouched(t *testing.T) {
	state := map[string]any{
		"auth":  map[string]any{"token": "secret"},
		"items": []any{map[string]any{"token": "secret"}},
	}
	c := JSON(WithReplacer(func(key string, value any) any {
		if key == "token" {
			return "redacted"
		}
		return value
	}))

	raw, err := c.Encode(Envelope{Version: 1, State: state})
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	if strings.Contains(raw, "secret") {
		t.Fatalf("replacer did not run: %s", raw)
	}
	if state["auth"].(map[string]any)["token"] != "secret" {
		t.Fatalf("encode mutated the caller's nested map")
	}
	if state["items"].([]any)[0].(map[string]any)["token"] != "secret" {
		t.Fatalf("encode mutated the caller's slice element")
	}
}

func TestTypedCodecRoundTrip(t *testing.T) {
	stamp := time.Date(2026, 2, 14, 9, 30, 0, 123456789, time.UTC)
	envelope := Envelope{
		Version: 2,
		State: map[string]any{
			"updatedAt": stamp,
			"labels":    Set{"bug", "p1"},
			"board":     map[string]any{"deadline": stamp},
		},
	}

	raw, err := Typed().Encode(envelope)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	decoded, err := Typed().Decode(raw)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if !reflect.DeepEqual(decoded, envelope) {
		t.Fatalf("typed round trip mismatch:\n got %#v\nwant %#v", decoded, envelope)
	}
}

func TestTypedCodecRevivesForeignTags(t *testing.T) {
	raw := `{"version":1,"state":{
		"assignees":{"__type":"Map","value":[["alice","owner"],["bob","reviewer"],["__proto__","nope"]]},
		"custom":{"__type":"Vector","value":[1,2]}
	}}`
	envelope, err := Typed().Decode(raw)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}

	assignees, ok := envelope.State["assignees"].(map[string]any)
	if !ok {
		t.Fatalf("expected Map tag to revive into a map, got %T", envelope.State["assignees"])
	}
	if assignees["alice"] != "owner" || assignees["bob"] != "reviewer" {
		t.Fatalf("unexpected map contents: %#v", assignees)
	}
	if _, polluted := assignees["__proto__"]; polluted {
		t.Fatalf("unsafe Map entry survived revival")
	}

	custom, ok := envelope.State["custom"].(map[string]any)
	if !ok || custom[tagKey] != "Vector" {
		t.Fatalf("expected unknown tag to pass through, got %#v", envelope.State["custom"])
	}
}

func TestTypedCodecRejectsMalformedDate(t *testing.T) {
	if _, err := Typed().Decode(`{"version":1,"state":{"when":{"__type":"Date","value":"not a date"}}}`); err == nil {
		t.Fatalf("expected malformed Date tag to fail decoding")
	}
}

func TestCompressedCodecRoundTrip(t *testing.T) {
	c := Compressed(JSON())
	envelope := Envelope{Version: 1, State: map[string]any{"filter": "mine"}}

	raw, err := c.Encode(envelope)
	if err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
	if strings.Contains(raw, "filter") {
		t.Fatalf("payload does not look compressed: %s", raw)
	}
	decoded, err := c.Decode(raw)
	if err != nil {
		t.Fatalf("unexpected decode error: %v", err)
	}
	if !reflect.DeepEqual(decoded, envelope) {
		t.Fatalf("compressed round trip mismatch: %#v", decoded)
	}
}

func TestCompressedCodecRejectsPlainPayload(t *testing.T) {
	if _, err := Compressed(JSON()).Decode(`{"version":1,"state":{}}`); err == nil {
		t.Fatalf("expected plain payload to be rejected")
	}
}

func TestLoaderStates(t *testing.T) {
	attempts := 0
	loader := NewLoader("flaky", func() (Codec, error) {
		attempts++
		if attempts == 1 {
			return nil, errors.New("init failed")
		}
		return JSON(), nil
	})

	if _, err := loader.Get(); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded before first Load, got %v", err)
	}
	if loader.IsLoaded() {
		t.Fatalf("loader must not report loaded before Load")
	}

	if _, err := loader.Load(); err == nil {
		t.Fatalf("expected first Load to fail")
	}
	var failed *LoadFailedError
	if _, err := loader.Get(); !errors.As(err, &failed) {
		t.Fatalf("expected LoadFailedError after failed Load, got %v", err)
	}
	if failed.Module != "flaky" {
		t.Fatalf("unexpected module name %q", failed.Module)
	}

	if _, err := loader.Load(); err != nil {
		t.Fatalf("expected retried Load to succeed, got %v", err)
	}
	if !loader.IsLoaded() {
		t.Fatalf("loader must report loaded after successful Load")
	}
	if _, err := loader.Get(); err != nil {
		t.Fatalf("unexpected Get error after load: %v", err)
	}
}

func TestLoaderHelpersAreIsolated(t *testing.T) {
	first := TypedLoader()
	second := TypedLoader()
	if _, err := first.Load(); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if second.IsLoaded() {
		t.Fatalf("independent loaders must not share cache state")
	}

	compressed := CompressedLoader(JSON())
	c, err := compressed.Load()
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if _, err := c.Encode(Envelope{Version: 1, State: map[string]any{}}); err != nil {
		t.Fatalf("unexpected encode error: %v", err)
	}
}
