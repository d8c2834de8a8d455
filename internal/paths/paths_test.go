package paths

import (
	"reflect"
	"testing"
)

func TestRemoveDotPaths(t *testing.T) {
	state := map[string]any{
		"board": map[string]any{
			"columns": []any{"todo", "done"},
			"draft":   map[string]any{"title": "wip", "dirty": true},
		},
		"session": "abc",
	}

	got := Remove(state, []string{"board.draft.dirty", "session", "missing.path"})

	want := map[string]any{
		"board": map[string]any{
			"columns": []any{"todo", "done"},
			"draft":   map[string]any{"title": "wip"},
		},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected result:\n got %#v\nwant %#v", got, want)
	}

	// The input must stay untouched.
	if _, ok := state["session"]; !ok {
		t.Fatalf("Remove mutated its input")
	}
	draft := state["board"].(map[string]any)["draft"].(map[string]any)
	if _, ok := draft["dirty"]; !ok {
		t.Fatalf("Remove mutated nested input")
	}
}

func TestRemoveStopsAtNonMapSegments(t *testing.T) {
	state := map[string]any{"scalar": 1}
	got := Remove(state, []string{"scalar.nested"})
	if !reflect.DeepEqual(got, map[string]any{"scalar": 1}) {
		t.Fatalf("unexpected result: %#v", got)
	}
}

func TestRemoveNilState(t *testing.T) {
	if got := Remove(nil, []string{"a"}); got != nil {
		t.Fatalf("expected nil passthrough, got %#v", got)
	}
}
