package persist

import (
	"reflect"
	"testing"
)

var boardState = map[string]any{
	"board":    map[string]any{"columns": []any{"todo", "done"}},
	"settings": map[string]any{"theme": "dark"},
	"volatile": "scratch",
}

func TestSlicesSelector(t *testing.T) {
	selector := Slices("board", "missing")
	got, err := selector.Select(boardState)
	if err != nil {
		t.Fatalf("unexpected select error: %v", err)
	}
	want := map[string]any{"board": map[string]any{"columns": []any{"todo", "done"}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected selection:\n got %#v\nwant %#v", got, want)
	}

	// The selection must be detached from the live state.
	got["board"].(map[string]any)["columns"] = nil
	if boardState["board"].(map[string]any)["columns"] == nil {
		t.Fatalf("selector must not share structure with the live state")
	}
}

func TestSelectorFuncAdapter(t *testing.T) {
	selector := SelectorFunc(func(state map[string]any) (map[string]any, error) {
		return map[string]any{"theme": state["settings"].(map[string]any)["theme"]}, nil
	})
	got, err := selector.Select(boardState)
	if err != nil {
		t.Fatalf("unexpected select error: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]any{"theme": "dark"}) {
		t.Fatalf("unexpected selection %#v", got)
	}
}

func TestExprSelector(t *testing.T) {
	selector, err := NewExprSelector(`{"board": state.board, "theme": settings.theme}`)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	got, err := selector.Select(boardState)
	if err != nil {
		t.Fatalf("unexpected select error: %v", err)
	}
	want := map[string]any{
		"board": map[string]any{"columns": []any{"todo", "done"}},
		"theme": "dark",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected selection:\n got %#v\nwant %#v", got, want)
	}
}

func TestExprSelectorRejectsNonMapResult(t *testing.T) {
	selector, err := NewExprSelector(`state.volatile`)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	if _, err := selector.Select(boardState); err == nil {
		t.Fatalf("expected non-map result to be rejected")
	}
}

func TestExprSelectorCompileFailsFast(t *testing.T) {
	if _, err := NewExprSelector(`{"x": `); err == nil {
		t.Fatalf("expected compile error for malformed expression")
	}
	if _, err := NewExprSelector(""); err == nil {
		t.Fatalf("expected empty expression to be rejected")
	}
}

func TestCELSelector(t *testing.T) {
	selector, err := NewCELSelector(`{"theme": state.settings.theme}`)
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	got, err := selector.Select(boardState)
	if err != nil {
		t.Fatalf("unexpected select error: %v", err)
	}
	if !reflect.DeepEqual(got, map[string]any{"theme": "dark"}) {
		t.Fatalf("unexpected selection %#v", got)
	}
}

func TestCELSelectorCompileFailsFast(t *testing.T) {
	if _, err := NewCELSelector(`{"x": `); err == nil {
		t.Fatalf("expected compile error for malformed expression")
	}
	if _, err := NewCELSelector(""); err == nil {
		t.Fatalf("expected empty expression to be rejected")
	}
}

func TestJSSelectorAvailability(t *testing.T) {
	selector, err := NewJSSelector(`({board: state.board})`)
	if !jsSelectorAvailable() {
		if err == nil {
			t.Fatalf("expected the stub to report the missing build tag")
		}
		return
	}
	if err != nil {
		t.Fatalf("unexpected compile error: %v", err)
	}
	got, err := selector.Select(boardState)
	if err != nil {
		t.Fatalf("unexpected select error: %v", err)
	}
	if !reflect.DeepEqual(got["board"], boardState["board"]) {
		t.Fatalf("unexpected selection %#v", got)
	}
}
