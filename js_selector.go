//go:build js_eval

package persist

import (
	"fmt"

	"github.com/dop251/goja"
)

// jsSelector derives the persisted slice using goja.
type jsSelector struct {
	program    *goja.Program
	expression string
}

// NewJSSelector compiles expression once and returns a selector that
// evaluates it with the live state bound as the `state` binding and as
// top-level identifiers. The expression must produce an object.
func NewJSSelector(expression string) (Selector, error) {
	if expression == "" {
		return nil, fmt.Errorf("persist: js selector expression must not be empty")
	}
	program, err := goja.Compile("", wrapJSExpression(expression), false)
	if err != nil {
		return nil, fmt.Errorf("persist: compile js selector %q: %w", expression, err)
	}
	return &jsSelector{program: program, expression: expression}, nil
}

func (s *jsSelector) Select(state map[string]any) (map[string]any, error) {
	vm := goja.New()
	vm.Set("state", state)
	for key, value := range state {
		if key == "state" {
			continue
		}
		vm.Set(key, value)
	}
	value, err := vm.RunProgram(s.program)
	if err != nil {
		return nil, fmt.Errorf("persist: js selector %q: %w", s.expression, err)
	}
	return selectionResult("js", value.Export())
}

func wrapJSExpression(expression string) string {
	return fmt.Sprintf("(function(){ return (%s); })()", expression)
}

func jsSelectorAvailable() bool {
	return true
}
