package persist

import (
	"fmt"
	"reflect"

	celgo "github.com/google/cel-go/cel"
)

// celSelector derives the persisted slice using cel-go.
type celSelector struct {
	program    celgo.Program
	expression string
}

// NewCELSelector compiles expression once and returns a selector that
// evaluates it with the live state bound as the `state` variable. The
// expression must produce a map.
func NewCELSelector(expression string) (Selector, error) {
	if expression == "" {
		return nil, fmt.Errorf("persist: cel selector expression must not be empty")
	}
	env, err := celgo.NewEnv(celgo.Variable("state", celgo.DynType))
	if err != nil {
		return nil, fmt.Errorf("persist: cel environment: %w", err)
	}
	ast, issues := env.Parse(expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("persist: parse cel selector %q: %w", expression, issues.Err())
	}
	checked, issues := env.Check(ast)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("persist: check cel selector %q: %w", expression, issues.Err())
	}
	program, err := env.Program(checked)
	if err != nil {
		return nil, fmt.Errorf("persist: cel program %q: %w", expression, err)
	}
	return &celSelector{program: program, expression: expression}, nil
}

var stateMapType = reflect.TypeOf(map[string]any{})

func (s *celSelector) Select(state map[string]any) (map[string]any, error) {
	out, _, err := s.program.Eval(map[string]any{"state": state})
	if err != nil {
		return nil, fmt.Errorf("persist: cel selector %q: %w", s.expression, err)
	}
	native, err := out.ConvertToNative(stateMapType)
	if err != nil {
		return nil, fmt.Errorf("persist: cel selector %q produced non-map result: %w", s.expression, err)
	}
	return selectionResult("cel", native)
}
