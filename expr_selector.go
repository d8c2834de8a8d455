package persist

import (
	"fmt"

	exprlang "github.com/expr-lang/expr"
	exprvm "github.com/expr-lang/expr/vm"
)

// exprSelector derives the persisted slice using github.com/expr-lang/expr.
type exprSelector struct {
	program    *exprvm.Program
	expression string
}

// NewExprSelector compiles expression once and returns a selector that
// evaluates it against the live state. The state is bound both as the
// `state` variable and as top-level identifiers; the expression must produce
// a map.
func NewExprSelector(expression string) (Selector, error) {
	if expression == "" {
		return nil, fmt.Errorf("persist: expr selector expression must not be empty")
	}
	program, err := exprlang.Compile(expression,
		exprlang.Env(map[string]any{}),
		exprlang.AllowUndefinedVariables(),
	)
	if err != nil {
		return nil, fmt.Errorf("persist: compile expr selector %q: %w", expression, err)
	}
	return &exprSelector{program: program, expression: expression}, nil
}

func (s *exprSelector) Select(state map[string]any) (map[string]any, error) {
	env := map[string]any{"state": state}
	for key, value := range state {
		if key == "state" {
			continue
		}
		env[key] = value
	}
	result, err := exprlang.Run(s.program, env)
	if err != nil {
		return nil, fmt.Errorf("persist: expr selector %q: %w", s.expression, err)
	}
	return selectionResult("expr", result)
}
