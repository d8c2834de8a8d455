//go:build !js_eval

package persist

import "fmt"

// NewJSSelector is unavailable without the js_eval build tag.
func NewJSSelector(expression string) (Selector, error) {
	return nil, fmt.Errorf("persist: js selector %q requires the js_eval build tag", expression)
}

func jsSelectorAvailable() bool {
	return false
}
