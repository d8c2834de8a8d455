package storage

import "fmt"

const maxKeyLength = 255

// Reserved key names that would collide with object prototype machinery in
// any structured-text consumer of the persisted record. Rejected at the
// naming layer, independent of payload sanitisation in the codec.
var reservedKeys = map[string]struct{}{
	"__proto__":   {},
	"prototype":   {},
	"constructor": {},
}

// ValidateKey checks a storage key name before any use: length 1-255,
// charset restricted to alphanumerics plus dot, underscore and hyphen, and
// never one of the reserved prototype names.
func ValidateKey(name string) error {
	if name == "" {
		return fmt.Errorf("storage: key name must not be empty")
	}
	if len(name) > maxKeyLength {
		return fmt.Errorf("storage: key name exceeds %d characters", maxKeyLength)
	}
	if _, reserved := reservedKeys[name]; reserved {
		return fmt.Errorf("storage: key name %q is reserved", name)
	}
	for _, r := range name {
		if !validKeyRune(r) {
			return fmt.Errorf("storage: key name %q contains invalid character %q; allowed are [A-Za-z0-9._-]", name, r)
		}
	}
	return nil
}

func validKeyRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z':
		return true
	case r >= 'A' && r <= 'Z':
		return true
	case r >= '0' && r <= '9':
		return true
	case r == '.' || r == '_' || r == '-':
		return true
	default:
		return false
	}
}
