package persist

import (
	"errors"
	"fmt"
)

// ErrNotAttached reports a lifecycle call made before the middleware was
// attached to a store.
var ErrNotAttached = errors.New("persist: middleware is not attached to a store")

// Operation identifies the persistence phase an error belongs to.
type Operation string

const (
	OpLoad  Operation = "load"
	OpSave  Operation = "save"
	OpClear Operation = "clear"
)

// OperationError ties a failing persistence phase to the storage key and the
// originating error.
type OperationError struct {
	Op  Operation
	Key string
	Err error
}

func (e *OperationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("persist: %s key=%q: %v", e.Op, e.Key, e.Err)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapOperationError(op Operation, key string, err error) *OperationError {
	var opErr *OperationError
	if errors.As(err, &opErr) {
		return opErr
	}
	return &OperationError{Op: op, Key: key, Err: err}
}
