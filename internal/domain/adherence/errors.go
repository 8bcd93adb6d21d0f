package adherence

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the referenced adherence record does not exist.
var ErrNotFound = errors.New("adherence record not found")

// ValidationError reports malformed caller input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DependencyError wraps a datastore failure without altering its message.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DependencyError) Unwrap() error { return e.Err }
