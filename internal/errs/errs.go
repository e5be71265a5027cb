// internal/errs/errs.go
package errs

import "fmt"

// The three recoverable error classes for rejected player actions. All of
// them surface as a scoped error event to the offending connection and never
// mutate shared state.

// ValidationError means a payload was malformed or missing a field.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// PreconditionError means an action was well formed but illegal in the
// current state: not your turn, room full, no rolls remaining, and so on.
type PreconditionError struct {
	Msg string
}

func (e *PreconditionError) Error() string { return e.Msg }

// NotFoundError means the referenced room code is unknown.
type NotFoundError struct {
	Msg string
}

func (e *NotFoundError) Error() string { return e.Msg }

// Validationf builds a ValidationError.
func Validationf(format string, args ...interface{}) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// Preconditionf builds a PreconditionError.
func Preconditionf(format string, args ...interface{}) error {
	return &PreconditionError{Msg: fmt.Sprintf(format, args...)}
}

// NotFoundf builds a NotFoundError.
func NotFoundf(format string, args ...interface{}) error {
	return &NotFoundError{Msg: fmt.Sprintf(format, args...)}
}
