// Package fault defines the error taxonomy shared by the rental core and the
// HTTP layer. Business-rule rejections carry a Kind so transports can map them
// to status codes without inspecting message text.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping and retry policy.
type Kind int

// Error kinds.
const (
	// KindValidation marks malformed or missing input.
	KindValidation Kind = iota + 1
	// KindPrecondition marks a business-rule rejection. Never retried.
	KindPrecondition
	// KindNotFound marks an unknown entity id.
	KindNotFound
	// KindConflict marks a lost atomic-commit race. The only kind eligible
	// for transparent retry.
	KindConflict
	// KindServer marks an unexpected internal failure.
	KindServer
)

// Error is a classified error with a stable machine-readable code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap exposes the wrapped cause to errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// Is matches two fault errors by code so sentinel comparisons work after wrapping.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == other.Code
}

// New constructs a classified error.
func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

// NotFound constructs a not-found error for a named entity.
func NotFound(entity, id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    entity + "_not_found",
		Message: fmt.Sprintf("%s %s not found", entity, id),
	}
}

// Validation constructs an input-validation error.
func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Code: "invalid_input", Message: message}
}

// Server wraps an unexpected failure, hiding internals from callers.
func Server(err error) *Error {
	return &Error{Kind: KindServer, Code: "internal_error", Message: "internal error", Err: err}
}

// Conflict wraps a lost commit race.
func Conflict(err error) *Error {
	return &Error{Kind: KindConflict, Code: "store_conflict", Message: "conflicting concurrent update", Err: err}
}

// KindOf returns the kind of err when it is a fault error, KindServer otherwise.
func KindOf(err error) Kind {
	if err == nil {
		return 0
	}
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindServer
}
