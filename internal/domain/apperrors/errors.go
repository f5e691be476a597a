// Package apperrors defines the error taxonomy surfaced by the experiment core.
package apperrors

import (
	"errors"
	"fmt"
)

// Kind classifies a failure for the transport layer.
type Kind string

const (
	// KindNotFound signals an absent session, condition, or participant.
	KindNotFound Kind = "NOT_FOUND"
	// KindNotActive signals an operation against a terminated session.
	KindNotActive Kind = "NOT_ACTIVE"
	// KindNoActiveConditions signals an empty active-condition set. Fatal to
	// session creation and never retried.
	KindNoActiveConditions Kind = "NO_ACTIVE_CONDITIONS"
	// KindGatewayFailure signals a completion backend error. The turn is
	// aborted before any persistence.
	KindGatewayFailure Kind = "GATEWAY_FAILURE"
	// KindPersistenceFailure signals a write failure after a successful
	// completion call. Surfaced distinctly because the model reply was
	// obtained but not recorded.
	KindPersistenceFailure Kind = "PERSISTENCE_FAILURE"
	// KindValidation signals rejected caller input.
	KindValidation Kind = "VALIDATION"
	// KindDatabase signals a store failure outside the post-gateway window.
	KindDatabase Kind = "DATABASE_ERROR"
)

// Error carries a kind, a human readable message, and an optional cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error of the given kind with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a cause to a new error of the given kind.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the kind from err, or KindDatabase for unclassified errors.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindDatabase
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
