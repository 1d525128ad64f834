// Package apperr defines the error taxonomy shared by the fleet domain services.
//
// Every error raised by a domain service carries a stable Kind and a
// human-readable message. Domain packages declare their sentinels as
// *Error values so callers can match them with errors.Is, while the HTTP
// adapter only needs KindOf to choose a status code:
//
//	var ErrGatewayNotFound = apperr.New(apperr.NotFound, "gateway not found")
//
//	if apperr.KindOf(err) == apperr.Conflict {
//	    // 409
//	}
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a domain error.
type Kind string

// Error kinds.
const (
	// NotFound means a referenced gateway or device does not exist.
	NotFound Kind = "not_found"

	// Conflict means a uniqueness rule was violated (serial number, IP, uid).
	Conflict Kind = "conflict"

	// BadRequest means a business rule rejected an otherwise valid request.
	BadRequest Kind = "bad_request"

	// Internal means the store broke an invariant or failed in an unclassified way.
	Internal Kind = "internal"
)

// Error is a classified domain error.
type Error struct {
	Kind    Kind
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// New creates a classified error with no cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a classified error around a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of the first *Error in err's chain.
// Unclassified errors are Internal; nil has no kind.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Kind
	}
	return Internal
}

// MessageOf returns the message of the first *Error in err's chain,
// or the fallback for unclassified errors.
func MessageOf(err error, fallback string) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.Message
	}
	return fallback
}
