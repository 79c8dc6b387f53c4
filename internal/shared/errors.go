package shared

import (
	"errors"
	"fmt"
)

// Kind classifies an application failure. The set is closed: every failure
// surfacing from a request handler resolves to exactly one of these.
type Kind int

const (
	// KindInternal covers anything unclassified, including panics.
	KindInternal Kind = iota
	// KindValidation indicates rejected input.
	KindValidation
	// KindNotFound indicates a missing resource.
	KindNotFound
	// KindUnauthorized indicates a failed authentication or role/ownership check.
	KindUnauthorized
	// KindGeneral indicates a domain rule violation that is not a field-level
	// validation failure.
	KindGeneral
)

// Error is the tagged failure type carried from services up to the HTTP
// error boundary. Message is safe to show to clients; the wrapped cause is
// only ever logged.
type Error struct {
	Kind    Kind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

// Validation builds a validation-kind error.
func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

// NotFound builds a not-found-kind error.
func NotFound(msg string) *Error {
	return &Error{Kind: KindNotFound, Message: msg}
}

// Unauthorized builds an unauthorized-kind error.
func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// General builds a general domain error.
func General(msg string) *Error {
	return &Error{Kind: KindGeneral, Message: msg}
}

// Internal wraps an unexpected cause. The cause never reaches the client.
func Internal(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, cause: cause}
}

// KindOf extracts the kind from err, defaulting to KindInternal for anything
// that is not a *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// UserSafeMessage returns a message suitable for a response body. For
// unclassified errors the original text is withheld.
func UserSafeMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) && appErr.Kind != KindInternal {
		return appErr.Message
	}
	return "an unexpected error occurred"
}
