package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error into one of the three failure classes the
// service distinguishes: bad input, broken upstream, broken us.
type Kind string

const (
	KindUser     Kind = "USER"
	KindGateway  Kind = "GATEWAY"
	KindInternal Kind = "INTERNAL"
)

// Error represents a typed domain error with HTTP awareness.
type Error struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Status  int    `json:"status"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error.
func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// User builds a bad-input error. The message is shown to end users verbatim.
func User(message string) *Error {
	return &Error{Kind: KindUser, Status: http.StatusBadRequest, Message: message}
}

// Userf is User with formatting.
func Userf(format string, args ...interface{}) *Error {
	return User(fmt.Sprintf(format, args...))
}

// Gateway wraps a failure to reach an external system.
func Gateway(err error, message string) *Error {
	return &Error{Kind: KindGateway, Status: http.StatusBadGateway, Message: message, Err: err}
}

// Internal wraps a decoding, mapping or invariant failure.
func Internal(err error, message string) *Error {
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: message, Err: err}
}

// NotFound marks an unknown resource kind in the request path.
func NotFound(message string) *Error {
	return &Error{Kind: KindUser, Status: http.StatusNotFound, Message: message}
}

// FromError normalises any error into an *Error. Unrecognised errors are
// treated as internal.
func FromError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err, "internal error")
}

// KindOf reports the kind of an arbitrary error chain.
func KindOf(err error) Kind {
	return FromError(err).Kind
}

// IsUser reports whether the error chain carries a user error.
func IsUser(err error) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == KindUser
}

// IsGateway reports whether the error chain carries a gateway error. The
// schedule path uses this to decide whether a failure should engage the
// cooldown and permit stale reads.
func IsGateway(err error) bool {
	if err == nil {
		return false
	}
	return KindOf(err) == KindGateway
}
