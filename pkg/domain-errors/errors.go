// Package domainerrors defines the error taxonomy every layer speaks.
// Services translate store failures into coded errors; the transport layer
// maps codes onto HTTP statuses in exactly one place.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for transport mapping and for callers that
// branch on failure kind.
type Code string

const (
	// CodeValidation means the caller's input was incomplete or malformed;
	// no side effect occurred.
	CodeValidation Code = "validation"
	// CodeUnauthenticated means the credential was missing, invalid, or
	// expired.
	CodeUnauthenticated Code = "unauthenticated"
	// CodeForbidden means the credential was valid but the role lacks the
	// required permission.
	CodeForbidden Code = "forbidden"
	// CodeNotFound means the requested identifier has no matching record.
	CodeNotFound Code = "not_found"
	// CodeConflict means the write lost to a concurrent change or a
	// uniqueness rule.
	CodeConflict Code = "conflict"
	// CodeConnection means a backing store is unreachable.
	CodeConnection Code = "connection"
	// CodePersistence means a query or transaction failed after input was
	// already valid.
	CodePersistence Code = "persistence"
	// CodePrecondition signals a wiring bug (e.g. authorization ran without
	// authentication), never a bad request.
	CodePrecondition Code = "precondition"
	// CodeInternal is the fallback for everything else.
	CodeInternal Code = "internal"
)

// Error is a coded error. Message is safe to show the caller for caller-fault
// codes; Detail carries extra context; the wrapped cause stays server-side.
type Error struct {
	Code    Code
	Message string
	Detail  string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New builds a coded error with a fixed message.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf builds a coded error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, cause: cause}
}

// WithDetail returns a copy carrying extra caller-visible detail.
func (e *Error) WithDetail(detail string) *Error {
	out := *e
	out.Detail = detail
	return &out
}

// Is reports whether err carries the given code anywhere in its chain.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the code from an error chain, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// ToHTTPStatus maps a code onto its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeValidation:
		return http.StatusBadRequest
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeConnection:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
