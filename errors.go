package neorecipe

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a failure so callers can translate it into a response
// status without inspecting messages.
type ErrorCode string

const (
	// ErrCodeInvalidID indicates an identifier that is not a store-native id.
	ErrCodeInvalidID ErrorCode = "INVALID_ID"
	// ErrCodeNotFound indicates the read, update or delete target is absent.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodeNotCreated indicates a create query returned no row.
	ErrCodeNotCreated ErrorCode = "NOT_CREATED"
	// ErrCodeMalformedResult indicates a result row lacks required fields.
	ErrCodeMalformedResult ErrorCode = "MALFORMED_RESULT"
	// ErrCodeUpstreamQuery indicates the gateway call itself failed or timed out.
	ErrCodeUpstreamQuery ErrorCode = "UPSTREAM_QUERY_FAILURE"
)

// Sentinel errors. They match any *Error carrying the same code:
//
//	if errors.Is(err, neorecipe.ErrNotFound) { ... }
var (
	ErrInvalidID       = &Error{Code: ErrCodeInvalidID, Message: "invalid id"}
	ErrNotFound        = &Error{Code: ErrCodeNotFound, Message: "record not found"}
	ErrNotCreated      = &Error{Code: ErrCodeNotCreated, Message: "record not created"}
	ErrMalformedResult = &Error{Code: ErrCodeMalformedResult, Message: "malformed result"}
	ErrUpstreamQuery   = &Error{Code: ErrCodeUpstreamQuery, Message: "query failed"}
)

// Error is the error type returned by every operation of this package.
type Error struct {
	Code ErrorCode
	// Op names the operation that failed, e.g. "getRecipe".
	Op      string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is an *Error with the same code.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first *Error in err's chain, or "" if there
// is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func newError(code ErrorCode, op, format string, args ...any) *Error {
	return &Error{Code: code, Op: op, Message: fmt.Sprintf(format, args...)}
}

// upstream wraps a gateway failure. The cause message is kept verbatim.
func upstream(op string, cause error) *Error {
	return &Error{Code: ErrCodeUpstreamQuery, Op: op, Message: "query failed", Cause: cause}
}
