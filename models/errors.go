// ABOUTME: Error taxonomy shared by the mapper, directory clients and transfer runs
// ABOUTME: Typed Error with a code, matched against per-code sentinels via errors.Is
package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies failures.
type ErrorCode string

const (
	// CodeAuth indicates missing or expired credentials with no way to refresh them.
	CodeAuth ErrorCode = "auth"
	// CodeTransport indicates a network or HTTP-layer failure.
	CodeTransport ErrorCode = "transport"
	// CodeRemoteAPI indicates a non-2xx response carrying a service message.
	CodeRemoteAPI ErrorCode = "remote_api"
	// CodeStaleWrite indicates the etag sent with an update no longer matches.
	CodeStaleWrite ErrorCode = "stale_write"
	// CodeParse indicates malformed JSON or card data.
	CodeParse ErrorCode = "parse"
	// CodeUnsupportedMediaType indicates a photo that is not JPEG, PNG, GIF or BMP.
	CodeUnsupportedMediaType ErrorCode = "unsupported_media_type"
	// CodeNotFound indicates a missing contact, group, file or URL.
	CodeNotFound ErrorCode = "not_found"
	// CodeConflict indicates a duplicate group name.
	CodeConflict ErrorCode = "conflict"
	// CodeValidation indicates a record or argument that fails local checks.
	CodeValidation ErrorCode = "validation"
)

// Sentinels for errors.Is matching on an Error's code.
var (
	ErrAuth                 = errors.New("authentication required")
	ErrTransport            = errors.New("transport failure")
	ErrRemoteAPI            = errors.New("remote api error")
	ErrStaleWrite           = errors.New("stale write")
	ErrParse                = errors.New("parse error")
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("conflict")
	ErrValidation           = errors.New("validation failed")

	// ErrIndexOutOfRange is wrapped by validation errors for bad entry indexes.
	ErrIndexOutOfRange = errors.New("index out of range")
)

var sentinels = map[ErrorCode]error{
	CodeAuth:                 ErrAuth,
	CodeTransport:            ErrTransport,
	CodeRemoteAPI:            ErrRemoteAPI,
	CodeStaleWrite:           ErrStaleWrite,
	CodeParse:                ErrParse,
	CodeUnsupportedMediaType: ErrUnsupportedMediaType,
	CodeNotFound:             ErrNotFound,
	CodeConflict:             ErrConflict,
	CodeValidation:           ErrValidation,
}

// Error is the typed error returned across package boundaries.
type Error struct {
	Code       ErrorCode
	Op         string
	Message    string
	StatusCode int    // HTTP status, 0 when the failure never reached the service
	Status     string // service status such as FAILED_PRECONDITION
	Err        error
}

// NewError builds an Error without an underlying cause.
func NewError(code ErrorCode, op, message string) *Error {
	return &Error{Code: code, Op: op, Message: message}
}

// WrapError builds an Error around an underlying cause.
func WrapError(code ErrorCode, op string, err error) *Error {
	return &Error{Code: code, Op: op, Err: err}
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	b.WriteString(string(e.Code))
	if e.StatusCode > 0 {
		fmt.Fprintf(&b, " (HTTP %d", e.StatusCode)
		if e.Status != "" {
			b.WriteString(" " + e.Status)
		}
		b.WriteString(")")
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the sentinel belonging to the error's code.
func (e *Error) Is(target error) bool {
	sentinel, ok := sentinels[e.Code]
	return ok && target == sentinel
}

// CodeOf extracts the code of the first Error in err's chain, or "" if there is none.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}
