package errs

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Sentinel errors covering every failure class the routing engine reports.
var (
	ErrNotFound           = newSentinel(CodeNotFound, "resource not found")
	ErrUnauthorized       = newSentinel(CodeUnauthorized, "action not permitted for this actor")
	ErrPreconditionFailed = newSentinel(CodePreconditionFailed, "document state does not permit this action")
	ErrConflict           = newSentinel(CodeConflict, "document was modified concurrently")
	ErrValidation         = newSentinel(CodeValidation, "validation error")
	ErrNoEligibleItems    = newSentinel(CodeNoEligibleItems, "no eligible items in bulk request")
	ErrDatabase           = newSentinel(CodeDatabase, "database error")
)

const (
	CodeNotFound           = "not_found"
	CodeUnauthorized       = "unauthorized_action"
	CodePreconditionFailed = "precondition_failed"
	CodeConflict           = "conflict"
	CodeValidation         = "validation_error"
	CodeNoEligibleItems    = "no_eligible_items"
	CodeDatabase           = "database_error"
)

var statusCodeMap = map[string]int{
	CodeNotFound:           http.StatusNotFound,
	CodeUnauthorized:       http.StatusForbidden,
	CodePreconditionFailed: http.StatusPreconditionFailed,
	CodeConflict:           http.StatusConflict,
	CodeValidation:         http.StatusBadRequest,
	CodeNoEligibleItems:    http.StatusBadRequest,
	CodeDatabase:           http.StatusInternalServerError,
}

// Error is the typed failure reported by the routing engine and its services.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	err     error
}

func (e *Error) Error() string {
	if e.err == nil {
		return e.Code + ": " + e.Message
	}
	return e.Code + ": " + e.err.Error()
}

func (e *Error) Unwrap() error { return e.err }

// Is matches two typed errors by code so sentinel comparison works
// through wrapping.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return errors.Is(e.err, target)
	}
	return e.Code == t.Code
}

func newSentinel(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// New returns a typed error carrying the sentinel's code with a
// caller-supplied message.
func New(sentinel *Error, message string) *Error {
	return &Error{Code: sentinel.Code, Message: message}
}

// Newf is New with formatting.
func Newf(sentinel *Error, format string, args ...any) *Error {
	return &Error{Code: sentinel.Code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches an underlying cause while keeping the sentinel's code.
func Wrap(sentinel *Error, message string, cause error) *Error {
	return &Error{Code: sentinel.Code, Message: message, err: errors.Wrap(cause, message)}
}

// CodeOf extracts the machine code from any error.
func CodeOf(err error) string {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Code
	}
	return CodeDatabase
}

// MessageOf returns the user-facing message for any error.
func MessageOf(err error) string {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Message
	}
	return "internal error"
}

// HTTPStatus maps an error to the status code controllers should emit.
func HTTPStatus(err error) int {
	if status, ok := statusCodeMap[CodeOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func IsNotFound(err error) bool           { return errors.Is(err, ErrNotFound) }
func IsUnauthorized(err error) bool       { return errors.Is(err, ErrUnauthorized) }
func IsPreconditionFailed(err error) bool { return errors.Is(err, ErrPreconditionFailed) }
func IsConflict(err error) bool           { return errors.Is(err, ErrConflict) }
func IsValidation(err error) bool         { return errors.Is(err, ErrValidation) }
func IsNoEligibleItems(err error) bool    { return errors.Is(err, ErrNoEligibleItems) }
