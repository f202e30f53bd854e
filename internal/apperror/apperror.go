// Package apperror defines the error taxonomy shared by the pipeline and the HTTP layer.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a machine-readable error category.
type Kind string

const (
	KindInvalidFileType       Kind = "INVALID_FILE_TYPE"
	KindInsufficientInputs    Kind = "INSUFFICIENT_INPUTS"
	KindMissingRequiredField  Kind = "MISSING_REQUIRED_FIELD"
	KindInvalidParameter      Kind = "INVALID_PARAMETER"
	KindPayloadTooLarge       Kind = "PAYLOAD_TOO_LARGE"
	KindFileNotFound          Kind = "FILE_NOT_FOUND"
	KindTransformationFailure Kind = "TRANSFORMATION_FAILURE"
	KindInternal              Kind = "INTERNAL_ERROR"
)

// Error is a pipeline error. Message is safe to show to clients; Cause is not.
type Error struct {
	Kind    Kind
	Message string
	Op      string
	Cause   error
}

func (e *Error) Error() string {
	prefix := string(e.Kind)
	if e.Op != "" {
		prefix = e.Op + ": " + prefix
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error that keeps cause for logging.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// WithOp returns a copy of e annotated with the operation name.
func (e *Error) WithOp(op string) *Error {
	cp := *e
	cp.Op = op
	return &cp
}

// Transformation wraps a PDF library fault.
func Transformation(cause error) *Error {
	return Wrap(KindTransformationFailure, "failed to process PDF", cause)
}

// As extracts an *Error from err.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// KindOf returns the kind of err, or KindInternal for foreign errors.
func KindOf(err error) Kind {
	if appErr, ok := As(err); ok {
		return appErr.Kind
	}
	return KindInternal
}

// IsKind reports whether err carries the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsValidation reports whether the kind is a client input problem.
func (k Kind) IsValidation() bool {
	switch k {
	case KindInvalidFileType, KindInsufficientInputs, KindMissingRequiredField, KindInvalidParameter:
		return true
	}
	return false
}

// StatusCode maps a kind to its HTTP status. FileNotFound maps to 404; the
// operation endpoints override it because a vanished staged file is a server fault.
func StatusCode(kind Kind) int {
	switch {
	case kind.IsValidation():
		return http.StatusBadRequest
	case kind == KindPayloadTooLarge:
		return http.StatusRequestEntityTooLarge
	case kind == KindFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
