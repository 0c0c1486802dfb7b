// Package apperr defines the typed errors that cross the service boundary
// and how each kind maps onto an HTTP status.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorises an error for the transport layer.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnsupportedMedia
	KindUpstream
	KindNotFound
)

// String returns the kind name used in logs.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "VALIDATION"
	case KindUnsupportedMedia:
		return "UNSUPPORTED_MEDIA"
	case KindUpstream:
		return "UPSTREAM"
	case KindNotFound:
		return "NOT_FOUND"
	default:
		return "INTERNAL"
	}
}

// HTTPStatus returns the status code a handler should answer with.
// Upstream AI failures surface as 400 at the ingestion boundary.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation, KindUpstream:
		return http.StatusBadRequest
	case KindUnsupportedMedia:
		return http.StatusUnsupportedMediaType
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Error carries a kind, a user-facing message and the internal cause. The
// cause is for logs only and is never rendered to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error without a cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches kind and message to err. A nil err yields nil.
func Wrap(err error, kind Kind, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Message: message, Err: err}
}

// Validation is shorthand for a KindValidation error.
func Validation(message string) *Error {
	return New(KindValidation, message)
}

// UnsupportedMedia is shorthand for a KindUnsupportedMedia error.
func UnsupportedMedia(mimeType string) *Error {
	return New(KindUnsupportedMedia, fmt.Sprintf("unsupported content type: %q", mimeType))
}

// Upstream wraps a failure of the external completion service.
func Upstream(err error) *Error {
	return Wrap(err, KindUpstream, "completion service failed")
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
