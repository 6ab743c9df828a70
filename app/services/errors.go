// Package services holds the marketplace rules that sit between the HTTP
// handlers and the repositories.
package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/plantnet/plantnet/app/repositories"
)

// Kind classifies a service failure. Each kind maps to one HTTP status.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindBadRequest
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindBadRequest:
		return "bad_request"
	case KindConflict:
		return "conflict"
	default:
		return "internal"
	}
}

// Error is returned by every service method that fails. Message is shown to
// the caller; Err is kept for logs only.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPStatus implements response.StatusError.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage implements response.StatusError. Internal failures never
// expose their message.
func (e *Error) PublicMessage() string {
	if e.Kind == KindInternal {
		return http.StatusText(http.StatusInternalServerError)
	}
	return e.Message
}

// IsKind reports whether err is a service *Error of kind k.
func IsKind(err error, k Kind) bool {
	var se *Error
	return errors.As(err, &se) && se.Kind == k
}

func badRequest(msg string) error { return &Error{Kind: KindBadRequest, Message: msg} }
func forbidden(msg string) error  { return &Error{Kind: KindForbidden, Message: msg} }
func notFound(msg string) error   { return &Error{Kind: KindNotFound, Message: msg} }
func conflict(msg string) error   { return &Error{Kind: KindConflict, Message: msg} }

func internal(op string, err error) error {
	return &Error{Kind: KindInternal, Message: op, Err: err}
}

// translate turns a repository error into a service error. what names the
// record for the not-found message ("plant", "order").
func translate(op, what string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrNotFound):
		return &Error{Kind: KindNotFound, Message: what + " not found", Err: err}
	case errors.Is(err, repositories.ErrInvalidID):
		return &Error{Kind: KindBadRequest, Message: "invalid " + what + " id", Err: err}
	case errors.Is(err, repositories.ErrInsufficientStock):
		return &Error{Kind: KindConflict, Message: "not enough stock", Err: err}
	default:
		return internal(op, err)
	}
}

var errNoDisk = errors.New("storage disk not configured")
