// Package response writes JSON bodies for handlers and middleware that work
// on a bare http.ResponseWriter.
package response

import (
	"encoding/json"
	"errors"
	"net/http"
)

type envelope struct {
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Errors  interface{} `json:"errors,omitempty"`
}

// StatusError is implemented by errors that know their HTTP status and a
// message that is safe to show to the caller.
type StatusError interface {
	error
	HTTPStatus() int
	PublicMessage() string
}

// JSON writes v as-is with the given status.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func write(w http.ResponseWriter, status int, body envelope) {
	JSON(w, status, body)
}

// Error sends a JSON error response.
func Error(w http.ResponseWriter, status int, message string) {
	write(w, status, envelope{Status: status, Message: message})
}

// ValidationError sends a 422 with field-level error map.
func ValidationError(w http.ResponseWriter, errs map[string]string) {
	write(w, http.StatusUnprocessableEntity, envelope{
		Status:  http.StatusUnprocessableEntity,
		Message: "Validation failed",
		Errors:  errs,
	})
}

// Fail maps err to a status and writes it. Errors that do not implement
// StatusError become a bare 500 so internals never reach the client.
// It returns the status written.
func Fail(w http.ResponseWriter, err error) int {
	var se StatusError
	if errors.As(err, &se) {
		status := se.HTTPStatus()
		Error(w, status, se.PublicMessage())
		return status
	}
	Error(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	return http.StatusInternalServerError
}

// Unauthorized sends a 401.
func Unauthorized(w http.ResponseWriter, message string) {
	Error(w, http.StatusUnauthorized, message)
}

// Forbidden sends a 403.
func Forbidden(w http.ResponseWriter, message string) {
	Error(w, http.StatusForbidden, message)
}

// TooManyRequests sends a 429.
func TooManyRequests(w http.ResponseWriter) {
	Error(w, http.StatusTooManyRequests, "Too many requests")
}
