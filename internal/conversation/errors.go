package conversation

import (
	"errors"
	"net/http"
)

// duplicateSessionError is returned when starting an id that already exists.
type duplicateSessionError struct{ id string }

func (e duplicateSessionError) Error() string { return "Conversation ID already exists: " + e.id }

func (e duplicateSessionError) StatusCode() int { return http.StatusBadRequest }

// ErrDuplicateSession constructs a duplicateSessionError.
func ErrDuplicateSession(id string) error { return duplicateSessionError{id: id} }

// IsDuplicateSession reports whether err indicates an id collision on start.
func IsDuplicateSession(err error) bool {
	var e duplicateSessionError
	return errors.As(err, &e)
}

// notFoundError is returned for operations on an unknown session id.
type notFoundError struct{ id string }

func (e notFoundError) Error() string { return "Conversation not found: " + e.id }

func (e notFoundError) StatusCode() int { return http.StatusNotFound }

// ErrNotFound constructs the error returned for an unknown session id.
func ErrNotFound(id string) error { return notFoundError{id: id} }

// IsNotFound reports whether err indicates a missing session.
func IsNotFound(err error) bool {
	var e notFoundError
	return errors.As(err, &e)
}

// invalidIDError rejects blank session ids.
type invalidIDError struct{}

func (invalidIDError) Error() string   { return "conversation id is required" }
func (invalidIDError) StatusCode() int { return http.StatusBadRequest }

// IsInvalidID reports whether err rejects a blank session id.
func IsInvalidID(err error) bool {
	var e invalidIDError
	return errors.As(err, &e)
}
