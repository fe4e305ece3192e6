package inference

import (
	"errors"
	"fmt"
	"net/http"
)

// backendUnavailableError signals that the inference server could not be
// reached or answered with a non-success status.
type backendUnavailableError struct {
	op          string
	status      int // upstream status, 0 when no response was received
	unreachable bool
	msg         string
}

func (e backendUnavailableError) Error() string {
	if e.unreachable {
		return fmt.Sprintf("inference server unreachable during %s: %s", e.op, e.msg)
	}
	return fmt.Sprintf("inference server error during %s (status %d): %s", e.op, e.status, e.msg)
}

// StatusCode maps to 503 when the server is unreachable and 500 otherwise.
func (e backendUnavailableError) StatusCode() int {
	if e.unreachable {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// ErrBackendUnavailable constructs an unreachable-backend error.
func ErrBackendUnavailable(op, msg string) error {
	return backendUnavailableError{op: op, unreachable: true, msg: msg}
}

// IsBackendUnavailable reports whether err is a backend availability failure.
func IsBackendUnavailable(err error) bool {
	var e backendUnavailableError
	return errors.As(err, &e)
}

// UpstreamStatus returns the inference server's HTTP status carried by err,
// or 0 when err carries none.
func UpstreamStatus(err error) int {
	var be backendUnavailableError
	if errors.As(err, &be) {
		return be.status
	}
	var ue unsupportedModelError
	if errors.As(err, &ue) {
		return ue.status
	}
	return 0
}

// unsupportedModelError signals that the backend rejected a model/file
// combination. The backend's own status is surfaced.
type unsupportedModelError struct {
	model  string
	status int
	msg    string
}

func (e unsupportedModelError) Error() string {
	if e.msg == "" {
		return "model does not accept file input: " + e.model
	}
	return "model does not accept file input: " + e.model + ": " + e.msg
}

func (e unsupportedModelError) StatusCode() int {
	if e.status >= 400 && e.status < 500 {
		return e.status
	}
	return http.StatusUnprocessableEntity
}

// ErrUnsupportedModel constructs an unsupported-model error raised before any
// backend call (e.g. by a strict allow-list check).
func ErrUnsupportedModel(model string) error { return unsupportedModelError{model: model} }

// IsUnsupportedModel reports whether err indicates a rejected model/file pair.
func IsUnsupportedModel(err error) bool {
	var e unsupportedModelError
	return errors.As(err, &e)
}
