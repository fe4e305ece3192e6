package staging

import (
	"errors"
	"net/http"
)

// uploadError reports a missing, empty, oversized or unreadable upload.
type uploadError struct {
	msg string
	err error
}

func (e uploadError) Error() string {
	if e.err != nil {
		return "upload error: " + e.msg + ": " + e.err.Error()
	}
	return "upload error: " + e.msg
}

func (e uploadError) Unwrap() error { return e.err }

func (e uploadError) StatusCode() int { return http.StatusBadRequest }

// ErrUpload constructs an upload error with an optional cause.
func ErrUpload(msg string, cause error) error { return uploadError{msg: msg, err: cause} }

// IsUpload reports whether err is an upload error.
func IsUpload(err error) bool {
	var e uploadError
	return errors.As(err, &e)
}
