package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrTransport marks failures to reach the backend or to read its reply.
var ErrTransport = errors.New("backend unreachable")

// Sentinels matched by StatusError.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
)

// StatusError is a non-2xx reply. Message carries the backend's own
// explanation (its {"error": ...} body) when one was sent.
type StatusError struct {
	Op      string
	Status  int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %d %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %d %s", e.Op, e.Status, http.StatusText(e.Status))
}

func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	}
	return false
}

// IsTransport reports whether err is a network or decoding failure.
func IsTransport(err error) bool {
	return errors.Is(err, ErrTransport)
}

// IsValidation reports whether the backend rejected the request (4xx).
func IsValidation(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status >= 400 && se.Status < 500
}

// Message returns the backend's explanation for err, or "".
func Message(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	return ""
}
