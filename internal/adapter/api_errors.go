package adapter

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthorized is matched by responses with status 401.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNotFound is matched by responses with status 404.
	ErrNotFound = errors.New("resource not found")
	// ErrConflict is matched by responses with status 409.
	ErrConflict = errors.New("resource conflict")
	// ErrDecode is matched when a response body does not have the declared shape.
	ErrDecode = errors.New("unexpected response shape")
	// ErrTransport is matched when no HTTP response was received at all.
	ErrTransport = errors.New("transport failure")

	errEmptyBody = errors.New("empty body")
)

// APIError is returned for every failed request that reached the network.
// StatusCode is zero when the server could not be reached.
type APIError struct {
	Method     string
	Endpoint   string
	StatusCode int
	Status     string
	Detail     string
	Cause      error
}

func (e *APIError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.Endpoint, e.Cause)
	}

	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Endpoint, e.StatusCode, e.Status, e.Detail)
	}

	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Endpoint, e.StatusCode, e.Status)
}

func (e *APIError) Unwrap() error { return e.Cause }

// Is maps the status code onto the package sentinels.
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case ErrConflict:
		return e.StatusCode == http.StatusConflict
	case ErrTransport:
		return e.StatusCode == 0
	}

	return false
}

// Temporary reports whether repeating the request may succeed.
func (e *APIError) Temporary() bool {
	return e.StatusCode == 0 || e.StatusCode >= http.StatusInternalServerError
}

// DecodeError is returned when a successful response fails shape validation.
// StatusCode and Status describe the response that carried the body.
type DecodeError struct {
	Endpoint   string
	StatusCode int
	Status     string
	Cause      error
}

func (e *DecodeError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("decode %s: %v", e.Endpoint, e.Cause)
	}

	return fmt.Sprintf("decode %s (%d %s): %v", e.Endpoint, e.StatusCode, e.Status, e.Cause)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

func (e *DecodeError) Is(target error) bool { return target == ErrDecode }
