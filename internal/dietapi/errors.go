package dietapi

import (
	"errors"
	"net/http"
)

// APIError is the uniform failure shape for every gateway operation.
// Status == 0 means no response was received (transport failure); otherwise
// Status is the non-2xx code and Detail carries the server's detail message
// when one was present in the body.
type APIError struct {
	Op       string
	Status   int
	Detail   string
	Fallback string
	Err      error
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Fallback
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err is an API error with a 404 status.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsNetwork reports whether err is a transport failure with no server response.
func IsNetwork(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == 0
}

// StatusOf returns the HTTP status carried by err, or 0 for transport
// failures and non-API errors.
func StatusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
