package api

import (
	"errors"
	"fmt"
)

// ErrJobNotFound marks a job lookup the server answered with a null body,
// which is how it reports a missing job.
var ErrJobNotFound = errors.New("job not found")

// NetworkError means the request never produced an HTTP response.
type NetworkError struct {
	Path string
	Err  error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("GET %s: %v", e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError means the server answered, but with an error or an unusable body.
type APIError struct {
	Path       string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("GET %s: status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("GET %s: status %d: %s", e.Path, e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error { return e.Err }
