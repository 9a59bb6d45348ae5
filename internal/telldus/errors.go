package telldus

import (
	"errors"
	"fmt"
)

// ErrTokenRejected is returned when Telldus Live refuses the access token.
var ErrTokenRejected = errors.New("stored tokens were rejected by Telldus Live")

// ErrAuthorizationDenied is returned when the operator refused access.
var ErrAuthorizationDenied = errors.New("OAuth authorization was denied")

// NetworkError indicates that a request failed before any response arrived.
type NetworkError struct {
	// Op names the API operation, e.g. "request token".
	Op string
	// Err is the underlying transport error.
	Err error
}

// Error implements the error interface.
func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *NetworkError) Unwrap() error {
	return e.Err
}

// RemoteError indicates that Telldus Live answered with a failure.
type RemoteError struct {
	// Op names the API operation.
	Op string
	// Status is the HTTP status code, or 200 for failures reported in the body.
	Status int
	// Message is the response body or the service's error description.
	Message string
	// Err is an optional underlying error.
	Err error
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: Telldus Live rejected the request with status %d: %s", e.Op, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: Telldus Live rejected the request with status %d", e.Op, e.Status)
}

// Unwrap returns the underlying error.
func (e *RemoteError) Unwrap() error {
	return e.Err
}

// IsNetworkError reports whether err is a *NetworkError anywhere in its chain.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
