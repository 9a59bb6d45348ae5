package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrVerifierTimeout is returned when no verifier arrived in time.
	ErrVerifierTimeout = errors.New("timed out waiting for the OAuth verifier")

	// ErrVerifierAborted is returned when the operator cancelled authorization.
	ErrVerifierAborted = errors.New("OAuth authorization was aborted")

	// ErrMissingVerifier is returned for empty verifier input.
	ErrMissingVerifier = errors.New("authorization code or redirect URL is required")

	// ErrVerifierNotFound is returned for a redirect URL without oauth_verifier.
	ErrVerifierNotFound = errors.New("redirect URL missing oauth_verifier parameter")
)

// FailedError is the reason a flow ended in StateFailed.
type FailedError struct {
	// State is the state the flow was in when it failed.
	State State
	// Reason is the underlying error.
	Reason error
}

// Error implements the error interface.
func (e *FailedError) Error() string {
	return fmt.Sprintf("authentication failed during %s: %v", e.State, e.Reason)
}

// Unwrap returns the reason for error chain inspection.
func (e *FailedError) Unwrap() error {
	return e.Reason
}

// IsFailed reports whether err carries a *FailedError.
func IsFailed(err error) bool {
	var failed *FailedError
	return errors.As(err, &failed)
}
