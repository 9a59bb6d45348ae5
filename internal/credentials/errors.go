package credentials

import (
	"errors"
	"fmt"
)

// ErrIncomplete indicates that a mandatory consumer key is missing.
var ErrIncomplete = errors.New("consumer keys are required before authenticating")

// FileError reports a credential file that could not be read, parsed or written.
type FileError struct {
	// Op is the failed operation: "read", "parse", "encode", "write" or "mkdir".
	Op string
	// Path is the credential file (or directory for "mkdir").
	Path string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *FileError) Error() string {
	switch e.Op {
	case "parse":
		return fmt.Sprintf("failed to parse credential file %s: %v", e.Path, e.Err)
	case "mkdir":
		return fmt.Sprintf("failed to create configuration directory %s: %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("failed to %s credential file %s: %v", e.Op, e.Path, e.Err)
	}
}

// Unwrap returns the underlying error for error chain inspection.
func (e *FileError) Unwrap() error {
	return e.Err
}
