package cli

import (
	"fmt"
)

// FormatError formats an error message for CLI output.
func FormatError(err error) string {
	return fmt.Sprintf("Error: %v", err)
}
