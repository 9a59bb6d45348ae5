package cli

import (
	"fmt"
	"strings"
)

// OutputFormat selects how listings are printed.
type OutputFormat string

const (
	// OutputFormatTable prints a kubectl-style plain table.
	OutputFormatTable OutputFormat = "table"
	// OutputFormatPretty prints a boxed table.
	OutputFormatPretty OutputFormat = "pretty"
	// OutputFormatJSON prints a JSON array.
	OutputFormatJSON OutputFormat = "json"
	// OutputFormatYAML prints a YAML sequence.
	OutputFormatYAML OutputFormat = "yaml"
)

// ValidOutputFormats contains all valid output format values.
var ValidOutputFormats = []OutputFormat{
	OutputFormatTable,
	OutputFormatPretty,
	OutputFormatJSON,
	OutputFormatYAML,
}

// ValidateOutputFormat returns nil for a supported format, or an error
// listing the valid ones.
func ValidateOutputFormat(format string) error {
	for _, f := range ValidOutputFormats {
		if OutputFormat(format) == f {
			return nil
		}
	}
	names := make([]string, len(ValidOutputFormats))
	for i, f := range ValidOutputFormats {
		names[i] = string(f)
	}
	return fmt.Errorf("unsupported output format %q (valid: %s)", format, strings.Join(names, ", "))
}

// OutputOptions controls listing output.
type OutputOptions struct {
	// Format is the output format.
	Format OutputFormat
	// NoHeaders suppresses the header row in table formats.
	NoHeaders bool
}
