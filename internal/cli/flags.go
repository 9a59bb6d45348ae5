package cli

import (
	"github.com/spf13/cobra"
)

// OutputFlags holds the output flag values of listing commands.
type OutputFlags struct {
	// OutputFormat is the raw --output value.
	OutputFormat string
	// NoHeaders suppresses the header row in table output.
	NoHeaders bool
}

// RegisterOutputFlags registers --output/-o and --no-headers on cmd.
func RegisterOutputFlags(cmd *cobra.Command, flags *OutputFlags) {
	cmd.Flags().StringVarP(&flags.OutputFormat, "output", "o", string(OutputFormatTable), "Output format (table, pretty, json, yaml)")
	cmd.Flags().BoolVar(&flags.NoHeaders, "no-headers", false, "Suppress header row in table output")
}

// ToOutputOptions validates the flags and converts them to OutputOptions.
func (f *OutputFlags) ToOutputOptions() (OutputOptions, error) {
	if err := ValidateOutputFormat(f.OutputFormat); err != nil {
		return OutputOptions{}, err
	}
	return OutputOptions{Format: OutputFormat(f.OutputFormat), NoHeaders: f.NoHeaders}, nil
}
