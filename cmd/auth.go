package cmd

import (
	"github.com/spf13/cobra"
)

// authCmd represents the auth command group. On its own it runs validate.
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Telldus Live authentication",
	Long: `Manage the Telldus Live credentials used by telltales.

Examples:
  telltales auth validate   # Ensure credentials are present and valid
  telltales auth status     # Show which credential fields are stored`,
	Args: cobra.NoArgs,
	RunE: runAuthValidate,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authValidateCmd)
	authCmd.AddCommand(authStatusCmd)
}
