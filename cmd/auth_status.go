package cmd

import (
	"github.com/spf13/cobra"

	"telltales/internal/cli"
	"telltales/internal/config"
	"telltales/internal/credentials"
)

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show which credentials are stored",
	Long: `Show the credential file location and which of its fields are set.

This command does not contact Telldus Live; use "telltales auth validate"
to check that the stored token is still accepted.`,
	Args: cobra.NoArgs,
	RunE: runAuthStatus,
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	settings, err := config.Load()
	if err != nil {
		return err
	}

	store := credentials.NewStore(settings.CredentialsPath)
	creds, err := store.Load()
	if err != nil {
		return err
	}

	cli.RenderCredentialStatus(cmd.OutOrStdout(), store.Path(), creds)
	return nil
}
