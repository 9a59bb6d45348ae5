package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// authValidateCmd represents the auth validate command
var authValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Ensure credentials are present and valid",
	Long: `Ensure the Telldus Live credentials are complete and accepted.

Missing consumer keys are asked for and saved. A stored access token is
checked against your profile; when there is none, or Telldus Live rejects
it, a new one is authorized: open the printed URL, press "Confirm", and
telltales picks up the verifier from the browser redirect. You can also
paste the verification code or the full redirect URL at the prompt.`,
	Args: cobra.NoArgs,
	RunE: runAuthValidate,
}

func runAuthValidate(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	defer env.Close()

	out := cmd.OutOrStdout()
	outcome, err := env.authenticate(cmd.Context(), out)
	if err != nil {
		return err
	}

	if outcome.AccountName != "" {
		fmt.Fprintf(out, "Authenticated as %s.\n", outcome.AccountName)
	} else {
		fmt.Fprintln(out, "Credentials verified with Telldus Live.")
	}
	return nil
}
