package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"telltales/internal/auth"
	"telltales/internal/cli"
	"telltales/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthFailed indicates the authentication flow ended in Failed.
	ExitCodeAuthFailed = 3
)

var (
	debugLogging bool
	logLevel     string
)

// rootCmd is the base command. Without a subcommand it validates the
// stored credentials, like `telltales auth validate`.
var rootCmd = &cobra.Command{
	Use:   "telltales",
	Short: "Telldus Live CLI",
	Long: `telltales talks to Telldus Live, the cloud service behind Telldus
home automation gateways.

It keeps the OAuth credentials for your account in a local YAML file,
walks you through authorizing access the first time, and lists the
controllers, devices and sensors on the account.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	Args:          cobra.NoArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := cliLogLevel()
		if err != nil {
			return err
		}
		logging.InitForCLI(level, cmd.ErrOrStderr())
		return nil
	},
}

// cliLogLevel resolves --log-level, with --debug taking precedence.
func cliLogLevel() (logging.LogLevel, error) {
	if debugLogging {
		return logging.LevelDebug, nil
	}
	return logging.ParseLevel(logLevel)
}

// SetVersion sets the version for the root command.
// It is called from main to inject the build version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute runs the root command and exits with a code describing the outcome.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "telltales version %s\n" .Version}}`)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		reportError(os.Stderr, err)
		os.Exit(getExitCode(err))
	}
}

// reportError prints err verbatim, followed by a hint when one applies.
func reportError(w io.Writer, err error) {
	fmt.Fprintln(w, cli.FormatError(err))
	if hint := cli.Hint(err, apiEndpoint()); hint != "" {
		fmt.Fprintln(w, "  "+hint)
	}
}

// getExitCode determines the exit code for err.
func getExitCode(err error) int {
	if err == nil {
		return ExitCodeSuccess
	}

	if auth.IsFailed(err) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

func init() {
	// Assigned here: runAuthValidate reaches rootCmd through GetVersion.
	rootCmd.RunE = runAuthValidate

	rootCmd.PersistentFlags().BoolVar(&debugLogging, "debug", false, "Enable debug logging on stderr")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level on stderr (debug, info, warn, error)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newSelfUpdateCmd())
}
