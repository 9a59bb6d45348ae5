package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telltales/internal/auth"
	"telltales/internal/telldus"
	"telltales/pkg/logging"
)

func TestSetVersion(t *testing.T) {
	original := rootCmd.Version
	defer func() { rootCmd.Version = original }()

	SetVersion("1.2.3-test")
	assert.Equal(t, "1.2.3-test", GetVersion())
}

func TestRootCommand(t *testing.T) {
	assert.Equal(t, "telltales", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)
	assert.True(t, rootCmd.SilenceUsage)
	assert.NotNil(t, rootCmd.PersistentFlags().Lookup("debug"))
}

func TestVersionTemplate(t *testing.T) {
	testCmd := &cobra.Command{Use: "test", Version: "1.0.0"}
	testCmd.SetVersionTemplate(`{{printf "telltales version %s\n" .Version}}`)

	var buf bytes.Buffer
	testCmd.SetOut(&buf)
	testCmd.SetArgs([]string{"--version"})
	assert.NoError(t, testCmd.Execute())
	assert.Equal(t, "telltales version 1.0.0\n", buf.String())
}

func TestSubcommands(t *testing.T) {
	found := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		found[c.Name()] = true
	}
	for _, name := range []string{"auth", "devices", "version", "self-update"} {
		assert.True(t, found[name], "missing subcommand %s", name)
	}

	authSubs := map[string]bool{}
	for _, c := range authCmd.Commands() {
		authSubs[c.Name()] = true
	}
	assert.True(t, authSubs["validate"])
	assert.True(t, authSubs["status"])
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitCodeSuccess},
		{"generic", errors.New("boom"), ExitCodeError},
		{"auth failed", &auth.FailedError{State: auth.StateExchange, Reason: errors.New("rejected")}, ExitCodeAuthFailed},
		{"wrapped auth failed", fmt.Errorf("run: %w", &auth.FailedError{State: auth.StateStart, Reason: errors.New("x")}), ExitCodeAuthFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, getExitCode(tt.err))
		})
	}
}

func TestReportError(t *testing.T) {
	t.Setenv("TELLTALES_API_URL", "https://api.example.test")

	var buf bytes.Buffer
	reportError(&buf, &auth.FailedError{State: auth.StateCheckToken, Reason: fmt.Errorf("profile: %w", telldus.ErrTokenRejected)})

	out := buf.String()
	assert.Contains(t, out, "Error: authentication failed during check_token: profile: stored tokens were rejected by Telldus Live")
	assert.Contains(t, out, "Run: telltales auth validate")

	buf.Reset()
	reportError(&buf, errors.New("plain"))
	assert.Equal(t, "Error: plain\n", buf.String())
}

func TestRootCommandWithoutArgsValidates(t *testing.T) {
	fx := newCmdFixture(t, storedCreds("good"))
	fx.srv.AcceptToken("good")

	require.NotNil(t, rootCmd.RunE)

	stdout, _, err := executeCommand()
	require.NoError(t, err)
	assert.Contains(t, stdout, "Using credentials file at "+fx.store.Path())
	assert.Contains(t, stdout, "Authenticated as Ada Lovelace.")
	assert.Equal(t, 1, fx.srv.Count(telldus.ProfilePath))
}

func TestCLILogLevel(t *testing.T) {
	defer func() {
		debugLogging = false
		logLevel = "warn"
	}()

	tests := []struct {
		name    string
		debug   bool
		level   string
		want    logging.LogLevel
		wantErr bool
	}{
		{"default", false, "warn", logging.LevelWarn, false},
		{"explicit info", false, "INFO", logging.LevelInfo, false},
		{"debug flag wins", true, "error", logging.LevelDebug, false},
		{"unknown", false, "loud", logging.LevelInfo, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			debugLogging = tt.debug
			logLevel = tt.level

			got, err := cliLogLevel()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInvalidLogLevelFailsBeforeRunning(t *testing.T) {
	fx := newCmdFixture(t, storedCreds("good"))

	_, _, err := executeCommand("--log-level", "loud", "auth", "validate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown log level "loud"`)
	assert.Empty(t, fx.srv.Requests())
}
