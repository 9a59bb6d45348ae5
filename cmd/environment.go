package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"

	"telltales/internal/auth"
	"telltales/internal/config"
	"telltales/internal/credentials"
	"telltales/internal/prompt"
	"telltales/internal/ratelimit"
	"telltales/internal/telldus"
)

// newPrompter creates the operator prompt. Tests replace it.
var newPrompter = func() promptCloser {
	return prompt.NewTerminal()
}

// promptCloser is an auth.Prompter that holds terminal state.
type promptCloser interface {
	auth.Prompter
	Close() error
}

// environment is everything a command needs to reach Telldus Live. One is
// built per command run, so the whole run shares one limiter.
type environment struct {
	settings config.Settings
	store    *credentials.Store
	client   *telldus.Client
	prompter promptCloser
}

func newEnvironment() (*environment, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	client := telldus.NewClient(telldus.ClientConfig{
		BaseURL:   settings.APIBaseURL,
		Limiter:   ratelimit.New(settings.RequestInterval, ratelimit.RealClock()),
		Timeout:   settings.HTTPTimeout,
		UserAgent: fmt.Sprintf("telltales-cli/%s", versionOrDev()),
	})

	return &environment{
		settings: settings,
		store:    credentials.NewStore(settings.CredentialsPath),
		client:   client,
		prompter: newPrompter(),
	}, nil
}

func (e *environment) Close() {
	if e.prompter != nil {
		_ = e.prompter.Close()
	}
}

// authenticate runs the authentication flow, reporting progress to out.
func (e *environment) authenticate(ctx context.Context, out io.Writer) (*auth.Outcome, error) {
	fmt.Fprintf(out, "Using credentials file at %s\n", e.store.Path())

	flow := auth.NewFlow(auth.Config{
		Store:           e.store,
		Client:          e.client,
		Prompter:        e.prompter,
		Out:             out,
		CallbackTimeout: e.settings.CallbackTimeout,
		Progress:        readline.IsTerminal(int(os.Stderr.Fd())),
	})
	return flow.Run(ctx)
}

// apiEndpoint returns the configured API host for error hints.
func apiEndpoint() string {
	settings, err := config.Load()
	if err != nil {
		return config.DefaultAPIBaseURL
	}
	return settings.APIBaseURL
}

func versionOrDev() string {
	if v := GetVersion(); v != "" {
		return v
	}
	return "dev"
}
