package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"testing"

	"telltales/internal/cli"
	"telltales/internal/credentials"
	"telltales/internal/telldus/telldustest"
)

// queuePrompter answers prompts in order and then waits like an absent operator.
type queuePrompter struct {
	mu      sync.Mutex
	answers []string
	closed  bool
}

func (p *queuePrompter) ReadLine(ctx context.Context, prompt string) (string, error) {
	return p.next(ctx)
}

func (p *queuePrompter) ReadSecret(ctx context.Context, prompt string) (string, error) {
	return p.next(ctx)
}

func (p *queuePrompter) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *queuePrompter) next(ctx context.Context) (string, error) {
	p.mu.Lock()
	if len(p.answers) == 0 {
		p.mu.Unlock()
		<-ctx.Done()
		return "", ctx.Err()
	}
	a := p.answers[0]
	p.answers = p.answers[1:]
	p.mu.Unlock()
	return a, nil
}

type cmdFixture struct {
	srv      *telldustest.Server
	store    *credentials.Store
	prompter *queuePrompter
}

// newCmdFixture points the commands at a fake Telldus Live and a temporary
// credential file.
func newCmdFixture(t *testing.T, initial *credentials.Credentials, answers ...string) *cmdFixture {
	t.Helper()

	srv := telldustest.NewServer("pub")
	t.Cleanup(srv.Close)

	path := filepath.Join(t.TempDir(), "credentials.yaml")
	store := credentials.NewStore(path)
	if initial != nil {
		if err := store.Save(*initial); err != nil {
			t.Fatalf("seed credentials: %v", err)
		}
	}

	t.Setenv("TELLTALES_CREDENTIALS", path)
	t.Setenv("TELLTALES_API_URL", srv.URL)
	t.Setenv("TELLTALES_REQUEST_INTERVAL", "1ms")
	t.Setenv("TELLTALES_CALLBACK_TIMEOUT", "200ms")

	p := &queuePrompter{answers: answers}
	original := newPrompter
	newPrompter = func() promptCloser { return p }
	t.Cleanup(func() { newPrompter = original })

	return &cmdFixture{srv: srv, store: store, prompter: p}
}

// executeCommand runs the root command with args and returns stdout, stderr
// and the error.
func executeCommand(args ...string) (string, string, error) {
	devicesKind = kindAll
	devicesOutputFlags = cli.OutputFlags{OutputFormat: string(cli.OutputFormatTable)}
	debugLogging = false
	logLevel = "warn"

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	if args == nil {
		// A nil slice makes cobra fall back to os.Args.
		args = []string{}
	}
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func storedCreds(token string) *credentials.Credentials {
	return &credentials.Credentials{
		PublicKey:         "pub",
		PrivateKey:        "priv",
		AccessToken:       token,
		AccessTokenSecret: token + "-secret",
	}
}
