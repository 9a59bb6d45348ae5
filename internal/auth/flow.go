package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"telltales/internal/credentials"
	"telltales/internal/prompt"
	"telltales/internal/telldus"
	"telltales/pkg/logging"
)

const subsystem = "Auth"

// DefaultAttempts bounds the request-token and profile legs on network errors.
const DefaultAttempts = 3

// Config configures a Flow.
type Config struct {
	// Store holds the credential file. Required.
	Store *credentials.Store

	// Client issues all Telldus Live requests. Required.
	Client *telldus.Client

	// Prompter reads consumer keys and the verifier. Nil means no operator is
	// available: missing keys fail the run and only the listener can deliver
	// the verifier.
	Prompter Prompter

	// Out receives operator-facing messages. Nil discards them.
	Out io.Writer

	// CallbackTimeout bounds the wait for the verifier.
	CallbackTimeout time.Duration

	// DisableListener skips the local callback listener and uses the
	// out-of-band callback.
	DisableListener bool

	// Attempts bounds retries of network errors. Zero means DefaultAttempts.
	Attempts int

	// Progress shows a spinner on stderr during network legs.
	Progress bool
}

// Outcome is the result of a successful run.
type Outcome struct {
	// Session signs and spaces every later API call.
	Session *telldus.Session

	// TokensRefreshed is true when a new access token was issued and stored.
	TokensRefreshed bool

	// AccountName is the profile display name; empty when unknown.
	AccountName string
}

// Flow runs the authentication state machine. A Flow is used for one run.
type Flow struct {
	store    *credentials.Store
	client   *telldus.Client
	prompter Prompter
	out      io.Writer
	timeout  time.Duration
	listen   bool
	attempts int
	progress bool

	mu    sync.Mutex
	state State
	trail []State
}

// NewFlow creates a Flow in StateStart.
func NewFlow(cfg Config) *Flow {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	out := cfg.Out
	if out == nil {
		out = io.Discard
	}
	return &Flow{
		store:    cfg.Store,
		client:   cfg.Client,
		prompter: cfg.Prompter,
		out:      &lockedWriter{w: out},
		timeout:  cfg.CallbackTimeout,
		listen:   !cfg.DisableListener,
		attempts: attempts,
		progress: cfg.Progress,
		state:    StateStart,
		trail:    []State{StateStart},
	}
}

// State returns the current state.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Trail returns every state the flow has entered, in order.
func (f *Flow) Trail() []State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]State(nil), f.trail...)
}

func (f *Flow) enter(s State) {
	f.mu.Lock()
	prev := f.state
	f.state = s
	f.trail = append(f.trail, s)
	f.mu.Unlock()
	logging.Debug(subsystem, "State %s -> %s", prev, s)
}

func (f *Flow) fail(err error) error {
	failed := &FailedError{State: f.State(), Reason: err}
	f.enter(StateFailed)
	return failed
}

// Run drives the flow to a terminal state. It returns an authenticated
// Outcome, or a *FailedError naming the state the run failed in.
func (f *Flow) Run(ctx context.Context) (*Outcome, error) {
	creds, err := f.ensureKeys(ctx)
	if err != nil {
		return nil, f.fail(err)
	}
	keys := telldus.Keys{ConsumerKey: creds.PublicKey, ConsumerSecret: creds.PrivateKey}

	f.enter(StateCheckToken)
	if creds.HasToken() {
		session := f.client.NewSession(keys, telldus.Token{Token: creds.AccessToken, Secret: creds.AccessTokenSecret})
		profile, err := f.fetchProfile(ctx, session)
		switch {
		case err == nil:
			f.enter(StateAuthenticated)
			return &Outcome{Session: session, AccountName: profile.DisplayName()}, nil
		case errors.Is(err, telldus.ErrTokenRejected):
			fmt.Fprintln(f.out, "Stored tokens were rejected by Telldus Live; starting OAuth flow.")
		default:
			return nil, f.fail(err)
		}
	} else {
		logging.Info(subsystem, "No stored access token; starting OAuth flow")
	}

	token, err := f.handshake(ctx, keys)
	if err != nil {
		return nil, f.fail(err)
	}

	// Both token fields land in one write, or neither does.
	if _, err := f.store.Update(credentials.Credentials{AccessToken: token.Token, AccessTokenSecret: token.Secret}); err != nil {
		return nil, f.fail(err)
	}
	fmt.Fprintln(f.out, "Stored refreshed OAuth access token.")

	f.enter(StateValidate)
	session := f.client.NewSession(keys, token)
	profile, err := f.fetchProfile(ctx, session)
	if err != nil {
		return nil, f.fail(fmt.Errorf("newly issued token failed validation: %w", err))
	}

	f.enter(StateAuthenticated)
	return &Outcome{Session: session, TokensRefreshed: true, AccountName: profile.DisplayName()}, nil
}

// ensureKeys loads the credential file and prompts for missing consumer keys
// until both are stored.
func (f *Flow) ensureKeys(ctx context.Context) (credentials.Credentials, error) {
	creds, err := f.store.Load()
	if err != nil {
		return credentials.Credentials{}, err
	}

	missing := creds.MissingKeys()
	if len(missing) == 0 {
		return creds, nil
	}
	if f.prompter == nil {
		return credentials.Credentials{}, fmt.Errorf("%w: missing %v in %s", credentials.ErrIncomplete, missing, f.store.Path())
	}

	fmt.Fprintf(f.out, "Telldus Live consumer keys are missing from %s.\n", f.store.Path())
	var overlay credentials.Credentials
	for _, field := range missing {
		value, err := f.askKey(ctx, field)
		if err != nil {
			return credentials.Credentials{}, err
		}
		switch field {
		case credentials.FieldPublicKey:
			overlay.PublicKey = value
		case credentials.FieldPrivateKey:
			overlay.PrivateKey = value
		}
	}

	return f.store.Update(overlay)
}

func (f *Flow) askKey(ctx context.Context, field string) (string, error) {
	for {
		var (
			value string
			err   error
		)
		if field == credentials.FieldPrivateKey {
			value, err = f.prompter.ReadSecret(ctx, "Telldus private key: ")
		} else {
			value, err = f.prompter.ReadLine(ctx, "Telldus public key: ")
		}
		switch {
		case errors.Is(err, io.EOF), errors.Is(err, prompt.ErrInterrupted):
			return "", fmt.Errorf("%w: %s was not provided", credentials.ErrIncomplete, field)
		case err != nil:
			return "", err
		}
		if value != "" {
			return value, nil
		}
	}
}

// handshake runs the Handshake, AwaitVerifier and Exchange states.
func (f *Flow) handshake(ctx context.Context, keys telldus.Keys) (telldus.Token, error) {
	f.enter(StateHandshake)

	var listener *CallbackServer
	callbackURL := telldus.OutOfBand
	if f.listen {
		var err error
		listener, err = StartCallbackServer()
		if err != nil {
			logging.Warn(subsystem, "Continuing without callback listener: %v", err)
		} else {
			defer listener.Stop()
			callbackURL = listener.URL()
		}
	}

	var temp *telldus.TemporaryCredentials
	err := f.retry(ctx, "request token", func() error {
		var err error
		temp, err = withProgress(f.progress, "Requesting authorization from Telldus Live...", func() (*telldus.TemporaryCredentials, error) {
			return f.client.RequestTemporaryCredentials(ctx, keys, callbackURL)
		})
		return err
	})
	if err != nil {
		return telldus.Token{}, err
	}

	if listener != nil {
		listener.ExpectToken(temp.Token)
	}

	f.enter(StateAwaitVerifier)
	acquirer := &Acquirer{Prompter: f.prompter, Out: f.out, Timeout: f.timeout}
	verifier, err := acquirer.Acquire(ctx, temp.AuthorizationURL, listener)
	if err != nil {
		return telldus.Token{}, err
	}

	// The verifier is single-use, so the exchange is never retried.
	f.enter(StateExchange)
	return withProgress(f.progress, "Exchanging verifier for an access token...", func() (telldus.Token, error) {
		return f.client.ExchangeVerifier(ctx, keys, temp, verifier)
	})
}

func (f *Flow) fetchProfile(ctx context.Context, session *telldus.Session) (*telldus.Profile, error) {
	var profile *telldus.Profile
	err := f.retry(ctx, "profile", func() error {
		var err error
		profile, err = withProgress(f.progress, "Verifying credentials with Telldus Live...", func() (*telldus.Profile, error) {
			return session.Profile(ctx)
		})
		return err
	})
	return profile, err
}

// retry runs fn until it succeeds, fails with something other than a network
// error or the attempts run out. The limiter spaces the attempts.
func (f *Flow) retry(ctx context.Context, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= f.attempts; attempt++ {
		err = fn()
		if err == nil || !telldus.IsNetworkError(err) || ctx.Err() != nil {
			return err
		}
		if attempt < f.attempts {
			logging.Warn(subsystem, "%s attempt %d/%d failed, retrying: %v", op, attempt, f.attempts, err)
		}
	}
	return fmt.Errorf("%s failed after %d attempts: %w", op, f.attempts, err)
}

func withProgress[T any](enabled bool, suffix string, fn func() (T, error)) (T, error) {
	if !enabled {
		return fn()
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(os.Stderr))
	s.Suffix = " " + suffix
	s.Start()
	defer s.Stop()
	return fn()
}

// lockedWriter serialises writes from the racing verifier strategies.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
