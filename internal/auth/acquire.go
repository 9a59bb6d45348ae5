package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"telltales/internal/prompt"
	"telltales/pkg/logging"
)

// Prompter reads operator input. Implementations return io.EOF at end of
// input, prompt.ErrInterrupted when the operator cancels and ctx.Err() when
// ctx ends before a line is read.
type Prompter interface {
	ReadLine(ctx context.Context, prompt string) (string, error)
	ReadSecret(ctx context.Context, prompt string) (string, error)
}

const verifierPrompt = "Verification code or redirect URL: "

// errStrategyRetired marks a strategy that can no longer produce a verifier.
var errStrategyRetired = errors.New("verifier strategy retired")

// Acquirer obtains the OAuth verifier from whichever of the callback listener
// and the operator prompt delivers one first.
type Acquirer struct {
	// Prompter reads the verifier typed by the operator. Nil disables the prompt.
	Prompter Prompter

	// Out receives the instructions shown to the operator.
	Out io.Writer

	// Timeout bounds the whole acquisition.
	Timeout time.Duration
}

type strategyOutcome struct {
	strategy string
	verifier string
	err      error
}

// Acquire prints authURL and waits for a verifier. listener may be nil, in
// which case only the prompt is used. The listener is stopped before Acquire
// returns.
func (a *Acquirer) Acquire(ctx context.Context, authURL string, listener *CallbackServer) (string, error) {
	if listener != nil {
		defer listener.Stop()
	}
	if listener == nil && a.Prompter == nil {
		return "", errors.New("no way to receive the OAuth verifier")
	}

	a.printInstructions(authURL, listener != nil)

	var (
		raceCtx context.Context
		cancel  context.CancelFunc
	)
	if a.Timeout > 0 {
		raceCtx, cancel = context.WithTimeout(ctx, a.Timeout)
	} else {
		raceCtx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	// Buffered for every strategy so the loser never blocks on send.
	results := make(chan strategyOutcome, 2)
	running := 0

	if listener != nil {
		running++
		go func() {
			v, err := listener.Wait(raceCtx)
			results <- strategyOutcome{strategy: "listener", verifier: v, err: err}
		}()
	}
	if a.Prompter != nil {
		running++
		go func() {
			v, err := a.promptVerifier(raceCtx)
			results <- strategyOutcome{strategy: "prompt", verifier: v, err: err}
		}()
	}

	for ; running > 0; running-- {
		res := <-results
		switch {
		case res.err == nil:
			logging.Info(subsystem, "Verifier received via %s", res.strategy)
			return res.verifier, nil
		case errors.Is(res.err, ErrVerifierAborted):
			logging.Info(subsystem, "Authorization aborted via %s", res.strategy)
			return "", res.err
		default:
			logging.Debug(subsystem, "Verifier %s strategy finished without a result: %v", res.strategy, res.err)
		}
	}

	if ctx.Err() != nil {
		return "", fmt.Errorf("%w: %v", ErrVerifierAborted, ctx.Err())
	}
	return "", ErrVerifierTimeout
}

func (a *Acquirer) printInstructions(authURL string, listening bool) {
	out := a.out()
	fmt.Fprintln(out, "Open the following URL in your browser, authorize access, and press the \"Confirm\" button:")
	fmt.Fprintln(out, authURL)
	if listening {
		fmt.Fprintln(out, "telltales continues automatically once the browser is redirected back.")
	}
	if a.Prompter != nil {
		fmt.Fprintln(out, "Alternatively, paste the verification code Telldus shows or the full redirect URL here.")
	}
}

// promptVerifier asks until it gets a usable verifier. Empty lines and URLs
// without a verifier re-prompt; end of input retires the strategy.
func (a *Acquirer) promptVerifier(ctx context.Context) (string, error) {
	for {
		line, err := a.Prompter.ReadLine(ctx, verifierPrompt)
		switch {
		case errors.Is(err, prompt.ErrInterrupted):
			return "", ErrVerifierAborted
		case errors.Is(err, io.EOF):
			return "", errStrategyRetired
		case err != nil:
			return "", err
		}

		verifier, err := ExtractVerifier(line)
		switch {
		case err == nil:
			return verifier, nil
		case errors.Is(err, ErrMissingVerifier):
			continue
		case errors.Is(err, ErrVerifierNotFound):
			if ctx.Err() == nil {
				fmt.Fprintln(a.out(), "That URL has no oauth_verifier parameter; paste the code or the full redirect URL.")
			}
			continue
		default:
			return "", err
		}
	}
}

func (a *Acquirer) out() io.Writer {
	if a.Out == nil {
		return io.Discard
	}
	return a.Out
}
