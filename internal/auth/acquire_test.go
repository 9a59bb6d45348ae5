package auth

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"telltales/internal/prompt"
)

const testAuthURL = "https://pa-api.telldus.com/oauth/authorize?oauth_token=request-token"

func TestAcquire_PromptBareCode(t *testing.T) {
	var out bytes.Buffer
	a := &Acquirer{Prompter: newScriptedPrompter(step{line: "abc123"}), Out: &out, Timeout: 5 * time.Second}

	verifier, err := a.Acquire(context.Background(), testAuthURL, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc123", verifier)
	assert.Contains(t, out.String(), testAuthURL)
}

func TestAcquire_PromptRepromptsOnBadInput(t *testing.T) {
	var out bytes.Buffer
	p := newScriptedPrompter(
		step{line: ""},
		step{line: "https://example.com/cb?oauth_token=request-token"},
		step{line: "https://example.com/cb?oauth_token=request-token&oauth_verifier=XYZ"},
	)
	a := &Acquirer{Prompter: p, Out: &out, Timeout: 5 * time.Second}

	verifier, err := a.Acquire(context.Background(), testAuthURL, nil)
	require.NoError(t, err)
	assert.Equal(t, "XYZ", verifier)
	assert.Len(t, p.Prompts(), 3)
	assert.Contains(t, out.String(), "no oauth_verifier parameter")
}

func TestAcquire_PromptInterruptAborts(t *testing.T) {
	a := &Acquirer{Prompter: newScriptedPrompter(step{err: prompt.ErrInterrupted}), Timeout: 5 * time.Second}

	_, err := a.Acquire(context.Background(), testAuthURL, nil)
	assert.ErrorIs(t, err, ErrVerifierAborted)
}

func TestAcquire_PromptEOFWithoutListenerTimesOut(t *testing.T) {
	a := &Acquirer{Prompter: newScriptedPrompter(step{err: io.EOF}), Timeout: 5 * time.Second}

	start := time.Now()
	_, err := a.Acquire(context.Background(), testAuthURL, nil)
	assert.ErrorIs(t, err, ErrVerifierTimeout)
	assert.Less(t, time.Since(start), time.Second, "a retired prompt must not wait for the timeout")
}

func TestAcquire_ListenerWinsOverPrompt(t *testing.T) {
	listener, err := StartCallbackServer()
	require.NoError(t, err)

	release := make(chan struct{})
	p := newScriptedPrompter(step{line: "LATE", wait: release})
	a := &Acquirer{Prompter: p, Timeout: 5 * time.Second}

	go func() {
		resp, err := http.Get(listener.URL() + "?oauth_verifier=XYZ")
		if err == nil {
			resp.Body.Close()
		}
	}()

	verifier, err := a.Acquire(context.Background(), testAuthURL, listener)
	close(release)
	require.NoError(t, err)
	assert.Equal(t, "XYZ", verifier)

	client := &http.Client{Timeout: time.Second}
	_, err = client.Get(listener.URL() + "?oauth_verifier=AGAIN")
	assert.Error(t, err, "listener must be closed after acquisition")
}

func TestAcquire_PromptWinsOverListener(t *testing.T) {
	listener, err := StartCallbackServer()
	require.NoError(t, err)

	a := &Acquirer{Prompter: newScriptedPrompter(step{line: "typed"}), Timeout: 5 * time.Second}

	verifier, err := a.Acquire(context.Background(), testAuthURL, listener)
	require.NoError(t, err)
	assert.Equal(t, "typed", verifier)

	client := &http.Client{Timeout: time.Second}
	_, err = client.Get(listener.URL() + "?oauth_verifier=LATE")
	assert.Error(t, err)
}

func TestAcquire_ListenerAfterPromptEOF(t *testing.T) {
	listener, err := StartCallbackServer()
	require.NoError(t, err)

	a := &Acquirer{Prompter: newScriptedPrompter(step{err: io.EOF}), Timeout: 5 * time.Second}

	go func() {
		time.Sleep(50 * time.Millisecond)
		resp, err := http.Get(listener.URL() + "?oauth_verifier=XYZ")
		if err == nil {
			resp.Body.Close()
		}
	}()

	verifier, err := a.Acquire(context.Background(), testAuthURL, listener)
	require.NoError(t, err)
	assert.Equal(t, "XYZ", verifier)
}

func TestAcquire_BothTimeOut(t *testing.T) {
	listener, err := StartCallbackServer()
	require.NoError(t, err)

	a := &Acquirer{Prompter: newScriptedPrompter(), Timeout: 50 * time.Millisecond}

	_, err = a.Acquire(context.Background(), testAuthURL, listener)
	assert.ErrorIs(t, err, ErrVerifierTimeout)
}

func TestAcquire_ParentCancelledIsAbort(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	a := &Acquirer{Prompter: newScriptedPrompter(), Timeout: 5 * time.Second}
	_, err := a.Acquire(ctx, testAuthURL, nil)
	assert.ErrorIs(t, err, ErrVerifierAborted)
}

func TestAcquire_NoStrategies(t *testing.T) {
	a := &Acquirer{Timeout: time.Second}
	_, err := a.Acquire(context.Background(), testAuthURL, nil)
	assert.Error(t, err)
}
