package auth

import (
	"context"
	"crypto/subtle"
	_ "embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"telltales/pkg/logging"
)

// CallbackPath is the only path the callback listener serves.
const CallbackPath = "/telltales/callback"

// shutdownGrace bounds how long Stop waits for an in-flight response.
const shutdownGrace = 2 * time.Second

//go:embed templates/callback_success.html
var callbackSuccessHTML string

//go:embed templates/callback_error.html
var callbackErrorHTML string

var (
	successTemplate = template.Must(template.New("success").Parse(callbackSuccessHTML))
	errorTemplate   = template.Must(template.New("error").Parse(callbackErrorHTML))
)

// callbackResult is what the browser redirect carried.
type callbackResult struct {
	verifier string
	problem  string
}

// CallbackServer is a temporary local HTTP server receiving the OAuth
// redirect. It accepts exactly one callback, then shuts down.
type CallbackServer struct {
	server   *http.Server
	listener net.Listener
	url      string
	resultCh chan callbackResult
	once     sync.Once
	stopOnce sync.Once

	mu       sync.Mutex
	expected string
}

// StartCallbackServer binds an ephemeral port on 127.0.0.1 and starts serving.
func StartCallbackServer() (*CallbackServer, error) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to start callback listener: %w", err)
	}

	s := &CallbackServer{
		listener: listener,
		url:      fmt.Sprintf("http://%s%s", listener.Addr().String(), CallbackPath),
		resultCh: make(chan callbackResult, 1),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(CallbackPath, s.handleCallback)
	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Warn(subsystem, "Callback listener stopped: %v", err)
		}
	}()

	logging.Debug(subsystem, "Callback listener waiting on %s", s.url)
	return s, nil
}

// URL returns the callback URL to hand to Telldus Live.
func (s *CallbackServer) URL() string {
	return s.url
}

// ExpectToken restricts the listener to callbacks for the given request
// token. Redirects naming another token, or carrying a verifier without a
// token, get HTTP 400 and do not consume the listener.
func (s *CallbackServer) ExpectToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expected = token
}

// matchesToken reports whether the redirect belongs to the pending request.
// A bare oauth_problem redirect carries nothing to match against.
func (s *CallbackServer) matchesToken(query url.Values) bool {
	s.mu.Lock()
	expected := s.expected
	s.mu.Unlock()

	if expected == "" {
		return true
	}
	token := query.Get("oauth_token")
	if token == "" && query.Get("oauth_verifier") == "" {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(expected)) == 1
}

// Wait blocks until the callback arrives or ctx ends. A callback without a
// verifier means the operator did not grant access and yields
// ErrVerifierAborted.
func (s *CallbackServer) Wait(ctx context.Context) (string, error) {
	select {
	case res := <-s.resultCh:
		if res.verifier == "" {
			if res.problem != "" {
				return "", fmt.Errorf("%w: %s", ErrVerifierAborted, res.problem)
			}
			return "", ErrVerifierAborted
		}
		return res.verifier, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != CallbackPath {
		http.NotFound(w, r)
		return
	}

	if !s.matchesToken(r.URL.Query()) {
		logging.Warn(subsystem, "Ignoring callback for an unknown request token")
		setSecurityHeaders(w)
		w.WriteHeader(http.StatusBadRequest)
		if err := errorTemplate.Execute(w, map[string]string{"Problem": "request token mismatch"}); err != nil {
			logging.Debug(subsystem, "Rendering callback page: %v", err)
		}
		return
	}

	var handled bool
	s.once.Do(func() {
		handled = true
		s.processCallback(w, r)
	})

	if !handled {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
	}
}

func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

func (s *CallbackServer) processCallback(w http.ResponseWriter, r *http.Request) {
	setSecurityHeaders(w)

	query := r.URL.Query()
	res := callbackResult{
		verifier: query.Get("oauth_verifier"),
		problem:  query.Get("oauth_problem"),
	}
	if res.problem != "" {
		res.verifier = ""
	}

	var err error
	if res.verifier != "" {
		err = successTemplate.Execute(w, nil)
	} else {
		err = errorTemplate.Execute(w, map[string]string{"Problem": res.problem})
	}
	if err != nil {
		logging.Debug(subsystem, "Rendering callback page: %v", err)
	}

	logging.Debug(subsystem, "Callback received (verifier present: %t)", res.verifier != "")
	s.resultCh <- res
}

// Stop shuts the listener down. It is safe to call more than once.
func (s *CallbackServer) Stop() {
	s.stopOnce.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			_ = s.server.Close()
		}
	})
}
