// Package telldustest provides an in-process fake of the Telldus Live API for
// tests. It speaks just enough OAuth 1.0a to drive the three legs and answers
// the JSON endpoints used by the CLI.
package telldustest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Request is one request the fake server received.
type Request struct {
	Method string
	Path   string
	At     time.Time
	// OAuth holds the parsed Authorization header parameters.
	OAuth map[string]string
}

// Server is a fake Telldus Live host.
type Server struct {
	*httptest.Server

	mu sync.Mutex

	consumerKey   string
	requestToken  string
	requestSecret string
	accessToken   string
	accessSecret  string
	verifier      string
	refuse        bool
	validTokens   map[string]bool
	dropRequests  map[string]int
	profile       map[string]any
	lists         map[string]any
	requests      []Request
}

// NewServer starts a fake accepting consumerKey. The server issues the
// request token "request-token" and, for verifier "XYZ", the access token
// "access-token"/"access-secret".
func NewServer(consumerKey string) *Server {
	s := &Server{
		consumerKey:   consumerKey,
		requestToken:  "request-token",
		requestSecret: "request-secret",
		accessToken:   "access-token",
		accessSecret:  "access-secret",
		verifier:      "XYZ",
		validTokens:   map[string]bool{},
		dropRequests:  map[string]int{},
		profile: map[string]any{
			"status": "success",
			"user": map[string]any{
				"firstname": "Ada",
				"lastname":  "Lovelace",
				"username":  "ada@example.com",
			},
		},
		lists: map[string]any{},
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	return s
}

// SetVerifier changes the verifier the exchange leg accepts.
func (s *Server) SetVerifier(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.verifier = v
}

// SetIssuedToken changes the access token pair the exchange leg issues.
func (s *Server) SetIssuedToken(token, secret string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken, s.accessSecret = token, secret
}

// RefuseAuthorization makes the exchange leg answer oauth_problem=user_refused.
func (s *Server) RefuseAuthorization() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refuse = true
}

// AcceptToken marks an access token as valid for the JSON endpoints.
func (s *Server) AcceptToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.validTokens[token] = true
}

// DropRequests makes the next n requests to path fail without a response.
func (s *Server) DropRequests(path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dropRequests[path] = n
}

// SetProfile replaces the profile document.
func (s *Server) SetProfile(doc map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = doc
}

// SetList sets the JSON document returned for a listing path such as
// "/json/devices/list".
func (s *Server) SetList(path string, doc any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[path] = doc
}

// Requests returns a copy of the received requests in arrival order.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Count returns how many requests were received for path.
func (s *Server) Count(path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	params := ParseAuthorization(r.Header.Get("Authorization"))

	s.mu.Lock()
	s.requests = append(s.requests, Request{Method: r.Method, Path: r.URL.Path, At: time.Now(), OAuth: params})
	drop := s.dropRequests[r.URL.Path] > 0
	if drop {
		s.dropRequests[r.URL.Path]--
	}
	s.mu.Unlock()

	if drop {
		hijackAndClose(w)
		return
	}

	// Fresh connections keep the transport from silently replaying a
	// request after a dropped one.
	w.Header().Set("Connection", "close")

	if params["oauth_consumer_key"] != s.consumerKey {
		http.Error(w, "oauth_problem=consumer_key_unknown", http.StatusUnauthorized)
		return
	}

	switch r.URL.Path {
	case "/oauth/requestToken":
		s.handleRequestToken(w)
	case "/oauth/accessToken":
		s.handleAccessToken(w, params)
	case "/json/user/profile":
		s.handleJSON(w, params, func() any { return s.profile })
	default:
		if strings.HasPrefix(r.URL.Path, "/json/") {
			s.handleJSON(w, params, func() any { return s.lists[r.URL.Path] })
			return
		}
		http.NotFound(w, r)
	}
}

func (s *Server) handleRequestToken(w http.ResponseWriter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	writeForm(w, url.Values{
		"oauth_token":              {s.requestToken},
		"oauth_token_secret":       {s.requestSecret},
		"oauth_callback_confirmed": {"true"},
	})
}

func (s *Server) handleAccessToken(w http.ResponseWriter, params map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.refuse {
		http.Error(w, "oauth_problem=user_refused", http.StatusUnauthorized)
		return
	}
	if params["oauth_token"] != s.requestToken || params["oauth_verifier"] != s.verifier {
		http.Error(w, "oauth_problem=verifier_invalid", http.StatusUnauthorized)
		return
	}

	s.validTokens[s.accessToken] = true
	writeForm(w, url.Values{
		"oauth_token":        {s.accessToken},
		"oauth_token_secret": {s.accessSecret},
	})
}

func (s *Server) handleJSON(w http.ResponseWriter, params map[string]string, doc func() any) {
	s.mu.Lock()
	valid := s.validTokens[params["oauth_token"]]
	var body any
	if valid {
		body = doc()
	}
	s.mu.Unlock()

	if !valid {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid token"}`))
		return
	}
	if body == nil {
		body = map[string]any{}
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

// ParseAuthorization parses an "OAuth k="v", ..." header into its parameters.
func ParseAuthorization(header string) map[string]string {
	params := map[string]string{}
	header = strings.TrimSpace(header)
	if !strings.HasPrefix(header, "OAuth ") {
		return params
	}
	for _, part := range strings.Split(strings.TrimPrefix(header, "OAuth "), ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"`)
		if unescaped, err := url.QueryUnescape(value); err == nil {
			value = unescaped
		}
		params[key] = value
	}
	return params
}

func writeForm(w http.ResponseWriter, values url.Values) {
	w.Header().Set("Content-Type", "application/x-www-form-urlencoded")
	_, _ = w.Write([]byte(values.Encode()))
}

func hijackAndClose(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic("telldustest: response writer does not support hijacking")
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		return
	}
	_ = conn.Close()
}
