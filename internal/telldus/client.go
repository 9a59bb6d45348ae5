package telldus

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dghubble/oauth1"
	"github.com/google/uuid"

	"telltales/internal/ratelimit"
	"telltales/pkg/logging"
)

const subsystem = "API"

// API paths relative to the base URL.
const (
	RequestTokenPath = "/oauth/requestToken"
	AuthorizePath    = "/oauth/authorize"
	AccessTokenPath  = "/oauth/accessToken"
	ProfilePath      = "/json/user/profile"
)

// OutOfBand is the callback value used when no local listener is available.
const OutOfBand = "oob"

// Keys are the OAuth consumer credentials.
type Keys struct {
	ConsumerKey    string
	ConsumerSecret string
}

// Token is an OAuth token pair.
type Token struct {
	Token  string
	Secret string
}

// TemporaryCredentials are the request token pair of one handshake attempt.
// They are never persisted.
type TemporaryCredentials struct {
	Token            string
	Secret           string
	AuthorizationURL string
}

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL is the API host, e.g. https://pa-api.telldus.com.
	BaseURL string

	// Limiter spaces all requests. Required.
	Limiter *ratelimit.Limiter

	// Timeout applies to every request. Zero means no timeout.
	Timeout time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// Transport is the underlying transport; nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// Client issues signed, rate-limited requests to Telldus Live.
type Client struct {
	baseURL    string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient creates a Client. All requests it makes share cfg.Limiter.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Limiter == nil {
		panic("telldus: ClientConfig.Limiter is required")
	}

	var rt http.RoundTripper = cfg.Limiter.Transport(cfg.Transport)
	if cfg.UserAgent != "" {
		rt = &userAgentTransport{base: rt, userAgent: cfg.UserAgent}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		timeout: cfg.Timeout,
		httpClient: &http.Client{
			Transport: rt,
			Timeout:   cfg.Timeout,
		},
	}
}

// BaseURL returns the API host the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) oauthConfig(keys Keys, callbackURL string, hc *http.Client) *oauth1.Config {
	return &oauth1.Config{
		ConsumerKey:    keys.ConsumerKey,
		ConsumerSecret: keys.ConsumerSecret,
		CallbackURL:    callbackURL,
		Endpoint: oauth1.Endpoint{
			RequestTokenURL: c.baseURL + RequestTokenPath,
			AuthorizeURL:    c.baseURL + AuthorizePath,
			AccessTokenURL:  c.baseURL + AccessTokenPath,
		},
		Noncer:     uuidNoncer{},
		HTTPClient: hc,
	}
}

// legClient returns an http.Client for one handshake leg. It binds ctx to the
// request and records whether a response arrived, so failures can be split
// into network and remote errors.
func (c *Client) legClient(ctx context.Context) (*http.Client, *legRecorder) {
	rec := &legRecorder{ctx: ctx, base: c.httpClient.Transport}
	return &http.Client{Transport: rec, Timeout: c.timeout}, rec
}

// RequestTemporaryCredentials runs the first OAuth leg. callbackURL is the
// local listener address, or OutOfBand.
func (c *Client) RequestTemporaryCredentials(ctx context.Context, keys Keys, callbackURL string) (*TemporaryCredentials, error) {
	const op = "request token"
	if callbackURL == "" {
		callbackURL = OutOfBand
	}

	hc, rec := c.legClient(ctx)
	cfg := c.oauthConfig(keys, callbackURL, hc)

	logging.Debug(subsystem, "Requesting temporary credentials (callback %s)", callbackURL)
	token, secret, err := cfg.RequestToken()
	if err != nil {
		return nil, rec.classify(op, err)
	}

	authURL, err := cfg.AuthorizationURL(token)
	if err != nil {
		return nil, fmt.Errorf("%s: build authorization URL: %w", op, err)
	}
	if callbackURL != OutOfBand {
		q := authURL.Query()
		q.Set("oauth_callback", callbackURL)
		authURL.RawQuery = q.Encode()
	}

	return &TemporaryCredentials{
		Token:            token,
		Secret:           secret,
		AuthorizationURL: authURL.String(),
	}, nil
}

// ExchangeVerifier trades the temporary credentials and verifier for the
// permanent access token pair.
func (c *Client) ExchangeVerifier(ctx context.Context, keys Keys, temp *TemporaryCredentials, verifier string) (Token, error) {
	const op = "access token"

	hc, rec := c.legClient(ctx)
	cfg := c.oauthConfig(keys, "", hc)

	logging.Debug(subsystem, "Exchanging verifier for access token")
	token, secret, err := cfg.AccessToken(temp.Token, temp.Secret, strings.TrimSpace(verifier))
	if err != nil {
		return Token{}, rec.classify(op, err)
	}
	return Token{Token: token, Secret: secret}, nil
}

// NewSession returns a Session signing requests with keys and token.
func (c *Client) NewSession(keys Keys, token Token) *Session {
	cfg := c.oauthConfig(keys, "", nil)
	ctx := context.WithValue(context.Background(), oauth1.HTTPClient, c.httpClient)
	hc := cfg.Client(ctx, oauth1.NewToken(token.Token, token.Secret))
	hc.Timeout = c.timeout

	return &Session{
		client:     c,
		keys:       keys,
		token:      token,
		httpClient: hc,
	}
}

type legRecorder struct {
	ctx    context.Context
	base   http.RoundTripper
	status int
}

func (r *legRecorder) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := r.base.RoundTrip(req.WithContext(r.ctx))
	if resp != nil {
		r.status = resp.StatusCode
	}
	return resp, err
}

func (r *legRecorder) classify(op string, err error) error {
	if r.status == 0 {
		return &NetworkError{Op: op, Err: err}
	}
	if strings.Contains(err.Error(), "user_refused") {
		return fmt.Errorf("%s: %w", op, ErrAuthorizationDenied)
	}
	status := r.status
	if status >= 200 && status < 300 {
		// The service answered but the body was not a usable token response.
		status = http.StatusOK
	}
	return &RemoteError{Op: op, Status: status, Err: err, Message: trimOAuthPrefix(err.Error())}
}

func trimOAuthPrefix(msg string) string {
	return strings.TrimPrefix(msg, "oauth1: ")
}

type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}

// uuidNoncer produces OAuth nonces from random UUIDs.
type uuidNoncer struct{}

func (uuidNoncer) Nonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// joinURL appends path and query to the base URL.
func (c *Client) joinURL(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}
