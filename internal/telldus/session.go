package telldus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	tstrings "telltales/pkg/strings"
)

// maxErrorBody caps how much of a failed response body is kept in errors.
const maxErrorBody = 512

// Session pairs the signing credentials with the shared rate limiter. One
// Session is created per process after authentication and shared by reference.
type Session struct {
	client     *Client
	keys       Keys
	token      Token
	httpClient *http.Client
}

// Token returns the access token the session signs with.
func (s *Session) Token() Token {
	return s.token
}

// Profile is the subset of the account profile used for validation.
type Profile struct {
	FirstName string
	LastName  string
	Username  string
}

// DisplayName returns "first last", falling back to the username.
func (p *Profile) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(p.FirstName) + " " + strings.TrimSpace(p.LastName))
	if name != "" {
		return name
	}
	return strings.TrimSpace(p.Username)
}

// Profile fetches the account profile. It is the lightweight call used to
// check that the access token is still accepted.
func (s *Session) Profile(ctx context.Context) (*Profile, error) {
	const op = "profile"

	var payload struct {
		Status string `json:"status"`
		User   struct {
			FirstName string `json:"firstname"`
			LastName  string `json:"lastname"`
			Username  string `json:"username"`
		} `json:"user"`
	}
	if err := s.GetJSON(ctx, op, ProfilePath, nil, &payload); err != nil {
		return nil, err
	}

	if payload.Status != "success" {
		status := payload.Status
		if status == "" {
			status = "unknown"
		}
		return nil, &RemoteError{Op: op, Status: http.StatusOK, Message: "profile status " + status}
	}

	return &Profile{
		FirstName: payload.User.FirstName,
		LastName:  payload.User.LastName,
		Username:  payload.User.Username,
	}, nil
}

// GetJSON issues a signed GET for path and decodes the JSON body into out.
// op names the operation in returned errors.
func (s *Session) GetJSON(ctx context.Context, op, path string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.client.joinURL(path, query), nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w", op, ErrTokenRejected)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RemoteError{Op: op, Status: resp.StatusCode, Message: tstrings.SingleLine(string(body), maxErrorBody)}
	}

	var probe struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &probe) == nil && probe.Error != "" {
		return &RemoteError{Op: op, Status: resp.StatusCode, Message: probe.Error}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &RemoteError{Op: op, Status: resp.StatusCode, Message: "unexpected response", Err: err}
	}
	return nil
}
