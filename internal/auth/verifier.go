package auth

import (
	"net/url"
	"strings"
)

// ExtractVerifier returns the OAuth verifier from operator input, which is
// either the bare code shown by Telldus Live or the full redirect URL.
func ExtractVerifier(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", ErrMissingVerifier
	}

	u, err := url.Parse(trimmed)
	if err != nil || u.Scheme == "" || (u.Host == "" && u.RawQuery == "") {
		return trimmed, nil
	}

	query := u.Query()
	if query.Get("oauth_problem") != "" {
		return "", ErrVerifierAborted
	}
	if !query.Has("oauth_verifier") {
		return "", ErrVerifierNotFound
	}
	verifier := strings.TrimSpace(query.Get("oauth_verifier"))
	if verifier == "" {
		return "", ErrMissingVerifier
	}
	return verifier, nil
}
