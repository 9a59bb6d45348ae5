package cli

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"telltales/internal/auth"
	"telltales/internal/credentials"
	"telltales/internal/telldus"
)

// ConnectionErrorType categorizes the type of connection error.
type ConnectionErrorType int

const (
	// ConnectionErrorUnknown indicates an unclassified connection error.
	ConnectionErrorUnknown ConnectionErrorType = iota
	// ConnectionErrorTLS indicates a TLS/certificate verification error.
	ConnectionErrorTLS
	// ConnectionErrorNetwork indicates a refused or unreachable host.
	ConnectionErrorNetwork
	// ConnectionErrorTimeout indicates a connection timeout.
	ConnectionErrorTimeout
	// ConnectionErrorDNS indicates a DNS resolution failure.
	ConnectionErrorDNS
)

// String returns a human-readable name for the connection error type.
func (t ConnectionErrorType) String() string {
	switch t {
	case ConnectionErrorTLS:
		return "TLS certificate error"
	case ConnectionErrorNetwork:
		return "Network error"
	case ConnectionErrorTimeout:
		return "Connection timeout"
	case ConnectionErrorDNS:
		return "DNS resolution error"
	default:
		return "Connection error"
	}
}

// ConnectionError is a classified failure to reach an endpoint.
type ConnectionError struct {
	// Endpoint is the URL that could not be reached.
	Endpoint string
	// Type categorizes the connection error.
	Type ConnectionErrorType
	// Reason is the underlying error.
	Reason error
}

// Error implements the error interface.
func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s reaching %s: %v", e.Type, e.Endpoint, e.Reason)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Reason
}

// ClassifyConnectionError analyzes err and returns a ConnectionError with the
// matching type. It returns nil for a nil error.
func ClassifyConnectionError(err error, endpoint string) *ConnectionError {
	if err == nil {
		return nil
	}

	kind := ConnectionErrorUnknown
	var dnsErr *net.DNSError
	switch {
	case isTLSError(err):
		kind = ConnectionErrorTLS
	case errors.As(err, &dnsErr):
		kind = ConnectionErrorDNS
	case isTimeoutError(err):
		kind = ConnectionErrorTimeout
	case isNetworkError(err.Error()):
		kind = ConnectionErrorNetwork
	}
	return &ConnectionError{Endpoint: endpoint, Type: kind, Reason: err}
}

// Hint returns a short follow-up line for the operator, or "" when the error
// message already says everything.
func Hint(err error, endpoint string) string {
	var (
		fileErr *credentials.FileError
		netErr  *telldus.NetworkError
	)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, auth.ErrVerifierTimeout), errors.Is(err, auth.ErrVerifierAborted):
		return "Run the command again to restart the authorization."
	case errors.Is(err, telldus.ErrTokenRejected):
		return "Run: telltales auth validate"
	case errors.Is(err, credentials.ErrIncomplete):
		return "Generate API keys in Telldus Live, then run: telltales auth validate"
	case errors.As(err, &fileErr):
		return fmt.Sprintf("Check that %s is a readable YAML file and its directory is writable.", fileErr.Path)
	case errors.As(err, &netErr):
		return ClassifyConnectionError(netErr.Err, endpoint).Type.String() + " while talking to " + endpoint
	default:
		return ""
	}
}

func isTLSError(err error) bool {
	var certErr *x509.CertificateInvalidError
	var hostErr *x509.HostnameError
	var unknownAuthErr *x509.UnknownAuthorityError
	var systemRootsErr *x509.SystemRootsError

	if errors.As(err, &certErr) || errors.As(err, &hostErr) ||
		errors.As(err, &unknownAuthErr) || errors.As(err, &systemRootsErr) {
		return true
	}

	errStr := err.Error()
	for _, keyword := range []string{"x509:", "certificate", "tls:", "TLS handshake"} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}

func isTimeoutError(err error) bool {
	// net.Error is an interface, so walk the chain by hand.
	for e := err; e != nil; {
		if ne, ok := e.(net.Error); ok && ne.Timeout() {
			return true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "timeout") || strings.Contains(errStr, "deadline exceeded")
}

func isNetworkError(errStr string) bool {
	for _, keyword := range []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no route to host",
		"dial tcp",
		"connect:",
		"EOF",
	} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}
