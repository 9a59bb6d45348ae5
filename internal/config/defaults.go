package config

import "time"

const (
	// DefaultAPIBaseURL is the Telldus Live API host.
	DefaultAPIBaseURL = "https://pa-api.telldus.com"

	// DefaultRequestInterval is the minimum spacing between two API requests.
	DefaultRequestInterval = time.Second

	// DefaultCallbackTimeout bounds how long verifier acquisition waits for the operator.
	DefaultCallbackTimeout = 5 * time.Minute

	// DefaultHTTPTimeout is the timeout applied to every outbound HTTP request.
	DefaultHTTPTimeout = 30 * time.Second

	// DefaultConfigDirName is the directory below the user config home.
	DefaultConfigDirName = "telltales"

	// DefaultCredentialsFile is the credential file name inside the config directory.
	DefaultCredentialsFile = "credentials.yaml"
)

// Environment variables understood by Load.
const (
	EnvCredentialsPath = "TELLTALES_CREDENTIALS"
	EnvAPIBaseURL      = "TELLTALES_API_URL"
	EnvRequestInterval = "TELLTALES_REQUEST_INTERVAL"
	EnvCallbackTimeout = "TELLTALES_CALLBACK_TIMEOUT"
	EnvHTTPTimeout     = "TELLTALES_HTTP_TIMEOUT"
)
