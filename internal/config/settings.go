package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Settings holds the runtime configuration of the CLI.
type Settings struct {
	CredentialsPath string
	APIBaseURL      string
	RequestInterval time.Duration
	CallbackTimeout time.Duration
	HTTPTimeout     time.Duration
}

// ConfigurationError reports an invalid environment setting.
type ConfigurationError struct {
	Variable string
	Value    string
	Message  string
}

// Error implements the error interface
func (ce *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s=%q: %s", ce.Variable, ce.Value, ce.Message)
}

// DefaultCredentialsPath returns the per-user credential file location,
// honouring XDG_CONFIG_HOME.
func DefaultCredentialsPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("unable to locate the home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configHome, DefaultConfigDirName, DefaultCredentialsFile), nil
}

// Load builds Settings from the process environment.
func Load() (Settings, error) {
	return LoadFrom(os.Getenv)
}

// LoadFrom builds Settings using getenv to look up variables.
func LoadFrom(getenv func(string) string) (Settings, error) {
	s := Settings{
		CredentialsPath: strings.TrimSpace(getenv(EnvCredentialsPath)),
		APIBaseURL:      DefaultAPIBaseURL,
		RequestInterval: DefaultRequestInterval,
		CallbackTimeout: DefaultCallbackTimeout,
		HTTPTimeout:     DefaultHTTPTimeout,
	}

	if s.CredentialsPath == "" {
		path, err := DefaultCredentialsPath()
		if err != nil {
			return Settings{}, err
		}
		s.CredentialsPath = path
	}

	if raw := strings.TrimSpace(getenv(EnvAPIBaseURL)); raw != "" {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return Settings{}, &ConfigurationError{Variable: EnvAPIBaseURL, Value: raw, Message: "expected an absolute URL"}
		}
		s.APIBaseURL = strings.TrimRight(raw, "/")
	}

	durations := []struct {
		name   string
		target *time.Duration
	}{
		{EnvRequestInterval, &s.RequestInterval},
		{EnvCallbackTimeout, &s.CallbackTimeout},
		{EnvHTTPTimeout, &s.HTTPTimeout},
	}
	for _, d := range durations {
		raw := strings.TrimSpace(getenv(d.name))
		if raw == "" {
			continue
		}
		v, err := time.ParseDuration(raw)
		if err != nil {
			return Settings{}, &ConfigurationError{Variable: d.name, Value: raw, Message: err.Error()}
		}
		if v <= 0 {
			return Settings{}, &ConfigurationError{Variable: d.name, Value: raw, Message: "must be positive"}
		}
		*d.target = v
	}

	return s, nil
}
