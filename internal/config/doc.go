// Package config provides runtime settings for telltales.
//
// Settings come from the environment with sensible defaults, so the CLI works
// without any setup beyond the credential file:
//
//	TELLTALES_CREDENTIALS       credential file (default $XDG_CONFIG_HOME/telltales/credentials.yaml)
//	TELLTALES_API_URL           Telldus Live API base URL (default https://pa-api.telldus.com)
//	TELLTALES_REQUEST_INTERVAL  minimum spacing between API requests (default 1s)
//	TELLTALES_CALLBACK_TIMEOUT  how long to wait for the OAuth verifier (default 5m)
//	TELLTALES_HTTP_TIMEOUT      per-request HTTP timeout (default 30s)
package config
