// Package telldus is the client for the Telldus Live API.
//
// Every request is signed with OAuth 1.0a (HMAC-SHA1, via dghubble/oauth1) and
// passes through the process-wide ratelimit.Limiter. The package covers the
// three handshake legs (temporary credentials, authorization URL, token
// exchange), the profile fetch used to validate a token, and the resource
// listings used by the device commands.
//
// Errors are classified so callers can react to them:
//   - ErrTokenRejected: the access token was refused (HTTP 401); re-run the handshake
//   - *NetworkError: the request never produced a response; safe to retry
//   - *RemoteError: the service answered with a failure; report it
package telldus
