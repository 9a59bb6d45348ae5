// Package auth drives the Telldus Live OAuth 1.0a authorization.
//
// The Flow type is a small state machine:
//
//	Start → CheckToken → Handshake → AwaitVerifier → Exchange → Validate → Authenticated
//
// with every failure collapsing into Failed. Start makes sure the consumer keys
// are on disk, prompting for the missing ones. CheckToken validates a stored
// access token with a profile fetch and skips the handshake when it is still
// accepted.
//
// The verifier needed by the exchange leg is acquired by racing two
// strategies: a one-shot HTTP listener on 127.0.0.1 that captures the browser
// redirect, and an operator prompt accepting either the bare code or the full
// redirect URL. The first verifier wins and the loser is cancelled.
//
// All network legs go through a telldus.Client, so the process-wide request
// spacing also holds between retries.
package auth
