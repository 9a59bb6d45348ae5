package auth

// State is a step of the authentication flow.
type State int

const (
	// StateStart loads the credential file and completes the consumer keys.
	StateStart State = iota

	// StateCheckToken validates a stored access token.
	StateCheckToken

	// StateHandshake requests temporary credentials.
	StateHandshake

	// StateAwaitVerifier waits for the operator to authorize access.
	StateAwaitVerifier

	// StateExchange trades the verifier for an access token.
	StateExchange

	// StateValidate checks the newly issued access token.
	StateValidate

	// StateAuthenticated is terminal: a usable session exists.
	StateAuthenticated

	// StateFailed is terminal: the run could not authenticate.
	StateFailed
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateCheckToken:
		return "check_token"
	case StateHandshake:
		return "handshake"
	case StateAwaitVerifier:
		return "await_verifier"
	case StateExchange:
		return "exchange"
	case StateValidate:
		return "validate"
	case StateAuthenticated:
		return "authenticated"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the flow stops in this state.
func (s State) Terminal() bool {
	return s == StateAuthenticated || s == StateFailed
}
