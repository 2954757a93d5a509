package ews

import "fmt"

// TransportError is a network or HTTP-level failure reaching the remote API,
// carrying the status and any server-provided error body.
type TransportError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("transport error: %s returned status %d: %s", e.Endpoint, e.Status, e.Body)
	}
	return fmt.Sprintf("transport error: %s: %s", e.Endpoint, e.Body)
}

// AuthError means the remote API or the credential provider rejected the
// session's credentials.
type AuthError struct {
	Status int
	Reason string
}

func (e *AuthError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("authentication error: rejected with status %d", e.Status)
	}
	return fmt.Sprintf("authentication error: %s", e.Reason)
}

// ConfigError is a missing or invalid setting, caught before any network
// call.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// ParseError means a value could not be parsed into the expected shape:
// either client-supplied input or a malformed remote response. A malformed
// remote response is never silently treated as empty.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error: %s", e.Reason)
}
