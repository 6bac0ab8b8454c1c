// Package auth provides authentication mechanisms for the PromptFlow API SDK.
package auth

import (
	"net/http"
)

// Provider defines the interface for authentication providers.
type Provider interface {
	// Authenticate adds authentication headers to the HTTP request.
	Authenticate(req *http.Request) error
}

// TokenSource supplies the current bearer token. Implementations are
// consulted on every request, so a rotated token is picked up by the next
// call without rebuilding the client.
type TokenSource interface {
	Token() (string, error)
}

// TokenFunc adapts a function to TokenSource.
type TokenFunc func() (string, error)

// Token implements TokenSource.
func (f TokenFunc) Token() (string, error) {
	return f()
}

// StaticToken is a TokenSource that always returns the same token.
type StaticToken string

// Token implements TokenSource.
func (s StaticToken) Token() (string, error) {
	return string(s), nil
}
