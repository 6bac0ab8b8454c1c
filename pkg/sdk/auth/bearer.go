package auth

import (
	"fmt"
	"net/http"
)

// ContentTypeJSON is the content type sent with every API request.
const ContentTypeJSON = "application/json"

// BearerProvider implements Provider by sending the token from a TokenSource
// as "Authorization: Bearer <token>".
//
// A missing token is not an error here: the header is still sent with an
// empty token and the server answers 401.
type BearerProvider struct {
	source TokenSource
}

// NewBearerProvider creates a bearer provider reading from source.
func NewBearerProvider(source TokenSource) *BearerProvider {
	if source == nil {
		source = StaticToken("")
	}
	return &BearerProvider{source: source}
}

// Authenticate sets the Authorization header.
func (p *BearerProvider) Authenticate(req *http.Request) error {
	token, err := p.source.Token()
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return nil
}

// Headers returns the two fixed request headers for the current token.
func (p *BearerProvider) Headers() (map[string]string, error) {
	return Headers(p.source)
}

// Headers builds the header mapping sent with every API request:
// Content-Type and Authorization. The token is read from source on each call.
func Headers(source TokenSource) (map[string]string, error) {
	token := ""
	if source != nil {
		t, err := source.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to read token: %w", err)
		}
		token = t
	}
	return map[string]string{
		"Content-Type":  ContentTypeJSON,
		"Authorization": "Bearer " + token,
	}, nil
}
