// Package sdk provides a Go client library for the PromptFlow API.
//
// The bearer token is supplied through an auth.TokenSource injected at
// construction and read again on every request:
//
//	client, err := sdk.New(sdk.Config{
//		ServerURL: "http://localhost:8000/api",
//		Tokens:    auth.StaticToken("eyJhbGciOi..."),
//	})
//	chats, err := client.Chats.List(ctx)
package sdk

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/promptflow/promptflow/pkg/sdk/auth"
	"github.com/promptflow/promptflow/pkg/sdk/chats"
	"github.com/promptflow/promptflow/pkg/sdk/transport"
	"github.com/promptflow/promptflow/pkg/sdk/workflows"
)

// DefaultServerURL is the API base used by local development servers.
const DefaultServerURL = "http://localhost:8000/api"

// Client is the main SDK client for the PromptFlow API.
type Client struct {
	base string
	http *http.Client

	Chats     *chats.Client
	Workflows *workflows.Client
}

// Config holds configuration for the SDK client.
type Config struct {
	ServerURL  string           // API base including the /api prefix
	Tokens     auth.TokenSource // Bearer token source; nil sends an empty token
	HTTPClient *http.Client     // Optional: custom HTTP client (defaults to 30s timeout)
	Logger     *slog.Logger     // Optional: request logging at debug level

	// OnUnauthorized is called when the server rejects the credentials.
	OnUnauthorized func()
}

// New creates a new PromptFlow API client.
func New(cfg Config) (*Client, error) {
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("ServerURL is required")
	}
	u, err := url.Parse(cfg.ServerURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid ServerURL %q", cfg.ServerURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}

	t := transport.New(transport.Options{
		BaseURL:        cfg.ServerURL,
		Auth:           auth.NewBearerProvider(cfg.Tokens),
		HTTPClient:     httpClient,
		Logger:         cfg.Logger,
		OnUnauthorized: cfg.OnUnauthorized,
	})

	return &Client{
		base:      cfg.ServerURL,
		http:      httpClient,
		Chats:     chats.NewClient(t),
		Workflows: workflows.NewClient(t),
	}, nil
}

// BaseURL returns the configured API base.
func (c *Client) BaseURL() string {
	return c.base
}

// Close releases resources held by the client, including idle HTTP connections.
// After calling Close, the client should not be used.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}
