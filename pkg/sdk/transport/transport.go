// Package transport is the REST plumbing shared by the resource clients:
// it authenticates requests, encodes JSON bodies, decodes list envelopes and
// turns non-success responses into typed SDK errors.
package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/promptflow/promptflow/pkg/logger"
	"github.com/promptflow/promptflow/pkg/sdk/auth"
	sdkerrors "github.com/promptflow/promptflow/pkg/sdk/errors"
)

// RequestIDHeader carries a per-request correlation id.
const RequestIDHeader = "X-Request-ID"

// DefaultTimeout applies when no HTTP client is supplied.
const DefaultTimeout = 30 * time.Second

// Options configures a transport Client.
type Options struct {
	BaseURL    string
	Auth       auth.Provider
	HTTPClient *http.Client
	Logger     *slog.Logger

	// OnUnauthorized runs whenever the server answers 401, before the error
	// is returned to the caller.
	OnUnauthorized func()
}

// Client executes authenticated JSON requests against the API.
type Client struct {
	rc             *resty.Client
	log            *slog.Logger
	onUnauthorized func()
}

// New creates a transport client.
func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	log = log.With(logger.Scope("sdk.transport"))

	provider := opts.Auth
	if provider == nil {
		provider = auth.NewBearerProvider(nil)
	}

	rc := resty.NewWithClient(httpClient).
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Content-Type", auth.ContentTypeJSON).
		SetHeader("Accept", auth.ContentTypeJSON).
		SetLogger(restyLogger{log: log})

	rc.SetPreRequestHook(func(_ *resty.Client, req *http.Request) error {
		if req.Header.Get(RequestIDHeader) == "" {
			req.Header.Set(RequestIDHeader, uuid.NewString())
		}
		if err := provider.Authenticate(req); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
		return nil
	})

	return &Client{
		rc:             rc,
		log:            log,
		onUnauthorized: opts.OnUnauthorized,
	}
}

// Do sends a request and returns the raw body of a successful response.
// body, when non-nil, is encoded as JSON.
func (c *Client) Do(ctx context.Context, method, path string, body any) ([]byte, error) {
	req := c.rc.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	c.log.Debug("api request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode()),
		slog.Duration("duration", resp.Time()),
	)

	if !resp.IsSuccess() {
		if resp.StatusCode() == http.StatusUnauthorized && c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, sdkerrors.ParseErrorResponse(resp.StatusCode(), resp.Body())
	}

	return resp.Body(), nil
}

// Send performs a request and decodes the JSON response into result.
func (c *Client) Send(ctx context.Context, method, path string, body, result any) error {
	data, err := c.Do(ctx, method, path, body)
	if err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// Delete issues a DELETE and reports true on any success status,
// whatever the response body.
func (c *Client) Delete(ctx context.Context, path string) (bool, error) {
	if _, err := c.Do(ctx, http.MethodDelete, path, nil); err != nil {
		return false, err
	}
	return true, nil
}

// List fetches a collection endpoint and returns its items in server order.
func List[T any](ctx context.Context, c *Client, path string) ([]T, error) {
	data, err := c.Do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	return DecodeList[T](data)
}

type restyLogger struct {
	log *slog.Logger
}

func (l restyLogger) Errorf(format string, v ...any) {
	l.log.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Warnf(format string, v ...any) {
	l.log.Warn(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l restyLogger) Debugf(format string, v ...any) {
	l.log.Debug(strings.TrimSpace(fmt.Sprintf(format, v...)))
}
