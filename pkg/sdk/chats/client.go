// Package chats provides the Chat service client for the PromptFlow API SDK.
package chats

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/promptflow/promptflow/pkg/sdk/transport"
)

// DefaultTitle is used when Create is called without a title.
const DefaultTitle = "New Chat"

// Chat is a named conversation that groups generated workflows.
type Chat struct {
	ID        int64               `json:"id"`
	Title     string              `json:"title"`
	CreatedAt transport.Timestamp `json:"created_at"`
}

// CreateChatRequest is the request body for creating a chat.
type CreateChatRequest struct {
	Title string `json:"title"`
}

// UpdateChatRequest is the request body for renaming a chat.
type UpdateChatRequest struct {
	Title string `json:"title"`
}

// Client provides access to the Chats API.
type Client struct {
	t *transport.Client
}

// NewClient creates a new Chats service client.
func NewClient(t *transport.Client) *Client {
	return &Client{t: t}
}

func chatPath(id int64) string {
	return fmt.Sprintf("/chats/%d/", id)
}

// List returns every chat visible to the caller.
// Server: GET /chats/ (bare array or paginated envelope)
func (c *Client) List(ctx context.Context) ([]Chat, error) {
	return transport.List[Chat](ctx, c.t, "/chats/")
}

// Create creates a chat. An empty title becomes DefaultTitle.
// Server: POST /chats/
func (c *Client) Create(ctx context.Context, title string) (*Chat, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultTitle
	}

	var result Chat
	if err := c.t.Send(ctx, http.MethodPost, "/chats/", &CreateChatRequest{Title: title}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get retrieves a single chat.
// Server: GET /chats/{id}/
func (c *Client) Get(ctx context.Context, id int64) (*Chat, error) {
	var result Chat
	if err := c.t.Send(ctx, http.MethodGet, chatPath(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Update renames a chat. Title is the only mutable field.
// Server: PATCH /chats/{id}/
func (c *Client) Update(ctx context.Context, id int64, title string) (*Chat, error) {
	var result Chat
	if err := c.t.Send(ctx, http.MethodPatch, chatPath(id), &UpdateChatRequest{Title: title}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes a chat. It returns true on any success status.
// Server: DELETE /chats/{id}/
func (c *Client) Delete(ctx context.Context, id int64) (bool, error) {
	return c.t.Delete(ctx, chatPath(id))
}
