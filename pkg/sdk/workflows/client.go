// Package workflows provides the Workflow service client for the PromptFlow API SDK.
//
// Creating a workflow triggers server-side generation from a natural-language
// prompt. The generated document is opaque to the client; the only way to
// change it is to submit a new prompt.
package workflows

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	sdkerrors "github.com/promptflow/promptflow/pkg/sdk/errors"
	"github.com/promptflow/promptflow/pkg/sdk/transport"
)

// Workflow is a generated automation document.
type Workflow struct {
	ID           int64               `json:"id"`
	Prompt       string              `json:"prompt"`
	ChatID       *int64              `json:"chat_id,omitempty"`
	WorkflowJSON json.RawMessage     `json:"workflow_json,omitempty"`
	CreatedAt    transport.Timestamp `json:"created_at"`
}

// CreateWorkflowRequest is the request body for generating a workflow.
// ChatID is omitted when the workflow should start a new chat.
type CreateWorkflowRequest struct {
	Prompt string `json:"prompt"`
	ChatID *int64 `json:"chat_id,omitempty"`
}

// UpdateWorkflowRequest is the request body for updating a workflow.
// The prompt is the only writable field.
type UpdateWorkflowRequest struct {
	Prompt string `json:"prompt"`
}

// Client provides access to the Workflows API.
type Client struct {
	t *transport.Client
}

// NewClient creates a new Workflows service client.
func NewClient(t *transport.Client) *Client {
	return &Client{t: t}
}

func workflowPath(id int64) string {
	return fmt.Sprintf("/workflows/%d/", id)
}

// ValidatePrompt rejects prompts that are empty after trimming.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return sdkerrors.NewValidationError("prompt", "Please enter a prompt")
	}
	return nil
}

// List returns every workflow visible to the caller.
// Server: GET /workflows/ (bare array or paginated envelope)
func (c *Client) List(ctx context.Context) ([]Workflow, error) {
	return transport.List[Workflow](ctx, c.t, "/workflows/")
}

// Create generates a workflow from prompt. With a nil chatID the server
// creates a chat implicitly and reports its id in the result's ChatID.
// Server: POST /workflows/
func (c *Client) Create(ctx context.Context, prompt string, chatID *int64) (*Workflow, error) {
	if err := ValidatePrompt(prompt); err != nil {
		return nil, err
	}

	var result Workflow
	if err := c.t.Send(ctx, http.MethodPost, "/workflows/", &CreateWorkflowRequest{Prompt: prompt, ChatID: chatID}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get retrieves a single workflow.
// Server: GET /workflows/{id}/
func (c *Client) Get(ctx context.Context, id int64) (*Workflow, error) {
	var result Workflow
	if err := c.t.Send(ctx, http.MethodGet, workflowPath(id), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Update replaces the prompt of a workflow.
// Server: PATCH /workflows/{id}/
func (c *Client) Update(ctx context.Context, id int64, prompt string) (*Workflow, error) {
	if err := ValidatePrompt(prompt); err != nil {
		return nil, err
	}

	var result Workflow
	if err := c.t.Send(ctx, http.MethodPatch, workflowPath(id), &UpdateWorkflowRequest{Prompt: prompt}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes a workflow. It returns true on any success status.
// Server: DELETE /workflows/{id}/
func (c *Client) Delete(ctx context.Context, id int64) (bool, error) {
	return c.t.Delete(ctx, workflowPath(id))
}
