package cmd

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptflow/promptflow/pkg/sdk/testutil"
)

func TestWorkflowsGenerate(t *testing.T) {
	isolate(t)
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.On("POST", "/api/workflows/", func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertJSONBody(t, r, map[string]any{"prompt": "send a daily email"})
		w.WriteHeader(http.StatusCreated)
		testutil.JSONResponse(t, w, testutil.FixtureWorkflow())
	})

	stdout, _, err := execute(t, "", "--server", mock.APIURL(), "workflows", "generate", "send", "a", "daily", "email")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Workflow generated successfully!")
	assert.Contains(t, stdout, "Chat:    42")
	assert.Contains(t, stdout, `"name": "Daily email"`)
}

func TestWorkflowsGenerate_WithChat(t *testing.T) {
	isolate(t)
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.On("POST", "/api/workflows/", func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertJSONBody(t, r, map[string]any{"prompt": "more", "chat_id": 7})
		testutil.JSONResponse(t, w, map[string]any{"id": 10, "prompt": "more", "chat_id": 7, "workflow_json": map[string]any{}})
	})

	stdout, _, err := execute(t, "", "--server", mock.APIURL(), "--output", "json", "workflows", "generate", "--chat", "7", "more")
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	assert.Equal(t, float64(7), got["chat_id"])
}

func TestWorkflowsGenerate_EmptyPrompt(t *testing.T) {
	isolate(t)
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	_, _, err := execute(t, "", "--server", mock.APIURL(), "workflows", "generate", "   ")
	require.Error(t, err)
	assert.Equal(t, "Please enter a prompt", err.Error())
	assert.Equal(t, 0, mock.TotalCalls())
}

func TestWorkflowsGenerate_ServerError(t *testing.T) {
	isolate(t)
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.OnJSON("POST", "/api/workflows/", http.StatusBadRequest, map[string]any{"error": "Prompt too vague"})

	_, _, err := execute(t, "", "--server", mock.APIURL(), "workflows", "generate", "do stuff")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Prompt too vague")
}

func TestWorkflowsList_ChatFilter(t *testing.T) {
	isolate(t)
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.OnJSON("GET", "/api/workflows/", http.StatusOK, testutil.FixtureWorkflows())

	stdout, _, err := execute(t, "", "--server", mock.APIURL(), "--output", "json", "workflows", "list", "--chat", "42")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 1)
	assert.Equal(t, float64(9), got[0]["id"])
}

func TestWorkflowsGet_Copy(t *testing.T) {
	isolate(t)
	orig := writeClipboard
	defer func() { writeClipboard = orig }()

	var copied string
	writeClipboard = func(s string) error {
		copied = s
		return nil
	}

	mock := testutil.NewMockServer(t)
	defer mock.Close()
	mock.OnJSON("GET", "/api/workflows/9/", http.StatusOK, testutil.FixtureWorkflow())

	stdout, stderr, err := execute(t, "", "--server", mock.APIURL(), "workflows", "get", "9", "--copy")
	require.NoError(t, err)
	assert.Contains(t, stdout, "send a daily email")
	assert.Contains(t, stderr, "copied to clipboard")
	assert.JSONEq(t, string(testutil.FixtureWorkflowJSON), copied)

	writeClipboard = func(string) error { return errors.New("no display") }
	_, _, err = execute(t, "", "--server", mock.APIURL(), "workflows", "get", "9", "--copy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "clipboard")
}

func TestWorkflowsUpdate(t *testing.T) {
	isolate(t)
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.On("PATCH", "/api/workflows/9/", func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertJSONBody(t, r, map[string]any{"prompt": "send a weekly email"})
		testutil.JSONResponse(t, w, map[string]any{"id": 9, "prompt": "send a weekly email"})
	})

	stdout, _, err := execute(t, "", "--server", mock.APIURL(), "workflows", "update", "9", "send", "a", "weekly", "email")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Updated workflow 9")
}

func TestWorkflowsDelete(t *testing.T) {
	isolate(t)
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.OnRaw("DELETE", "/api/workflows/9/", http.StatusOK, "application/json", `{"deleted":true}`)

	stdout, _, err := execute(t, "", "--server", mock.APIURL(), "wf", "delete", "9")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted workflow 9")
}

func TestCompleteChatIDs_Cached(t *testing.T) {
	isolate(t)
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.OnJSON("GET", "/api/chats/", http.StatusOK, testutil.FixtureChats())

	stdout, _, err := execute(t, "", "__complete", "--server", mock.APIURL(), "chats", "get", "")
	require.NoError(t, err)
	assert.Contains(t, stdout, "2\tInvoices")
	assert.Contains(t, stdout, "1\tT1")

	_, _, err = execute(t, "", "__complete", "--server", mock.APIURL(), "chats", "get", "")
	require.NoError(t, err)
	assert.Equal(t, 1, mock.Calls("GET", "/api/chats/"), "second completion is served from cache")

	stdout, _, err = execute(t, "", "__complete", "--server", mock.APIURL(), "chats", "get", "2", "")
	require.NoError(t, err)
	assert.NotContains(t, stdout, "Invoices", "only the first argument is completed")
}
