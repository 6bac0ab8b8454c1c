package cmd

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptflow/promptflow/pkg/sdk/testutil"
)

func TestChatsList_Table(t *testing.T) {
	isolate(t)
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.On("GET", "/api/chats/", func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertHeader(t, r, "Authorization", "Bearer flag-token")
		testutil.JSONResponse(t, w, testutil.Paginated(testutil.FixtureChats(), 2))
	})

	stdout, _, err := execute(t, "", "--server", mock.APIURL(), "--token", "flag-token", "chats", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Invoices")
	assert.Contains(t, stdout, "T1")
}

func TestChatsList_JSON(t *testing.T) {
	isolate(t)
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.OnJSON("GET", "/api/chats/", http.StatusOK, testutil.FixtureChats())

	stdout, _, err := execute(t, "", "--server", mock.APIURL(), "--output", "json", "chats", "list")
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Invoices", got[0]["title"])
}

func TestChatsList_YAMLEmpty(t *testing.T) {
	isolate(t)
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.OnJSON("GET", "/api/chats/", http.StatusOK, testutil.Paginated([]any{}, 0))

	stdout, _, err := execute(t, "", "--server", mock.APIURL(), "--output", "yaml", "chats", "list")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", stdout)
}

func TestChatsCreate_DefaultTitle(t *testing.T) {
	isolate(t)
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.On("POST", "/api/chats/", func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertJSONBody(t, r, map[string]any{"title": "New Chat"})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":5,"title":"New Chat","created_at":"2024-01-01T12:00:00Z"}`))
	})

	stdout, _, err := execute(t, "", "--server", mock.APIURL(), "chats", "create")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Created chat 5: New Chat")
}

func TestChatsRename(t *testing.T) {
	isolate(t)
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.On("PATCH", "/api/chats/3/", func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertJSONBody(t, r, map[string]any{"title": "Reports"})
		testutil.JSONResponse(t, w, map[string]any{"id": 3, "title": "Reports"})
	})

	stdout, _, err := execute(t, "", "--server", mock.APIURL(), "chats", "rename", "3", "Reports")
	require.NoError(t, err)
	assert.Contains(t, stdout, `Renamed chat 3 to "Reports"`)

	_, _, err = execute(t, "", "--server", mock.APIURL(), "chats", "rename", "3", "  ")
	assert.Error(t, err)
}

func TestChatsGet_NotFound(t *testing.T) {
	isolate(t)
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.OnJSON("GET", "/api/chats/99/", http.StatusNotFound, map[string]any{"error": "Chat not found"})

	_, _, err := execute(t, "", "--server", mock.APIURL(), "chats", "get", "99")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Chat not found")
}

func TestChatsDelete(t *testing.T) {
	isolate(t)
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.OnRaw("DELETE", "/api/chats/4/", http.StatusNoContent, "", "")

	stdout, _, err := execute(t, "", "--server", mock.APIURL(), "chats", "delete", "4")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Deleted chat 4")

	_, _, err = execute(t, "", "--server", mock.APIURL(), "chats", "delete", "four")
	assert.Error(t, err)
	assert.Equal(t, 1, mock.Calls("DELETE", "/api/chats/4/"))
}

func TestUnauthorizedPrintsLoginHint(t *testing.T) {
	isolate(t)
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.OnJSON("GET", "/api/chats/", http.StatusUnauthorized, map[string]any{"detail": "invalid token"})

	_, stderr, err := execute(t, "", "--server", mock.APIURL(), "chats", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP error! status: 401")
	assert.Contains(t, stderr, "promptflow auth login")
}
