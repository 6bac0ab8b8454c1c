package workflows_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptflow/promptflow/pkg/sdk"
	"github.com/promptflow/promptflow/pkg/sdk/auth"
	sdkerrors "github.com/promptflow/promptflow/pkg/sdk/errors"
	"github.com/promptflow/promptflow/pkg/sdk/testutil"
)

func newClient(t *testing.T, mock *testutil.MockServer) *sdk.Client {
	t.Helper()
	client, err := sdk.New(sdk.Config{
		ServerURL: mock.APIURL(),
		Tokens:    auth.StaticToken("test_token"),
	})
	require.NoError(t, err)
	return client
}

func TestWorkflowsList(t *testing.T) {
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	fixture := testutil.FixtureWorkflows()
	mock.OnJSON("GET", "/api/workflows/", http.StatusOK, testutil.Paginated(fixture, 2))

	result, err := newClient(t, mock).Workflows.List(context.Background())
	require.NoError(t, err)

	require.Len(t, result, 2)
	assert.Equal(t, int64(9), result[0].ID)
	assert.JSONEq(t, string(testutil.FixtureWorkflowJSON), string(result[0].WorkflowJSON))
}

func TestWorkflowsListEmptyArray(t *testing.T) {
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.OnRaw("GET", "/api/workflows/", http.StatusOK, "application/json", `[]`)

	result, err := newClient(t, mock).Workflows.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, result)
	assert.Empty(t, result)
}

func TestWorkflowsCreateWithoutChat(t *testing.T) {
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.On("POST", "/api/workflows/", func(w http.ResponseWriter, r *http.Request) {
		body := testutil.DecodeBody(t, r)
		assert.Equal(t, "send a daily email", body["prompt"])
		_, hasChat := body["chat_id"]
		assert.False(t, hasChat, "chat_id must be omitted when no chat is selected")

		w.WriteHeader(http.StatusCreated)
		testutil.JSONResponse(t, w, testutil.FixtureWorkflow())
	})

	result, err := newClient(t, mock).Workflows.Create(context.Background(), "send a daily email", nil)
	require.NoError(t, err)

	assert.Equal(t, int64(9), result.ID)
	require.NotNil(t, result.ChatID)
	assert.Equal(t, int64(42), *result.ChatID)
}

func TestWorkflowsCreateWithChat(t *testing.T) {
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.On("POST", "/api/workflows/", func(w http.ResponseWriter, r *http.Request) {
		body := testutil.DecodeBody(t, r)
		assert.Equal(t, float64(42), body["chat_id"])
		testutil.JSONResponse(t, w, testutil.FixtureWorkflow())
	})

	chatID := int64(42)
	_, err := newClient(t, mock).Workflows.Create(context.Background(), "send a daily email", &chatID)
	require.NoError(t, err)
}

func TestWorkflowsCreateBlankPromptSkipsNetwork(t *testing.T) {
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	for _, prompt := range []string{"", "   ", "\n\t"} {
		_, err := newClient(t, mock).Workflows.Create(context.Background(), prompt, nil)
		require.Error(t, err)
		assert.True(t, sdkerrors.IsValidation(err))
	}
	assert.Equal(t, 0, mock.TotalCalls())
}

func TestWorkflowsCreateServerMessage(t *testing.T) {
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.OnJSON("POST", "/api/workflows/", http.StatusBadGateway, map[string]string{"error": "Generation service unavailable"})

	_, err := newClient(t, mock).Workflows.Create(context.Background(), "anything", nil)
	require.Error(t, err)
	assert.Equal(t, "Generation service unavailable", err.Error())
}

func TestWorkflowsGet(t *testing.T) {
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.OnJSON("GET", "/api/workflows/9/", http.StatusOK, testutil.FixtureWorkflow())

	result, err := newClient(t, mock).Workflows.Get(context.Background(), 9)
	require.NoError(t, err)

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(result.WorkflowJSON, &doc))
	assert.Equal(t, "Daily email", doc["name"])
}

func TestWorkflowsUpdateSendsOnlyPrompt(t *testing.T) {
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.On("PATCH", "/api/workflows/9/", func(w http.ResponseWriter, r *http.Request) {
		testutil.AssertJSONBody(t, r, map[string]string{"prompt": "send a weekly email"})
		wf := testutil.FixtureWorkflow()
		wf.Prompt = "send a weekly email"
		testutil.JSONResponse(t, w, wf)
	})

	result, err := newClient(t, mock).Workflows.Update(context.Background(), 9, "send a weekly email")
	require.NoError(t, err)
	assert.Equal(t, "send a weekly email", result.Prompt)
}

func TestWorkflowsUpdateError(t *testing.T) {
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.OnRaw("PATCH", "/api/workflows/9/", http.StatusInternalServerError, "text/html", "<html>oops</html>")

	_, err := newClient(t, mock).Workflows.Update(context.Background(), 9, "x")
	require.Error(t, err)
	assert.Equal(t, "HTTP error! status: 500", err.Error())
}

func TestWorkflowsDelete(t *testing.T) {
	mock := testutil.NewMockServer(t)
	defer mock.Close()

	mock.OnRaw("DELETE", "/api/workflows/9/", http.StatusNoContent, "", "")
	mock.OnRaw("DELETE", "/api/workflows/10/", http.StatusUnauthorized, "application/json", `{"detail":"expired"}`)

	client := newClient(t, mock)

	ok, err := client.Workflows.Delete(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = client.Workflows.Delete(context.Background(), 10)
	require.Error(t, err)
	assert.False(t, ok)
	assert.True(t, sdkerrors.IsUnauthorized(err))
}
