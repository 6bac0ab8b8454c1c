package ui

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/promptflow/promptflow/pkg/sdk/chats"
	"github.com/promptflow/promptflow/pkg/sdk/transport"
	"github.com/promptflow/promptflow/pkg/sdk/workflows"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatTable, false},
		{"table", FormatTable, false},
		{"JSON", FormatJSON, false},
		{" yaml ", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestColors(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	assert.True(t, Colors(false))
	assert.False(t, Colors(true))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, Colors(false))
}

func TestFormatJSONNoColor(t *testing.T) {
	out, err := FormatJSON(map[string]any{"a": 1}, true)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"a\": 1\n}", out)
}

func TestFormatJSONRaw(t *testing.T) {
	out, err := FormatJSON(json.RawMessage(`{"nodes":[1,2]}`), true)
	require.NoError(t, err)
	assert.Contains(t, out, "\"nodes\": [\n")

	out, err = FormatJSON(json.RawMessage(nil), true)
	require.NoError(t, err)
	assert.Equal(t, "null", out)

	_, err = FormatJSON(json.RawMessage(`{broken`), true)
	assert.Error(t, err)
}

func TestHighlightPlainStylesIsIdentity(t *testing.T) {
	src := "{\n  \"key\": \"va\\\"lue\",\n  \"n\": -1.5e3,\n  \"ok\": true,\n  \"off\": false,\n  \"none\": null,\n  \"list\": []\n}"
	assert.Equal(t, src, Highlight(src, NewSyntaxStyles(true)))
}

func TestScanString(t *testing.T) {
	src := `"a\"b": 1`
	end := scanString(src, 0)
	assert.Equal(t, `"a\"b"`, src[:end])
	assert.True(t, isKey(src, end))
	assert.False(t, isKey(`"v",`, 3))
}

func TestWriteYAML(t *testing.T) {
	chatID := int64(42)
	wf := workflows.Workflow{
		ID:           9,
		Prompt:       "send a daily email",
		ChatID:       &chatID,
		WorkflowJSON: json.RawMessage(`{"name":"Daily"}`),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, wf))

	out := buf.String()
	assert.Contains(t, out, "prompt: send a daily email")
	assert.Contains(t, out, "chat_id: 42")
	assert.Contains(t, out, "workflow_json:\n  name: Daily")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, chats.Chat{ID: 1, Title: "T1"}, true))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "T1", decoded["title"])
	assert.Nil(t, decoded["created_at"], "zero timestamps encode as null")
}

func TestRenderChats(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderChats(&buf, nil))
	assert.Equal(t, "No chats found.\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderChats(&buf, []chats.Chat{{ID: 7, Title: "Invoices"}}))
	out := buf.String()
	assert.Contains(t, out, "Invoices")
	assert.Contains(t, out, "7")
	assert.Contains(t, strings.ToUpper(out), "TITLE")
}

func TestRenderWorkflows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderWorkflows(&buf, []workflows.Workflow{}))
	assert.Equal(t, "No workflows found.\n", buf.String())

	long := strings.Repeat("word ", 40)
	buf.Reset()
	require.NoError(t, RenderWorkflows(&buf, []workflows.Workflow{{ID: 3, Prompt: long}}))
	out := buf.String()
	assert.Contains(t, out, "…")
	assert.Contains(t, out, "-", "missing chat renders as a dash")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "a b", Truncate("a\n  b", 10), "whitespace collapses")
	assert.Equal(t, "héll…", Truncate("héllo world", 5))
	assert.Equal(t, "h", Truncate("hello", 1))
}

func TestFormatTime(t *testing.T) {
	assert.Equal(t, "-", formatTime(transport.Timestamp{}))
}

func TestSuccessAndWarning(t *testing.T) {
	assert.Equal(t, "[OK] done", Success("done", true))
	assert.Equal(t, "[WARN] careful", Warning("careful", true))
	assert.Contains(t, Success("done", false), "done")
}

func TestSpinnerDisabledIsNoop(t *testing.T) {
	var buf bytes.Buffer
	s := NewSpinner("Working", true)
	s.writer = &buf
	s.enabled = false

	s.Start()
	s.Stop()
	s.Stop()
	assert.Empty(t, buf.String())
}
