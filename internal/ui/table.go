package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/promptflow/promptflow/pkg/sdk/chats"
	"github.com/promptflow/promptflow/pkg/sdk/transport"
	"github.com/promptflow/promptflow/pkg/sdk/workflows"
)

// PromptWidth caps the prompt column in workflow tables.
const PromptWidth = 60

// NewTable creates a table writing to w with the given header.
func NewTable(w io.Writer, headers ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	args := make([]any, len(headers))
	for i, h := range headers {
		args[i] = h
	}
	table.Header(args...)
	return table
}

// RenderChats prints chats as a table.
func RenderChats(w io.Writer, list []chats.Chat) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No chats found.")
		return err
	}

	table := NewTable(w, "ID", "Title", "Created")
	for _, c := range list {
		if err := table.Append(strconv.FormatInt(c.ID, 10), c.Title, formatTime(c.CreatedAt)); err != nil {
			return err
		}
	}
	return table.Render()
}

// RenderWorkflows prints workflows as a table.
func RenderWorkflows(w io.Writer, list []workflows.Workflow) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(w, "No workflows found.")
		return err
	}

	table := NewTable(w, "ID", "Prompt", "Chat", "Created")
	for _, wf := range list {
		chat := "-"
		if wf.ChatID != nil {
			chat = strconv.FormatInt(*wf.ChatID, 10)
		}
		if err := table.Append(strconv.FormatInt(wf.ID, 10), Truncate(wf.Prompt, PromptWidth), chat, formatTime(wf.CreatedAt)); err != nil {
			return err
		}
	}
	return table.Render()
}

func formatTime(ts transport.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Local().Format("2006-01-02 15:04")
}
