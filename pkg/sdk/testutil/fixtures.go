package testutil

import (
	"encoding/json"
	"time"

	"github.com/promptflow/promptflow/pkg/sdk/chats"
	"github.com/promptflow/promptflow/pkg/sdk/transport"
	"github.com/promptflow/promptflow/pkg/sdk/workflows"
)

// Fixtures provides common test data.

// FixtureTime is the creation time used by every fixture.
var FixtureTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

// FixtureChat returns a sample chat for testing.
func FixtureChat() *chats.Chat {
	return &chats.Chat{
		ID:        1,
		Title:     "T1",
		CreatedAt: transport.Timestamp{Time: FixtureTime},
	}
}

// FixtureChats returns a list of sample chats, newest first.
func FixtureChats() []chats.Chat {
	return []chats.Chat{
		{
			ID:        2,
			Title:     "Invoices",
			CreatedAt: transport.Timestamp{Time: FixtureTime.Add(time.Hour)},
		},
		*FixtureChat(),
	}
}

// FixtureWorkflowJSON is a small n8n-style workflow document.
var FixtureWorkflowJSON = json.RawMessage(`{"name":"Daily email","nodes":[{"type":"n8n-nodes-base.cron"},{"type":"n8n-nodes-base.emailSend"}]}`)

// FixtureWorkflow returns a sample workflow attached to chat 42.
func FixtureWorkflow() *workflows.Workflow {
	chatID := int64(42)
	return &workflows.Workflow{
		ID:           9,
		Prompt:       "send a daily email",
		ChatID:       &chatID,
		WorkflowJSON: FixtureWorkflowJSON,
		CreatedAt:    transport.Timestamp{Time: FixtureTime},
	}
}

// FixtureWorkflows returns a list of sample workflows, newest first.
func FixtureWorkflows() []workflows.Workflow {
	chatID := int64(1)
	return []workflows.Workflow{
		*FixtureWorkflow(),
		{
			ID:           3,
			Prompt:       "post new sheet rows to slack",
			ChatID:       &chatID,
			WorkflowJSON: json.RawMessage(`{"nodes":[]}`),
			CreatedAt:    transport.Timestamp{Time: FixtureTime.Add(-time.Hour)},
		},
	}
}

// Paginated wraps items in the {"count","next","previous","results"} envelope.
func Paginated(items interface{}, count int) map[string]interface{} {
	return map[string]interface{}{
		"count":    count,
		"next":     nil,
		"previous": nil,
		"results":  items,
	}
}
