package dashboard

import (
	"context"
	"sync"

	"github.com/promptflow/promptflow/pkg/sdk/chats"
	"github.com/promptflow/promptflow/pkg/sdk/workflows"
)

type createWorkflowCall struct {
	Prompt string
	ChatID *int64
}

// fakeAPI implements ChatService and WorkflowService in memory. Nil funcs
// return empty results.
type fakeAPI struct {
	mu sync.Mutex

	listChats      func(ctx context.Context) ([]chats.Chat, error)
	createChat     func(ctx context.Context, title string) (*chats.Chat, error)
	listWorkflows  func(ctx context.Context) ([]workflows.Workflow, error)
	createWorkflow func(ctx context.Context, prompt string, chatID *int64) (*workflows.Workflow, error)

	listChatsCalls  int
	createChatCalls []string
	workflowCalls   []createWorkflowCall
}

type fakeChats struct{ *fakeAPI }

type fakeWorkflows struct{ *fakeAPI }

func (f fakeChats) List(ctx context.Context) ([]chats.Chat, error) {
	f.mu.Lock()
	f.listChatsCalls++
	fn := f.listChats
	f.mu.Unlock()
	if fn == nil {
		return []chats.Chat{}, nil
	}
	return fn(ctx)
}

func (f fakeChats) Create(ctx context.Context, title string) (*chats.Chat, error) {
	f.mu.Lock()
	f.createChatCalls = append(f.createChatCalls, title)
	fn := f.createChat
	f.mu.Unlock()
	if fn == nil {
		return &chats.Chat{ID: 100, Title: title}, nil
	}
	return fn(ctx, title)
}

func (f fakeWorkflows) List(ctx context.Context) ([]workflows.Workflow, error) {
	if f.listWorkflows == nil {
		return []workflows.Workflow{}, nil
	}
	return f.listWorkflows(ctx)
}

func (f fakeWorkflows) Create(ctx context.Context, prompt string, chatID *int64) (*workflows.Workflow, error) {
	f.mu.Lock()
	f.workflowCalls = append(f.workflowCalls, createWorkflowCall{Prompt: prompt, ChatID: chatID})
	fn := f.createWorkflow
	f.mu.Unlock()
	if fn == nil {
		return &workflows.Workflow{ID: 1, Prompt: prompt, ChatID: chatID}, nil
	}
	return fn(ctx, prompt, chatID)
}

func newFakeDashboard(f *fakeAPI) *Dashboard {
	return New(fakeChats{f}, fakeWorkflows{f}, Options{})
}

func int64Ptr(v int64) *int64 { return &v }
