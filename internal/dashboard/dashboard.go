// Package dashboard holds the client-side state of the workflow dashboard
// and orchestrates the chat and workflow clients on the user's behalf.
//
// A Dashboard is safe for concurrent use. Views render from Snapshot and
// trigger actions (Load, NewChat, Generate) from their own goroutines; the
// state lock is never held across a network call.
package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/promptflow/promptflow/pkg/logger"
	"github.com/promptflow/promptflow/pkg/sdk/chats"
	sdkerrors "github.com/promptflow/promptflow/pkg/sdk/errors"
	"github.com/promptflow/promptflow/pkg/sdk/workflows"
)

// User-facing messages.
const (
	NewChatTitle = "New Workflow Chat"

	MsgLoadChats        = "Failed to load chats"
	MsgLoadWorkflows    = "Failed to load workflows"
	MsgCreateChat       = "Failed to create chat"
	MsgGenerateWorkflow = "Failed to generate workflow"
	MsgGenerated        = "Workflow generated successfully!"
)

const (
	DefaultRequestTimeout  = 30 * time.Second
	DefaultGenerateTimeout = 2 * time.Minute
)

// ErrInFlight is returned when an action is triggered while the same action
// is still running.
var ErrInFlight = errors.New("operation already in progress")

// ChatService is the subset of the chat client the dashboard needs.
type ChatService interface {
	List(ctx context.Context) ([]chats.Chat, error)
	Create(ctx context.Context, title string) (*chats.Chat, error)
}

// WorkflowService is the subset of the workflow client the dashboard needs.
type WorkflowService interface {
	List(ctx context.Context) ([]workflows.Workflow, error)
	Create(ctx context.Context, prompt string, chatID *int64) (*workflows.Workflow, error)
}

// Options configures a Dashboard. Zero values select the defaults.
type Options struct {
	RequestTimeout  time.Duration
	GenerateTimeout time.Duration
	Logger          *slog.Logger
}

// State is a point-in-time copy of the dashboard.
type State struct {
	Chats          []chats.Chat
	Workflows      []workflows.Workflow
	SelectedChatID *int64
	Prompt         string
	Loading        bool
	Err            string
	Notice         string
}

// SelectedChat resolves SelectedChatID against Chats. It returns nil when
// nothing is selected or the chat is no longer listed.
func (s State) SelectedChat() *chats.Chat {
	if s.SelectedChatID == nil {
		return nil
	}
	for i := range s.Chats {
		if s.Chats[i].ID == *s.SelectedChatID {
			c := s.Chats[i]
			return &c
		}
	}
	return nil
}

// Dashboard is the view model behind the interactive dashboard.
type Dashboard struct {
	chats     ChatService
	workflows WorkflowService
	opts      Options
	log       *slog.Logger

	mu         sync.Mutex
	state      State
	creating   bool
	generating bool
}

// New creates a Dashboard over the given services.
func New(cs ChatService, ws WorkflowService, opts Options) *Dashboard {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = DefaultRequestTimeout
	}
	if opts.GenerateTimeout <= 0 {
		opts.GenerateTimeout = DefaultGenerateTimeout
	}
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	return &Dashboard{
		chats:     cs,
		workflows: ws,
		opts:      opts,
		log:       log.With(logger.Scope("dashboard")),
		state: State{
			Chats:     []chats.Chat{},
			Workflows: []workflows.Workflow{},
		},
	}
}

// Snapshot returns a copy of the current state.
func (d *Dashboard) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshotLocked()
}

func (d *Dashboard) snapshotLocked() State {
	s := d.state
	s.Chats = slices.Clone(d.state.Chats)
	s.Workflows = slices.Clone(d.state.Workflows)
	if d.state.SelectedChatID != nil {
		id := *d.state.SelectedChatID
		s.SelectedChatID = &id
	}
	s.Loading = d.creating || d.generating
	return s
}

// SelectedChat returns the selected chat, or nil.
func (d *Dashboard) SelectedChat() *chats.Chat {
	return d.Snapshot().SelectedChat()
}

// SelectChat selects the listed chat with id. It reports false, leaving the
// selection unchanged, when no such chat is listed.
func (d *Dashboard) SelectChat(id int64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, c := range d.state.Chats {
		if c.ID == id {
			d.state.SelectedChatID = &id
			return true
		}
	}
	return false
}

// ClearSelection deselects the current chat so the next generation starts
// a new one.
func (d *Dashboard) ClearSelection() {
	d.mu.Lock()
	d.state.SelectedChatID = nil
	d.mu.Unlock()
}

// SetPrompt replaces the pending prompt text.
func (d *Dashboard) SetPrompt(prompt string) {
	d.mu.Lock()
	d.state.Prompt = prompt
	d.mu.Unlock()
}

// ClearError dismisses the current error.
func (d *Dashboard) ClearError() {
	d.mu.Lock()
	d.state.Err = ""
	d.mu.Unlock()
}

// TakeNotice returns and clears the pending success notice.
func (d *Dashboard) TakeNotice() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := d.state.Notice
	d.state.Notice = ""
	return n
}

func (d *Dashboard) setErr(msg string) {
	d.mu.Lock()
	d.state.Err = msg
	d.mu.Unlock()
}

// Load fetches chats and workflows concurrently. Each list is replaced only
// when its own request succeeds; a failure leaves it untouched and sets the
// error. The first failure is returned.
func (d *Dashboard) Load(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.opts.RequestTimeout)
	defer cancel()

	var g errgroup.Group
	g.Go(func() error { return d.loadChats(ctx) })
	g.Go(func() error { return d.loadWorkflows(ctx) })
	return g.Wait()
}

// ReloadChats refetches the chat list.
func (d *Dashboard) ReloadChats(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, d.opts.RequestTimeout)
	defer cancel()
	return d.loadChats(ctx)
}

func (d *Dashboard) loadChats(ctx context.Context) error {
	list, err := d.chats.List(ctx)
	if err != nil {
		d.log.Warn("failed to load chats", logger.Error(err))
		d.setErr(MsgLoadChats)
		return err
	}

	d.mu.Lock()
	d.state.Chats = list
	d.mu.Unlock()
	d.log.Debug("chats loaded", slog.Int("count", len(list)))
	return nil
}

func (d *Dashboard) loadWorkflows(ctx context.Context) error {
	list, err := d.workflows.List(ctx)
	if err != nil {
		d.log.Warn("failed to load workflows", logger.Error(err))
		d.setErr(MsgLoadWorkflows)
		return err
	}

	d.mu.Lock()
	d.state.Workflows = list
	d.mu.Unlock()
	d.log.Debug("workflows loaded", slog.Int("count", len(list)))
	return nil
}

// NewChat creates a chat titled NewChatTitle, puts it at the top of the
// list and selects it. It returns ErrInFlight while a previous NewChat is
// still running.
func (d *Dashboard) NewChat(ctx context.Context) (*chats.Chat, error) {
	d.mu.Lock()
	if d.creating {
		d.mu.Unlock()
		return nil, ErrInFlight
	}
	d.creating = true
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.creating = false
		d.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, d.opts.RequestTimeout)
	defer cancel()

	chat, err := d.chats.Create(ctx, NewChatTitle)
	if err != nil {
		d.log.Warn("failed to create chat", logger.Error(err))
		d.setErr(sdkerrors.Message(err, MsgCreateChat))
		return nil, err
	}

	d.mu.Lock()
	d.state.Chats = append([]chats.Chat{*chat}, d.state.Chats...)
	id := chat.ID
	d.state.SelectedChatID = &id
	d.state.Err = ""
	d.mu.Unlock()

	d.log.Info("chat created", slog.Int64("chat_id", chat.ID))
	return chat, nil
}

// Generate submits the pending prompt, attached to the selected chat when
// there is one. An empty prompt fails validation without a request. When
// the server started a new chat for an unattached prompt, the chat list is
// reloaded afterwards. It returns ErrInFlight while a previous Generate is
// still running.
func (d *Dashboard) Generate(ctx context.Context) (*workflows.Workflow, error) {
	d.mu.Lock()
	prompt := d.state.Prompt
	if err := workflows.ValidatePrompt(prompt); err != nil {
		d.state.Err = sdkerrors.Message(err, "")
		d.mu.Unlock()
		return nil, err
	}
	if d.generating {
		d.mu.Unlock()
		return nil, ErrInFlight
	}
	d.generating = true
	d.state.Err = ""
	var chatID *int64
	if c := d.snapshotLocked().SelectedChat(); c != nil {
		id := c.ID
		chatID = &id
	}
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.generating = false
		d.mu.Unlock()
	}()

	genCtx, cancel := context.WithTimeout(ctx, d.opts.GenerateTimeout)
	defer cancel()

	wf, err := d.workflows.Create(genCtx, prompt, chatID)
	if err != nil {
		d.log.Warn("failed to generate workflow", logger.Error(err))
		d.setErr(sdkerrors.Message(err, MsgGenerateWorkflow))
		return nil, err
	}

	d.mu.Lock()
	d.state.Workflows = append([]workflows.Workflow{*wf}, d.state.Workflows...)
	d.mu.Unlock()

	if wf.ChatID != nil && chatID == nil {
		// The chat list stays usable if this fails; loadChats records the error.
		_ = d.ReloadChats(ctx)
	}

	d.mu.Lock()
	d.state.Prompt = ""
	d.state.Notice = MsgGenerated
	d.mu.Unlock()

	d.log.Info("workflow generated", slog.Int64("workflow_id", wf.ID))
	return wf, nil
}
