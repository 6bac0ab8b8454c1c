// Package tui provides the interactive workflow dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/promptflow/promptflow/internal/dashboard"
	"github.com/promptflow/promptflow/internal/ui"
)

// Pane identifies which part of the screen receives keys.
type Pane int

const (
	ChatsPane Pane = iota
	PromptPane
	WorkflowsPane
)

const (
	minWidth      = 60
	minHeight     = 16
	chatPaneWidth = 30
	promptHeight  = 4
)

// Options configures the dashboard UI.
type Options struct {
	NoColor bool
}

// Model represents the state of the TUI application.
type Model struct {
	ctx  context.Context
	dash *dashboard.Dashboard
	opts Options

	width  int
	height int
	ready  bool

	state   dashboard.State
	focus   Pane
	pending int
	status  string

	chatCursor     int
	workflowCursor int

	prompt  textarea.Model
	json    viewport.Model
	spinner spinner.Model

	help     help.Model
	keyMap   KeyMap
	showHelp bool
	styles   styles
}

// New creates the dashboard model. ctx bounds every request it issues.
func New(ctx context.Context, d *dashboard.Dashboard, opts Options) Model {
	ta := textarea.New()
	ta.Placeholder = "Describe the workflow you want, e.g. \"send a daily email with new sheet rows\""
	ta.ShowLineNumbers = false
	ta.CharLimit = 4000
	ta.SetHeight(promptHeight)

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:     ctx,
		dash:    d,
		opts:    opts,
		state:   d.Snapshot(),
		prompt:  ta,
		json:    viewport.New(0, 0),
		spinner: sp,
		help:    help.New(),
		keyMap:  DefaultKeyMap(),
		styles:  newStyles(opts.NoColor),
	}
	m.spinner.Style = m.styles.spinner
	return m
}

// Run starts the dashboard on the alternate screen and blocks until the
// user quits or ctx is cancelled.
func Run(ctx context.Context, d *dashboard.Dashboard, opts Options) error {
	p := tea.NewProgram(New(ctx, d, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		loadDashboard(m.ctx, m.dash),
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case loadedMsg:
		m.refresh()
		return m, nil

	case chatCreatedMsg:
		m.pending--
		m.refresh()
		if msg.err == nil {
			m.chatCursor = 0
			m.status = "Chat created"
		}
		return m, nil

	case generatedMsg:
		m.pending--
		m.refresh()
		if msg.err == nil {
			m.prompt.Reset()
			m.workflowCursor = 0
			m.updateJSON()
		}
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("Clipboard unavailable: %v", msg.err)
		} else {
			m.status = "Workflow JSON copied to clipboard"
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keyMap.Generate):
		return m.startGenerate()
	case key.Matches(msg, m.keyMap.Focus):
		return m.cycleFocus()
	}

	if m.focus == PromptPane {
		if msg.Type == tea.KeyEsc {
			m.prompt.Blur()
			m.focus = ChatsPane
			return m, nil
		}
		var cmd tea.Cmd
		m.prompt, cmd = m.prompt.Update(msg)
		m.dash.SetPrompt(m.prompt.Value())
		return m, cmd
	}

	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = !m.showHelp
		m.resize()
		return m, nil

	case key.Matches(msg, m.keyMap.NewChat):
		m.pending++
		m.status = ""
		return m, tea.Batch(createChat(m.ctx, m.dash), m.spinner.Tick)

	case key.Matches(msg, m.keyMap.Reload):
		m.status = "Reloading..."
		return m, loadDashboard(m.ctx, m.dash)

	case key.Matches(msg, m.keyMap.Dismiss):
		m.dash.ClearError()
		m.refresh()
		return m, nil
	}

	if m.focus == ChatsPane {
		return m.handleChatsKey(msg)
	}
	return m.handleWorkflowsKey(msg)
}

func (m Model) handleChatsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.chatCursor > 0 {
			m.chatCursor--
		}
	case key.Matches(msg, m.keyMap.Down):
		if m.chatCursor < len(m.state.Chats)-1 {
			m.chatCursor++
		}
	case key.Matches(msg, m.keyMap.Select):
		if m.chatCursor < len(m.state.Chats) {
			m.dash.SelectChat(m.state.Chats[m.chatCursor].ID)
			m.refresh()
		}
	case key.Matches(msg, m.keyMap.Deselect):
		m.dash.ClearSelection()
		m.refresh()
	}
	return m, nil
}

func (m Model) handleWorkflowsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		if m.workflowCursor > 0 {
			m.workflowCursor--
			m.updateJSON()
		}
		return m, nil
	case key.Matches(msg, m.keyMap.Down):
		if m.workflowCursor < len(m.state.Workflows)-1 {
			m.workflowCursor++
			m.updateJSON()
		}
		return m, nil
	case key.Matches(msg, m.keyMap.Copy):
		wf := m.selectedWorkflow()
		if wf == nil {
			return m, nil
		}
		text, err := ui.FormatJSON(wf.WorkflowJSON, true)
		if err != nil {
			m.status = fmt.Sprintf("Cannot copy: %v", err)
			return m, nil
		}
		return m, copyToClipboard(text)
	}

	var cmd tea.Cmd
	m.json, cmd = m.json.Update(msg)
	return m, cmd
}

func (m Model) startGenerate() (tea.Model, tea.Cmd) {
	m.dash.SetPrompt(m.prompt.Value())
	m.pending++
	m.status = ""
	return m, tea.Batch(generateWorkflow(m.ctx, m.dash), m.spinner.Tick)
}

func (m Model) cycleFocus() (tea.Model, tea.Cmd) {
	m.focus = (m.focus + 1) % 3
	if m.focus == PromptPane {
		return m, m.prompt.Focus()
	}
	m.prompt.Blur()
	return m, nil
}

// refresh pulls a fresh snapshot from the dashboard and keeps cursors in
// range.
func (m *Model) refresh() {
	m.state = m.dash.Snapshot()
	if notice := m.dash.TakeNotice(); notice != "" {
		m.status = notice
	} else if m.status == "Reloading..." {
		m.status = ""
	}

	m.chatCursor = clamp(m.chatCursor, len(m.state.Chats))
	m.workflowCursor = clamp(m.workflowCursor, len(m.state.Workflows))
	m.updateJSON()
}

func (m *Model) updateJSON() {
	wf := m.selectedWorkflow()
	if wf == nil {
		m.json.SetContent(m.styles.muted.Render("No workflow selected."))
		return
	}
	out, err := ui.FormatJSON(wf.WorkflowJSON, m.opts.NoColor)
	if err != nil {
		out = string(wf.WorkflowJSON)
	}
	m.json.SetContent(out)
	m.json.GotoTop()
}

func (m *Model) resize() {
	if !m.ready {
		return
	}
	right := m.width - chatPaneWidth - 4
	if right < 20 {
		right = 20
	}
	m.prompt.SetWidth(right - 2)

	helpHeight := 1
	if m.showHelp {
		helpHeight = 4
	}
	// prompt box, indicator, workflow list header and rows, JSON border, status, help
	jsonHeight := m.height - promptHeight - 2 - 1 - workflowRows - 2 - 2 - helpHeight - 2
	if jsonHeight < 3 {
		jsonHeight = 3
	}
	m.json.Width = right - 2
	m.json.Height = jsonHeight
}

func clamp(cursor, n int) int {
	if n == 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}
