package tui

import (
	"context"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/promptflow/promptflow/internal/dashboard"
)

// writeClipboard is swapped in tests.
var writeClipboard = clipboard.WriteAll

type loadedMsg struct {
	err error
}

type chatCreatedMsg struct {
	err error
}

type generatedMsg struct {
	err error
}

type copiedMsg struct {
	err error
}

func loadDashboard(ctx context.Context, d *dashboard.Dashboard) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: d.Load(ctx)}
	}
}

func createChat(ctx context.Context, d *dashboard.Dashboard) tea.Cmd {
	return func() tea.Msg {
		_, err := d.NewChat(ctx)
		return chatCreatedMsg{err: err}
	}
}

func generateWorkflow(ctx context.Context, d *dashboard.Dashboard) tea.Cmd {
	return func() tea.Msg {
		_, err := d.Generate(ctx)
		return generatedMsg{err: err}
	}
}

func copyToClipboard(text string) tea.Cmd {
	return func() tea.Msg {
		return copiedMsg{err: writeClipboard(text)}
	}
}
