package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/promptflow/promptflow/internal/ui"
	"github.com/promptflow/promptflow/pkg/sdk/workflows"
)

// workflowRows is how many workflows the list shows at once.
const workflowRows = 5

type styles struct {
	title    lipgloss.Style
	pane     lipgloss.Style
	active   lipgloss.Style
	cursor   lipgloss.Style
	selected lipgloss.Style
	muted    lipgloss.Style
	errorBar lipgloss.Style
	status   lipgloss.Style
	spinner  lipgloss.Style
}

func newStyles(noColor bool) styles {
	border := lipgloss.RoundedBorder()
	if noColor {
		plain := lipgloss.NewStyle()
		return styles{
			title:    plain.Bold(true),
			pane:     plain.Border(border),
			active:   plain.Border(lipgloss.ThickBorder()),
			cursor:   plain.Bold(true),
			selected: plain.Underline(true),
			muted:    plain,
			errorBar: plain.Bold(true),
			status:   plain,
			spinner:  plain,
		}
	}

	return styles{
		title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		pane:     lipgloss.NewStyle().Border(border).BorderForeground(lipgloss.Color("240")),
		active:   lipgloss.NewStyle().Border(border).BorderForeground(lipgloss.Color("12")),
		cursor:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("237")),
		selected: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		errorBar: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).Background(lipgloss.Color("9")).Padding(0, 1),
		status:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		spinner:  lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
	}
}

// View renders the dashboard.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.width < minWidth || m.height < minHeight {
		return fmt.Sprintf("Terminal too small\nMinimum: %dx%d\nCurrent: %dx%d\n\nPress q to quit",
			minWidth, minHeight, m.width, m.height)
	}

	var content strings.Builder

	if m.state.Err != "" {
		content.WriteString(m.styles.errorBar.Render(m.state.Err))
		content.WriteString("\n")
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, m.renderChats(), m.renderMain())
	content.WriteString(body)
	content.WriteString("\n")

	content.WriteString(m.renderStatusBar())
	content.WriteString("\n")

	if m.showHelp {
		content.WriteString(m.help.FullHelpView(m.keyMap.FullHelp()))
	} else {
		content.WriteString(m.help.ShortHelpView(m.keyMap.ShortHelp()))
	}

	return content.String()
}

func (m Model) paneStyle(p Pane) lipgloss.Style {
	if m.focus == p {
		return m.styles.active
	}
	return m.styles.pane
}

func (m Model) renderChats() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("Chats"))
	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render("[n] New Workflow Chat"))
	b.WriteString("\n\n")

	if len(m.state.Chats) == 0 {
		b.WriteString(m.styles.muted.Render("No chats yet"))
	}

	rows := m.height - 10
	if rows < 1 {
		rows = 1
	}
	start, end := window(len(m.state.Chats), m.chatCursor, rows)
	for i := start; i < end; i++ {
		c := m.state.Chats[i]
		label := ui.Truncate(c.Title, chatPaneWidth-4)
		if m.state.SelectedChatID != nil && *m.state.SelectedChatID == c.ID {
			label = m.styles.selected.Render("● " + label)
		} else {
			label = "  " + label
		}
		if i == m.chatCursor && m.focus == ChatsPane {
			label = m.styles.cursor.Render(label)
		}
		b.WriteString(label)
		b.WriteString("\n")
	}

	return m.paneStyle(ChatsPane).
		Width(chatPaneWidth).
		Height(m.height - 6).
		Render(strings.TrimRight(b.String(), "\n"))
}

func (m Model) renderMain() string {
	width := m.width - chatPaneWidth - 4

	var top strings.Builder
	top.WriteString(m.styles.title.Render("Prompt"))
	top.WriteString("  ")
	top.WriteString(m.styles.muted.Render(m.targetIndicator()))
	top.WriteString("\n")
	top.WriteString(m.prompt.View())
	promptBox := m.paneStyle(PromptPane).Width(width).Render(top.String())

	var list strings.Builder
	list.WriteString(m.styles.title.Render("Workflows"))
	list.WriteString("\n")
	if len(m.state.Workflows) == 0 {
		list.WriteString(m.styles.muted.Render("No workflows yet. Enter a prompt and press ctrl+s."))
		list.WriteString("\n")
	}
	start, end := window(len(m.state.Workflows), m.workflowCursor, workflowRows)
	for i := start; i < end; i++ {
		line := workflowLabel(m.state.Workflows[i], width-4)
		if i == m.workflowCursor && m.focus == WorkflowsPane {
			line = m.styles.cursor.Render(line)
		}
		list.WriteString(line)
		list.WriteString("\n")
	}
	list.WriteString(m.json.View())
	workflowBox := m.paneStyle(WorkflowsPane).Width(width).Render(strings.TrimRight(list.String(), "\n"))

	return lipgloss.JoinVertical(lipgloss.Left, promptBox, workflowBox)
}

// targetIndicator tells the user where the next generated workflow goes.
func (m Model) targetIndicator() string {
	if c := m.state.SelectedChat(); c != nil {
		return "Adding to chat: " + c.Title
	}
	return "Will create a new chat"
}

func (m Model) renderStatusBar() string {
	if m.pending > 0 || m.state.Loading {
		return m.spinner.View() + " Working..."
	}
	if m.status != "" {
		return m.styles.status.Render(m.status)
	}
	return m.styles.muted.Render(fmt.Sprintf("%d chats, %d workflows", len(m.state.Chats), len(m.state.Workflows)))
}

func (m Model) selectedWorkflow() *workflows.Workflow {
	if m.workflowCursor >= len(m.state.Workflows) {
		return nil
	}
	wf := m.state.Workflows[m.workflowCursor]
	return &wf
}

func workflowLabel(wf workflows.Workflow, width int) string {
	prefix := fmt.Sprintf("#%d ", wf.ID)
	if width < len(prefix)+2 {
		width = len(prefix) + 2
	}
	return prefix + ui.Truncate(wf.Prompt, width-len(prefix))
}

// window returns the [start, end) slice of n rows that keeps cursor visible
// within size rows.
func window(n, cursor, size int) (int, int) {
	if n <= size {
		return 0, n
	}
	start := cursor - size/2
	if start < 0 {
		start = 0
	}
	if start+size > n {
		start = n - size
	}
	return start, start + size
}
