package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Spinner shows activity on stderr while a long request runs. It draws
// nothing when stderr is not a terminal.
type Spinner struct {
	message  string
	frames   []string
	interval time.Duration
	writer   io.Writer
	noColor  bool
	enabled  bool

	mu     sync.Mutex
	stopCh chan struct{}
	done   chan struct{}
}

// NewSpinner creates a new progress spinner.
func NewSpinner(message string, noColor bool) *Spinner {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	if noColor {
		frames = []string{"|", "/", "-", "\\"}
	}

	return &Spinner{
		message:  message,
		frames:   frames,
		interval: 100 * time.Millisecond,
		writer:   os.Stderr,
		noColor:  noColor,
		enabled:  term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Start starts the spinner animation.
func (s *Spinner) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled || s.stopCh != nil {
		return
	}

	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	go s.run(s.stopCh, s.done)
}

// Stop stops the spinner and clears the line. It is safe to call more than
// once.
func (s *Spinner) Stop() {
	s.mu.Lock()
	stopCh, done := s.stopCh, s.done
	s.stopCh, s.done = nil, nil
	s.mu.Unlock()

	if stopCh == nil {
		return
	}
	close(stopCh)
	<-done

	fmt.Fprintf(s.writer, "\r%s\r", strings.Repeat(" ", len([]rune(s.message))+2))
}

func (s *Spinner) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	style := lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			frame := s.frames[i%len(s.frames)]
			if !s.noColor {
				frame = style.Render(frame)
			}
			fmt.Fprintf(s.writer, "\r%s %s", frame, s.message)
		}
	}
}

// IsPiped reports whether stdout is not a terminal.
func IsPiped() bool {
	return !term.IsTerminal(int(os.Stdout.Fd()))
}

// TerminalWidth returns the width of stdout, or 80 when unknown.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
