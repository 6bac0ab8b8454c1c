// Package ui renders command output as tables, highlighted JSON or YAML.
package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// Format selects how commands print results.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// ParseFormat validates an --output value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatTable:
		return FormatTable, nil
	case FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (use table, json or yaml)", s)
	}
}

// Colors returns true if colored output should be enabled.
// Respects NO_COLOR env var and --no-color flag.
func Colors(noColorFlag bool) bool {
	if noColorFlag {
		return false
	}
	return os.Getenv("NO_COLOR") == ""
}

// WriteJSON writes v as indented JSON, highlighted unless noColor.
func WriteJSON(w io.Writer, v any, noColor bool) error {
	out, err := FormatJSON(v, noColor)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, strings.TrimRight(out, "\n"))
	return err
}

// WriteYAML writes v as YAML. Values are normalised through their JSON
// encoding first so raw JSON documents and custom JSON marshalers render as
// structured YAML instead of byte lists.
func WriteYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return enc.Close()
}

// Success renders a green check followed by msg.
func Success(msg string, noColor bool) string {
	if noColor {
		return "[OK] " + msg
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true).Render("✓") + " " + msg
}

// Warning renders a yellow marker followed by msg.
func Warning(msg string, noColor bool) string {
	if noColor {
		return "[WARN] " + msg
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true).Render("!") + " " + msg
}

// Truncate shortens s to at most max runes, ending with an ellipsis.
func Truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max < 2 {
		return string(r[:max])
	}
	return string(r[:max-1]) + "…"
}
