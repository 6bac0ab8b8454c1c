package ui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// SyntaxStyles contains styles for syntax highlighting.
type SyntaxStyles struct {
	Key     lipgloss.Style
	String  lipgloss.Style
	Number  lipgloss.Style
	Boolean lipgloss.Style
	Null    lipgloss.Style
	Bracket lipgloss.Style
}

// NewSyntaxStyles creates syntax styles based on color mode.
func NewSyntaxStyles(noColor bool) SyntaxStyles {
	if noColor {
		plain := lipgloss.NewStyle()
		return SyntaxStyles{plain, plain, plain, plain, plain, plain}
	}

	return SyntaxStyles{
		Key:     lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true), // Blue
		String:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")),            // Green
		Number:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),            // Yellow
		Boolean: lipgloss.NewStyle().Foreground(lipgloss.Color("13")),            // Magenta
		Null:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),             // Gray
		Bracket: lipgloss.NewStyle().Foreground(lipgloss.Color("7")),             // Light gray
	}
}

// FormatJSON marshals data as indented JSON and highlights it unless
// noColor. json.RawMessage values are re-indented as is.
func FormatJSON(data any, noColor bool) (string, error) {
	var buf bytes.Buffer
	if raw, ok := data.(json.RawMessage); ok {
		if len(raw) == 0 {
			raw = json.RawMessage("null")
		}
		if err := json.Indent(&buf, raw, "", "  "); err != nil {
			return "", fmt.Errorf("failed to format JSON: %w", err)
		}
	} else {
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		buf.Write(out)
	}

	if noColor {
		return buf.String(), nil
	}
	return Highlight(buf.String(), NewSyntaxStyles(false)), nil
}

// Highlight colours already-formatted JSON. Strings followed by a colon are
// styled as keys.
func Highlight(src string, styles SyntaxStyles) string {
	var sb strings.Builder
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"':
			end := scanString(src, i)
			tok := src[i:end]
			if isKey(src, end) {
				sb.WriteString(styles.Key.Render(tok))
			} else {
				sb.WriteString(styles.String.Render(tok))
			}
			i = end
		case c == '-' || (c >= '0' && c <= '9'):
			end := i + 1
			for end < len(src) && strings.IndexByte("0123456789.eE+-", src[end]) >= 0 {
				end++
			}
			sb.WriteString(styles.Number.Render(src[i:end]))
			i = end
		case strings.HasPrefix(src[i:], "true"):
			sb.WriteString(styles.Boolean.Render("true"))
			i += 4
		case strings.HasPrefix(src[i:], "false"):
			sb.WriteString(styles.Boolean.Render("false"))
			i += 5
		case strings.HasPrefix(src[i:], "null"):
			sb.WriteString(styles.Null.Render("null"))
			i += 4
		case strings.IndexByte("{}[]", c) >= 0:
			sb.WriteString(styles.Bracket.Render(string(c)))
			i++
		default:
			sb.WriteByte(c)
			i++
		}
	}
	return sb.String()
}

// scanString returns the index just past the string literal starting at i.
func scanString(src string, i int) int {
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(src)
}

func isKey(src string, end int) bool {
	for j := end; j < len(src); j++ {
		switch src[j] {
		case ' ', '\t':
			continue
		case ':':
			return true
		default:
			return false
		}
	}
	return false
}
