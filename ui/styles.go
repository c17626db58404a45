package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	dimColor     = lipgloss.Color("7")
	accentColor  = lipgloss.Color("12")
	successColor = lipgloss.Color("10")
	warningColor = lipgloss.Color("11")
	dangerColor  = lipgloss.Color("9")

	// User turn text
	UserStyle = lipgloss.NewStyle().
			Foreground(successColor)

	// Assistant turn text
	AssistantStyle = lipgloss.NewStyle().
			Foreground(accentColor)

	// Untagged text: turn markers and anything typed outside a turn
	DimStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	StatusStyle = lipgloss.NewStyle().
			Foreground(dimColor)

	ErrorStatusStyle = lipgloss.NewStyle().
				Foreground(dangerColor).
				Bold(true)

	PendingStyle = lipgloss.NewStyle().
			Foreground(warningColor)
)

// FormatFooter formats a footer string with alternating keys and descriptions.
// Usage: FormatFooter("Enter", "Send", "Alt+H", "Help")
func FormatFooter(parts ...string) string {
	descStyle := lipgloss.NewStyle().Foreground(accentColor).Bold(true)
	var result []string
	for i := 0; i < len(parts); i += 2 {
		if i+1 < len(parts) {
			result = append(result, parts[i]+" "+descStyle.Render(parts[i+1]))
		}
	}
	return strings.Join(result, "  ")
}
