package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (a AppView) renderHelpModal(width, height int) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(successColor).
		Render("chatbuf - Keyboard Shortcuts")

	blue := lipgloss.NewStyle().Foreground(accentColor)

	lines := []string{blue.Render("## Actions")}
	for _, b := range a.keys.bindings() {
		h := b.Help()
		lines = append(lines, fmt.Sprintf("• %-13s %s", h.Key, h.Desc))
	}
	lines = append(lines,
		"",
		blue.Render("## How it works"),
		"• "+UserStyle.Render("Green")+" text is sent as your turns",
		"• "+AssistantStyle.Render("Blue")+" text is sent as the assistant's turns",
		"• "+DimStyle.Render("Dim")+" text (the > markers) is never sent",
		"• Send continues the open conversation",
	)
	body := lipgloss.JoinVertical(lipgloss.Left, lines...)

	boxWidth := min(modalMaxWidth, width-4)
	footer := fmt.Sprintf("Press %s or Esc to close this help", a.keys.Help.Help().Key)

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center,
		modalFrame(title, body, footer, boxWidth))
}
