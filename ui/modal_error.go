package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const modalMaxWidth = 60

// ErrorModal shows an error that ends the program, such as a missing API key
// or an unreadable config file. Enter, Esc or Ctrl+C quits.
type ErrorModal struct {
	title   string
	message string
	width   int
	height  int
}

func NewErrorModal(title, message string) ErrorModal {
	return ErrorModal{
		title:   title,
		message: message,
	}
}

func (m ErrorModal) Init() tea.Cmd {
	return nil
}

func (m ErrorModal) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.String() {
		case "enter", "esc", "ctrl+c":
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m ErrorModal) View() string {
	if m.width < 20 || m.height < 10 {
		return "Terminal too small"
	}

	width := min(modalMaxWidth, m.width-10)
	title := lipgloss.NewStyle().Bold(true).Foreground(dangerColor).Render(m.title)

	body := lipgloss.NewStyle().
		Width(width).
		Align(lipgloss.Center).
		Render(wrapText(m.message, width))

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center,
		modalFrame(title, body, "Press Enter to quit", width))
}

// modalFrame stacks a centred title, the body and a dim footer, with rules
// between the sections and no outer border so the terminal background shows
// through.
func modalFrame(title, body, footer string, width int) string {
	rule := lipgloss.NewStyle().Foreground(dimColor).Render(strings.Repeat("─", width))
	center := lipgloss.NewStyle().Width(width).Align(lipgloss.Center)

	return lipgloss.JoinVertical(lipgloss.Left,
		center.Render(title),
		rule,
		"",
		body,
		"",
		rule,
		center.Inherit(DimStyle).Render(footer),
	)
}
