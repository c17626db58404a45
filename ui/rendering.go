package ui

import (
	"regexp"
	"strings"

	markdown "github.com/MichaelMure/go-term-markdown"
	"github.com/charmbracelet/lipgloss"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"

	"chatbuf/buffer"
	"chatbuf/config"
)

const emptyConversationHint = "Type a prompt and press Enter to start a conversation."

var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	ansiRegex       = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

// renderConversation draws the buffer segment by segment, colouring each
// turn by its role. Untagged text (the turn markers) is dimmed.
func renderConversation(b *buffer.Buffer, width int, renderMarkdown bool) string {
	if b == nil || b.Len() == 0 {
		return DimStyle.Render(emptyConversationHint)
	}

	var out strings.Builder
	for _, seg := range b.Segments() {
		switch seg.Role {
		case buffer.RoleUser:
			out.WriteString(styleLines(UserStyle, wrapText(seg.Text, width)))
		case buffer.RoleAssistant:
			if renderMarkdown {
				out.WriteString(renderMarkdownText(seg.Text, width))
			} else {
				out.WriteString(styleLines(AssistantStyle, wrapText(seg.Text, width)))
			}
		default:
			out.WriteString(styleLines(DimStyle, wrapText(seg.Text, width)))
		}
	}
	return out.String()
}

// styleLines renders each line on its own so lipgloss never pads a
// multi-line block out to its widest line.
func styleLines(style lipgloss.Style, text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}

func wrapText(text string, width int) string {
	if width <= 0 {
		return text
	}
	return runewidth.Wrap(text, width)
}

// renderMarkdownText renders an assistant reply with go-term-markdown. The
// renderer's trailing blank lines are dropped so the layout of the buffer
// around the reply is preserved.
func renderMarkdownText(content string, width int) string {
	if strings.TrimSpace(content) == "" {
		return content
	}
	lineWidth := width - 4
	if lineWidth < 20 {
		lineWidth = 20
	}

	content = mdLinkRegex.ReplaceAllString(content, "$2")

	// Autolink off: terminals handle URL detection themselves
	p := parser.NewWithExtensions(markdown.Extensions() &^ parser.Autolink)
	r := markdown.NewRenderer(lineWidth, 0)
	rendered := string(gomarkdown.Render(p.Parse([]byte(content)), r))

	// Blue background + italic for inline code reads poorly on most themes
	rendered = inlineCodeRegex.ReplaceAllString(rendered, "\x1b[31m$1\x1b[0m")

	rendered = strings.TrimRight(rendered, "\n")
	config.DebugLog.Debug().Int("in", len(content)).Int("out", len(rendered)).Msg("markdown rendered")
	return rendered
}

func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}

// padRight fills s with spaces up to width terminal cells, truncating when
// it is too long.
func padRight(s string, width int) string {
	plain := stripANSI(s)
	w := runewidth.StringWidth(plain)
	if w > width {
		return runewidth.Truncate(plain, width, "…")
	}
	return s + strings.Repeat(" ", width-w)
}
