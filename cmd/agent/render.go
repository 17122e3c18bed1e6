package main

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/petasbytes/dora-assist/memory"
)

var (
	userLabel      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Render("You")
	assistantLabel = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("11")).Render("Claude")
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Italic(true)
	titleStyle     = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.Color("15")).Background(lipgloss.Color("62"))
)

// newRenderer returns a markdown renderer wrapped to width. A nil renderer
// means assistant text is shown as-is.
func newRenderer(width int) *glamour.TermRenderer {
	if width < 20 {
		width = 80
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width-4),
	)
	if err != nil {
		return nil
	}
	return r
}

func renderMarkdown(r *glamour.TermRenderer, text string) string {
	if r == nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

// renderTranscript lays out the conversation for the viewport.
func renderTranscript(r *glamour.TermRenderer, msgs []memory.Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		if m.Role == memory.RoleUser {
			b.WriteString(userLabel + ": " + m.Text)
			continue
		}
		b.WriteString(assistantLabel + ":\n" + renderMarkdown(r, m.Text))
	}
	return b.String()
}
