package repl

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Styles holds the decorations used around messages.
type Styles struct {
	User      lipgloss.Style
	Assistant lipgloss.Style
	Rule      lipgloss.Style
	Error     lipgloss.Style
}

func NewStyles(w io.Writer, profile termenv.Profile) Styles {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profile)
	banner := r.NewStyle().Foreground(lipgloss.Color("15")).Bold(true)
	return Styles{
		User:      banner.Background(lipgloss.Color("4")),
		Assistant: banner.Background(lipgloss.Color("2")),
		Rule:      r.NewStyle().Foreground(lipgloss.Color("13")).Bold(true),
		Error:     r.NewStyle().Foreground(lipgloss.Color("9")),
	}
}

func (s Styles) userBanner() string      { return s.User.Render("You:") }
func (s Styles) assistantBanner() string { return s.Assistant.Render("Assistant:") }

// rule is a dashed separator one column narrower than the terminal.
func (s Styles) rule(columns int) string {
	n := columns - 1
	if n < 1 {
		n = 1
	}
	return s.Rule.Render(strings.Repeat("-", n))
}
