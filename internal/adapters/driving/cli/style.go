package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	okStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	failStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	dimStyle   = lipgloss.NewStyle().Faint(true)
	labelStyle = lipgloss.NewStyle().Bold(true)
)

// painter styles text only when writing to a terminal.
type painter struct {
	color bool
}

func painterFor(w io.Writer) painter {
	f, ok := w.(*os.File)
	return painter{color: ok && term.IsTerminal(int(f.Fd()))}
}

func (p painter) render(s lipgloss.Style, text string) string {
	if !p.color {
		return text
	}
	return s.Render(text)
}

func (p painter) ok(text string) string    { return p.render(okStyle, text) }
func (p painter) fail(text string) string  { return p.render(failStyle, text) }
func (p painter) warn(text string) string  { return p.render(warnStyle, text) }
func (p painter) dim(text string) string   { return p.render(dimStyle, text) }
func (p painter) label(text string) string { return p.render(labelStyle, text) }
