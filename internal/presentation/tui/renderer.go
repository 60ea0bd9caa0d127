package tui

import (
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const defaultWidth = 80

// NewRenderer returns a function that renders markdown using glamour,
// wrapped to the terminal width of out.
func NewRenderer(out *os.File) func(string) (string, error) {
	width := defaultWidth
	if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
		width = w
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return func(markdown string) (string, error) { return markdown, nil }
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}

// Print writes markdown to out, styled when out is a terminal and verbatim
// otherwise so pipes and files get plain Markdown.
func Print(out *os.File, markdown string) error {
	if !term.IsTerminal(int(out.Fd())) {
		_, err := io.WriteString(out, markdown)
		return err
	}
	rendered, err := NewRenderer(out)(markdown)
	if err != nil {
		return err
	}
	_, err = io.WriteString(out, rendered)
	return err
}
