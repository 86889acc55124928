package tui

import (
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// DefaultStyle is used when stdout is not a terminal and the background
// cannot be detected.
const DefaultStyle = "dark"

// NewRenderer returns a function that renders markdown using glamour.
// On a terminal the style follows its background; otherwise DefaultStyle
// applies.
func NewRenderer() func(string) (string, error) {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return newRenderer(glamour.WithAutoStyle())
	}
	return NewStyledRenderer(DefaultStyle)
}

// NewStyledRenderer renders with one of glamour's standard styles, such as
// "dark" or "light", using the colors stdout supports. An unknown style
// passes the markdown through unchanged.
func NewStyledRenderer(style string) func(string) (string, error) {
	return newRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithColorProfile(termenv.ColorProfile()),
	)
}

func newRenderer(opts ...glamour.TermRendererOption) func(string) (string, error) {
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return func(markdown string) (string, error) {
			return markdown, nil
		}
	}

	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}
}
