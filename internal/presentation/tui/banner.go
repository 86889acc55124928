package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the lookahead banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{" _             _               _                _", "#818cf8"},
		{"| | ___   ___ | | ____ _| |__   ___  __ _  __| |", "#a78bfa"},
		{"| |/ _ \\ / _ \\| |/ / _` | '_ \\ / _ \\/ _` |/ _` |", "#c084fc"},
		{"| | (_) | (_) |   < (_| | | | |  __/ (_| | (_| |", "#e879f9"},
		{"|_|\\___/ \\___/|_|\\_\\__,_|_| |_|\\___|\\__,_|\\__,_|", "#f472b6"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
