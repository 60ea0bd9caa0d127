package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ussdflow banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{`  _   _ ___ ___ ___    __ _`, "#34d399"},
		{` | | | / __/ __|   \  / _| |_____ __ __`, "#2dd4bf"},
		{` | |_| \__ \__ \ |) ||  _| / _ \ V  V /`, "#22d3ee"},
		{`  \___/|___/___/___/ |_| |_\___/\_/\_/`, "#38bdf8"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+strings.TrimSpace(version)).Faint())
	fmt.Fprintln(w)
}
