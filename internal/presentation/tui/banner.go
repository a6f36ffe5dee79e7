package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	// Dark to light grey, like an image sliding out from behind the occluder
	lines := []struct {
		text  string
		color string
	}{
		{`   ___   ___ ___| |_   _ ___(_) ___  _ __  `, "#374151"},
		{`  / _ \ / __/ __| | | | / __| |/ _ \| '_ \ `, "#4b5563"},
		{` | (_) | (_| (__| | |_| \__ \ | (_) | | | |`, "#6b7280"},
		{`  \___/ \___\___|_|\__,_|___/_|\___/|_| |_|`, "#9ca3af"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	fmt.Fprintln(w, out.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
