package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// PrintBanner writes the formchat banner and version to w.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	p := out.ColorProfile()

	lines := []struct {
		text  string
		color string
	}{
		{"   __                            _           _   ", "#34d399"},
		{"  / _| ___  _ __ _ __ ___   ___| |__   __ _| |_ ", "#2dd4bf"},
		{" | |_ / _ \\| '__| '_ ` _ \\ / __| '_ \\ / _` | __|", "#22d3ee"},
		{" |  _| (_) | |  | | | | | | (__| | | | (_| | |_ ", "#38bdf8"},
		{" |_|  \\___/|_|  |_| |_| |_|\\___|_| |_|\\__,_|\\__|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(p.Color(l.color)))
	}
	if v := strings.TrimSpace(version); v != "" {
		fmt.Fprintln(w, out.String("  v"+v).Faint())
	}
	fmt.Fprintln(w)
}
