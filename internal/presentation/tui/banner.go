package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

var bannerLines = []struct {
	text  string
	color string
}{
	{" _                  _ ", "#818cf8"},
	{"| |_ ___ _ __   __| |", "#a78bfa"},
	{"| __/ _ \\ '_ \\ / _` |", "#c084fc"},
	{"| ||  __/ | | | (_| |", "#e879f9"},
	{" \\__\\___|_| |_|\\__,_|", "#f472b6"},
}

// Banner renders the tend banner with the given color profile.
func Banner(p termenv.Profile, version string) string {
	var b strings.Builder
	b.WriteString("\n")
	for _, l := range bannerLines {
		b.WriteString(p.String(l.text).Foreground(p.Color(l.color)).String())
		b.WriteString("\n")
	}
	if v := strings.TrimSpace(version); v != "" {
		b.WriteString(p.String("  v" + v).Faint().String())
		b.WriteString("\n")
	}
	b.WriteString("\n")
	return b.String()
}

// PrintBanner writes the banner to w using the color profile w supports.
func PrintBanner(w io.Writer, version string) {
	out := termenv.NewOutput(w)
	fmt.Fprint(w, Banner(out.Profile, version))
}
