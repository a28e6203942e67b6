package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	colorPink    lipgloss.Color = "#f5c2e7"
	colorBlue    lipgloss.Color = "#89b4fa"
	colorGreen   lipgloss.Color = "#a6e3a1"
	colorYellow  lipgloss.Color = "#f9e2af"
	colorRed     lipgloss.Color = "#f38ba8"
	colorOverlay lipgloss.Color = "#6c7086"
)

type theme struct {
	component lipgloss.Style
	element   lipgloss.Style
	text      lipgloss.Style
	key       lipgloss.Style
	pending   lipgloss.Style
	guide     lipgloss.Style
	ok        lipgloss.Style
}

// newTheme binds the styles to w so color detection follows the writer.
func newTheme(w io.Writer, plain bool) theme {
	if plain {
		s := lipgloss.NewStyle()
		return theme{s, s, s, s, s, s, s}
	}
	r := lipgloss.NewRenderer(w)
	return theme{
		component: r.NewStyle().Foreground(colorPink).Bold(true),
		element:   r.NewStyle().Foreground(colorBlue),
		text:      r.NewStyle().Foreground(colorOverlay),
		key:       r.NewStyle().Foreground(colorYellow),
		pending:   r.NewStyle().Foreground(colorRed).Italic(true),
		guide:     r.NewStyle().Foreground(colorOverlay),
		ok:        r.NewStyle().Foreground(colorGreen),
	}
}

func (t theme) success(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", t.ok.Render("✓"), fmt.Sprintf(format, args...))
}

func info(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "  %s\n", fmt.Sprintf(format, args...))
}

func (t theme) printBanner(w io.Writer) {
	fmt.Fprintln(w, t.component.Render(banner))
}
