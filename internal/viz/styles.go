package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// styles are the lipgloss styles derived from a Theme.
type styles struct {
	curve, cobweb, axes, cloud lipgloss.Style

	panel   lipgloss.Style
	header  lipgloss.Style
	label   lipgloss.Style
	value   lipgloss.Style
	accent  lipgloss.Style
	muted   lipgloss.Style
	errText lipgloss.Style
	keyHint lipgloss.Style
}

func newStyles(t Theme) styles {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	return styles{
		curve:  fg(t.Curve),
		cobweb: fg(t.Cobweb).Bold(true),
		axes:   fg(t.Axes),
		cloud:  fg(t.Cloud),

		panel: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(t.Muted).
			Padding(0, 2).
			Width(44),
		header:  fg(t.Accent).Bold(true).MarginBottom(1),
		label:   fg(t.Muted).Width(12),
		value:   fg(t.Text),
		accent:  fg(t.Accent).Bold(true),
		muted:   fg(t.Muted),
		errText: fg(t.Error).Bold(true),
		keyHint: fg(t.Muted).
			Italic(true).
			MarginTop(1),
	}
}

func (s styles) row(label, value string) string {
	return s.label.Render(label) + s.value.Render(value) + "\n"
}

// tabs renders the panel selector with the active tab highlighted.
func (s styles) tabs(names []string, active int) string {
	parts := make([]string, len(names))
	for i, n := range names {
		if i == active {
			parts[i] = s.accent.Render("[" + n + "]")
		} else {
			parts[i] = s.muted.Render(" " + n + " ")
		}
	}
	return strings.Join(parts, " ")
}

// separator is a muted horizontal rule.
func (s styles) separator(width int) string {
	if width < 7 {
		width = 7
	}
	mid := width / 2
	return s.muted.Render(strings.Repeat("─", mid-3) + " ◆ " + strings.Repeat("─", width-mid-3))
}
