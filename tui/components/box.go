// Package components renders the panels of the editor TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/reelcut/tui/styles"
)

// RenderInfoBox renders a bordered box with a tab-style header:
//
//	╭─ Title ──────╮
//	│content       │
//	╰──────────────╯
//
// Content lines are rendered as-is; the caller styles them.
func RenderInfoBox(title string, contentLines []string, width int) string {
	if width < 4 {
		return ""
	}
	inner := width - 2

	border := lipgloss.NewStyle().Foreground(styles.Purple)
	header := lipgloss.NewStyle().Foreground(styles.Pink).Bold(true).Render(" " + title + " ")

	fill := inner - 1 - lipgloss.Width(header)
	if fill < 0 {
		fill = 0
	}

	lines := make([]string, 0, len(contentLines)+2)
	lines = append(lines, border.Render("╭─")+header+border.Render(strings.Repeat("─", fill)+"╮"))
	for _, line := range contentLines {
		lines = append(lines, border.Render("│")+padRight(line, inner)+border.Render("│"))
	}
	lines = append(lines, border.Render("╰"+strings.Repeat("─", inner)+"╯"))
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	pad := width - lipgloss.Width(s)
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}
