package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/user/reelcut/tui/styles"
)

// HelpOverlay centres the rendered key help in a bordered panel.
func HelpOverlay(content string, width, height int) string {
	title := lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true).Render("Keybindings")
	footer := lipgloss.NewStyle().Foreground(styles.Lavender).Italic(true).Render("Press any key to close")

	panel := lipgloss.NewStyle().
		Background(styles.DarkPurple).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(styles.BrightPurple).
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", content, "", footer))

	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, panel)
}
