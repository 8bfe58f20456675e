package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/reelcut/tui/styles"
)

// Container wraps content into an exact Width x Height bounding box.
// Overflowing content is cut and the last visible line becomes a scroll hint.
type Container struct {
	Width  int
	Height int
}

// Render returns the content constrained to exactly Width columns and Height lines.
func (c Container) Render(content string) string {
	if c.Height <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")

	if len(lines) > c.Height {
		lines = lines[:c.Height]
		lines[c.Height-1] = lipgloss.NewStyle().Foreground(styles.Purple).Render("↓ more")
	}
	lines = NormalizeLines(lines, c.Height)
	for i, line := range lines {
		lines[i] = PadToWidth(line, c.Width)
	}
	return strings.Join(lines, "\n")
}
