package layout

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/reelcut/tui/styles"
)

// Responsive layout constants.
const (
	MinTerminalWidth    = 60  // narrower terminals get a resize hint instead of the editor
	ProjectPanelMinTerm = 100 // below this width the project panel is hidden
)

// ComputePanelWidths splits the terminal width between the panels above the
// timeline: inspector, playback and, on wide terminals, project. Separators
// take one column each.
func ComputePanelWidths(termWidth int) []int {
	if termWidth >= ProjectPanelMinTerm {
		usable := termWidth - 2
		side := usable / 3
		return []int{side, side, usable - 2*side}
	}
	usable := termWidth - 1
	left := usable / 2
	return []int{left, usable - left}
}

// JoinColumns joins pre-rendered column strings side by side with purple border separators.
// Each column is normalized to the given height and padded to its width.
func JoinColumns(columns []string, widths []int, height int) string {
	sep := lipgloss.NewStyle().Foreground(styles.Purple).Render("│")

	colLines := make([][]string, len(columns))
	for i, col := range columns {
		colLines[i] = NormalizeLines(strings.Split(col, "\n"), height)
	}

	rows := make([]string, 0, height)
	for row := 0; row < height; row++ {
		parts := make([]string, len(colLines))
		for i, lines := range colLines {
			parts[i] = PadToWidth(lines[row], widths[i])
		}
		rows = append(rows, strings.Join(parts, sep))
	}
	return strings.Join(rows, "\n")
}
