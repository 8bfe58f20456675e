package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/reelcut/pkg/timeutil"
	"github.com/user/reelcut/timeline"
	"github.com/user/reelcut/tui/styles"
)

// StatusBarState holds what the top status bar shows.
type StatusBarState struct {
	Playing  bool
	Playhead float64
	Duration float64
	// Zoom is the timeline zoom factor.
	Zoom        float64
	ActiveTrack timeline.Track
	// Project is the project file name; empty for an unsaved project.
	Project string
	Dirty   bool
	// Player reports whether a media player is attached.
	Player bool
}

// StatusBar renders the full-width status bar:
// play state and playhead on the left, track, zoom and project on the right.
func StatusBar(state StatusBarState, width int) string {
	playIcon := "⏸"
	if state.Playing {
		playIcon = "▶"
	}
	left := fmt.Sprintf(" %s %s / %s", playIcon, timeutil.FormatClock(state.Playhead), timeutil.FormatClock(state.Duration))

	project := state.Project
	if project == "" {
		project = "untitled"
	}
	if state.Dirty {
		project += "*"
	}
	right := fmt.Sprintf("%s  %s  %s ", state.ActiveTrack, formatZoom(state.Zoom), project)
	if !state.Player {
		right = "no player  " + right
	}

	pad := width - lipgloss.Width(left) - lipgloss.Width(right)
	if pad < 1 {
		pad = 1
	}

	return lipgloss.NewStyle().
		Background(styles.DarkPurple).
		Foreground(styles.LightLavender).
		Bold(true).
		Width(width).
		Render(left + strings.Repeat(" ", pad) + right)
}

// formatZoom formats the zoom factor, e.g. 0.25x or 2x.
func formatZoom(z float64) string {
	if z <= 0 {
		z = 1
	}
	return fmt.Sprintf("%gx", z)
}
