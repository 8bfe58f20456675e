package components

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/user/reelcut/pkg/timeutil"
	"github.com/user/reelcut/tui/layout"
	"github.com/user/reelcut/tui/styles"
)

// RenderMiniPlayer renders the playback card: transport state, playhead and
// the clip each track is showing.
func RenderMiniPlayer(state StatusBarState, mainClip, pipClip string, width int) string {
	text := lipgloss.NewStyle().Foreground(styles.LightLavender)
	dim := lipgloss.NewStyle().Foreground(styles.Lavender)

	playState := " ⏸ Paused"
	if state.Playing {
		playState = " ▶ Playing"
	}
	if mainClip == "" {
		mainClip = "-"
	}
	if pipClip == "" {
		pipClip = "-"
	}

	inner := width - 2
	lines := []string{
		text.Render(playState),
		text.Render(" " + timeutil.FormatClock(state.Playhead) + " / " + timeutil.FormatClock(state.Duration)),
		dim.Render(" main ") + text.Render(layout.Ellipsize(mainClip, inner-7)),
		dim.Render(" pip  ") + text.Render(layout.Ellipsize(pipClip, inner-7)),
	}
	if !state.Player {
		lines = append(lines, styles.Warning.Render(" ! No player attached"))
	}
	return RenderInfoBox("Playback", lines, width)
}
