package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/reelcut/pkg/timeutil"
	"github.com/user/reelcut/tui/layout"
	"github.com/user/reelcut/tui/styles"
)

// ExportProgressState holds the state for the export progress display.
type ExportProgressState struct {
	Active     bool
	Percentage float64
	Seconds    float64
	Speed      string
	Output     string
	Done       bool
	Err        error
}

// ExportProgress renders a bordered box with a progress bar, the rendered
// position and the output file. It renders nothing when no export ran.
func ExportProgress(state ExportProgressState, width int) string {
	if !state.Active || width < 10 {
		return ""
	}

	green := lipgloss.NewStyle().Foreground(styles.Green)
	amber := lipgloss.NewStyle().Foreground(styles.Amber)
	text := lipgloss.NewStyle().Foreground(styles.LightLavender)

	innerW := width - 4
	if innerW < 6 {
		innerW = 6
	}

	pct := state.Percentage
	if state.Done {
		pct = 100
	}
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}

	// " XXX%" label takes five cells plus a leading space
	barWidth := innerW - 6
	if barWidth < 4 {
		barWidth = 4
	}
	filled := int(float64(barWidth) * pct / 100)
	bar := green.Render(strings.Repeat("█", filled)) + amber.Render(strings.Repeat("░", barWidth-filled))

	lines := []string{" " + bar + text.Render(fmt.Sprintf(" %3.0f%%", pct))}

	switch {
	case state.Err != nil:
		lines = append(lines, " "+styles.Warning.Render(layout.Ellipsize(state.Err.Error(), innerW)))
	case state.Done:
		lines = append(lines, " "+green.Render("Export complete"))
	default:
		status := " " + timeutil.FormatClock(state.Seconds)
		if state.Speed != "" {
			status += "  " + state.Speed
		}
		lines = append(lines, text.Render(status))
	}
	if state.Output != "" {
		lines = append(lines, " "+text.Render(layout.Ellipsize(state.Output, innerW)))
	}
	return RenderInfoBox("Export", lines, width)
}
