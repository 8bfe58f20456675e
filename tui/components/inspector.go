package components

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/reelcut/pkg/timeutil"
	"github.com/user/reelcut/timeline"
	"github.com/user/reelcut/tui/layout"
	"github.com/user/reelcut/tui/styles"
)

// InspectorState describes the selected clip. Clip is nil when nothing is selected.
type InspectorState struct {
	Clip  *timeline.Clip
	Start float64
}

// Inspector renders the selected clip's trim window, audio and placement.
func Inspector(state InspectorState, width int) string {
	dim := lipgloss.NewStyle().Foreground(styles.Lavender)
	text := lipgloss.NewStyle().Foreground(styles.LightLavender)

	c := state.Clip
	if c == nil {
		return RenderInfoBox("Clip", []string{
			dim.Render(" No clip selected"),
			dim.Render(" [ ] to select, a to import"),
		}, width)
	}

	row := func(label, value string) string {
		return dim.Render(fmt.Sprintf(" %-7s", label)) + text.Render(value)
	}

	length := c.OutPoint - c.InPoint
	lines := []string{
		text.Bold(true).Render(" " + layout.Ellipsize(c.Filename, width-4)),
		row("track", string(c.Track)),
		row("at", timeutil.FormatClock(state.Start)+" - "+timeutil.FormatClock(state.Start+length)),
		row("in/out", timeutil.FormatClock(c.InPoint)+" / "+timeutil.FormatClock(c.OutPoint)),
		row("length", timeutil.FormatClock(length)),
	}
	if c.SourceOffset != nil {
		lines = append(lines, row("offset", timeutil.FormatClock(*c.SourceOffset)))
	}

	volume := fmt.Sprintf("%.0f%%", c.Volume)
	if c.Muted {
		volume += " muted"
	}
	lines = append(lines, row("volume", volume))

	if c.PipSettings != nil {
		p := c.PipSettings
		lines = append(lines, row("pip", fmt.Sprintf("%.2f,%.2f %.2fx%.2f a%.2f", p.X, p.Y, p.Width, p.Height, p.Opacity)))
	}
	if c.Width > 0 && c.Height > 0 {
		lines = append(lines, row("video", fmt.Sprintf("%dx%d %s", c.Width, c.Height, c.Codec)))
	}
	return RenderInfoBox("Clip", lines, width)
}
