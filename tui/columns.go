package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/reelcut/pkg/timeutil"
	"github.com/user/reelcut/timeline"
	"github.com/user/reelcut/tui/components"
	"github.com/user/reelcut/tui/layout"
	"github.com/user/reelcut/tui/styles"
)

// renderPanels lays out the inspector, playback and project panels above the timeline.
func (m *Model) renderPanels(height int) string {
	widths := layout.ComputePanelWidths(m.width)
	cols := []string{
		m.renderInspector(widths[0], height),
		m.renderPlayback(widths[1], height),
	}
	if len(widths) > 2 {
		cols = append(cols, m.renderProject(widths[2], height))
	}
	return layout.JoinColumns(cols, widths, height)
}

// renderInspector renders the selected clip card.
func (m *Model) renderInspector(width, height int) string {
	state := components.InspectorState{}
	if clip, ok := timeline.Find(m.snap.Clips, m.snap.SelectedClipID); ok {
		state.Clip = &clip
		state.Start = timeline.ClipStart(clip, m.snap.Clips)
	}
	return layout.Container{Width: width, Height: height}.Render(components.Inspector(state, width))
}

// renderPlayback renders the playback card and, below it, export progress.
func (m *Model) renderPlayback(width, height int) string {
	lines := []string{components.RenderMiniPlayer(m.statusState(), m.clipName(m.snap.MainClipID), m.clipName(m.snap.PipClipID), width)}
	if box := components.ExportProgress(m.export, width); box != "" {
		lines = append(lines, box)
	}
	return layout.Container{Width: width, Height: height}.Render(strings.Join(lines, "\n"))
}

// renderProject renders project totals and history state.
func (m *Model) renderProject(width, height int) string {
	text := lipgloss.NewStyle().Foreground(styles.LightLavender)
	dim := lipgloss.NewStyle().Foreground(styles.Lavender)
	row := func(label, value string) string {
		return dim.Render(fmt.Sprintf(" %-8s", label)) + text.Render(value)
	}

	name := "untitled"
	if m.snap.ProjectPath != "" {
		name = filepath.Base(m.snap.ProjectPath)
	}
	if m.snap.Dirty {
		name += " (modified)"
	}

	mainCount := len(timeline.TrackClips(timeline.TrackMain, m.snap.Clips))
	lines := []string{
		text.Bold(true).Render(" " + layout.Ellipsize(name, width-4)),
		row("clips", fmt.Sprintf("%d main, %d pip", mainCount, len(m.snap.Clips)-mainCount)),
		row("length", timeutil.FormatClock(m.snap.Duration)),
		row("overlay", timeutil.FormatClock(m.snap.PipDuration)),
		row("history", historyLabel(m.snap.CanUndo, m.snap.CanRedo)),
	}
	return layout.Container{Width: width, Height: height}.Render(components.RenderInfoBox("Project", lines, width))
}

func historyLabel(canUndo, canRedo bool) string {
	switch {
	case canUndo && canRedo:
		return "undo, redo"
	case canUndo:
		return "undo"
	case canRedo:
		return "redo"
	}
	return "-"
}

func (m *Model) clipName(id string) string {
	if c, ok := timeline.Find(m.snap.Clips, id); ok {
		return c.Filename
	}
	return ""
}

func (m *Model) statusState() components.StatusBarState {
	project := ""
	if m.snap.ProjectPath != "" {
		project = filepath.Base(m.snap.ProjectPath)
	}
	return components.StatusBarState{
		Playing:     m.snap.Playing,
		Playhead:    m.snap.Playhead,
		Duration:    m.snap.Duration,
		Zoom:        m.snap.Zoom,
		ActiveTrack: m.snap.ActiveTrack,
		Project:     project,
		Dirty:       m.snap.Dirty,
		Player:      m.hasPlayer,
	}
}
