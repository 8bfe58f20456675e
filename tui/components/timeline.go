package components

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/user/reelcut/pkg/timeutil"
	"github.com/user/reelcut/timeline"
	"github.com/user/reelcut/tui/styles"
)

// TimelineState is what the timeline panel draws.
type TimelineState struct {
	Clips       []timeline.Clip
	SelectedID  string
	ActiveTrack timeline.Track
	Playhead    float64
	// CellsPerSecond is the horizontal scale; the editor zoom factor maps to it 1:1.
	CellsPerSecond float64
}

const laneLabelWidth = 6

// minLabelGap is the narrowest ruler spacing, in cells, that still fits an M:SS label.
const minLabelGap = 8

var rulerSteps = []float64{1, 2, 5, 10, 15, 30, 60, 120, 300, 600, 1800, 3600}

type cellKind int

const (
	cellEmpty cellKind = iota
	cellClip
	cellSelected
)

// Timeline renders the two-lane timeline in a bordered box:
//
//	╭─ Timeline ────────────╮
//	│       0:00      0:05  │  ruler
//	│ ▸MAIN [a.mp4   ]{b  } │  main lane, active track marked
//	│  PIP  [c  ]·········· │  pip lane
//	│          ▲            │  playhead
//	╰───────────────────────╯
//
// The view pages horizontally so the playhead is always visible. The selected
// clip is drawn with braces.
func Timeline(state TimelineState, width int) string {
	if width < 20 {
		return ""
	}
	scale := state.CellsPerSecond
	if scale <= 0 {
		scale = 1
	}
	laneW := width - 4 - laneLabelWidth

	playCol := int(math.Round(state.Playhead * scale))
	offset := (playCol / laneW) * laneW

	blank := strings.Repeat(" ", laneLabelWidth)
	lines := []string{" " + blank + ruler(offset, laneW, scale) + " "}
	for _, track := range timeline.Tracks {
		lines = append(lines, " "+laneLabel(track, track == state.ActiveTrack)+lane(track, state, offset, laneW, scale)+" ")
	}
	lines = append(lines, " "+blank+playheadRow(playCol-offset, laneW)+" ")

	return RenderInfoBox("Timeline", lines, width)
}

func ruler(offset, laneW int, scale float64) string {
	step := rulerSteps[len(rulerSteps)-1]
	for _, s := range rulerSteps {
		if s*scale >= minLabelGap {
			step = s
			break
		}
	}

	cells := []rune(strings.Repeat(" ", laneW))
	next := 0
	for t := math.Ceil(float64(offset)/scale/step) * step; ; t += step {
		col := int(math.Round(t*scale)) - offset
		if col >= laneW {
			break
		}
		label := []rune(timeutil.FormatShort(t))
		if col < next || col+len(label) > laneW {
			continue
		}
		copy(cells[col:], label)
		next = col + len(label) + 1
	}
	return styles.SecondaryText.Render(string(cells))
}

func laneLabel(track timeline.Track, active bool) string {
	prefix := " "
	style := styles.SecondaryText
	if active {
		prefix = "▸"
		style = lipgloss.NewStyle().Foreground(styles.Pink).Bold(true)
	}
	return style.Render(padRight(prefix+strings.ToUpper(string(track)), laneLabelWidth))
}

func lane(track timeline.Track, state TimelineState, offset, laneW int, scale float64) string {
	cells := make([]rune, laneW)
	kinds := make([]cellKind, laneW)
	for i := range cells {
		cells[i] = '·'
	}

	for _, span := range timeline.Spans(track, state.Clips) {
		start := int(math.Round(span.Start*scale)) - offset
		end := int(math.Round(span.End*scale)) - offset
		kind := cellClip
		if span.Clip.ID == state.SelectedID {
			kind = cellSelected
		}
		for i, r := range clipBlock(span.Clip.Filename, end-start, kind == cellSelected) {
			if col := start + i; col >= 0 && col < laneW {
				cells[col] = r
				kinds[col] = kind
			}
		}
	}

	clipStyle := styles.MainClip
	if track == timeline.TrackPip {
		clipStyle = styles.PipClip
	}
	var b strings.Builder
	for i := 0; i < laneW; {
		j := i
		for j < laneW && kinds[j] == kinds[i] {
			j++
		}
		run := string(cells[i:j])
		switch kinds[i] {
		case cellEmpty:
			b.WriteString(styles.EmptyLane.Render(run))
		case cellClip:
			b.WriteString(clipStyle.Render(run))
		case cellSelected:
			b.WriteString(styles.Highlight.Render(run))
		}
		i = j
	}
	return b.String()
}

// clipBlock draws a clip w cells wide with its name inside the brackets.
func clipBlock(name string, w int, selected bool) []rune {
	if w <= 0 {
		return nil
	}
	if w == 1 {
		return []rune{'|'}
	}
	left, right := '[', ']'
	if selected {
		left, right = '{', '}'
	}
	label := []rune(name)
	if len(label) > w-2 {
		label = label[:w-2]
	}
	block := make([]rune, 0, w)
	block = append(block, left)
	block = append(block, label...)
	for len(block) < w-1 {
		block = append(block, ' ')
	}
	return append(block, right)
}

func playheadRow(col, laneW int) string {
	if col < 0 || col >= laneW {
		return strings.Repeat(" ", laneW)
	}
	return strings.Repeat(" ", col) + styles.Playhead.Render("▲") + strings.Repeat(" ", laneW-col-1)
}
