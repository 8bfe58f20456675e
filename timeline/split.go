package timeline

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

var (
	// ErrSplitOutOfRange is returned when a split point does not fall strictly
	// inside the active window with at least one frame on each side.
	ErrSplitOutOfRange = errors.New("timeline: split point outside active window")
	// ErrNoClipAtPlayhead is returned when there is nothing under the playhead to split.
	ErrNoClipAtPlayhead = errors.New("timeline: no clip at playhead")
)

// SplitClipAtTime cuts clip in two at a timeline position. Both halves
// become clean clips whose SourceOffset keeps pointing into the original
// file, and they replace the original at the same index. The returned id is
// the first half's.
func SplitClipAtTime(clip Clip, position float64, clips []Clip) ([]Clip, string, error) {
	idx := IndexOf(clips, clip.ID)
	if idx < 0 {
		return clips, "", ErrClipNotFound
	}
	clip = clips[idx]

	local := position - ClipStart(clip, clips)
	abs := clip.InPoint + local

	// Both halves need at least one frame.
	if abs-clip.InPoint < MinDuration-epsilon || clip.OutPoint-abs < MinDuration-epsilon {
		return clips, "", ErrSplitOutOfRange
	}

	base := clip.BaseOffset()

	first := clip.clone()
	first.ID = uuid.NewString()
	first.Filename = partName(clip.Filename, 1)
	first.InPoint = 0
	first.Duration = abs - clip.InPoint
	first.OutPoint = first.Duration
	first.SourceOffset = float64Ptr(base + clip.InPoint)

	second := clip.clone()
	second.ID = uuid.NewString()
	second.Filename = partName(clip.Filename, 2)
	second.InPoint = 0
	second.Duration = clip.OutPoint - abs
	second.OutPoint = second.Duration
	second.SourceOffset = float64Ptr(base + abs)

	out := make([]Clip, 0, len(clips)+1)
	out = append(out, Clone(clips[:idx])...)
	out = append(out, first, second)
	out = append(out, Clone(clips[idx+1:])...)
	return out, first.ID, nil
}

// SplitAtPlayhead picks the clip to cut at playhead and splits it. The
// selected clip wins when it spans the playhead; otherwise the clip active on
// the preferred track, then on the main track.
func SplitAtPlayhead(clips []Clip, selectedID string, preferred Track, playhead float64) ([]Clip, string, error) {
	if sel, ok := Find(clips, selectedID); ok {
		start := ClipStart(sel, clips)
		if playhead >= start && playhead < start+sel.ActiveDuration() {
			return SplitClipAtTime(sel, playhead, clips)
		}
	}
	for _, track := range []Track{preferred, TrackMain} {
		if c, ok := ActiveClipAt(track, playhead, clips); ok {
			return SplitClipAtTime(c, playhead, clips)
		}
	}
	return clips, "", ErrNoClipAtPlayhead
}

// partName labels a split half, e.g. "beach.mp4 (Part 1)".
func partName(filename string, part int) string {
	name := strings.TrimSpace(filename)
	if part == 1 {
		return name + " (Part 1)"
	}
	return name + " (Part 2)"
}
