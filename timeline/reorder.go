package timeline

import "errors"

var (
	// ErrReorderNoop is returned when a drop would leave the clip where it is.
	ErrReorderNoop = errors.New("timeline: reorder to current position")
	// ErrDropOutOfRange is returned for a drop index outside the track.
	ErrDropOutOfRange = errors.New("timeline: drop index out of range")
	// ErrSingleClip is returned when the track has nothing to reorder against.
	ErrSingleClip = errors.New("timeline: track has a single clip")
)

// DropIndex returns where a dragged clip would land if released at pointerX
// (pixels from the track origin). The dragged clip is left out of the walk;
// the result is the index of the first remaining clip whose midpoint lies to
// the right of the pointer, or the count of remaining clips when the pointer
// is past all of them.
func DropIndex(trackClips []Clip, draggedID string, pointerX, pixelsPerSecond float64) int {
	others := without(trackClips, draggedID)
	t := 0.0
	for i, c := range others {
		d := c.ActiveDuration()
		mid := (t + d/2) * pixelsPerSecond
		if pointerX < mid {
			return i
		}
		t += d
	}
	return len(others)
}

// CheckReorder explains why a reorder would be rejected, or returns nil.
// Only an index equal to the clip's current index counts as a no-op.
func CheckReorder(trackClips []Clip, draggedID string, dropIndex int) error {
	current := IndexOf(trackClips, draggedID)
	switch {
	case current < 0:
		return ErrClipNotFound
	case len(trackClips) <= 1:
		return ErrSingleClip
	case dropIndex < 0 || dropIndex >= len(trackClips):
		return ErrDropOutOfRange
	case dropIndex == current:
		return ErrReorderNoop
	}
	return nil
}

// CanReorder reports whether Reorder would change the track.
func CanReorder(trackClips []Clip, draggedID string, dropIndex int) bool {
	return CheckReorder(trackClips, draggedID, dropIndex) == nil
}

// Reorder removes the dragged clip and re-inserts it at dropIndex. A rejected
// reorder returns the input unchanged.
func Reorder(trackClips []Clip, draggedID string, dropIndex int) []Clip {
	if !CanReorder(trackClips, draggedID, dropIndex) {
		return trackClips
	}
	dragged := trackClips[IndexOf(trackClips, draggedID)]
	out := without(trackClips, draggedID)
	out = append(out, Clip{})
	copy(out[dropIndex+1:], out[dropIndex:])
	out[dropIndex] = dragged
	return out
}

// ReorderInTrack reorders one track inside the full clip list. Clips of the
// other track keep their slice positions.
func ReorderInTrack(clips []Clip, track Track, draggedID string, dropIndex int) ([]Clip, error) {
	tc := TrackClips(track, clips)
	if err := CheckReorder(tc, draggedID, dropIndex); err != nil {
		return clips, err
	}
	reordered := Reorder(tc, draggedID, dropIndex)

	out := Clone(clips)
	j := 0
	for i := range out {
		if out[i].Track == track {
			out[i] = reordered[j].clone()
			j++
		}
	}
	return out, nil
}

// MoveToTrack moves a clip to the end of another track. Entering the pip
// track gives it default overlay settings, leaving it clears them.
func MoveToTrack(clips []Clip, id string, track Track) ([]Clip, error) {
	return MoveToTrackAt(clips, id, track, -1)
}

// MoveToTrackAt moves a clip to another track, inserting it before the
// dropIndex-th clip of that track. A negative or too large index appends.
func MoveToTrackAt(clips []Clip, id string, track Track, dropIndex int) ([]Clip, error) {
	i := IndexOf(clips, id)
	if i < 0 {
		return clips, ErrClipNotFound
	}
	if _, err := ParseTrack(string(track)); err != nil {
		return clips, err
	}
	if clips[i].Track == track {
		return clips, ErrReorderNoop
	}

	moved := clips[i].clone()
	moved.Track = track
	if track == TrackPip {
		pip := DefaultPipSettings()
		moved.PipSettings = &pip
	} else {
		moved.PipSettings = nil
	}

	rest := Clone(without(clips, id))

	// Find the slice position of the dropIndex-th clip on the destination track.
	at := len(rest)
	if dropIndex >= 0 {
		n := 0
		for j, c := range rest {
			if c.Track != track {
				continue
			}
			if n == dropIndex {
				at = j
				break
			}
			n++
		}
	}

	out := make([]Clip, 0, len(clips))
	out = append(out, rest[:at]...)
	out = append(out, moved)
	out = append(out, rest[at:]...)
	return out, nil
}

// DropIndicatorPosition returns the pixel x of the insertion marker drawn for
// a pending drop at dropIndex.
func DropIndicatorPosition(trackClips []Clip, draggedID string, dropIndex int, pixelsPerSecond float64) float64 {
	others := without(trackClips, draggedID)
	t := 0.0
	for i, c := range others {
		if i == dropIndex {
			break
		}
		t += c.ActiveDuration()
	}
	return t * pixelsPerSecond
}

// without returns the clips other than id, preserving order.
func without(clips []Clip, id string) []Clip {
	out := make([]Clip, 0, len(clips))
	for _, c := range clips {
		if c.ID != id {
			out = append(out, c)
		}
	}
	return out
}
