package timeline

import (
	"errors"
	"math"
)

// ErrTrimTooShort is returned when a clip is too short to hold a one-frame window.
var ErrTrimTooShort = errors.New("timeline: clip shorter than one frame")

// Edge names the side of the active window a trim gesture moved.
type Edge int

const (
	// EdgeIn is the in point.
	EdgeIn Edge = iota
	// EdgeOut is the out point.
	EdgeOut
)

// SnapToFrame rounds x to the nearest frame boundary.
func SnapToFrame(x float64) float64 {
	return math.Round(x/FrameDuration) * FrameDuration
}

// SetTrim applies a new active window to clip. The edited edge is expected
// to be snapped already; they are clamped to [0, Duration] and, when the window
// would be shorter than MinDuration, the side opposite to edited gives way.
// Duration and SourceOffset are never touched.
func SetTrim(clip Clip, newIn, newOut float64, edited Edge) (Clip, error) {
	if clip.Duration < MinDuration-epsilon {
		return clip, ErrTrimTooShort
	}

	in := clamp(newIn, 0, clip.Duration)
	out := clamp(newOut, 0, clip.Duration)

	if out-in < MinDuration-epsilon {
		if edited == EdgeIn {
			out = in + MinDuration
			if out > clip.Duration {
				out = clip.Duration
				in = out - MinDuration
			}
		} else {
			in = out - MinDuration
			if in < 0 {
				in = 0
				out = MinDuration
			}
		}
	}

	clip.InPoint = in
	clip.OutPoint = out
	return clip, nil
}

// TrimClip applies a trim to the clip with id inside clips. Only the edited
// edge is snapped to a frame; the other edge keeps its value.
func TrimClip(clips []Clip, id string, newIn, newOut float64, edited Edge) ([]Clip, error) {
	i := IndexOf(clips, id)
	if i < 0 {
		return clips, ErrClipNotFound
	}
	if edited == EdgeIn {
		newIn = SnapToFrame(newIn)
	} else {
		newOut = SnapToFrame(newOut)
	}
	trimmed, err := SetTrim(clips[i], newIn, newOut, edited)
	if err != nil {
		return clips, err
	}
	out := Clone(clips)
	out[i] = trimmed
	return out, nil
}
