package timeline

// Span is a clip together with its derived timeline position.
type Span struct {
	Clip  Clip
	Index int // index within the track
	Start float64
	End   float64
}

// TrackClips returns the clips on one track in slice order.
func TrackClips(track Track, clips []Clip) []Clip {
	var out []Clip
	for _, c := range clips {
		if c.Track == track {
			out = append(out, c)
		}
	}
	return out
}

// Spans computes the start and end of every clip on a track in a single pass.
// Callers rendering or hit-testing many positions should use this instead of
// repeated ClipStart calls.
func Spans(track Track, clips []Clip) []Span {
	var out []Span
	t := 0.0
	for _, c := range clips {
		if c.Track != track {
			continue
		}
		d := c.ActiveDuration()
		out = append(out, Span{Clip: c, Index: len(out), Start: t, End: t + d})
		t += d
	}
	return out
}

// ClipStart returns the timeline position where clip begins: the sum of the
// active lengths of the same-track clips before it. A clip that is not in the
// list starts at 0.
func ClipStart(clip Clip, clips []Clip) float64 {
	t := 0.0
	for _, c := range clips {
		if c.ID == clip.ID {
			return t
		}
		if c.Track == clip.Track {
			t += c.ActiveDuration()
		}
	}
	return 0
}

// ClipEnd returns the timeline position where clip's active window ends.
func ClipEnd(clip Clip, clips []Clip) float64 {
	return ClipStart(clip, clips) + clip.ActiveDuration()
}

// ActiveClipAt returns the first clip on track whose half-open [start, end)
// interval contains t.
func ActiveClipAt(track Track, t float64, clips []Clip) (Clip, bool) {
	start := 0.0
	for _, c := range clips {
		if c.Track != track {
			continue
		}
		end := start + c.ActiveDuration()
		if t >= start && t < end {
			return c, true
		}
		start = end
	}
	return Clip{}, false
}

// LocalTime returns how far t lies past the start of clip, never negative.
func LocalTime(clip Clip, t float64, clips []Clip) float64 {
	local := t - ClipStart(clip, clips)
	if local < 0 {
		return 0
	}
	return local
}

// TrackDuration returns the summed active length of a track. The main
// track's duration is the length of the whole timeline.
func TrackDuration(track Track, clips []Clip) float64 {
	total := 0.0
	for _, c := range clips {
		if c.Track == track {
			total += c.ActiveDuration()
		}
	}
	return total
}

// IndexOf returns the slice index of the clip with id, or -1.
func IndexOf(clips []Clip, id string) int {
	for i, c := range clips {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// Find returns the clip with id.
func Find(clips []Clip, id string) (Clip, bool) {
	if i := IndexOf(clips, id); i >= 0 {
		return clips[i], true
	}
	return Clip{}, false
}

// Next returns the clip following id on the same track.
func Next(clips []Clip, id string) (Clip, bool) {
	i := IndexOf(clips, id)
	if i < 0 {
		return Clip{}, false
	}
	track := clips[i].Track
	for _, c := range clips[i+1:] {
		if c.Track == track {
			return c, true
		}
	}
	return Clip{}, false
}

// Previous returns the clip before id on the same track.
func Previous(clips []Clip, id string) (Clip, bool) {
	i := IndexOf(clips, id)
	if i < 0 {
		return Clip{}, false
	}
	track := clips[i].Track
	for j := i - 1; j >= 0; j-- {
		if clips[j].Track == track {
			return clips[j], true
		}
	}
	return Clip{}, false
}
