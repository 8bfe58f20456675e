package timeline

// Append adds a clip to the end of its track.
func Append(clips []Clip, c Clip) []Clip {
	out := Clone(clips)
	return append(out, c.clone())
}

// Delete removes the clip with id.
func Delete(clips []Clip, id string) ([]Clip, error) {
	if IndexOf(clips, id) < 0 {
		return clips, ErrClipNotFound
	}
	return Clone(without(clips, id)), nil
}

// SetVolume sets a clip's volume, clamped to [MinVolume, MaxVolume]. Dropping
// to zero mutes the clip; raising a muted clip from zero unmutes it.
func SetVolume(clips []Clip, id string, volume float64) ([]Clip, error) {
	return update(clips, id, func(c *Clip) {
		v := clamp(volume, MinVolume, MaxVolume)
		switch {
		case v == 0:
			c.Muted = true
		case c.Muted && c.Volume == 0:
			c.Muted = false
		}
		c.Volume = v
	})
}

// ToggleMute flips a clip's muted flag. Unmuting a clip at zero volume
// restores unity gain so the change is audible.
func ToggleMute(clips []Clip, id string) ([]Clip, error) {
	return update(clips, id, func(c *Clip) {
		c.Muted = !c.Muted
		if !c.Muted && c.Volume == 0 {
			c.Volume = DefaultVolume
		}
	})
}

// SetPipSettings replaces the overlay placement of a pip clip.
func SetPipSettings(clips []Clip, id string, p PipSettings) ([]Clip, error) {
	i := IndexOf(clips, id)
	if i < 0 {
		return clips, ErrClipNotFound
	}
	if clips[i].Track != TrackPip {
		return clips, ErrInvalidTrack
	}
	return update(clips, id, func(c *Clip) {
		clamped := p.Clamp()
		c.PipSettings = &clamped
	})
}

func update(clips []Clip, id string, fn func(*Clip)) ([]Clip, error) {
	i := IndexOf(clips, id)
	if i < 0 {
		return clips, ErrClipNotFound
	}
	out := Clone(clips)
	fn(&out[i])
	return out, nil
}
