package editor

import (
	"context"

	"github.com/user/reelcut/history"
	"github.com/user/reelcut/timeline"
)

// Select makes id the selected clip. An empty id clears the selection; an
// unknown id is ignored.
func (s *Session) Select(ctx context.Context, id string) error {
	if id != "" {
		c, ok := timeline.Find(s.Clips(), id)
		if !ok {
			return nil
		}
		s.mu.Lock()
		s.activeTrack = c.Track
		s.mu.Unlock()
	}
	return s.commit(ctx, "select", func(st history.State) (history.State, error) {
		if id != "" && timeline.IndexOf(st.Clips, id) < 0 {
			return st, timeline.ErrClipNotFound
		}
		st.SelectedClipID = id
		return st, nil
	})
}

// SelectNext selects the clip after the selection on its track, or the first
// clip of the active track when nothing is selected.
func (s *Session) SelectNext(ctx context.Context) error {
	return s.selectAdjacent(ctx, timeline.Next, func(clips []timeline.Clip) (timeline.Clip, bool) {
		if len(clips) == 0 {
			return timeline.Clip{}, false
		}
		return clips[0], true
	})
}

// SelectPrevious selects the clip before the selection on its track, or the
// last clip of the active track when nothing is selected.
func (s *Session) SelectPrevious(ctx context.Context) error {
	return s.selectAdjacent(ctx, timeline.Previous, func(clips []timeline.Clip) (timeline.Clip, bool) {
		if len(clips) == 0 {
			return timeline.Clip{}, false
		}
		return clips[len(clips)-1], true
	})
}

func (s *Session) selectAdjacent(ctx context.Context, step func([]timeline.Clip, string) (timeline.Clip, bool), fallback func([]timeline.Clip) (timeline.Clip, bool)) error {
	st := s.State()
	if st.SelectedClipID != "" {
		if c, ok := step(st.Clips, st.SelectedClipID); ok {
			return s.Select(ctx, c.ID)
		}
		return nil
	}
	if c, ok := fallback(timeline.TrackClips(s.ActiveTrack(), st.Clips)); ok {
		return s.Select(ctx, c.ID)
	}
	return nil
}

// ActiveTrack returns the track keyboard edits prefer.
func (s *Session) ActiveTrack() timeline.Track {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeTrack
}

// SwitchTrack makes the other track active and returns it.
func (s *Session) SwitchTrack() timeline.Track {
	s.mu.Lock()
	s.activeTrack = s.activeTrack.Other()
	t := s.activeTrack
	s.mu.Unlock()
	s.notify()
	return t
}

// Split cuts the clip under the playhead in two. The selected clip wins when
// it spans the playhead, then the active track, then main. Part 1 becomes
// the selection.
func (s *Session) Split(ctx context.Context) error {
	playhead := s.Playhead()
	preferred := s.ActiveTrack()
	return s.commit(ctx, "split", func(st history.State) (history.State, error) {
		clips, selected, err := timeline.SplitAtPlayhead(st.Clips, st.SelectedClipID, preferred, playhead)
		if err != nil {
			return st, err
		}
		return history.State{Clips: clips, SelectedClipID: selected}, nil
	})
}

// SplitClip cuts clip id at timeline position t.
func (s *Session) SplitClip(ctx context.Context, id string, t float64) error {
	return s.commit(ctx, "split", func(st history.State) (history.State, error) {
		c, ok := timeline.Find(st.Clips, id)
		if !ok {
			return st, timeline.ErrClipNotFound
		}
		clips, selected, err := timeline.SplitClipAtTime(c, t, st.Clips)
		if err != nil {
			return st, err
		}
		return history.State{Clips: clips, SelectedClipID: selected}, nil
	})
}

// SetInPoint trims the selected clip so it starts at the playhead.
func (s *Session) SetInPoint(ctx context.Context) error {
	return s.trimAtPlayhead(ctx, timeline.EdgeIn)
}

// SetOutPoint trims the selected clip so it ends at the playhead.
func (s *Session) SetOutPoint(ctx context.Context) error {
	return s.trimAtPlayhead(ctx, timeline.EdgeOut)
}

func (s *Session) trimAtPlayhead(ctx context.Context, edge timeline.Edge) error {
	id, err := s.resolve("")
	if err != nil {
		return err
	}
	playhead := s.Playhead()
	return s.commit(ctx, "trim", func(st history.State) (history.State, error) {
		c, ok := timeline.Find(st.Clips, id)
		if !ok {
			return st, timeline.ErrClipNotFound
		}
		start := timeline.ClipStart(c, st.Clips)
		if playhead < start || playhead > start+c.ActiveDuration() {
			return st, ErrPlayheadOutsideClip
		}
		local := c.InPoint + (playhead - start)
		in, out := c.InPoint, c.OutPoint
		if edge == timeline.EdgeIn {
			in = local
		} else {
			out = local
		}
		st.Clips, err = timeline.TrimClip(st.Clips, id, in, out, edge)
		return st, err
	})
}

// Trim moves one edge of clip id to value, in the clip's own time.
func (s *Session) Trim(ctx context.Context, id string, edge timeline.Edge, value float64) error {
	id, err := s.resolve(id)
	if err != nil {
		return err
	}
	return s.commit(ctx, "trim", func(st history.State) (history.State, error) {
		c, ok := timeline.Find(st.Clips, id)
		if !ok {
			return st, timeline.ErrClipNotFound
		}
		in, out := c.InPoint, c.OutPoint
		if edge == timeline.EdgeIn {
			in = value
		} else {
			out = value
		}
		st.Clips, err = timeline.TrimClip(st.Clips, id, in, out, edge)
		return st, err
	})
}

// Delete removes clip id, or the selected clip when id is empty. Deleting
// the selected clip clears the selection.
func (s *Session) Delete(ctx context.Context, id string) error {
	id, err := s.resolve(id)
	if err != nil {
		return err
	}
	return s.commit(ctx, "delete", func(st history.State) (history.State, error) {
		clips, err := timeline.Delete(st.Clips, id)
		if err != nil {
			return st, err
		}
		if st.SelectedClipID == id {
			st.SelectedClipID = ""
		}
		st.Clips = clips
		return st, nil
	})
}

// Reorder moves clip id to dropIndex within its track.
func (s *Session) Reorder(ctx context.Context, id string, dropIndex int) error {
	id, err := s.resolve(id)
	if err != nil {
		return err
	}
	return s.commit(ctx, "reorder", func(st history.State) (history.State, error) {
		c, ok := timeline.Find(st.Clips, id)
		if !ok {
			return st, timeline.ErrClipNotFound
		}
		st.Clips, err = timeline.ReorderInTrack(st.Clips, c.Track, id, dropIndex)
		return st, err
	})
}

// Nudge moves clip id delta places along its track.
func (s *Session) Nudge(ctx context.Context, id string, delta int) error {
	id, err := s.resolve(id)
	if err != nil {
		return err
	}
	clips := s.Clips()
	c, ok := timeline.Find(clips, id)
	if !ok {
		return nil
	}
	track := timeline.TrackClips(c.Track, clips)
	target := timeline.IndexOf(track, id) + delta
	if delta == 0 || target < 0 || target >= len(track) {
		return nil
	}
	return s.Reorder(ctx, id, target)
}

// DropAt reorders clip id to where a drag released at pointerX pixels would
// land, snapping to clip edges within the snap tolerance.
func (s *Session) DropAt(ctx context.Context, id string, pointerX float64) error {
	clips := s.Clips()
	c, ok := timeline.Find(clips, id)
	if !ok {
		return nil
	}
	s.mu.Lock()
	tolerance := s.opts.SnapTolerancePx
	s.mu.Unlock()
	idx := timeline.SnappedDropIndex(timeline.TrackClips(c.Track, clips), id, pointerX, s.PixelsPerSecond(), tolerance)
	return s.Reorder(ctx, id, idx)
}

// MoveToTrack moves clip id to the end of track.
func (s *Session) MoveToTrack(ctx context.Context, id string, track timeline.Track) error {
	id, err := s.resolve(id)
	if err != nil {
		return err
	}
	return s.commit(ctx, "move", func(st history.State) (history.State, error) {
		st.Clips, err = timeline.MoveToTrack(st.Clips, id, track)
		return st, err
	})
}

// ToggleTrack moves clip id between main and pip.
func (s *Session) ToggleTrack(ctx context.Context, id string) error {
	id, err := s.resolve(id)
	if err != nil {
		return err
	}
	c, ok := timeline.Find(s.Clips(), id)
	if !ok {
		return nil
	}
	if err := s.MoveToTrack(ctx, id, c.Track.Other()); err != nil {
		return err
	}
	s.mu.Lock()
	s.activeTrack = c.Track.Other()
	s.mu.Unlock()
	return nil
}

// SetVolume sets the volume of clip id (0-200).
func (s *Session) SetVolume(ctx context.Context, id string, volume float64) error {
	id, err := s.resolve(id)
	if err != nil {
		return err
	}
	return s.commit(ctx, "volume", func(st history.State) (history.State, error) {
		st.Clips, err = timeline.SetVolume(st.Clips, id, volume)
		return st, err
	})
}

// ToggleMute flips the muted flag of clip id.
func (s *Session) ToggleMute(ctx context.Context, id string) error {
	id, err := s.resolve(id)
	if err != nil {
		return err
	}
	return s.commit(ctx, "mute", func(st history.State) (history.State, error) {
		st.Clips, err = timeline.ToggleMute(st.Clips, id)
		return st, err
	})
}

// UpdatePip replaces the overlay placement of pip clip id.
func (s *Session) UpdatePip(ctx context.Context, id string, p timeline.PipSettings) error {
	id, err := s.resolve(id)
	if err != nil {
		return err
	}
	return s.commit(ctx, "pip", func(st history.State) (history.State, error) {
		st.Clips, err = timeline.SetPipSettings(st.Clips, id, p)
		return st, err
	})
}

// Undo steps back one edit. It reports false when there was nothing to undo.
func (s *Session) Undo(ctx context.Context) bool {
	if !s.history.Undo() {
		return false
	}
	s.markDirty()
	s.changed(ctx)
	return true
}

// Redo re-applies the last undone edit. It reports false when there was
// nothing to redo.
func (s *Session) Redo(ctx context.Context) bool {
	if !s.history.Redo() {
		return false
	}
	s.markDirty()
	s.changed(ctx)
	return true
}

func (s *Session) markDirty() {
	s.mu.Lock()
	s.dirty = true
	s.mu.Unlock()
}

// resolve maps an empty id to the selected clip.
func (s *Session) resolve(id string) (string, error) {
	if id != "" {
		return id, nil
	}
	if sel := s.State().SelectedClipID; sel != "" {
		return sel, nil
	}
	return "", ErrNoSelection
}
