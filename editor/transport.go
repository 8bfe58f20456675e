package editor

import (
	"context"
)

// Play starts playback.
func (s *Session) Play(ctx context.Context) error {
	t, err := s.player()
	if err != nil {
		return err
	}
	return t.Play(ctx)
}

// Pause stops playback.
func (s *Session) Pause(ctx context.Context) error {
	t, err := s.player()
	if err != nil {
		return err
	}
	return t.Pause(ctx)
}

// TogglePlay flips between playing and paused.
func (s *Session) TogglePlay(ctx context.Context) error {
	t, err := s.player()
	if err != nil {
		return err
	}
	return t.Toggle(ctx)
}

// Seek moves the playhead to t, clamped to the timeline. Without a player
// the session tracks the playhead itself.
func (s *Session) Seek(ctx context.Context, t float64) error {
	s.mu.Lock()
	transport := s.transport
	if transport == nil {
		s.playhead = clampPlayhead(t, s.history.Present().Clips)
	}
	s.mu.Unlock()

	if transport != nil {
		return transport.Seek(ctx, t)
	}
	s.notify()
	return nil
}

// SeekRelative moves the playhead by delta seconds.
func (s *Session) SeekRelative(ctx context.Context, delta float64) error {
	return s.Seek(ctx, s.Playhead()+delta)
}

// SeekStart jumps to the beginning of the timeline.
func (s *Session) SeekStart(ctx context.Context) error {
	return s.Seek(ctx, 0)
}

// SeekEnd jumps to the end of the main track.
func (s *Session) SeekEnd(ctx context.Context) error {
	return s.Seek(ctx, s.Snapshot().Duration)
}

func (s *Session) player() (Transport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.transport == nil {
		return nil, ErrNoPlayer
	}
	return s.transport, nil
}
