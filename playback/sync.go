package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/reelcut/logging"
	"github.com/user/reelcut/timeline"
)

// ErrClock wraps every failure reported by a media clock.
var ErrClock = errors.New("playback: media clock failed")

const (
	// endEpsilon is how close to an out point the main clock must get
	// before the clip counts as finished.
	endEpsilon = 0.001
	// motionEpsilon is the smallest clock movement accepted as proof that
	// the clock is running.
	motionEpsilon = 0.001
	// preloadLead is how long before a clip's out point the next source is announced.
	preloadLead = 1.0
)

// ClipSource supplies the current clip list.
type ClipSource interface {
	Clips() []timeline.Clip
}

// ClipSourceFunc adapts a function to ClipSource.
type ClipSourceFunc func() []timeline.Clip

// Clips calls f.
func (f ClipSourceFunc) Clips() []timeline.Clip { return f() }

// Options tunes a Synchronizer. Zero fields take the defaults.
type Options struct {
	// SeekTolerance is the drift, in seconds, below which a seek is skipped.
	SeekTolerance float64
	// PipSyncInterval is how often the pip clock is checked.
	PipSyncInterval time.Duration
	// PipDriftThreshold is the drift, in seconds, that triggers a pip resync.
	PipDriftThreshold float64
	// Now returns the current time.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.SeekTolerance <= 0 {
		o.SeekTolerance = 0.2
	}
	if o.PipSyncInterval <= 0 {
		o.PipSyncInterval = 500 * time.Millisecond
	}
	if o.PipDriftThreshold <= 0 {
		o.PipDriftThreshold = 0.5
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Synchronizer reconciles the main and pip media clocks with the timeline
// playhead. All methods are safe for concurrent use; listeners are called
// outside the lock.
type Synchronizer struct {
	mu     sync.Mutex
	source ClipSource
	main   MediaClock
	pip    MediaClock
	opts   Options
	log    zerolog.Logger

	playing  bool // user intent
	running  bool // main clock confirmed advancing
	playhead float64
	lastPos  float64

	mainClipID string
	mainPath   string

	pipClipID   string
	pipPath     string
	pipPlaying  bool
	lastPipSync time.Time

	preloaded string

	listeners []func(Update)
	pending   []Update
}

// New creates a Synchronizer. pip may be nil when no overlay player exists.
func New(source ClipSource, main, pip MediaClock, opts Options) *Synchronizer {
	return &Synchronizer{
		source: source,
		main:   main,
		pip:    pip,
		opts:   opts.withDefaults(),
		log:    logging.WithComponent("playback"),
	}
}

// Subscribe registers fn to receive every Update.
func (s *Synchronizer) Subscribe(fn func(Update)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Status returns the current state.
func (s *Synchronizer) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Playing:      s.playing,
		ClockRunning: s.running,
		Playhead:     s.playhead,
		Duration:     timeline.TrackDuration(timeline.TrackMain, s.source.Clips()),
		MainClipID:   s.mainClipID,
		PipClipID:    s.pipClipID,
	}
}

// Playhead returns the current timeline position.
func (s *Synchronizer) Playhead() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playhead
}

// IsPlaying reports the user's play intent.
func (s *Synchronizer) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// Play starts playback from the playhead, or from 0 when the playhead sits
// at the end of the timeline.
func (s *Synchronizer) Play(ctx context.Context) error {
	return s.do(func() error { return s.play(ctx) })
}

// Pause stops both clocks.
func (s *Synchronizer) Pause(ctx context.Context) error {
	return s.do(func() error { return s.pause(ctx) })
}

// Toggle flips between Play and Pause.
func (s *Synchronizer) Toggle(ctx context.Context) error {
	return s.do(func() error {
		if s.playing {
			return s.pause(ctx)
		}
		return s.play(ctx)
	})
}

// Seek moves the playhead to t, clamped to the timeline, and steers the
// clocks there when they disagree by more than the seek tolerance.
func (s *Synchronizer) Seek(ctx context.Context, t float64) error {
	return s.do(func() error { return s.seek(ctx, t) })
}

// SeekRelative moves the playhead by delta seconds.
func (s *Synchronizer) SeekRelative(ctx context.Context, delta float64) error {
	return s.do(func() error { return s.seek(ctx, s.playhead+delta) })
}

// Refresh re-resolves the clips under the playhead after the clip list
// changed, e.g. after an edit or undo.
func (s *Synchronizer) Refresh(ctx context.Context) error {
	return s.do(func() error { return s.seek(ctx, s.playhead) })
}

// Reset stops playback and returns the playhead to 0, e.g. for a new project.
func (s *Synchronizer) Reset(ctx context.Context) error {
	return s.do(func() error {
		err := s.pause(ctx)
		s.mainClipID, s.mainPath = "", ""
		s.pipClipID, s.pipPath = "", ""
		s.preloaded = ""
		s.playhead = 0
		s.emit(UpdatePlayhead)
		return err
	})
}

// Tick runs one step of the main loop and, when due, the pip loop. It is a
// no-op while paused.
func (s *Synchronizer) Tick(ctx context.Context) error {
	return s.do(func() error { return s.tick(ctx) })
}

// HandleEvent applies a notification from the clock playing track. Events
// for a source that is no longer loaded are dropped.
func (s *Synchronizer) HandleEvent(ctx context.Context, track timeline.Track, ev ClockEvent) {
	s.do(func() error {
		if track == timeline.TrackPip {
			s.handlePipEvent(ctx, ev)
		} else {
			s.handleMainEvent(ctx, ev)
		}
		return nil
	})
}

// Run drives Tick every interval and feeds clock events until ctx is done.
// Either event channel may be nil.
func (s *Synchronizer) Run(ctx context.Context, interval time.Duration, mainEvents, pipEvents <-chan ClockEvent) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Tick(ctx)
		case ev, ok := <-mainEvents:
			if !ok {
				mainEvents = nil
				continue
			}
			s.HandleEvent(ctx, timeline.TrackMain, ev)
		case ev, ok := <-pipEvents:
			if !ok {
				pipEvents = nil
				continue
			}
			s.HandleEvent(ctx, timeline.TrackPip, ev)
		}
	}
}

// do runs fn under the lock and then delivers any queued updates.
func (s *Synchronizer) do(fn func() error) error {
	s.mu.Lock()
	err := fn()
	updates := s.pending
	s.pending = nil
	listeners := append([]func(Update){}, s.listeners...)
	s.mu.Unlock()

	for _, u := range updates {
		for _, l := range listeners {
			l(u)
		}
	}
	return err
}

func (s *Synchronizer) emit(kind UpdateKind) {
	s.pending = append(s.pending, Update{
		Kind:       kind,
		Playhead:   s.playhead,
		Playing:    s.playing,
		MainClipID: s.mainClipID,
		PipClipID:  s.pipClipID,
	})
}

// fail reverts to paused after a clock failure and reports it.
func (s *Synchronizer) fail(ctx context.Context, op string, err error) error {
	wrapped := fmt.Errorf("%w: %s: %v", ErrClock, op, err)
	s.log.Warn().Err(err).Str("op", op).Msg("media clock failed, pausing")

	wasPlaying := s.playing
	s.playing = false
	s.running = false
	if wasPlaying {
		// Best effort; the clock may be the thing that is broken.
		_ = s.main.Pause(ctx)
		s.pausePip(ctx)
	}

	u := Update{
		Kind:       UpdateError,
		Playhead:   s.playhead,
		MainClipID: s.mainClipID,
		PipClipID:  s.pipClipID,
		Err:        wrapped,
	}
	s.pending = append(s.pending, u)
	s.emit(UpdateState)
	return wrapped
}

func (s *Synchronizer) play(ctx context.Context) error {
	clips := s.source.Clips()
	duration := timeline.TrackDuration(timeline.TrackMain, clips)
	if duration <= 0 {
		return nil
	}

	if s.playhead >= duration-endEpsilon {
		s.playhead = 0
		s.emit(UpdatePlayhead)
	}

	s.playing = true
	if err := s.syncMain(ctx, clips); err != nil {
		return err
	}
	if err := s.main.Play(ctx); err != nil {
		return s.fail(ctx, "play", err)
	}
	if pos, err := s.main.Position(ctx); err == nil {
		s.lastPos = pos
	}
	s.syncPip(ctx, clips, s.opts.SeekTolerance)
	s.lastPipSync = s.opts.Now()

	s.log.Debug().Float64("playhead", s.playhead).Msg("play")
	s.emit(UpdateState)
	return nil
}

func (s *Synchronizer) pause(ctx context.Context) error {
	wasPlaying := s.playing
	s.playing = false
	s.running = false

	var err error
	if perr := s.main.Pause(ctx); perr != nil {
		err = s.fail(ctx, "pause", perr)
	}
	s.pausePip(ctx)

	if wasPlaying {
		s.log.Debug().Float64("playhead", s.playhead).Msg("pause")
		s.emit(UpdateState)
	}
	return err
}

func (s *Synchronizer) seek(ctx context.Context, t float64) error {
	clips := s.source.Clips()
	duration := timeline.TrackDuration(timeline.TrackMain, clips)

	s.playhead = math.Max(0, math.Min(t, duration))
	s.emit(UpdatePlayhead)

	if duration <= 0 {
		s.mainClipID = ""
		s.pausePip(ctx)
		return nil
	}

	if s.playhead >= duration-endEpsilon {
		// Parked at the end: nothing plays, the next Play restarts at 0.
		if s.playing {
			return s.stopAtEnd(ctx, duration)
		}
		s.syncPip(ctx, clips, s.opts.SeekTolerance)
		return nil
	}

	if err := s.syncMain(ctx, clips); err != nil {
		return err
	}
	if s.playing {
		if err := s.main.Play(ctx); err != nil {
			return s.fail(ctx, "play", err)
		}
	}
	s.syncPip(ctx, clips, s.opts.SeekTolerance)
	s.lastPipSync = s.opts.Now()
	return nil
}

// syncMain puts the main clock on the clip under the playhead. A different
// source is loaded; within the same clip the clock is only moved when it has
// drifted past the seek tolerance.
func (s *Synchronizer) syncMain(ctx context.Context, clips []timeline.Clip) error {
	clip, ok := timeline.ActiveClipAt(timeline.TrackMain, s.playhead, clips)
	if !ok {
		return nil
	}
	target := clip.SourceTime(clip.InPoint + timeline.LocalTime(clip, s.playhead, clips))

	if clip.ID != s.mainClipID || clip.SourcePath != s.mainPath {
		return s.switchMain(ctx, clip, target)
	}

	pos, err := s.main.Position(ctx)
	if err != nil {
		return s.fail(ctx, "position", err)
	}
	if math.Abs(pos-target) > s.opts.SeekTolerance {
		if err := s.main.Seek(ctx, target); err != nil {
			return s.fail(ctx, "seek", err)
		}
		s.lastPos = target
	}
	return nil
}

// switchMain makes clip the main clock's clip and seeks to target.
func (s *Synchronizer) switchMain(ctx context.Context, clip timeline.Clip, target float64) error {
	if clip.SourcePath != s.mainPath {
		s.running = false
		if err := s.main.Load(ctx, clip.SourcePath); err != nil {
			s.mainPath = ""
			return s.fail(ctx, "load", err)
		}
		s.mainPath = clip.SourcePath
	}
	if err := s.main.Seek(ctx, target); err != nil {
		return s.fail(ctx, "seek", err)
	}
	s.lastPos = target

	if err := s.main.SetVolume(ctx, clip.Volume, clip.Muted); err != nil {
		s.log.Debug().Err(err).Msg("set volume")
	}

	s.mainClipID = clip.ID
	s.preloaded = ""
	s.log.Debug().Str("clip", clip.ID).Str("path", clip.SourcePath).Float64("source", target).Msg("main clip")
	s.emit(UpdateClip)
	return nil
}

func (s *Synchronizer) tick(ctx context.Context) error {
	if !s.playing {
		return nil
	}
	clips := s.source.Clips()

	pos, err := s.main.Position(ctx)
	if err != nil {
		return s.fail(ctx, "position", err)
	}

	if !s.running {
		// Wait for the clock to confirm it is moving; a missed Playing
		// event is recovered by watching the position advance.
		if math.Abs(pos-s.lastPos) < motionEpsilon {
			s.lastPos = pos
			return nil
		}
		s.running = true
	}
	s.lastPos = pos

	clip, ok := timeline.Find(clips, s.mainClipID)
	if !ok || clip.Track != timeline.TrackMain {
		// The clip was edited away under us; follow the playhead.
		clip, ok = timeline.ActiveClipAt(timeline.TrackMain, s.playhead, clips)
		if !ok {
			return s.stopAtEnd(ctx, timeline.TrackDuration(timeline.TrackMain, clips))
		}
		if clip.SourcePath != s.mainPath {
			return s.syncMain(ctx, clips)
		}
		s.mainClipID = clip.ID
	}

	local := pos - clip.BaseOffset()
	if local >= clip.OutPoint-endEpsilon {
		if err := s.advance(ctx, clip, clips); err != nil {
			return err
		}
	} else {
		if local < clip.InPoint {
			local = clip.InPoint
		}
		s.playhead = timeline.ClipStart(clip, clips) + (local - clip.InPoint)
		s.emit(UpdatePlayhead)
		s.maybePreload(clip, clips, local)
	}

	if now := s.opts.Now(); now.Sub(s.lastPipSync) >= s.opts.PipSyncInterval {
		s.lastPipSync = now
		s.syncPip(ctx, clips, s.opts.PipDriftThreshold)
	}
	return nil
}

// advance moves playback from a finished clip to the next main clip, or
// stops at the end of the timeline.
func (s *Synchronizer) advance(ctx context.Context, finished timeline.Clip, clips []timeline.Clip) error {
	next, ok := timeline.Next(clips, finished.ID)
	if !ok {
		return s.stopAtEnd(ctx, timeline.TrackDuration(timeline.TrackMain, clips))
	}

	s.playhead = timeline.ClipStart(next, clips)
	s.emit(UpdatePlayhead)

	resume := s.playing
	if err := s.switchMain(ctx, next, next.SourceStart()); err != nil {
		return err
	}
	if resume {
		if err := s.main.Play(ctx); err != nil {
			return s.fail(ctx, "play", err)
		}
	}
	s.syncPip(ctx, clips, s.opts.SeekTolerance)
	return nil
}

func (s *Synchronizer) stopAtEnd(ctx context.Context, duration float64) error {
	s.playing = false
	s.running = false
	s.playhead = duration

	var err error
	if perr := s.main.Pause(ctx); perr != nil {
		err = s.fail(ctx, "pause", perr)
	}
	s.pausePip(ctx)

	s.log.Debug().Float64("playhead", duration).Msg("end of timeline")
	s.emit(UpdatePlayhead)
	s.emit(UpdateEnded)
	return err
}

func (s *Synchronizer) maybePreload(clip timeline.Clip, clips []timeline.Clip, local float64) {
	if clip.OutPoint-local > preloadLead {
		return
	}
	next, ok := timeline.Next(clips, clip.ID)
	if !ok || next.SourcePath == clip.SourcePath || s.preloaded == next.ID {
		return
	}
	s.preloaded = next.ID
	s.pending = append(s.pending, Update{
		Kind:       UpdatePreload,
		Playhead:   s.playhead,
		Playing:    s.playing,
		MainClipID: s.mainClipID,
		PipClipID:  s.pipClipID,
		Path:       next.SourcePath,
	})
}

// syncPip aligns the pip clock with the pip clip under the playhead,
// correcting it only past threshold. Pip failures never stop playback.
func (s *Synchronizer) syncPip(ctx context.Context, clips []timeline.Clip, threshold float64) {
	if s.pip == nil {
		return
	}

	clip, ok := timeline.ActiveClipAt(timeline.TrackPip, s.playhead, clips)
	if !ok {
		if s.pipClipID != "" {
			s.pipClipID = ""
			s.emit(UpdateClip)
		}
		s.pausePip(ctx)
		return
	}

	expected := clip.SourceTime(clip.InPoint + timeline.LocalTime(clip, s.playhead, clips))

	if clip.ID != s.pipClipID || clip.SourcePath != s.pipPath {
		if clip.SourcePath != s.pipPath {
			if err := s.pip.Load(ctx, clip.SourcePath); err != nil {
				s.pipFailed("load", err)
				return
			}
			s.pipPath = clip.SourcePath
			s.pipPlaying = false
		}
		if err := s.pip.Seek(ctx, expected); err != nil {
			s.pipFailed("seek", err)
			return
		}
		if err := s.pip.SetVolume(ctx, clip.Volume, clip.Muted); err != nil {
			s.log.Debug().Err(err).Msg("pip set volume")
		}
		s.pipClipID = clip.ID
		s.emit(UpdateClip)
	} else {
		pos, err := s.pip.Position(ctx)
		if err != nil {
			s.pipFailed("position", err)
			return
		}
		if drift := math.Abs(pos - expected); drift > threshold {
			s.log.Debug().Float64("drift", drift).Msg("pip resync")
			if err := s.pip.Seek(ctx, expected); err != nil {
				s.pipFailed("seek", err)
				return
			}
		}
	}

	switch {
	case s.playing && !s.pipPlaying:
		if err := s.pip.Play(ctx); err != nil {
			s.pipFailed("play", err)
			return
		}
		s.pipPlaying = true
	case !s.playing && s.pipPlaying:
		s.pausePip(ctx)
	}
}

func (s *Synchronizer) pausePip(ctx context.Context) {
	if s.pip == nil || !s.pipPlaying {
		return
	}
	if err := s.pip.Pause(ctx); err != nil {
		s.pipFailed("pause", err)
	}
	s.pipPlaying = false
}

func (s *Synchronizer) pipFailed(op string, err error) {
	s.log.Warn().Err(err).Str("op", op).Msg("pip clock failed")
	s.pending = append(s.pending, Update{
		Kind:       UpdateError,
		Playhead:   s.playhead,
		Playing:    s.playing,
		MainClipID: s.mainClipID,
		PipClipID:  s.pipClipID,
		Err:        fmt.Errorf("%w: pip %s: %v", ErrClock, op, err),
	})
}

func (s *Synchronizer) handleMainEvent(ctx context.Context, ev ClockEvent) {
	if ev.Path != "" && ev.Path != s.mainPath {
		s.log.Debug().Str("event", ev.Kind.String()).Str("path", ev.Path).Msg("stale main event")
		return
	}

	switch ev.Kind {
	case EventPlaying:
		if !s.playing {
			// Late confirmation of a play we have since cancelled.
			if err := s.main.Pause(ctx); err != nil {
				s.fail(ctx, "pause", err)
			}
			return
		}
		s.running = true
		s.lastPos = ev.Position
	case EventPaused, EventBuffering:
		s.running = false
	case EventEnded:
		clips := s.source.Clips()
		clip, ok := timeline.Find(clips, s.mainClipID)
		if !ok || !s.playing {
			return
		}
		// Only trust an end-of-file reported at the current clip's source end.
		// Anything else, including an unknown position, belongs to an
		// earlier clip and the tick loop owns the transition.
		end, tol := clip.SourceEnd(), s.opts.SeekTolerance
		if ev.Position <= 0 || ev.Position < end-tol || ev.Position > end+tol {
			s.log.Debug().Float64("position", ev.Position).Msg("stale ended event")
			return
		}
		s.advance(ctx, clip, clips)
	}
}

func (s *Synchronizer) handlePipEvent(ctx context.Context, ev ClockEvent) {
	if s.pip == nil || (ev.Path != "" && ev.Path != s.pipPath) {
		return
	}

	switch ev.Kind {
	case EventPlaying:
		if !s.playing || s.pipClipID == "" {
			if err := s.pip.Pause(ctx); err != nil {
				s.pipFailed("pause", err)
			}
			s.pipPlaying = false
			return
		}
		s.pipPlaying = true
	case EventPaused, EventEnded:
		s.pipPlaying = false
	}
}
