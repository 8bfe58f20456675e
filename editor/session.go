// Package editor is the editing session shared by the TUI and the HTTP API.
// It owns the undo history, routes every edit through it and keeps the
// playback synchronizer informed of the resulting clip list.
package editor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog"

	"github.com/user/reelcut/history"
	"github.com/user/reelcut/logging"
	"github.com/user/reelcut/playback"
	"github.com/user/reelcut/timeline"
)

var (
	// ErrNoPlayer is returned by transport controls when no media player is attached.
	ErrNoPlayer = errors.New("editor: no player attached")
	// ErrNoSelection is returned by edits that act on the selected clip when nothing is selected.
	ErrNoSelection = errors.New("editor: no clip selected")
	// ErrPlayheadOutsideClip is returned when trimming at a playhead the clip does not span.
	ErrPlayheadOutsideClip = errors.New("editor: playhead is outside the clip")
)

// Transport is the playback control surface the session drives.
// *playback.Synchronizer implements it.
type Transport interface {
	Status() playback.Status
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Toggle(ctx context.Context) error
	Seek(ctx context.Context, t float64) error
	SeekRelative(ctx context.Context, delta float64) error
	Refresh(ctx context.Context) error
	Reset(ctx context.Context) error
}

// Options tunes a Session. Zero fields take the defaults.
type Options struct {
	PixelsPerSecond float64
	SnapTolerancePx float64
	HistoryLimit    int
	ImportLimit     int
	ImportWarnAt    int
	Thumbnails      int
}

func (o Options) withDefaults() Options {
	if o.PixelsPerSecond <= 0 {
		o.PixelsPerSecond = DefaultPixelsPerSecond
	}
	if o.SnapTolerancePx <= 0 {
		o.SnapTolerancePx = timeline.DefaultSnapTolerance
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = DefaultHistoryLimit
	}
	if o.ImportLimit <= 0 {
		o.ImportLimit = DefaultImportLimit
	}
	if o.ImportWarnAt <= 0 {
		o.ImportWarnAt = DefaultImportWarnAt
	}
	return o
}

// Snapshot is everything a UI needs to draw the editor.
type Snapshot struct {
	Clips          []timeline.Clip `json:"clips"`
	SelectedClipID string          `json:"selectedClipId"`
	ActiveTrack    timeline.Track  `json:"activeTrack"`
	Playhead       float64         `json:"playhead"`
	Playing        bool            `json:"playing"`
	Duration       float64         `json:"duration"`
	PipDuration    float64         `json:"pipDuration"`
	MainClipID     string          `json:"mainClipId,omitempty"`
	PipClipID      string          `json:"pipClipId,omitempty"`
	CanUndo        bool            `json:"canUndo"`
	CanRedo        bool            `json:"canRedo"`
	ProjectPath    string          `json:"projectPath,omitempty"`
	Dirty          bool            `json:"dirty"`
	Zoom           float64         `json:"zoom"`
}

// Session is one open project. It is safe for concurrent use.
type Session struct {
	history   *history.Manager
	transport Transport
	prober    Prober
	library   Library
	opts      Options
	log       zerolog.Logger

	mu          sync.Mutex
	path        string
	dirty       bool
	zoom        int
	activeTrack timeline.Track
	playhead    float64 // used only without a transport
	listeners   []func(Snapshot)
}

// New creates an empty session. Attach a player with SetTransport and a
// media backend with SetProber before importing.
func New(opts Options) *Session {
	opts = opts.withDefaults()
	return &Session{
		history:     history.New(history.State{}, opts.HistoryLimit),
		opts:        opts,
		log:         logging.WithComponent("editor"),
		zoom:        defaultZoom,
		activeTrack: timeline.TrackMain,
	}
}

// SetTransport attaches the playback controller. The transport should read
// its clips from this session (see Clips).
func (s *Session) SetTransport(t Transport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transport = t
}

// SetProber attaches the media backend used by Import.
func (s *Session) SetProber(p Prober) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prober = p
}

// SetLibrary attaches the persistent media library.
func (s *Session) SetLibrary(l Library) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.library = l
}

// Subscribe registers fn to receive a Snapshot after every change.
func (s *Session) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Clips returns the committed clip list. It implements playback.ClipSource
// and never takes the session lock.
func (s *Session) Clips() []timeline.Clip {
	return s.history.Present().Clips
}

// State returns the committed history state.
func (s *Session) State() history.State {
	return s.history.Present()
}

// Snapshot returns the current editor state.
func (s *Session) Snapshot() Snapshot {
	state := s.history.Present()

	s.mu.Lock()
	snap := Snapshot{
		Clips:          state.Clips,
		SelectedClipID: state.SelectedClipID,
		ActiveTrack:    s.activeTrack,
		Playhead:       s.playhead,
		CanUndo:        s.history.CanUndo(),
		CanRedo:        s.history.CanRedo(),
		ProjectPath:    s.path,
		Dirty:          s.dirty,
		Zoom:           zoomLevels[s.zoom],
	}
	transport := s.transport
	s.mu.Unlock()

	snap.Duration = timeline.TrackDuration(timeline.TrackMain, state.Clips)
	snap.PipDuration = timeline.TrackDuration(timeline.TrackPip, state.Clips)
	if transport != nil {
		st := transport.Status()
		snap.Playhead = st.Playhead
		snap.Playing = st.Playing
		snap.MainClipID = st.MainClipID
		snap.PipClipID = st.PipClipID
	}
	if snap.Clips == nil {
		snap.Clips = []timeline.Clip{}
	}
	return snap
}

// Playhead returns the timeline position.
func (s *Session) Playhead() float64 {
	s.mu.Lock()
	transport, playhead := s.transport, s.playhead
	s.mu.Unlock()
	if transport != nil {
		return transport.Status().Playhead
	}
	return playhead
}

// commit applies fn to the present state through the history. A stale clip
// id makes the edit a silent no-op.
func (s *Session) commit(ctx context.Context, op string, fn func(history.State) (history.State, error)) error {
	_, changed, err := s.history.Update(fn)
	if errors.Is(err, timeline.ErrClipNotFound) {
		s.log.Debug().Str("op", op).Msg("edit targets a missing clip")
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if changed {
		s.log.Debug().Str("op", op).Msg("edit committed")
		s.mu.Lock()
		s.dirty = true
		s.mu.Unlock()
		s.changed(ctx)
	}
	return nil
}

// changed lets the player re-resolve its clips and notifies subscribers.
// The session lock must not be held: the transport reads Clips while
// holding its own lock.
func (s *Session) changed(ctx context.Context) {
	s.mu.Lock()
	transport := s.transport
	if transport == nil {
		s.playhead = clampPlayhead(s.playhead, s.history.Present().Clips)
	}
	s.mu.Unlock()

	if transport != nil {
		if err := transport.Refresh(ctx); err != nil {
			s.log.Warn().Err(err).Msg("player refresh failed")
		}
	}
	s.notify()
}

func (s *Session) notify() {
	s.mu.Lock()
	listeners := append([]func(Snapshot){}, s.listeners...)
	s.mu.Unlock()
	if len(listeners) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, l := range listeners {
		l(snap)
	}
}

func clampPlayhead(t float64, clips []timeline.Clip) float64 {
	return math.Max(0, math.Min(t, timeline.TrackDuration(timeline.TrackMain, clips)))
}
