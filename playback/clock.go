// Package playback keeps the timeline playhead in step with external media
// players. The main track's player is authoritative; the picture-in-picture
// player follows it and is corrected only when it drifts too far.
package playback

import (
	"context"
	"fmt"
)

// MediaClock is an external player whose clock the synchronizer reads and
// steers. Positions are seconds in the loaded source file.
type MediaClock interface {
	Load(ctx context.Context, path string) error
	Seek(ctx context.Context, seconds float64) error
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Position(ctx context.Context) (float64, error)
	SetVolume(ctx context.Context, volume float64, muted bool) error
}

// EventKind is the kind of notification a media clock emits.
type EventKind int

const (
	EventPlaying EventKind = iota
	EventPaused
	EventBuffering
	EventEnded
)

func (k EventKind) String() string {
	switch k {
	case EventPlaying:
		return "playing"
	case EventPaused:
		return "paused"
	case EventBuffering:
		return "buffering"
	case EventEnded:
		return "ended"
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// ClockEvent is a notification from a media clock. Path names the source the
// clock had loaded when the event fired, so late events can be recognised.
type ClockEvent struct {
	Kind     EventKind
	Path     string
	Position float64
}

// UpdateKind classifies what a synchronizer Update reports.
type UpdateKind int

const (
	// UpdatePlayhead carries a new playhead position.
	UpdatePlayhead UpdateKind = iota
	// UpdateState reports a play/pause change.
	UpdateState
	// UpdateClip reports that the active main or pip clip changed.
	UpdateClip
	// UpdateEnded reports that playback stopped at the end of the timeline.
	UpdateEnded
	// UpdatePreload names the source the main player needs next.
	UpdatePreload
	// UpdateError is a non-fatal media clock failure.
	UpdateError
)

func (k UpdateKind) String() string {
	switch k {
	case UpdatePlayhead:
		return "playhead"
	case UpdateState:
		return "state"
	case UpdateClip:
		return "clip"
	case UpdateEnded:
		return "ended"
	case UpdatePreload:
		return "preload"
	case UpdateError:
		return "error"
	}
	return fmt.Sprintf("update(%d)", int(k))
}

// Update is published to listeners after every synchronizer step that
// changed something.
type Update struct {
	Kind       UpdateKind
	Playhead   float64
	Playing    bool
	MainClipID string
	PipClipID  string
	Path       string
	Err        error
}

// Status is a point-in-time view of the synchronizer.
type Status struct {
	Playing      bool    `json:"playing"`
	ClockRunning bool    `json:"clockRunning"`
	Playhead     float64 `json:"playhead"`
	Duration     float64 `json:"duration"`
	MainClipID   string  `json:"mainClipId,omitempty"`
	PipClipID    string  `json:"pipClipId,omitempty"`
}
