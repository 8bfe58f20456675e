// Package timeline models clips placed on the main and picture-in-picture
// tracks of a project, and provides the pure position, trim, split, reorder
// and snap functions the editor builds on.
package timeline

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// FrameDuration is one frame at 30 fps, rounded to the granularity used for
// trim and split snapping.
const FrameDuration = 0.033

// MinDuration is the shortest active window a clip may have.
const MinDuration = FrameDuration

// Volume bounds. 100 is unity gain.
const (
	MinVolume     = 0
	MaxVolume     = 200
	DefaultVolume = 100
)

// epsilon absorbs float rounding when comparing snapped boundaries.
const epsilon = 1e-9

var (
	// ErrClipNotFound is returned when an operation targets an id that is not in the clip list.
	ErrClipNotFound = errors.New("timeline: clip not found")
	// ErrInvalidTrack is returned when parsing an unknown track name.
	ErrInvalidTrack = errors.New("timeline: invalid track")
	// ErrInvalidClip is returned by Validate when a clip breaks a window invariant.
	ErrInvalidClip = errors.New("timeline: invalid clip")
)

// Track identifies the lane a clip occupies.
type Track string

const (
	// TrackMain is the primary track; it alone drives the timeline clock.
	TrackMain Track = "main"
	// TrackPip is the picture-in-picture overlay track.
	TrackPip Track = "pip"
)

// Tracks lists every track in display order.
var Tracks = []Track{TrackMain, TrackPip}

// ParseTrack converts a track name to a Track.
func ParseTrack(s string) (Track, error) {
	switch Track(s) {
	case TrackMain, TrackPip:
		return Track(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTrack, s)
}

// Other returns the opposite track.
func (t Track) Other() Track {
	if t == TrackPip {
		return TrackMain
	}
	return TrackPip
}

// PipSettings is the normalized placement of an overlay clip. Every field is in [0,1].
type PipSettings struct {
	X       float64 `json:"x" yaml:"x"`
	Y       float64 `json:"y" yaml:"y"`
	Width   float64 `json:"width" yaml:"width"`
	Height  float64 `json:"height" yaml:"height"`
	Opacity float64 `json:"opacity" yaml:"opacity"`
}

// DefaultPipSettings places the overlay in the bottom-right quarter at full opacity.
func DefaultPipSettings() PipSettings {
	return PipSettings{X: 0.7, Y: 0.7, Width: 0.25, Height: 0.25, Opacity: 1}
}

// Clamp returns a copy with every field limited to [0,1].
func (p PipSettings) Clamp() PipSettings {
	return PipSettings{
		X:       clamp(p.X, 0, 1),
		Y:       clamp(p.Y, 0, 1),
		Width:   clamp(p.Width, 0, 1),
		Height:  clamp(p.Height, 0, 1),
		Opacity: clamp(p.Opacity, 0, 1),
	}
}

// Clip is a segment of a source media file placed on a track.
//
// Positions are never stored: a clip's timeline start is derived from the
// active lengths of the clips before it on the same track.
type Clip struct {
	ID         string `json:"id"`
	SourcePath string `json:"path"`
	Filename   string `json:"filename"`

	// Duration is the length of this clip's own footprint in seconds.
	Duration float64 `json:"duration"`
	InPoint  float64 `json:"inPoint"`
	OutPoint float64 `json:"outPoint"`

	// SourceOffset is the position in the original source file where local
	// time 0 begins. Nil for unsplit imports.
	SourceOffset *float64 `json:"sourceOffset,omitempty"`

	Volume float64 `json:"volume"`
	Muted  bool    `json:"muted"`

	Track       Track        `json:"track"`
	PipSettings *PipSettings `json:"pipSettings,omitempty"`

	// Probe metadata.
	Width      int      `json:"width,omitempty"`
	Height     int      `json:"height,omitempty"`
	Codec      string   `json:"codec,omitempty"`
	Thumbnails []string `json:"thumbnails,omitempty"`
}

// NewClip creates a clean main-track clip covering the whole source.
func NewClip(sourcePath, filename string, duration float64) Clip {
	return Clip{
		ID:         uuid.NewString(),
		SourcePath: sourcePath,
		Filename:   filename,
		Duration:   duration,
		InPoint:    0,
		OutPoint:   duration,
		Volume:     DefaultVolume,
		Track:      TrackMain,
	}
}

// ActiveDuration returns the length of the untrimmed window.
func (c Clip) ActiveDuration() float64 {
	return c.OutPoint - c.InPoint
}

// BaseOffset returns SourceOffset, or 0 when the clip was never split.
func (c Clip) BaseOffset() float64 {
	if c.SourceOffset == nil {
		return 0
	}
	return *c.SourceOffset
}

// SourceTime maps a clip-local time (in the InPoint..OutPoint coordinate
// space) to a position in the source file.
func (c Clip) SourceTime(local float64) float64 {
	return c.BaseOffset() + local
}

// SourceStart is the source-file position where the active window begins.
func (c Clip) SourceStart() float64 {
	return c.SourceTime(c.InPoint)
}

// SourceEnd is the source-file position where the active window ends.
func (c Clip) SourceEnd() float64 {
	return c.SourceTime(c.OutPoint)
}

// IsClean reports whether the clip covers its whole footprint.
func (c Clip) IsClean() bool {
	return c.InPoint == 0 && c.OutPoint == c.Duration
}

// Validate checks the window invariants 0 <= in < out <= duration and
// out - in >= MinDuration.
func Validate(c Clip) error {
	switch {
	case c.InPoint < -epsilon:
		return fmt.Errorf("%w: in point %.3f below zero", ErrInvalidClip, c.InPoint)
	case c.OutPoint > c.Duration+epsilon:
		return fmt.Errorf("%w: out point %.3f past duration %.3f", ErrInvalidClip, c.OutPoint, c.Duration)
	case c.InPoint >= c.OutPoint:
		return fmt.Errorf("%w: in point %.3f not before out point %.3f", ErrInvalidClip, c.InPoint, c.OutPoint)
	case c.ActiveDuration() < MinDuration-epsilon:
		return fmt.Errorf("%w: active window %.3f shorter than one frame", ErrInvalidClip, c.ActiveDuration())
	case c.Track == TrackPip && c.PipSettings == nil:
		return fmt.Errorf("%w: pip clip without pip settings", ErrInvalidClip)
	}
	return nil
}

// Clone returns a deep copy of a clip list.
func Clone(clips []Clip) []Clip {
	if clips == nil {
		return nil
	}
	out := make([]Clip, len(clips))
	for i, c := range clips {
		out[i] = c.clone()
	}
	return out
}

func (c Clip) clone() Clip {
	if c.SourceOffset != nil {
		v := *c.SourceOffset
		c.SourceOffset = &v
	}
	if c.PipSettings != nil {
		p := *c.PipSettings
		c.PipSettings = &p
	}
	if c.Thumbnails != nil {
		c.Thumbnails = append([]string(nil), c.Thumbnails...)
	}
	return c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func float64Ptr(v float64) *float64 {
	return &v
}
