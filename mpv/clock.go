package mpv

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/reelcut/playback"
)

const loadTimeout = 5 * time.Second

// ErrLoadTimeout is returned when mpv does not report file-loaded in time.
var ErrLoadTimeout = errors.New("mpv: timed out waiting for file to load")

// observed property ids
const (
	obsPause = iota + 1
	obsPausedForCache
	obsEOFReached
)

// Clock adapts an mpv instance to playback.MediaClock and translates its
// property changes into playback.ClockEvent values.
type Clock struct {
	client *Client
	log    zerolog.Logger

	mu       sync.Mutex
	path     string // last requested
	current  string // last reported by file-loaded
	pending  bool
	duration float64
	paused   bool
	loaded   chan struct{}

	events chan playback.ClockEvent
}

var _ playback.MediaClock = (*Clock)(nil)

// NewClock wraps client. Call Start before using it.
func NewClock(client *Client, log zerolog.Logger) *Clock {
	return &Clock{
		client: client,
		log:    log,
		paused: true,
		events: make(chan playback.ClockEvent, 32),
	}
}

// Start connects to mpv, subscribes to the properties the clock reports on
// and translates events until ctx is cancelled.
func (c *Clock) Start(ctx context.Context) error {
	if err := c.client.Connect(); err != nil {
		return err
	}
	for id, name := range map[int]string{
		obsPause:          "pause",
		obsPausedForCache: "paused-for-cache",
		obsEOFReached:     "eof-reached",
	} {
		if err := c.client.ObserveProperty(ctx, id, name); err != nil {
			return fmt.Errorf("mpv: observe %s: %w", name, err)
		}
	}
	go c.translate(ctx)
	return nil
}

// Events returns clock events for the synchronizer.
func (c *Clock) Events() <-chan playback.ClockEvent {
	return c.events
}

// Path returns the file mpv was last asked to load.
func (c *Clock) Path() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.path
}

// LoadedPath returns the file mpv last reported as opened. It lags Path
// while a load is in flight.
func (c *Clock) LoadedPath() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Load replaces the current file and waits until mpv has opened it.
func (c *Clock) Load(ctx context.Context, path string) error {
	loaded := make(chan struct{})
	c.mu.Lock()
	c.path = path
	c.pending = true
	c.duration = 0
	c.loaded = loaded
	c.mu.Unlock()

	if _, err := c.client.Command(ctx, "loadfile", path, "replace"); err != nil {
		c.mu.Lock()
		c.pending = false
		c.loaded = nil
		c.mu.Unlock()
		return err
	}

	timer := time.NewTimer(loadTimeout)
	defer timer.Stop()
	select {
	case <-loaded:
		c.log.Debug().Str("path", path).Msg("file loaded")
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: %s", ErrLoadTimeout, path)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Seek jumps to an absolute source position.
func (c *Clock) Seek(ctx context.Context, seconds float64) error {
	_, err := c.client.Command(ctx, "seek", seconds, "absolute+exact")
	return err
}

// Play resumes playback.
func (c *Clock) Play(ctx context.Context) error {
	return c.client.SetProperty(ctx, "pause", false)
}

// Pause pauses playback.
func (c *Clock) Pause(ctx context.Context) error {
	return c.client.SetProperty(ctx, "pause", true)
}

// Position returns the current source position in seconds.
func (c *Clock) Position(ctx context.Context) (float64, error) {
	return c.client.GetTimePos(ctx)
}

// SetVolume sets mpv's volume (0-200) and mute flag.
func (c *Clock) SetVolume(ctx context.Context, volume float64, muted bool) error {
	if err := c.client.SetProperty(ctx, "volume", volume); err != nil {
		return err
	}
	return c.client.SetProperty(ctx, "mute", muted)
}

func (c *Clock) translate(ctx context.Context) {
	raw := c.client.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-raw:
			c.handle(ctx, ev)
		}
	}
}

func (c *Clock) handle(ctx context.Context, ev Event) {
	switch ev.Name {
	case "file-loaded":
		c.mu.Lock()
		c.current = c.path
		c.pending = false
		if c.loaded != nil {
			close(c.loaded)
			c.loaded = nil
		}
		c.mu.Unlock()
		if d, err := c.client.GetDuration(ctx); err == nil {
			c.mu.Lock()
			c.duration = d
			c.mu.Unlock()
		}
	case "end-file":
		if ev.Reason == "eof" {
			c.ended()
		}
	case "property-change":
		c.propertyChanged(ctx, ev)
	}
}

func (c *Clock) propertyChanged(ctx context.Context, ev Event) {
	on, ok := ev.Data.(bool)
	if !ok {
		return
	}
	switch ev.Property {
	case "pause":
		c.mu.Lock()
		c.paused = on
		c.mu.Unlock()
		if on {
			c.send(playback.EventPaused, 0)
			return
		}
		pos, _ := c.client.GetTimePos(ctx)
		c.send(playback.EventPlaying, pos)
	case "paused-for-cache":
		if on {
			c.send(playback.EventBuffering, 0)
			return
		}
		c.mu.Lock()
		paused := c.paused
		c.mu.Unlock()
		if !paused {
			pos, _ := c.client.GetTimePos(ctx)
			c.send(playback.EventPlaying, pos)
		}
	case "eof-reached":
		if on {
			c.ended()
		}
	}
}

// ended reports end of file unless a load is in flight, in which case the
// eof belongs to the file being replaced.
func (c *Clock) ended() {
	c.mu.Lock()
	pending, old := c.pending, c.current
	c.mu.Unlock()
	if pending {
		c.log.Debug().Str("path", old).Msg("eof during load ignored")
		return
	}
	c.send(playback.EventEnded, c.durationOrZero())
}

func (c *Clock) durationOrZero() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.duration
}

func (c *Clock) send(kind playback.EventKind, pos float64) {
	ev := playback.ClockEvent{Kind: kind, Path: c.LoadedPath(), Position: pos}
	select {
	case c.events <- ev:
	default:
		c.log.Warn().Str("event", kind.String()).Msg("clock event dropped")
	}
}
