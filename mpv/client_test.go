package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/reelcut/playback"
)

// fakeMpv is a minimal mpv IPC server on a unix socket.
type fakeMpv struct {
	path string
	ln   net.Listener

	mu       sync.Mutex
	conn     net.Conn
	handle   func(cmd []interface{}) (interface{}, string)
	commands [][]interface{}
}

func newFakeMpv(t *testing.T) *fakeMpv {
	t.Helper()
	// Keep the socket path short; unix socket paths are length limited.
	dir, err := os.MkdirTemp("", "mpv")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "s.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	f := &fakeMpv{path: path, ln: ln}
	go f.serve()
	return f
}

func (f *fakeMpv) setHandler(h func(cmd []interface{}) (interface{}, string)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handle = h
}

func (f *fakeMpv) serve() {
	conn, err := f.ln.Accept()
	if err != nil {
		return
	}
	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req ipcRequest
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			continue
		}
		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		handle := f.handle
		f.mu.Unlock()

		var data interface{}
		status := "success"
		if handle != nil {
			var errStr string
			data, errStr = handle(req.Command)
			if errStr != "" {
				status = errStr
			}
		}
		f.write(map[string]interface{}{"data": data, "request_id": req.RequestID, "error": status})
	}
}

func (f *fakeMpv) write(v interface{}) {
	b, _ := json.Marshal(v)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conn != nil {
		f.conn.Write(append(b, '\n'))
	}
}

func (f *fakeMpv) sent(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.commands {
		if len(c) > 0 && c[0] == name {
			n++
		}
	}
	return n
}

func connect(t *testing.T, f *fakeMpv) *Client {
	t.Helper()
	c := NewClient(f.path)
	require.NoError(t, c.Connect())
	t.Cleanup(func() { c.Close() })
	return c
}

func ctxT(t *testing.T) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestNewClientDefaultSocket(t *testing.T) {
	assert.Equal(t, DefaultSocketPath, NewClient("").SocketPath())
	assert.False(t, NewClient("").IsConnected())
}

func TestCommandNotConnected(t *testing.T) {
	_, err := NewClient("/nonexistent.sock").GetTimePos(context.Background())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestConnectMissingSocket(t *testing.T) {
	err := NewClient("/nonexistent/reelcut.sock").Connect()
	assert.ErrorIs(t, err, ErrSocketNotFound)
}

func TestGetProperties(t *testing.T) {
	f := newFakeMpv(t)
	f.setHandler(func(cmd []interface{}) (interface{}, string) {
		switch cmd[1] {
		case "time-pos":
			return 12.5, ""
		case "duration":
			return 90.0, ""
		case "pause":
			return true, ""
		}
		return nil, "property not found"
	})
	c := connect(t, f)
	ctx := ctxT(t)

	pos, err := c.GetTimePos(ctx)
	require.NoError(t, err)
	assert.Equal(t, 12.5, pos)

	dur, err := c.GetDuration(ctx)
	require.NoError(t, err)
	assert.Equal(t, 90.0, dur)

	paused, err := c.GetPaused(ctx)
	require.NoError(t, err)
	assert.True(t, paused)

	_, err = c.GetProperty(ctx, "bogus")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "property not found")
}

func TestEventsDoNotConsumeResponses(t *testing.T) {
	f := newFakeMpv(t)
	f.setHandler(func(cmd []interface{}) (interface{}, string) {
		f.write(map[string]interface{}{"event": "property-change", "name": "pause", "data": false})
		return 4.0, ""
	})
	c := connect(t, f)

	pos, err := c.GetTimePos(ctxT(t))
	require.NoError(t, err)
	assert.Equal(t, 4.0, pos)

	select {
	case ev := <-c.Events():
		assert.Equal(t, "property-change", ev.Name)
		assert.Equal(t, "pause", ev.Property)
		assert.Equal(t, false, ev.Data)
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
	}
}

func TestCommandContextCancelled(t *testing.T) {
	f := newFakeMpv(t)
	block := make(chan struct{})
	t.Cleanup(func() { close(block) })
	f.setHandler(func(cmd []interface{}) (interface{}, string) {
		<-block
		return nil, ""
	})
	c := connect(t, f)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.GetTimePos(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClockLoadWaitsForFileLoaded(t *testing.T) {
	f := newFakeMpv(t)
	f.setHandler(func(cmd []interface{}) (interface{}, string) {
		switch cmd[0] {
		case "loadfile":
			go func() {
				time.Sleep(20 * time.Millisecond)
				f.write(map[string]interface{}{"event": "file-loaded"})
			}()
		case "get_property":
			if cmd[1] == "duration" {
				return 30.0, ""
			}
		}
		return nil, ""
	})
	c := NewClient(f.path)
	t.Cleanup(func() { c.Close() })
	clock := NewClock(c, zerolog.Nop())
	ctx := ctxT(t)
	require.NoError(t, clock.Start(ctx))

	require.NoError(t, clock.Load(ctx, "/media/a.mp4"))
	assert.Equal(t, "/media/a.mp4", clock.Path())
	assert.Equal(t, 3, f.sent("observe_property"))
	assert.Equal(t, 1, f.sent("loadfile"))

	require.Eventually(t, func() bool { return clock.durationOrZero() == 30 }, time.Second, 10*time.Millisecond)
}

func TestClockTranslatesEvents(t *testing.T) {
	f := newFakeMpv(t)
	f.setHandler(func(cmd []interface{}) (interface{}, string) {
		if cmd[0] == "get_property" && cmd[1] == "time-pos" {
			return 3.0, ""
		}
		return nil, ""
	})
	c := NewClient(f.path)
	t.Cleanup(func() { c.Close() })
	clock := NewClock(c, zerolog.Nop())
	ctx := ctxT(t)
	require.NoError(t, clock.Start(ctx))
	clock.mu.Lock()
	clock.current = "/media/a.mp4"
	clock.mu.Unlock()

	next := func() playback.ClockEvent {
		t.Helper()
		select {
		case ev := <-clock.Events():
			return ev
		case <-time.After(time.Second):
			t.Fatal("no clock event")
		}
		return playback.ClockEvent{}
	}

	f.write(map[string]interface{}{"event": "property-change", "name": "pause", "data": false})
	ev := next()
	assert.Equal(t, playback.EventPlaying, ev.Kind)
	assert.Equal(t, "/media/a.mp4", ev.Path)
	assert.Equal(t, 3.0, ev.Position)

	f.write(map[string]interface{}{"event": "property-change", "name": "paused-for-cache", "data": true})
	assert.Equal(t, playback.EventBuffering, next().Kind)

	f.write(map[string]interface{}{"event": "property-change", "name": "pause", "data": true})
	assert.Equal(t, playback.EventPaused, next().Kind)

	f.write(map[string]interface{}{"event": "property-change", "name": "eof-reached", "data": true})
	assert.Equal(t, playback.EventEnded, next().Kind)

	// Non-boolean and unrelated changes are ignored.
	f.write(map[string]interface{}{"event": "property-change", "name": "eof-reached", "data": nil})
	f.write(map[string]interface{}{"event": "end-file", "reason": "stop"})
	f.write(map[string]interface{}{"event": "end-file", "reason": "eof"})
	assert.Equal(t, playback.EventEnded, next().Kind)
}

func TestClockDropsEOFDuringLoad(t *testing.T) {
	f := newFakeMpv(t)
	loads := 0
	f.setHandler(func(cmd []interface{}) (interface{}, string) {
		switch cmd[0] {
		case "loadfile":
			loads++
			if loads == 2 {
				// The outgoing file hits its end while the replacement opens.
				f.write(map[string]interface{}{"event": "property-change", "name": "eof-reached", "data": true})
				f.write(map[string]interface{}{"event": "end-file", "reason": "eof"})
			}
			go func() {
				time.Sleep(20 * time.Millisecond)
				f.write(map[string]interface{}{"event": "file-loaded"})
			}()
		case "get_property":
			if cmd[1] == "duration" {
				return 12.0, ""
			}
		}
		return nil, ""
	})
	c := NewClient(f.path)
	t.Cleanup(func() { c.Close() })
	clock := NewClock(c, zerolog.Nop())
	ctx := ctxT(t)
	require.NoError(t, clock.Start(ctx))

	require.NoError(t, clock.Load(ctx, "/media/a.mp4"))
	assert.Equal(t, "/media/a.mp4", clock.LoadedPath())

	require.NoError(t, clock.Load(ctx, "/media/b.mp4"))
	assert.Equal(t, "/media/b.mp4", clock.LoadedPath())
	select {
	case ev := <-clock.Events():
		t.Fatalf("unexpected %s event for %s at %v", ev.Kind, ev.Path, ev.Position)
	default:
	}

	f.write(map[string]interface{}{"event": "end-file", "reason": "eof"})
	select {
	case ev := <-clock.Events():
		assert.Equal(t, playback.EventEnded, ev.Kind)
		assert.Equal(t, "/media/b.mp4", ev.Path)
		assert.Equal(t, 12.0, ev.Position)
	case <-time.After(time.Second):
		t.Fatal("no ended event after load")
	}
}

func TestClockCommands(t *testing.T) {
	f := newFakeMpv(t)
	c := connect(t, f)
	clock := NewClock(c, zerolog.Nop())
	ctx := ctxT(t)

	require.NoError(t, clock.Seek(ctx, 7.5))
	require.NoError(t, clock.Play(ctx))
	require.NoError(t, clock.Pause(ctx))
	require.NoError(t, clock.SetVolume(ctx, 150, true))

	assert.Equal(t, 1, f.sent("seek"))
	assert.Equal(t, 4, f.sent("set_property"))

	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, []interface{}{"seek", 7.5, "absolute+exact"}, f.commands[0])
	assert.Equal(t, []interface{}{"set_property", "volume", 150.0}, f.commands[3])
	assert.Equal(t, []interface{}{"set_property", "mute", true}, f.commands[4])
}

func TestLaunchOptionsArgs(t *testing.T) {
	args := LaunchOptions{SocketPath: "/tmp/x.sock", Title: "pip", Geometry: "25%x25%-20-20"}.Args()
	assert.Contains(t, args, "--input-ipc-server=/tmp/x.sock")
	assert.Contains(t, args, "--keep-open=always")
	assert.Contains(t, args, "--title=pip")
	assert.Contains(t, args, "--geometry=25%x25%-20-20")
	assert.Contains(t, args, "--ontop")

	plain := LaunchOptions{SocketPath: "/tmp/y.sock"}.Args()
	assert.NotContains(t, plain, "--ontop")
}
