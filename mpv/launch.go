package mpv

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/user/reelcut/deps"
)

// ErrSocketTimeout is returned when a launched mpv never creates its IPC socket.
var ErrSocketTimeout = errors.New("mpv: timed out waiting for IPC socket")

// LaunchOptions describe one mpv window.
type LaunchOptions struct {
	Binary     string // defaults to "mpv"
	SocketPath string
	Title      string
	// Geometry is passed to --geometry, e.g. "25%x25%-20-20" for the overlay window.
	Geometry string
	// Wait bounds how long Launch waits for the socket to appear.
	Wait time.Duration
}

// Args returns the mpv command line for opts. The player starts idle and
// paused, keeps the last frame at end of file and allows boosting volume to 200%.
func (o LaunchOptions) Args() []string {
	args := []string{
		"--input-ipc-server=" + o.SocketPath,
		"--idle=yes",
		"--force-window=yes",
		"--keep-open=always",
		"--pause",
		"--volume-max=200",
		"--osc=no",
	}
	if o.Title != "" {
		args = append(args, "--title="+o.Title)
	}
	if o.Geometry != "" {
		args = append(args, "--geometry="+o.Geometry, "--ontop")
	}
	return args
}

// LaunchMpv starts an idle mpv with its IPC socket enabled.
// It checks that mpv is installed first and returns an error with install link if not.
// Returns the *exec.Cmd for the running process which can be used for cleanup.
func LaunchMpv(ctx context.Context, opts LaunchOptions) (*exec.Cmd, error) {
	if opts.Binary == "" {
		opts.Binary = "mpv"
	}
	if opts.SocketPath == "" {
		opts.SocketPath = DefaultSocketPath
	}
	if opts.Wait == 0 {
		opts.Wait = 3 * time.Second
	}

	// Check that mpv is installed
	if err := deps.Check(opts.Binary, deps.MpvInstallURL); err != nil {
		return nil, err
	}

	// A stale socket from a crashed session would satisfy the wait below.
	_ = os.Remove(opts.SocketPath)

	cmd := exec.CommandContext(ctx, opts.Binary, opts.Args()...)

	// Start the process (non-blocking)
	if err := cmd.Start(); err != nil {
		return nil, err
	}

	if err := waitForSocket(ctx, opts.SocketPath, opts.Wait); err != nil {
		_ = cmd.Process.Kill()
		return nil, err
	}
	return cmd, nil
}

func waitForSocket(ctx context.Context, path string, wait time.Duration) error {
	deadline := time.Now().Add(wait)
	for {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrSocketTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(50 * time.Millisecond):
		}
	}
}
