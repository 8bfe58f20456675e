package cmd

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/user/reelcut/config"
	"github.com/user/reelcut/editor"
	"github.com/user/reelcut/logging"
	"github.com/user/reelcut/mpv"
	"github.com/user/reelcut/playback"
)

// pipGeometry places the overlay window in the bottom-right corner.
const pipGeometry = "30%x30%-20-20"

// player is a pair of mpv windows driven by a Synchronizer.
type player struct {
	sync      *playback.Synchronizer
	processes []*exec.Cmd
	clients   []*mpv.Client
}

// startPlayer launches the main and overlay mpv windows, connects their
// clocks to a Synchronizer and attaches it to sess. The overlay is optional:
// when it fails to start the main window plays alone.
func startPlayer(ctx context.Context, cfg *config.Config, sess *editor.Session) (*player, error) {
	p := &player{}
	mainClock, err := p.open(ctx, cfg, mpv.LaunchOptions{
		SocketPath: cfg.Mpv.MainSocket,
		Title:      "reelcut",
	})
	if err != nil {
		p.Close()
		return nil, err
	}

	var pip playback.MediaClock
	var pipEvents <-chan playback.ClockEvent
	pipClock, err := p.open(ctx, cfg, mpv.LaunchOptions{
		SocketPath: cfg.Mpv.PipSocket,
		Title:      "reelcut overlay",
		Geometry:   pipGeometry,
	})
	if err != nil {
		log.Warn().Err(err).Msg("overlay player unavailable")
	} else {
		pip = pipClock
		pipEvents = pipClock.Events()
	}

	p.sync = playback.New(playback.ClipSourceFunc(sess.Clips), mainClock, pip, playback.Options{
		SeekTolerance:     cfg.Playback.SeekTolerance,
		PipSyncInterval:   cfg.Playback.PipSyncInterval,
		PipDriftThreshold: cfg.Playback.PipDriftThreshold,
	})
	sess.SetTransport(p.sync)

	interval := cfg.Playback.TickInterval
	if interval <= 0 {
		interval = 33 * time.Millisecond
	}
	go func() {
		if err := p.sync.Run(ctx, interval, mainClock.Events(), pipEvents); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Msg("playback stopped")
		}
	}()
	return p, nil
}

func (p *player) open(ctx context.Context, cfg *config.Config, opts mpv.LaunchOptions) (*mpv.Clock, error) {
	opts.Binary = cfg.Mpv.Binary
	process, err := mpv.LaunchMpv(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to launch mpv: %w", err)
	}
	p.processes = append(p.processes, process)

	client := mpv.NewClient(opts.SocketPath)
	p.clients = append(p.clients, client)

	clock := mpv.NewClock(client, logging.WithComponent("mpv").With().Str("socket", opts.SocketPath).Logger())
	if err := clock.Start(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to mpv: %w", err)
	}
	return clock, nil
}

// Close disconnects from and stops every mpv window.
func (p *player) Close() {
	for _, c := range p.clients {
		c.Close()
	}
	for _, proc := range p.processes {
		if proc.Process != nil {
			proc.Process.Kill()
			proc.Wait()
		}
	}
}
