package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/user/reelcut/config"
	"github.com/user/reelcut/logging"
	"github.com/user/reelcut/project"
	"github.com/user/reelcut/server"
	"github.com/user/reelcut/tui"
)

var (
	editServe   bool
	editNoVideo bool
)

var editCmd = &cobra.Command{
	Use:     "edit [project | media...]",
	Aliases: []string{"open"},
	Short:   "Open the editor",
	Long: `Open the terminal editor. Pass a project file to continue editing it,
or media files to start a new timeline with them on the main track.

Playback opens two mpv windows: the main track and the picture-in-picture
overlay. Without mpv the editor still works, just without preview.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		// The TUI owns the terminal, so logs go to a file.
		closer, err := logging.InitFile(cfg.DataDir, cfg.LogLevel, verbose)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer closer.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		var p *player
		if !editNoVideo {
			if p, err = startPlayer(ctx, cfg, a.session); err != nil {
				log.Warn().Err(err).Msg("playback disabled")
				p = nil
			} else {
				defer p.Close()
			}
		}
		if editServe {
			defer serveInBackground(ctx, cfg, a, p)()
		}

		if err := a.load(ctx, args); err != nil {
			return err
		}

		return tui.Run(ctx, tui.Options{
			Session:       a.session,
			Exporter:      a.exporter(),
			ExportOptions: a.exportOptions(),
			HasPlayer:     p != nil,
			TickInterval:  cfg.Playback.TickInterval,
			SeekStep:      cfg.Playback.SeekStep,
		})
	},
}

// serveInBackground runs the HTTP API next to the TUI and returns a function
// that waits for it to stop.
func serveInBackground(ctx context.Context, cfg *config.Config, a *app, p *player) func() {
	srv := server.New(server.Config{Addr: cfg.Server.Addr, Session: a.session})
	if p != nil {
		p.sync.Subscribe(srv.PlaybackUpdate)
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Run(ctx); err != nil {
			log.Error().Err(err).Msg("server stopped")
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// isProjectFile reports whether path names a project rather than media.
func isProjectFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case project.Extension, ".json", ".yaml", ".yml":
		return true
	}
	return false
}

func init() {
	editCmd.Flags().BoolVar(&editServe, "serve", false, "also serve the HTTP API while editing")
	editCmd.Flags().BoolVar(&editNoVideo, "no-video", false, "do not launch mpv")

	rootCmd.AddCommand(editCmd)
}
