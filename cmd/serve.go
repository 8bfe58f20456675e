package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/user/reelcut/config"
	"github.com/user/reelcut/server"
)

var (
	serveAddr    string
	serveNoVideo bool
)

var serveCmd = &cobra.Command{
	Use:   "serve [project | media...]",
	Short: "Run a session behind the HTTP API",
	Long: `Run an editing session without the terminal UI. Edits and playback
are driven over HTTP; state and playhead changes are pushed to websocket
clients on /ws.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		srv := server.New(server.Config{Addr: cfg.Server.Addr, Session: a.session})
		if !serveNoVideo {
			p, err := startPlayer(ctx, cfg, a.session)
			if err != nil {
				log.Warn().Err(err).Msg("playback disabled")
			} else {
				defer p.Close()
				p.sync.Subscribe(srv.PlaybackUpdate)
			}
		}

		if err := a.load(ctx, args); err != nil {
			return err
		}
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().BoolVar(&serveNoVideo, "no-video", false, "do not launch mpv")

	rootCmd.AddCommand(serveCmd)
}
