package cmd

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/user/reelcut/config"
	"github.com/user/reelcut/db"
	"github.com/user/reelcut/editor"
	"github.com/user/reelcut/logging"
	"github.com/user/reelcut/media"
	"github.com/user/reelcut/thumbnail"
)

// app is the wiring shared by the commands that run an editing session.
type app struct {
	cfg      *config.Config
	db       *sql.DB
	executor *media.Executor // nil when ffmpeg is missing
	session  *editor.Session
	stop     context.CancelFunc
}

// newApp opens the media library and builds a session around it. A missing
// ffmpeg is not fatal: the session can still open projects but cannot import
// or export.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	database, err := db.Open(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to open media library: %w", err)
	}

	sess := editor.New(editor.Options{
		PixelsPerSecond: cfg.Timeline.PixelsPerSecond,
		SnapTolerancePx: cfg.Timeline.SnapTolerancePx,
		HistoryLimit:    cfg.Timeline.HistoryLimit,
		ImportLimit:     cfg.Library.Limit,
		ImportWarnAt:    cfg.Library.WarnAt,
		Thumbnails:      cfg.Library.Thumbnails,
	})
	sess.SetLibrary(&editor.DBLibrary{DB: database, Thumbnails: cfg.Library.Thumbnails})

	ctx, cancel := context.WithCancel(ctx)
	a := &app{cfg: cfg, db: database, session: sess, stop: cancel}

	exec, err := newExecutor(cfg)
	if err != nil {
		log.Warn().Err(err).Msg("ffmpeg unavailable, import and export disabled")
		return a, nil
	}
	a.executor = exec
	sess.SetProber(exec)

	proc := &thumbnail.Processor{
		DB:        database,
		Extractor: exec,
		DataDir:   cfg.DataDir,
		Log:       logging.WithComponent("thumbnails"),
	}
	proc.Start(ctx)
	return a, nil
}

func newExecutor(cfg *config.Config) (*media.Executor, error) {
	return media.New(logging.WithComponent("media"), media.Options{
		FFmpeg:  cfg.FFmpeg.Binary,
		FFprobe: cfg.FFmpeg.ProbeBinary,
		Preset:  cfg.FFmpeg.Preset,
		CRF:     cfg.FFmpeg.CRF,
	})
}

// exporter returns the executor as an editor.Exporter, or nil without ffmpeg.
func (a *app) exporter() editor.Exporter {
	if a.executor == nil {
		return nil
	}
	return a.executor
}

func (a *app) exportOptions() media.ExportOptions {
	return media.ExportOptions{
		Width:  a.cfg.Export.Width,
		Height: a.cfg.Export.Height,
		Audio:  a.cfg.Export.Audio,
	}
}

// load opens the first project file in args, or imports args as media.
func (a *app) load(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return nil
	}
	if isProjectFile(args[0]) {
		if len(args) > 1 {
			return fmt.Errorf("a project file cannot be combined with other arguments")
		}
		return a.session.Open(ctx, args[0])
	}

	res, err := a.session.Import(ctx, args...)
	if err != nil {
		return err
	}
	for _, s := range res.Skipped {
		log.Warn().Str("path", s.Path).Str("reason", s.Reason).Msg("skipped")
	}
	if res.Warning != "" {
		log.Warn().Msg(res.Warning)
	}
	return nil
}

// Close stops the thumbnail worker and closes the library.
func (a *app) Close() error {
	a.stop()
	return a.db.Close()
}
