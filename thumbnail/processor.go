// Package thumbnail runs the background worker that fills the media
// library's thumbnail strips.
package thumbnail

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/user/reelcut/db"
)

// DefaultPollInterval is how long the worker sleeps when the queue is empty.
const DefaultPollInterval = 2 * time.Second

// Extractor renders still frames of a media file.
type Extractor interface {
	ExtractThumbnails(ctx context.Context, path string, count int, duration float64, dir string) ([]string, error)
}

// Processor manages the background thumbnail generation worker.
type Processor struct {
	DB        *sql.DB
	Extractor Extractor
	// DataDir is the root under which thumbnails are written.
	DataDir  string
	Interval time.Duration
	Log      zerolog.Logger
	// OnComplete, when set, is called after a job's thumbnails are stored.
	OnComplete func(path string, thumbnails []string)
}

// Start launches a goroutine that continuously polls for pending jobs and processes them.
// The goroutine exits when ctx is cancelled.
func (p *Processor) Start(ctx context.Context) {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			worked, err := p.ProcessNext(ctx)
			if err != nil {
				p.Log.Warn().Err(err).Msg("thumbnail queue")
			}
			if worked && err == nil {
				continue
			}
			// No pending jobs or a DB error; sleep and retry
			select {
			case <-ctx.Done():
				return
			case <-time.After(interval):
			}
		}
	}()
}

// ProcessNext handles the oldest pending job, if any, and reports whether
// there was one. Extraction failures are recorded on the job, not returned.
func (p *Processor) ProcessNext(ctx context.Context) (bool, error) {
	job, err := db.SelectNextPendingThumbnailJob(p.DB)
	if err != nil || job == nil {
		return false, err
	}

	if err := db.MarkThumbnailsProcessing(p.DB, job.JobID, time.Now()); err != nil {
		return true, err
	}

	dir := Dir(p.DataDir, job.MediaID)
	paths, err := p.Extractor.ExtractThumbnails(ctx, job.Path, job.Count, job.Duration, dir)
	if err != nil {
		p.Log.Warn().Err(err).Str("path", job.Path).Msg("thumbnails failed")
		return true, db.MarkThumbnailsError(p.DB, job.JobID, time.Now(), err.Error())
	}

	if err := db.ReplaceThumbnails(p.DB, job.MediaID, paths); err != nil {
		_ = db.MarkThumbnailsError(p.DB, job.JobID, time.Now(), fmt.Sprintf("store: %v", err))
		return true, err
	}
	if err := db.MarkThumbnailsComplete(p.DB, job.JobID, time.Now()); err != nil {
		return true, err
	}

	p.Log.Debug().Str("path", job.Path).Int("count", len(paths)).Msg("thumbnails ready")
	if p.OnComplete != nil {
		p.OnComplete(job.Path, paths)
	}
	return true, nil
}
