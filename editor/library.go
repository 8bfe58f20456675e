package editor

import (
	"database/sql"

	"github.com/user/reelcut/db"
	"github.com/user/reelcut/media"
	"github.com/user/reelcut/timeline"
)

// DefaultThumbnails is the number of thumbnails queued per imported file.
const DefaultThumbnails = 8

// Library records imported media and opened projects.
type Library interface {
	// Add records info and returns the thumbnails already known for it.
	// Missing thumbnails are queued for the background worker.
	Add(info *media.Info) ([]string, error)
	// TouchProject records that the project at path was opened or saved.
	TouchProject(path string, clips []timeline.Clip) error
}

// DBLibrary is a Library backed by the sqlite media library.
type DBLibrary struct {
	DB         *sql.DB
	Thumbnails int
}

var _ Library = (*DBLibrary)(nil)

// Add upserts the media row and queues thumbnail extraction when none are stored.
func (l *DBLibrary) Add(info *media.Info) ([]string, error) {
	id, err := db.UpsertMedia(l.DB, db.Media{
		Path:     info.Path,
		Filename: info.Filename,
		Duration: info.Duration,
		Width:    info.Width,
		Height:   info.Height,
		Codec:    info.Codec,
		Filesize: info.Size,
		HasAudio: info.HasAudio,
		FPS:      info.FPS,
	})
	if err != nil {
		return nil, err
	}

	thumbs, err := db.SelectThumbnails(l.DB, id)
	if err != nil {
		return nil, err
	}
	if len(thumbs) > 0 {
		return thumbs, nil
	}

	count := l.Thumbnails
	if count <= 0 {
		count = DefaultThumbnails
	}
	return nil, db.QueueThumbnails(l.DB, id, count)
}

// TouchProject adds path to the recent projects list.
func (l *DBLibrary) TouchProject(path string, clips []timeline.Clip) error {
	return db.TouchProject(l.DB, db.Project{
		Path:      path,
		ClipCount: len(clips),
		Duration:  timeline.TrackDuration(timeline.TrackMain, clips),
	})
}
