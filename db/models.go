package db

import "time"

// Media represents a row in the media table: one imported source file.
type Media struct {
	ID         int64
	Path       string
	Filename   string
	Extension  string
	Duration   float64
	Width      int
	Height     int
	Codec      string
	Filesize   int64
	HasAudio   bool
	FPS        float64
	ImportedAt time.Time
}

// Project represents a row in the projects table: a recently opened project file.
type Project struct {
	ID        int64
	Path      string
	Name      string
	ClipCount int
	Duration  float64
	OpenedAt  time.Time
}

// Thumbnail job statuses.
const (
	JobPending    = "pending"
	JobProcessing = "processing"
	JobComplete   = "complete"
	JobError      = "error"
)

// ThumbnailJob represents a row in the thumbnail_jobs table.
type ThumbnailJob struct {
	ID      int64
	MediaID int64
	Count   int
	Status  string
	Log     string
}

// PendingThumbnailJob is a queued job joined with the media it belongs to.
type PendingThumbnailJob struct {
	JobID    int64
	MediaID  int64
	Count    int
	Path     string
	Duration float64
}
