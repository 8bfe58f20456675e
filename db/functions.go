package db

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// UpsertMedia records an imported file, refreshing its metadata when the
// path is already known. Returns the media ID.
func UpsertMedia(db *sql.DB, m Media) (int64, error) {
	if m.Filename == "" {
		m.Filename = filepath.Base(m.Path)
	}
	if m.Extension == "" {
		m.Extension = strings.TrimPrefix(strings.ToLower(filepath.Ext(m.Path)), ".")
	}
	if m.ImportedAt.IsZero() {
		m.ImportedAt = time.Now()
	}

	var id int64
	err := db.QueryRow(UpsertMediaSQL,
		m.Path, m.Filename, m.Extension, m.Duration, m.Width, m.Height,
		m.Codec, m.Filesize, m.HasAudio, m.FPS, m.ImportedAt.UTC(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert media: %w", err)
	}
	return id, nil
}

func scanMedia(row interface{ Scan(...any) error }) (*Media, error) {
	var m Media
	err := row.Scan(&m.ID, &m.Path, &m.Filename, &m.Extension, &m.Duration, &m.Width, &m.Height,
		&m.Codec, &m.Filesize, &m.HasAudio, &m.FPS, &m.ImportedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// SelectMediaByPath returns the media row for path, or sql.ErrNoRows.
func SelectMediaByPath(db *sql.DB, path string) (*Media, error) {
	return scanMedia(db.QueryRow(SelectMediaByPathSQL, path))
}

// SelectMedia returns the whole library, most recently imported first.
func SelectMedia(db *sql.DB) ([]Media, error) {
	rows, err := db.Query(SelectMediaSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		media = append(media, *m)
	}
	return media, rows.Err()
}

// CountMedia returns the number of files in the library.
func CountMedia(db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRow(CountMediaSQL).Scan(&n); err != nil {
		return 0, fmt.Errorf("count media: %w", err)
	}
	return n, nil
}

// DeleteMedia removes path from the library together with its thumbnails.
// Returns sql.ErrNoRows when path was not in the library.
func DeleteMedia(db *sql.DB, path string) error {
	result, err := db.Exec(DeleteMediaSQL, path)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// QueueThumbnails inserts or resets a thumbnail job to pending so the background worker can pick it up.
func QueueThumbnails(db *sql.DB, mediaID int64, count int) error {
	_, err := db.Exec(UpsertThumbnailJobPendingSQL, mediaID, count)
	if err != nil {
		return fmt.Errorf("queue thumbnails: %w", err)
	}
	return nil
}

// SelectNextPendingThumbnailJob returns the oldest pending job, or nil when
// the queue is empty.
func SelectNextPendingThumbnailJob(db *sql.DB) (*PendingThumbnailJob, error) {
	var j PendingThumbnailJob
	err := db.QueryRow(SelectNextPendingThumbnailJobSQL).Scan(&j.JobID, &j.MediaID, &j.Count, &j.Path, &j.Duration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select pending thumbnail job: %w", err)
	}
	return &j, nil
}

// SelectThumbnailJobByMedia returns the job for mediaID, or sql.ErrNoRows.
func SelectThumbnailJobByMedia(db *sql.DB, mediaID int64) (*ThumbnailJob, error) {
	var j ThumbnailJob
	err := db.QueryRow(SelectThumbnailJobByMediaSQL, mediaID).Scan(&j.ID, &j.MediaID, &j.Count, &j.Status, &j.Log)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

// MarkThumbnailsProcessing moves a job to processing status with the given start time.
func MarkThumbnailsProcessing(db *sql.DB, jobID int64, startedAt time.Time) error {
	_, err := db.Exec(MarkThumbnailsProcessingSQL, startedAt.UTC(), jobID)
	if err != nil {
		return fmt.Errorf("mark thumbnails processing: %w", err)
	}
	return nil
}

// MarkThumbnailsComplete moves a job to complete status with the given finish time.
func MarkThumbnailsComplete(db *sql.DB, jobID int64, finishedAt time.Time) error {
	_, err := db.Exec(MarkThumbnailsCompleteSQL, finishedAt.UTC(), jobID)
	if err != nil {
		return fmt.Errorf("mark thumbnails complete: %w", err)
	}
	return nil
}

// MarkThumbnailsError moves a job to error status with the given error time and log message.
func MarkThumbnailsError(db *sql.DB, jobID int64, errorAt time.Time, logMsg string) error {
	_, err := db.Exec(MarkThumbnailsErrorSQL, errorAt.UTC(), logMsg, jobID)
	if err != nil {
		return fmt.Errorf("mark thumbnails error: %w", err)
	}
	return nil
}

// ReplaceThumbnails stores paths as the thumbnails of mediaID in a transaction,
// dropping any previous set.
func ReplaceThumbnails(database *sql.DB, mediaID int64, paths []string) error {
	tx, err := database.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(DeleteThumbnailsSQL, mediaID); err != nil {
		return fmt.Errorf("delete thumbnails: %w", err)
	}
	for i, p := range paths {
		if _, err := tx.Exec(InsertThumbnailSQL, mediaID, i, p); err != nil {
			return fmt.Errorf("insert thumbnail: %w", err)
		}
	}
	return tx.Commit()
}

// SelectThumbnails returns the thumbnail paths of mediaID in position order.
func SelectThumbnails(db *sql.DB, mediaID int64) ([]string, error) {
	rows, err := db.Query(SelectThumbnailsSQL, mediaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// TouchProject records that the project at path was opened or saved at openedAt.
func TouchProject(db *sql.DB, p Project) error {
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(p.Path), filepath.Ext(p.Path))
	}
	if p.OpenedAt.IsZero() {
		p.OpenedAt = time.Now()
	}
	_, err := db.Exec(UpsertProjectSQL, p.Path, p.Name, p.ClipCount, p.Duration, p.OpenedAt.UTC())
	if err != nil {
		return fmt.Errorf("upsert project: %w", err)
	}
	return nil
}

// SelectRecentProjects returns up to limit projects, most recently opened first.
func SelectRecentProjects(db *sql.DB, limit int) ([]Project, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.Query(SelectRecentProjectsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []Project
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.ID, &p.Path, &p.Name, &p.ClipCount, &p.Duration, &p.OpenedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// ForgetProject removes path from the recent projects list.
func ForgetProject(db *sql.DB, path string) error {
	if _, err := db.Exec(DeleteProjectSQL, path); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}
