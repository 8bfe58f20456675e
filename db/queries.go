package db

import (
	_ "embed"
)

// Schema and migrations

//go:embed sql/create_tables.sql
var CreateTablesSQL string

// Media queries

//go:embed sql/upsert_media.sql
var UpsertMediaSQL string

//go:embed sql/select_media_by_path.sql
var SelectMediaByPathSQL string

//go:embed sql/select_media.sql
var SelectMediaSQL string

//go:embed sql/count_media.sql
var CountMediaSQL string

//go:embed sql/delete_media.sql
var DeleteMediaSQL string

// Thumbnail queries

//go:embed sql/upsert_thumbnail_job_pending.sql
var UpsertThumbnailJobPendingSQL string

//go:embed sql/select_next_pending_thumbnail_job.sql
var SelectNextPendingThumbnailJobSQL string

//go:embed sql/select_thumbnail_job_by_media.sql
var SelectThumbnailJobByMediaSQL string

//go:embed sql/mark_thumbnails_processing.sql
var MarkThumbnailsProcessingSQL string

//go:embed sql/mark_thumbnails_complete.sql
var MarkThumbnailsCompleteSQL string

//go:embed sql/mark_thumbnails_error.sql
var MarkThumbnailsErrorSQL string

//go:embed sql/delete_thumbnails.sql
var DeleteThumbnailsSQL string

//go:embed sql/insert_thumbnail.sql
var InsertThumbnailSQL string

//go:embed sql/select_thumbnails.sql
var SelectThumbnailsSQL string

// Project queries

//go:embed sql/upsert_project.sql
var UpsertProjectSQL string

//go:embed sql/select_recent_projects.sql
var SelectRecentProjectsSQL string

//go:embed sql/delete_project.sql
var DeleteProjectSQL string
