package editor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/user/reelcut/history"
	"github.com/user/reelcut/media"
	"github.com/user/reelcut/timeline"
)

// Import limits on the number of clips in one project.
const (
	DefaultImportLimit  = 50
	DefaultImportWarnAt = 20
	// DefaultHistoryLimit caps the undo stack.
	DefaultHistoryLimit = 200
)

var (
	// ErrNoProber is returned by Import when no media backend is attached.
	ErrNoProber = errors.New("editor: no media prober attached")
	// ErrImportLimit is returned when an import would exceed the clip limit.
	ErrImportLimit = errors.New("editor: clip limit reached")
	// ErrUnsupportedFile marks a path without a known video extension.
	ErrUnsupportedFile = errors.New("editor: unsupported file type")
)

// Prober reads media metadata. *media.Executor implements it.
type Prober interface {
	Probe(ctx context.Context, path string) (*media.Info, error)
}

// SkippedFile is a path Import could not add.
type SkippedFile struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
	Err    error  `json:"-"`
}

// ImportResult reports what Import did.
type ImportResult struct {
	Added   []timeline.Clip `json:"added"`
	Skipped []SkippedFile   `json:"skipped,omitempty"`
	Warning string          `json:"warning,omitempty"`
}

// Import probes paths and appends the readable ones to the main track as a
// single undoable edit, selecting the last clip added. Unreadable or
// unsupported files are reported in Skipped; the import fails as a whole
// only when it would exceed the clip limit.
func (s *Session) Import(ctx context.Context, paths ...string) (ImportResult, error) {
	var result ImportResult

	s.mu.Lock()
	prober, library, opts := s.prober, s.library, s.opts
	s.mu.Unlock()
	if prober == nil {
		return result, ErrNoProber
	}

	count := len(s.Clips())
	if count+len(paths) > opts.ImportLimit {
		return result, fmt.Errorf("%w: %d clips on the timeline, %d more would exceed %d",
			ErrImportLimit, count, len(paths), opts.ImportLimit)
	}

	for _, p := range paths {
		clip, err := s.probeClip(ctx, prober, library, p)
		if err != nil {
			s.log.Warn().Err(err).Str("path", p).Msg("import skipped")
			result.Skipped = append(result.Skipped, SkippedFile{Path: p, Reason: err.Error(), Err: err})
			continue
		}
		result.Added = append(result.Added, clip)
	}
	if len(result.Added) == 0 {
		return result, nil
	}

	added := result.Added
	err := s.commit(ctx, "import", func(st history.State) (history.State, error) {
		for _, c := range added {
			st.Clips = timeline.Append(st.Clips, c)
		}
		st.SelectedClipID = added[len(added)-1].ID
		return st, nil
	})
	if err != nil {
		return result, err
	}

	s.mu.Lock()
	s.activeTrack = timeline.TrackMain
	s.mu.Unlock()

	if n := count + len(added); n >= opts.ImportWarnAt {
		result.Warning = fmt.Sprintf("%d clips on the timeline (limit %d); editing may slow down", n, opts.ImportLimit)
	}
	s.log.Info().Int("added", len(added)).Int("skipped", len(result.Skipped)).Msg("import complete")
	return result, nil
}

func (s *Session) probeClip(ctx context.Context, prober Prober, library Library, path string) (timeline.Clip, error) {
	if !media.IsSupported(path) {
		return timeline.Clip{}, fmt.Errorf("%w: %s", ErrUnsupportedFile, filepath.Ext(path))
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	info, err := prober.Probe(ctx, path)
	if err != nil {
		return timeline.Clip{}, err
	}

	clip := timeline.NewClip(path, info.Filename, info.Duration)
	if clip.Filename == "" {
		clip.Filename = filepath.Base(path)
	}
	clip.Width, clip.Height, clip.Codec = info.Width, info.Height, info.Codec

	if library != nil {
		thumbs, err := library.Add(info)
		if err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("library update failed")
		}
		clip.Thumbnails = thumbs
	}
	return clip, nil
}
