package editor

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/user/reelcut/history"
	"github.com/user/reelcut/media"
	"github.com/user/reelcut/pkg/export"
	"github.com/user/reelcut/project"
	"github.com/user/reelcut/timeline"
)

// ErrNoProjectPath is returned by Save when the session was never saved and
// no path was given.
var ErrNoProjectPath = errors.New("editor: project has no file path")

// Exporter renders a composite of the timeline. *media.Executor implements it.
type Exporter interface {
	ExportComposite(ctx context.Context, main, pip []media.ExportClip, outputPath string, opts media.ExportOptions, progress func(media.Progress)) (string, error)
}

// Path returns the project file the session was loaded from or saved to.
func (s *Session) Path() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.path
}

// Dirty reports whether there are edits since the last load or save.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// NewProject clears the timeline and history and rewinds the playhead.
func (s *Session) NewProject(ctx context.Context) error {
	return s.replace(ctx, "", &project.Document{})
}

// Open loads the project at path, replacing the session contents.
func (s *Session) Open(ctx context.Context, path string) error {
	doc, err := project.Load(path)
	if err != nil {
		return err
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	if err := s.replace(ctx, path, doc); err != nil {
		return err
	}
	s.touch(path, doc.Clips)
	s.log.Info().Str("path", path).Int("clips", len(doc.Clips)).Msg("project opened")
	return nil
}

// Save writes the project to path, or to the current path when path is
// empty, and remembers it as the current path.
func (s *Session) Save(ctx context.Context, path string) error {
	if path == "" {
		path = s.Path()
	}
	if path == "" {
		return ErrNoProjectPath
	}
	if filepath.Ext(path) == "" {
		path += project.Extension
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}

	doc := s.Document()
	if err := project.Save(path, doc); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	s.mu.Lock()
	s.path = path
	s.dirty = false
	s.mu.Unlock()

	s.touch(path, doc.Clips)
	s.log.Info().Str("path", path).Msg("project saved")
	s.notify()
	return nil
}

// Document returns the session in its persisted form.
func (s *Session) Document() *project.Document {
	st := s.State()
	return &project.Document{
		Clips:            st.Clips,
		SelectedClipID:   st.SelectedClipID,
		PlayheadPosition: s.Playhead(),
	}
}

// DefaultExportName suggests an output filename from the first main clip.
func (s *Session) DefaultExportName(now time.Time) string {
	name := ""
	clips := s.Clips()
	if main := timeline.TrackClips(timeline.TrackMain, clips); len(main) > 0 {
		name = main[0].Filename
	} else if len(clips) > 0 {
		name = clips[0].Filename
	}
	return export.DefaultFilename(name, now)
}

// Export renders the committed timeline to outputPath with exp.
func (s *Session) Export(ctx context.Context, exp Exporter, outputPath string, opts media.ExportOptions, progress func(media.Progress)) (string, error) {
	main, pip := media.FromTimeline(s.Clips())
	if len(main) == 0 && len(pip) == 0 {
		return "", media.ErrNothingToExport
	}
	return exp.ExportComposite(ctx, main, pip, outputPath, opts, progress)
}

func (s *Session) replace(ctx context.Context, path string, doc *project.Document) error {
	s.history.Reset(history.State{Clips: doc.Clips, SelectedClipID: doc.SelectedClipID})

	s.mu.Lock()
	s.path = path
	s.dirty = false
	s.activeTrack = timeline.TrackMain
	s.playhead = clampPlayhead(doc.PlayheadPosition, doc.Clips)
	transport := s.transport
	s.mu.Unlock()

	if transport != nil {
		if err := transport.Reset(ctx); err != nil {
			s.log.Warn().Err(err).Msg("player reset failed")
		}
		if doc.PlayheadPosition > 0 {
			if err := transport.Seek(ctx, doc.PlayheadPosition); err != nil {
				s.log.Warn().Err(err).Msg("player seek failed")
			}
		}
	}
	s.notify()
	return nil
}

func (s *Session) touch(path string, clips []timeline.Clip) {
	s.mu.Lock()
	library := s.library
	s.mu.Unlock()
	if library == nil {
		return
	}
	if err := library.TouchProject(path, clips); err != nil {
		s.log.Warn().Err(err).Str("path", path).Msg("recent projects update failed")
	}
}
