// Package project reads and writes timeline project files.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/user/reelcut/timeline"
)

// Extension is the default project file extension. Files ending in .yaml or
// .yml are written as YAML; everything else is JSON.
const Extension = ".reelcut"

// ErrInvalidProject wraps every decoding or validation failure.
var ErrInvalidProject = errors.New("project: invalid project file")

// Document is the persisted editing session.
type Document struct {
	Clips            []timeline.Clip
	SelectedClipID   string
	PlayheadPosition float64
}

// file is the on-disk layout. Optional clip fields are pointers so that
// missing values can be told apart from zeros.
type file struct {
	Clips            []fileClip `json:"clips" yaml:"clips"`
	SelectedClipID   string     `json:"selectedClipId" yaml:"selectedClipId"`
	PlayheadPosition float64    `json:"playheadPosition" yaml:"playheadPosition"`
}

type fileClip struct {
	ID           string                `json:"id" yaml:"id"`
	Path         string                `json:"path" yaml:"path"`
	Filename     string                `json:"filename,omitempty" yaml:"filename,omitempty"`
	Duration     float64               `json:"duration" yaml:"duration"`
	InPoint      *float64              `json:"inPoint,omitempty" yaml:"inPoint,omitempty"`
	OutPoint     *float64              `json:"outPoint,omitempty" yaml:"outPoint,omitempty"`
	SourceOffset *float64              `json:"sourceOffset,omitempty" yaml:"sourceOffset,omitempty"`
	Volume       *float64              `json:"volume,omitempty" yaml:"volume,omitempty"`
	Muted        *bool                 `json:"muted,omitempty" yaml:"muted,omitempty"`
	Track        timeline.Track        `json:"track,omitempty" yaml:"track,omitempty"`
	PipSettings  *timeline.PipSettings `json:"pipSettings,omitempty" yaml:"pipSettings,omitempty"`
	Width        int                   `json:"width,omitempty" yaml:"width,omitempty"`
	Height       int                   `json:"height,omitempty" yaml:"height,omitempty"`
	Codec        string                `json:"codec,omitempty" yaml:"codec,omitempty"`
	Thumbnails   []string              `json:"thumbnails,omitempty" yaml:"thumbnails,omitempty"`
}

// IsYAML reports whether path is written in YAML.
func IsYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// Load reads a project file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc, err := Decode(data, IsYAML(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Save writes doc to path, creating parent directories.
func Save(path string, doc *Document) error {
	data, err := Encode(doc, IsYAML(path))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Encode serializes doc as indented JSON, or YAML when asYAML is set.
func Encode(doc *Document, asYAML bool) ([]byte, error) {
	f := file{
		Clips:            make([]fileClip, 0, len(doc.Clips)),
		SelectedClipID:   doc.SelectedClipID,
		PlayheadPosition: doc.PlayheadPosition,
	}
	for _, c := range doc.Clips {
		in, out, vol, muted := c.InPoint, c.OutPoint, c.Volume, c.Muted
		f.Clips = append(f.Clips, fileClip{
			ID:           c.ID,
			Path:         c.SourcePath,
			Filename:     c.Filename,
			Duration:     c.Duration,
			InPoint:      &in,
			OutPoint:     &out,
			SourceOffset: c.SourceOffset,
			Volume:       &vol,
			Muted:        &muted,
			Track:        c.Track,
			PipSettings:  c.PipSettings,
			Width:        c.Width,
			Height:       c.Height,
			Codec:        c.Codec,
			Thumbnails:   c.Thumbnails,
		})
	}
	if asYAML {
		return yaml.Marshal(&f)
	}
	data, err := json.MarshalIndent(&f, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses a project, filling defaults for missing clip fields:
// inPoint 0, outPoint duration, volume 100, unmuted, main track. Clips
// without an id get a fresh one. A selection that names no clip is cleared.
func Decode(data []byte, asYAML bool) (*Document, error) {
	var f file
	var err error
	if asYAML {
		err = yaml.Unmarshal(data, &f)
	} else {
		err = json.Unmarshal(data, &f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProject, err)
	}

	doc := &Document{
		Clips:            make([]timeline.Clip, 0, len(f.Clips)),
		PlayheadPosition: math.Max(0, f.PlayheadPosition),
	}
	seen := make(map[string]bool, len(f.Clips))
	for i, fc := range f.Clips {
		c, err := fc.clip()
		if err != nil {
			return nil, fmt.Errorf("%w: clip %d: %v", ErrInvalidProject, i, err)
		}
		if seen[c.ID] {
			return nil, fmt.Errorf("%w: duplicate clip id %q", ErrInvalidProject, c.ID)
		}
		seen[c.ID] = true
		doc.Clips = append(doc.Clips, c)
	}
	if seen[f.SelectedClipID] {
		doc.SelectedClipID = f.SelectedClipID
	}
	return doc, nil
}

func (fc fileClip) clip() (timeline.Clip, error) {
	c := timeline.Clip{
		ID:           fc.ID,
		SourcePath:   fc.Path,
		Filename:     fc.Filename,
		Duration:     fc.Duration,
		OutPoint:     fc.Duration,
		Volume:       timeline.DefaultVolume,
		SourceOffset: fc.SourceOffset,
		Track:        fc.Track,
		PipSettings:  fc.PipSettings,
		Width:        fc.Width,
		Height:       fc.Height,
		Codec:        fc.Codec,
		Thumbnails:   fc.Thumbnails,
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.Filename == "" {
		c.Filename = filepath.Base(c.SourcePath)
	}
	if c.SourcePath == "" {
		return timeline.Clip{}, errors.New("missing path")
	}
	if c.Track == "" {
		c.Track = timeline.TrackMain
	}
	if _, err := timeline.ParseTrack(string(c.Track)); err != nil {
		return timeline.Clip{}, err
	}
	if fc.InPoint != nil {
		c.InPoint = *fc.InPoint
	}
	if fc.OutPoint != nil {
		c.OutPoint = *fc.OutPoint
	}
	if fc.Volume != nil {
		c.Volume = *fc.Volume
	}
	if fc.Muted != nil {
		c.Muted = *fc.Muted
	}
	if c.Track == timeline.TrackPip && c.PipSettings == nil {
		p := timeline.DefaultPipSettings()
		c.PipSettings = &p
	}
	if c.Track == timeline.TrackMain {
		c.PipSettings = nil
	}
	if err := timeline.Validate(c); err != nil {
		return timeline.Clip{}, err
	}
	return c, nil
}
