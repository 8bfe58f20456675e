package project

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/reelcut/timeline"
)

func TestLoadAppliesDefaults(t *testing.T) {
	doc, err := Load("testdata/legacy.json")
	require.NoError(t, err)
	require.Len(t, doc.Clips, 3)

	a := doc.Clips[0]
	assert.Equal(t, "beach.mp4", a.Filename)
	assert.Equal(t, 0.0, a.InPoint)
	assert.Equal(t, 10.0, a.OutPoint)
	assert.Equal(t, 100.0, a.Volume)
	assert.False(t, a.Muted)
	assert.Equal(t, timeline.TrackMain, a.Track)

	b := doc.Clips[1]
	assert.Equal(t, 1.0, b.InPoint)
	assert.Equal(t, 5.0, b.OutPoint)
	assert.Equal(t, 40.0, b.Volume)
	assert.True(t, b.Muted)

	pip := doc.Clips[2]
	assert.NotEmpty(t, pip.ID)
	assert.Equal(t, timeline.TrackPip, pip.Track)
	require.NotNil(t, pip.PipSettings)
	assert.Equal(t, timeline.DefaultPipSettings(), *pip.PipSettings)

	assert.Equal(t, "b", doc.SelectedClipID)
	assert.Equal(t, 3.5, doc.PlayheadPosition)
}

func TestLoadYAML(t *testing.T) {
	doc, err := Load("testdata/project.yaml")
	require.NoError(t, err)
	require.Len(t, doc.Clips, 2)
	assert.Equal(t, 6.0, doc.Clips[0].OutPoint)
	assert.Equal(t, 0.5, doc.Clips[1].PipSettings.Opacity)
	assert.Empty(t, doc.SelectedClipID, "unknown selection is cleared")
	assert.Equal(t, 0.0, doc.PlayheadPosition)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	offset := 2.5
	doc := &Document{
		Clips: []timeline.Clip{
			{ID: "x", SourcePath: "/m/a.mp4", Filename: "a (Part 2).mp4", Duration: 3, InPoint: 0.5, OutPoint: 3,
				SourceOffset: &offset, Volume: 0, Muted: true, Track: timeline.TrackMain},
		},
		SelectedClipID:   "x",
		PlayheadPosition: 1.25,
	}

	for _, name := range []string{"p" + Extension, "p.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", name)
			require.NoError(t, Save(path, doc))

			got, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, doc, got)
		})
	}
}

func TestDecodeRejectsInvalidClips(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad json", `{`},
		{"out past duration", `{"clips":[{"id":"a","path":"/a.mp4","duration":2,"outPoint":3}]}`},
		{"in after out", `{"clips":[{"id":"a","path":"/a.mp4","duration":2,"inPoint":2}]}`},
		{"unknown track", `{"clips":[{"id":"a","path":"/a.mp4","duration":2,"track":"audio"}]}`},
		{"missing path", `{"clips":[{"id":"a","duration":2}]}`},
		{"duplicate id", `{"clips":[{"id":"a","path":"/a.mp4","duration":2},{"id":"a","path":"/b.mp4","duration":2}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data), false)
			assert.ErrorIs(t, err, ErrInvalidProject)
		})
	}
}

func TestIsYAML(t *testing.T) {
	assert.True(t, IsYAML("a.yaml"))
	assert.True(t, IsYAML("a.YML"))
	assert.False(t, IsYAML("a.reelcut"))
	assert.False(t, IsYAML("a.json"))
}
