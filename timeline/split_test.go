package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTrimmedClip(t *testing.T) {
	clip := mk("a", 5, 1, 4, TrackMain)
	clips := []Clip{clip}

	out, selected, err := SplitClipAtTime(clip, 1.5, clips)
	require.NoError(t, err)
	require.Len(t, out, 2)

	first, second := out[0], out[1]
	assert.Equal(t, first.ID, selected)
	assert.NotEqual(t, "a", first.ID)
	assert.NotEqual(t, "a", second.ID)
	assert.NotEqual(t, first.ID, second.ID)

	assert.InDelta(t, 1.5, first.Duration, 1e-9)
	assert.InDelta(t, 1.5, second.Duration, 1e-9)
	assert.True(t, first.IsClean())
	assert.True(t, second.IsClean())

	require.NotNil(t, first.SourceOffset)
	require.NotNil(t, second.SourceOffset)
	assert.InDelta(t, 1.0, *first.SourceOffset, 1e-9)
	assert.InDelta(t, 2.5, *second.SourceOffset, 1e-9)

	// Duration preserved and the source mapping is continuous.
	assert.InDelta(t, clip.ActiveDuration(), first.Duration+second.Duration, 1e-9)
	assert.InDelta(t, *first.SourceOffset+first.Duration, *second.SourceOffset, 1e-9)

	assert.Equal(t, "a.mp4 (Part 1)", first.Filename)
	assert.Equal(t, "a.mp4 (Part 2)", second.Filename)
	assert.Equal(t, clip.SourcePath, second.SourcePath)
}

func TestSplitRejectsEdges(t *testing.T) {
	clips := []Clip{mk("x", 2, 0, 2, TrackMain), mk("a", 5, 1, 4, TrackMain)}
	start := ClipStart(clips[1], clips)

	tests := []struct {
		name     string
		position float64
	}{
		{"left edge", start},
		{"right edge", start + 3},
		{"past right edge", start + 3.5},
		{"before clip", start - 0.5},
		{"within a frame of the left edge", start + 0.01},
		{"within a frame of the right edge", start + 2.99},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, selected, err := SplitClipAtTime(clips[1], tt.position, clips)
			assert.ErrorIs(t, err, ErrSplitOutOfRange)
			assert.Empty(t, selected)
			assert.Equal(t, clips, out)
		})
	}
}

func TestSplitKeepsNeighboursAndIndex(t *testing.T) {
	clips := []Clip{
		mk("a", 2, 0, 2, TrackMain),
		mk("p", 4, 0, 4, TrackPip),
		mk("b", 6, 0, 6, TrackMain),
		mk("c", 1, 0, 1, TrackMain),
	}
	clips[2].Volume = 150
	clips[2].Muted = true

	out, _, err := SplitClipAtTime(clips[2], 5, clips)
	require.NoError(t, err)
	require.Len(t, out, 5)

	assert.Equal(t, clips[0], out[0])
	assert.Equal(t, clips[1], out[1])
	assert.Equal(t, clips[3], out[4])

	for _, part := range out[2:4] {
		assert.Equal(t, 150.0, part.Volume)
		assert.True(t, part.Muted)
		assert.Equal(t, TrackMain, part.Track)
	}
	assert.InDelta(t, 3.0, out[2].Duration, 1e-9)
	assert.InDelta(t, 3.0, out[3].Duration, 1e-9)

	// Derived positions still add up.
	assert.InDelta(t, 2.0, ClipStart(out[2], out), 1e-9)
	assert.InDelta(t, 5.0, ClipStart(out[3], out), 1e-9)
	assert.InDelta(t, 8.0, ClipStart(out[4], out), 1e-9)
	assert.InDelta(t, TrackDuration(TrackMain, clips), TrackDuration(TrackMain, out), 1e-9)
}

func TestSplitChainsSourceOffset(t *testing.T) {
	clips := []Clip{mk("a", 10, 0, 10, TrackMain)}

	clips, _, err := SplitClipAtTime(clips[0], 4, clips)
	require.NoError(t, err)

	// Split the second half again one second into it.
	clips, _, err = SplitClipAtTime(clips[1], 5, clips)
	require.NoError(t, err)
	require.Len(t, clips, 3)

	assert.InDelta(t, 0.0, *clips[0].SourceOffset, 1e-9)
	assert.InDelta(t, 4.0, *clips[1].SourceOffset, 1e-9)
	assert.InDelta(t, 5.0, *clips[2].SourceOffset, 1e-9)
	assert.InDelta(t, 5.0, clips[2].Duration, 1e-9)

	// The last part still ends where the original source ends.
	assert.InDelta(t, 10.0, clips[2].SourceEnd(), 1e-9)
}

func TestSplitPipClipKeepsOverlay(t *testing.T) {
	clips := []Clip{mk("p", 4, 0, 4, TrackPip)}
	clips[0].PipSettings.X = 0.1

	out, _, err := SplitClipAtTime(clips[0], 2, clips)
	require.NoError(t, err)
	for _, part := range out {
		require.NotNil(t, part.PipSettings)
		assert.Equal(t, 0.1, part.PipSettings.X)
	}
	out[0].PipSettings.X = 0.5
	assert.Equal(t, 0.1, out[1].PipSettings.X, "halves do not share settings")
}

func TestSplitUnknownClip(t *testing.T) {
	clips := []Clip{mk("a", 5, 0, 5, TrackMain)}
	_, _, err := SplitClipAtTime(mk("gone", 5, 0, 5, TrackMain), 2, clips)
	assert.ErrorIs(t, err, ErrClipNotFound)
}

func TestSplitAtPlayhead(t *testing.T) {
	clips := []Clip{
		mk("a", 5, 0, 5, TrackMain),
		mk("p", 4, 0, 4, TrackPip),
	}

	t.Run("selected clip wins", func(t *testing.T) {
		out, _, err := SplitAtPlayhead(clips, "p", TrackMain, 2)
		require.NoError(t, err)
		assert.Len(t, TrackClips(TrackPip, out), 2)
		assert.Len(t, TrackClips(TrackMain, out), 1)
	})

	t.Run("preferred track", func(t *testing.T) {
		out, _, err := SplitAtPlayhead(clips, "", TrackPip, 2)
		require.NoError(t, err)
		assert.Len(t, TrackClips(TrackPip, out), 2)
	})

	t.Run("falls back to main", func(t *testing.T) {
		out, _, err := SplitAtPlayhead(clips, "", TrackPip, 4.5)
		require.NoError(t, err)
		assert.Len(t, TrackClips(TrackMain, out), 2)
	})

	t.Run("nothing under playhead", func(t *testing.T) {
		_, _, err := SplitAtPlayhead(clips, "", TrackMain, 7)
		assert.ErrorIs(t, err, ErrNoClipAtPlayhead)
	})
}
