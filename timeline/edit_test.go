package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteOnlyClip(t *testing.T) {
	clips := []Clip{mk("a", 5, 0, 5, TrackMain)}

	out, err := Delete(clips, "a")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 0.0, TrackDuration(TrackMain, out))

	_, err = Delete(out, "a")
	assert.ErrorIs(t, err, ErrClipNotFound)
}

func TestSetVolume(t *testing.T) {
	clips := []Clip{mk("a", 5, 0, 5, TrackMain)}

	out, err := SetVolume(clips, "a", 0)
	require.NoError(t, err)
	assert.Equal(t, 0.0, out[0].Volume)
	assert.True(t, out[0].Muted)

	out, err = SetVolume(out, "a", 80)
	require.NoError(t, err)
	assert.Equal(t, 80.0, out[0].Volume)
	assert.False(t, out[0].Muted)

	out, err = SetVolume(out, "a", 500)
	require.NoError(t, err)
	assert.Equal(t, float64(MaxVolume), out[0].Volume)
}

func TestSetVolumeKeepsExplicitMute(t *testing.T) {
	clips := []Clip{mk("a", 5, 0, 5, TrackMain)}
	clips[0].Muted = true

	out, err := SetVolume(clips, "a", 120)
	require.NoError(t, err)
	assert.True(t, out[0].Muted, "muting is independent of a non-zero volume change")
}

func TestToggleMute(t *testing.T) {
	clips := []Clip{mk("a", 5, 0, 5, TrackMain)}
	clips[0].Volume = 0
	clips[0].Muted = true

	out, err := ToggleMute(clips, "a")
	require.NoError(t, err)
	assert.False(t, out[0].Muted)
	assert.Equal(t, float64(DefaultVolume), out[0].Volume)

	out, err = ToggleMute(out, "a")
	require.NoError(t, err)
	assert.True(t, out[0].Muted)
	assert.Equal(t, float64(DefaultVolume), out[0].Volume)
}

func TestSetPipSettings(t *testing.T) {
	clips := []Clip{mk("a", 5, 0, 5, TrackMain), mk("p", 4, 0, 4, TrackPip)}

	out, err := SetPipSettings(clips, "p", PipSettings{X: 1.5, Y: -1, Width: 0.5, Height: 0.5, Opacity: 0.3})
	require.NoError(t, err)
	assert.Equal(t, PipSettings{X: 1, Y: 0, Width: 0.5, Height: 0.5, Opacity: 0.3}, *out[1].PipSettings)

	_, err = SetPipSettings(clips, "a", DefaultPipSettings())
	assert.ErrorIs(t, err, ErrInvalidTrack)
}
