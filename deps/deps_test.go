package deps

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckMissingBinary(t *testing.T) {
	err := Check("reelcut-definitely-not-installed", MpvInstallURL)
	require.Error(t, err)

	var depErr *DependencyError
	require.True(t, errors.As(err, &depErr))
	assert.Equal(t, "reelcut-definitely-not-installed", depErr.Name)
	assert.Contains(t, err.Error(), MpvInstallURL)
}

func TestReportOrderAndOverrides(t *testing.T) {
	results := Report(Binaries{
		Mpv:     "reelcut-missing-mpv",
		Ffmpeg:  "reelcut-missing-ffmpeg",
		Ffprobe: "reelcut-missing-ffprobe",
	})
	require.Len(t, results, 3)
	assert.Equal(t, "mpv", results[0].Name)
	assert.Equal(t, "ffmpeg", results[1].Name)
	assert.Equal(t, "ffprobe", results[2].Name)
	for _, r := range results {
		assert.Error(t, r.Err)
		assert.Empty(t, r.Path)
	}
	assert.Len(t, CheckAll(Binaries{Mpv: "reelcut-missing-mpv", Ffmpeg: "sh", Ffprobe: "sh"}), 1)
}

func TestBinariesDefaults(t *testing.T) {
	b := Binaries{Ffmpeg: "/opt/ffmpeg"}.withDefaults()
	assert.Equal(t, "mpv", b.Mpv)
	assert.Equal(t, "/opt/ffmpeg", b.Ffmpeg)
	assert.Equal(t, "ffprobe", b.Ffprobe)
}
