package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(clips []Clip) []string {
	out := make([]string, len(clips))
	for i, c := range clips {
		out[i] = c.ID
	}
	return out
}

func threeClips() []Clip {
	return []Clip{
		mk("a", 2, 0, 2, TrackMain),
		mk("b", 2, 0, 2, TrackMain),
		mk("c", 2, 0, 2, TrackMain),
	}
}

func TestDropIndex(t *testing.T) {
	clips := threeClips()

	tests := []struct {
		name     string
		dragged  string
		pointerX float64
		want     int
	}{
		{"before first midpoint", "a", 5, 0},
		{"past first midpoint", "a", 15, 1},
		{"past everything", "a", 45, 2},
		{"dragging the last clip to the front", "c", 0, 0},
		{"dragging the middle clip between a and c", "b", 25, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DropIndex(clips, tt.dragged, tt.pointerX, 10))
		})
	}
}

func TestCheckReorder(t *testing.T) {
	clips := threeClips()

	tests := []struct {
		name    string
		clips   []Clip
		dragged string
		index   int
		want    error
	}{
		{"valid forward", clips, "a", 2, nil},
		{"valid adjacent", clips, "a", 1, nil},
		{"same index", clips, "b", 1, ErrReorderNoop},
		{"unknown clip", clips, "zzz", 0, ErrClipNotFound},
		{"negative", clips, "a", -1, ErrDropOutOfRange},
		{"past end", clips, "a", 3, ErrDropOutOfRange},
		{"single clip", clips[:1], "a", 0, ErrSingleClip},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckReorder(tt.clips, tt.dragged, tt.index)
			if tt.want == nil {
				assert.NoError(t, err)
				assert.True(t, CanReorder(tt.clips, tt.dragged, tt.index))
				return
			}
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, CanReorder(tt.clips, tt.dragged, tt.index))
		})
	}
}

func TestReorderSplice(t *testing.T) {
	clips := threeClips()

	assert.Equal(t, []string{"b", "c", "a"}, ids(Reorder(clips, "a", 2)))
	assert.Equal(t, []string{"c", "a", "b"}, ids(Reorder(clips, "c", 0)))
	assert.Equal(t, []string{"b", "a", "c"}, ids(Reorder(clips, "a", 1)))
	assert.Equal(t, []string{"a", "b", "c"}, ids(Reorder(clips, "b", 1)), "no-op returns input")
	assert.Equal(t, []string{"a", "b", "c"}, ids(clips), "input is not mutated")
}

func TestReorderRoundTrip(t *testing.T) {
	clips := []Clip{
		mk("a", 2, 0, 2, TrackMain),
		mk("b", 3, 0, 3, TrackMain),
		mk("c", 4, 0, 4, TrackMain),
		mk("d", 5, 0, 5, TrackMain),
	}
	for _, c := range clips {
		orig := IndexOf(clips, c.ID)
		for i := range clips {
			if i == orig {
				continue
			}
			moved := Reorder(clips, c.ID, i)
			back := Reorder(moved, c.ID, orig)
			assert.Equal(t, ids(clips), ids(back), "%s to %d", c.ID, i)
		}
	}
}

func TestReorderInTrackKeepsOtherTrack(t *testing.T) {
	clips := []Clip{
		mk("a", 2, 0, 2, TrackMain),
		mk("p", 4, 0, 4, TrackPip),
		mk("b", 3, 0, 3, TrackMain),
		mk("c", 1, 0, 1, TrackMain),
	}

	out, err := ReorderInTrack(clips, TrackMain, "c", 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "p", "a", "b"}, ids(out))
	assert.Equal(t, 0.0, ClipStart(out[0], out))
	assert.Equal(t, 1.0, ClipStart(out[2], out))
	assert.Equal(t, 3.0, ClipStart(out[3], out))

	_, err = ReorderInTrack(clips, TrackPip, "p", 0)
	assert.ErrorIs(t, err, ErrSingleClip)
}

func TestMoveToTrack(t *testing.T) {
	clips := []Clip{
		mk("a", 2, 0, 2, TrackMain),
		mk("b", 3, 0, 3, TrackMain),
		mk("p", 4, 0, 4, TrackPip),
	}

	out, err := MoveToTrack(clips, "a", TrackPip)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "p", "a"}, ids(out))
	moved, _ := Find(out, "a")
	assert.Equal(t, TrackPip, moved.Track)
	require.NotNil(t, moved.PipSettings)
	assert.Equal(t, DefaultPipSettings(), *moved.PipSettings)
	assert.NoError(t, Validate(moved))

	back, err := MoveToTrack(out, "a", TrackMain)
	require.NoError(t, err)
	moved, _ = Find(back, "a")
	assert.Equal(t, TrackMain, moved.Track)
	assert.Nil(t, moved.PipSettings)

	_, err = MoveToTrack(clips, "p", TrackPip)
	assert.ErrorIs(t, err, ErrReorderNoop)
	_, err = MoveToTrack(clips, "zzz", TrackPip)
	assert.ErrorIs(t, err, ErrClipNotFound)
}

func TestMoveToTrackAt(t *testing.T) {
	clips := []Clip{
		mk("a", 2, 0, 2, TrackMain),
		mk("p", 4, 0, 4, TrackPip),
		mk("q", 4, 0, 4, TrackPip),
	}

	out, err := MoveToTrackAt(clips, "a", TrackPip, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"p", "q"}, ids(TrackClips(TrackPip, clips)))
	assert.Equal(t, []string{"p", "a", "q"}, ids(TrackClips(TrackPip, out)))
	assert.Equal(t, 0.0, TrackDuration(TrackMain, out))
}

func TestDropIndicatorPosition(t *testing.T) {
	clips := threeClips()
	assert.Equal(t, 0.0, DropIndicatorPosition(clips, "a", 0, 10))
	assert.Equal(t, 20.0, DropIndicatorPosition(clips, "a", 1, 10))
	assert.Equal(t, 40.0, DropIndicatorPosition(clips, "a", 2, 10))
}
