package media

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/reelcut/timeline"
)

// fakeRunner records invocations and replays canned output.
type fakeRunner struct {
	mu     sync.Mutex
	calls  [][]string
	output []byte
	lines  []string
	err    error
}

func (f *fakeRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, append([]string{name}, args...))
	return f.output, f.err
}

func (f *fakeRunner) Stream(ctx context.Context, name string, args []string, onLine func(string)) error {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	lines, err := f.lines, f.err
	f.mu.Unlock()
	for _, l := range lines {
		onLine(l)
	}
	return err
}

func newTestExecutor(t *testing.T, r *fakeRunner) *Executor {
	t.Helper()
	e, err := New(zerolog.Nop(), Options{Runner: r})
	require.NoError(t, err)
	return e
}

func TestIsSupported(t *testing.T) {
	for _, p := range []string{"a.mp4", "b.MOV", "/x/c.mkv", "d.webm", "e.m4v", "f.avi"} {
		assert.True(t, IsSupported(p), p)
	}
	for _, p := range []string{"a.mp3", "b", "c.txt", "mp4"} {
		assert.False(t, IsSupported(p), p)
	}
}

func TestParseProbe(t *testing.T) {
	data, err := os.ReadFile("testdata/probe.json")
	require.NoError(t, err)

	info, err := ParseProbe("/media/beach.mp4", data)
	require.NoError(t, err)
	assert.Equal(t, "beach.mp4", info.Filename)
	assert.Equal(t, 12.512, info.Duration)
	assert.Equal(t, 1920, info.Width)
	assert.Equal(t, 1080, info.Height)
	assert.Equal(t, "h264", info.Codec)
	assert.InDelta(t, 29.97, info.FPS, 0.01)
	assert.True(t, info.HasAudio)
	assert.Equal(t, int64(4823311), info.Size)
}

func TestParseProbeRejects(t *testing.T) {
	_, err := ParseProbe("a.mp4", []byte(`{"streams":[{"codec_type":"audio"}],"format":{"duration":"3"}}`))
	assert.ErrorIs(t, err, ErrNoVideoStream)

	_, err = ParseProbe("a.mp4", []byte(`{"streams":[{"codec_type":"video"}],"format":{}}`))
	assert.Error(t, err)

	_, err = ParseProbe("a.mp4", []byte(`not json`))
	assert.Error(t, err)
}

func TestProbeUsesRunner(t *testing.T) {
	data, err := os.ReadFile("testdata/probe.json")
	require.NoError(t, err)
	r := &fakeRunner{output: data}
	e := newTestExecutor(t, r)

	info, err := e.Probe(context.Background(), "/media/beach.mp4")
	require.NoError(t, err)
	assert.Equal(t, 12.512, info.Duration)
	require.Len(t, r.calls, 1)
	assert.Equal(t, "ffprobe", r.calls[0][0])
	assert.Equal(t, "/media/beach.mp4", r.calls[0][len(r.calls[0])-1])

	r.err = errors.New("exit status 1")
	_, err = e.Probe(context.Background(), "/media/broken.mp4")
	assert.ErrorIs(t, err, ErrFFmpeg)
}

func TestRunReportsProgress(t *testing.T) {
	r := &fakeRunner{lines: []string{
		"frame=30",
		"fps=29.5",
		"out_time_us=2500000",
		"speed=1.5x",
		"progress=continue",
		"frame=60",
		"out_time_us=5000000",
		"progress=end",
	}}
	e := newTestExecutor(t, r)

	var got []Progress
	err := e.Run(context.Background(), RunOptions{
		Args:            []string{"-i", "in.mp4", "out.mp4"},
		Duration:        10,
		ProgressHandler: func(p Progress) { got = append(got, p) },
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 30, got[0].Frame)
	assert.Equal(t, 2.5, got[0].Seconds)
	assert.Equal(t, 25.0, got[0].Percentage)
	assert.Equal(t, "1.5x", got[0].Speed)
	assert.Equal(t, 100.0, got[1].Percentage)

	args := r.calls[0]
	assert.Equal(t, "ffmpeg", args[0])
	assert.Contains(t, args, "-progress")
	assert.Equal(t, "out.mp4", args[len(args)-1])
}

func TestRunClassifiesErrors(t *testing.T) {
	r := &fakeRunner{lines: []string{"out.mp4: No space left on device"}, err: errors.New("exit status 1")}
	e := newTestExecutor(t, r)
	err := e.Run(context.Background(), RunOptions{Args: []string{"out.mp4"}})
	assert.ErrorIs(t, err, ErrDiskFull)

	r.lines = []string{"Invalid argument"}
	err = e.Run(context.Background(), RunOptions{Args: []string{"out.mp4"}})
	assert.ErrorIs(t, err, ErrFFmpeg)
	assert.Contains(t, err.Error(), "Invalid argument")

	assert.Error(t, e.Run(context.Background(), RunOptions{}))
}

func TestThumbnailTimes(t *testing.T) {
	assert.Equal(t, []float64{1, 3, 5, 7, 9}, ThumbnailTimes(10, 5))
	assert.Nil(t, ThumbnailTimes(0, 5))
	assert.Nil(t, ThumbnailTimes(10, 0))
}

func TestExtractThumbnails(t *testing.T) {
	r := &fakeRunner{}
	e := newTestExecutor(t, r)
	dir := t.TempDir()

	paths, err := e.ExtractThumbnails(context.Background(), "/media/a.mp4", 3, 6, dir)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	require.Len(t, r.calls, 3)
	for i, p := range paths {
		assert.True(t, strings.HasPrefix(p, dir))
		assert.Equal(t, p, r.calls[i][len(r.calls[i])-1])
	}
	assert.Contains(t, r.calls[1], "3.000")

	again, err := e.ExtractThumbnails(context.Background(), "/media/a.mp4", 3, 6, dir)
	require.NoError(t, err)
	assert.Equal(t, paths, again)
}

func compositeTimeline() []timeline.Clip {
	offset := 2.0
	return []timeline.Clip{
		{ID: "a", SourcePath: "/v/a.mp4", Duration: 10, InPoint: 1, OutPoint: 4, Volume: 100, Track: timeline.TrackMain},
		{ID: "d", SourcePath: "/v/d.mp4", Duration: 2, InPoint: 0, OutPoint: 2, Volume: 100, Track: timeline.TrackPip},
		{ID: "b", SourcePath: "/v/b.mp4", Duration: 5, InPoint: 0, OutPoint: 2.5, Volume: 50, SourceOffset: &offset, Track: timeline.TrackMain},
		{ID: "c", SourcePath: "/v/c.mp4", Duration: 8, InPoint: 0, OutPoint: 7, Volume: 100, Muted: true, Track: timeline.TrackPip,
			PipSettings: &timeline.PipSettings{X: 0.7, Y: 0.7, Width: 0.25, Height: 0.25, Opacity: 0.8}},
	}
}

func TestFromTimeline(t *testing.T) {
	main, pip := FromTimeline(compositeTimeline())
	require.Len(t, main, 2)
	require.Len(t, pip, 2)
	assert.Equal(t, "/v/a.mp4", main[0].Path)
	assert.Equal(t, "/v/b.mp4", main[1].Path)
	assert.Equal(t, 0.0, pip[0].Start)
	assert.Equal(t, 2.0, pip[1].Start)
	require.NotNil(t, pip[0].PipSettings)
	assert.Equal(t, timeline.DefaultPipSettings(), *pip[0].PipSettings)
	assert.Nil(t, main[0].PipSettings)
}

func TestCompositeFilterGraph(t *testing.T) {
	main, pip := FromTimeline(compositeTimeline())
	g, err := BuildFilterGraph(main, pip, ExportOptions{Audio: true})
	require.NoError(t, err)
	assert.Equal(t, 9.0, g.Duration)
	assert.Equal(t, "[o1]", g.Video)
	assert.Equal(t, "[aout]", g.Audio)

	gold := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	gold.Assert(t, "composite_filter_graph", []byte(strings.Join(g.Chains, ";\n")+"\n"))
}

func TestFilterGraphWithoutMainTrack(t *testing.T) {
	_, pip := FromTimeline(compositeTimeline())
	g, err := BuildFilterGraph(nil, pip[:1], ExportOptions{Width: 640, Height: 360})
	require.NoError(t, err)
	assert.Equal(t, "color=black:size=640x360:duration=2:rate=30[base]", g.Chains[0])
	assert.Equal(t, "[o0]", g.Video)
	assert.Empty(t, g.Audio)
}

func TestFilterGraphMainOnlyNeedsNoPadding(t *testing.T) {
	main, _ := FromTimeline(compositeTimeline())
	g, err := BuildFilterGraph(main, nil, ExportOptions{Audio: true})
	require.NoError(t, err)
	assert.Equal(t, "[mainv]", g.Video)
	assert.Equal(t, "[maina]", g.Audio)
	assert.Len(t, g.Chains, 5)
	assert.Equal(t, 5.5, g.Duration)
}

func TestFilterGraphEmpty(t *testing.T) {
	_, err := BuildFilterGraph(nil, nil, ExportOptions{})
	assert.ErrorIs(t, err, ErrNothingToExport)
}

func TestExportArgs(t *testing.T) {
	main, pip := FromTimeline(compositeTimeline())
	args, _, err := ExportArgs(main, pip, "/out/cut.mp4", ExportOptions{})
	require.NoError(t, err)

	joined := strings.Join(args, " ")
	assert.True(t, strings.HasPrefix(joined, "-i /v/a.mp4 -i /v/b.mp4 -i /v/d.mp4 -i /v/c.mp4 -filter_complex"))
	assert.Contains(t, joined, "-an")
	assert.Contains(t, joined, "-c:v libx264 -preset fast -crf 23 -pix_fmt yuv420p")
	assert.Equal(t, "/out/cut.mp4", args[len(args)-1])
}

func TestExportComposite(t *testing.T) {
	r := &fakeRunner{lines: []string{"out_time_us=4500000", "progress=end"}}
	e, err := New(zerolog.Nop(), Options{Runner: r, Preset: "veryfast", CRF: 20})
	require.NoError(t, err)

	out := t.TempDir() + "/nested/cut.mp4"
	var last Progress
	main, pip := FromTimeline(compositeTimeline())
	got, err := e.ExportComposite(context.Background(), main, pip, out, ExportOptions{Audio: true}, func(p Progress) { last = p })
	require.NoError(t, err)
	assert.Equal(t, out, got)
	assert.Equal(t, 100.0, last.Percentage)

	args := strings.Join(r.calls[0], " ")
	assert.Contains(t, args, "-preset veryfast -crf 20")
	assert.Contains(t, args, "-map [aout]")
}

func TestNum(t *testing.T) {
	assert.Equal(t, "0", num(0))
	assert.Equal(t, "2.5", num(2.5))
	assert.Equal(t, "0.333", num(1.0/3))
	assert.Equal(t, "10", num(10))
	assert.Equal(t, "0", num(-0.0001))
}
