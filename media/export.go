package media

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/user/reelcut/pkg/export"
	"github.com/user/reelcut/timeline"
)

// ErrNothingToExport is returned when both tracks are empty.
var ErrNothingToExport = errors.New("media: timeline has no clips to export")

// Default export frame
const (
	DefaultWidth  = 1280
	DefaultHeight = 720
	exportRate    = 30
	sampleRate    = 48000
)

// ExportClip is one clip as handed to the renderer.
type ExportClip struct {
	Path         string                `json:"path"`
	Duration     float64               `json:"duration"`
	InPoint      float64               `json:"inPoint"`
	OutPoint     float64               `json:"outPoint"`
	Volume       float64               `json:"volume"`
	Muted        bool                  `json:"muted"`
	SourceOffset *float64              `json:"sourceOffset,omitempty"`
	PipSettings  *timeline.PipSettings `json:"pipSettings,omitempty"`
	// Start is the clip's timeline position. Only pip clips use it.
	Start float64 `json:"start"`
}

func (c ExportClip) trimStart() float64 {
	offset := 0.0
	if c.SourceOffset != nil {
		offset = *c.SourceOffset
	}
	return offset + c.InPoint
}

func (c ExportClip) length() float64 {
	return c.OutPoint - c.InPoint
}

func (c ExportClip) gain() float64 {
	if c.Muted {
		return 0
	}
	return c.Volume / 100
}

// FromTimeline splits clips into main and pip render lists in track order.
func FromTimeline(clips []timeline.Clip) (main, pip []ExportClip) {
	for _, track := range timeline.Tracks {
		for _, span := range timeline.Spans(track, clips) {
			c := span.Clip
			ec := ExportClip{
				Path:         c.SourcePath,
				Duration:     c.Duration,
				InPoint:      c.InPoint,
				OutPoint:     c.OutPoint,
				Volume:       c.Volume,
				Muted:        c.Muted,
				SourceOffset: c.SourceOffset,
				Start:        span.Start,
			}
			if track == timeline.TrackPip {
				p := timeline.DefaultPipSettings()
				if c.PipSettings != nil {
					p = *c.PipSettings
				}
				ec.PipSettings = &p
				pip = append(pip, ec)
				continue
			}
			main = append(main, ec)
		}
	}
	return main, pip
}

// ExportOptions configures the composite render.
type ExportOptions struct {
	Width  int
	Height int
	// Audio mixes clip audio into the output. Every input must then carry an
	// audio stream.
	Audio bool
	// Preset and CRF override the executor's encoder settings when set.
	Preset string
	CRF    int
}

func (o ExportOptions) withDefaults() ExportOptions {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	return o
}

// FilterGraph is a built -filter_complex with its output labels.
type FilterGraph struct {
	Chains   []string
	Video    string
	Audio    string
	Duration float64
}

// String joins the chains into the -filter_complex argument.
func (g FilterGraph) String() string {
	return strings.Join(g.Chains, ";")
}

// BuildFilterGraph renders main clips back to back, extends the result to
// cover the last pip clip, and overlays each pip clip during its timeline
// window. Inputs are numbered main first, then pip.
func BuildFilterGraph(main, pip []ExportClip, opts ExportOptions) (FilterGraph, error) {
	if len(main) == 0 && len(pip) == 0 {
		return FilterGraph{}, ErrNothingToExport
	}
	opts = opts.withDefaults()
	w, h := opts.Width, opts.Height

	var g FilterGraph
	mainDur := 0.0
	for _, c := range main {
		mainDur += c.length()
	}
	total := mainDur
	for _, c := range pip {
		total = math.Max(total, c.Start+c.length())
	}
	g.Duration = total

	add := func(format string, args ...interface{}) {
		g.Chains = append(g.Chains, fmt.Sprintf(format, args...))
	}

	base, baseAudio := "[base]", "[basea]"
	if len(main) == 0 {
		add("color=black:size=%dx%d:duration=%s:rate=%d[base]", w, h, num(total), exportRate)
		if opts.Audio {
			add("anullsrc=r=%d:cl=stereo,atrim=duration=%s[basea]", sampleRate, num(total))
		}
	} else {
		var inputs strings.Builder
		for i, c := range main {
			add("[%d:v]trim=start=%s:duration=%s,setpts=PTS-STARTPTS,scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1,fps=%d[v%d]",
				i, num(c.trimStart()), num(c.length()), w, h, w, h, exportRate, i)
			fmt.Fprintf(&inputs, "[v%d]", i)
			if opts.Audio {
				add("[%d:a]atrim=start=%s:duration=%s,asetpts=PTS-STARTPTS,volume=%s[a%d]",
					i, num(c.trimStart()), num(c.length()), num(c.gain()), i)
				fmt.Fprintf(&inputs, "[a%d]", i)
			}
		}

		audioOut := 0
		concatOut := "[mainv]"
		if opts.Audio {
			audioOut = 1
			concatOut = "[mainv][maina]"
		}
		add("%sconcat=n=%d:v=1:a=%d%s", inputs.String(), len(main), audioOut, concatOut)

		if pad := total - mainDur; pad > 1e-9 {
			add("[mainv]tpad=stop_mode=clone:stop_duration=%s[base]", num(pad))
			if opts.Audio {
				add("[maina]apad=whole_dur=%s[basea]", num(total))
			}
		} else {
			base, baseAudio = "[mainv]", "[maina]"
		}
	}

	current := base
	var mix []string
	if opts.Audio {
		mix = append(mix, baseAudio)
	}
	for j, c := range pip {
		input := len(main) + j
		p := timeline.DefaultPipSettings()
		if c.PipSettings != nil {
			p = c.PipSettings.Clamp()
		}
		pw, ph := even(float64(w)*p.Width), even(float64(h)*p.Height)
		start, end := c.Start, c.Start+c.length()

		alpha := ""
		if p.Opacity < 1 {
			alpha = fmt.Sprintf(",format=yuva420p,colorchannelmixer=aa=%s", num(p.Opacity))
		}
		add("[%d:v]trim=start=%s:duration=%s,setpts=PTS-STARTPTS+%s/TB,scale=%d:%d%s[p%d]",
			input, num(c.trimStart()), num(c.length()), num(start), pw, ph, alpha, j)

		next := fmt.Sprintf("[o%d]", j)
		add("%s[p%d]overlay=x=%d:y=%d:enable='between(t,%s,%s)'%s",
			current, j, int(math.Round(float64(w)*p.X)), int(math.Round(float64(h)*p.Y)), num(start), num(end), next)
		current = next

		if opts.Audio {
			delay := int(math.Round(start * 1000))
			add("[%d:a]atrim=start=%s:duration=%s,asetpts=PTS-STARTPTS,volume=%s,adelay=%d:all=1[pa%d]",
				input, num(c.trimStart()), num(c.length()), num(c.gain()), delay, j)
			mix = append(mix, fmt.Sprintf("[pa%d]", j))
		}
	}
	g.Video = current

	if opts.Audio {
		if len(mix) == 1 {
			g.Audio = mix[0]
		} else {
			add("%samix=inputs=%d:duration=first:normalize=0[aout]", strings.Join(mix, ""), len(mix))
			g.Audio = "[aout]"
		}
	}
	return g, nil
}

// ExportArgs returns the full ffmpeg argument list (without the executor's
// global flags) for rendering main and pip to outputPath.
func ExportArgs(main, pip []ExportClip, outputPath string, opts ExportOptions) ([]string, FilterGraph, error) {
	if opts.Preset == "" {
		opts.Preset = DefaultPreset
	}
	if opts.CRF == 0 {
		opts.CRF = DefaultCRF
	}
	g, err := BuildFilterGraph(main, pip, opts)
	if err != nil {
		return nil, g, err
	}

	var args []string
	for _, c := range main {
		args = append(args, "-i", c.Path)
	}
	for _, c := range pip {
		args = append(args, "-i", c.Path)
	}
	args = append(args,
		"-filter_complex", g.String(),
		"-map", g.Video,
	)
	if g.Audio != "" {
		args = append(args, "-map", g.Audio, "-c:a", DefaultAudioCodec, "-b:a", "192k")
	} else {
		args = append(args, "-an")
	}
	args = append(args,
		"-c:v", DefaultVideoCodec,
		"-preset", opts.Preset,
		"-crf", strconv.Itoa(opts.CRF),
		"-pix_fmt", DefaultPixFmt,
		"-movflags", "+faststart",
		outputPath,
	)
	return args, g, nil
}

// ExportComposite renders the timeline to outputPath and returns the path.
// progress, when set, receives percentages as ffmpeg reports them.
func (e *Executor) ExportComposite(ctx context.Context, main, pip []ExportClip, outputPath string, opts ExportOptions, progress func(Progress)) (string, error) {
	if opts.Preset == "" {
		opts.Preset = e.preset
	}
	if opts.CRF == 0 {
		opts.CRF = e.crf
	}
	args, g, err := ExportArgs(main, pip, outputPath, opts)
	if err != nil {
		return "", err
	}
	if err := export.EnsureDir(outputPath); err != nil {
		return "", err
	}

	e.logger.Info().
		Str("output", outputPath).
		Int("main", len(main)).
		Int("pip", len(pip)).
		Float64("duration", g.Duration).
		Msg("exporting")

	if err := e.Run(ctx, RunOptions{Args: args, Duration: g.Duration, ProgressHandler: progress}); err != nil {
		return "", fmt.Errorf("export %s: %w", outputPath, err)
	}
	return outputPath, nil
}

// num formats seconds and factors with at most three decimals.
func num(v float64) string {
	s := strconv.FormatFloat(v, 'f', 3, 64)
	s = strings.TrimRight(s, "0")
	s = strings.TrimSuffix(s, ".")
	if s == "-0" {
		return "0"
	}
	return s
}

// even rounds a pixel size down to an even number, as yuv420p requires.
func even(v float64) int {
	n := int(math.Round(v))
	if n%2 != 0 {
		n--
	}
	if n < 2 {
		n = 2
	}
	return n
}
