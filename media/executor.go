// Package media wraps ffmpeg and ffprobe: probing imports, extracting
// thumbnails and rendering the composite export.
package media

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Default encoding settings
const (
	DefaultPreset     = "fast"
	DefaultCRF        = 23
	DefaultVideoCodec = "libx264"
	DefaultAudioCodec = "aac"
	DefaultPixFmt     = "yuv420p"
)

var (
	// ErrFFmpeg wraps every failed ffmpeg or ffprobe invocation.
	ErrFFmpeg = errors.New("media: ffmpeg failed")
	// ErrDiskFull is reported when ffmpeg ran out of space while writing.
	ErrDiskFull = errors.New("media: not enough disk space to export video")
)

// Runner starts external commands. Tests substitute a fake.
type Runner interface {
	// Output runs name and returns its standard output.
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
	// Stream runs name, handing every stderr and stdout line to onLine.
	Stream(ctx context.Context, name string, args []string, onLine func(string)) error
}

// Options configures an Executor. Empty binaries resolve from PATH.
type Options struct {
	FFmpeg  string
	FFprobe string
	Preset  string
	CRF     int
	Threads int
	// Runner overrides process execution; binaries are then used unresolved.
	Runner Runner
}

// Executor handles all ffmpeg operations with progress streaming
type Executor struct {
	logger      zerolog.Logger
	ffmpegPath  string
	ffprobePath string
	preset      string
	crf         int
	threads     int
	runner      Runner
}

// New creates a new ffmpeg executor
func New(logger zerolog.Logger, opts Options) (*Executor, error) {
	if opts.FFmpeg == "" {
		opts.FFmpeg = "ffmpeg"
	}
	if opts.FFprobe == "" {
		opts.FFprobe = "ffprobe"
	}
	if opts.Preset == "" {
		opts.Preset = DefaultPreset
	}
	if opts.CRF == 0 {
		opts.CRF = DefaultCRF
	}

	e := &Executor{
		logger:      logger.With().Str("component", "ffmpeg").Logger(),
		ffmpegPath:  opts.FFmpeg,
		ffprobePath: opts.FFprobe,
		preset:      opts.Preset,
		crf:         opts.CRF,
		threads:     opts.Threads,
		runner:      opts.Runner,
	}
	if e.runner != nil {
		return e, nil
	}

	ffmpegPath, err := exec.LookPath(opts.FFmpeg)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found in PATH: %w", err)
	}
	ffprobePath, err := exec.LookPath(opts.FFprobe)
	if err != nil {
		return nil, fmt.Errorf("ffprobe not found in PATH: %w", err)
	}
	e.ffmpegPath, e.ffprobePath = ffmpegPath, ffprobePath
	e.runner = execRunner{}
	return e, nil
}

// Progress represents ffmpeg progress data
type Progress struct {
	Frame      int
	FPS        float64
	Speed      string
	Seconds    float64
	Percentage float64
}

// RunOptions configures ffmpeg execution
type RunOptions struct {
	Args []string
	// Duration is the expected output length, used for Percentage.
	Duration        float64
	ProgressHandler func(Progress)
	LogHandler      func(line string)
}

// Run executes ffmpeg with the given arguments and streams progress
func (e *Executor) Run(ctx context.Context, opts RunOptions) error {
	if len(opts.Args) == 0 {
		return fmt.Errorf("no arguments provided")
	}

	baseArgs := []string{"-y", "-hide_banner", "-loglevel", "error"}
	if e.threads > 0 {
		baseArgs = append(baseArgs, "-threads", strconv.Itoa(e.threads))
	}
	baseArgs = append(baseArgs, "-progress", "pipe:2", "-nostats")
	args := append(baseArgs, opts.Args...)

	e.logger.Debug().
		Str("cmd", "ffmpeg").
		Strs("args", args).
		Msg("executing ffmpeg")

	parser := progressParser{duration: opts.Duration, handler: opts.ProgressHandler}
	var tail []string
	err := e.runner.Stream(ctx, e.ffmpegPath, args, func(line string) {
		if opts.LogHandler != nil {
			opts.LogHandler(line)
		}
		if parser.feed(line) {
			return
		}
		tail = append(tail, line)
		if len(tail) > 20 {
			tail = tail[1:]
		}
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return classify(err, strings.Join(tail, "\n"))
	}

	e.logger.Debug().Msg("ffmpeg execution completed")
	return nil
}

// classify turns a failed run and its stderr into a descriptive error.
func classify(err error, stderr string) error {
	if strings.Contains(stderr, "No space left") {
		return fmt.Errorf("%w: %v", ErrDiskFull, err)
	}
	if stderr == "" {
		return fmt.Errorf("%w: %v", ErrFFmpeg, err)
	}
	return fmt.Errorf("%w: %v\n%s", ErrFFmpeg, err, stderr)
}

// progressParser accumulates "key=value" lines from -progress output.
type progressParser struct {
	duration float64
	handler  func(Progress)
	current  Progress
}

// feed consumes one line and reports whether it was progress output.
func (p *progressParser) feed(line string) bool {
	key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
	if !ok || strings.Contains(key, " ") {
		return false
	}
	switch key {
	case "frame":
		p.current.Frame, _ = strconv.Atoi(value)
	case "fps":
		p.current.FPS, _ = strconv.ParseFloat(value, 64)
	case "speed":
		p.current.Speed = strings.TrimSpace(value)
	case "out_time_us", "out_time_ms":
		// ffmpeg reports both keys in microseconds.
		if us, err := strconv.ParseInt(value, 10, 64); err == nil {
			p.current.Seconds = float64(us) / 1e6
		}
	case "progress":
		if p.duration > 0 {
			p.current.Percentage = p.current.Seconds / p.duration * 100
			if p.current.Percentage > 100 {
				p.current.Percentage = 100
			}
		}
		if value == "end" {
			p.current.Percentage = 100
		}
		if p.handler != nil {
			p.handler(p.current)
		}
		p.current = Progress{}
	case "bitrate", "total_size", "out_time", "dup_frames", "drop_frames", "stream_0_0_q":
	default:
		return false
	}
	return true
}

// execRunner runs commands with os/exec.
type execRunner struct{}

func (execRunner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
			return out, fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return out, err
	}
	return out, nil
}

func (execRunner) Stream(ctx context.Context, name string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, name, args...)

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("failed to create stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	scan := func(r io.Reader) {
		defer wg.Done()
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			mu.Lock()
			onLine(scanner.Text())
			mu.Unlock()
		}
	}
	wg.Add(2)
	go scan(stderr)
	go scan(stdout)
	wg.Wait()

	return cmd.Wait()
}
