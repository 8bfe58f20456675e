package media

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNoVideoStream is returned for files without a decodable video stream.
var ErrNoVideoStream = errors.New("media: no video stream")

// SupportedExtensions lists the video containers the editor imports.
var SupportedExtensions = []string{".mp4", ".mov", ".avi", ".mkv", ".webm", ".m4v"}

// IsSupported reports whether path has an importable video extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range SupportedExtensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Info contains metadata about a video file
type Info struct {
	Path     string  `json:"path"`
	Filename string  `json:"filename"`
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	Codec    string  `json:"codec"`
	FPS      float64 `json:"fps"`
	HasAudio bool    `json:"hasAudio"`
	Size     int64   `json:"size"`
}

// Probe extracts metadata from a video file
func (e *Executor) Probe(ctx context.Context, path string) (*Info, error) {
	if path == "" {
		return nil, fmt.Errorf("file path is required")
	}

	output, err := e.runner.Output(ctx, e.ffprobePath,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: ffprobe %s: %v", ErrFFmpeg, path, err)
	}

	info, err := ParseProbe(path, output)
	if err != nil {
		return nil, err
	}
	e.logger.Debug().
		Str("path", path).
		Float64("duration", info.Duration).
		Str("codec", info.Codec).
		Msg("probed")
	return info, nil
}

// ParseProbe decodes ffprobe's JSON output for path.
func ParseProbe(path string, data []byte) (*Info, error) {
	var probe probeResult
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{
		Path:     path,
		Filename: filepath.Base(path),
	}
	if dur, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = dur
	}
	if size, err := strconv.ParseInt(probe.Format.Size, 10, 64); err == nil {
		info.Size = size
	}

	video := false
	for _, stream := range probe.Streams {
		switch stream.CodecType {
		case "video":
			if video {
				continue
			}
			video = true
			info.Width = stream.Width
			info.Height = stream.Height
			info.Codec = stream.CodecName
			info.FPS = parseFrameRate(stream.RFrameRate)
			if info.Duration == 0 {
				info.Duration, _ = strconv.ParseFloat(stream.Duration, 64)
			}
		case "audio":
			info.HasAudio = true
		}
	}
	if !video {
		return nil, fmt.Errorf("%w: %s", ErrNoVideoStream, path)
	}
	if info.Duration <= 0 {
		return nil, fmt.Errorf("media: %s has no duration", path)
	}
	return info, nil
}

// parseFrameRate parses rates such as "30000/1001" or "25".
func parseFrameRate(s string) float64 {
	num, den, ok := strings.Cut(s, "/")
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}
	if !ok {
		return n
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}
	return n / d
}

// probeResult matches ffprobe JSON output structure
type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
		Size     string `json:"size"`
	} `json:"format"`
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		Duration   string `json:"duration"`
	} `json:"streams"`
}
