package media

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// ThumbnailWidth is the pixel width of extracted thumbnails.
const ThumbnailWidth = 160

// ThumbnailTimes spreads count sample points evenly over duration, each in
// the middle of its slice.
func ThumbnailTimes(duration float64, count int) []float64 {
	if count <= 0 || duration <= 0 {
		return nil
	}
	step := duration / float64(count)
	times := make([]float64, count)
	for i := range times {
		times[i] = step*float64(i) + step/2
	}
	return times
}

// ExtractThumbnails writes count JPEG stills of path into dir and returns
// their paths in timeline order. Files are named after a hash of path so
// re-imports reuse the same names.
func (e *Executor) ExtractThumbnails(ctx context.Context, path string, count int, duration float64, dir string) ([]string, error) {
	times := ThumbnailTimes(duration, count)
	if len(times) == 0 {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create thumbnail directory: %w", err)
	}

	sum := sha1.Sum([]byte(path))
	prefix := hex.EncodeToString(sum[:6])

	paths := make([]string, 0, len(times))
	for i, t := range times {
		out := filepath.Join(dir, fmt.Sprintf("%s-%02d.jpg", prefix, i))
		err := e.Run(ctx, RunOptions{Args: []string{
			"-ss", strconv.FormatFloat(t, 'f', 3, 64),
			"-i", path,
			"-frames:v", "1",
			"-vf", fmt.Sprintf("scale=%d:-2", ThumbnailWidth),
			"-q:v", "4",
			out,
		}})
		if err != nil {
			return paths, fmt.Errorf("thumbnail %d of %s: %w", i, path, err)
		}
		paths = append(paths, out)
	}
	return paths, nil
}
