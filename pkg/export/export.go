package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// unsafeChars matches characters not safe for filenames: / \ : * ? < > | and spaces
var unsafeChars = regexp.MustCompile(`[/\\:*?<>|\s]`)

// sanitize replaces unsafe filename characters with underscores.
func sanitize(s string) string {
	return unsafeChars.ReplaceAllString(s, "_")
}

// DefaultFilename returns the suggested export name for a timeline whose
// first clip is called firstName.
// Format: {firstNameNoExt}-edited-{YYYY-MM-DD}.mp4
func DefaultFilename(firstName string, now time.Time) string {
	base := strings.TrimSuffix(firstName, filepath.Ext(firstName))
	base = sanitize(base)
	if base == "" {
		base = "timeline"
	}
	return fmt.Sprintf("%s-edited-%s.mp4", base, now.Format("2006-01-02"))
}

// BuildOutputPath resolves name inside dir, adding a .mp4 extension when
// name has none. An absolute name is used as is.
func BuildOutputPath(dir, name string) string {
	if filepath.Ext(name) == "" {
		name += ".mp4"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(dir, name)
}

// EnsureDir creates the directory that will hold outputPath.
func EnsureDir(outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}
