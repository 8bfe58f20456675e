package deps

import (
	"fmt"
	"os/exec"
)

const (
	MpvInstallURL    = "https://mpv.io/installation/"
	FfmpegInstallURL = "https://ffmpeg.org/download.html"
)

// DependencyError contains information about a missing dependency
type DependencyError struct {
	Name       string
	InstallURL string
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("%s not found. Install from: %s", e.Name, e.InstallURL)
}

// Binaries names the external programs the editor shells out to. Empty
// fields fall back to the program's default name.
type Binaries struct {
	Mpv     string
	Ffmpeg  string
	Ffprobe string
}

func (b Binaries) withDefaults() Binaries {
	if b.Mpv == "" {
		b.Mpv = "mpv"
	}
	if b.Ffmpeg == "" {
		b.Ffmpeg = "ffmpeg"
	}
	if b.Ffprobe == "" {
		b.Ffprobe = "ffprobe"
	}
	return b
}

// Check reports whether binary can be found in PATH (or at its given path).
// installURL is carried in the returned *DependencyError.
func Check(binary, installURL string) error {
	if _, err := exec.LookPath(binary); err != nil {
		return &DependencyError{
			Name:       binary,
			InstallURL: installURL,
		}
	}
	return nil
}

// CheckMpv checks if mpv is installed and available in PATH
func CheckMpv() error {
	return Check("mpv", MpvInstallURL)
}

// CheckFfmpeg checks if ffmpeg is installed and available in PATH
func CheckFfmpeg() error {
	return Check("ffmpeg", FfmpegInstallURL)
}

// CheckFfprobe checks if ffprobe is installed and available in PATH.
// It ships with ffmpeg.
func CheckFfprobe() error {
	return Check("ffprobe", FfmpegInstallURL)
}

// Result is the outcome of checking one dependency.
type Result struct {
	Name string
	Path string
	Err  error
}

// CheckAll checks all dependencies and returns a slice of errors for missing ones
func CheckAll(b Binaries) []error {
	var errors []error
	for _, r := range Report(b) {
		if r.Err != nil {
			errors = append(errors, r.Err)
		}
	}
	return errors
}

// Report checks every dependency and returns one Result each, in a fixed order.
func Report(b Binaries) []Result {
	b = b.withDefaults()
	checks := []struct {
		name, binary, url string
	}{
		{"mpv", b.Mpv, MpvInstallURL},
		{"ffmpeg", b.Ffmpeg, FfmpegInstallURL},
		{"ffprobe", b.Ffprobe, FfmpegInstallURL},
	}

	results := make([]Result, 0, len(checks))
	for _, c := range checks {
		r := Result{Name: c.name}
		if path, err := exec.LookPath(c.binary); err == nil {
			r.Path = path
		} else {
			r.Err = &DependencyError{Name: c.binary, InstallURL: c.url}
		}
		results = append(results, r)
	}
	return results
}
