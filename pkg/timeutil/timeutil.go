package timeutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ParseClock reads a playhead position typed by a user: H:MM:SS, M:SS or
// plain seconds, each optionally with a fractional part. It accepts
// everything FormatClock produces.
func ParseClock(s string) (float64, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if s == "" || len(parts) > 3 {
		return 0, fmt.Errorf("expected H:MM:SS, M:SS or seconds, got %q", s)
	}

	secs, err := strconv.ParseFloat(parts[len(parts)-1], 64)
	if err != nil || secs < 0 || math.IsInf(secs, 0) || math.IsNaN(secs) {
		return 0, fmt.Errorf("invalid seconds in %q", s)
	}
	if len(parts) > 1 && secs >= 60 {
		return 0, fmt.Errorf("seconds out of range in %q", s)
	}

	total := secs
	unit := 60.0
	for i := len(parts) - 2; i >= 0; i-- {
		n, err := strconv.Atoi(parts[i])
		if err != nil || n < 0 {
			return 0, fmt.Errorf("invalid time %q", s)
		}
		if i == 1 && len(parts) == 3 && n >= 60 {
			return 0, fmt.Errorf("minutes out of range in %q", s)
		}
		total += float64(n) * unit
		unit *= 60
	}
	return total, nil
}

// FormatClock formats seconds as M:SS.cc for the editor's playhead readout
// (e.g. 1:05.50). Minutes are not wrapped into hours.
func FormatClock(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	centis := int(math.Round(seconds * 100))
	mins := centis / 6000
	secs := (centis % 6000) / 100
	cs := centis % 100
	return fmt.Sprintf("%d:%02d.%02d", mins, secs, cs)
}

// FormatShort formats whole seconds as M:SS for ruler labels.
func FormatShort(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(math.Round(seconds))
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
