package forms

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
)

// PathKind selects the prompt a path form shows.
type PathKind int

const (
	PathOpen PathKind = iota
	PathSave
	PathImport
	PathExport
)

var pathPrompts = map[PathKind]struct {
	title, description string
}{
	PathOpen:   {"Open project", "Path to a .reelcut, .json or .yaml project"},
	PathSave:   {"Save project", "Path to save to; .reelcut is added without an extension"},
	PathImport: {"Import media", "One or more video files, separated by commas"},
	PathExport: {"Export video", "Output file for the rendered timeline"},
}

// NewPathForm creates a single-input form for a file path. value may hold a
// suggested path.
func NewPathForm(kind PathKind, value *string) *huh.Form {
	p := pathPrompts[kind]
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(p.title).
				Description(p.description).
				Value(value).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("a path is required")
					}
					return nil
				}),
		),
	).WithTheme(Theme()).WithShowHelp(false)
}

// SplitPaths splits a comma separated import list, dropping blanks.
func SplitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
