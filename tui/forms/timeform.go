package forms

import (
	"github.com/charmbracelet/huh"

	"github.com/user/reelcut/pkg/timeutil"
)

// NewGoToForm asks for a timeline position. value holds the current
// playhead as a suggestion and receives what was typed.
func NewGoToForm(value *string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Go to time").
				Description("H:MM:SS, M:SS or seconds").
				Value(value).
				Validate(func(s string) error {
					_, err := timeutil.ParseClock(s)
					return err
				}),
		),
	).WithTheme(Theme()).WithShowHelp(false)
}
