// Package forms provides huh-based dialogs for the editor TUI.
package forms

import (
	"github.com/charmbracelet/huh"
)

// NewConfirmForm creates a yes/no dialog. The answer is written to confirmed.
func NewConfirmForm(title, description, affirmative string, confirmed *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative(affirmative).
				Negative("Cancel").
				Value(confirmed),
		),
	).WithTheme(Theme()).WithShowHelp(false)
}

// NewDeleteClipForm asks before removing a clip from the timeline.
func NewDeleteClipForm(name string, confirmed *bool) *huh.Form {
	return NewConfirmForm("Delete "+name+"?", "The clip can be restored with undo.", "Delete", confirmed)
}

// NewDiscardForm asks before throwing away unsaved edits.
func NewDiscardForm(action string, confirmed *bool) *huh.Form {
	return NewConfirmForm("Discard unsaved changes?", "The project has edits that are not saved.", action, confirmed)
}
