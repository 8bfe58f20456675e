package tui

// mode is what currently receives key presses.
type mode int

const (
	// modeEdit routes keys to the editor bindings.
	modeEdit mode = iota
	// modeForm routes every message to the open dialog.
	modeForm
	// modeHelp shows the help overlay until any key is pressed.
	modeHelp
)

// formAction is what a dialog does once it completes.
type formAction int

const (
	actionNone formAction = iota
	actionDelete
	actionNew
	actionDiscardThenOpen
	actionDiscardThenQuit
	actionOpen
	actionSave
	actionImport
	actionExport
	actionGoTo
)
