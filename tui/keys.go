package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap is every editor binding. It implements help.KeyMap.
type keyMap struct {
	PlayPause   key.Binding
	SeekBack    key.Binding
	SeekForward key.Binding
	Start       key.Binding
	End         key.Binding
	GoTo        key.Binding

	SetIn       key.Binding
	SetOut      key.Binding
	Split       key.Binding
	Delete      key.Binding
	SelectPrev  key.Binding
	SelectNext  key.Binding
	MoveLeft    key.Binding
	MoveRight   key.Binding
	ToggleTrack key.Binding
	Mute        key.Binding

	Undo   key.Binding
	Redo   key.Binding
	Import key.Binding
	Save   key.Binding
	Open   key.Binding
	New    key.Binding
	Export key.Binding

	ZoomIn      key.Binding
	ZoomOut     key.Binding
	ZoomReset   key.Binding
	SwitchTrack key.Binding
	Help        key.Binding
	Quit        key.Binding
}

var keys = keyMap{
	PlayPause: key.NewBinding(
		key.WithKeys(" ", "k"),
		key.WithHelp("space/k", "play/pause"),
	),
	SeekBack: key.NewBinding(
		key.WithKeys("left", "j"),
		key.WithHelp("←/j", "back 5s"),
	),
	SeekForward: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "forward 5s"),
	),
	Start: key.NewBinding(
		key.WithKeys("home"),
		key.WithHelp("home", "go to start"),
	),
	End: key.NewBinding(
		key.WithKeys("end"),
		key.WithHelp("end", "go to end"),
	),
	GoTo: key.NewBinding(
		key.WithKeys("g"),
		key.WithHelp("g", "go to time"),
	),
	SetIn: key.NewBinding(
		key.WithKeys("i"),
		key.WithHelp("i", "set in point"),
	),
	SetOut: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "set out point"),
	),
	Split: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "split at playhead"),
	),
	Delete: key.NewBinding(
		key.WithKeys("delete", "x"),
		key.WithHelp("del/x", "delete clip"),
	),
	SelectPrev: key.NewBinding(
		key.WithKeys("["),
		key.WithHelp("[", "previous clip"),
	),
	SelectNext: key.NewBinding(
		key.WithKeys("]"),
		key.WithHelp("]", "next clip"),
	),
	MoveLeft: key.NewBinding(
		key.WithKeys("shift+left"),
		key.WithHelp("shift+←", "move clip left"),
	),
	MoveRight: key.NewBinding(
		key.WithKeys("shift+right"),
		key.WithHelp("shift+→", "move clip right"),
	),
	ToggleTrack: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "move to/from pip"),
	),
	Mute: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "mute clip"),
	),
	Undo: key.NewBinding(
		key.WithKeys("ctrl+z"),
		key.WithHelp("ctrl+z", "undo"),
	),
	Redo: key.NewBinding(
		key.WithKeys("ctrl+shift+z", "ctrl+y"),
		key.WithHelp("ctrl+y", "redo"),
	),
	Import: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "import media"),
	),
	Save: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "save"),
	),
	Open: key.NewBinding(
		key.WithKeys("ctrl+o"),
		key.WithHelp("ctrl+o", "open"),
	),
	New: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("ctrl+n", "new project"),
	),
	Export: key.NewBinding(
		key.WithKeys("ctrl+e"),
		key.WithHelp("ctrl+e", "export"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "zoom out"),
	),
	ZoomReset: key.NewBinding(
		key.WithKeys("0"),
		key.WithHelp("0", "reset zoom"),
	),
	SwitchTrack: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "switch track"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp is the footer hint line.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PlayPause, k.Split, k.SetIn, k.SetOut, k.Delete, k.Undo, k.Help, k.Quit}
}

// FullHelp groups every binding into columns for the help overlay.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PlayPause, k.SeekBack, k.SeekForward, k.Start, k.End, k.GoTo, k.ZoomIn, k.ZoomOut, k.ZoomReset},
		{k.SetIn, k.SetOut, k.Split, k.Delete, k.Mute, k.ToggleTrack, k.MoveLeft, k.MoveRight},
		{k.SelectPrev, k.SelectNext, k.SwitchTrack, k.Undo, k.Redo, k.Help, k.Quit},
		{k.Import, k.Open, k.Save, k.New, k.Export},
	}
}
