// Package tui is the terminal front end of the editor: a status bar, clip and
// playback panels, the two-lane timeline and keyboard editing.
package tui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/user/reelcut/editor"
	"github.com/user/reelcut/logging"
	"github.com/user/reelcut/media"
	"github.com/user/reelcut/pkg/timeutil"
	"github.com/user/reelcut/timeline"
	"github.com/user/reelcut/tui/components"
	"github.com/user/reelcut/tui/forms"
	"github.com/user/reelcut/tui/layout"
	"github.com/user/reelcut/tui/styles"
)

const (
	// defaultTickInterval is how often the view re-reads the session, about 30 fps.
	defaultTickInterval = 33 * time.Millisecond
	// defaultSeekStep is the jump of the seek keys in seconds.
	defaultSeekStep = 5.0
	// resultDisplayDuration is how long to show command results.
	resultDisplayDuration = 3 * time.Second
	// timelineHeight is the rendered height of components.Timeline.
	timelineHeight = 6
)

// ErrNoExporter is shown when export is requested without a media backend.
var ErrNoExporter = errors.New("ffmpeg was not found")

// tickMsg is sent on every tick interval to refresh the view from the session.
type tickMsg time.Time

// clearResultMsg clears the footer message it was scheduled for.
type clearResultMsg struct {
	seq int
}

// Options wires a Model.
type Options struct {
	Session *editor.Session
	// Exporter renders the timeline; nil disables export.
	Exporter      editor.Exporter
	ExportOptions media.ExportOptions
	// HasPlayer reports whether mpv is attached; it only affects the status display.
	HasPlayer    bool
	TickInterval time.Duration
	SeekStep     float64
	// Now is the clock for default export names.
	Now func() time.Time
}

// Model is the Bubbletea model for the editor.
type Model struct {
	ctx          context.Context
	session      *editor.Session
	exporter     editor.Exporter
	exportOpts   media.ExportOptions
	hasPlayer    bool
	tickInterval time.Duration
	seekStep     float64
	now          func() time.Time
	log          zerolog.Logger

	keys keyMap
	help help.Model

	// snap is the session state as of the last tick or edit
	snap   editor.Snapshot
	width  int
	height int
	mode   mode

	// dialog state
	form      *huh.Form
	pending   formAction
	pendingID string
	confirmed bool
	pathInput string

	// footer message
	result    string
	resultErr bool
	resultSeq int

	export   components.ExportProgressState
	exportCh <-chan tea.Msg

	quitting bool
}

// NewModel creates a Model over an editing session.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.TickInterval <= 0 {
		opts.TickInterval = defaultTickInterval
	}
	if opts.SeekStep <= 0 {
		opts.SeekStep = defaultSeekStep
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(styles.Lavender)
	h.Styles.FullKey = h.Styles.ShortKey
	h.Styles.FullDesc = lipgloss.NewStyle().Foreground(styles.LightLavender)

	m := &Model{
		ctx:          ctx,
		session:      opts.Session,
		exporter:     opts.Exporter,
		exportOpts:   opts.ExportOptions,
		hasPlayer:    opts.HasPlayer,
		tickInterval: opts.TickInterval,
		seekStep:     opts.SeekStep,
		now:          opts.Now,
		log:          logging.WithComponent("tui"),
		keys:         keys,
		help:         h,
	}
	m.refresh()
	return m
}

// Init starts the refresh ticker.
func (m *Model) Init() tea.Cmd {
	return m.tickCmd()
}

// tickCmd returns a command that sends a tickMsg after the tick interval.
func (m *Model) tickCmd() tea.Cmd {
	return tea.Tick(m.tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) refresh() {
	m.snap = m.session.Snapshot()
}

// Update handles messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh()
		return m, m.tickCmd()

	case clearResultMsg:
		if msg.seq == m.resultSeq {
			m.result = ""
		}
		return m, nil

	case exportProgressMsg:
		m.export.Percentage = msg.Percentage
		m.export.Seconds = msg.Seconds
		m.export.Speed = msg.Speed
		return m, waitForExportMsg(m.exportCh)

	case exportCompleteMsg:
		m.export.Done = true
		m.export.Output = msg.path
		m.exportCh = nil
		return m, m.setResult("Exported "+msg.path, false)

	case exportErrorMsg:
		m.export.Err = msg.err
		m.exportCh = nil
		m.log.Warn().Err(msg.err).Msg("export failed")
		return m, m.setResult("Export failed: "+msg.err.Error(), true)
	}

	switch m.mode {
	case modeForm:
		return m.updateForm(msg)
	case modeHelp:
		if _, ok := msg.(tea.KeyMsg); ok {
			m.mode = modeEdit
		}
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		return m.handleKey(msg)
	}
	return m, nil
}

// handleKey maps editor bindings onto session operations.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.exportCh == nil && (m.export.Done || m.export.Err != nil) {
		m.export = components.ExportProgressState{}
	}

	ctx, s := m.ctx, m.session
	switch {
	case key.Matches(msg, m.keys.Quit):
		if m.snap.Dirty {
			return m.openConfirm(actionDiscardThenQuit, forms.NewDiscardForm("Quit", &m.confirmed))
		}
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.mode = modeHelp
		return m, nil

	case key.Matches(msg, m.keys.PlayPause):
		return m, m.apply("play", s.TogglePlay(ctx))
	case key.Matches(msg, m.keys.SeekBack):
		return m, m.apply("seek", s.SeekRelative(ctx, -m.seekStep))
	case key.Matches(msg, m.keys.SeekForward):
		return m, m.apply("seek", s.SeekRelative(ctx, m.seekStep))
	case key.Matches(msg, m.keys.Start):
		return m, m.apply("seek", s.SeekStart(ctx))
	case key.Matches(msg, m.keys.End):
		return m, m.apply("seek", s.SeekEnd(ctx))
	case key.Matches(msg, m.keys.GoTo):
		m.pathInput = timeutil.FormatClock(m.snap.Playhead)
		return m.openForm(actionGoTo, forms.NewGoToForm(&m.pathInput))

	case key.Matches(msg, m.keys.SetIn):
		return m, m.apply("set in point", s.SetInPoint(ctx))
	case key.Matches(msg, m.keys.SetOut):
		return m, m.apply("set out point", s.SetOutPoint(ctx))
	case key.Matches(msg, m.keys.Split):
		return m, m.apply("split", s.Split(ctx))
	case key.Matches(msg, m.keys.Delete):
		clip, ok := timeline.Find(m.snap.Clips, m.snap.SelectedClipID)
		if !ok {
			return m, m.apply("delete", editor.ErrNoSelection)
		}
		m.pendingID = clip.ID
		return m.openConfirm(actionDelete, forms.NewDeleteClipForm(clip.Filename, &m.confirmed))
	case key.Matches(msg, m.keys.SelectPrev):
		return m, m.apply("select", s.SelectPrevious(ctx))
	case key.Matches(msg, m.keys.SelectNext):
		return m, m.apply("select", s.SelectNext(ctx))
	case key.Matches(msg, m.keys.MoveLeft):
		return m, m.apply("move", s.Nudge(ctx, "", -1))
	case key.Matches(msg, m.keys.MoveRight):
		return m, m.apply("move", s.Nudge(ctx, "", 1))
	case key.Matches(msg, m.keys.ToggleTrack):
		return m, m.apply("move track", s.ToggleTrack(ctx, ""))
	case key.Matches(msg, m.keys.Mute):
		return m, m.apply("mute", s.ToggleMute(ctx, ""))

	case key.Matches(msg, m.keys.Undo):
		if !s.Undo(ctx) {
			m.refresh()
			return m, m.setResult("Nothing to undo", false)
		}
		return m, m.apply("undo", nil)
	case key.Matches(msg, m.keys.Redo):
		if !s.Redo(ctx) {
			m.refresh()
			return m, m.setResult("Nothing to redo", false)
		}
		return m, m.apply("redo", nil)

	case key.Matches(msg, m.keys.Import):
		m.pathInput = ""
		return m.openPath(actionImport, forms.PathImport)
	case key.Matches(msg, m.keys.Save):
		if s.Path() != "" {
			return m, m.apply("save", s.Save(ctx, ""), "Saved "+filepath.Base(s.Path()))
		}
		m.pathInput = "untitled.reelcut"
		return m.openPath(actionSave, forms.PathSave)
	case key.Matches(msg, m.keys.Open):
		if m.snap.Dirty {
			return m.openConfirm(actionDiscardThenOpen, forms.NewDiscardForm("Open", &m.confirmed))
		}
		m.pathInput = ""
		return m.openPath(actionOpen, forms.PathOpen)
	case key.Matches(msg, m.keys.New):
		if len(m.snap.Clips) == 0 && !m.snap.Dirty {
			return m, m.apply("new project", s.NewProject(ctx))
		}
		return m.openConfirm(actionNew, forms.NewDiscardForm("New project", &m.confirmed))
	case key.Matches(msg, m.keys.Export):
		switch {
		case m.exporter == nil:
			return m, m.apply("export", ErrNoExporter)
		case m.exportCh != nil:
			return m, m.setResult("An export is already running", true)
		case len(m.snap.Clips) == 0:
			return m, m.apply("export", media.ErrNothingToExport)
		}
		m.pathInput = s.DefaultExportName(m.now())
		return m.openPath(actionExport, forms.PathExport)

	case key.Matches(msg, m.keys.ZoomIn):
		s.ZoomIn()
	case key.Matches(msg, m.keys.ZoomOut):
		s.ZoomOut()
	case key.Matches(msg, m.keys.ZoomReset):
		s.ResetZoom()
	case key.Matches(msg, m.keys.SwitchTrack):
		s.SwitchTrack()
	default:
		return m, nil
	}
	m.refresh()
	return m, nil
}

// apply refreshes the view after an operation and reports its error, or the
// optional success message.
func (m *Model) apply(op string, err error, success ...string) tea.Cmd {
	m.refresh()
	if err != nil {
		m.log.Debug().Err(err).Str("op", op).Msg("edit rejected")
		return m.setResult(fmt.Sprintf("%s: %s", op, describe(err)), true)
	}
	if len(success) > 0 {
		return m.setResult(success[0], false)
	}
	return nil
}

// describe turns session errors into footer text.
func describe(err error) string {
	switch {
	case errors.Is(err, editor.ErrNoPlayer):
		return "no player attached"
	case errors.Is(err, editor.ErrNoSelection):
		return "select a clip first"
	case errors.Is(err, timeline.ErrNoClipAtPlayhead):
		return "no clip under the playhead"
	case errors.Is(err, timeline.ErrSplitOutOfRange):
		return "the playhead is on a clip edge"
	case errors.Is(err, timeline.ErrTrimTooShort):
		return "the clip would be too short"
	}
	return err.Error()
}

// setResult shows msg in the footer and schedules clearing it.
func (m *Model) setResult(msg string, isErr bool) tea.Cmd {
	m.resultSeq++
	seq := m.resultSeq
	m.result = msg
	m.resultErr = isErr
	return tea.Tick(resultDisplayDuration, func(time.Time) tea.Msg {
		return clearResultMsg{seq: seq}
	})
}

func (m *Model) openConfirm(action formAction, form *huh.Form) (tea.Model, tea.Cmd) {
	m.confirmed = false
	return m.openForm(action, form)
}

func (m *Model) openPath(action formAction, kind forms.PathKind) (tea.Model, tea.Cmd) {
	return m.openForm(action, forms.NewPathForm(kind, &m.pathInput))
}

func (m *Model) openForm(action formAction, form *huh.Form) (tea.Model, tea.Cmd) {
	m.form = form
	m.pending = action
	m.mode = modeForm
	return m, m.form.Init()
}

func (m *Model) closeForm() {
	m.form = nil
	m.pending = actionNone
	m.mode = modeEdit
}

// updateForm forwards messages to the open dialog and runs its action once it completes.
func (m *Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if k, ok := msg.(tea.KeyMsg); ok && k.String() == "esc" {
		m.closeForm()
		return m, nil
	}

	f, cmd := m.form.Update(msg)
	if form, ok := f.(*huh.Form); ok {
		m.form = form
	}

	switch m.form.State {
	case huh.StateCompleted:
		action := m.pending
		m.closeForm()
		return m.completeForm(action)
	case huh.StateAborted:
		m.closeForm()
		return m, nil
	}
	return m, cmd
}

func (m *Model) completeForm(action formAction) (tea.Model, tea.Cmd) {
	ctx, s := m.ctx, m.session
	path := strings.TrimSpace(m.pathInput)

	switch action {
	case actionDelete:
		if m.confirmed {
			return m, m.apply("delete", s.Delete(ctx, m.pendingID))
		}
	case actionNew:
		if m.confirmed {
			return m, m.apply("new project", s.NewProject(ctx))
		}
	case actionDiscardThenOpen:
		if m.confirmed {
			m.pathInput = ""
			return m.openPath(actionOpen, forms.PathOpen)
		}
	case actionDiscardThenQuit:
		if m.confirmed {
			m.quitting = true
			return m, tea.Quit
		}
	case actionOpen:
		return m, m.apply("open", s.Open(ctx, path), "Opened "+filepath.Base(path))
	case actionSave:
		err := s.Save(ctx, path)
		return m, m.apply("save", err, "Saved "+filepath.Base(s.Path()))
	case actionImport:
		return m, m.importPaths(forms.SplitPaths(path))
	case actionGoTo:
		at, err := timeutil.ParseClock(path)
		if err != nil {
			return m, m.apply("seek", err)
		}
		return m, m.apply("seek", s.Seek(ctx, at))
	case actionExport:
		m.export = components.ExportProgressState{Active: true, Output: path}
		m.exportCh = startExport(ctx, s, m.exporter, path, m.exportOpts)
		return m, waitForExportMsg(m.exportCh)
	}
	return m, nil
}

func (m *Model) importPaths(paths []string) tea.Cmd {
	res, err := m.session.Import(m.ctx, paths...)
	if err != nil {
		return m.apply("import", err)
	}
	msg := fmt.Sprintf("Imported %d clip(s)", len(res.Added))
	if n := len(res.Skipped); n > 0 {
		msg += fmt.Sprintf(", skipped %d", n)
	}
	if res.Warning != "" {
		msg += ". " + res.Warning
	}
	return m.apply("import", nil, msg)
}

// View renders the editor.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if m.width > 0 && m.width < layout.MinTerminalWidth {
		warningStyle := lipgloss.NewStyle().Foreground(styles.Pink).Bold(true)
		hintStyle := lipgloss.NewStyle().Foreground(styles.Lavender).Italic(true)
		return warningStyle.Render(fmt.Sprintf("Terminal too narrow (%d cols)", m.width)) + "\n" +
			hintStyle.Render(fmt.Sprintf("Minimum width: %d columns", layout.MinTerminalWidth))
	}

	if m.mode == modeHelp {
		return components.HelpOverlay(m.help.FullHelpView(m.keys.FullHelp()), m.width, m.height)
	}

	statusBar := components.StatusBar(m.statusState(), m.width)

	panelHeight := m.height - 2 - timelineHeight
	if panelHeight < 6 {
		panelHeight = 6
	}

	var middle string
	if m.mode == modeForm && m.form != nil {
		dialog := styles.Border.Padding(0, 1).Render(m.form.View())
		middle = lipgloss.Place(m.width, panelHeight, lipgloss.Center, lipgloss.Center, dialog)
	} else {
		middle = m.renderPanels(panelHeight)
	}

	tl := components.Timeline(components.TimelineState{
		Clips:          m.snap.Clips,
		SelectedID:     m.snap.SelectedClipID,
		ActiveTrack:    m.snap.ActiveTrack,
		Playhead:       m.snap.Playhead,
		CellsPerSecond: m.snap.Zoom,
	}, m.width)

	return statusBar + "\n" + middle + "\n" + tl + "\n" + m.renderFooter()
}

func (m *Model) renderFooter() string {
	if m.result == "" {
		return layout.PadToWidth(" "+m.help.ShortHelpView(m.keys.ShortHelp()), m.width)
	}
	style := styles.Success
	if m.resultErr {
		style = styles.Warning
	}
	return layout.PadToWidth(" "+style.Render(m.result), m.width)
}

// Run starts the Bubbletea program and blocks until the user quits or ctx is cancelled.
func Run(ctx context.Context, opts Options) error {
	p := tea.NewProgram(NewModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
