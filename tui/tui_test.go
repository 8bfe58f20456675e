package tui

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/reelcut/editor"
	"github.com/user/reelcut/logging"
	"github.com/user/reelcut/media"
)

func init() {
	logging.Discard()
}

type fakeProber struct{}

func (fakeProber) Probe(_ context.Context, path string) (*media.Info, error) {
	switch filepath.Base(path) {
	case "a.mp4":
		return &media.Info{Path: path, Filename: "a.mp4", Duration: 10}, nil
	case "b.mp4":
		return &media.Info{Path: path, Filename: "b.mp4", Duration: 6}, nil
	}
	return nil, errors.New("unreadable")
}

type fakeExporter struct{}

func (fakeExporter) ExportComposite(_ context.Context, _, _ []media.ExportClip, out string, _ media.ExportOptions, progress func(media.Progress)) (string, error) {
	progress(media.Progress{Percentage: 40, Seconds: 6.4})
	return out, nil
}

func newTestModel(t *testing.T, files ...string) (*Model, *editor.Session) {
	t.Helper()
	ctx := context.Background()
	sess := editor.New(editor.Options{})
	sess.SetProber(fakeProber{})
	if len(files) > 0 {
		_, err := sess.Import(ctx, files...)
		require.NoError(t, err)
	}
	m := NewModel(ctx, Options{
		Session: sess,
		Now:     func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) },
	})
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 32})
	return m, sess
}

func press(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "ctrl+z":
			msg = tea.KeyMsg{Type: tea.KeyCtrlZ}
		case "ctrl+y":
			msg = tea.KeyMsg{Type: tea.KeyCtrlY}
		case "ctrl+e":
			msg = tea.KeyMsg{Type: tea.KeyCtrlE}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "shift+left":
			msg = tea.KeyMsg{Type: tea.KeyShiftLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		_, cmd = m.Update(msg)
	}
	return cmd
}

func TestSplitAndUndoFromKeys(t *testing.T) {
	m, sess := newTestModel(t, "a.mp4", "b.mp4")
	require.NoError(t, sess.Seek(context.Background(), 4))

	press(m, "s")
	assert.Len(t, m.snap.Clips, 3)
	assert.Empty(t, m.result)

	press(m, "ctrl+z")
	assert.Len(t, m.snap.Clips, 2)
	press(m, "ctrl+y")
	assert.Len(t, m.snap.Clips, 3)
}

func TestSeekKeysMovePlayhead(t *testing.T) {
	m, _ := newTestModel(t, "a.mp4", "b.mp4")
	press(m, "right", "right")
	assert.Equal(t, 10.0, m.snap.Playhead)
	press(m, "j")
	assert.Equal(t, 5.0, m.snap.Playhead)
}

func TestGoToTime(t *testing.T) {
	m, sess := newTestModel(t, "a.mp4", "b.mp4")
	require.NoError(t, sess.Seek(context.Background(), 4))
	m.refresh()

	press(m, "g")
	require.Equal(t, modeForm, m.mode)
	assert.Equal(t, "0:04.00", m.pathInput)

	m.pathInput = "0:12.5"
	m.closeForm()
	m.completeForm(actionGoTo)
	assert.Equal(t, 12.5, m.snap.Playhead)

	m.pathInput = "1:75"
	m.completeForm(actionGoTo)
	assert.True(t, m.resultErr)
	assert.Equal(t, 12.5, m.snap.Playhead)
}

func TestRejectedEditShowsMessage(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "s")
	assert.True(t, m.resultErr)
	assert.Equal(t, "split: no clip under the playhead", m.result)

	press(m, "k")
	assert.Equal(t, "play: no player attached", m.result)
}

func TestNothingToUndo(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "ctrl+z")
	assert.Equal(t, "Nothing to undo", m.result)
	assert.False(t, m.resultErr)
}

func TestStaleResultIsNotCleared(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "ctrl+z")
	first := m.resultSeq
	press(m, "s")
	m.Update(clearResultMsg{seq: first})
	assert.NotEmpty(t, m.result)
	m.Update(clearResultMsg{seq: m.resultSeq})
	assert.Empty(t, m.result)
}

func TestDeleteAsksFirst(t *testing.T) {
	m, sess := newTestModel(t, "a.mp4", "b.mp4")

	press(m, "x")
	require.Equal(t, modeForm, m.mode)
	press(m, "esc")
	assert.Equal(t, modeEdit, m.mode)
	assert.Len(t, sess.Clips(), 2)

	press(m, "x")
	m.confirmed = true
	m.closeForm()
	m.completeForm(actionDelete)
	assert.Len(t, m.snap.Clips, 1)
	assert.Empty(t, m.snap.SelectedClipID)
}

func TestReorderAndTrackKeys(t *testing.T) {
	m, _ := newTestModel(t, "a.mp4", "b.mp4")
	// b is selected after import
	press(m, "shift+left")
	assert.Equal(t, "b.mp4", m.snap.Clips[0].Filename)

	press(m, "p")
	assert.Equal(t, "pip", string(m.snap.ActiveTrack))
	press(m, "tab")
	assert.Equal(t, "main", string(m.snap.ActiveTrack))

	press(m, "m")
	for _, c := range m.snap.Clips {
		assert.Equal(t, c.Filename == "b.mp4", c.Muted, c.Filename)
	}
}

func TestZoomKeys(t *testing.T) {
	m, _ := newTestModel(t)
	press(m, "+", "+")
	assert.Equal(t, 5.0, m.snap.Zoom)
	press(m, "0")
	assert.Equal(t, 1.0, m.snap.Zoom)
}

func TestQuit(t *testing.T) {
	m, _ := newTestModel(t)
	cmd := press(m, "q")
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)

	dirty, _ := newTestModel(t, "a.mp4")
	press(dirty, "q")
	assert.False(t, dirty.quitting)
	assert.Equal(t, modeForm, dirty.mode)
}

func TestExport(t *testing.T) {
	m, _ := newTestModel(t, "a.mp4")
	press(m, "ctrl+e")
	assert.Equal(t, "export: ffmpeg was not found", m.result)

	m.exporter = fakeExporter{}
	press(m, "ctrl+e")
	require.Equal(t, modeForm, m.mode)
	assert.Equal(t, "a-edited-2024-03-01.mp4", m.pathInput)

	m.closeForm()
	_, cmd := m.completeForm(actionExport)
	require.NotNil(t, cmd)
	assert.True(t, m.export.Active)

	msg := cmd()
	for {
		if _, ok := msg.(exportProgressMsg); !ok {
			break
		}
		_, cmd = m.Update(msg)
		msg = cmd()
	}
	m.Update(msg)
	assert.True(t, m.export.Done)
	assert.Equal(t, "a-edited-2024-03-01.mp4", m.export.Output)
	assert.Nil(t, m.exportCh)
}

func TestView(t *testing.T) {
	m, _ := newTestModel(t, "a.mp4", "b.mp4")
	out := ansi.Strip(m.View())
	assert.Contains(t, out, "Timeline")
	assert.Contains(t, out, "Playback")
	assert.Contains(t, out, "Project")
	assert.Contains(t, out, "b.mp4")
	assert.Contains(t, out, "untitled*")

	press(m, "?")
	assert.Contains(t, ansi.Strip(m.View()), "Keybindings")
	press(m, "z")
	assert.Equal(t, modeEdit, m.mode)

	m.Update(tea.WindowSizeMsg{Width: 40, Height: 20})
	assert.Contains(t, ansi.Strip(m.View()), "Terminal too narrow")
}
