package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/user/reelcut/editor"
	"github.com/user/reelcut/media"
)

// exportProgressMsg carries ffmpeg progress from the export goroutine.
type exportProgressMsg media.Progress

// exportCompleteMsg is sent when the render finished.
type exportCompleteMsg struct {
	path string
}

// exportErrorMsg is sent when the render failed.
type exportErrorMsg struct {
	err error
}

// waitForExportMsg returns a tea.Cmd that waits for the next message on the channel.
func waitForExportMsg(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-ch
		if !ok {
			return nil
		}
		return msg
	}
}

// startExport renders the session's timeline in a background goroutine.
// Progress is best effort: updates are dropped while the UI is behind.
func startExport(ctx context.Context, session *editor.Session, exp editor.Exporter, out string, opts media.ExportOptions) <-chan tea.Msg {
	ch := make(chan tea.Msg, 8)
	go func() {
		defer close(ch)

		path, err := session.Export(ctx, exp, out, opts, func(p media.Progress) {
			select {
			case ch <- exportProgressMsg(p):
			default:
			}
		})

		var final tea.Msg = exportCompleteMsg{path: path}
		if err != nil {
			final = exportErrorMsg{err: err}
		}
		select {
		case ch <- final:
		case <-ctx.Done():
		}
	}()
	return ch
}
