package forms

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/user/reelcut/tui/styles"
)

// fieldColors are the colours a field uses in one focus state.
type fieldColors struct {
	accent, title, text, dim, muted lipgloss.Color
}

var (
	focusedColors = fieldColors{accent: styles.Cyan, title: styles.Pink, text: styles.LightLavender, dim: styles.Lavender, muted: styles.Purple}
	blurredColors = fieldColors{accent: styles.Purple, title: styles.Lavender, text: styles.Lavender, dim: styles.Purple, muted: styles.DeepPurple}
)

// Theme returns a huh theme matching the editor palette.
func Theme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Base = t.Focused.Base.
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.BrightPurple).
		PaddingLeft(1)
	applyFieldColors(&t.Focused, focusedColors)
	t.Focused.Title = t.Focused.Title.Bold(true)
	t.Focused.FocusedButton = lipgloss.NewStyle().
		Background(styles.BrightPurple).
		Foreground(styles.LightLavender).
		Bold(true).
		Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().
		Background(styles.Purple).
		Foreground(styles.Lavender).
		Padding(0, 1)
	t.Focused.Next = t.Focused.FocusedButton

	t.Blurred.Base = t.Blurred.Base.
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true).
		PaddingLeft(1)
	applyFieldColors(&t.Blurred, blurredColors)
	t.Blurred.FocusedButton = t.Focused.BlurredButton
	t.Blurred.BlurredButton = lipgloss.NewStyle().
		Background(styles.DeepPurple).
		Foreground(styles.Purple).
		Padding(0, 1)
	t.Blurred.Next = t.Blurred.FocusedButton

	return t
}

func applyFieldColors(f *huh.FieldStyles, c fieldColors) {
	fg := func(col lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(col) }

	f.Title = fg(c.title)
	f.Description = fg(c.dim)
	f.ErrorIndicator = fg(styles.Pink).Bold(true)
	f.ErrorMessage = fg(styles.Pink)
	f.NoteTitle = fg(c.accent).Bold(true)
	f.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(c.muted).
		Padding(0, 1)

	f.TextInput.Cursor = fg(c.accent)
	f.TextInput.Placeholder = fg(styles.Purple)
	f.TextInput.Prompt = fg(c.accent)
	f.TextInput.Text = fg(c.text)
}
