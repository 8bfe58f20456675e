// Package styles provides Lipgloss styles for the editor TUI using the Ciapre colour palette.
package styles

import "github.com/charmbracelet/lipgloss"

// Color palette - Ciapre (warm, earthy) theme from Gogh
const (
	// DeepPurple is the main background colour
	DeepPurple = lipgloss.Color("#191C27")
	// DarkPurple is the status bar background
	DarkPurple = lipgloss.Color("#181818")
	// Purple is the border/dim accent colour
	Purple = lipgloss.Color("#5C4F4B")
	// BrightPurple marks focus and the selected clip
	BrightPurple = lipgloss.Color("#724D7C")
	// Lavender is a secondary text colour
	Lavender = lipgloss.Color("#AEA47A")
	// LightLavender is the primary text colour
	LightLavender = lipgloss.Color("#F3DBB2")
	// Pink is used for headers and the playhead
	Pink = lipgloss.Color("#D33061")
	// Cyan is used for main track clips and key hints
	Cyan = lipgloss.Color("#3097C6")
	// Amber is used for picture-in-picture clips
	Amber = lipgloss.Color("#CC8B3F")
	// Red is used for warnings and errors
	Red = lipgloss.Color("#AC3835")
	// Green is used for success messages
	Green = lipgloss.Color("#A6A75D")
)

// Border is the style for bordered panels
var Border = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Purple)

// Highlight is the style for the selected clip
var Highlight = lipgloss.NewStyle().
	Background(BrightPurple).
	Foreground(LightLavender).
	Bold(true)

// MainClip and PipClip colour clip blocks by track.
var (
	MainClip = lipgloss.NewStyle().Foreground(Cyan)
	PipClip  = lipgloss.NewStyle().Foreground(Amber)
)

// EmptyLane is the style for lane cells without a clip
var EmptyLane = lipgloss.NewStyle().
	Foreground(Purple)

// Playhead is the style for the playhead marker
var Playhead = lipgloss.NewStyle().
	Foreground(Pink).
	Bold(true)

// PrimaryText is the style for primary text content
var PrimaryText = lipgloss.NewStyle().
	Foreground(LightLavender)

// SecondaryText is the style for less prominent text
var SecondaryText = lipgloss.NewStyle().
	Foreground(Lavender)

// Warning is the style for warning messages
var Warning = lipgloss.NewStyle().
	Foreground(Red).
	Bold(true)

// Success is the style for success messages
var Success = lipgloss.NewStyle().
	Foreground(Green).
	Bold(true)
