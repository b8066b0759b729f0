package ui

import (
	"github.com/charmbracelet/lipgloss"
)

// Theme colors used throughout the UI
const (
	ColorAccent    = "86"  // Cyan/green - for titles, highlights
	ColorHighlight = "205" // Magenta - for the selected thumbnail, borders
	ColorDanger    = "196" // Red - for errors
	ColorMuted     = "241" // Gray - for dimmed text, hints
	ColorText      = "252" // Light gray - for normal text
	ColorDim       = "238" // Dark gray - for disabled controls
	ColorWarning   = "208" // Orange - for warning details
)

// Styles contains shared style definitions used across views and modals.
var Styles = struct {
	Title        lipgloss.Style // Bold accent color - header and pane titles
	TitleWarning lipgloss.Style // Bold danger color - confirmation titles

	Box        lipgloss.Style // Modal box (highlight border)
	BoxDanger  lipgloss.Style // Confirmation box (danger border)
	Pane       lipgloss.Style // Thumbnail strip and detail pane frame
	PaneActive lipgloss.Style // Detail pane frame while an image is shown

	Selected lipgloss.Style // Selected thumbnail
	Muted    lipgloss.Style
	Normal   lipgloss.Style
	Hint     lipgloss.Style // Help/hint text
	Status   lipgloss.Style // Informational notices, busy label
	Error    lipgloss.Style // Error notices
	Empty    lipgloss.Style // Placeholders (muted, italic)
	Label    lipgloss.Style
	Details  lipgloss.Style // Warning details
	Control  lipgloss.Style // Enabled prev/next control
	Disabled lipgloss.Style // Disabled prev/next control
}{
	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorAccent)),
	TitleWarning: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorDanger)),
	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(1, 2).
		Margin(1),
	BoxDanger: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorDanger)).
		Padding(1, 2).
		Margin(1),
	Pane: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorMuted)).
		Padding(0, 1),
	PaneActive: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ColorHighlight)).
		Padding(0, 1),
	Selected: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorHighlight)).
		Bold(true),
	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Normal: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)),
	Hint: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)),
	Status: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorAccent)),
	Error: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(ColorDanger)),
	Empty: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorMuted)).
		Italic(true),
	Label: lipgloss.NewStyle(),
	Details: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorWarning)),
	Control: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorText)).
		Bold(true),
	Disabled: lipgloss.NewStyle().
		Foreground(lipgloss.Color(ColorDim)),
}
