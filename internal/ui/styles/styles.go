package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/turkosaurus/cion/internal/types"
)

// Colors used by the views directly.
var (
	ColorYellow  = lipgloss.Color("#F1FA8C")
	ColorBlue    = lipgloss.Color("#8BE9FD")
	ColorPurple  = lipgloss.Color("#BD93F9")
	ColorGray    = lipgloss.Color("#6272A4")
	ColorWhite   = lipgloss.Color("#F8F8F2")
	ColorSubtle  = lipgloss.Color("#44475A")
	ColorBg      = lipgloss.Color("#282A36")
	ColorBgLight = lipgloss.Color("#44475A")
)

// status and accent colors, only reached through Styles
var (
	colorRed    = lipgloss.Color("#FF5555")
	colorGreen  = lipgloss.Color("#50FA7B")
	colorOrange = lipgloss.Color("#FFB86C")
	colorPink   = lipgloss.Color("#FF79C6")
)

// Styles contains all the lipgloss styles for the UI
type Styles struct {
	StatusSuccess lipgloss.Style
	StatusFailure lipgloss.Style
	StatusPending lipgloss.Style
	StatusRunning lipgloss.Style
	Normal        lipgloss.Style
	Dimmed        lipgloss.Style
	HelpKey       lipgloss.Style
	HelpDesc      lipgloss.Style
	Error         lipgloss.Style
	Branch        lipgloss.Style
	Repo          lipgloss.Style
	Duration      lipgloss.Style
	LogLine       lipgloss.Style
	LogLineNumber lipgloss.Style
}

// DefaultStyles returns the default styles for the UI
func DefaultStyles() Styles {
	return Styles{
		StatusSuccess: lipgloss.NewStyle().
			Foreground(colorGreen),

		StatusFailure: lipgloss.NewStyle().
			Foreground(colorRed),

		StatusPending: lipgloss.NewStyle().
			Foreground(ColorGray),

		StatusRunning: lipgloss.NewStyle().
			Foreground(ColorYellow),

		Normal: lipgloss.NewStyle().
			Foreground(ColorWhite),

		Dimmed: lipgloss.NewStyle().
			Foreground(ColorGray),

		HelpKey: lipgloss.NewStyle().
			Foreground(ColorBlue).
			Bold(true),

		HelpDesc: lipgloss.NewStyle().
			Foreground(ColorGray),

		Error: lipgloss.NewStyle().
			Foreground(colorRed).
			Bold(true),

		Branch: lipgloss.NewStyle().
			Foreground(colorPink),

		Repo: lipgloss.NewStyle().
			Foreground(ColorBlue),

		Duration: lipgloss.NewStyle().
			Foreground(colorOrange),

		LogLine: lipgloss.NewStyle().
			Foreground(ColorWhite),

		LogLineNumber: lipgloss.NewStyle().
			Foreground(ColorGray).
			Width(6).
			Align(lipgloss.Right),
	}
}

// StatusIcon returns the icon for a job status
func StatusIcon(status types.JobStatus) string {
	switch status {
	case types.JobStatusSuccess:
		return "✓"
	case types.JobStatusFailure:
		return "✗"
	case types.JobStatusRunning:
		return "●"
	default:
		return "?"
	}
}

// StatusStyle returns the style for a job status
func (s Styles) StatusStyle(status types.JobStatus) lipgloss.Style {
	switch status {
	case types.JobStatusSuccess:
		return s.StatusSuccess
	case types.JobStatusFailure:
		return s.StatusFailure
	case types.JobStatusRunning:
		return s.StatusRunning
	default:
		return s.StatusPending
	}
}
