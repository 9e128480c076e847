package theme

import (
	"image/color"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/vitality/internal/vitality"
)

// Color palette
var (
	Primary   = lipgloss.Color("#8B5CF6") // Vivid Purple
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Accent    = lipgloss.Color("#F97316") // Orange
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#EAB308") // Amber
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Label = lipgloss.NewStyle().
		Foreground(TextDim).
		Width(14)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)
)

// Layout
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Border).
	Padding(0, 2)

// Outcomes
var (
	Good = lipgloss.NewStyle().
		Foreground(Success).
		Bold(true)

	Bad = lipgloss.NewStyle().
		Foreground(Error).
		Bold(true)
)

// Progress bars
var (
	ProgressFilled = lipgloss.NewStyle().
			Background(Secondary)

	ProgressEmpty = lipgloss.NewStyle().
			Background(Border)
)

// BandColor returns the color used for a capacity band.
func BandColor(b vitality.Band) color.Color {
	switch b {
	case vitality.BandCritical:
		return Error
	case vitality.BandLow:
		return Accent
	case vitality.BandMedium:
		return Warning
	case vitality.BandHigh:
		return Secondary
	default:
		return Success
	}
}

// PhaseStyle returns the style for a burnout phase label.
func PhaseStyle(p vitality.Phase) lipgloss.Style {
	s := lipgloss.NewStyle().Bold(true)
	switch p {
	case vitality.PhaseBurnout:
		return s.Foreground(Error)
	case vitality.PhaseAtRisk:
		return s.Foreground(Accent)
	case vitality.PhaseRecovering:
		return s.Foreground(Secondary)
	default:
		return s.Foreground(Success)
	}
}
