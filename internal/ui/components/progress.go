package components

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/vitality/internal/ui/theme"
)

// Meter renders a labelled horizontal gauge such as "Energy ████░░ 40/70".
type Meter struct {
	Label string
	Value int
	Max   int
	Width int
	// Fill overrides the filled segment color. Nil uses theme.Secondary.
	Fill color.Color
}

// NewMeter creates a meter of the given bar width.
func NewMeter(label string, value, limit, width int) Meter {
	return Meter{Label: label, Value: value, Max: limit, Width: width}
}

// Fraction returns Value/Max clamped to [0, 1].
func (m Meter) Fraction() float64 {
	if m.Max <= 0 {
		return 0
	}
	f := float64(m.Value) / float64(m.Max)
	return min(max(f, 0), 1)
}

// View renders the meter.
func (m Meter) View() string {
	width := max(m.Width, 4)
	filled := int(float64(width) * m.Fraction())

	fill := theme.ProgressFilled
	if m.Fill != nil {
		fill = lipgloss.NewStyle().Background(m.Fill)
	}

	var b strings.Builder
	if m.Label != "" {
		b.WriteString(theme.Label.Render(m.Label))
	}
	b.WriteString(fill.Render(strings.Repeat(" ", filled)))
	b.WriteString(theme.ProgressEmpty.Render(strings.Repeat(" ", width-filled)))
	b.WriteString(theme.Hint.Render(fmt.Sprintf("  %d/%d", m.Value, m.Max)))
	return b.String()
}
