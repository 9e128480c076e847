package cmd

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/vitality/internal/progression"
	"github.com/abhisek/vitality/internal/rewards"
	"github.com/abhisek/vitality/internal/ui/components"
	"github.com/abhisek/vitality/internal/ui/theme"
)

const meterWidth = 24

func row(label, value string) string {
	return theme.Label.Render(label) + theme.Body.Render(value)
}

func renderSnapshot(s progression.Snapshot) string {
	var lines []string
	lines = append(lines, theme.Title.Render(s.UserID)+"  "+theme.Hint.Render(string(s.Season)))
	lines = append(lines, "")

	capMeter := components.NewMeter("Capacity", s.Capacity, 100, meterWidth)
	capMeter.Fill = theme.BandColor(s.CapacityBand)
	lines = append(lines, capMeter.View()+"  "+theme.Hint.Render(s.CapacityBand.DisplayName()))
	lines = append(lines, theme.Label.Render("Phase")+theme.PhaseStyle(s.Phase).Render(s.Phase.DisplayName()))
	lines = append(lines, components.NewMeter("Energy", s.Energy.Current, s.Energy.Cap, meterWidth).View())
	lines = append(lines, "")

	rank := fmt.Sprintf("%s  (level %d, %d XP)", s.XP.RankTitle, s.XP.OverallLevel, s.XP.OverallXP)
	lines = append(lines, row("Rank", rank))
	if s.XP.XPForNextRank != nil {
		lines = append(lines, components.NewMeter("Next rank", int(s.XP.Progress), 100, meterWidth).View()+
			theme.Hint.Render(fmt.Sprintf("  %d XP to go", *s.XP.XPForNextRank)))
	}
	for _, c := range rewards.AllCategories() {
		lines = append(lines, row(c.DisplayName(),
			fmt.Sprintf("%d XP  (level %d)", s.XP.CategoryXP.Get(c), s.XP.CategoryLevels[c])))
	}
	lines = append(lines, "")

	lines = append(lines, row("Effort streak", fmt.Sprintf("%d days", s.Effort.ConsecutiveHighEffortDays)))
	lines = append(lines, row("Work ratio", fmt.Sprintf("%d of %d actions",
		s.Effort.RollingWorkActionCount, s.Effort.RollingTotalActionCount)))
	lines = append(lines, row("Recovery", fmt.Sprintf("%d this week", s.Recovery.ActionsThisWeek)))

	return theme.Card.Render(strings.Join(lines, "\n"))
}

func renderReceipt(r *progression.Receipt) string {
	lines := []string{
		theme.Good.Render("✓ " + r.ActivityType.DisplayName()),
		row("XP", fmt.Sprintf("+%d  (x%.2f)", r.OverallXPGained, r.Multipliers.Combined())),
		row("Energy", fmt.Sprintf("-%d, %d left", r.EnergySpent, r.EnergyRemaining)),
		row("Rank", fmt.Sprintf("%s, level %d", r.Totals.RankTitle, r.Totals.OverallLevel)),
	}
	if r.Description != "" {
		lines = append(lines, theme.Hint.Render(r.Description))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderTick(r *progression.TickResult) string {
	if r.Stale() {
		return theme.Hint.Render(fmt.Sprintf("%s tick already applied", r.Kind))
	}
	line := theme.Good.Render(fmt.Sprintf("✓ %s tick applied", r.Kind))
	if r.Days > 0 {
		line += theme.Hint.Render(fmt.Sprintf("  (%d days)", r.Days))
	}
	if r.Weekly != nil {
		line += "\n" + row("Capacity", fmt.Sprintf("%d → %d (%+d)", r.Weekly.Before, r.Weekly.After, r.Weekly.Delta))
	}
	for _, t := range r.Transitions {
		line += "\n" + row("Phase", fmt.Sprintf("%s → %s", t.From.DisplayName(), theme.PhaseStyle(t.To).Render(t.To.DisplayName())))
	}
	return line
}
