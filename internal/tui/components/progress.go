package components

import (
	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// PositionIn returns where v sits between lo and hi, clamped to [0, 1].
// A degenerate range yields 0.5.
func PositionIn(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0.5
	}
	return min(max((v-lo)/(hi-lo), 0), 1)
}

// ColorForPosition colors a price by its place in the historical range:
// cheap is green, expensive is red.
func ColorForPosition(pct float64) lipgloss.Color {
	t := theme.Active
	switch {
	case pct >= 0.75:
		return t.Up
	case pct >= 0.4:
		return t.Estimate
	default:
		return t.Down
	}
}

// RangeGauge renders a bar showing pct of the way from loLabel to hiLabel.
func RangeGauge(pct float64, loLabel, hiLabel string, width int) string {
	t := theme.Active
	pct = min(max(pct, 0), 1)

	barW := max(width-lipgloss.Width(loLabel)-lipgloss.Width(hiLabel)-2, 4)
	bar := progress.New(
		progress.WithSolidFill(string(ColorForPosition(pct))),
		progress.WithWidth(barW),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface).Render(" ")

	return labelStyle.Render(loLabel) + space + bar.ViewAs(pct) + space + labelStyle.Render(hiLabel)
}
