package tui

import (
	"fmt"
	"strings"

	"github.com/lbermudezd2020/appgasolinabueno/internal/cli"
	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/components"
	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderStatesTab(cw, h int) string {
	t := theme.Active
	title := fmt.Sprintf("States by price · %s · %s", a.query.FuelType, cli.FormatPeriod(a.query.Year, a.query.Month))
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	if len(a.ranking) == 0 {
		return components.ContentCard(title, dim.Render("No state has a price for this fuel type and month."), cw)
	}

	var b strings.Builder
	b.WriteString(components.MetricCardRow(a.rankingMetrics(), cw))
	b.WriteString("\n")

	rows := max(h-lipgloss.Height(b.String())-4, 3)
	b.WriteString(components.ContentCard(title, a.renderRanking(components.CardInnerWidth(cw), rows), cw))
	return b.String()
}

func (a App) rankingMetrics() []components.Metric {
	t := theme.Active
	top, bottom := a.ranking[0], a.ranking[len(a.ranking)-1]

	observed := 0
	for _, sp := range a.ranking {
		if sp.Observed {
			observed++
		}
	}
	coverage := fmt.Sprintf("%d of %d stored", observed, len(a.ranking))

	return []components.Metric{
		{Label: "Most expensive", Value: cli.FormatPrice(top.Price), Note: top.State, Color: t.Up},
		{Label: "Cheapest", Value: cli.FormatPrice(bottom.Price), Note: bottom.State, Color: t.Down},
		{Label: "Spread", Value: cli.FormatPrice(top.Price.Sub(bottom.Price)), Note: coverage},
	}
}

// renderRanking draws one bar per state, scaled between the cheapest and
// the most expensive. The selected state is highlighted and estimates are
// marked.
func (a App) renderRanking(w, rows int) string {
	t := theme.Active
	nameStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	priceStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	estStyle := lipgloss.NewStyle().Foreground(t.Estimate).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blank := lipgloss.NewStyle().Background(t.Surface)

	nameW := 4
	for _, sp := range a.ranking {
		nameW = max(nameW, lipgloss.Width(sp.State))
	}
	nameW = min(nameW, 24)
	barMax := max(w-nameW-20, 8)

	hi := a.ranking[0].Price.InexactFloat64()
	lo := a.ranking[len(a.ranking)-1].Price.InexactFloat64()

	n := len(a.ranking)
	offset := min(a.scroll, max(n-rows, 0))

	var b strings.Builder
	for i := offset; i < n && i < offset+rows; i++ {
		sp := a.ranking[i]
		name := truncStr(sp.State, nameW)
		name += strings.Repeat(" ", nameW-lipgloss.Width(name))

		style := nameStyle
		if sp.State == a.query.State {
			style = selStyle
		}
		barLen := barLength(sp, lo, hi, barMax)
		barColor := components.ColorForPosition(components.PositionIn(sp.Price.InexactFloat64(), lo, hi))
		bar := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface).Render(strings.Repeat("█", barLen))

		b.WriteString(style.Render(fmt.Sprintf("%2d %s ", i+1, name)))
		b.WriteString(bar)
		b.WriteString(blank.Render(strings.Repeat(" ", barMax-barLen+1)))
		b.WriteString(priceStyle.Render(fmt.Sprintf("%9s", cli.FormatPrice(sp.Price))))
		if !sp.Observed {
			b.WriteString(estStyle.Render(" est"))
		}
		b.WriteString("\n")
	}
	if n > rows {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d-%d of %d  [J/K] scroll", offset+1, min(offset+rows, n), n)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func barLength(sp model.StatePrice, lo, hi float64, maxLen int) int {
	if hi <= lo {
		return maxLen
	}
	return max(1, min(1+int((sp.Price.InexactFloat64()-lo)/(hi-lo)*float64(maxLen-1)), maxLen))
}
