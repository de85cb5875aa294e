package tui

import (
	"fmt"
	"strings"

	"github.com/lbermudezd2020/appgasolinabueno/internal/cli"
	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/components"
	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

func (a App) renderHistoryTab(cw, h int) string {
	t := theme.Active
	points := a.eval.History
	title := fmt.Sprintf("Price history · %s · %s", a.query.State, a.query.FuelType)

	if len(points) == 0 {
		dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
		return components.ContentCard(title, dim.Render("No prices recorded for this state and fuel type."), cw)
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.Price.InexactFloat64()
	}
	chartH := 10
	if a.isCompactLayout() {
		chartH = 7
	}

	var b strings.Builder
	b.WriteString(components.ContentCard(title,
		components.BarChart(values, periodLabels(points), t.Accent, components.CardInnerWidth(cw), chartH), cw))
	b.WriteString("\n")

	// Whatever height is left goes to the table rows.
	used := lipgloss.Height(b.String())
	rows := max(h-used-4, 3)

	if a.isCompactLayout() {
		b.WriteString(components.ContentCard("Months", a.renderHistoryRows(points, rows), cw))
		return b.String()
	}
	halves := components.LayoutRow(cw, 2)
	b.WriteString(components.CardRow([]string{
		components.ContentCard("Months", a.renderHistoryRows(points, rows), halves[0]),
		components.ContentCard("By year", renderYears(a.years), halves[1]),
	}))
	return b.String()
}

// periodLabels labels the first point and each January with the year,
// and other points with the month abbreviation.
func periodLabels(points []model.HistoryPoint) []string {
	labels := make([]string, len(points))
	for i, p := range points {
		if i == 0 || p.Month == 1 || p.Year != points[i-1].Year {
			labels[i] = fmt.Sprintf("%s%02d", cli.FormatMonth(p.Month), p.Year%100)
		} else {
			labels[i] = cli.FormatMonth(p.Month)
		}
	}
	return labels
}

// renderHistoryRows is the (year, month, price) table, newest first,
// scrolled by a.scroll.
func (a App) renderHistoryRows(points []model.HistoryPoint, rows int) string {
	t := theme.Active
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	upStyle := lipgloss.NewStyle().Foreground(t.Up).Background(t.Surface)
	downStyle := lipgloss.NewStyle().Foreground(t.Down).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright).Bold(true)

	n := len(points)
	offset := min(a.scroll, max(n-rows, 0))

	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-6s %-12s %10s %10s", "Year", "Month", "Price", "Δ")))
	b.WriteString("\n")
	for i := n - 1 - offset; i >= 0 && i > n-1-offset-rows; i-- {
		p := points[i]
		delta := ""
		style := mutedStyle
		if i > 0 {
			d := p.Price.Sub(points[i-1].Price)
			delta = cli.FormatDelta(d)
			switch {
			case d.GreaterThan(decimal.Zero):
				style = upStyle
			case d.LessThan(decimal.Zero):
				style = downStyle
			}
		}
		line := fmt.Sprintf("%-6d %-12s %10s ", p.Year, cli.FormatMonthName(p.Month), cli.FormatPrice(p.Price))
		if p.Year == a.query.Year && p.Month == a.query.Month {
			b.WriteString(selStyle.Render(line) + selStyle.Render(fmt.Sprintf("%10s", delta)))
		} else {
			b.WriteString(cellStyle.Render(line) + style.Render(fmt.Sprintf("%10s", delta)))
		}
		b.WriteString("\n")
	}
	if n > rows {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%d-%d of %d  [J/K] scroll", offset+1, min(offset+rows, n), n)))
	}
	return strings.TrimRight(b.String(), "\n")
}

func renderYears(years []model.YearStats) string {
	t := theme.Active
	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	var b strings.Builder
	b.WriteString(headStyle.Render(fmt.Sprintf("%-6s %6s %9s %9s %9s", "Year", "Months", "Min", "Mean", "Max")))
	for _, y := range years {
		b.WriteString("\n")
		b.WriteString(cellStyle.Render(fmt.Sprintf("%-6d %6d %9s %9s %9s",
			y.Year, y.Points, cli.FormatPrice(y.Min), cli.FormatPrice(y.Mean), cli.FormatPrice(y.Max))))
	}
	return b.String()
}
