package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lbermudezd2020/appgasolinabueno/internal/cli"
	"github.com/lbermudezd2020/appgasolinabueno/internal/estimator"
	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/prices"
	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/components"
	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderPriceTab(cw int) string {
	var b strings.Builder

	title := fmt.Sprintf("%s · %s · %s", a.query.State, a.query.FuelType,
		cli.FormatPeriod(a.query.Year, a.query.Month))
	b.WriteString(components.FocusedCard(title, a.renderHeadline(), cw))
	b.WriteString("\n")

	if a.eval.Stats.Points > 0 {
		b.WriteString(components.MetricCardRow(a.seriesMetrics(), cw))
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Historical range", a.renderRange(components.CardInnerWidth(cw)), cw))
		b.WriteString("\n")
	}

	if a.fitted != nil {
		b.WriteString(components.ContentCard("Regression model", a.renderModel(components.CardInnerWidth(cw)), cw))
	}
	return b.String()
}

// renderHeadline is the answer to the current query: the stored price in
// lookup mode, the model estimate in estimate mode.
func (a App) renderHeadline() string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	observedStyle := lipgloss.NewStyle().Foreground(t.Observed).Background(t.Surface).Bold(true)
	estimateStyle := lipgloss.NewStyle().Foreground(t.Estimate).Background(t.Surface).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Error).Background(t.Surface)

	switch {
	case errors.Is(a.evalErr, prices.ErrNoMatch):
		return warnStyle.Render("⚠ No data for the selected combination.") + "\n" +
			dimStyle.Render("Try another month or year, or switch to estimate mode.")
	case errors.Is(a.evalErr, model.ErrInvalidQuery):
		return warnStyle.Render("⚠ Nothing to select: the price table has no rows.")
	case a.evalErr != nil:
		return errStyle.Render("✗ " + a.evalErr.Error())
	}

	var b strings.Builder
	if est, ok := a.eval.EstimateDecimal(); ok {
		b.WriteString(labelStyle.Render("Estimated price  "))
		b.WriteString(estimateStyle.Render(cli.FormatMXN(est)))
		b.WriteString(labelStyle.Render(" per liter"))
		b.WriteString("\n")
		if a.eval.Observed.Valid {
			obs := a.eval.Observed.Decimal
			diff := est.Round(2).Sub(obs)
			b.WriteString(labelStyle.Render("Stored price     "))
			b.WriteString(observedStyle.Render(cli.FormatMXN(obs)))
			b.WriteString(dimStyle.Render("  model " + cli.FormatDelta(diff)))
		} else {
			b.WriteString(dimStyle.Render("No stored price for this month; showing the model estimate."))
		}
		return b.String()
	}

	b.WriteString(labelStyle.Render("Stored price  "))
	b.WriteString(observedStyle.Render(cli.FormatMXN(a.eval.Observed.Decimal)))
	b.WriteString(labelStyle.Render(" per liter"))
	return b.String()
}

func (a App) seriesMetrics() []components.Metric {
	t := theme.Active
	s := a.eval.Stats

	changeColor := t.TextPrimary
	switch {
	case s.Change.IsPositive():
		changeColor = t.Up
	case s.Change.IsNegative():
		changeColor = t.Down
	}

	metrics := []components.Metric{
		{Label: "Latest", Value: cli.FormatPrice(s.Latest.Price), Note: cli.FormatPeriod(s.Latest.Year, s.Latest.Month)},
		{Label: "Minimum", Value: cli.FormatPrice(s.Min), Color: t.Down},
		{Label: "Maximum", Value: cli.FormatPrice(s.Max), Color: t.Up},
		{Label: "Mean", Value: cli.FormatPrice(s.Mean), Note: fmt.Sprintf("%d months", s.Points)},
		{
			Label: "Change",
			Value: cli.FormatDelta(s.Change),
			Note:  cli.FormatPercent(s.ChangeRatio()) + " since " + cli.FormatPeriod(s.First.Year, s.First.Month),
			Color: changeColor,
		},
	}
	if a.isCompactLayout() {
		return metrics[:4]
	}
	return metrics
}

// renderRange places the shown price inside the series min-max range and
// draws the series as a sparkline.
func (a App) renderRange(w int) string {
	t := theme.Active
	s := a.eval.Stats
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	price, ok := a.eval.Display()
	if est, estOK := a.eval.EstimateDecimal(); estOK {
		price, ok = est, true
	}

	var b strings.Builder
	if ok {
		pct := components.PositionIn(price.InexactFloat64(), s.Min.InexactFloat64(), s.Max.InexactFloat64())
		b.WriteString(components.RangeGauge(pct, cli.FormatPrice(s.Min), cli.FormatPrice(s.Max), w))
		b.WriteString("\n")
	}

	values := make([]float64, len(a.eval.History))
	for i, p := range a.eval.History {
		values[i] = p.Price.InexactFloat64()
	}
	if len(values) > w {
		values = values[len(values)-w:]
	}
	b.WriteString(components.Sparkline(values, t.Accent))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(fmt.Sprintf("%s → %s",
		cli.FormatPeriod(s.First.Year, s.First.Month),
		cli.FormatPeriod(s.Latest.Year, s.Latest.Month))))
	return b.String()
}

// term is one additive part of a prediction.
type term struct {
	label string
	value float64
}

// predictionTerms splits the model's prediction for q into the intercept
// and the contribution of each active feature.
func predictionTerms(m *estimator.Model, q model.Query) []term {
	coef := make(map[string]float64, len(m.Coef))
	for _, c := range m.Coefficients() {
		coef[c.Feature] = c.Value
	}
	refState, refFuel := m.Schema.Reference()

	terms := []term{{label: "intercept", value: m.Intercept}}

	stateOK, fuelOK := m.Schema.Known(q.State, q.FuelType)
	switch {
	case !stateOK:
		terms = append(terms, term{label: q.State + " (unseen, as " + refState + ")"})
	case q.State == refState:
		terms = append(terms, term{label: q.State + " (reference)"})
	default:
		terms = append(terms, term{label: q.State, value: coef[estimator.StatePrefix+q.State]})
	}
	switch {
	case !fuelOK:
		terms = append(terms, term{label: q.FuelType + " (unseen, as " + refFuel + ")"})
	case q.FuelType == refFuel:
		terms = append(terms, term{label: q.FuelType + " (reference)"})
	default:
		terms = append(terms, term{label: q.FuelType, value: coef[estimator.FuelPrefix+q.FuelType]})
	}

	terms = append(terms,
		term{
			label: fmt.Sprintf("month %.4f × %d", coef[estimator.FeatureMonth], q.Month),
			value: coef[estimator.FeatureMonth] * float64(q.Month),
		},
		term{
			label: fmt.Sprintf("year %.4f × %d", coef[estimator.FeatureYear], q.Year),
			value: coef[estimator.FeatureYear] * float64(q.Year),
		},
	)
	return terms
}

func (a App) renderModel(w int) string {
	t := theme.Active
	m := a.fitted
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	totalStyle := lipgloss.NewStyle().Foreground(t.Estimate).Background(t.Surface).Bold(true)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface)
	ruleStyle := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface)

	valueW := 14
	labelW := max(min(w-valueW, 40), 10)

	var b strings.Builder
	total := 0.0
	for _, tm := range predictionTerms(m, a.query) {
		total += tm.value
		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncStr(tm.label, labelW))))
		b.WriteString(valueStyle.Render(fmt.Sprintf("%*s", valueW, fmt.Sprintf("%+.4f", tm.value))))
		b.WriteString("\n")
	}
	b.WriteString(ruleStyle.Render(strings.Repeat("─", labelW+valueW)))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s", labelW, "estimate")))
	b.WriteString(totalStyle.Render(fmt.Sprintf("%*s", valueW, cli.FormatEstimate(total))))
	b.WriteString("\n\n")

	b.WriteString(labelStyle.Render(fmt.Sprintf("R² %.3f · %s rows · rank %d/%d",
		m.R2, cli.FormatNumber(int64(m.Samples)), m.Rank, m.Schema.Width())))
	if m.RankDeficient {
		b.WriteString("\n")
		b.WriteString(warnStyle.Render("⚠ Rank deficient design; coefficients are the minimum-norm solution."))
	}
	return b.String()
}

// describeLoadError turns a load failure into a message for the error screen.
func describeLoadError(err error) string {
	var colErr *prices.MissingColumnsError
	switch {
	case errors.As(err, &colErr):
		return fmt.Sprintf("The spreadsheet is missing required columns: %s.\nExpected: estado, anio, mes, tipo_combustible, precio.",
			strings.Join(colErr.Missing, ", "))
	case errors.Is(err, prices.ErrMissingFile):
		return "Price file not found. Set data.file in the config, pass --file, or run `gasolina setup`."
	case errors.Is(err, prices.ErrUnreadable):
		return fmt.Sprintf("The price file could not be read as a spreadsheet:\n%v", err)
	case errors.Is(err, estimator.ErrEmptyTable):
		return "The price table has no usable rows, so the model cannot be fitted."
	default:
		return err.Error()
	}
}
