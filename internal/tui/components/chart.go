package components

import (
	"fmt"
	"math"
	"strings"

	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Sparkline renders values scaled between their minimum and maximum.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active
	blocks := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	lo, hi := bounds(values)
	style := lipgloss.NewStyle().Foreground(color).Background(t.Surface)

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := len(blocks) / 2
		if hi > lo {
			idx = int((v - lo) / (hi - lo) * float64(len(blocks)-1))
		}
		buf.WriteRune(blocks[min(max(idx, 0), len(blocks)-1)])
	}
	return style.Render(buf.String())
}

func bounds(values []float64) (lo, hi float64) {
	lo, hi = values[0], values[0]
	for _, v := range values[1:] {
		lo = min(lo, v)
		hi = max(hi, v)
	}
	return lo, hi
}

// axis is the value range of a chart, aligned to tick boundaries.
type axis struct {
	floor, ceiling, step float64
	intervals          int
}

// priceAxis picks a tick step and a floor below the smallest value so the
// shortest bar is still visible. Prices cluster far from zero, so the axis
// does not start at 0.
func priceAxis(lo, hi float64, maxIntervals int) axis {
	span := hi - lo
	if span == 0 {
		span = max(math.Abs(hi)*0.1, 1)
	}
	step := chartTickStep(span)
	for {
		floor := math.Floor(lo/step) * step
		if floor == lo {
			floor -= step
		}
		if lo >= 0 {
			floor = max(floor, 0)
		}
		n := max(int(math.Ceil((hi-floor)/step)), 1)
		if n <= maxIntervals {
			return axis{floor: floor, ceiling: floor + float64(n)*step, step: step, intervals: n}
		}
		step *= 2
	}
}

// BarChart renders values as vertical bars over a price axis.
func BarChart(values []float64, labels []string, color lipgloss.Color, width, height int) string {
	if len(values) == 0 {
		return ""
	}
	if width < 15 || height < 3 {
		return Sparkline(values, color)
	}

	t := theme.Active
	lo, hi := bounds(values)
	ax := priceAxis(lo, hi, max(height/2, 2))

	rowsPerTick := max(height/ax.intervals, 2)
	chartH := rowsPerTick * ax.intervals

	yLabelW := max(len(formatChartLabel(ax.ceiling, ax.step)), len(formatChartLabel(ax.floor, ax.step))) + 1
	tickLabels := make(map[int]string, ax.intervals)
	for i := 1; i <= ax.intervals; i++ {
		tickLabels[i*rowsPerTick] = formatChartLabel(ax.floor+ax.step*float64(i), ax.step)
	}

	chartW := max(width-yLabelW-1, 5)
	n := len(values)

	gap := 1
	if n <= 1 {
		gap = 0
	}
	barW := chartW
	if n > 1 {
		barW = (chartW - (n - 1)) / n
	}
	if barW < 1 && n > 1 {
		// Too many points for one column each: sample evenly, keeping the last.
		maxN := max((chartW+1)/2, 2)
		sampled := make([]float64, maxN)
		var sampledLabels []string
		if len(labels) == n {
			sampledLabels = make([]string, maxN)
		}
		for i := range sampled {
			src := i * (n - 1) / (maxN - 1)
			sampled[i] = values[src]
			if sampledLabels != nil {
				sampledLabels[i] = labels[src]
			}
		}
		values, labels, n = sampled, sampledLabels, maxN
		barW = 1
	}
	barW = min(barW, 6)
	axisLen := n*barW + max(0, n-1)*gap

	blocks := []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
	axisStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	blankStyle := lipgloss.NewStyle().Background(t.Surface)
	rng := ax.ceiling - ax.floor

	var b strings.Builder
	for row := chartH; row >= 1; row-- {
		rowTop := ax.floor + rng*float64(row)/float64(chartH)
		rowBottom := ax.floor + rng*float64(row-1)/float64(chartH)

		barColor := color
		if float64(row)/float64(chartH) > 0.8 {
			barColor = t.AccentBright
		}
		barStyle := lipgloss.NewStyle().Foreground(barColor).Background(t.Surface)

		b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, tickLabels[row])))
		b.WriteString(axisStyle.Render("│"))

		for i, v := range values {
			if i > 0 && gap > 0 {
				b.WriteString(blankStyle.Render(strings.Repeat(" ", gap)))
			}
			switch {
			case v >= rowTop:
				b.WriteString(barStyle.Render(strings.Repeat("█", barW)))
			case v > rowBottom:
				idx := min(max(int((v-rowBottom)/(rowTop-rowBottom)*8), 1), 8)
				b.WriteString(barStyle.Render(strings.Repeat(string(blocks[idx]), barW)))
			default:
				b.WriteString(blankStyle.Render(strings.Repeat(" ", barW)))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(axisStyle.Render(fmt.Sprintf("%*s", yLabelW, formatChartLabel(ax.floor, ax.step))))
	b.WriteString(axisStyle.Render("└" + strings.Repeat("─", axisLen)))

	if len(labels) == n {
		b.WriteString("\n")
		b.WriteString(blankStyle.Render(strings.Repeat(" ", yLabelW+1)))
		b.WriteString(axisStyle.Render(placeLabels(labels, barW+gap, axisLen)))
	}
	return b.String()
}

// placeLabels lays out x-axis labels at stride columns apart, skipping any
// that would overlap the previous one. The last label is always attempted.
func placeLabels(labels []string, stride, axisLen int) string {
	buf := []rune(strings.Repeat(" ", axisLen))
	lastEnd := -1
	put := func(pos int, lbl string) bool {
		r := []rune(lbl)
		if pos <= lastEnd || pos < 0 {
			return false
		}
		end := min(pos+len(r), axisLen)
		if end-pos < 3 {
			return false
		}
		copy(buf[pos:end], r[:end-pos])
		lastEnd = end
		return true
	}

	n := len(labels)
	for i := 0; i < n-1; i++ {
		put(i*stride, labels[i])
	}
	if n > 0 {
		last := []rune(labels[n-1])
		pos := min((n-1)*stride, axisLen-len(last))
		if pos > lastEnd {
			put(pos, labels[n-1])
		} else if n > 1 {
			// Make room for the final label by clearing what it overlaps.
			pos = max(axisLen-len(last), 0)
			for j := pos; j < axisLen; j++ {
				buf[j] = ' '
			}
			lastEnd = pos - 1
			put(pos, labels[n-1])
		}
	}
	return strings.TrimRight(string(buf), " ")
}

// chartTickStep computes a round tick interval targeting about five ticks.
func chartTickStep(span float64) float64 {
	if span <= 0 {
		return 1
	}
	rough := span / 5
	base := math.Pow(10, math.Floor(math.Log10(rough)))
	switch frac := rough / base; {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// formatChartLabel prints v with as many decimals as step needs.
func formatChartLabel(v, step float64) string {
	switch {
	case step >= 1:
		return fmt.Sprintf("%.0f", v)
	case step >= 0.1:
		return fmt.Sprintf("%.1f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
