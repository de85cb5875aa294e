package components

import (
	"strings"

	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is the right-hand side of the status bar.
type StatusInfo struct {
	Source    string
	Mode      string
	Rows      string
	LoadTime  string
	FromCache bool
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	modeStyle := lipgloss.NewStyle().Foreground(t.Background).Background(t.Accent).Bold(true).Padding(0, 1)

	left := mutedStyle.Render(" ") +
		keyStyle.Render("?") + mutedStyle.Render(" help  ") +
		keyStyle.Render("←→") + mutedStyle.Render(" filter  ") +
		keyStyle.Render("↑↓") + mutedStyle.Render(" value  ") +
		keyStyle.Render("q") + mutedStyle.Render(" quit")

	var right []string
	if info.Mode != "" {
		right = append(right, modeStyle.Render(info.Mode))
	}
	if info.Source != "" {
		right = append(right, mutedStyle.Render(info.Source))
	}
	if info.Rows != "" {
		right = append(right, dimStyle.Render(info.Rows+" rows"))
	}
	if info.LoadTime != "" {
		lt := info.LoadTime
		if info.FromCache {
			lt += " (cache)"
		}
		right = append(right, dimStyle.Render(lt))
	}
	rightStr := strings.Join(right, dimStyle.Render(" │ ")) + mutedStyle.Render(" ")

	gap := max(width-lipgloss.Width(left)-lipgloss.Width(rightStr), 0)
	bar := left + lipgloss.NewStyle().Background(t.Surface).Render(strings.Repeat(" ", gap)) + rightStr
	return lipgloss.NewStyle().Background(t.Surface).Width(width).MaxWidth(width).Render(bar)
}
