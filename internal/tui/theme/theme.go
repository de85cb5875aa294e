// Package theme defines color themes for the gasolina dashboard.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Background    lipgloss.Color // App background
	Surface       lipgloss.Color // Card and panel backgrounds
	SurfaceBright lipgloss.Color // Selected row, focused selector
	Border        lipgloss.Color
	BorderAccent  lipgloss.Color // Focused card border
	TextDim       lipgloss.Color // Hints, axis labels
	TextMuted     lipgloss.Color // Labels
	TextPrimary   lipgloss.Color
	Accent        lipgloss.Color
	AccentBright  lipgloss.Color

	// Observed prices, estimates, warnings and errors.
	Observed lipgloss.Color
	Estimate lipgloss.Color
	Warn     lipgloss.Color
	Error    lipgloss.Color

	// Rising and falling price deltas.
	Up   lipgloss.Color
	Down lipgloss.Color
}

// Active is the currently selected theme.
var Active = FlexokiDark

// FlexokiDark is the default theme.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	Observed:      lipgloss.Color("#879A39"),
	Estimate:      lipgloss.Color("#D0A215"),
	Warn:          lipgloss.Color("#DA702C"),
	Error:         lipgloss.Color("#D14D41"),
	Up:            lipgloss.Color("#D14D41"),
	Down:          lipgloss.Color("#879A39"),
}

// Bugambilia is a warm magenta and agave theme.
var Bugambilia = Theme{
	Name:          "bugambilia",
	Background:    lipgloss.Color("#1A1420"),
	Surface:       lipgloss.Color("#241C2C"),
	SurfaceBright: lipgloss.Color("#3A2E45"),
	Border:        lipgloss.Color("#4E3F5C"),
	BorderAccent:  lipgloss.Color("#D8578E"),
	TextDim:       lipgloss.Color("#6B5C78"),
	TextMuted:     lipgloss.Color("#A898B5"),
	TextPrimary:   lipgloss.Color("#F3EAF7"),
	Accent:        lipgloss.Color("#D8578E"),
	AccentBright:  lipgloss.Color("#F07FAF"),
	Observed:      lipgloss.Color("#7FB49A"),
	Estimate:      lipgloss.Color("#E8B44C"),
	Warn:          lipgloss.Color("#F08A4B"),
	Error:         lipgloss.Color("#E5484D"),
	Up:            lipgloss.Color("#E5484D"),
	Down:          lipgloss.Color("#7FB49A"),
}

// Terminal uses ANSI 16 colors only.
var Terminal = Theme{
	Name:          "terminal",
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	Observed:      lipgloss.Color("2"),
	Estimate:      lipgloss.Color("3"),
	Warn:          lipgloss.Color("3"),
	Error:         lipgloss.Color("1"),
	Up:            lipgloss.Color("1"),
	Down:          lipgloss.Color("2"),
}

// All available themes.
var All = []Theme{FlexokiDark, Bugambilia, Terminal}

// Names lists the theme names in display order.
func Names() []string {
	names := make([]string, len(All))
	for i, t := range All {
		names[i] = t.Name
	}
	return names
}

// ByName returns a theme by its name and whether it exists. Unknown names
// yield FlexokiDark.
func ByName(name string) (Theme, bool) {
	for _, t := range All {
		if t.Name == name {
			return t, true
		}
	}
	return FlexokiDark, false
}

// SetActive sets the active theme by name.
func SetActive(name string) {
	Active, _ = ByName(name)
}
