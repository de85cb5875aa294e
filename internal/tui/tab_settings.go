package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lbermudezd2020/appgasolinabueno/internal/cli"
	"github.com/lbermudezd2020/appgasolinabueno/internal/config"
	"github.com/lbermudezd2020/appgasolinabueno/internal/pipeline"
	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/components"
	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldFile = iota
	settingsFieldSheet
	settingsFieldMode
	settingsFieldCache
	settingsFieldTheme
	settingsFieldLogLevel
	settingsFieldAddr
	settingsFieldCount
)

// settingsState tracks the settings tab.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

type settingsField struct {
	label       string
	placeholder string
	get         func(config.Config) string
	set         func(*config.Config, string) error
	reloads     bool // the field changes how the source is read
}

var settingsFields = [settingsFieldCount]settingsField{
	settingsFieldFile: {
		label:       "Price file",
		placeholder: pipeline.DefaultFile,
		get:         func(c config.Config) string { return c.Data.File },
		set:         func(c *config.Config, v string) error { c.Data.File = v; return nil },
		reloads:     true,
	},
	settingsFieldSheet: {
		label:       "Worksheet",
		placeholder: "empty for the first sheet",
		get:         func(c config.Config) string { return c.Data.Sheet },
		set:         func(c *config.Config, v string) error { c.Data.Sheet = v; return nil },
		reloads:     true,
	},
	settingsFieldMode: {
		label:       "Mode",
		placeholder: "lookup or estimate",
		get:         func(c config.Config) string { return c.Data.Mode },
		set:         func(c *config.Config, v string) error { c.Data.Mode = strings.ToLower(v); return nil },
		reloads:     true,
	},
	settingsFieldCache: {
		label:       "Use cache",
		placeholder: "true or false",
		get:         func(c config.Config) string { return strconv.FormatBool(c.Data.UseCache) },
		set: func(c *config.Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("use cache must be true or false, got %q", v)
			}
			c.Data.UseCache = b
			return nil
		},
		reloads: true,
	},
	settingsFieldTheme: {
		label:       "Theme",
		placeholder: strings.Join(theme.Names(), ", "),
		get:         func(c config.Config) string { return c.Appearance.Theme },
		set: func(c *config.Config, v string) error {
			if _, ok := theme.ByName(v); !ok {
				return fmt.Errorf("unknown theme %q", v)
			}
			c.Appearance.Theme = v
			return nil
		},
	},
	settingsFieldLogLevel: {
		label:       "Log level",
		placeholder: "debug, info, warn, error",
		get:         func(c config.Config) string { return c.Logging.Level },
		set:         func(c *config.Config, v string) error { c.Logging.Level = v; return nil },
	},
	settingsFieldAddr: {
		label:       "API address",
		placeholder: "127.0.0.1:8080",
		get:         func(c config.Config) string { return c.Server.Addr },
		set: func(c *config.Config, v string) error {
			if v == "" {
				return errors.New("address is required")
			}
			c.Server.Addr = v
			return nil
		},
	},
}

func (a App) updateSettingsNav(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "j", "down":
		a.settings.cursor = min(a.settings.cursor+1, settingsFieldCount-1)
	case "k", "up":
		a.settings.cursor = max(a.settings.cursor-1, 0)
	case "enter":
		return a.settingsStartEdit()
	}
	return a, nil
}

func (a App) settingsStartEdit() (tea.Model, tea.Cmd) {
	f := settingsFields[a.settings.cursor]

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	ti.Placeholder = f.placeholder
	ti.SetValue(f.get(a.cfg))
	ti.Focus()

	a.settings.editing = true
	a.settings.saved = false
	a.settings.input = ti
	return a, textinput.Blink
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.editing = false
		reload := a.settingsSave()
		a.settings.saved = a.settings.saveErr == nil
		if reload {
			return a.reload()
		}
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates and persists the edited field. It reports whether
// the source must be reloaded.
func (a *App) settingsSave() bool {
	f := settingsFields[a.settings.cursor]
	val := strings.TrimSpace(a.settings.input.Value())

	cfg := a.cfg
	if err := f.set(&cfg, val); err != nil {
		a.settings.saveErr = err
		return false
	}
	if err := cfg.Validate(); err != nil {
		a.settings.saveErr = err
		return false
	}
	if err := config.Save(cfg); err != nil {
		a.settings.saveErr = err
		return false
	}
	a.settings.saveErr = nil
	changed := f.get(a.cfg) != f.get(cfg)
	a.cfg = cfg
	theme.SetActive(cfg.Appearance.Theme)

	if !f.reloads || !changed {
		return false
	}
	src := pipeline.SourceFor(cfg)
	src.CachePath = a.src.CachePath
	a.src = src
	return true
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	okStyle := lipgloss.NewStyle().Foreground(t.Observed).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Warn).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)
	innerW := components.CardInnerWidth(cw)

	var form strings.Builder
	for i, f := range settingsFields {
		value := f.get(a.cfg)
		if value == "" {
			value = "(not set)"
		}

		switch {
		case a.settings.editing && i == a.settings.cursor:
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-14s ", f.label)))
			form.WriteString(a.settings.input.View())
		case i == a.settings.cursor:
			line := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(fmt.Sprintf("%-14s ", f.label+":")) +
				selectedStyle.Render(value)
			form.WriteString(line)
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		default:
			form.WriteString(labelStyle.Render(fmt.Sprintf("  %-14s ", f.label+":")))
			form.WriteString(valueStyle.Render(value))
		}
		form.WriteString("\n")
	}

	switch {
	case a.settings.saveErr != nil:
		form.WriteString("\n")
		form.WriteString(warnStyle.Render("Not saved: " + a.settings.saveErr.Error()))
		form.WriteString("\n")
	case a.settings.saved:
		form.WriteString("\n")
		form.WriteString(okStyle.Render("Saved to " + config.ConfigPath()))
		form.WriteString("\n")
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	var info strings.Builder
	row := func(label, value string) {
		info.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", label)) + valueStyle.Render(value) + "\n")
	}
	row("Source:", a.src.Path)
	row("Mode:", string(a.src.Mode))
	row("Rows:", cli.FormatNumber(int64(a.result.Table.Len())))
	row("Dropped:", cli.FormatNumber(int64(a.result.Table.Dropped())))
	row("States:", strconv.Itoa(len(a.opts.States)))
	row("Fuel types:", strings.Join(a.opts.FuelTypes, ", "))
	row("Years:", fmt.Sprintf("%d-%d", a.opts.MinYear, a.opts.MaxYear))
	loaded := fmt.Sprintf("%.2fs", a.loadTime.Seconds())
	if a.result.FromCache {
		loaded += " (from cache)"
	}
	row("Load time:", loaded)
	if a.src.UseCache {
		cachePath := a.src.CachePath
		if cachePath == "" {
			cachePath = pipeline.CachePath()
		}
		row("Cache:", cachePath)
	}
	info.WriteString(labelStyle.Render(fmt.Sprintf("%-14s", "Config:")) + valueStyle.Render(config.ConfigPath()))

	var b strings.Builder
	b.WriteString(components.ContentCard("Settings", form.String(), cw))
	b.WriteString("\n")
	b.WriteString(components.ContentCard("Data", info.String(), cw))
	return b.String()
}
