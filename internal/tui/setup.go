package tui

import (
	"errors"
	"os"
	"strings"

	"github.com/lbermudezd2020/appgasolinabueno/internal/config"
	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/pipeline"
	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"go.uber.org/zap"
)

// SetupValues are the answers of the first-run form.
type SetupValues struct {
	File     string
	Sheet    string
	Mode     string
	UseCache bool
	Theme    string
}

// SetupValuesFrom seeds the form with cfg.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		File:     cfg.Data.File,
		Sheet:    cfg.Data.Sheet,
		Mode:     cfg.Data.Mode,
		UseCache: cfg.Data.UseCache,
		Theme:    cfg.Appearance.Theme,
	}
}

// Apply copies the answers into cfg.
func (v SetupValues) Apply(cfg config.Config) config.Config {
	cfg.Data.File = strings.TrimSpace(v.File)
	cfg.Data.Sheet = strings.TrimSpace(v.Sheet)
	cfg.Data.Mode = v.Mode
	cfg.Data.UseCache = v.UseCache
	cfg.Appearance.Theme = v.Theme
	return cfg
}

// NewSetupForm builds the first-run wizard writing into v.
func NewSetupForm(v *SetupValues) *huh.Form {
	themes := huh.NewOptions(theme.Names()...)

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to gasolina").
				Description("Gasoline prices by state, fuel type and month.\nLet's point it at your price spreadsheet."),
			huh.NewInput().
				Title("Price file").
				Description("An .xlsx or .csv with estado, anio, mes, tipo_combustible and precio columns").
				Placeholder(pipeline.DefaultFile).
				Value(&v.File).
				Validate(validateSourceFile),
			huh.NewInput().
				Title("Worksheet").
				Description("Leave empty to use the first sheet").
				Value(&v.Sheet),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Dashboard mode").
				Options(
					huh.NewOption("Estimate: regression price for any combination", string(model.ModeEstimate)),
					huh.NewOption("Lookup: stored prices only", string(model.ModeLookup)),
				).
				Value(&v.Mode),
			huh.NewConfirm().
				Title("Cache parsed spreadsheets?").
				Description("Unchanged files load from a local SQLite cache").
				Value(&v.UseCache),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themes...).
				Value(&v.Theme),
		),
	).WithTheme(huh.ThemeCharm())
}

func newSetupForm(v *SetupValues) *huh.Form {
	return NewSetupForm(v).WithShowHelp(true)
}

func validateSourceFile(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("a price file is required")
	}
	if _, err := os.Stat(path); err != nil {
		return errors.New("file not found")
	}
	return nil
}

// saveSetupConfig persists the form answers and reports whether the
// source changed and must be reloaded.
func (a *App) saveSetupConfig() bool {
	cfg := a.setupVals.Apply(a.cfg)
	theme.SetActive(cfg.Appearance.Theme)
	if err := config.Save(cfg); err != nil {
		a.logger.Warn("saving setup config", zap.Error(err))
	}

	src := pipeline.SourceFor(cfg)
	src.CachePath = a.src.CachePath
	changed := src != a.src
	a.cfg = cfg
	a.src = src
	return changed
}
