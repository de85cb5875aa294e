package cmd

import (
	"fmt"

	"github.com/lbermudezd2020/appgasolinabueno/internal/pipeline"
	"github.com/lbermudezd2020/appgasolinabueno/internal/tui"
	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var tuiCmd = &cobra.Command{
	Use:         "tui",
	Short:       "Launch the interactive price dashboard",
	Annotations: map[string]string{annotationLogger: "nop", annotationLenient: "true"},
	RunE:        runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	theme.SetActive(appCfg.Appearance.Theme)

	// Force TrueColor so background styling renders even when lipgloss
	// would detect a plain profile.
	lipgloss.SetColorProfile(termenv.TrueColor)

	app := tui.NewApp(appCfg, pipeline.SourceFor(appCfg), logger)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
