// Package tui provides the interactive Bubble Tea dashboard for gasolina.
package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/lbermudezd2020/appgasolinabueno/internal/cli"
	"github.com/lbermudezd2020/appgasolinabueno/internal/config"
	"github.com/lbermudezd2020/appgasolinabueno/internal/estimator"
	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/pipeline"
	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/components"
	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// DataLoadedMsg is sent when the price table, and in estimate mode the
// fitted model, are ready or failed to load.
type DataLoadedMsg struct {
	Result   *pipeline.LoadResult
	Model    *estimator.Model
	Err      error
	LoadTime time.Duration
}

const (
	tabPrice = iota
	tabHistory
	tabStates
	tabSettings
)

// Filter selectors shown under the tab bar.
const (
	filterState = iota
	filterFuel
	filterYear
	filterMonth
	filterCount
)

// App is the root Bubble Tea model.
type App struct {
	cfg    config.Config
	src    pipeline.Source
	logger *zap.Logger
	shared *pipeline.Shared

	// Data
	loaded   bool
	loadErr  error
	result   *pipeline.LoadResult
	fitted   *estimator.Model
	loadTime time.Duration
	opts     pipeline.Options

	// Current selection and what it evaluates to
	query   model.Query
	focus   int
	eval    pipeline.Result
	evalErr error
	years   []model.YearStats
	ranking []model.StatePrice

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	scroll    int // history and states table offset

	settings settingsState

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues // shared by App copies; the form writes through it
	needSetup bool

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	compactWidth     = 110
	maxContentWidth  = 160
	minContentHeight = 5
)

// NewApp creates the dashboard over src. cfg is the effective configuration
// shown and edited on the settings tab.
func NewApp(cfg config.Config, src pipeline.Source, logger *zap.Logger) App {
	if logger == nil {
		logger = zap.NewNop()
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		cfg:       cfg,
		src:       src,
		logger:    logger,
		shared:    pipeline.NewShared(src, logger),
		needSetup: !config.Exists(),
		setupVals: ptr(SetupValuesFrom(cfg)),
		spinner:   sp,
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnableMouseCellMotion,
		loadDataCmd(a.shared),
		a.spinner.Tick,
	}
	if a.needSetup {
		cmds = append(cmds, func() tea.Msg { return setupStartMsg{} })
	}
	return tea.Batch(cmds...)
}

// setupStartMsg opens the first-run form once the program is running.
type setupStartMsg struct{}

// loadDataCmd loads the shared table off the UI goroutine, fitting the
// model too in estimate mode.
func loadDataCmd(shared *pipeline.Shared) tea.Cmd {
	return func() tea.Msg {
		start := time.Now()
		res, err := shared.Result()
		if err != nil {
			return DataLoadedMsg{Err: err, LoadTime: time.Since(start)}
		}
		msg := DataLoadedMsg{Result: res}
		if shared.Mode() == model.ModeEstimate {
			msg.Model, msg.Err = shared.Model()
		}
		msg.LoadTime = time.Since(start)
		return msg
	}
}

// reload discards the loaded table and reads src again.
func (a App) reload() (tea.Model, tea.Cmd) {
	a.shared = pipeline.NewShared(a.src, a.logger)
	a.loaded = false
	a.loadErr = nil
	a.result = nil
	a.fitted = nil
	return a, tea.Batch(loadDataCmd(a.shared), a.spinner.Tick)
}

func (a *App) applyLoad(msg DataLoadedMsg) {
	a.loaded = true
	a.loadTime = msg.LoadTime
	a.loadErr = msg.Err
	if msg.Err != nil {
		return
	}
	a.result = msg.Result
	a.fitted = msg.Model
	a.opts = pipeline.BuildOptions(msg.Result.Table)

	// Keep the selection across reloads when it is still selectable.
	def := a.opts.DefaultQuery()
	if !slices.Contains(a.opts.States, a.query.State) {
		a.query.State = def.State
	}
	if !slices.Contains(a.opts.FuelTypes, a.query.FuelType) {
		a.query.FuelType = def.FuelType
	}
	if a.query.Year < a.opts.MinYear || a.query.Year > a.opts.MaxYear {
		a.query.Year = def.Year
	}
	if a.query.Month < 1 || a.query.Month > 12 {
		a.query.Month = def.Month
	}
	a.recompute()
}

func (a *App) recompute() {
	if a.result == nil {
		return
	}
	t := a.result.Table
	a.eval, a.evalErr = pipeline.Evaluate(t, a.fitted, a.query, a.src.Mode)
	a.years = pipeline.AggregateYears(a.eval.History)
	a.ranking = pipeline.RankStates(t, a.fitted, a.query.FuelType, a.query.Year, a.query.Month)
	a.scroll = 0
}

// cycleFilter steps the focused selector by delta, wrapping around.
func (a *App) cycleFilter(delta int) {
	switch a.focus {
	case filterState:
		a.query.State = cycle(a.opts.States, a.query.State, delta)
	case filterFuel:
		a.query.FuelType = cycle(a.opts.FuelTypes, a.query.FuelType, delta)
	case filterYear:
		a.query.Year = cycleInt(a.opts.MinYear, a.opts.MaxYear, a.query.Year, delta)
	case filterMonth:
		a.query.Month = cycleInt(1, 12, a.query.Month, delta)
	}
	a.recompute()
}

func cycle(values []string, cur string, delta int) string {
	n := len(values)
	if n == 0 {
		return cur
	}
	i := slices.Index(values, cur)
	if i < 0 {
		return values[0]
	}
	return values[((i+delta)%n+n)%n]
}

func cycleInt(lo, hi, cur, delta int) int {
	if hi < lo {
		return cur
	}
	n := hi - lo + 1
	return lo + ((cur-lo+delta)%n+n)%n
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case setupStartMsg:
		a.setupForm = newSetupForm(a.setupVals)
		if a.width > 0 {
			a.setupForm = a.setupForm.WithWidth(a.width).WithHeight(a.height)
		}
		return a, a.setupForm.Init()

	case DataLoadedMsg:
		a.applyLoad(msg)
		return a, nil

	case spinner.TickMsg:
		if !a.loaded {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)
	}

	// Forward cursor blinks and the like to the setup form.
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if !a.loaded || a.loadErr != nil || a.showHelp || a.setupForm != nil {
		return a, nil
	}
	if msg.Action != tea.MouseActionPress {
		return a, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a.scroll = max(a.scroll-1, 0)
	case tea.MouseButtonWheelDown:
		a.scroll++
	case tea.MouseButtonLeft:
		if msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
				a.scroll = 0
			}
		}
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	// First-run setup intercepts all keys.
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	if !a.loaded {
		return a, nil
	}

	if a.loadErr != nil {
		switch key {
		case "q", "esc":
			return a, tea.Quit
		case "r":
			return a.reload()
		}
		return a, nil
	}

	if a.activeTab == tabSettings && a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		return a.reload()
	case "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		a.scroll = 0
		return a, nil
	case "shift+tab":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		a.scroll = 0
		return a, nil
	}
	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
			a.scroll = 0
			return a, nil
		}
	}

	if a.activeTab == tabSettings {
		return a.updateSettingsNav(key)
	}

	switch key {
	case "left", "H":
		a.focus = (a.focus - 1 + filterCount) % filterCount
	case "right", "L":
		a.focus = (a.focus + 1) % filterCount
	case "up", "k":
		a.cycleFilter(1)
	case "down", "j":
		a.cycleFilter(-1)
	case "J", "pgdown":
		a.scroll++
	case "K", "pgup":
		a.scroll = max(a.scroll-1, 0)
	case "g":
		a.scroll = 0
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	switch a.setupForm.State {
	case huh.StateCompleted:
		a.needSetup = false
		a.setupForm = nil
		reload := a.saveSetupConfig()
		if reload {
			return a.reload()
		}
		return a, nil
	case huh.StateAborted:
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}
	return a, cmd
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

func (a App) isCompactLayout() bool {
	return a.contentWidth() < compactWidth
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.loadErr != nil {
		return a.viewLoadError()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  gasolina needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

// centerCard places body in an accent-bordered card in the middle of the
// screen.
func (a App) centerCard(body string, border lipgloss.Color) string {
	t := theme.Active
	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Background(t.Surface).
		Padding(1, 3).
		Render(body)
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, card,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewLoading() string {
	t := theme.Active
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("⛽ gasolina"))
	b.WriteString(mutedStyle.Render(" · Precios de gasolina en México"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	if a.src.Mode == model.ModeEstimate {
		b.WriteString(mutedStyle.Render(" Loading prices and fitting model"))
	} else {
		b.WriteString(mutedStyle.Render(" Loading prices"))
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("  " + a.src.Path))
	return a.centerCard(b.String(), t.BorderAccent)
}

// viewLoadError is the terminal state for an unreadable source: the
// dashboard does not render without a table.
func (a App) viewLoadError() string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.Error).Background(t.Surface).Bold(true)
	textStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(titleStyle.Render("✗ Could not load price data"))
	b.WriteString("\n\n")
	b.WriteString(textStyle.Width(min(a.width-12, 72)).Render(describeLoadError(a.loadErr)))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("Source: " + a.src.Path))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Config: " + config.ConfigPath()))
	b.WriteString("\n\n")
	b.WriteString(mutedStyle.Render("[r] retry  [q] quit"))
	return a.centerCard(b.String(), t.Error)
}

func (a App) viewHelp() string {
	t := theme.Active
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	sections := []struct {
		title    string
		bindings [][2]string
	}{
		{"Navigation", [][2]string{
			{"p h s x", "Jump to tab"},
			{"tab ⇧tab", "Next / Previous tab"},
			{"J K", "Scroll tables"},
		}},
		{"Filters", [][2]string{
			{"← →", "Select filter"},
			{"↑ ↓  k j", "Change value"},
		}},
		{"Actions", [][2]string{
			{"Enter", "Edit setting"},
			{"r", "Reload source"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("⛽ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-10s", bind[0])),
				descStyle.Render(bind[1]))
		}
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))
	return a.centerCard(b.String(), t.BorderAccent)
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w)
	if a.activeTab != tabSettings {
		header += "\n" + a.renderFilterBar(w)
	}

	info := components.StatusInfo{
		Source:    a.src.Path,
		Mode:      string(a.src.Mode),
		Rows:      cli.FormatNumber(int64(a.result.Table.Len())),
		LoadTime:  fmt.Sprintf("%.2fs", a.loadTime.Seconds()),
		FromCache: a.result.FromCache,
	}
	statusBar := components.RenderStatusBar(w, info)

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case tabPrice:
		content = a.renderPriceTab(cw)
	case tabHistory:
		content = a.renderHistoryTab(cw, contentH)
	case tabStates:
		content = a.renderStatesTab(cw, contentH)
	case tabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// renderFilterBar renders the four query selectors; the focused one is
// highlighted and shows its arrows.
func (a App) renderFilterBar(w int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	focusStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright).Bold(true)
	sepStyle := lipgloss.NewStyle().Foreground(t.Border).Background(t.Surface)

	filters := [filterCount][2]string{
		filterState: {"State", a.query.State},
		filterFuel:  {"Fuel", a.query.FuelType},
		filterYear:  {"Year", fmt.Sprint(a.query.Year)},
		filterMonth: {"Month", fmt.Sprintf("%d %s", a.query.Month, cli.FormatMonth(a.query.Month))},
	}

	parts := make([]string, len(filters))
	for i, f := range filters {
		if i == a.focus {
			parts[i] = labelStyle.Render(f[0]+" ") + focusStyle.Render("‹ "+f[1]+" ›")
		} else {
			parts[i] = labelStyle.Render(f[0]+" ") + valueStyle.Render("  "+f[1]+"  ")
		}
	}
	bar := labelStyle.Render(" ") + strings.Join(parts, sepStyle.Render(" │ "))
	return lipgloss.NewStyle().Background(t.Surface).Width(w).MaxWidth(w).Render(bar)
}

// tabAtX returns the tab index at column x of the tab bar, or -1.
// Hitboxes follow the widths RenderTabBar draws.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1 // separator
	}
	return -1
}

func ptr[T any](v T) *T { return &v }

func truncStr(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-1]) + "…"
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// fillLinesWithBackground pads each line to width w with the background
// color so gaps between cards are filled.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line,
			lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
