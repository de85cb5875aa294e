package tui

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/lbermudezd2020/appgasolinabueno/internal/config"
	"github.com/lbermudezd2020/appgasolinabueno/internal/estimator"
	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/pipeline"
	"github.com/lbermudezd2020/appgasolinabueno/internal/prices"
	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/components"
	"github.com/lbermudezd2020/appgasolinabueno/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

func testRecords() []model.PriceRecord {
	rec := func(state string, year, month int, fuel, price string) model.PriceRecord {
		return model.PriceRecord{State: state, Year: year, Month: month, FuelType: fuel, Price: decimal.RequireFromString(price)}
	}
	return []model.PriceRecord{
		rec("CDMX", 2023, 4, "magna", "22.30"),
		rec("CDMX", 2023, 5, "magna", "22.50"),
		rec("Jalisco", 2023, 5, "magna", "22.90"),
		rec("Jalisco", 2023, 5, "premium", "24.60"),
		rec("CDMX", 2022, 5, "premium", "23.70"),
	}
}

func newTestApp(t *testing.T, mode model.Mode) App {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	table := prices.NewTable("precios.csv", testRecords(), 0)
	msg := DataLoadedMsg{Result: &pipeline.LoadResult{Table: table, Mode: mode}}
	if mode == model.ModeEstimate {
		m, err := estimator.Fit(table.Records())
		if err != nil {
			t.Fatalf("Fit: %v", err)
		}
		msg.Model = m
	}

	a := App{
		cfg:    config.DefaultConfig(),
		src:    pipeline.Source{Path: "precios.csv", Mode: mode},
		logger: zap.NewNop(),
		width:  120,
		height: 40,
	}
	return send(a, msg)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func send(a App, msgs ...tea.Msg) App {
	for _, msg := range msgs {
		m, _ := a.Update(msg)
		a = m.(App)
	}
	return a
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0
		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1
		}
		if got := a.tabAtX(pos + 50); got != -1 {
			t.Errorf("x past the last tab -> %d, want -1", got)
		}
	}
}

func TestCycle(t *testing.T) {
	values := []string{"CDMX", "Jalisco", "Sonora"}
	if got := cycle(values, "Sonora", 1); got != "CDMX" {
		t.Errorf("cycle forward wrap = %q", got)
	}
	if got := cycle(values, "CDMX", -1); got != "Sonora" {
		t.Errorf("cycle backward wrap = %q", got)
	}
	if got := cycle(values, "Yucatán", 1); got != "CDMX" {
		t.Errorf("cycle from unknown = %q", got)
	}
	if got := cycleInt(1, 12, 12, 1); got != 1 {
		t.Errorf("cycleInt(12+1) = %d", got)
	}
	if got := cycleInt(2020, 2023, 2020, -1); got != 2023 {
		t.Errorf("cycleInt(2020-1) = %d", got)
	}
}

func TestLookupMode_DefaultQueryAndFilters(t *testing.T) {
	a := newTestApp(t, model.ModeLookup)

	want := model.Query{State: "CDMX", FuelType: "magna", Year: 2023, Month: 1}
	if a.query != want {
		t.Fatalf("default query = %+v, want %+v", a.query, want)
	}
	if !errors.Is(a.evalErr, prices.ErrNoMatch) {
		t.Fatalf("January should have no match, err = %v", a.evalErr)
	}
	if !strings.Contains(a.View(), "No data for the selected combination") {
		t.Error("no-match warning not rendered")
	}
	if len(a.eval.History) != 2 {
		t.Errorf("history = %d points, want 2 even without a match", len(a.eval.History))
	}

	// Focus the month selector and step to April.
	a = send(a, keyMsg("right"), keyMsg("right"), keyMsg("right"), keyMsg("up"), keyMsg("up"), keyMsg("up"))
	if a.focus != filterMonth || a.query.Month != 4 {
		t.Fatalf("focus=%d month=%d", a.focus, a.query.Month)
	}
	if a.evalErr != nil || a.eval.Observed.Decimal.StringFixed(2) != "22.30" {
		t.Fatalf("April: err=%v observed=%v", a.evalErr, a.eval.Observed)
	}
	if !strings.Contains(a.View(), "$22.30 MXN") {
		t.Error("stored price not rendered")
	}

	// Year wraps from the newest back to the oldest.
	a = send(a, keyMsg("left"), keyMsg("up"))
	if a.query.Year != 2022 {
		t.Errorf("year = %d, want wrap to 2022", a.query.Year)
	}
}

func TestTabKeys(t *testing.T) {
	a := newTestApp(t, model.ModeLookup)
	for _, tc := range []struct {
		key  string
		want int
	}{{"h", tabHistory}, {"s", tabStates}, {"x", tabSettings}, {"p", tabPrice}, {"tab", tabHistory}} {
		a = send(a, keyMsg(tc.key))
		if a.activeTab != tc.want {
			t.Fatalf("after %q tab = %d, want %d", tc.key, a.activeTab, tc.want)
		}
		if a.View() == "" {
			t.Fatalf("tab %d rendered nothing", a.activeTab)
		}
	}
}

func TestStatesTab_Ranking(t *testing.T) {
	a := newTestApp(t, model.ModeLookup)
	a = send(a, keyMsg("right"), keyMsg("right"), keyMsg("right"), keyMsg("up"), keyMsg("up"), keyMsg("up"), keyMsg("up"))
	if a.query.Month != 5 {
		t.Fatalf("month = %d", a.query.Month)
	}
	if len(a.ranking) != 2 || a.ranking[0].State != "Jalisco" {
		t.Fatalf("ranking = %+v", a.ranking)
	}
	a = send(a, keyMsg("s"))
	if !strings.Contains(a.View(), "Most expensive") {
		t.Error("ranking cards not rendered")
	}
}

func TestEstimateMode(t *testing.T) {
	a := newTestApp(t, model.ModeEstimate)
	if a.evalErr != nil || !a.eval.Estimated {
		t.Fatalf("estimate: err=%v result=%+v", a.evalErr, a.eval)
	}
	view := a.View()
	for _, want := range []string{"Estimated price", "Regression model", "intercept"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestPredictionTermsSumToPrediction(t *testing.T) {
	m, err := estimator.Fit(testRecords())
	if err != nil {
		t.Fatal(err)
	}
	for _, q := range []model.Query{
		{State: "Jalisco", FuelType: "premium", Year: 2024, Month: 3},
		{State: "CDMX", FuelType: "magna", Year: 2023, Month: 1},
		{State: "Oaxaca", FuelType: "diesel", Year: 2023, Month: 7},
	} {
		sum := 0.0
		for _, tm := range predictionTerms(m, q) {
			sum += tm.value
		}
		if want := m.PredictQuery(q); math.Abs(sum-want) > 1e-6 {
			t.Errorf("%s: terms sum to %v, prediction %v", q, sum, want)
		}
	}
}

func TestLoadErrorIsTerminal(t *testing.T) {
	a := App{
		src:    pipeline.Source{Path: "nope.xlsx", Mode: model.ModeLookup},
		logger: zap.NewNop(),
		width:  120,
		height: 40,
	}
	a = send(a, DataLoadedMsg{Err: fmt.Errorf("%w: nope.xlsx", prices.ErrMissingFile)})

	if !strings.Contains(a.View(), "Price file not found") {
		t.Errorf("error screen missing message:\n%s", a.View())
	}
	a = send(a, keyMsg("h"))
	if a.activeTab != tabPrice {
		t.Error("tabs should not switch on the error screen")
	}
	_, cmd := a.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}

func TestDescribeLoadError_MissingColumns(t *testing.T) {
	err := &prices.MissingColumnsError{Path: "x.xlsx", Missing: []string{"anio", "mes"}}
	if got := describeLoadError(err); !strings.Contains(got, "anio, mes") {
		t.Errorf("message = %q", got)
	}
}

func TestDescribeLoadError_Unreadable(t *testing.T) {
	err := fmt.Errorf("%w: x.csv: record on line 3: wrong number of fields", prices.ErrUnreadable)
	got := describeLoadError(err)
	if strings.Contains(got, "not found") || !strings.Contains(got, "wrong number of fields") {
		t.Errorf("message = %q", got)
	}
}

func TestSettingsSave(t *testing.T) {
	a := newTestApp(t, model.ModeLookup)
	t.Cleanup(func() { theme.SetActive(theme.FlexokiDark.Name) })
	a = send(a, keyMsg("x"))

	// An unknown theme name is rejected.
	a.settings.cursor = settingsFieldTheme
	a = send(a, tea.KeyMsg{Type: tea.KeyEnter})
	if !a.settings.editing {
		t.Fatal("enter should start editing")
	}
	a.settings.input.SetValue("neon")
	a = send(a, tea.KeyMsg{Type: tea.KeyEnter})
	if a.settings.saveErr == nil || a.cfg.Appearance.Theme == "neon" {
		t.Fatalf("unknown theme accepted: %+v", a.cfg.Appearance)
	}

	a = send(a, tea.KeyMsg{Type: tea.KeyEnter})
	a.settings.input.SetValue("terminal")
	a = send(a, tea.KeyMsg{Type: tea.KeyEnter})
	if a.settings.saveErr != nil || a.cfg.Appearance.Theme != "terminal" {
		t.Fatalf("save: err=%v theme=%q", a.settings.saveErr, a.cfg.Appearance.Theme)
	}
	if !config.Exists() {
		t.Error("config file not written")
	}
	if !a.loaded {
		t.Error("theme change should not reload the source")
	}
	a.settings.cursor = settingsFieldMode
	a = send(a, tea.KeyMsg{Type: tea.KeyEnter})
	a.settings.input.SetValue("lookup")
	a = send(a, tea.KeyMsg{Type: tea.KeyEnter})
	if a.loaded || a.src.Mode != model.ModeLookup {
		t.Errorf("mode change should reload: loaded=%v mode=%q", a.loaded, a.src.Mode)
	}
}
