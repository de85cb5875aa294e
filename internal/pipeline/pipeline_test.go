package pipeline

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/lbermudezd2020/appgasolinabueno/internal/config"
	"github.com/lbermudezd2020/appgasolinabueno/internal/estimator"
	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/prices"
	"github.com/lbermudezd2020/appgasolinabueno/internal/store"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap/zaptest"
)

func writeSource(t testing.TB, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "precios.csv")
	body := "estado,anio,mes,tipo_combustible,precio\n" + strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleSource(t testing.TB) string {
	t.Helper()
	return writeSource(t,
		"CDMX,2023,5,magna,22.50",
		"CDMX,2023,4,magna,22.30",
		"CDMX,2022,5,magna,21.80",
		"Jalisco,2023,5,magna,22.90",
		"Jalisco,2023,4,premium,24.40",
		"CDMX,2023,5,premium,24.10",
	)
}

func mustLoad(t *testing.T, path string, mode model.Mode) *prices.Table {
	t.Helper()
	res, err := Load(Source{Path: path, Mode: mode}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return res.Table
}

func TestEvaluate_LookupMatch(t *testing.T) {
	tbl := mustLoad(t, sampleSource(t), model.ModeLookup)
	q := model.Query{State: "CDMX", FuelType: "magna", Year: 2023, Month: 5}

	res, err := Evaluate(tbl, nil, q, model.ModeLookup)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	price, ok := res.Display()
	if !ok || price.StringFixed(2) != "22.50" {
		t.Errorf("Display = %s, %v; want 22.50", price, ok)
	}
	if res.Estimated {
		t.Error("lookup mode should not estimate")
	}
	if len(res.History) != 3 || res.Stats.Points != 3 {
		t.Errorf("history = %d points, stats = %d", len(res.History), res.Stats.Points)
	}
}

func TestEvaluate_LookupNoMatch(t *testing.T) {
	tbl := mustLoad(t, sampleSource(t), model.ModeLookup)
	q := model.Query{State: "CDMX", FuelType: "magna", Year: 2023, Month: 6}

	res, err := Evaluate(tbl, nil, q, model.ModeLookup)
	if !errors.Is(err, prices.ErrNoMatch) {
		t.Fatalf("err = %v, want ErrNoMatch", err)
	}
	if _, ok := res.Display(); ok {
		t.Error("Display should be empty on no match")
	}
	if len(res.History) != 3 {
		t.Errorf("history = %d points, want 3 (still shown)", len(res.History))
	}
}

func TestEvaluate_EstimateAlwaysPrices(t *testing.T) {
	tbl := mustLoad(t, sampleSource(t), model.ModeEstimate)
	m, err := estimator.Fit(tbl.Records())
	if err != nil {
		t.Fatalf("Fit: %v", err)
	}

	res, err := Evaluate(tbl, m, model.Query{State: "Sonora", FuelType: "diesel", Year: 2024, Month: 1}, model.ModeEstimate)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !res.Estimated || res.Observed.Valid {
		t.Errorf("Estimated = %v, Observed = %v", res.Estimated, res.Observed.Valid)
	}
	if _, ok := res.Display(); !ok {
		t.Error("Display should return the estimate")
	}

	// An observed price wins over the estimate for display.
	res, err = Evaluate(tbl, m, model.Query{State: "CDMX", FuelType: "magna", Year: 2023, Month: 5}, model.ModeEstimate)
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if price, _ := res.Display(); price.StringFixed(2) != "22.50" {
		t.Errorf("Display = %s, want observed 22.50", price)
	}
}

func TestEvaluate_NonFiniteEstimate(t *testing.T) {
	tbl := mustLoad(t, sampleSource(t), model.ModeEstimate)
	for name, poison := range map[string]float64{"nan": math.NaN(), "inf": math.Inf(1), "-inf": math.Inf(-1)} {
		t.Run(name, func(t *testing.T) {
			m, err := estimator.Fit(tbl.Records())
			if err != nil {
				t.Fatalf("Fit: %v", err)
			}
			m.Intercept = poison

			res, err := Evaluate(tbl, m, model.Query{State: "CDMX", FuelType: "magna", Year: 2023, Month: 5}, model.ModeEstimate)
			if !errors.Is(err, ErrNonFiniteEstimate) {
				t.Fatalf("err = %v, want ErrNonFiniteEstimate", err)
			}
			if res.Estimated {
				t.Error("a non-finite estimate must not be marked as estimated")
			}
			if price, ok := res.Display(); !ok || price.StringFixed(2) != "22.50" {
				t.Errorf("Display = %s, %v; want observed 22.50", price, ok)
			}

			// A hand-built result must not panic either.
			bad := Result{Estimate: poison, Estimated: true}
			if _, ok := bad.Display(); ok {
				t.Error("Display should reject a non-finite estimate")
			}
			if _, ok := bad.EstimateDecimal(); ok {
				t.Error("EstimateDecimal should reject a non-finite estimate")
			}
		})
	}
}

func TestEvaluate_Invalid(t *testing.T) {
	tbl := mustLoad(t, sampleSource(t), model.ModeLookup)
	_, err := Evaluate(tbl, nil, model.Query{State: "CDMX", FuelType: "magna", Year: 2023, Month: 13}, model.ModeLookup)
	if !errors.Is(err, model.ErrInvalidQuery) {
		t.Fatalf("err = %v, want ErrInvalidQuery", err)
	}
	_, err = Evaluate(tbl, nil, model.Query{State: "CDMX", FuelType: "magna", Year: 2023, Month: 1}, model.ModeEstimate)
	if !errors.Is(err, ErrNoModel) {
		t.Fatalf("err = %v, want ErrNoModel", err)
	}
}

func TestBuildOptions(t *testing.T) {
	tbl := mustLoad(t, sampleSource(t), model.ModeLookup)
	opts := BuildOptions(tbl)
	if strings.Join(opts.States, ",") != "CDMX,Jalisco" {
		t.Errorf("States = %v", opts.States)
	}
	if opts.MinYear != 2022 || opts.MaxYear != 2023 || len(opts.Months) != 12 {
		t.Errorf("opts = %+v", opts)
	}
	q := opts.DefaultQuery()
	want := model.Query{State: "CDMX", FuelType: "magna", Year: 2023, Month: 1}
	if q != want {
		t.Errorf("DefaultQuery = %+v, want %+v", q, want)
	}
}

func TestSummarizeHistory(t *testing.T) {
	points := []model.HistoryPoint{
		{Year: 2023, Month: 1, Price: decimal.RequireFromString("22.00")},
		{Year: 2023, Month: 2, Price: decimal.RequireFromString("21.50")},
		{Year: 2023, Month: 3, Price: decimal.RequireFromString("23.00")},
	}
	s := SummarizeHistory(points)
	if s.Points != 3 || s.Min.String() != "21.5" || s.Max.String() != "23" {
		t.Errorf("stats = %+v", s)
	}
	if s.Mean.StringFixed(4) != "22.1667" {
		t.Errorf("Mean = %s, want 22.1667", s.Mean)
	}
	if s.Change.String() != "1" {
		t.Errorf("Change = %s, want 1", s.Change)
	}
	if empty := SummarizeHistory(nil); empty.Points != 0 {
		t.Errorf("empty stats = %+v", empty)
	}
}

func TestAggregateYears(t *testing.T) {
	tbl := mustLoad(t, sampleSource(t), model.ModeLookup)
	years := AggregateYears(tbl.History("CDMX", "magna"))
	if len(years) != 2 || years[0].Year != 2022 || years[1].Points != 2 {
		t.Errorf("years = %+v", years)
	}
	if got := FilterByYear(tbl.History("CDMX", "magna"), 2023); len(got) != 2 {
		t.Errorf("FilterByYear = %d points, want 2", len(got))
	}
}

func TestRankStates(t *testing.T) {
	tbl := mustLoad(t, sampleSource(t), model.ModeLookup)
	ranked := RankStates(tbl, nil, "magna", 2023, 5)
	if len(ranked) != 2 || ranked[0].State != "Jalisco" || !ranked[0].Observed {
		t.Errorf("ranked = %+v", ranked)
	}
	if got := RankStates(tbl, nil, "premium", 2023, 5); len(got) != 1 {
		t.Errorf("premium ranked = %+v, want only CDMX", got)
	}

	m, err := estimator.Fit(tbl.Records())
	if err != nil {
		t.Fatal(err)
	}
	got := RankStates(tbl, m, "premium", 2023, 5)
	if len(got) != 2 {
		t.Fatalf("estimated ranking = %+v, want 2 states", got)
	}
	for _, sp := range got {
		if sp.State == "Jalisco" && sp.Observed {
			t.Error("Jalisco premium 2023-05 should be estimated")
		}
	}

	m.Intercept = math.NaN()
	got = RankStates(tbl, m, "premium", 2023, 5)
	if len(got) != 1 || got[0].State != "CDMX" || !got[0].Observed {
		t.Errorf("ranking with NaN estimates = %+v, want only observed CDMX", got)
	}
}

func TestShared_LoadsOnce(t *testing.T) {
	path := sampleSource(t)
	shared := NewShared(Source{Path: path, Mode: model.ModeEstimate}, zaptest.NewLogger(t))

	t1, err := shared.Table()
	if err != nil {
		t.Fatalf("Table: %v", err)
	}
	// Later edits are not observed: the table is loaded once.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	t2, err := shared.Table()
	if err != nil || t1 != t2 {
		t.Errorf("second Table = %p, %v; want %p", t2, err, t1)
	}

	m1, err := shared.Model()
	if err != nil {
		t.Fatalf("Model: %v", err)
	}
	m2, _ := shared.Model()
	if m1 != m2 {
		t.Error("Model should be fitted once")
	}

	res, err := shared.Evaluate(model.Query{State: "CDMX", FuelType: "diesel", Year: 2023, Month: 5})
	if err != nil || !res.Estimated {
		t.Errorf("Evaluate = %+v, %v", res, err)
	}
}

func TestShared_MissingFile(t *testing.T) {
	shared := NewShared(Source{Path: filepath.Join(t.TempDir(), "none.xlsx"), Mode: model.ModeLookup}, nil)
	if _, err := shared.Table(); !errors.Is(err, prices.ErrMissingFile) {
		t.Fatalf("err = %v, want ErrMissingFile", err)
	}
	if _, err := shared.Options(); !errors.Is(err, prices.ErrMissingFile) {
		t.Fatalf("Options err = %v, want ErrMissingFile", err)
	}
}

func TestLoadWithCache(t *testing.T) {
	path := sampleSource(t)
	cache, err := store.Open(filepath.Join(t.TempDir(), "prices.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = cache.Close() }()
	logger := zaptest.NewLogger(t)
	src := Source{Path: path, Mode: model.ModeLookup}

	first, err := LoadWithCache(src, cache, logger)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if first.FromCache {
		t.Error("first load should parse")
	}

	second, err := LoadWithCache(src, cache, logger)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if !second.FromCache {
		t.Error("second load should hit the cache")
	}
	if second.Table.Len() != first.Table.Len() {
		t.Errorf("cached rows = %d, want %d", second.Table.Len(), first.Table.Len())
	}
	if p, ok := second.Table.Lookup("CDMX", "magna", 2023, 5); !ok || p.StringFixed(2) != "22.50" {
		t.Errorf("cached Lookup = %s, %v", p, ok)
	}

	// Rewriting the source invalidates the entry.
	if err := os.WriteFile(path, []byte("estado,anio,mes,tipo_combustible,precio\nCDMX,2024,1,magna,23.10\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(time.Hour)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}
	third, err := LoadWithCache(src, cache, logger)
	if err != nil {
		t.Fatalf("third load: %v", err)
	}
	if third.FromCache || third.Table.Len() != 1 {
		t.Errorf("third load FromCache = %v, rows = %d; want fresh parse of 1 row", third.FromCache, third.Table.Len())
	}
}

func writeWorkbook(t *testing.T, sheets map[string][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	header := []any{"estado", "anio", "mes", "tipo_combustible", "precio"}
	for name, row := range sheets {
		if name != "Sheet1" {
			if _, err := f.NewSheet(name); err != nil {
				t.Fatal(err)
			}
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			t.Fatal(err)
		}
		if err := f.SetSheetRow(name, "A2", &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "precios.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadWithCache_SheetsKeptApart(t *testing.T) {
	path := writeWorkbook(t, map[string][]any{
		"Sheet1": {"CDMX", 2023, 5, "magna", 22.5},
		"Otro":   {"Yucatán", 2023, 5, "magna", 23.1},
	})
	cache, err := store.Open(filepath.Join(t.TempDir(), "prices.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = cache.Close() }()
	logger := zaptest.NewLogger(t)

	first, err := LoadWithCache(Source{Path: path, Mode: model.ModeLookup}, cache, logger)
	if err != nil {
		t.Fatalf("first sheet: %v", err)
	}
	if got := first.Table.States(); len(got) != 1 || got[0] != "CDMX" {
		t.Fatalf("first sheet states = %v, want [CDMX]", got)
	}

	other, err := LoadWithCache(Source{Path: path, Sheet: "Otro", Mode: model.ModeLookup}, cache, logger)
	if err != nil {
		t.Fatalf("sheet Otro: %v", err)
	}
	if other.FromCache {
		t.Error("sheet Otro was served from the first sheet's cache entry")
	}
	if got := other.Table.States(); len(got) != 1 || got[0] != "Yucatán" {
		t.Errorf("sheet Otro states = %v, want [Yucatán]", got)
	}

	again, err := LoadWithCache(Source{Path: path, Mode: model.ModeLookup}, cache, logger)
	if err != nil {
		t.Fatalf("first sheet again: %v", err)
	}
	if !again.FromCache {
		t.Error("first sheet should still be cached")
	}
	if got := again.Table.States(); len(got) != 1 || got[0] != "CDMX" {
		t.Errorf("cached first sheet states = %v, want [CDMX]", got)
	}
}

func TestLoadSource_CacheDisabled(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	path := sampleSource(t)
	for _, useCache := range []bool{false, true} {
		t.Run(fmt.Sprintf("cache=%v", useCache), func(t *testing.T) {
			res, err := LoadSource(Source{Path: path, Mode: model.ModeLookup, UseCache: useCache}, zaptest.NewLogger(t))
			if err != nil {
				t.Fatalf("LoadSource: %v", err)
			}
			if res.FromCache {
				t.Error("first load per mode should parse")
			}
		})
	}
	if _, err := os.Stat(CachePath()); err != nil {
		t.Errorf("cache db not created: %v", err)
	}
}

func TestSourceFor(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Data.File = "otro.xlsx"
	cfg.Data.Sheet = "Precios"
	cfg.Data.Mode = "LOOKUP"
	cfg.Data.UseCache = false

	src := SourceFor(cfg)
	want := Source{Path: "otro.xlsx", Mode: model.ModeLookup, Sheet: "Precios"}
	if src != want {
		t.Errorf("SourceFor = %+v, want %+v", src, want)
	}
	if got := src.LoadOptions().Sheet; got != "Precios" {
		t.Errorf("LoadOptions().Sheet = %q", got)
	}
}
