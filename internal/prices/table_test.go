package prices

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/source"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const header = "estado,anio,mes,tipo_combustible,precio"

func writeCSV(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "precios.csv")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func sampleTable(t *testing.T) *Table {
	t.Helper()
	path := writeCSV(t,
		header,
		"CDMX,2023,5,magna,22.50",
		"CDMX,2023,2,magna,22.10",
		"Jalisco,2023,5,magna,22.80",
		"CDMX,2022,12,magna,21.95",
		"CDMX,2023,5,premium,24.30",
		"CDMX,2023,5,magna,99.99",
	)
	tbl, err := Load(path, OptionsFor(model.ModeLookup))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	return tbl
}

func TestLookup(t *testing.T) {
	tbl := sampleTable(t)

	got, ok := tbl.Lookup("CDMX", "magna", 2023, 5)
	if !ok {
		t.Fatal("Lookup(CDMX, magna, 2023, 5) not found")
	}
	if !got.Equal(decimal.RequireFromString("22.50")) {
		t.Errorf("price = %s, want 22.50 (first match)", got)
	}

	if _, ok := tbl.Lookup("CDMX", "magna", 2023, 6); ok {
		t.Error("Lookup(CDMX, magna, 2023, 6) should be absent")
	}
	if _, ok := tbl.Lookup("cdmx", "magna", 2023, 5); ok {
		t.Error("Lookup should use exact string equality")
	}
}

func TestLookup_RoundTrip(t *testing.T) {
	tbl := sampleTable(t)
	for _, r := range tbl.Records() {
		got, ok := tbl.Lookup(r.State, r.FuelType, r.Year, r.Month)
		if !ok {
			t.Fatalf("Lookup(%s/%s %d-%d) missing", r.State, r.FuelType, r.Year, r.Month)
		}
		first := tbl.Filter(func(x model.PriceRecord) bool {
			return x.State == r.State && x.FuelType == r.FuelType && x.Year == r.Year && x.Month == r.Month
		})[0]
		if !got.Equal(first.Price) {
			t.Errorf("Lookup(%s/%s %d-%d) = %s, want %s", r.State, r.FuelType, r.Year, r.Month, got, first.Price)
		}
	}
}

func TestHistory_Sorted(t *testing.T) {
	tbl := sampleTable(t)
	hist := tbl.History("CDMX", "magna")
	if len(hist) != 4 {
		t.Fatalf("len = %d, want 4", len(hist))
	}
	for i := 1; i < len(hist); i++ {
		if hist[i].Date.Before(hist[i-1].Date) {
			t.Errorf("history not sorted at %d: %v before %v", i, hist[i].Date, hist[i-1].Date)
		}
	}
	if hist[0].Year != 2022 || hist[0].Month != 12 {
		t.Errorf("first point = %d-%d, want 2022-12", hist[0].Year, hist[0].Month)
	}
	// Duplicate months keep source order.
	if !hist[2].Price.Equal(decimal.RequireFromString("22.50")) || !hist[3].Price.Equal(decimal.RequireFromString("99.99")) {
		t.Errorf("duplicate order = %s, %s; want 22.50, 99.99", hist[2].Price, hist[3].Price)
	}
	if hist[1].Date != model.MonthStart(2023, 2) {
		t.Errorf("date = %v, want 2023-02-01", hist[1].Date)
	}
}

func TestHistory_Empty(t *testing.T) {
	tbl := sampleTable(t)
	if got := tbl.History("Yucatan", "diesel"); len(got) != 0 {
		t.Errorf("len = %d, want 0", len(got))
	}
}

func TestOptionLists(t *testing.T) {
	tbl := sampleTable(t)
	if got := strings.Join(tbl.States(), ","); got != "CDMX,Jalisco" {
		t.Errorf("States = %s", got)
	}
	if got := strings.Join(tbl.FuelTypes(), ","); got != "magna,premium" {
		t.Errorf("FuelTypes = %s", got)
	}
	lo, hi, ok := tbl.YearRange()
	if !ok || lo != 2022 || hi != 2023 {
		t.Errorf("YearRange = %d, %d, %v", lo, hi, ok)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.xlsx"), LoadOptions{})
	if !errors.Is(err, ErrMissingFile) {
		t.Fatalf("err = %v, want ErrMissingFile", err)
	}
}

func TestLoad_MissingColumns(t *testing.T) {
	for _, col := range source.RequiredColumns {
		t.Run(col, func(t *testing.T) {
			var cols []string
			for _, c := range source.RequiredColumns {
				if c != col {
					cols = append(cols, c)
				}
			}
			path := writeCSV(t, strings.Join(cols, ","), "a,b,c,d")

			_, err := Load(path, OptionsFor(model.ModeLookup))
			if !errors.Is(err, ErrMissingColumns) {
				t.Fatalf("err = %v, want ErrMissingColumns", err)
			}
			var mc *MissingColumnsError
			if !errors.As(err, &mc) || len(mc.Missing) != 1 || mc.Missing[0] != col {
				t.Errorf("missing = %v, want [%s]", mc, col)
			}
		})
	}
}

func TestLoad_StrictSkipsBadRow(t *testing.T) {
	path := writeCSV(t,
		header,
		"CDMX,2023,5,magna,22.50",
		"CDMX,2023,6,magna,",
	)
	tbl, err := Load(path, OptionsFor(model.ModeLookup))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 1 || tbl.Dropped() != 1 {
		t.Errorf("Len = %d, Dropped = %d; want 1, 1", tbl.Len(), tbl.Dropped())
	}
	if got, ok := tbl.Lookup("CDMX", "magna", 2023, 5); !ok || got.StringFixed(2) != "22.50" {
		t.Errorf("Lookup = %s, %v; want 22.50", got, ok)
	}
}

func TestFromRows_WithoutDropReturnsRowError(t *testing.T) {
	rows := []source.RawRow{
		{Line: 2, State: "CDMX", Year: "2023", Month: "5", FuelType: "magna", Price: "22.50"},
		{Line: 3, State: "CDMX", Year: "2023", Month: "6", FuelType: "magna"},
	}
	_, err := FromRows("precios.csv", rows, LoadOptions{})
	var rowErr *RowError
	if !errors.As(err, &rowErr) {
		t.Fatalf("err = %v, want *RowError", err)
	}
	if rowErr.Line != 3 || rowErr.Column != source.ColPrice || !errors.Is(err, ErrEmptyValue) {
		t.Errorf("row error = %+v", rowErr)
	}
}

func TestLoad_MalformedIsUnreadable(t *testing.T) {
	path := writeCSV(t,
		header,
		"CDMX,2023,5,magna,22.50",
		"CDMX,2023,6,magna,22.70,extra",
	)
	_, err := Load(path, OptionsFor(model.ModeLookup))
	if !errors.Is(err, ErrUnreadable) {
		t.Fatalf("err = %v, want ErrUnreadable", err)
	}
	if errors.Is(err, ErrMissingFile) {
		t.Errorf("malformed source reported as missing: %v", err)
	}
}

func TestLoad_StrictRequiresExactNames(t *testing.T) {
	path := writeCSV(t, "Estado,Anio,Mes,Tipo Combustible,Precio", "CDMX,2023,5,magna,22.50")
	if _, err := Load(path, OptionsFor(model.ModeLookup)); !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("err = %v, want ErrMissingColumns", err)
	}
	tbl, err := Load(path, OptionsFor(model.ModeEstimate))
	if err != nil {
		t.Fatalf("normalized Load: %v", err)
	}
	if tbl.Len() != 1 {
		t.Errorf("Len = %d, want 1", tbl.Len())
	}
}

func TestLoad_NormalizedDropsNullPrice(t *testing.T) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	rows := [][]any{
		{"Estado", "Año", "Mes", "Tipo Combustible", "Precio"},
		{"CDMX", 2023, 5, "magna", 22.5},
		{"CDMX", 2023, 6, "magna", nil},
		{"CDMX", 2023, 13, "magna", 22.9},
		{"Jalisco", 2023, 6, "premium", "$24.10"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Sheet1", cell, &row); err != nil {
			t.Fatal(err)
		}
	}
	path := filepath.Join(t.TempDir(), "precios.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatal(err)
	}

	// "Año" folds to "ano", not "anio".
	if _, err := Load(path, OptionsFor(model.ModeEstimate)); !errors.Is(err, ErrMissingColumns) {
		t.Fatalf("err = %v, want ErrMissingColumns for Año", err)
	}

	if err := f.SetCellValue("Sheet1", "B1", "Anio"); err != nil {
		t.Fatal(err)
	}
	if err := f.Save(); err != nil {
		t.Fatal(err)
	}

	tbl, err := Load(path, OptionsFor(model.ModeEstimate))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if tbl.Len() != 2 || tbl.Dropped() != 2 {
		t.Errorf("Len = %d, Dropped = %d; want 2, 2", tbl.Len(), tbl.Dropped())
	}
	got, ok := tbl.Lookup("Jalisco", "premium", 2023, 6)
	if !ok || !got.Equal(decimal.RequireFromString("24.10")) {
		t.Errorf("Lookup = %s, %v; want 24.10", got, ok)
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"2023", 2023, false},
		{" 5 ", 5, false},
		{"2023.0", 2023, false},
		{"5.5", 0, true},
		{"mayo", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseInt(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("parseInt(%q) = %d, %v", tt.in, got, err)
		}
	}
}

func TestParsePrice(t *testing.T) {
	for in, want := range map[string]string{
		"22.50":     "22.5",
		"$22.50":    "22.5",
		"1,024.10":  "1024.1",
		" $ 23.01 ": "23.01",
	} {
		got, err := parsePrice(in)
		if err != nil || !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("parsePrice(%q) = %s, %v; want %s", in, got, err, want)
		}
	}
	if _, err := parsePrice("n/a"); err == nil {
		t.Error("parsePrice(n/a) should fail")
	}
}
