// Package prices loads gasoline price spreadsheets into an immutable table
// and answers point and series queries over it.
package prices

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/source"

	"github.com/shopspring/decimal"
)

// LoadOptions controls schema handling during Load.
type LoadOptions struct {
	// Normalize folds column names before the required-column check.
	Normalize bool
	// DropIncomplete drops rows with a blank or unparsable required cell
	// instead of failing the load. Both modes set it; a bad row never hides
	// the good ones.
	DropIncomplete bool
	// Sheet selects an xlsx worksheet; empty means the first.
	Sheet string
}

// OptionsFor returns the load options used by a dashboard mode. Lookup keeps
// the header exact; only a missing column fails the load.
func OptionsFor(mode model.Mode) LoadOptions {
	if mode == model.ModeEstimate {
		return LoadOptions{Normalize: true, DropIncomplete: true}
	}
	return LoadOptions{DropIncomplete: true}
}

type seriesKey struct {
	state, fuel string
}

type pointKey struct {
	seriesKey
	year, month int
}

// Table is an immutable, in-memory price table.
type Table struct {
	path    string
	records []model.PriceRecord
	dropped int
	first   map[pointKey]int // first row index per (state, fuel, year, month)
}

// Load reads every row from the source at path.
func Load(path string, opts LoadOptions) (*Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingFile, path)
	}

	sheet, err := source.Read(path, source.Options{Normalize: opts.Normalize, Sheet: opts.Sheet})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s: %w", ErrMissingFile, path, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrUnreadable, path, err)
	}

	if missing := source.MissingColumns(sheet.Header); len(missing) > 0 {
		return nil, &MissingColumnsError{Path: path, Missing: missing, Found: sheet.Header}
	}

	return FromRows(path, sheet.Rows, opts)
}

// FromRows types raw rows into a table. Rows failing conversion are dropped
// when opts.DropIncomplete is set; otherwise the first failure is returned.
func FromRows(path string, rows []source.RawRow, opts LoadOptions) (*Table, error) {
	records := make([]model.PriceRecord, 0, len(rows))
	dropped := 0
	for _, raw := range rows {
		rec, err := parseRow(path, raw)
		if err != nil {
			var rowErr *RowError
			if opts.DropIncomplete && errors.As(err, &rowErr) {
				dropped++
				continue
			}
			return nil, err
		}
		records = append(records, rec)
	}
	return NewTable(path, records, dropped), nil
}

// NewTable builds a table from typed records, in source order.
func NewTable(path string, records []model.PriceRecord, dropped int) *Table {
	t := &Table{
		path:    path,
		records: records,
		dropped: dropped,
		first:   make(map[pointKey]int, len(records)),
	}
	for i, r := range records {
		k := pointKey{seriesKey{r.State, r.FuelType}, r.Year, r.Month}
		if _, ok := t.first[k]; !ok {
			t.first[k] = i
		}
	}
	return t
}

// Path returns the source the table was loaded from.
func (t *Table) Path() string { return t.path }

// Len returns the number of loaded rows.
func (t *Table) Len() int { return len(t.records) }

// Dropped returns how many rows were discarded as incomplete.
func (t *Table) Dropped() int { return t.dropped }

// Records returns a copy of the rows in source order.
func (t *Table) Records() []model.PriceRecord {
	out := make([]model.PriceRecord, len(t.records))
	copy(out, t.records)
	return out
}

// Lookup returns the price of the first row matching all four fields.
func (t *Table) Lookup(state, fuel string, year, month int) (decimal.Decimal, bool) {
	i, ok := t.first[pointKey{seriesKey{state, fuel}, year, month}]
	if !ok {
		return decimal.Decimal{}, false
	}
	return t.records[i].Price, true
}

// History returns the (state, fuel) series sorted ascending by month.
// Rows for the same month keep their source order.
func (t *Table) History(state, fuel string) []model.HistoryPoint {
	rows := t.Filter(func(r model.PriceRecord) bool {
		return r.State == state && r.FuelType == fuel
	})
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Year != rows[j].Year {
			return rows[i].Year < rows[j].Year
		}
		return rows[i].Month < rows[j].Month
	})

	points := make([]model.HistoryPoint, len(rows))
	for i, r := range rows {
		points[i] = model.HistoryPoint{Date: r.Date(), Year: r.Year, Month: r.Month, Price: r.Price}
	}
	return points
}

// Filter returns the rows for which keep is true, in source order.
func (t *Table) Filter(keep func(model.PriceRecord) bool) []model.PriceRecord {
	var out []model.PriceRecord
	for _, r := range t.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// States returns the distinct states, sorted.
func (t *Table) States() []string {
	return t.distinct(func(r model.PriceRecord) string { return r.State })
}

// FuelTypes returns the distinct fuel types, sorted.
func (t *Table) FuelTypes() []string {
	return t.distinct(func(r model.PriceRecord) string { return r.FuelType })
}

// Years returns the distinct years, ascending.
func (t *Table) Years() []int {
	seen := make(map[int]struct{})
	var out []int
	for _, r := range t.records {
		if _, ok := seen[r.Year]; ok {
			continue
		}
		seen[r.Year] = struct{}{}
		out = append(out, r.Year)
	}
	sort.Ints(out)
	return out
}

// YearRange returns the smallest and largest year; ok is false for an empty table.
func (t *Table) YearRange() (lo, hi int, ok bool) {
	years := t.Years()
	if len(years) == 0 {
		return 0, 0, false
	}
	return years[0], years[len(years)-1], true
}

func (t *Table) distinct(key func(model.PriceRecord) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range t.records {
		k := key(r)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
