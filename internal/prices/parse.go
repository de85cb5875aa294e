package prices

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/source"

	"github.com/shopspring/decimal"
)

var (
	errMonthRange = errors.New("month out of range 1-12")
	errNotInteger = errors.New("not an integer")
	errNotNumber  = errors.New("not a number")
)

// parseRow converts raw cells into a record. The returned error is a *RowError.
func parseRow(path string, raw source.RawRow) (model.PriceRecord, error) {
	rec := model.PriceRecord{Line: raw.Line}
	fail := func(col string, err error) (model.PriceRecord, error) {
		return model.PriceRecord{}, &RowError{Path: path, Line: raw.Line, Column: col, Value: raw.Value(col), Err: err}
	}

	rec.State = strings.TrimSpace(raw.State)
	if rec.State == "" {
		return fail(source.ColState, ErrEmptyValue)
	}
	rec.FuelType = strings.TrimSpace(raw.FuelType)
	if rec.FuelType == "" {
		return fail(source.ColFuelType, ErrEmptyValue)
	}

	var err error
	if rec.Year, err = parseInt(raw.Year); err != nil {
		return fail(source.ColYear, err)
	}
	if rec.Month, err = parseInt(raw.Month); err != nil {
		return fail(source.ColMonth, err)
	}
	if rec.Month < 1 || rec.Month > 12 {
		return fail(source.ColMonth, errMonthRange)
	}
	if rec.Price, err = parsePrice(raw.Price); err != nil {
		return fail(source.ColPrice, err)
	}
	return rec, nil
}

// parseInt accepts "2023" as well as spreadsheet floats such as "2023.0".
func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrEmptyValue
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, errNotInteger
	}
	return int(f), nil
}

// parsePrice accepts plain decimals and currency-formatted text ("$22.50", "1,024.10").
func parsePrice(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, ErrEmptyValue
	}
	s = strings.NewReplacer("$", "", ",", "", " ", "").Replace(s)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errNotNumber
	}
	return d, nil
}
