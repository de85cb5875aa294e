// Package model defines domain types for gasoline price records and queries.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceRecord is one row of the price table: the average price of a fuel
// type in a state for a calendar month.
type PriceRecord struct {
	State    string
	Year     int
	Month    int // 1-12
	FuelType string
	Price    decimal.Decimal

	// Line is the 1-based source line the row was read from (header is line 1).
	Line int
}

// Date returns the first day of the record's month in UTC.
func (r PriceRecord) Date() time.Time {
	return MonthStart(r.Year, r.Month)
}

// HistoryPoint is one entry of a state/fuel price series.
type HistoryPoint struct {
	Date  time.Time
	Year  int
	Month int
	Price decimal.Decimal
}

// MonthStart returns the first day of (year, month) in UTC.
func MonthStart(year, month int) time.Time {
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}
