package model

import "github.com/shopspring/decimal"

// SeriesStats summarizes a price series for dashboard cards.
type SeriesStats struct {
	Points int
	First  HistoryPoint
	Latest HistoryPoint
	Min    decimal.Decimal
	Max    decimal.Decimal
	Mean   decimal.Decimal
	Change decimal.Decimal // Latest - First
}

// ChangeRatio returns Change relative to the first price (0.05 = +5%).
func (s SeriesStats) ChangeRatio() float64 {
	if s.Points == 0 || s.First.Price.IsZero() {
		return 0
	}
	return s.Change.Div(s.First.Price).InexactFloat64()
}

// YearStats aggregates one calendar year of a series.
type YearStats struct {
	Year   int
	Points int
	Min    decimal.Decimal
	Max    decimal.Decimal
	Mean   decimal.Decimal
}

// StatePrice is one state's price for a fixed fuel type and month.
type StatePrice struct {
	State    string
	Price    decimal.Decimal
	Observed bool // false when the price is a model estimate
}
