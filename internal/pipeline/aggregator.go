package pipeline

import (
	"sort"

	"github.com/lbermudezd2020/appgasolinabueno/internal/estimator"
	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/prices"

	"github.com/shopspring/decimal"
)

const meanPlaces = 4

// SummarizeHistory computes first, latest, min, max and mean of a series
// sorted by date.
func SummarizeHistory(points []model.HistoryPoint) model.SeriesStats {
	var stats model.SeriesStats
	if len(points) == 0 {
		return stats
	}

	stats.Points = len(points)
	stats.First = points[0]
	stats.Latest = points[len(points)-1]
	stats.Min, stats.Max = points[0].Price, points[0].Price

	sum := decimal.Zero
	for _, p := range points {
		sum = sum.Add(p.Price)
		if p.Price.LessThan(stats.Min) {
			stats.Min = p.Price
		}
		if p.Price.GreaterThan(stats.Max) {
			stats.Max = p.Price
		}
	}
	stats.Mean = sum.Div(decimal.NewFromInt(int64(len(points)))).Round(meanPlaces)
	stats.Change = stats.Latest.Price.Sub(stats.First.Price)
	return stats
}

// AggregateYears groups a series by calendar year, oldest first.
func AggregateYears(points []model.HistoryPoint) []model.YearStats {
	byYear := make(map[int][]model.HistoryPoint)
	for _, p := range points {
		byYear[p.Year] = append(byYear[p.Year], p)
	}

	years := make([]model.YearStats, 0, len(byYear))
	for year, pts := range byYear {
		s := SummarizeHistory(pts)
		years = append(years, model.YearStats{
			Year:   year,
			Points: s.Points,
			Min:    s.Min,
			Max:    s.Max,
			Mean:   s.Mean,
		})
	}
	sort.Slice(years, func(i, j int) bool {
		return years[i].Year < years[j].Year
	})
	return years
}

// FilterByYear returns the points of one year; year 0 keeps every point.
func FilterByYear(points []model.HistoryPoint, year int) []model.HistoryPoint {
	if year == 0 {
		return points
	}
	var result []model.HistoryPoint
	for _, p := range points {
		if p.Year == year {
			result = append(result, p)
		}
	}
	return result
}

// RankStates prices one fuel type and month in every state, highest first.
// States without a stored price are estimated when m is non-nil and
// omitted otherwise. Non-finite estimates are omitted too.
func RankStates(t *prices.Table, m *estimator.Model, fuel string, year, month int) []model.StatePrice {
	var ranked []model.StatePrice
	for _, state := range t.States() {
		if price, ok := t.Lookup(state, fuel, year, month); ok {
			ranked = append(ranked, model.StatePrice{State: state, Price: price, Observed: true})
			continue
		}
		if m == nil {
			continue
		}
		if est := m.Predict(state, fuel, month, year); isFinite(est) {
			ranked = append(ranked, model.StatePrice{State: state, Price: decimal.NewFromFloat(est)})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Price.GreaterThan(ranked[j].Price)
	})
	return ranked
}
