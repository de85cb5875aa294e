package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/lbermudezd2020/appgasolinabueno/internal/estimator"
	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/prices"

	"github.com/shopspring/decimal"
)

var (
	// ErrNoModel is returned when estimate mode is evaluated without a model.
	ErrNoModel = errors.New("estimate mode requires a fitted model")
	// ErrNonFiniteEstimate means the model predicted NaN or an infinity.
	ErrNonFiniteEstimate = errors.New("model estimate is not a finite number")
)

// Result is the evaluation of one query.
type Result struct {
	Query model.Query
	Mode  model.Mode

	// Observed is the stored price of the first exact match, if any.
	Observed decimal.NullDecimal
	// Estimate is the model prediction; set only in estimate mode.
	Estimate  float64
	Estimated bool

	// History is the (state, fuel) series sorted by date.
	History []model.HistoryPoint
	Stats   model.SeriesStats
}

// Display returns the price to show: the observed price when there is one,
// otherwise the estimate. ok is false when there is neither.
func (r Result) Display() (price decimal.Decimal, ok bool) {
	if r.Observed.Valid {
		return r.Observed.Decimal, true
	}
	return r.EstimateDecimal()
}

// EstimateDecimal returns the estimate as a decimal. ok is false when there
// is no estimate or it is not finite.
func (r Result) EstimateDecimal() (decimal.Decimal, bool) {
	if !r.Estimated || !isFinite(r.Estimate) {
		return decimal.Decimal{}, false
	}
	return decimal.NewFromFloat(r.Estimate), true
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Evaluate answers q against the table. In lookup mode a query without an
// exact row returns the partial result (history only) and an error wrapping
// prices.ErrNoMatch. In estimate mode every valid query yields a price.
func Evaluate(t *prices.Table, m *estimator.Model, q model.Query, mode model.Mode) (Result, error) {
	if err := q.Validate(); err != nil {
		return Result{}, err
	}

	res := Result{Query: q, Mode: mode}
	if price, ok := t.Lookup(q.State, q.FuelType, q.Year, q.Month); ok {
		res.Observed = decimal.NewNullDecimal(price)
	}
	res.History = t.History(q.State, q.FuelType)
	res.Stats = SummarizeHistory(res.History)

	switch mode {
	case model.ModeEstimate:
		if m == nil {
			return res, ErrNoModel
		}
		est := m.PredictQuery(q)
		if !isFinite(est) {
			return res, fmt.Errorf("%w for %s", ErrNonFiniteEstimate, q)
		}
		res.Estimate = est
		res.Estimated = true
	default:
		if !res.Observed.Valid {
			return res, fmt.Errorf("%w for %s", prices.ErrNoMatch, q)
		}
	}
	return res, nil
}
