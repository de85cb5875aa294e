package estimator

import (
	"errors"
	"fmt"

	"github.com/lbermudezd2020/appgasolinabueno/internal/model"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

const epsilon = 0x1p-52

// ErrEmptyTable is returned when fitting on no records.
var ErrEmptyTable = errors.New("cannot fit price model on an empty table")

// Model is a fitted linear price model.
type Model struct {
	Schema    *Schema
	Intercept float64
	Coef      []float64 // aligned with Schema.Features

	Samples int
	Rank    int
	// RankDeficient is set when the design matrix has fewer independent
	// columns than features (repeated categories, a single state, fewer
	// rows than features). The coefficients are then the minimum-norm
	// least squares solution.
	RankDeficient bool
	// R2 is the coefficient of determination on the training rows.
	R2 float64
}

// Coefficient pairs a feature name with its fitted weight.
type Coefficient struct {
	Feature string  `json:"feature"`
	Value   float64 `json:"value"`
}

// Fit estimates an intercept and one weight per schema feature by least
// squares against the record prices.
func Fit(records []model.PriceRecord) (*Model, error) {
	n := len(records)
	if n == 0 {
		return nil, ErrEmptyTable
	}

	schema := NewSchema(records)
	p := schema.Width()

	x := mat.NewDense(n, p, nil)
	y := make([]float64, n)
	row := make([]float64, p)
	for i, r := range records {
		schema.Encode(row, r.State, r.FuelType, r.Month, r.Year)
		x.SetRow(i, row)
		y[i] = r.Price.InexactFloat64()
	}

	// Center columns so the intercept drops out of the solve.
	means := make([]float64, p)
	col := make([]float64, n)
	for j := range p {
		mat.Col(col, j, x)
		means[j] = stat.Mean(col, nil)
		floats.AddConst(-means[j], col)
		x.SetCol(j, col)
	}
	yMean := stat.Mean(y, nil)
	yc := make([]float64, n)
	copy(yc, y)
	floats.AddConst(-yMean, yc)

	m := &Model{Schema: schema, Coef: make([]float64, p), Samples: n}

	var svd mat.SVD
	if !svd.Factorize(x, mat.SVDThin) {
		return nil, fmt.Errorf("factorizing %dx%d design matrix failed", n, p)
	}
	// Singular values below eps·max(n, p) relative to the largest are
	// treated as zero, matching LAPACK gelsd defaults.
	rcond := epsilon * float64(max(n, p))
	m.Rank = svd.Rank(rcond)
	m.RankDeficient = m.Rank < p

	if m.Rank > 0 {
		var beta mat.VecDense
		svd.SolveVecTo(&beta, mat.NewVecDense(n, yc), m.Rank)
		for j := range p {
			m.Coef[j] = beta.AtVec(j)
		}
	}
	m.Intercept = yMean - floats.Dot(m.Coef, means)
	m.R2 = m.score(x, yc)
	return m, nil
}

// score computes R² from the centered design and targets.
func (m *Model) score(xc *mat.Dense, yc []float64) float64 {
	n, _ := xc.Dims()
	var ssRes, ssTot float64
	for i := range n {
		fitted := floats.Dot(m.Coef, xc.RawRowView(i))
		d := yc[i] - fitted
		ssRes += d * d
		ssTot += yc[i] * yc[i]
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// Predict returns the estimated price for one combination. Categories not
// seen at fit time are treated as the reference level. The result is not
// bounded and may be negative.
func (m *Model) Predict(state, fuel string, month, year int) float64 {
	return m.Intercept + floats.Dot(m.Coef, m.Schema.Row(state, fuel, month, year))
}

// PredictQuery is Predict for a query value.
func (m *Model) PredictQuery(q model.Query) float64 {
	return m.Predict(q.State, q.FuelType, q.Month, q.Year)
}

// Coefficients returns the fitted weights in feature order.
func (m *Model) Coefficients() []Coefficient {
	out := make([]Coefficient, len(m.Coef))
	for i, c := range m.Coef {
		out[i] = Coefficient{Feature: m.Schema.Features[i], Value: c}
	}
	return out
}
