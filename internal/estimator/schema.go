// Package estimator fits an ordinary least squares price model over one-hot
// state and fuel dummies plus numeric month and year.
package estimator

import (
	"sort"

	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
)

// Feature name prefixes and numeric columns, in design matrix order.
const (
	StatePrefix  = "estado_"
	FuelPrefix   = "tipo_combustible_"
	FeatureMonth = "mes"
	FeatureYear  = "anio"
)

// Schema is the fixed feature layout learned at fit time. Every encode
// reuses it, so prediction columns always match training columns.
type Schema struct {
	// States and FuelTypes are the sorted category levels seen at fit time.
	// The first level of each is the reference category and has no column.
	States    []string
	FuelTypes []string
	// Features is the ordered column list of the design matrix.
	Features []string

	index map[string]int
}

// NewSchema derives the category levels and feature order from records.
func NewSchema(records []model.PriceRecord) *Schema {
	states := levels(records, func(r model.PriceRecord) string { return r.State })
	fuels := levels(records, func(r model.PriceRecord) string { return r.FuelType })

	s := &Schema{States: states, FuelTypes: fuels}
	for _, v := range dropFirst(states) {
		s.Features = append(s.Features, StatePrefix+v)
	}
	for _, v := range dropFirst(fuels) {
		s.Features = append(s.Features, FuelPrefix+v)
	}
	s.Features = append(s.Features, FeatureMonth, FeatureYear)

	s.index = make(map[string]int, len(s.Features))
	for i, f := range s.Features {
		s.index[f] = i
	}
	return s
}

// Width returns the number of feature columns.
func (s *Schema) Width() int { return len(s.Features) }

// Encode writes the feature row for one observation into dst, which must
// have length Width. Unseen categories and reference levels leave their
// dummies at zero.
func (s *Schema) Encode(dst []float64, state, fuel string, month, year int) {
	for i := range dst {
		dst[i] = 0
	}
	if i, ok := s.index[StatePrefix+state]; ok {
		dst[i] = 1
	}
	if i, ok := s.index[FuelPrefix+fuel]; ok {
		dst[i] = 1
	}
	dst[s.index[FeatureMonth]] = float64(month)
	dst[s.index[FeatureYear]] = float64(year)
}

// Row returns a freshly allocated feature row.
func (s *Schema) Row(state, fuel string, month, year int) []float64 {
	row := make([]float64, s.Width())
	s.Encode(row, state, fuel, month, year)
	return row
}

// Reference returns the baseline state and fuel type.
func (s *Schema) Reference() (state, fuel string) {
	if len(s.States) > 0 {
		state = s.States[0]
	}
	if len(s.FuelTypes) > 0 {
		fuel = s.FuelTypes[0]
	}
	return state, fuel
}

// Known reports whether the state and fuel type were seen at fit time.
func (s *Schema) Known(state, fuel string) (stateOK, fuelOK bool) {
	return contains(s.States, state), contains(s.FuelTypes, fuel)
}

func levels(records []model.PriceRecord, key func(model.PriceRecord) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range records {
		k := key(r)
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func dropFirst(levels []string) []string {
	if len(levels) == 0 {
		return nil
	}
	return levels[1:]
}

func contains(sorted []string, v string) bool {
	i := sort.SearchStrings(sorted, v)
	return i < len(sorted) && sorted[i] == v
}
