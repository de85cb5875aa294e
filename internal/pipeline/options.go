package pipeline

import (
	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/prices"
)

// Options are the selectable filter values of a table.
type Options struct {
	States    []string `json:"states"`
	FuelTypes []string `json:"fuel_types"`
	Years     []int    `json:"years"`
	Months    []int    `json:"months"`
	MinYear   int      `json:"min_year"`
	MaxYear   int      `json:"max_year"`
}

// BuildOptions collects the distinct states, fuel types and years.
// Months are always 1-12, including ones absent from the data.
func BuildOptions(t *prices.Table) Options {
	o := Options{
		States:    t.States(),
		FuelTypes: t.FuelTypes(),
		Years:     t.Years(),
		Months:    make([]int, 12),
	}
	for i := range o.Months {
		o.Months[i] = i + 1
	}
	if lo, hi, ok := t.YearRange(); ok {
		o.MinYear, o.MaxYear = lo, hi
	}
	return o
}

// Empty reports whether there is nothing to select.
func (o Options) Empty() bool {
	return len(o.States) == 0 || len(o.FuelTypes) == 0
}

// DefaultQuery selects the first state and fuel type, the latest year and
// January.
func (o Options) DefaultQuery() model.Query {
	q := model.Query{Year: o.MaxYear, Month: 1}
	if len(o.States) > 0 {
		q.State = o.States[0]
	}
	if len(o.FuelTypes) > 0 {
		q.FuelType = o.FuelTypes[0]
	}
	return q
}
