package cmd

import (
	"errors"
	"fmt"

	"github.com/lbermudezd2020/appgasolinabueno/internal/cli"
	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/pipeline"
	"github.com/lbermudezd2020/appgasolinabueno/internal/prices"

	"github.com/spf13/cobra"
)

// Query flags shared by price, history and ranking.
var (
	flagState string
	flagFuel  string
	flagYear  int
	flagMonth int
)

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price of one fuel type in one state and month",
	Example: "  gasolina price --state Jalisco --fuel magna --year 2023 --month 5\n" +
		"  gasolina price --mode estimate --state Sonora --fuel diesel --year 2025 --month 1",
	RunE: runPrice,
}

func init() {
	addQueryFlags(priceCmd, true, true)
	rootCmd.AddCommand(priceCmd)
}

func addQueryFlags(c *cobra.Command, withState, withPeriod bool) {
	if withState {
		c.Flags().StringVar(&flagState, "state", "", "State (default: the first in the table)")
	}
	c.Flags().StringVar(&flagFuel, "fuel", "", "Fuel type (default: the first in the table)")
	if withPeriod {
		c.Flags().IntVar(&flagYear, "year", 0, "Year (default: the latest in the table)")
		c.Flags().IntVar(&flagMonth, "month", 0, "Month 1-12 (default: 1)")
	}
}

// resolveQuery fills unset query flags from the table's default selection.
func resolveQuery(c *cobra.Command, opts pipeline.Options) model.Query {
	q := opts.DefaultQuery()
	flags := c.Flags()
	if flags.Changed("state") {
		q.State = flagState
	}
	if flags.Changed("fuel") {
		q.FuelType = flagFuel
	}
	if flags.Changed("year") {
		q.Year = flagYear
	}
	if flags.Changed("month") {
		q.Month = flagMonth
	}
	return q
}

func runPrice(c *cobra.Command, _ []string) error {
	shared, res, err := loadShared()
	if err != nil {
		return err
	}
	q := resolveQuery(c, pipeline.BuildOptions(res.Table))

	result, err := shared.Evaluate(q)
	switch {
	case errors.Is(err, prices.ErrNoMatch):
		fmt.Println()
		fmt.Println(cli.RenderWarning("No data for the selected combination: " + q.String()))
		fmt.Println("  Try another month, or --mode estimate for a model price.")
		fmt.Println()
		return nil
	case err != nil:
		return err
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s · %s · %s", q.State, q.FuelType, cli.FormatPeriod(q.Year, q.Month))))
	fmt.Println()
	printResult(result)
	fmt.Println()
	return nil
}

func printResult(r pipeline.Result) {
	if est, ok := r.EstimateDecimal(); ok {
		fmt.Println(cli.RenderPrice("Estimate", cli.FormatMXN(est), true))
		if r.Observed.Valid {
			fmt.Println(cli.RenderPrice("Stored  ", cli.FormatMXN(r.Observed.Decimal), false))
		}
	} else {
		fmt.Println(cli.RenderPrice("Price", cli.FormatMXN(r.Observed.Decimal), false))
	}

	s := r.Stats
	if s.Points == 0 {
		return
	}
	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Latest", cli.FormatPrice(s.Latest.Price) + " (" + cli.FormatPeriod(s.Latest.Year, s.Latest.Month) + ")"},
		{"Range", cli.FormatPrice(s.Min) + " - " + cli.FormatPrice(s.Max)},
		{"Mean", cli.FormatPrice(s.Mean)},
		{"Change", cli.FormatDelta(s.Change) + " (" + cli.FormatPercent(s.ChangeRatio()) + ")"},
		{"Months", cli.FormatNumber(int64(s.Points))},
	}))
}
