package cmd

import (
	"fmt"
	"strconv"

	"github.com/lbermudezd2020/appgasolinabueno/internal/cli"
	"github.com/lbermudezd2020/appgasolinabueno/internal/pipeline"

	"github.com/spf13/cobra"
)

var flagHistoryYear int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Monthly price series of one state and fuel type",
	RunE:  runHistory,
}

func init() {
	addQueryFlags(historyCmd, true, false)
	historyCmd.Flags().IntVar(&flagHistoryYear, "year", 0, "Only show this year")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(c *cobra.Command, _ []string) error {
	_, res, err := loadShared()
	if err != nil {
		return err
	}
	q := resolveQuery(c, pipeline.BuildOptions(res.Table))

	points := res.Table.History(q.State, q.FuelType)
	if flagHistoryYear != 0 {
		points = pipeline.FilterByYear(points, flagHistoryYear)
	}
	if len(points) == 0 {
		fmt.Println()
		fmt.Println(cli.RenderWarning(fmt.Sprintf("No prices recorded for %s / %s.", q.State, q.FuelType)))
		fmt.Println()
		return nil
	}

	rows := make([][]string, 0, len(points))
	values := make([]float64, len(points))
	for i, p := range points {
		delta := ""
		if i > 0 {
			delta = cli.FormatDelta(p.Price.Sub(points[i-1].Price))
		}
		rows = append(rows, []string{strconv.Itoa(p.Year), cli.FormatMonthName(p.Month), cli.FormatPrice(p.Price), delta})
		values[i] = p.Price.InexactFloat64()
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("HISTORY  %s · %s", q.State, q.FuelType)))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers:  []string{"Year", "Month", "Price", "Change"},
		Rows:     rows,
		LeftCols: 2,
	}))
	fmt.Println()
	fmt.Printf("  %s\n", cli.RenderSparkline(values))

	s := pipeline.SummarizeHistory(points)
	fmt.Printf("  %s → %s  %s (%s)\n",
		cli.FormatPeriod(s.First.Year, s.First.Month),
		cli.FormatPeriod(s.Latest.Year, s.Latest.Month),
		cli.FormatDelta(s.Change), cli.FormatPercent(s.ChangeRatio()))

	years := pipeline.AggregateYears(points)
	if len(years) > 1 {
		yrows := make([][]string, 0, len(years))
		for _, y := range years {
			yrows = append(yrows, []string{
				strconv.Itoa(y.Year), strconv.Itoa(y.Points),
				cli.FormatPrice(y.Min), cli.FormatPrice(y.Mean), cli.FormatPrice(y.Max),
			})
		}
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "By year",
			Headers: []string{"Year", "Months", "Min", "Mean", "Max"},
			Rows:    yrows,
		}))
	}
	fmt.Println()
	return nil
}
