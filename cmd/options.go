package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lbermudezd2020/appgasolinabueno/internal/cli"
	"github.com/lbermudezd2020/appgasolinabueno/internal/pipeline"

	"github.com/spf13/cobra"
)

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "States, fuel types and years available in the source",
	RunE:  runOptions,
}

func init() {
	rootCmd.AddCommand(optionsCmd)
}

func runOptions(_ *cobra.Command, _ []string) error {
	_, res, err := loadShared()
	if err != nil {
		return err
	}
	opts := pipeline.BuildOptions(res.Table)
	if opts.Empty() {
		fmt.Println()
		fmt.Println(cli.RenderWarning("The price table has no rows."))
		fmt.Println()
		return nil
	}

	years := make([]string, len(opts.Years))
	for i, y := range opts.Years {
		years[i] = strconv.Itoa(y)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("OPTIONS  " + res.Table.Path()))
	fmt.Println()
	fmt.Print(cli.RenderKV([][2]string{
		{"Mode", string(res.Mode)},
		{"Rows", cli.FormatNumber(int64(res.Table.Len()))},
		{"Dropped", cli.FormatNumber(int64(res.Table.Dropped()))},
		{"Fuel types", strings.Join(opts.FuelTypes, ", ")},
		{"Years", fmt.Sprintf("%d-%d (%s)", opts.MinYear, opts.MaxYear, strings.Join(years, ", "))},
		{"Default", opts.DefaultQuery().String()},
	}))
	fmt.Println()

	rows := make([][]string, len(opts.States))
	for i, s := range opts.States {
		rows[i] = []string{strconv.Itoa(i + 1), s}
	}
	fmt.Print(cli.RenderTable(cli.Table{
		Title:    fmt.Sprintf("States (%d)", len(opts.States)),
		Headers:  []string{"#", "State"},
		Rows:     rows,
		LeftCols: 2,
	}))
	fmt.Println()
	return nil
}
