package cmd

import (
	"fmt"
	"strings"

	"github.com/lbermudezd2020/appgasolinabueno/internal/cli"
	"github.com/lbermudezd2020/appgasolinabueno/internal/estimator"
	"github.com/lbermudezd2020/appgasolinabueno/internal/model"
	"github.com/lbermudezd2020/appgasolinabueno/internal/pipeline"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

const rankingBarWidth = 30

var rankingCmd = &cobra.Command{
	Use:   "ranking",
	Short: "States ordered by price for one fuel type and month",
	RunE:  runRanking,
}

func init() {
	addQueryFlags(rankingCmd, false, true)
	rootCmd.AddCommand(rankingCmd)
}

func runRanking(c *cobra.Command, _ []string) error {
	shared, res, err := loadShared()
	if err != nil {
		return err
	}
	q := resolveQuery(c, pipeline.BuildOptions(res.Table))

	var m *estimator.Model
	if shared.Mode() == model.ModeEstimate {
		if m, err = shared.Model(); err != nil {
			return err
		}
	}
	ranked := pipeline.RankStates(res.Table, m, q.FuelType, q.Year, q.Month)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("RANKING  %s · %s", q.FuelType, cli.FormatPeriod(q.Year, q.Month))))
	fmt.Println()
	if len(ranked) == 0 {
		fmt.Println(cli.RenderWarning("No state has a price for this fuel type and month."))
		fmt.Println()
		return nil
	}

	nameW := 0
	for _, sp := range ranked {
		nameW = max(nameW, lipgloss.Width(sp.State))
	}
	hi := ranked[0].Price.InexactFloat64()
	lo := ranked[len(ranked)-1].Price.InexactFloat64()

	for i, sp := range ranked {
		label := fmt.Sprintf("%2d %s%s", i+1, sp.State, strings.Repeat(" ", nameW-lipgloss.Width(sp.State)))
		note := ""
		if !sp.Observed {
			note = "  (est)"
		}
		bar := cli.RenderHorizontalBar(label, sp.Price.InexactFloat64(), lo, hi, rankingBarWidth)
		pad := strings.Repeat(" ", max(0, lipgloss.Width(label)+rankingBarWidth+3-lipgloss.Width(bar)))
		fmt.Printf("%s%s  %s%s\n", bar, pad, cli.FormatPrice(sp.Price), note)
	}
	fmt.Println()
	return nil
}
