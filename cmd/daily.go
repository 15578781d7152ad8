package cmd

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/thenumber/internal/cli"
	"github.com/theirongolddev/thenumber/internal/service"
)

var flagDailyDays int

var dailyCmd = &cobra.Command{
	Use:   "daily",
	Short: "Spending per day since the plan was set",
	RunE:  runDaily,
}

func init() {
	dailyCmd.Flags().IntVarP(&flagDailyDays, "days", "n", 14, "How many days to show (0 for all)")
	rootCmd.AddCommand(dailyCmd)
}

func runDaily(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	days, err := e.svc.History(cmd.Context(), flagDailyDays)
	if errors.Is(err, service.ErrNotConfigured) {
		printSetupHint()
		return nil
	}
	if err != nil {
		return err
	}

	number := 0.0
	if n, ok := e.svc.Latest(); ok {
		number = n.TheNumber
	} else if n, err := e.svc.Number(cmd.Context()); err == nil {
		number = n.TheNumber
	}

	rows := make([][]string, 0, len(days))
	nets := make([]float64, 0, len(days))
	for _, d := range days {
		mark := ""
		if number > 0 && d.Net > number {
			mark = "over"
		}
		rows = append(rows, []string{
			d.Date.Format("2006-01-02"),
			cli.FormatDayOfWeek(int(d.Date.Weekday())),
			fmt.Sprintf("%d", d.Count),
			cli.FormatMoney(d.Spent),
			cli.FormatMoney(d.Received),
			cli.FormatSignedMoney(d.Net),
			mark,
		})
		nets = append(nets, d.Net)
	}
	// days arrive newest first; the sparkline reads left to right.
	slices.Reverse(nets)

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("DAILY SPENDING  Last %d days", len(days))))
	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Headers: []string{"Date", "Day", "Txns", "Spent", "Received", "Net", ""},
		Rows:    rows,
	}))
	fmt.Printf("\n  Trend  %s\n", cli.RenderSparkline(nets))
	if number > 0 {
		fmt.Printf("  Number %s per day\n", cli.FormatMoney(number))
	}
	return nil
}
