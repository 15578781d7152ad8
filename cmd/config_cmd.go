package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/thenumber/internal/cli"
	"github.com/theirongolddev/thenumber/internal/config"
	"github.com/theirongolddev/thenumber/internal/model"
	"github.com/theirongolddev/thenumber/internal/service"
	"github.com/theirongolddev/thenumber/internal/tui/theme"
)

var (
	flagConfigTheme    string
	flagConfigTimezone string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show settings and the current plan",
	RunE:  runConfig,
}

var configSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change preferences in config.toml",
	RunE:  runConfigSet,
}

func init() {
	configSetCmd.Flags().StringVar(&flagConfigTheme, "theme", "", "Dashboard theme")
	configSetCmd.Flags().StringVar(&flagConfigTimezone, "timezone", "", "IANA timezone, e.g. America/Denver")
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfig(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	fmt.Printf("  Config: %s\n", config.Path())
	fmt.Printf("  Key file: %s\n", config.KeyFilePath())
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Timezone: %s\n", e.loc)
	fmt.Printf("    Recent transactions: %d\n", e.cfg.General.RecentTransactions)
	fmt.Println()

	fmt.Println("  [Storage]")
	fmt.Printf("    Database: %s\n", e.cfg.DBPath())
	fmt.Println()

	fmt.Println("  [Daemon]")
	fmt.Printf("    Address: %s\n", e.cfg.Daemon.Addr)
	fmt.Printf("    Interval: %s\n", e.cfg.Interval())
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", e.cfg.Appearance.Theme)
	fmt.Println()

	plan, err := e.svc.Configuration(cmd.Context())
	if errors.Is(err, service.ErrNotConfigured) {
		printSetupHint()
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println("  [Plan]")
	fmt.Printf("    Set: %s\n", cli.FormatDateTime(plan.SetAt.In(e.loc)))
	switch p := plan.Plan.(type) {
	case model.PaycheckPlan:
		fmt.Println("    Mode: paycheck")
		fmt.Printf("    Monthly income: %s\n", cli.FormatMoney(p.MonthlyIncome))
		fmt.Printf("    Days until paycheck: %d\n", p.DaysUntilPaycheck)
	case model.PoolPlan:
		fmt.Println("    Mode: fixed pool")
		fmt.Printf("    Total money: %s\n", cli.FormatMoney(p.TotalMoney))
		switch h := model.HorizonOf(p).(type) {
		case model.TargetDate:
			fmt.Printf("    Last until: %s\n", cli.FormatDate(h.At.In(e.loc)))
		case model.DailyLimit:
			fmt.Printf("    Daily limit: %s\n", cli.FormatMoney(h.Amount))
		default:
			fmt.Println("    Horizon: based on expenses")
		}
	}
	fmt.Println()
	fmt.Println("  Run `thenumber setup` to change the plan.")
	return nil
}

func runConfigSet(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if flagConfigTheme != "" {
		if theme.ByName(flagConfigTheme).Name != flagConfigTheme {
			return fmt.Errorf("unknown theme %q (have %v)", flagConfigTheme, theme.Names())
		}
		cfg.Appearance.Theme = flagConfigTheme
	}
	if flagConfigTimezone != "" {
		cfg.General.Timezone = flagConfigTimezone
		if _, err := cfg.Location(); err != nil {
			return err
		}
	}

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Printf("  Saved to %s\n", config.Path())
	return nil
}
