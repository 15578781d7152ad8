package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/thenumber/internal/cli"
	"github.com/theirongolddev/thenumber/internal/model"
	"github.com/theirongolddev/thenumber/internal/service"
	"github.com/theirongolddev/thenumber/internal/tui"
	"github.com/theirongolddev/thenumber/internal/validate"
)

var (
	flagSetupMode   string
	flagSetupIncome string
	flagSetupDays   string
	flagSetupTotal  string
	flagSetupTarget string
	flagSetupLimit  string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Set or replace your budget plan",
	Long: "Without --mode, setup asks interactively. With --mode paycheck pass --income and --days;\n" +
		"with --mode fixed_pool pass --total and optionally --target or --limit.",
	Example: "  thenumber setup --mode paycheck --income 4000 --days 15\n" +
		"  thenumber setup --mode fixed_pool --total 10000 --target 2026-12-31",
	RunE: runSetup,
}

func init() {
	setupCmd.Flags().StringVar(&flagSetupMode, "mode", "", "paycheck or fixed_pool")
	setupCmd.Flags().StringVar(&flagSetupIncome, "income", "", "Monthly income (paycheck)")
	setupCmd.Flags().StringVar(&flagSetupDays, "days", "", "Days until next paycheck (paycheck)")
	setupCmd.Flags().StringVar(&flagSetupTotal, "total", "", "Total money (fixed_pool)")
	setupCmd.Flags().StringVar(&flagSetupTarget, "target", "", "Make the pool last until YYYY-MM-DD (fixed_pool)")
	setupCmd.Flags().StringVar(&flagSetupLimit, "limit", "", "Spend at most this per day (fixed_pool)")
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	var cfg model.Configuration
	if flagSetupMode == "" {
		current, err := e.svc.Configuration(cmd.Context())
		if err != nil && !errors.Is(err, service.ErrNotConfigured) {
			return err
		}
		cfg, err = tui.PromptConfiguration(current, e.loc)
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("  Setup canceled, nothing changed.")
			return nil
		}
		if err != nil {
			return err
		}
	} else {
		cfg, err = configurationFromFlags(e.loc)
		if err != nil {
			return err
		}
	}

	n, err := e.svc.Configure(cmd.Context(), cfg)
	if err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}

	fmt.Println()
	fmt.Print(cli.RenderNumber(n))
	fmt.Println()
	fmt.Print(cli.RenderTable(planTable(n, e.loc)))
	return nil
}

func configurationFromFlags(loc *time.Location) (model.Configuration, error) {
	cfg := model.Configuration{SetAt: time.Now()}

	switch model.Mode(flagSetupMode) {
	case model.ModePaycheck:
		income, err := validate.ParseAmount("income", flagSetupIncome)
		if err != nil {
			return cfg, err
		}
		days, err := validate.ParseDays("days", flagSetupDays)
		if err != nil {
			return cfg, err
		}
		cfg.Plan = model.PaycheckPlan{MonthlyIncome: income, DaysUntilPaycheck: days}

	case model.ModeFixedPool:
		total, err := validate.ParseAmount("total", flagSetupTotal)
		if err != nil {
			return cfg, err
		}
		var (
			target time.Time
			limit  float64
		)
		if flagSetupTarget != "" {
			if target, err = validate.ParseDate("target", flagSetupTarget, loc); err != nil {
				return cfg, err
			}
		}
		if flagSetupLimit != "" {
			if limit, err = validate.ParseAmount("limit", flagSetupLimit); err != nil {
				return cfg, err
			}
		}
		h, err := validate.Horizon(target, limit)
		if err != nil {
			return cfg, err
		}
		cfg.Plan = model.PoolPlan{TotalMoney: total, Horizon: h}

	default:
		return cfg, fmt.Errorf("unknown mode %q: use paycheck or fixed_pool", flagSetupMode)
	}

	return cfg, nil
}
