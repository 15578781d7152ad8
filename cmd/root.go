package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/thenumber/internal/cli"
	"github.com/theirongolddev/thenumber/internal/config"
	"github.com/theirongolddev/thenumber/internal/crypto"
	"github.com/theirongolddev/thenumber/internal/model"
	"github.com/theirongolddev/thenumber/internal/service"
	"github.com/theirongolddev/thenumber/internal/store"
)

var (
	flagDBPath   string
	flagTimezone string
	flagVerbose  bool
)

var rootCmd = &cobra.Command{
	Use:           "thenumber",
	Short:         "How much you can spend today",
	Long:          "Turn your income, expenses and spending into one number: what you can spend today.",
	RunE:          runNumber,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "  Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Ledger database path (default from config)")
	rootCmd.PersistentFlags().StringVar(&flagTimezone, "tz", "", "Timezone for \"today\" (default from config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Debug logging on stderr")
}

// env is what every ledger-touching command works with.
type env struct {
	cfg   config.Config
	log   *logrus.Logger
	loc   *time.Location
	store *store.Store
	svc   *service.Service
}

func (e *env) Close() {
	if err := e.store.Close(); err != nil {
		e.log.WithError(err).Warn("closing ledger")
	}
}

// loadConfig reads the config file and applies the global flags.
func loadConfig() (config.Config, *logrus.Logger) {
	cfg, err := config.Load()
	log := newLogger(cfg.Log.Level, flagVerbose)
	if err != nil {
		log.WithError(err).Warn("using default config")
	}

	if flagDBPath != "" {
		cfg.Storage.DBPath = flagDBPath
	}
	if flagTimezone != "" {
		cfg.General.Timezone = flagTimezone
	}
	return cfg, log
}

func newLogger(level string, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.WarnLevel
	}
	if verbose {
		lvl = logrus.DebugLevel
	}
	log.SetLevel(lvl)
	return log
}

// openEnv opens the ledger, generating the settings key on first use.
func openEnv(ctx context.Context) (*env, error) {
	cfg, log := loadConfig()

	loc, err := cfg.Location()
	if err != nil {
		log.WithError(err).Warn("falling back to UTC")
	}

	key, err := config.EnsureKey(crypto.GenerateKey)
	if err != nil {
		return nil, fmt.Errorf("loading settings key: %w", err)
	}
	sealer, err := crypto.NewSealer(key)
	if err != nil {
		return nil, fmt.Errorf("loading settings key: %w", err)
	}

	st, err := store.Open(ctx, cfg.DBPath(), sealer)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	log.WithField("db", cfg.DBPath()).Debug("ledger open")

	return &env{
		cfg:   cfg,
		log:   log,
		loc:   loc,
		store: st,
		svc:   service.New(st, service.Options{Location: loc, Logger: log}),
	}, nil
}

func runNumber(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	n, err := e.svc.Number(cmd.Context())
	if errors.Is(err, service.ErrNotConfigured) {
		printSetupHint()
		return nil
	}
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Print(cli.RenderNumber(n))
	fmt.Printf("  %s\n\n", cli.RenderProgressBar(n.TodaySpending, n.TheNumber, 30))
	fmt.Print(cli.RenderTable(planTable(n, e.loc)))
	return nil
}

func printSetupHint() {
	fmt.Println()
	fmt.Println("  No budget yet. Run `thenumber setup` to create one.")
	fmt.Println()
}

// planTable lists the figures behind the number for the active mode.
func planTable(n model.BudgetNumber, loc *time.Location) cli.Table {
	rows := [][]string{}
	switch n.Mode {
	case model.ModePaycheck:
		rows = append(rows,
			[]string{"Monthly income", cli.FormatMoney(n.TotalIncome)},
			[]string{"Monthly expenses", cli.FormatMoney(n.TotalExpenses)},
			[]string{"Left this period", cli.FormatMoney(n.RemainingMoney)},
			[]string{"Days to paycheck", cli.FormatDays(n.DaysRemaining)},
			cli.Separator,
			[]string{"Original daily", cli.FormatMoney(n.OriginalDailyBudget)},
			[]string{"Adjusted daily", cli.FormatMoney(n.AdjustedDailyBudget)},
			[]string{"Tomorrow", cli.FormatMoney(n.TomorrowDailyBudget)},
		)
		if n.Deficit > 0 {
			rows = append(rows, []string{"Deficit", cli.FormatMoney(n.Deficit)})
		}
	case model.ModeFixedPool:
		rows = append(rows,
			[]string{"Pool", cli.FormatMoney(n.TotalMoney)},
			[]string{"Remaining", cli.FormatMoney(n.RemainingMoney)},
			[]string{"Monthly expenses", cli.FormatMoney(n.TotalExpenses)},
			[]string{"Horizon", string(n.HorizonKind)},
			[]string{"Days left", cli.FormatDays(n.DaysRemaining)},
		)
		if n.WillLastDays > 0 {
			rows = append(rows, []string{"Will last", cli.FormatDays(n.WillLastDays)})
		}
		if !n.DepletionDate.IsZero() {
			rows = append(rows, []string{"Runs out", cli.FormatDate(n.DepletionDate.In(loc))})
		}
		rows = append(rows,
			cli.Separator,
			[]string{"Tomorrow", cli.FormatMoney(n.TomorrowDailyBudget)},
		)
	}
	return cli.Table{Title: "Plan", Rows: rows}
}

// printUpdated shows the refreshed number after a write, when there is one.
func printUpdated(n *model.BudgetNumber) {
	if n == nil {
		return
	}
	fmt.Println()
	fmt.Print(cli.RenderNumber(*n))
}
