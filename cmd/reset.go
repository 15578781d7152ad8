package cmd

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var (
	flagResetExpenses bool
	flagResetYes      bool
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Forget the budget plan",
	Long:  "Clears the plan so `thenumber setup` starts fresh. Transactions are kept.",
	RunE:  runReset,
}

func init() {
	resetCmd.Flags().BoolVar(&flagResetExpenses, "expenses", false, "Also delete all monthly expenses")
	resetCmd.Flags().BoolVarP(&flagResetYes, "yes", "y", false, "Don't ask for confirmation")
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, _ []string) error {
	if !flagResetYes {
		confirmed := false
		title := "Clear the budget plan?"
		if flagResetExpenses {
			title = "Clear the budget plan and all expenses?"
		}
		err := huh.NewConfirm().
			Title(title).
			Affirmative("Clear").
			Negative("Keep").
			Value(&confirmed).
			Run()
		if err != nil || !confirmed {
			fmt.Println("  Nothing changed.")
			return nil
		}
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.svc.Reset(cmd.Context(), flagResetExpenses); err != nil {
		return fmt.Errorf("resetting: %w", err)
	}

	fmt.Println("  Plan cleared. Run `thenumber setup` to start again.")
	return nil
}
