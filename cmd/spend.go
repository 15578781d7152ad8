package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/thenumber/internal/cli"
	"github.com/theirongolddev/thenumber/internal/model"
	"github.com/theirongolddev/thenumber/internal/tui"
	"github.com/theirongolddev/thenumber/internal/validate"
)

var flagSpendCategory string

var spendCmd = &cobra.Command{
	Use:     "spend [AMOUNT DESCRIPTION...]",
	Short:   "Log money spent today",
	Example: "  thenumber spend 12.50 lunch with Sam -c food",
	RunE:    runSpend,
}

var incomeCmd = &cobra.Command{
	Use:     "income [AMOUNT DESCRIPTION...]",
	Short:   "Log money received today",
	Example: "  thenumber income 200 sold the old bike",
	RunE:    runIncome,
}

func init() {
	spendCmd.Flags().StringVarP(&flagSpendCategory, "category", "c", "", "Category label")
	rootCmd.AddCommand(spendCmd, incomeCmd)
}

func runSpend(cmd *cobra.Command, args []string) error {
	return logTransaction(cmd, args, false)
}

func runIncome(cmd *cobra.Command, args []string) error {
	return logTransaction(cmd, args, true)
}

func logTransaction(cmd *cobra.Command, args []string, income bool) error {
	var (
		txn model.Transaction
		err error
	)
	switch {
	case len(args) == 0:
		txn, err = tui.PromptTransaction(income)
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
	case len(args) == 1:
		return errors.New("a description is required after the amount")
	default:
		var amount float64
		amount, err = validate.ParseAmount("amount", args[0])
		txn = model.Transaction{
			Amount:      amount,
			Description: strings.Join(args[1:], " "),
			Category:    flagSpendCategory,
		}
	}
	if err != nil {
		return err
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	var n *model.BudgetNumber
	if income {
		txn, n, err = e.svc.Receive(cmd.Context(), txn)
	} else {
		txn, n, err = e.svc.Spend(cmd.Context(), txn)
	}
	if err != nil {
		return fmt.Errorf("logging transaction: %w", err)
	}

	verb := "Spent"
	if income {
		verb = "Received"
	}
	fmt.Printf("  %s %s on %s  id %s\n", verb, cli.FormatMoney(txn.Amount), txn.Description, cli.ShortID(txn.ID))
	printUpdated(n)
	return nil
}
