package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/thenumber/internal/cli"
	"github.com/theirongolddev/thenumber/internal/ledger"
	"github.com/theirongolddev/thenumber/internal/model"
)

var flagTxnLimit int

var txnCmd = &cobra.Command{
	Use:     "txn",
	Aliases: []string{"transactions"},
	Short:   "List or remove logged transactions",
	RunE:    runTxnList,
}

var txnListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "Recent transactions, newest first",
	RunE:    runTxnList,
}

var txnRmCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"remove"},
	Short:   "Remove a transaction (an ID prefix is enough)",
	Args:    cobra.ExactArgs(1),
	RunE:    runTxnRm,
}

func init() {
	txnCmd.PersistentFlags().IntVarP(&flagTxnLimit, "limit", "n", 0, "How many to show (default from config)")
	txnCmd.AddCommand(txnListCmd, txnRmCmd)
	rootCmd.AddCommand(txnCmd)
}

func runTxnList(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	limit := flagTxnLimit
	if limit <= 0 {
		limit = e.cfg.General.RecentTransactions
	}
	txns, err := e.svc.RecentTransactions(cmd.Context(), limit)
	if err != nil {
		return err
	}
	if len(txns) == 0 {
		fmt.Println("\n  No transactions yet. Log one with `thenumber spend AMOUNT DESCRIPTION`.")
		return nil
	}

	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		amount := cli.FormatMoney(t.Amount)
		if ledger.IsIncome(t) {
			amount = "+" + amount
		}
		rows = append(rows, []string{
			cli.ShortID(t.ID),
			cli.FormatDateTime(t.Date.In(e.loc)),
			t.Description,
			t.Category,
			amount,
		})
	}

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   fmt.Sprintf("Last %d transactions", len(txns)),
		Headers: []string{"ID", "When", "Description", "Category", "Amount"},
		Rows:    rows,
	}))
	return nil
}

func runTxnRm(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	all, err := e.svc.RecentTransactions(cmd.Context(), 0)
	if err != nil {
		return err
	}

	var match []model.Transaction
	for _, t := range all {
		if t.ID == args[0] {
			match = []model.Transaction{t}
			break
		}
		if strings.HasPrefix(t.ID, args[0]) {
			match = append(match, t)
		}
	}
	switch len(match) {
	case 0:
		return fmt.Errorf("no transaction with id %q", args[0])
	case 1:
	default:
		return fmt.Errorf("id %q matches %d transactions, use more characters", args[0], len(match))
	}

	n, err := e.svc.RemoveTransaction(cmd.Context(), match[0].ID)
	if err != nil {
		return fmt.Errorf("removing transaction: %w", err)
	}

	fmt.Printf("  Removed %s (%s)\n", match[0].Description, cli.FormatMoney(match[0].Amount))
	printUpdated(n)
	return nil
}
