package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/theirongolddev/thenumber/internal/cli"
	"github.com/theirongolddev/thenumber/internal/model"
	"github.com/theirongolddev/thenumber/internal/service"
	"github.com/theirongolddev/thenumber/internal/tui"
	"github.com/theirongolddev/thenumber/internal/validate"
)

var (
	flagExpenseFixed  bool
	flagExpenseName   string
	flagExpenseAmount string
)

var expenseCmd = &cobra.Command{
	Use:     "expense",
	Aliases: []string{"expenses"},
	Short:   "Manage monthly expenses",
	RunE:    runExpenseList,
}

var expenseAddCmd = &cobra.Command{
	Use:     "add [NAME AMOUNT]",
	Short:   "Add a monthly expense",
	Example: "  thenumber expense add Rent 1500 --fixed",
	Args:    cobra.RangeArgs(0, 2),
	RunE:    runExpenseAdd,
}

var expenseListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List monthly expenses",
	RunE:    runExpenseList,
}

var expenseRmCmd = &cobra.Command{
	Use:     "rm ID",
	Aliases: []string{"remove"},
	Short:   "Remove an expense (an ID prefix is enough)",
	Args:    cobra.ExactArgs(1),
	RunE:    runExpenseRm,
}

var expenseEditCmd = &cobra.Command{
	Use:     "edit ID",
	Short:   "Change an expense's name, amount or fixed flag",
	Example: "  thenumber expense edit 0b7c --amount 1550\n  thenumber expense edit 0b7c --fixed=false",
	Args:    cobra.ExactArgs(1),
	RunE:    runExpenseEdit,
}

func init() {
	expenseAddCmd.Flags().BoolVar(&flagExpenseFixed, "fixed", false, "Mark as a fixed cost")

	expenseEditCmd.Flags().StringVar(&flagExpenseName, "name", "", "New name")
	expenseEditCmd.Flags().StringVar(&flagExpenseAmount, "amount", "", "New monthly amount")
	expenseEditCmd.Flags().BoolVar(&flagExpenseFixed, "fixed", false, "Fixed cost")

	expenseCmd.AddCommand(expenseAddCmd, expenseListCmd, expenseRmCmd, expenseEditCmd)
	rootCmd.AddCommand(expenseCmd)
}

func runExpenseAdd(cmd *cobra.Command, args []string) error {
	var (
		exp model.Expense
		err error
	)
	switch len(args) {
	case 0:
		exp, err = tui.PromptExpense()
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
	case 2:
		var amount float64
		amount, err = validate.ParseAmount("amount", args[1])
		exp = model.Expense{Name: args[0], Amount: amount, IsFixed: flagExpenseFixed}
	default:
		return errors.New("expense add takes a name and an amount")
	}
	if err != nil {
		return err
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	exp, n, err := e.svc.AddExpense(cmd.Context(), exp)
	if err != nil {
		return fmt.Errorf("adding expense: %w", err)
	}

	fmt.Printf("  Added %s (%s/month)  id %s\n", exp.Name, cli.FormatMoney(exp.Amount), cli.ShortID(exp.ID))
	printUpdated(n)
	return nil
}

func runExpenseList(cmd *cobra.Command, _ []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	expenses, err := e.svc.ListExpenses(cmd.Context())
	if err != nil {
		return err
	}
	if len(expenses) == 0 {
		fmt.Println("\n  No expenses. Add one with `thenumber expense add NAME AMOUNT`.")
		return nil
	}

	var fixed, variable float64
	rows := make([][]string, 0, len(expenses)+3)
	for _, x := range expenses {
		kind := "variable"
		if x.IsFixed {
			kind = "fixed"
			fixed += x.Amount
		} else {
			variable += x.Amount
		}
		rows = append(rows, []string{cli.ShortID(x.ID), x.Name, kind, cli.FormatMoney(x.Amount)})
	}
	rows = append(rows,
		cli.Separator,
		[]string{"", "Fixed", "", cli.FormatMoney(fixed)},
		[]string{"", "Variable", "", cli.FormatMoney(variable)},
		[]string{"", "Total", "", cli.FormatMoney(fixed + variable)},
	)

	fmt.Println()
	fmt.Print(cli.RenderTable(cli.Table{
		Title:   "Monthly expenses",
		Headers: []string{"ID", "Name", "Kind", "Amount"},
		Rows:    rows,
	}))
	return nil
}

func runExpenseRm(cmd *cobra.Command, args []string) error {
	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	exp, err := findExpense(cmd.Context(), e.svc, args[0])
	if err != nil {
		return err
	}
	n, err := e.svc.RemoveExpense(cmd.Context(), exp.ID)
	if err != nil {
		return fmt.Errorf("removing expense: %w", err)
	}

	fmt.Printf("  Removed %s\n", exp.Name)
	printUpdated(n)
	return nil
}

func runExpenseEdit(cmd *cobra.Command, args []string) error {
	var patch model.ExpensePatch
	if cmd.Flags().Changed("name") {
		patch.Name = &flagExpenseName
	}
	if cmd.Flags().Changed("amount") {
		amount, err := validate.ParseAmount("amount", flagExpenseAmount)
		if err != nil {
			return err
		}
		patch.Amount = &amount
	}
	if cmd.Flags().Changed("fixed") {
		patch.IsFixed = &flagExpenseFixed
	}

	e, err := openEnv(cmd.Context())
	if err != nil {
		return err
	}
	defer e.Close()

	exp, err := findExpense(cmd.Context(), e.svc, args[0])
	if err != nil {
		return err
	}
	exp, n, err := e.svc.UpdateExpense(cmd.Context(), exp.ID, patch)
	if err != nil {
		return fmt.Errorf("updating expense: %w", err)
	}

	fmt.Printf("  Updated %s (%s/month)\n", exp.Name, cli.FormatMoney(exp.Amount))
	printUpdated(n)
	return nil
}

// findExpense resolves a full ID or a unique ID prefix.
func findExpense(ctx context.Context, svc *service.Service, id string) (model.Expense, error) {
	expenses, err := svc.ListExpenses(ctx)
	if err != nil {
		return model.Expense{}, err
	}

	var match []model.Expense
	for _, x := range expenses {
		if x.ID == id {
			return x, nil
		}
		if strings.HasPrefix(x.ID, id) {
			match = append(match, x)
		}
	}
	switch len(match) {
	case 0:
		return model.Expense{}, fmt.Errorf("no expense with id %q", id)
	case 1:
		return match[0], nil
	default:
		return model.Expense{}, fmt.Errorf("id %q matches %d expenses, use more characters", id, len(match))
	}
}
