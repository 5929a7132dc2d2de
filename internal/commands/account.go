package commands

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/auditlog"
	"github.com/cleared-dev/tally/internal/id"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
)

func newAccountCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}
	cmd.AddCommand(
		newAccountAddCommand(g),
		newAccountListCommand(g),
		newAccountDeleteCommand(g),
	)
	return cmd
}

func newAccountAddCommand(g *globalFlags) *cobra.Command {
	var name, typ, balance string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(balance)
			if err != nil {
				return err
			}
			return withLedger(cmd, g, func(ctx context.Context, e *env, l *ledger.Ledger) error {
				a, err := l.AddAccount(ctx, ledger.NewAccount{
					Name:    name,
					Type:    model.AccountType(typ),
					Balance: amount,
				})
				if err != nil {
					return err
				}
				e.audit(l.User().Username, auditlog.ActionAccountAdd,
					fmt.Sprintf("%s (%s)", a.Name, a.Type), id.AccountRef(a.ID))
				printSuccess(e.out, fmt.Sprintf("Account %d created: %s %s",
					a.ID, a.Name, amountText(a.Balance, e.cfg.Display.Currency, false)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "account name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&typ, "type", string(model.AccountTypeChecking), "checking, savings, credit, cash or investment")
	cmd.Flags().StringVar(&balance, "balance", "0", "opening balance")

	return cmd
}

func newAccountListCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with their balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, g, func(ctx context.Context, e *env, l *ledger.Ledger) error {
				cur := e.cfg.Display.Currency
				var rows [][]string
				for _, a := range l.Accounts() {
					rows = append(rows, []string{
						strconv.Itoa(a.ID),
						a.Name,
						string(a.Type),
						amountText(a.Balance, cur, false),
					})
				}
				printTable(e.out, []string{"ID", "Name", "Type", "Balance"}, rows)
				printInfof(e.out, "Total: %s", amountText(l.TotalBalance(), cur, false))
				return nil
			})
		},
	}
}

func newAccountDeleteCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an account with no transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			accountID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLedger(cmd, g, func(ctx context.Context, e *env, l *ledger.Ledger) error {
				a, _ := l.Account(accountID)
				if err := l.DeleteAccount(ctx, accountID); err != nil {
					return err
				}
				e.audit(l.User().Username, auditlog.ActionAccountDelete, a.Name, id.AccountRef(accountID))
				printSuccess(e.out, fmt.Sprintf("Account %d deleted", accountID))
				return nil
			})
		},
	}
}

func parseID(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return n, nil
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q", s)
	}
	return d, nil
}
