package commands

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/format"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/report"
)

func newReportCommand(g *globalFlags) *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Monthly summaries",
	}
	cmd.PersistentFlags().StringVar(&month, "month", "", "month as YYYY-MM (default current month)")

	cmd.AddCommand(
		newReportDashboardCommand(g, &month),
		newReportMonthCommand(g, &month),
		newReportCategoriesCommand(g, &month),
		newReportSeriesCommand(g, &month),
	)
	return cmd
}

// selectedMonth parses --month, defaulting to the current month.
func selectedMonth(s string) (int, time.Month, error) {
	if s == "" {
		now := time.Now()
		return now.Year(), now.Month(), nil
	}
	return format.ParseMonth(s)
}

func newReportDashboardCommand(g *globalFlags, month *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Income, expenses, balances and recent transactions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, m, err := selectedMonth(*month)
			if err != nil {
				return err
			}
			return withLedger(cmd, g, func(ctx context.Context, e *env, l *ledger.Ledger) error {
				n := limit
				if n <= 0 {
					n = e.cfg.Display.RecentLimit
				}
				cur := e.cfg.Display.Currency
				s := report.Dashboard(l.Accounts(), l.Transactions(), year, m, n)

				printTitle(e.out, "Resumen "+format.Month(s.Year, s.Month))
				printTable(e.out, []string{"Ingresos", "Gastos", "Neto", "Balance total"}, [][]string{{
					amountText(s.Income, cur, false),
					amountText(s.Expense, cur, false),
					amountText(s.Net, cur, true),
					amountText(s.TotalBalance, cur, false),
				}})

				printTitle(e.out, "Cuentas")
				var accounts [][]string
				for _, a := range s.Accounts {
					accounts = append(accounts, []string{a.Name, string(a.Type), amountText(a.Balance, cur, false)})
				}
				printTable(e.out, []string{"Name", "Type", "Balance"}, accounts)

				printTitle(e.out, "Recientes")
				printTable(e.out, []string{"ID", "Date", "Description", "Category", "Account", "Amount"},
					txRows(s.Recent, report.AccountNames(l.Accounts()), cur))
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "number of recent transactions (default from config)")
	return cmd
}

func newReportMonthCommand(g *globalFlags, month *string) *cobra.Command {
	return &cobra.Command{
		Use:   "month",
		Short: "Every transaction of the month with its account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, m, err := selectedMonth(*month)
			if err != nil {
				return err
			}
			return withLedger(cmd, g, func(ctx context.Context, e *env, l *ledger.Ledger) error {
				cur := e.cfg.Display.Currency
				var rows [][]string
				for _, r := range report.MonthReport(l.Accounts(), l.Transactions(), year, m) {
					rows = append(rows, []string{
						strconv.Itoa(r.Transaction.ID),
						format.Date(r.Transaction.Date),
						r.Transaction.Description,
						r.Transaction.Category,
						r.Transaction.Type.Label(),
						r.AccountName,
						amountText(r.Amount, cur, true),
					})
				}
				printTitle(e.out, format.Month(year, m))
				printTable(e.out, []string{"ID", "Date", "Description", "Category", "Type", "Account", "Amount"}, rows)
				return nil
			})
		},
	}
}

func newReportCategoriesCommand(g *globalFlags, month *string) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Expenses of the month by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, m, err := selectedMonth(*month)
			if err != nil {
				return err
			}
			return withLedger(cmd, g, func(ctx context.Context, e *env, l *ledger.Ledger) error {
				cur := e.cfg.Display.Currency
				totals := report.ExpensesByCategory(report.ByMonth(l.Transactions(), year, m))
				var rows [][]string
				for _, c := range totals {
					rows = append(rows, []string{c.Category, amountText(c.Amount, cur, false)})
				}
				printTitle(e.out, "Gastos por categoría "+format.Month(year, m))
				printTable(e.out, []string{"Category", "Amount"}, rows)
				return nil
			})
		},
	}
}

func newReportSeriesCommand(g *globalFlags, month *string) *cobra.Command {
	var count int

	cmd := &cobra.Command{
		Use:   "series",
		Short: "Income and expenses for the months ending at --month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			year, m, err := selectedMonth(*month)
			if err != nil {
				return err
			}
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}
			return withLedger(cmd, g, func(ctx context.Context, e *env, l *ledger.Ledger) error {
				cur := e.cfg.Display.Currency
				var rows [][]string
				for _, p := range report.MonthlySeries(l.Transactions(), year, m, count) {
					rows = append(rows, []string{
						format.Month(p.Year, p.Month),
						amountText(p.Income, cur, false),
						amountText(p.Expense, cur, false),
					})
				}
				printTable(e.out, []string{"Month", "Income", "Expense"}, rows)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&count, "count", 6, "number of months")
	return cmd
}
