package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cleared-dev/tally/internal/auditlog"
	"github.com/cleared-dev/tally/internal/format"
	"github.com/cleared-dev/tally/internal/id"
	"github.com/cleared-dev/tally/internal/importer"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/report"
)

func newTxCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tx",
		Aliases: []string{"transaction"},
		Short:   "Manage income and expense transactions",
	}
	cmd.AddCommand(
		newTxAddCommand(g),
		newTxListCommand(g),
		newTxDeleteCommand(g),
		newTxImportCommand(g),
	)
	return cmd
}

func newTxAddCommand(g *globalFlags) *cobra.Command {
	var date, desc, category, typ, amount string
	var accountID int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an income or expense",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day := model.Today()
			if date != "" {
				d, err := model.ParseDate(date)
				if err != nil {
					return err
				}
				day = d
			}
			amt, err := parseAmount(amount)
			if err != nil {
				return err
			}
			return withLedger(cmd, g, func(ctx context.Context, e *env, l *ledger.Ledger) error {
				t, err := l.AddTransaction(ctx, ledger.NewTransaction{
					Date:        day,
					Description: desc,
					Category:    category,
					Type:        model.TransactionType(typ),
					Amount:      amt,
					AccountID:   accountID,
				})
				if err != nil {
					return err
				}
				e.audit(l.User().Username, auditlog.ActionTxAdd,
					fmt.Sprintf("%s %s %s", t.Type, t.Amount, t.Description), id.TransactionRef(t.ID))
				printSuccess(e.out, fmt.Sprintf("Transaction %d recorded: %s %s",
					t.ID, t.Type.Label(), amountText(report.Signed(t), e.cfg.Display.Currency, true)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&desc, "desc", "", "description")
	cmd.Flags().StringVar(&category, "category", "", "category (required)")
	_ = cmd.MarkFlagRequired("category")
	cmd.Flags().StringVar(&typ, "type", string(model.TypeExpense), "income or expense")
	cmd.Flags().StringVar(&amount, "amount", "", "amount, positive (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().IntVar(&accountID, "account", 0, "account id (required)")
	_ = cmd.MarkFlagRequired("account")

	return cmd
}

func newTxListCommand(g *globalFlags) *cobra.Command {
	var f report.Filter
	var typ string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Type = model.TransactionType(typ)
			for _, d := range []string{f.DateFrom, f.DateTo} {
				if d == "" {
					continue
				}
				if _, err := model.ParseDate(d); err != nil {
					return err
				}
			}
			return withLedger(cmd, g, func(ctx context.Context, e *env, l *ledger.Ledger) error {
				names := report.AccountNames(l.Accounts())
				txns := report.SortByDate(report.ApplyFilters(l.Transactions(), f))
				printTable(e.out, []string{"ID", "Date", "Description", "Category", "Account", "Amount"},
					txRows(txns, names, e.cfg.Display.Currency))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "only income or expense")
	cmd.Flags().StringVar(&f.Category, "category", "", "only this category")
	cmd.Flags().IntVar(&f.AccountID, "account", 0, "only this account id")
	cmd.Flags().StringVar(&f.DateFrom, "from", "", "first date, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.DateTo, "to", "", "last date, YYYY-MM-DD")

	return cmd
}

func txRows(txns []model.Transaction, names report.Names, currency string) [][]string {
	rows := make([][]string, 0, len(txns))
	for _, t := range txns {
		rows = append(rows, []string{
			strconv.Itoa(t.ID),
			format.Date(t.Date),
			t.Description,
			t.Category,
			names.Name(t.AccountID),
			amountText(report.Signed(t), currency, true),
		})
	}
	return rows
}

func newTxDeleteCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction and revert its balance effect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			txID, err := parseID(args[0])
			if err != nil {
				return err
			}
			return withLedger(cmd, g, func(ctx context.Context, e *env, l *ledger.Ledger) error {
				t, _ := l.Transaction(txID)
				deleted, err := l.DeleteTransaction(ctx, txID)
				if err != nil {
					return err
				}
				if !deleted {
					printInfof(e.out, "No transaction with id %d", txID)
					return nil
				}
				if t.IsTransferLeg() {
					ref := ""
					if t.TransferID != "" {
						ref = id.TransferRef(t.TransferID)
					}
					e.audit(l.User().Username, auditlog.ActionTransferDelete, t.TransferDescription(), ref)
					printSuccess(e.out, fmt.Sprintf("Transaction %d is a transfer leg: transfer deleted", txID))
					return nil
				}
				e.audit(l.User().Username, auditlog.ActionTxDelete, t.Description, id.TransactionRef(txID))
				printSuccess(e.out, fmt.Sprintf("Transaction %d deleted", txID))
				return nil
			})
		},
	}
}

func newTxImportCommand(g *globalFlags) *cobra.Command {
	var formatName, category string
	var accountID int

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a bank statement CSV, or every CSV in the import directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parser := importer.DefaultRegistry().Get(formatName)
			if parser == nil {
				return fmt.Errorf("unknown import format %q", formatName)
			}
			return withLedger(cmd, g, func(ctx context.Context, e *env, l *ledger.Ledger) error {
				if len(args) == 1 {
					_, err := importFile(ctx, e, l, parser, args[0], accountID, category)
					return err
				}
				files, err := importer.Scan(e.cfg.DataDir)
				if err != nil {
					return err
				}
				if len(files) == 0 {
					printInfof(e.out, "No CSV files in %s", filepath.Join(e.cfg.DataDir, "import"))
					return nil
				}
				for _, f := range files {
					if _, err := importFile(ctx, e, l, parser, f.Path, accountID, category); err != nil {
						return err
					}
					if err := importer.MarkProcessed(e.cfg.DataDir, f.Name); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&formatName, "format", "chase", "statement format: chase or simple")
	cmd.Flags().IntVar(&accountID, "account", 0, "account id the statement belongs to (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().StringVar(&category, "category", "Importado", "category for imported rows")

	return cmd
}

func importFile(ctx context.Context, e *env, l *ledger.Ledger, p importer.Parser, path string, accountID int, category string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("opening statement: %w", err)
	}
	defer f.Close()

	bank, err := p.Parse(f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	added, skipped, err := l.ImportTransactions(ctx, importer.ToNewTransactions(bank, accountID, category))
	if err != nil {
		return 0, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	e.log.Info("statement imported",
		zap.String("file", path),
		zap.Int("count", len(added)),
		zap.Int("skipped", skipped))
	if len(added) > 0 {
		e.audit(l.User().Username, auditlog.ActionTxImport,
			fmt.Sprintf("%d rows from %s", len(added), filepath.Base(path)), id.AccountRef(accountID))
	}
	printSuccess(e.out, fmt.Sprintf("Imported %d transactions from %s", len(added), filepath.Base(path)))
	if skipped > 0 {
		printInfof(e.out, "Skipped %d rows already imported", skipped)
	}
	return len(added), nil
}
