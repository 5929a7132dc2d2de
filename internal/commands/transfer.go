package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/tally/internal/auditlog"
	"github.com/cleared-dev/tally/internal/format"
	"github.com/cleared-dev/tally/internal/id"
	"github.com/cleared-dev/tally/internal/ledger"
	"github.com/cleared-dev/tally/internal/model"
	"github.com/cleared-dev/tally/internal/report"
)

func newTransferCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between accounts",
	}
	cmd.AddCommand(
		newTransferAddCommand(g),
		newTransferListCommand(g),
		newTransferDeleteCommand(g),
	)
	return cmd
}

func newTransferAddCommand(g *globalFlags) *cobra.Command {
	var date, desc, amount string
	var fromID, toID int

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Transfer an amount from one account to another",
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
				tr, err := l.ProcessTransfer(ctx, day, desc, fromID, toID, amt)
				if err != nil {
					return err
				}
				names := report.AccountNames(l.Accounts())
				e.audit(l.User().Username, auditlog.ActionTransferAdd,
					fmt.Sprintf("%s from %d to %d", tr.Amount, tr.FromAccountID, tr.ToAccountID), id.TransferRef(tr.ID))
				printSuccess(e.out, fmt.Sprintf("Transferred %s from %s to %s (%s)",
					amountText(tr.Amount, e.cfg.Display.Currency, false),
					names.Name(tr.FromAccountID), names.Name(tr.ToAccountID), id.ShortTransferID(tr.ID)))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "date as YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&desc, "desc", "", "description")
	cmd.Flags().StringVar(&amount, "amount", "", "amount to move (required)")
	_ = cmd.MarkFlagRequired("amount")
	cmd.Flags().IntVar(&fromID, "from", 0, "source account id (required)")
	_ = cmd.MarkFlagRequired("from")
	cmd.Flags().IntVar(&toID, "to", 0, "destination account id (required)")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newTransferListCommand(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List transfers newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(cmd, g, func(ctx context.Context, e *env, l *ledger.Ledger) error {
				names := report.AccountNames(l.Accounts())
				transfers := l.Transfers()

				var rows [][]string
				for _, tr := range transfers {
					ref := id.ShortTransferID(tr.ID)
					if ref == "" {
						ref = mutedStyle.Render("legacy")
					}
					rows = append(rows, []string{
						ref,
						format.Date(tr.Date),
						tr.Description,
						names.Name(tr.FromAccountID),
						names.Name(tr.ToAccountID),
						amountText(tr.Amount, e.cfg.Display.Currency, false),
					})
				}
				printTable(e.out, []string{"ID", "Date", "Description", "From", "To", "Amount"}, rows)
				return nil
			})
		},
	}
}

func newTransferDeleteCommand(g *globalFlags) *cobra.Command {
	var transferID, date, desc string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a transfer by id, or by date and description",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if transferID == "" && date == "" {
				return errors.New("pass --id, or --date and --desc")
			}
			return withLedger(cmd, g, func(ctx context.Context, e *env, l *ledger.Ledger) error {
				var (
					removed int
					ref     string
					err     error
				)
				if transferID != "" {
					full, rerr := resolveTransferID(l.Transfers(), transferID)
					if rerr != nil {
						return rerr
					}
					ref = id.TransferRef(full)
					removed, err = l.DeleteTransferByID(ctx, full)
				} else {
					day, perr := model.ParseDate(date)
					if perr != nil {
						return perr
					}
					removed, err = l.DeleteTransfer(ctx, day, desc)
				}
				if err != nil {
					return err
				}
				if removed == 0 {
					printInfof(e.out, "No matching transfer")
					return nil
				}
				e.audit(l.User().Username, auditlog.ActionTransferDelete,
					fmt.Sprintf("%d legs %s %s", removed, date, desc), ref)
				printSuccess(e.out, fmt.Sprintf("Transfer deleted (%d legs)", removed))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&transferID, "id", "", "transfer id or its short prefix")
	cmd.Flags().StringVar(&date, "date", "", "transfer date, YYYY-MM-DD")
	cmd.Flags().StringVar(&desc, "desc", "", "transfer description without prefix")
	cmd.MarkFlagsMutuallyExclusive("id", "date")

	return cmd
}

// resolveTransferID expands a short prefix to the one transfer id it names.
func resolveTransferID(transfers []model.Transfer, prefix string) (string, error) {
	var match string
	for _, tr := range transfers {
		if tr.ID == "" || !strings.HasPrefix(tr.ID, prefix) {
			continue
		}
		if match != "" && match != tr.ID {
			return "", fmt.Errorf("transfer id %q is ambiguous", prefix)
		}
		match = tr.ID
	}
	if match == "" {
		return "", fmt.Errorf("no transfer with id %q", prefix)
	}
	return match, nil
}
